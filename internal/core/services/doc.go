// Package services implements the driving port interfaces.
//
// A Session wires one reading session: extraction, the embedding store,
// chat, the table of contents, the learning-aid generators and the
// navigation coordinator. Services call out only through driven ports.
package services
