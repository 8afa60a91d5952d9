package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocument_Page(t *testing.T) {
	doc := Document{Pages: []PageContent{
		{PageNumber: 1, Text: "one"},
		{PageNumber: 2, Text: "two"},
	}}

	p, ok := doc.Page(2)
	require.True(t, ok)
	assert.Equal(t, "two", p.Text)

	_, ok = doc.Page(0)
	assert.False(t, ok)
	_, ok = doc.Page(3)
	assert.False(t, ok)
}

func TestDocument_FullText(t *testing.T) {
	doc := Document{Pages: []PageContent{
		{PageNumber: 1, Text: "alpha"},
		{PageNumber: 2, Text: ""},
		{PageNumber: 3, Text: "gamma"},
	}}

	assert.Equal(t, "alpha\n\ngamma", doc.FullText())
}

func TestDocument_PagesWithText(t *testing.T) {
	doc := Document{Pages: []PageContent{
		{PageNumber: 1, Metadata: PageMetadata{HasText: true}},
		{PageNumber: 2},
	}}

	pages := doc.PagesWithText()
	require.Len(t, pages, 1)
	assert.Equal(t, 1, pages[0].PageNumber)
}

func TestPageAnchor(t *testing.T) {
	assert.Equal(t, "page-1", PageAnchor(1))
	assert.Equal(t, "page-42", PageAnchor(42))
}

func TestChunkOptions_Validate(t *testing.T) {
	tests := []struct {
		name    string
		opts    ChunkOptions
		wantErr bool
	}{
		{"defaults", DefaultChunkOptions(), false},
		{"no overlap", ChunkOptions{ChunkSize: 3}, false},
		{"zero size", ChunkOptions{ChunkSize: 0}, true},
		{"negative overlap", ChunkOptions{ChunkSize: 10, ChunkOverlap: -1}, true},
		{"overlap equals size", ChunkOptions{ChunkSize: 10, ChunkOverlap: 10}, true},
		{"overlap exceeds size", ChunkOptions{ChunkSize: 10, ChunkOverlap: 20}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrInvalidConfig))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
