package driven

// DefaultPrompts returns the built-in prompt templates keyed by prompt name.
// They are the fallback when no PromptStore is configured and the initial
// content of user-editable prompt files.
//
//nolint:lll // Prompt content is intentionally long and should not be wrapped.
func DefaultPrompts() map[string]string {
	return map[string]string{
		PromptChatSystem: `You are a study assistant answering questions about a single document.

Answer using only the context provided. Format answers as structured markdown with short headings or bullet lists where they help.
Cite pages as (p. N) only when that page number appears in the context. Never invent citations or facts that are not in the context.
If the context does not contain the answer, say so briefly and suggest what to look for instead.
Start every answer with one relevant emoji.`,

		PromptChatSuggestions: `Suggest 4 short follow-up questions a student might ask next about this document.
Each question must start with one emoji and be at most 12 words.

Recent conversation:
%s

Document excerpt:
%s

Respond with a JSON object: {"suggestions": ["...", "...", "...", "..."]}`,

		PromptConcepts: `Extract the %d most important concepts from page %d of a study document.

For each concept give a short title, a one or two sentence description, an importance from 1 to 10, up to 3 lowercase tags, one emoji and a hex color.

Page text:
%s

Respond with a JSON object: {"concepts": [{"title": "", "description": "", "importance": 5, "tags": [], "emoji": "", "color": "#3B82F6"}]}`,

		PromptConceptsBatch: `Extract %d key concepts for each page below. Each page starts with a [Page N] marker.

For each concept give the page number it comes from, a short title, a one or two sentence description, an importance from 1 to 10, up to 3 lowercase tags, one emoji and a hex color.

%s

Respond with a JSON object: {"concepts": [{"pageNumber": 1, "title": "", "description": "", "importance": 5, "tags": [], "emoji": "", "color": ""}]}`,

		PromptConceptsExtract: `From the context below, list the %d concepts a student must understand. Keep descriptions factual and grounded in the context.

Context:
%s

Respond with a JSON object: {"concepts": [{"title": "", "description": "", "importance": 5, "pageNumber": 1}]}`,

		PromptConceptsEnhance: `Improve this list of study concepts. Give every concept a unique, specific title of at most 6 words, up to 3 lowercase tags and one fitting emoji. Merge concepts that describe the same idea. Keep page numbers.

Concepts:
%s

Respond with a JSON object: {"concepts": [{"title": "", "description": "", "importance": 5, "tags": [], "emoji": "", "pageNumber": 1}]}`,

		PromptSummaryPage: `Summarise this page of a study document in 2 to 4 sentences and list %d key points.

Page text:
%s

Respond with a JSON object: {"summary": "", "keyPoints": [""], "emoji": ""}`,

		PromptSummaryDocument: `Summarise this document in one paragraph and list the %d most important key points.

Document:
%s

Respond with a JSON object: {"summary": "", "keyPoints": [""], "emoji": ""}`,

		PromptFlashcards: `Write %d flashcards that test understanding of the text below. Mix easy, medium and hard cards. Fronts are questions or prompts, backs are concise answers.

Text:
%s

Respond with a JSON object: {"flashcards": [{"front": "", "back": "", "difficulty": "easy|medium|hard", "tags": [], "emoji": "", "pageNumber": 1}]}`,

		PromptMCQ: `Write %d multiple-choice questions about the text below. Each question has exactly 4 options with one correct answer. Mix easy, medium and hard questions and explain the correct answer in one sentence.

Text:
%s

Respond with a JSON object: {"questions": [{"question": "", "options": ["", "", "", ""], "correctIndex": 0, "explanation": "", "difficulty": "easy|medium|hard", "emoji": "", "pageNumber": 1}]}`,

		PromptTOCEnhance: `Rewrite these table of contents entries as clean, readable titles. Respect each entry's maxLength, use sentence case, keep any leading section number, and add a tooltip of at most 120 characters describing the section.

Entries:
%s

Respond with a JSON object: {"items": [{"index": 0, "title": "", "tooltip": ""}]}`,
	}
}
