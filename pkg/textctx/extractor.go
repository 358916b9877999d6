// Package textctx derives the bounded text window around the cursor that a
// suggestion request is built from. Extraction is a pure function of the
// document text and cursor offset: no side effects, no network.
package textctx

import (
	"strings"
	"unicode"
)

// TextContext is an immutable snapshot consumed by one suggestion request.
type TextContext struct {
	CurrentSentence  string `json:"currentSentence"`
	PreviousSentence string `json:"previousSentence,omitempty"`
	NextSentence     string `json:"nextSentence,omitempty"`
	Paragraph        string `json:"paragraph"`
	CursorOffset     int    `json:"cursorOffset"`
}

// Extract splits documentText around cursorOffset and returns the sentence
// containing the cursor plus its neighbors and enclosing paragraph.
//
// Sentence boundaries are a naive punctuation scan: '.', '!' or '?' followed
// by whitespace or end-of-text. Abbreviations ("et al.") are misdetected as
// sentence ends; this matches the behavior the rest of the system is tuned
// against and is kept deliberately.
func Extract(documentText string, cursorOffset int) TextContext {
	runes := []rune(documentText)
	if cursorOffset < 0 {
		cursorOffset = 0
	}
	if cursorOffset > len(runes) {
		cursorOffset = len(runes)
	}

	sentences, spans := splitSentences(runes)
	idx := sentenceAt(spans, cursorOffset)

	ctx := TextContext{
		Paragraph: paragraphAt(runes, cursorOffset),
	}

	if idx < 0 {
		return ctx
	}

	// Cursor offset relative to the trimmed sentence start, clamped so it
	// never exceeds the sentence length.
	raw := string(runes[spans[idx].start:spans[idx].end])
	leading := len([]rune(raw)) - len([]rune(strings.TrimLeftFunc(raw, unicode.IsSpace)))
	rel := cursorOffset - spans[idx].start - leading
	cur := sentences[idx]
	if rel < 0 {
		rel = 0
	}
	if rel > len([]rune(cur)) {
		rel = len([]rune(cur))
	}

	ctx.CurrentSentence = cur
	ctx.CursorOffset = rel
	if idx > 0 {
		ctx.PreviousSentence = sentences[idx-1]
	}
	if idx+1 < len(sentences) {
		ctx.NextSentence = sentences[idx+1]
	}
	return ctx
}

type span struct {
	start int // inclusive rune offset
	end   int // exclusive rune offset
}

func isBoundaryPunct(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

// splitSentences returns trimmed sentences and their raw spans in the text.
// A boundary is punctuation followed by whitespace or end-of-text; the
// punctuation belongs to the sentence it terminates.
func splitSentences(runes []rune) ([]string, []span) {
	var sentences []string
	var spans []span

	start := 0
	for i := 0; i < len(runes); i++ {
		if !isBoundaryPunct(runes[i]) {
			continue
		}
		atEnd := i == len(runes)-1
		if !atEnd && !unicode.IsSpace(runes[i+1]) {
			continue
		}
		s := span{start: start, end: i + 1}
		if trimmed := strings.TrimSpace(string(runes[s.start:s.end])); trimmed != "" {
			sentences = append(sentences, trimmed)
			spans = append(spans, s)
		}
		start = i + 1
	}

	if start < len(runes) {
		s := span{start: start, end: len(runes)}
		if trimmed := strings.TrimSpace(string(runes[s.start:s.end])); trimmed != "" {
			sentences = append(sentences, trimmed)
			spans = append(spans, s)
		}
	}

	return sentences, spans
}

// sentenceAt finds the sentence whose span contains the cursor. A cursor
// sitting in the whitespace gap after a boundary belongs to the following
// sentence; a cursor at end-of-text belongs to the last sentence.
func sentenceAt(spans []span, cursor int) int {
	if len(spans) == 0 {
		return -1
	}
	for i, s := range spans {
		if cursor >= s.start && cursor <= s.end {
			return i
		}
		if cursor < s.start {
			return i
		}
	}
	return len(spans) - 1
}

// paragraphAt returns the trimmed block between the nearest blank-line
// separators enclosing the cursor.
func paragraphAt(runes []rune, cursor int) string {
	text := string(runes)
	blocks := strings.Split(text, "\n\n")

	offset := 0
	for _, block := range blocks {
		blockLen := len([]rune(block))
		if cursor <= offset+blockLen {
			return strings.TrimSpace(block)
		}
		offset += blockLen + 2 // account for the separator
	}
	if len(blocks) > 0 {
		return strings.TrimSpace(blocks[len(blocks)-1])
	}
	return ""
}
