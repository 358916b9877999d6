package textctx

import (
	"strings"
	"testing"
)

func TestExtract(t *testing.T) {
	doc := "First sentence here. Second sentence follows! Third one ends now."

	tests := []struct {
		name         string
		text         string
		cursor       int
		wantCurrent  string
		wantPrevious string
		wantNext     string
	}{
		{
			name:         "cursor in first sentence",
			text:         doc,
			cursor:       5,
			wantCurrent:  "First sentence here.",
			wantPrevious: "",
			wantNext:     "Second sentence follows!",
		},
		{
			name:         "cursor in middle sentence",
			text:         doc,
			cursor:       30,
			wantCurrent:  "Second sentence follows!",
			wantPrevious: "First sentence here.",
			wantNext:     "Third one ends now.",
		},
		{
			name:         "cursor at end of text",
			text:         doc,
			cursor:       len(doc),
			wantCurrent:  "Third one ends now.",
			wantPrevious: "Second sentence follows!",
			wantNext:     "",
		},
		{
			name:        "single unterminated sentence",
			text:        "Deep learning techniques are revolutionizing",
			cursor:      10,
			wantCurrent: "Deep learning techniques are revolutionizing",
		},
		{
			name:        "empty document",
			text:        "",
			cursor:      0,
			wantCurrent: "",
		},
		{
			name:        "punctuation without trailing space is not a boundary",
			text:        "See section 3.2 for details",
			cursor:      5,
			wantCurrent: "See section 3.2 for details",
		},
		{
			name:         "abbreviation is naively split",
			text:         "As shown by Smith et al. the effect is large.",
			cursor:       30,
			wantCurrent:  "the effect is large.",
			wantPrevious: "As shown by Smith et al.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(tt.text, tt.cursor)

			if got.CurrentSentence != tt.wantCurrent {
				t.Errorf("CurrentSentence = %q, want %q", got.CurrentSentence, tt.wantCurrent)
			}
			if got.PreviousSentence != tt.wantPrevious {
				t.Errorf("PreviousSentence = %q, want %q", got.PreviousSentence, tt.wantPrevious)
			}
			if got.NextSentence != tt.wantNext {
				t.Errorf("NextSentence = %q, want %q", got.NextSentence, tt.wantNext)
			}
			if got.CursorOffset < 0 || got.CursorOffset > len([]rune(got.CurrentSentence)) {
				t.Errorf("CursorOffset = %d out of range for %q", got.CursorOffset, got.CurrentSentence)
			}
		})
	}
}

func TestExtractParagraph(t *testing.T) {
	doc := "Intro paragraph text here.\n\nBody paragraph sentence one. Body sentence two.\n\nClosing paragraph."

	tests := []struct {
		name   string
		cursor int
		want   string
	}{
		{"first block", 4, "Intro paragraph text here."},
		{"middle block", strings.Index(doc, "Body sentence two"), "Body paragraph sentence one. Body sentence two."},
		{"last block", len(doc) - 2, "Closing paragraph."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(doc, tt.cursor)
			if got.Paragraph != tt.want {
				t.Errorf("Paragraph = %q, want %q", got.Paragraph, tt.want)
			}
		})
	}
}

func TestExtractIsDeterministic(t *testing.T) {
	doc := "One sentence. Another sentence."
	a := Extract(doc, 18)
	b := Extract(doc, 18)
	if a != b {
		t.Errorf("Extract not deterministic: %+v vs %+v", a, b)
	}
}

func TestExtractClampsCursor(t *testing.T) {
	got := Extract("Short doc.", 9999)
	if got.CurrentSentence != "Short doc." {
		t.Errorf("CurrentSentence = %q", got.CurrentSentence)
	}
	got = Extract("Short doc.", -3)
	if got.CurrentSentence != "Short doc." {
		t.Errorf("CurrentSentence = %q", got.CurrentSentence)
	}
}
