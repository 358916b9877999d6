package utils

import (
	"strings"
	"testing"
)

func TestSplitPassages(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		chunkSize  int
		overlap    int
		wantChunks int
	}{
		{"empty text", "", 100, 20, 0},
		{"short text single chunk", "A short passage.", 100, 20, 1},
		{"long text multiple chunks", strings.Repeat("word ", 100), 100, 20, 6},
		{"overlap larger than size falls back", "abcdefghij", 4, 8, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitPassages(tt.text, tt.chunkSize, tt.overlap)
			if len(got) != tt.wantChunks {
				t.Errorf("SplitPassages() = %d chunks, want %d", len(got), tt.wantChunks)
			}
			for i, c := range got {
				if strings.TrimSpace(c) == "" {
					t.Errorf("chunk %d is blank", i)
				}
			}
		})
	}
}

func TestSplitPassagesOverlapPreservesContext(t *testing.T) {
	text := strings.Repeat("abcdefghij", 10) // 100 chars
	chunks := SplitPassages(text, 40, 10)

	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	// Each chunk after the first starts inside the previous chunk's tail.
	first := chunks[0]
	second := chunks[1]
	if !strings.HasPrefix(second, first[len(first)-10:]) {
		t.Errorf("second chunk does not overlap first: %q vs %q", first, second)
	}
}
