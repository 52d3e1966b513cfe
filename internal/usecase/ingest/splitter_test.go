package ingest

import (
	"strings"
	"testing"
)

// line returns a single line containing n words.
func line(n int) string {
	words := make([]string, n)
	for i := range words {
		words[i] = "w"
	}
	return strings.Join(words, " ")
}

func TestSplitTextBoundary(t *testing.T) {
	// Word counts [100, 150, 100] with budget 200: line 1 fits; adding
	// line 2 would reach 250, sealing chunk 1; adding line 3 to chunk 2
	// would reach 250 again, sealing chunk 2. Three single-line chunks.
	lines := []string{line(100), line(150), line(100)}
	text := strings.Join(lines, "\n")

	chunks := SplitText(text, 200)

	if len(chunks) != 3 {
		t.Fatalf("got %d chunks, want 3", len(chunks))
	}
	for i, c := range chunks {
		if c != lines[i] {
			t.Errorf("chunk %d does not match source line %d", i, i)
		}
	}
}

func TestSplitTextAccumulatesUnderBudget(t *testing.T) {
	lines := []string{line(100), line(50), line(40)}
	text := strings.Join(lines, "\n")

	chunks := SplitText(text, 200)

	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(chunks))
	}
	if chunks[0] != text {
		t.Error("single chunk must contain all lines joined by newlines")
	}
}

func TestSplitTextEmptyInput(t *testing.T) {
	if chunks := SplitText("", 300); len(chunks) != 0 {
		t.Fatalf("empty input yielded %d chunks", len(chunks))
	}
}

func TestSplitTextOversizedLineKeptWhole(t *testing.T) {
	big := line(500)
	text := strings.Join([]string{line(10), big, line(10)}, "\n")

	chunks := SplitText(text, 100)

	if len(chunks) != 3 {
		t.Fatalf("got %d chunks, want 3", len(chunks))
	}
	if chunks[1] != big {
		t.Error("oversized line must be placed alone in one chunk, never split")
	}
}

func TestSplitTextReconstructsLineSequence(t *testing.T) {
	inputs := []string{
		"one line",
		"a\nb\nc",
		strings.Join([]string{line(3), "", line(7), line(1), "", ""}, "\n"),
		strings.Join([]string{line(120), line(95), line(300), line(2)}, "\n"),
	}
	for _, text := range inputs {
		for _, budget := range []int{1, 5, 100, 300} {
			chunks := SplitText(text, budget)
			if got := strings.Join(chunks, "\n"); got != text {
				t.Errorf("budget %d: concatenated chunks do not reconstruct input\n got: %q\nwant: %q",
					budget, got, text)
			}
		}
	}
}
