package ingest

import (
	"strings"

	"docsearch/internal/domain"
)

// SplitText splits text into chunks bounded by a word budget, accumulating
// whole lines: when adding the next line would exceed maxWords, the current
// chunk is sealed and the line starts a new one. Lines are never split; a
// single line longer than the budget becomes one oversized chunk on its own.
// The final partially-filled chunk is always emitted. Empty input yields no
// chunks. Joining all chunks with newlines reconstructs the input.
func SplitText(text string, maxWords int) []string {
	if maxWords <= 0 {
		maxWords = domain.DefaultMaxChunkWords
	}
	if text == "" {
		return nil
	}

	var chunks []string
	var current []string
	currentWords := 0

	for _, line := range strings.Split(text, "\n") {
		lineWords := len(strings.Fields(line))
		if currentWords+lineWords > maxWords && len(current) > 0 {
			chunks = append(chunks, strings.Join(current, "\n"))
			current = current[:0]
			currentWords = 0
		}
		current = append(current, line)
		currentWords += lineWords
	}

	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, "\n"))
	}

	return chunks
}
