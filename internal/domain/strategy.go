package domain

import "fmt"

// Strategy selects the terminal query-handling path. It is always supplied
// by the caller and never inferred from query content.
type Strategy string

const (
	// StrategyGrounded answers from the document's vector index.
	StrategyGrounded Strategy = "grounded"
	// StrategyLiterature searches external literature.
	StrategyLiterature Strategy = "literature"
	// StrategyWeb runs a general web search.
	StrategyWeb Strategy = "web"
)

// ParseStrategy validates a caller-supplied strategy label.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case StrategyGrounded, StrategyLiterature, StrategyWeb:
		return Strategy(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStrategy, s)
}
