package duel

import "strings"

// ValidateMove checks the "<square>-<square>" shape, e.g. "e2-e4".
// Squares are a file a-h followed by a rank 1-8. Legality is not checked.
func ValidateMove(move string) error {
	from, to, ok := strings.Cut(move, "-")
	if !ok {
		return badMove(move, "expected <from>-<to>")
	}
	if !isSquare(from) {
		return badMove(move, "invalid source square")
	}
	if !isSquare(to) {
		return badMove(move, "invalid destination square")
	}
	if from == to {
		return badMove(move, "source equals destination")
	}
	return nil
}

func isSquare(s string) bool {
	return len(s) == 2 && s[0] >= 'a' && s[0] <= 'h' && s[1] >= '1' && s[1] <= '8'
}
