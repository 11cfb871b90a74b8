package bank

import "strings"

const (
	EventToken       = "Event Token"
	LeadershipToken  = "Leadership Token"
	CompetitiveToken = "Competitive Token"
	WarToken         = "War Token"
)

// TokenTypes lists every recognized token type. Order matters: event
// descriptions are scanned for these names first to last.
var TokenTypes = []string{EventToken, LeadershipToken, CompetitiveToken, WarToken}

// PayoutTokenTypes are the classes converted to gold (and reset) by the
// weekly payout. Event Tokens are not payout-eligible.
var PayoutTokenTypes = []string{WarToken, LeadershipToken, CompetitiveToken}

// NormalizeTokenType matches user input against the known token types,
// ignoring case and surrounding whitespace.
func NormalizeTokenType(input string) (string, bool) {
	trimmed := strings.TrimSpace(input)
	for _, token := range TokenTypes {
		if strings.EqualFold(trimmed, token) {
			return token, true
		}
	}
	return "", false
}

// ClassifyEventToken picks the award token type for an event by scanning its
// description for a token type name. Unmatched descriptions fall back to the
// baseline Event Token.
func ClassifyEventToken(description string) string {
	for _, token := range TokenTypes {
		if strings.Contains(description, token) {
			return token
		}
	}
	return EventToken
}
