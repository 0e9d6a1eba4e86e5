package resolver

import "strings"

// stateToken is the single folded form for the "State"/"Saint" word family.
// Roster sources disagree on "Ohio State" vs "Ohio St." vs "St. Johns"; both
// families collapse to one token so the comparison sees through the spelling.
const stateToken = "st"

// stateFamily are the spellings folded into stateToken.
var stateFamily = map[string]bool{
	"state": true,
	"st":    true,
	"ste":   true,
	"saint": true,
}

// fillerWords are dropped when reducing a name to significant tokens.
var fillerWords = map[string]bool{
	"university": true,
	"univ":       true,
	"college":    true,
	"of":         true,
	"the":        true,
}

// Normalize canonicalizes a team name for the normalized-match strategy:
// lowercase, mascot suffix stripped, State/Saint folded to "st", punctuation
// removed, whitespace collapsed.
//
//	Normalize("Ohio State Buckeyes") == Normalize("Ohio St.") == "ohio st"
func Normalize(name string) string {
	return strings.Join(normalizedTokens(name), " ")
}

// Tokens reduces a team name to its significant word tokens for the word-set
// strategy: normalized as above, with filler words removed.
func Tokens(name string) []string {
	tokens := normalizedTokens(name)
	significant := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if fillerWords[tok] {
			continue
		}
		significant = append(significant, tok)
	}
	return significant
}

func normalizedTokens(name string) []string {
	lower := strings.ToLower(strings.TrimSpace(name))
	// Trailing punctuation would hide a mascot suffix from the phrase match.
	lower = strings.TrimRight(lower, ".,'& \t")
	lower = stripMascotSuffix(lower)

	fields := strings.FieldsFunc(lower, func(r rune) bool {
		return r == ' ' || r == '\t' || r == '-' || r == '(' || r == ')'
	})

	tokens := make([]string, 0, len(fields))
	for _, field := range fields {
		tok := strings.Trim(field, ".,'&")
		tok = strings.ReplaceAll(tok, "'", "")
		tok = strings.ReplaceAll(tok, ".", "")
		if tok == "" {
			continue
		}
		if stateFamily[tok] {
			tok = stateToken
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

// hasStateToken reports whether the token list carries the folded State/Saint
// token. Used as the tie-break that keeps a school from matching its
// state-suffixed cousin.
func hasStateToken(tokens []string) bool {
	for _, tok := range tokens {
		if tok == stateToken {
			return true
		}
	}
	return false
}

// tokensCorrespond reports whether two tokens pair off: exact equality, or one
// is a prefix (at least 3 characters) of the other. The prefix rule absorbs
// abbreviations like "Carol" for "Carolina".
func tokensCorrespond(a, b string) bool {
	if a == b {
		return true
	}
	if len(a) >= 3 && strings.HasPrefix(b, a) {
		return true
	}
	if len(b) >= 3 && strings.HasPrefix(a, b) {
		return true
	}
	return false
}

// wordSetMatch reports whether two token lists pair off perfectly: same count,
// same State/Saint presence, and a bijection where every pair corresponds.
func wordSetMatch(a, b []string) bool {
	if len(a) == 0 || len(a) != len(b) {
		return false
	}
	if hasStateToken(a) != hasStateToken(b) {
		return false
	}
	used := make([]bool, len(b))
	return pairOff(a, b, used, 0)
}

// pairOff recursively assigns a[i:] to unused tokens of b. Names are a handful
// of words, so the backtracking cost is negligible.
func pairOff(a, b []string, used []bool, i int) bool {
	if i == len(a) {
		return true
	}
	for j := range b {
		if used[j] || !tokensCorrespond(a[i], b[j]) {
			continue
		}
		used[j] = true
		if pairOff(a, b, used, i+1) {
			return true
		}
		used[j] = false
	}
	return false
}
