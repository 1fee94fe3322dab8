package policy

import "strings"

// normalizeCommand reduces a shell command to a whitespace-normalized form
// with quoted strings removed, so pattern matching does not false-positive
// on commands that merely mention a dangerous string inside a literal.
func normalizeCommand(command string) string {
	tokens := parseTokens(command)
	kept := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if strings.HasPrefix(token, "'") || strings.HasPrefix(token, `"`) {
			continue
		}
		kept = append(kept, token)
	}
	return strings.Join(kept, " ")
}

// parseTokens splits a command string into tokens, respecting quoted
// strings. Quotes are kept in the returned tokens so callers can tell a
// quoted token from a bare one.
func parseTokens(command string) []string {
	var tokens []string
	var current strings.Builder
	inSingleQuote := false
	inDoubleQuote := false

	for i := 0; i < len(command); i++ {
		ch := command[i]

		switch ch {
		case '\'':
			if !inDoubleQuote {
				inSingleQuote = !inSingleQuote
			}
			current.WriteByte(ch)
		case '"':
			if !inSingleQuote {
				inDoubleQuote = !inDoubleQuote
			}
			current.WriteByte(ch)
		case ' ', '\t', '\n', '\r':
			if !inSingleQuote && !inDoubleQuote {
				if current.Len() > 0 {
					tokens = append(tokens, current.String())
					current.Reset()
				}
			} else {
				current.WriteByte(ch)
			}
		default:
			current.WriteByte(ch)
		}
	}

	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}

	return tokens
}
