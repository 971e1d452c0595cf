package parser

// ExtractBraceBody returns the text of a balanced-brace block starting at
// the opening brace at openIdx, inclusive of both braces. It tracks brace
// depth so nested blocks do not terminate the scan early, and skips braces
// inside string literals and line comments. Returns "" if the block never
// closes (truncated or malformed source).
func ExtractBraceBody(source string, openIdx int) string {
	if openIdx < 0 || openIdx >= len(source) || source[openIdx] != '{' {
		return ""
	}

	depth := 0
	inString := byte(0)
	inLineComment := false
	escaped := false

	for i := openIdx; i < len(source); i++ {
		ch := source[i]

		if inLineComment {
			if ch == '\n' {
				inLineComment = false
			}
			continue
		}
		if inString != 0 {
			if escaped {
				escaped = false
			} else if ch == '\\' {
				escaped = true
			} else if ch == inString {
				inString = 0
			}
			continue
		}

		switch ch {
		case '"', '\'', '`':
			inString = ch
		case '/':
			if i+1 < len(source) && source[i+1] == '/' {
				inLineComment = true
			}
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return source[openIdx : i+1]
			}
		}
	}
	return ""
}
