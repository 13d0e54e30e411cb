package parser

import "strings"

// unescapeString strips the surrounding quotes from a lexed string
// literal and resolves the small set of backslash escapes the lexer
// allowed through uninterpreted (§4.2 only tracks the terminating
// quote; escape resolution is a parser/semantic concern here).
func unescapeString(lexeme string) string {
	if len(lexeme) >= 2 && lexeme[0] == '"' {
		lexeme = lexeme[1 : len(lexeme)-1]
	}
	if !strings.ContainsRune(lexeme, '\\') {
		return lexeme
	}
	var b strings.Builder
	for i := 0; i < len(lexeme); i++ {
		if lexeme[i] == '\\' && i+1 < len(lexeme) {
			i++
			switch lexeme[i] {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			case '"':
				b.WriteByte('"')
			case '\\':
				b.WriteByte('\\')
			default:
				b.WriteByte(lexeme[i])
			}
			continue
		}
		b.WriteByte(lexeme[i])
	}
	return b.String()
}
