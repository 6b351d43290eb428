package store

import (
	"strings"
	"unicode"
)

// readKeywords start statements that only read.
var readKeywords = map[string]bool{
	"SELECT":  true,
	"VALUES":  true,
	"PRAGMA":  true,
	"EXPLAIN": true,
}

// nonTransactional statements either manage transactions themselves or
// cannot run inside one.
var nonTransactional = map[string]bool{
	"VACUUM":    true,
	"ATTACH":    true,
	"DETACH":    true,
	"BEGIN":     true,
	"COMMIT":    true,
	"END":       true,
	"ROLLBACK":  true,
	"SAVEPOINT": true,
	"RELEASE":   true,
}

// dmlKeywords start the main statement of a WITH clause.
var dmlKeywords = map[string]bool{
	"SELECT":  true,
	"VALUES":  true,
	"INSERT":  true,
	"UPDATE":  true,
	"DELETE":  true,
	"REPLACE": true,
}

// classify inspects the main keyword of a statement. returnsRows is true
// for statements whose result is a row set; writes is true for every
// statement that must run in the pending transaction, which is anything
// except plain reads and transaction control.
func classify(statement string) (returnsRows, writes bool) {
	keyword := strings.ToUpper(leadingKeyword(statement))
	if keyword == "WITH" {
		keyword = mainKeyword(statement)
	}

	switch {
	case keyword == "":
		return false, false
	case readKeywords[keyword]:
		return true, false
	case nonTransactional[keyword]:
		return false, false
	case keyword == "INSERT", keyword == "UPDATE", keyword == "DELETE", keyword == "REPLACE":
		return hasWord(statement, "RETURNING"), true
	default:
		return false, true
	}
}

// mainKeyword returns the statement keyword following a WITH clause: the
// first SELECT, VALUES, INSERT, UPDATE, DELETE or REPLACE outside of
// parentheses, quotes and comments. Unknown shapes report "WITH".
func mainKeyword(statement string) string {
	s := statement
	depth := 0
	for len(s) > 0 {
		switch c := s[0]; {
		case strings.HasPrefix(s, "--"):
			end := strings.IndexByte(s, '\n')
			if end < 0 {
				return "WITH"
			}
			s = s[end+1:]
		case strings.HasPrefix(s, "/*"):
			end := strings.Index(s[2:], "*/")
			if end < 0 {
				return "WITH"
			}
			s = s[end+4:]
		case c == '\'' || c == '"' || c == '`' || c == '[':
			closer := c
			if c == '[' {
				closer = ']'
			}
			end := strings.IndexByte(s[1:], closer)
			if end < 0 {
				return "WITH"
			}
			s = s[end+2:]
		case c == '(':
			depth++
			s = s[1:]
		case c == ')':
			depth--
			s = s[1:]
		case isWordByte(c):
			end := strings.IndexFunc(s, func(r rune) bool { return r > unicode.MaxASCII || !isWordByte(byte(r)) })
			if end < 0 {
				end = len(s)
			}
			word := strings.ToUpper(s[:end])
			if depth == 0 && dmlKeywords[word] {
				return word
			}
			s = s[end:]
		default:
			s = s[1:]
		}
	}
	return "WITH"
}

func isWordByte(c byte) bool {
	return c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

// leadingKeyword returns the first word of statement, skipping whitespace and SQL comments.
func leadingKeyword(statement string) string {
	s := statement
	for {
		s = strings.TrimLeftFunc(s, unicode.IsSpace)
		switch {
		case strings.HasPrefix(s, "--"):
			end := strings.IndexByte(s, '\n')
			if end < 0 {
				return ""
			}
			s = s[end+1:]
		case strings.HasPrefix(s, "/*"):
			end := strings.Index(s[2:], "*/")
			if end < 0 {
				return ""
			}
			s = s[end+4:]
		case strings.HasPrefix(s, "("):
			s = s[1:]
		default:
			end := strings.IndexFunc(s, func(r rune) bool {
				return !unicode.IsLetter(r)
			})
			if end < 0 {
				return s
			}
			return s[:end]
		}
	}
}

// hasWord reports whether word appears in statement as a whole keyword, case-insensitively.
func hasWord(statement, word string) bool {
	fields := strings.FieldsFunc(strings.ToUpper(statement), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})
	for _, f := range fields {
		if f == word {
			return true
		}
	}
	return false
}
