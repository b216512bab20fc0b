package writer

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/c360studio/semcode/processor/ast"
)

// Label builds "<Kind label>: <name>" bounded to max bytes. A long label is
// cut at the last word boundary that fits; a single overlong word is cut at a
// rune boundary.
func Label(kind ast.Kind, name string, max int) string {
	return boundedLabel(kind.Label(), name, max)
}

func boundedLabel(prefix, name string, max int) string {
	label := prefix + ": " + strings.Join(strings.Fields(name), " ")
	if max <= 0 || len(label) <= max {
		return label
	}

	cut := label[:max]
	for !utf8.ValidString(cut) {
		cut = cut[:len(cut)-1]
	}
	if i := strings.LastIndexByte(cut, ' '); i > len(prefix)+2 && !isSpace(label, max) {
		cut = cut[:i]
	}
	return strings.TrimRightFunc(cut, unicode.IsSpace)
}

func isSpace(s string, i int) bool {
	return i < len(s) && s[i] == ' '
}

// decisionWords are the branch keywords counted by Complexity, across the
// supported languages.
var decisionWords = map[string]bool{
	"if":      true,
	"elif":    true,
	"for":     true,
	"foreach": true,
	"while":   true,
	"case":    true,
	"catch":   true,
	"except":  true,
	"when":    true,
	"and":     true,
	"or":      true,
}

// Complexity estimates cyclomatic complexity as one plus the number of
// decision keywords and short-circuit operators in src.
func Complexity(src string) int {
	n := 1
	for _, w := range words(src) {
		if decisionWords[w] {
			n++
		}
	}
	n += strings.Count(src, "&&")
	n += strings.Count(src, "||")
	return n
}

// TokenCount counts identifier, number and punctuation tokens in src.
func TokenCount(src string) int {
	n := 0
	inWord := false
	for _, r := range src {
		switch {
		case isWordRune(r):
			if !inWord {
				n++
				inWord = true
			}
		case unicode.IsSpace(r):
			inWord = false
		default:
			n++
			inWord = false
		}
	}
	return n
}

// AccessModifier reads an access keyword from a declaration header.
func AccessModifier(header string) string {
	for _, w := range words(header) {
		switch w {
		case "public", "private", "protected", "internal":
			return w
		case "pub":
			return "public"
		}
	}
	return ""
}

func hasKeyword(s, keyword string) bool {
	for _, w := range words(s) {
		if w == keyword {
			return true
		}
	}
	return false
}

func words(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool { return !isWordRune(r) })
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}
