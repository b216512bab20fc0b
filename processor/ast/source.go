package ast

import (
	"os"
	"strings"
	"unicode/utf8"
)

// ReadSource reads a file and checks that it is UTF-8. A leading byte order
// mark is dropped.
func ReadSource(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, FileError{File: path, Operation: OpRead, Cause: err}
	}
	data = trimBOM(data)
	if !utf8.Valid(data) {
		return nil, FileError{File: path, Operation: OpDecode, Cause: ErrNotUTF8}
	}
	return data, nil
}

func trimBOM(b []byte) []byte {
	if len(b) >= 3 && b[0] == 0xEF && b[1] == 0xBB && b[2] == 0xBF {
		return b[3:]
	}
	return b
}

// maxCommentName bounds the name derived from a comment, in bytes.
const maxCommentName = 60

// CommentName derives a comment's name from its first line, cut at the last
// word boundary within maxCommentName bytes. A single overlong word is cut at
// a rune boundary.
func CommentName(text string) string {
	first := text
	if i := strings.IndexByte(first, '\n'); i >= 0 {
		first = first[:i]
	}
	if len(first) <= maxCommentName {
		return first
	}
	cut := maxCommentName
	for cut > 0 && !utf8.RuneStart(first[cut]) {
		cut--
	}
	if i := strings.LastIndexByte(first[:cut], ' '); i > 0 {
		cut = i
	}
	return first[:cut]
}
