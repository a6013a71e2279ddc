// Package tokenizer splits document text into completion tokens.
//
// Splitting is driven entirely by a per-language regular expression: every
// match of the splitter is a separator, everything between two matches is a
// token. The package holds no state; pattern lookup lives in config.
package tokenizer

import (
	"regexp"
	"unicode"
	"unicode/utf8"
)

// DefaultWhitespace is the splitter used when a language has none configured.
const DefaultWhitespace = `[^\p{L}\p{N}_\-]+`

// Tokenize splits text into tokens in document order.
// Empty segments produced by leading, trailing or adjacent separators are kept
// out of the result.
func Tokenize(text string, splitter *regexp.Regexp) []string {
	if text == "" {
		return []string{}
	}

	parts := splitter.Split(text, -1)
	tokens := make([]string, 0, len(parts))

	for _, part := range parts {
		if part == "" {
			continue
		}

		tokens = append(tokens, part)
	}

	return tokens
}

// Normalize removes every splitter match from token.
// A token made only of separator characters normalizes to "".
func Normalize(token string, splitter *regexp.Regexp) string {
	return splitter.ReplaceAllString(token, "")
}

// Length returns the rune length of token, which is what minimum word
// length is measured in.
func Length(token string) int {
	return utf8.RuneCountInString(token)
}

// Segment returns the byte range [start, end) of the splitter-delimited
// segment of line that contains offset. When offset sits on a separator the
// returned range is empty.
func Segment(line string, offset int, splitter *regexp.Regexp) (int, int) {
	if offset < 0 {
		offset = 0
	}

	if offset > len(line) {
		offset = len(line)
	}

	start, end := 0, len(line)

	for _, loc := range splitter.FindAllStringIndex(line, -1) {
		if loc[1] <= offset {
			start = loc[1]
			continue
		}

		if loc[0] >= offset {
			end = loc[0]
			break
		}

		// offset falls strictly inside a separator
		return offset, offset
	}

	if start > end {
		return offset, offset
	}

	return start, end
}

// Word returns the maximal run of non-space characters around offset,
// the way an editor reports the word range under the cursor.
func Word(line string, offset int) string {
	start, end := WordRange(line, offset)
	return line[start:end]
}

// WordRange returns the byte range of Word(line, offset).
func WordRange(line string, offset int) (int, int) {
	if offset < 0 {
		offset = 0
	}

	if offset > len(line) {
		offset = len(line)
	}

	start := offset
	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(line[:start])
		if unicode.IsSpace(r) {
			break
		}

		start -= size
	}

	end := offset
	for end < len(line) {
		r, size := utf8.DecodeRuneInString(line[end:])
		if unicode.IsSpace(r) {
			break
		}

		end += size
	}

	return start, end
}
