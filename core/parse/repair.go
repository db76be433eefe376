package parse

import (
	"regexp"
	"strings"
)

var (
	// danglingKeyPattern matches a property that lost its value to truncation.
	danglingKeyPattern = regexp.MustCompile(`,\s*"(?:[^"\\]|\\.)*"\s*:\s*$`)

	danglingCommaPattern = regexp.MustCompile(`,\s*$`)
)

// Repair applies best-effort fixes to truncated or slightly malformed JSON
// text and returns the result. It never fails and never guarantees a valid
// document: callers must parse the output again before trusting it.
//
// The passes run in a fixed order:
//
//  1. commas directly before a closing '}' or ']' are removed
//  2. raw newline, carriage return and tab inside strings are escaped, other
//     control characters (0x00-0x1F and DEL) are dropped
//  3. the text is scanned for containers that are still open and for an
//     unterminated string
//  4. an unterminated string is closed when it already holds some content
//  5. a closer is appended for every open container, innermost first, so an
//     array truncated inside an object gets its ']' before the '}'
//  6. a dangling `, "key":` or ',' at the very end is cut
//  7. pass 1 runs again
//
// A property truncated right after its colon (`{"a": 1, "b":`) stays invalid.
// No value is invented for it.
func Repair(text string) string {
	out := removeTrailingCommas(text)
	out = escapeControlCharacters(out)

	state := scanStructure(out)
	if state.inString {
		out = closeOpenString(out, state)
	}

	out += state.closers()

	out = stripDanglingFragment(out)
	return removeTrailingCommas(out)
}

// removeTrailingCommas drops every comma that is followed, after optional
// whitespace, by '}' or ']'. Commas inside string literals are kept.
func removeTrailingCommas(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	inString := false
	escaped := false

	for i := 0; i < len(text); i++ {
		c := text[i]

		if escaped {
			escaped = false
			b.WriteByte(c)
			continue
		}

		switch {
		case c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case !inString && c == ',' && closesNext(text, i+1):
			continue
		}

		b.WriteByte(c)
	}

	return b.String()
}

// closesNext reports whether the first non-whitespace byte at or after from is
// a closing delimiter.
func closesNext(text string, from int) bool {
	for j := from; j < len(text); j++ {
		switch text[j] {
		case ' ', '\t', '\n', '\r':
			continue
		case '}', ']':
			return true
		default:
			return false
		}
	}
	return false
}

// escapeControlCharacters rewrites raw control bytes. Inside a string literal
// newline, carriage return and tab become their two-character escapes; every
// other control byte, DEL included, is dropped. Outside strings the three
// whitespace bytes are legal JSON and are kept as they are.
func escapeControlCharacters(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	inString := false
	escaped := false

	for i := 0; i < len(text); i++ {
		c := text[i]

		if c == 0x7f {
			continue
		}

		if c < 0x20 {
			switch {
			case !inString && (c == '\n' || c == '\r' || c == '\t'):
				b.WriteByte(c)
			case inString && c == '\n':
				b.WriteString(`\n`)
			case inString && c == '\r':
				b.WriteString(`\r`)
			case inString && c == '\t':
				b.WriteString(`\t`)
			}
			escaped = false
			continue
		}

		if escaped {
			escaped = false
		} else if c == '\\' {
			escaped = true
		} else if c == '"' {
			inString = !inString
		}

		b.WriteByte(c)
	}

	return b.String()
}

// closeOpenString terminates a string literal cut off by truncation. The quote
// is only added when the literal already carries non-blank content; an empty
// tail means the cut happened before any value was written.
func closeOpenString(text string, state scanState) string {
	if state.escaped {
		// A lone trailing backslash would escape the closing quote.
		text = text[:len(text)-1]
	}

	if state.lastQuote < 0 || state.lastQuote >= len(text) {
		return text
	}

	if strings.TrimSpace(text[state.lastQuote+1:]) == "" {
		return text
	}

	return text + `"`
}

// stripDanglingFragment cuts a trailing `, "key":` or ',' left at the end of
// the text.
func stripDanglingFragment(text string) string {
	if loc := danglingKeyPattern.FindStringIndex(text); loc != nil {
		return text[:loc[0]]
	}
	if loc := danglingCommaPattern.FindStringIndex(text); loc != nil {
		return text[:loc[0]]
	}
	return text
}
