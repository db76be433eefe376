package parse

import "strings"

// Scan returns the prefix of text that forms the first structurally balanced
// value delimited by open and close. text must start with open; Scan does not
// search for a starting offset, callers slice text to where the value begins.
//
// Delimiters inside string literals are ignored and a backslash always
// consumes the following byte, so escaped quotes never flip the string state.
// The second return value is false when text does not start with open or the
// input ends before the depth returns to zero.
//
// Example:
//
//	value, ok := parse.Scan(`{"a": "x{y}z", "b":[1,2]} trailing`, '{', '}')
//	// value == `{"a": "x{y}z", "b":[1,2]}`, ok == true
func Scan(text string, open, close byte) (string, bool) {
	if len(text) == 0 || text[0] != open {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(text); i++ {
		c := text[i]

		if escaped {
			escaped = false
			continue
		}

		switch {
		case c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
			// Delimiters inside strings do not count.
		case c == open:
			depth++
		case c == close:
			depth--
			if depth == 0 {
				return text[:i+1], true
			}
		}
	}

	return "", false
}

// scanState summarises a full pass over a JSON-like buffer: which containers
// remain open, in nesting order, and whether the buffer ends inside a string
// literal. It shares the escape and string rules of [Scan].
type scanState struct {
	// open holds the unmatched '{' and '[' bytes, outermost first.
	open     []byte
	inString bool
	escaped  bool
	// lastQuote is the byte offset of the last unescaped quote, -1 if none.
	lastQuote int
}

// closers returns the bytes that close every open container, innermost first.
func (s scanState) closers() string {
	out := make([]byte, 0, len(s.open))
	for i := len(s.open) - 1; i >= 0; i-- {
		if s.open[i] == '{' {
			out = append(out, '}')
		} else {
			out = append(out, ']')
		}
	}
	return string(out)
}

// scanStructure walks text once and records the containers left open.
// A closer that does not match the innermost open container is ignored.
func scanStructure(text string) scanState {
	state := scanState{lastQuote: -1}

	for i := 0; i < len(text); i++ {
		c := text[i]

		if state.escaped {
			state.escaped = false
			continue
		}

		switch {
		case c == '\\':
			state.escaped = true
		case c == '"':
			state.inString = !state.inString
			state.lastQuote = i
		case state.inString:
		case c == '{' || c == '[':
			state.open = append(state.open, c)
		case c == '}' || c == ']':
			if n := len(state.open); n > 0 && state.open[n-1] == matchingOpener(c) {
				state.open = state.open[:n-1]
			}
		}
	}

	return state
}

func matchingOpener(closer byte) byte {
	if closer == '}' {
		return '{'
	}
	return '['
}

// MissingValue reports whether text holds a property whose value was never
// written: a colon followed by '}', ']', ',' or the end of the text, a key
// not followed by a colon, or a key or empty string value cut off before its
// closing quote. Such text only becomes valid when a value is invented.
func MissingValue(text string) bool {
	var (
		open        []byte
		inString    bool
		escaped     bool
		inKey       bool
		afterKey    bool
		expectValue bool
		stringStart int
		prev        byte // last significant byte outside strings
	)

	for i := 0; i < len(text); i++ {
		c := text[i]

		if escaped {
			escaped = false
			continue
		}

		if inString {
			switch c {
			case '\\':
				escaped = true
			case '"':
				inString = false
				afterKey = inKey
				prev = '"'
			}
			continue
		}

		switch c {
		case ' ', '\t', '\n', '\r':
			continue
		}

		if afterKey && c != ':' {
			return true
		}
		afterKey = false

		if expectValue {
			if c == '}' || c == ']' || c == ',' {
				return true
			}
			expectValue = false
		}

		switch c {
		case '"':
			inString = true
			stringStart = i
			inKey = len(open) > 0 && open[len(open)-1] == '{' && (prev == '{' || prev == ',')
		case ':':
			expectValue = true
		case '{', '[':
			open = append(open, c)
		case '}', ']':
			if n := len(open); n > 0 && open[n-1] == matchingOpener(c) {
				open = open[:n-1]
			}
		}
		prev = c
	}

	if inString {
		return inKey || strings.TrimSpace(text[stringStart+1:]) == ""
	}
	return expectValue || afterKey
}
