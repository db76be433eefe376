package parse

import "testing"

func TestScan(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		open   byte
		close  byte
		want   string
		wantOK bool
	}{
		{
			name:   "braces inside strings are ignored",
			input:  `{"a": "x{y}z", "b":[1,2]} trailing`,
			open:   '{',
			close:  '}',
			want:   `{"a": "x{y}z", "b":[1,2]}`,
			wantOK: true,
		},
		{
			name:   "escaped quote does not end the string",
			input:  `{"a": "say \"}\" now"} tail`,
			open:   '{',
			close:  '}',
			want:   `{"a": "say \"}\" now"}`,
			wantOK: true,
		},
		{
			name:   "escaped backslash before closing quote",
			input:  `{"path": "C:\\"} more`,
			open:   '{',
			close:  '}',
			want:   `{"path": "C:\\"}`,
			wantOK: true,
		},
		{
			name:   "deep nesting",
			input:  `[[[[[[1]]]]], [2]] x`,
			open:   '[',
			close:  ']',
			want:   `[[[[[[1]]]]], [2]]`,
			wantOK: true,
		},
		{
			name:   "brackets inside strings are ignored",
			input:  `["]", "[["]`,
			open:   '[',
			close:  ']',
			want:   `["]", "[["]`,
			wantOK: true,
		},
		{
			name:   "unbalanced input",
			input:  `{"a": {"b": 1}`,
			open:   '{',
			close:  '}',
			wantOK: false,
		},
		{
			name:   "input not starting with opener",
			input:  ` {"a": 1}`,
			open:   '{',
			close:  '}',
			wantOK: false,
		},
		{
			name:   "empty input",
			input:  "",
			open:   '{',
			close:  '}',
			wantOK: false,
		},
		{
			name:   "unicode content",
			input:  `{"emoji": "🎉 {ok}"}`,
			open:   '{',
			close:  '}',
			want:   `{"emoji": "🎉 {ok}"}`,
			wantOK: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Scan(tt.input, tt.open, tt.close)
			if ok != tt.wantOK {
				t.Fatalf("Scan() ok = %v, want %v (got %q)", ok, tt.wantOK, got)
			}
			if got != tt.want {
				t.Errorf("Scan() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestScanStructure(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		wantClosers  string
		wantInString bool
	}{
		{name: "balanced", input: `{"a": [1]}`},
		{name: "open object and array", input: `{"a": [1, 2`, wantClosers: "]}"},
		{name: "nested in stack order", input: `{"a": [{"b": 1`, wantClosers: "}]}"},
		{name: "ends inside string", input: `{"a": "hel`, wantClosers: "}", wantInString: true},
		{name: "stray closer ignored", input: `]}{`, wantClosers: "}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := scanStructure(tt.input)
			if got := state.closers(); got != tt.wantClosers {
				t.Errorf("closers() = %q, want %q", got, tt.wantClosers)
			}
			if state.inString != tt.wantInString {
				t.Errorf("inString = %v, want %v", state.inString, tt.wantInString)
			}
		})
	}
}

func TestMissingValue(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{name: "valid object", input: `{"a": {"b": []}, "c": ""}`},
		{name: "strings in arrays", input: `{"a": ["x", "y"]}`},
		{name: "truncated after a value", input: `{"name": "John", "age": 30`},
		{name: "truncated inside a value", input: `{"a": "hel`},
		{name: "unquoted keys", input: `{name: 'John', age: 30}`},
		{name: "colon inside a string", input: `{"a": "b:"}`},
		{name: "cut after colon", input: `{"a": 1, "b":`, want: true},
		{name: "cut after colon with space", input: `{"a": 1, "b": `, want: true},
		{name: "colon before closer", input: `{"a": }`, want: true},
		{name: "colon before comma", input: `{"a": , "b": 2}`, want: true},
		{name: "key without colon", input: `{"a": 1, "b"`, want: true},
		{name: "unterminated key", input: `{"a": 1, "b`, want: true},
		{name: "empty unterminated value", input: `{"a": "`, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MissingValue(tt.input); got != tt.want {
				t.Errorf("MissingValue(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
