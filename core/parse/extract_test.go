package parse

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		wantText     string
		wantStrategy Strategy
	}{
		{
			name:         "plain object",
			input:        `  {"a": 1}  `,
			wantText:     `{"a": 1}`,
			wantStrategy: StrategyDirect,
		},
		{
			name:         "plain array",
			input:        `[1, 2, 3]`,
			wantText:     `[1, 2, 3]`,
			wantStrategy: StrategyDirect,
		},
		{
			name:         "leading object with trailing prose",
			input:        `{"a": {"b": 2}} hope this helps`,
			wantText:     `{"a": {"b": 2}}`,
			wantStrategy: StrategyLeadingObject,
		},
		{
			name:         "leading array with trailing prose",
			input:        `[{"id": 1}] <- the list`,
			wantText:     `[{"id": 1}]`,
			wantStrategy: StrategyLeadingArray,
		},
		{
			name:         "json fence",
			input:        "Sure!\n```json\n{\"ok\": true}\n```\nAnything else?",
			wantText:     `{"ok": true}`,
			wantStrategy: StrategyFenced,
		},
		{
			name:         "untagged fence",
			input:        "```\n[\"a\", \"b\"]\n```",
			wantText:     `["a", "b"]`,
			wantStrategy: StrategyFenced,
		},
		{
			name:         "fence with prose inside",
			input:        "```json\nResult: {\"n\": 3} (final)\n```",
			wantText:     `{"n": 3}`,
			wantStrategy: StrategyFenced,
		},
		{
			name:         "object after prose",
			input:        "Here is the result:\n\n{\"status\":\"success\",\"data\":{\"items\":[{\"id\":1},{\"id\":2}],\"total\":2}}\n\nDone.",
			wantText:     `{"status":"success","data":{"items":[{"id":1},{"id":2}],"total":2}}`,
			wantStrategy: StrategyFirstObject,
		},
		{
			name:         "object wins over earlier array",
			input:        `Data [1, 2] then {"a": 1}`,
			wantText:     `{"a": 1}`,
			wantStrategy: StrategyFirstObject,
		},
		{
			name:         "array after prose",
			input:        `The ids are [4, 5, 6].`,
			wantText:     `[4, 5, 6]`,
			wantStrategy: StrategyFirstArray,
		},
		{
			name:         "truncated object is repaired",
			input:        `Answer: {"outer": {"inner": [1, 2`,
			wantText:     `{"outer": {"inner": [1, 2]}}`,
			wantStrategy: StrategyRepairObject,
		},
		{
			name:         "truncated array is repaired",
			input:        `List: ["a", "b",`,
			wantText:     `["a", "b"]`,
			wantStrategy: StrategyRepairArray,
		},
		{
			name:         "trailing comma inside object after prose",
			input:        `Result: {"a": 1, "b": 2,} ok`,
			wantText:     `{"a": 1, "b": 2}`,
			wantStrategy: StrategyGreedy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Extract(tt.input)
			if !ok {
				t.Fatalf("Extract(%q) found nothing", tt.input)
			}
			if got.Text != tt.wantText {
				t.Errorf("Extract() text = %q, want %q", got.Text, tt.wantText)
			}
			if got.Strategy != tt.wantStrategy {
				t.Errorf("Extract() strategy = %v, want %v", got.Strategy, tt.wantStrategy)
			}
		})
	}
}

func TestExtract_NotFound(t *testing.T) {
	inputs := map[string]string{
		"empty":                    "",
		"whitespace":               "   \n\t ",
		"prose only":               "I could not produce a result.",
		"bare string":              `"just a string"`,
		"bare number":              `42`,
		"key truncated at colon":   `{"a": 1, "b":`,
		"empty string value tail":  `{"a": "`,
		"closers without openers":  `}}]]`,
		"unquoted keys everywhere": `{a: 1, b: 2}`,
	}

	for name, input := range inputs {
		t.Run(name, func(t *testing.T) {
			if got, ok := Extract(input); ok {
				t.Errorf("Extract(%q) = %+v, want not found", input, got)
			}
		})
	}
}

func TestExtract_ScenarioValues(t *testing.T) {
	raw := "Here is the result:\n\n{\"status\":\"success\",\"data\":{\"items\":[{\"id\":1},{\"id\":2}],\"total\":2}}\n\nDone."

	candidate, ok := Extract(raw)
	if !ok {
		t.Fatal("expected a candidate")
	}

	var payload struct {
		Status string `json:"status"`
		Data   struct {
			Items []struct {
				ID int `json:"id"`
			} `json:"items"`
			Total int `json:"total"`
		} `json:"data"`
	}
	if err := json.Unmarshal([]byte(candidate.Text), &payload); err != nil {
		t.Fatalf("candidate does not decode: %v", err)
	}

	if payload.Data.Total != 2 {
		t.Errorf("total = %d, want 2", payload.Data.Total)
	}
	if len(payload.Data.Items) != 2 {
		t.Errorf("len(items) = %d, want 2", len(payload.Data.Items))
	}
}

func TestExtract_HTMLRenderedOutput(t *testing.T) {
	raw := `<p>Here you go:</p><pre><code class="language-json">{&quot;name&quot;: &quot;Ada&quot;, &quot;tags&quot;: [&quot;x&quot;]}</code></pre>`

	candidate, ok := Extract(raw)
	if !ok {
		t.Fatalf("Extract() found nothing in HTML output")
	}
	if candidate.Strategy != StrategyHTML {
		t.Errorf("strategy = %v, want %v", candidate.Strategy, StrategyHTML)
	}

	var got map[string]any
	if err := json.Unmarshal([]byte(candidate.Text), &got); err != nil {
		t.Fatalf("candidate does not parse: %v", err)
	}
	want := map[string]any{"name": "Ada", "tags": []any{"x"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("HTML candidate mismatch (-want +got):\n%s", diff)
	}
}

func TestLooksLikeJSON(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{`{}`, true},
		{`[]`, true},
		{` {"a": [1]} `, true},
		{`"text"`, false},
		{`123`, false},
		{`null`, false},
		{`{"a": }`, false},
		{``, false},
	}

	for _, tt := range tests {
		if got := LooksLikeJSON(tt.input); got != tt.want {
			t.Errorf("LooksLikeJSON(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestStrategyString(t *testing.T) {
	if got := StrategyRepairObject.String(); got != "repair_object" {
		t.Errorf("String() = %q, want repair_object", got)
	}
	if got := Strategy(99).String(); got != "unknown" {
		t.Errorf("String() = %q, want unknown", got)
	}
}
