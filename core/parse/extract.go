package parse

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Strategy identifies which step of the extraction cascade produced a
// [Candidate]. Strategies are tried in declaration order; the order is a trial
// order, not a quality ranking.
type Strategy int

const (
	// StrategyDirect parses the whole trimmed input.
	StrategyDirect Strategy = iota + 1
	// StrategyLeadingObject scans a balanced object at the start of the input.
	StrategyLeadingObject
	// StrategyLeadingArray scans a balanced array at the start of the input.
	StrategyLeadingArray
	// StrategyFenced reads the first markdown code fence.
	StrategyFenced
	// StrategyFirstObject scans a balanced object from the first '{'.
	StrategyFirstObject
	// StrategyFirstArray scans a balanced array from the first '['.
	StrategyFirstArray
	// StrategyRepairObject repairs everything from the first '{' onwards.
	StrategyRepairObject
	// StrategyRepairArray repairs everything from the first '[' onwards,
	// used only when no '{' comes before it.
	StrategyRepairArray
	// StrategyGreedy repairs the span between the first opener and the last closer.
	StrategyGreedy
	// StrategyHTML converts HTML-rendered output to Markdown and runs the
	// cascade again on the result.
	StrategyHTML
)

var strategyNames = map[Strategy]string{
	StrategyDirect:        "direct",
	StrategyLeadingObject: "leading_object",
	StrategyLeadingArray:  "leading_array",
	StrategyFenced:        "fenced",
	StrategyFirstObject:   "first_object",
	StrategyFirstArray:    "first_array",
	StrategyRepairObject:  "repair_object",
	StrategyRepairArray:   "repair_array",
	StrategyGreedy:        "greedy",
	StrategyHTML:          "html",
}

// String returns the snake_case name of the strategy, as used in log attributes.
func (s Strategy) String() string {
	if name, ok := strategyNames[s]; ok {
		return name
	}
	return "unknown"
}

// Candidate is the JSON text found by [Extract] together with the strategy
// that found it. Text always parses as a JSON object or array.
type Candidate struct {
	Text     string
	Strategy Strategy
}

var fencePattern = regexp.MustCompile("(?s)```(?:json|JSON)?[ \\t]*\\r?\\n?(.*?)```")

// Extract locates a JSON object or array inside raw model output. It runs an
// ordered cascade of strategies and returns the first result that parses as
// JSON with an object or array root. The boolean is false when no strategy
// succeeds; empty or blank input returns false without running any strategy.
//
// When the input holds both an object and an array, the object-based steps
// always run before the array-based ones regardless of which comes first in
// the text:
//
//	c, _ := parse.Extract(`Data [1, 2] then {"a": 1}`)
//	// c.Text == `{"a": 1}`
//
// Extract is pure and safe for concurrent use.
func Extract(raw string) (Candidate, bool) {
	if strings.TrimSpace(raw) == "" {
		return Candidate{}, false
	}

	if candidate, ok := extractStructural(raw); ok {
		return candidate, true
	}

	if looksLikeHTML(raw) {
		if markdown, ok := htmlToMarkdown(raw); ok {
			if candidate, ok := extractStructural(markdown); ok {
				return Candidate{Text: candidate.Text, Strategy: StrategyHTML}, true
			}
		}
	}

	return Candidate{}, false
}

// extractStructural runs strategies 1 to 9 of the cascade.
func extractStructural(raw string) (Candidate, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Candidate{}, false
	}

	found := func(text string, strategy Strategy) (Candidate, bool) {
		return Candidate{Text: text, Strategy: strategy}, true
	}

	if LooksLikeJSON(trimmed) {
		return found(trimmed, StrategyDirect)
	}

	if strings.HasPrefix(trimmed, "{") {
		if value, ok := Scan(trimmed, '{', '}'); ok && LooksLikeJSON(value) {
			return found(value, StrategyLeadingObject)
		}
	}

	if strings.HasPrefix(trimmed, "[") {
		if value, ok := Scan(trimmed, '[', ']'); ok && LooksLikeJSON(value) {
			return found(value, StrategyLeadingArray)
		}
	}

	if value, ok := extractFenced(trimmed); ok {
		return found(value, StrategyFenced)
	}

	firstBrace := strings.IndexByte(trimmed, '{')
	firstBracket := strings.IndexByte(trimmed, '[')

	if firstBrace >= 0 {
		if value, ok := Scan(trimmed[firstBrace:], '{', '}'); ok && LooksLikeJSON(value) {
			return found(value, StrategyFirstObject)
		}
	}

	if firstBracket >= 0 {
		if value, ok := Scan(trimmed[firstBracket:], '[', ']'); ok && LooksLikeJSON(value) {
			return found(value, StrategyFirstArray)
		}
	}

	if firstBrace >= 0 {
		if repaired := Repair(trimmed[firstBrace:]); LooksLikeJSON(repaired) {
			return found(repaired, StrategyRepairObject)
		}
	}

	if firstBracket >= 0 && (firstBrace < 0 || firstBracket < firstBrace) {
		if repaired := Repair(trimmed[firstBracket:]); LooksLikeJSON(repaired) {
			return found(repaired, StrategyRepairArray)
		}
	}

	if value, ok := greedySpan(trimmed, firstBrace, firstBracket); ok {
		if repaired := Repair(value); LooksLikeJSON(repaired) {
			return found(repaired, StrategyGreedy)
		}
	}

	return Candidate{}, false
}

// extractFenced returns the JSON held by the first markdown code fence. The
// fence content is tried as a whole first, then from its own first '{'.
func extractFenced(text string) (string, bool) {
	match := fencePattern.FindStringSubmatch(text)
	if match == nil {
		return "", false
	}

	inner := strings.TrimSpace(match[1])
	if LooksLikeJSON(inner) {
		return inner, true
	}

	if brace := strings.IndexByte(inner, '{'); brace >= 0 {
		if value, ok := Scan(inner[brace:], '{', '}'); ok && LooksLikeJSON(value) {
			return value, true
		}
	}

	return "", false
}

// greedySpan returns text from the earliest opener to the latest closer.
func greedySpan(text string, firstBrace, firstBracket int) (string, bool) {
	start := firstBrace
	if start < 0 || (firstBracket >= 0 && firstBracket < start) {
		start = firstBracket
	}
	if start < 0 {
		return "", false
	}

	end := max(strings.LastIndexByte(text, '}'), strings.LastIndexByte(text, ']'))
	if end <= start {
		return "", false
	}

	return text[start : end+1], true
}

// LooksLikeJSON reports whether text parses as JSON and its root value is an
// object or an array. Bare strings, numbers, booleans and null are rejected.
func LooksLikeJSON(text string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return false
	}
	if trimmed[0] != '{' && trimmed[0] != '[' {
		return false
	}
	return json.Valid([]byte(trimmed))
}
