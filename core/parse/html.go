package parse

import (
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

// htmlTagPattern detects replies rendered as HTML by a gateway or chat UI
// proxy, typically with the JSON inside <pre><code>.
var htmlTagPattern = regexp.MustCompile(`(?i)<(pre|code|p|div|br|html|body|span)[\s>/]`)

func looksLikeHTML(text string) bool {
	return htmlTagPattern.MatchString(text)
}

// htmlToMarkdown converts HTML-rendered model output to Markdown so that code
// blocks become fences and entities such as &quot; are decoded. The boolean is
// false when conversion fails or changes nothing.
func htmlToMarkdown(text string) (string, bool) {
	markdown, err := htmltomarkdown.ConvertString(text)
	if err != nil {
		return "", false
	}

	markdown = strings.TrimSpace(markdown)
	if markdown == "" || markdown == strings.TrimSpace(text) {
		return "", false
	}

	return markdown, true
}
