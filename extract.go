package layouts

import (
	"regexp"
	"strings"
)

// Extraction works on text, not on a parsed document. A script whose body
// contains a literal "</script>" ends at that literal.
var (
	scriptPattern = regexp.MustCompile(`(?is)<script.*?>.*?</script>`)
	stylePattern  = regexp.MustCompile(`(?is)(?:<style.*?>.*?</style>)|(?:<link.*?>(?:</link>)?)`)
	metaPattern   = regexp.MustCompile(`(?is)<meta.*?>`)
)

// ExtractScripts removes every <script> element from body and returns the
// remaining markup together with the removed elements joined by newlines.
func ExtractScripts(body string) (string, string) {
	return extract(scriptPattern, body)
}

// ExtractStyles removes <style> elements and <link> tags from body.
func ExtractStyles(body string) (string, string) {
	return extract(stylePattern, body)
}

// ExtractMetas removes <meta> tags from body.
func ExtractMetas(body string) (string, string) {
	return extract(metaPattern, body)
}

func extract(pattern *regexp.Regexp, body string) (string, string) {
	found := pattern.FindAllString(body, -1)
	if len(found) == 0 {
		return body, ""
	}

	return pattern.ReplaceAllLiteralString(body, ""), strings.Join(found, "\n")
}
