package layouts

import (
	"html/template"
	"regexp"
	"strings"
)

// Sentinel delimits named content blocks in rendered markup. Views must not
// emit it for any other purpose.
const Sentinel = "&&<>&&"

var contentPattern = regexp.MustCompile(`\r?\n?` + regexp.QuoteMeta(Sentinel) + `.+?` + regexp.QuoteMeta(Sentinel) + `\r?\n?`)

// ContentFor returns the marker that opens and closes the content block
// called name. Views emit it on both sides of the block:
//
//	{{ call .contentFor "scripts" }}
//	<script src="/app.js"></script>
//	{{ call .contentFor "scripts" }}
func ContentFor(name string) template.HTML {
	return template.HTML(Sentinel + name + Sentinel)
}

// SplitContent separates body into the main markup preceding the first
// marker and the named blocks that follow. A marker names the segment after
// it, up to the next marker. A marker repeating the name of the block it
// follows closes that block, and the text after it is appended to the main
// markup. Markers with an empty name are skipped.
func SplitContent(body string) (string, map[string]string) {
	blocks := make(map[string]string)

	markers := contentPattern.FindAllString(body, -1)
	if len(markers) == 0 {
		return body, blocks
	}

	segments := contentPattern.Split(body, -1)
	main := segments[0]
	open := ""
	for i, marker := range markers {
		if i+1 >= len(segments) {
			break
		}
		segment := segments[i+1]

		name := markerName(marker)
		switch {
		case name == "":
			open = ""
		case name == open:
			main += segment
			open = ""
		default:
			blocks[name] = segment
			open = name
		}
	}

	return main, blocks
}

func markerName(marker string) string {
	_, rest, _ := strings.Cut(marker, Sentinel)
	name, _, _ := strings.Cut(rest, Sentinel)
	return name
}
