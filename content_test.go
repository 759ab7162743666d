package layouts_test

import (
	"testing"

	layouts "github.com/joetifa2003/layoutigo"

	"github.com/stretchr/testify/assert"
)

func TestSplitContent(t *testing.T) {
	enc := func(name string) string { return string(layouts.ContentFor(name)) }

	tests := []struct {
		name         string
		body         string
		expectedMain string
		expected     map[string]string
	}{
		{
			name:         "No Markers",
			body:         "<p>plain</p>\n<p>markup</p>",
			expectedMain: "<p>plain</p>\n<p>markup</p>",
			expected:     map[string]string{},
		},
		{
			name:         "Empty Body",
			body:         "",
			expectedMain: "",
			expected:     map[string]string{},
		},
		{
			name:         "Enclosed Block",
			body:         "main" + enc("side") + "content" + enc("side"),
			expectedMain: "main",
			expected:     map[string]string{"side": "content"},
		},
		{
			name:         "Open Blocks Run To Next Marker",
			body:         "main\n" + enc("head") + "\n<title>x</title>\n" + enc("foot") + "\n<p>bye</p>",
			expectedMain: "main",
			expected:     map[string]string{"head": "<title>x</title>", "foot": "<p>bye</p>"},
		},
		{
			name:         "Carriage Returns Trimmed",
			body:         "main\r\n" + enc("a") + "\r\nA\r\n" + enc("a") + "\r\n",
			expectedMain: "main",
			expected:     map[string]string{"a": "A"},
		},
		{
			name:         "Text After Closed Block Stays In Body",
			body:         "top" + enc("a") + "A" + enc("a") + "bottom",
			expectedMain: "topbottom",
			expected:     map[string]string{"a": "A"},
		},
		{
			name:         "Later Block Of Same Name Wins",
			body:         "m" + enc("a") + "1" + enc("b") + "2" + enc("a") + "3",
			expectedMain: "m",
			expected:     map[string]string{"a": "3", "b": "2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			main, blocks := layouts.SplitContent(tt.body)
			assert.Equal(t, tt.expectedMain, main)
			assert.Equal(t, tt.expected, blocks)
		})
	}
}

func TestContentFor(t *testing.T) {
	assert.Equal(t, "&&<>&&scripts&&<>&&", string(layouts.ContentFor("scripts")))
}

func TestSplitContent_EnclosedRoundTrip(t *testing.T) {
	contents := []string{"", "x", "<div>\n  multi\n  line\n</div>", "a & b <> c"}
	for _, c := range contents {
		body := "<main>page</main>" + string(layouts.ContentFor("n")) + c + string(layouts.ContentFor("n"))
		main, blocks := layouts.SplitContent(body)
		assert.Equal(t, "<main>page</main>", main)
		assert.Equal(t, c, blocks["n"])
	}
}
