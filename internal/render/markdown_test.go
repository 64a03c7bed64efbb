package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMarkdown(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "  \n", ""},
		{"plain", "Hello there", "Hello there"},
		{"bold and italic", "**Free** shipping on *all* orders", "<strong>Free</strong> shipping on <em>all</em> orders"},
		{"code span escapes", "Use `a<b` here", "Use <code>a&lt;b</code> here"},
		{"soft break", "line one\nline two", "line one<br>line two"},
		{"paragraphs", "first\n\nsecond", "first<br><br>second"},
		{"bullets", "* red\n* blue", "<ul><li>red</li><li>blue</li></ul>"},
		{"numbered", "1. order\n2. wait", "<ol><li>order</li><li>wait</li></ol>"},
		{"heading becomes strong", "# Returns", "<strong>Returns</strong>"},
		{"link keeps text only", "[track](https://example.com/track)", "track"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Markdown(tt.in))
		})
	}
}

func TestMarkdown_NeverEmitsRawHTML(t *testing.T) {
	inputs := []string{
		"<script>alert(1)</script>",
		"hi <img src=x onerror=alert(1)> there",
		"[x](javascript:alert(1))",
		"![pic](https://example.com/a.png)",
	}

	for _, in := range inputs {
		out := Markdown(in)
		assert.NotContains(t, out, "<script")
		assert.NotContains(t, out, "<img")
		assert.NotContains(t, out, "href")
	}

	assert.Contains(t, Markdown("<script>alert(1)</script>"), "&lt;script&gt;")
}

func TestEscape(t *testing.T) {
	assert.Equal(t, "a &lt;b&gt;<br>c", Escape("a <b>\nc\n"))
}
