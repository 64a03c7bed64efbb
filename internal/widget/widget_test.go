package widget

import (
	"bytes"
	"encoding/json"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandler_ServesScript(t *testing.T) {
	fsys := fstest.MapFS{
		ScriptName: {Data: []byte("console.log('hi')")},
	}
	h := NewHandler(fsys, time.Hour)

	req := httptest.NewRequest(http.MethodGet, "/embed/abcDEF123456.js", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/javascript", rec.Header().Get("Content-Type"))
	assert.Equal(t, "public, max-age=3600", rec.Header().Get("Cache-Control"))
	assert.Equal(t, "console.log('hi')", rec.Body.String())
}

func TestHandler_SameScriptForEveryCode(t *testing.T) {
	h := NewHandler(Assets(), 0)

	bodies := make([]string, 0, 2)
	for _, path := range []string{"/embed/aaaaaaaaaaaa.js", "/embed/bbbbbbbbbbbb.js"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusOK, rec.Code)
		bodies = append(bodies, rec.Body.String())
	}

	assert.Equal(t, bodies[0], bodies[1])
}

func TestHandler_MissingScript(t *testing.T) {
	h := NewHandler(fstest.MapFS{}, time.Hour)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/embed/abcDEF123456.js", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/javascript", rec.Header().Get("Content-Type"))
	assert.Equal(t, "// Embed script not found", rec.Body.String())
}

func TestAssets_EmbeddedScript(t *testing.T) {
	body, err := fs.ReadFile(Assets(), ScriptName)
	require.NoError(t, err)

	script := string(body)
	assert.Contains(t, script, "function ChatWidget(config)")
	assert.Contains(t, script, `"session_"`)
	assert.Contains(t, script, "/api/chat/")
	assert.Contains(t, script, "textContent = content")
	assert.Contains(t, script, "__([^_]+)__")
	assert.Contains(t, script, "\\b_([^_]+)_\\b")
}

// runMarkdown evaluates the embedded escapeHtml and renderMarkdown functions in node
func runMarkdown(t *testing.T, inputs []string) []string {
	t.Helper()

	node, err := exec.LookPath("node")
	if err != nil {
		t.Skip("node not found on PATH")
	}

	body, err := fs.ReadFile(Assets(), ScriptName)
	require.NoError(t, err)
	script := string(body)

	start := strings.Index(script, "function escapeHtml(")
	end := strings.Index(script, "function ChatWidget(")
	require.True(t, start >= 0 && end > start, "markdown functions not found in %s", ScriptName)

	program := script[start:end] + `
var inputs = JSON.parse(require("fs").readFileSync(0, "utf8"))
process.stdout.write(JSON.stringify(inputs.map(renderMarkdown)))
`
	path := filepath.Join(t.TempDir(), "markdown.js")
	require.NoError(t, os.WriteFile(path, []byte(program), 0o600))

	stdin, err := json.Marshal(inputs)
	require.NoError(t, err)

	cmd := exec.Command(node, path)
	cmd.Stdin = bytes.NewReader(stdin)
	out, err := cmd.Output()
	require.NoError(t, err)

	var rendered []string
	require.NoError(t, json.Unmarshal(out, &rendered))
	return rendered
}

func TestRenderMarkdown(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "asterisk emphasis and code",
			input: "**bold** and *italic* and `code`",
			want:  "<strong>bold</strong> and <em>italic</em> and <code>code</code>",
		},
		{
			name:  "underscore emphasis",
			input: "__bold__ and _italic_",
			want:  "<strong>bold</strong> and <em>italic</em>",
		},
		{
			name:  "identifiers keep underscores",
			input: "set snake_case_name here",
			want:  "set snake_case_name here",
		},
		{
			name:  "code span is literal",
			input: "`**x**` and **y**",
			want:  "<code>**x**</code> and <strong>y</strong>",
		},
		{
			name:  "lists are grouped",
			input: "Options:\n* one\n* two\n1. first\n2. second\nDone",
			want:  "Options:<br><ul><li>one</li><li>two</li></ul><ol><li>first</li><li>second</li></ol>Done",
		},
		{
			name:  "blank lines collapse",
			input: "a\n\n\n\nb",
			want:  "a<br><br>b",
		},
		{
			name:  "markup is escaped",
			input: "<img src=x onerror=alert(1)> `<b>`",
			want:  "&lt;img src=x onerror=alert(1)&gt; <code>&lt;b&gt;</code>",
		},
	}

	inputs := make([]string, len(tests))
	for i, tt := range tests {
		inputs[i] = tt.input
	}
	rendered := runMarkdown(t, inputs)
	require.Len(t, rendered, len(tests))

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, rendered[i])
		})
	}
}

func TestSource(t *testing.T) {
	dir := t.TempDir()
	assert.NotNil(t, Source(""))

	_, err := fs.ReadFile(Source(dir), ScriptName)
	assert.Error(t, err)
}

func TestSnippet(t *testing.T) {
	assert.Equal(t,
		`<script src="https://chat.example.com/embed/abcDEF123456.js" async></script>`,
		Snippet("https://chat.example.com/", "abcDEF123456"),
	)
}
