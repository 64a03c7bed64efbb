package widget

import (
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// ScriptName is the file served for every embed URL
const ScriptName = "widget.js"

// DefaultMaxAge is the browser cache lifetime of the script
const DefaultMaxAge = time.Hour

//go:embed assets/widget.js
var assets embed.FS

// Assets returns the widget files compiled into the binary
func Assets() fs.FS {
	sub, err := fs.Sub(assets, "assets")
	if err != nil {
		panic(err)
	}
	return sub
}

// Source returns templateDir when set, so the script can be edited without a rebuild
func Source(templateDir string) fs.FS {
	if templateDir == "" {
		return Assets()
	}
	return os.DirFS(templateDir)
}

// Handler serves the embed script. The script is generic: the lookup code in
// the URL is read back by the script itself from its own src.
type Handler struct {
	fsys   fs.FS
	maxAge time.Duration
}

// NewHandler creates a new widget handler
func NewHandler(fsys fs.FS, maxAge time.Duration) *Handler {
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	return &Handler{fsys: fsys, maxAge: maxAge}
}

// ServeHTTP writes the script, or a comment-only 404 when it is missing
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, err := fs.ReadFile(h.fsys, ScriptName)
	w.Header().Set("Content-Type", "application/javascript")
	if err != nil {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("Embed script unavailable")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("// Embed script not found"))
		return
	}

	w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", int(h.maxAge.Seconds())))
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

// Snippet returns the script tag a site owner pastes into their pages
func Snippet(publicURL, lookupCode string) string {
	return fmt.Sprintf(`<script src="%s/embed/%s.js" async></script>`, strings.TrimRight(publicURL, "/"), lookupCode)
}
