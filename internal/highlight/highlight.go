// Package highlight renders source lines with ANSI syntax colors for the
// diff pane. Chroma does the lexing; rendered lines are memoized in a
// bounded cache because the same lines re-render on every scroll.
package highlight

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"
)

const styleName = "monokai"

// Highlighter colors single lines of a file, keyed by the file's name for
// lexer selection.
type Highlighter struct {
	cache *Cache
}

// New creates a highlighter backed by the given cache. A nil cache gets the
// default capacity.
func New(cache *Cache) *Highlighter {
	if cache == nil {
		cache = NewCache(DefaultCacheCapacity)
	}
	return &Highlighter{cache: cache}
}

// Line returns line with syntax colors applied for the language implied by
// filename. On any failure the line is returned unstyled; highlighting is
// best-effort.
func (h *Highlighter) Line(filename, line string) string {
	if line == "" {
		return line
	}
	key := filename + "\x00" + line
	if v, ok := h.cache.Get(key); ok {
		return v
	}

	lexer := lexers.Match(filename)
	if lexer == nil {
		h.cache.Put(key, line)
		return line
	}
	lexer = chroma.Coalesce(lexer)

	style := chromaStyles.Get(styleName)
	if style == nil {
		style = chromaStyles.Fallback
	}
	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, line)
	if err != nil {
		h.cache.Put(key, line)
		return line
	}
	var buf strings.Builder
	if err := formatter.Format(&buf, style, iterator); err != nil {
		h.cache.Put(key, line)
		return line
	}
	out := strings.TrimRight(buf.String(), "\n")
	h.cache.Put(key, out)
	return out
}
