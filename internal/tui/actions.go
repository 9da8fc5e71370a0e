package tui

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/unformat/shredder/internal/classify"
	"github.com/unformat/shredder/internal/engine"
	"github.com/unformat/shredder/internal/report"
	"github.com/unformat/shredder/internal/session"
	"github.com/unformat/shredder/internal/types"
)

const maxPreviewLines = 200

// loadCmd reads path from disk and inspects it through the session.
func loadCmd(sess *session.Session, path string) tea.Cmd {
	return func() tea.Msg {
		data, err := os.ReadFile(path)
		if err != nil {
			return loadedMsg{path: path, err: err}
		}
		name := filepath.Base(path)
		f := engine.File{Name: name, MIME: classify.Sniff(data, name), Data: data}
		_, err = sess.Load(f)
		return loadedMsg{path: path, err: err}
	}
}

func shredCmd(sess *session.Session) tea.Cmd {
	return func() tea.Msg {
		_, err := sess.Shred()
		return shreddedMsg{err: err}
	}
}

// saveCmd writes the artifact next to source, or under outDir when set.
func saveCmd(art engine.Artifact, source, outDir string) tea.Cmd {
	return func() tea.Msg {
		dir := outDir
		if dir == "" {
			dir = filepath.Dir(source)
		}
		if dir == "" {
			dir = "."
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return savedMsg{err: err}
		}
		path := filepath.Join(dir, art.Name)
		if err := os.WriteFile(path, art.Data, 0o644); err != nil {
			return savedMsg{err: err}
		}
		return savedMsg{path: path}
	}
}

// previewOf renders cleaned text with syntax highlighting; binary outputs get
// a one-line summary.
func previewOf(art engine.Artifact, cat types.Category) string {
	if cat != types.CatText {
		return fmt.Sprintf("%s  %s  %s", art.Name, art.MIME, report.FormatBytes(int64(len(art.Data)), 2))
	}
	text := string(art.Data)
	lines := strings.Split(text, "\n")
	if len(lines) > maxPreviewLines {
		text = strings.Join(lines[:maxPreviewLines], "\n") + "\n..."
	}
	return highlightCode(text, art.Name)
}

func highlightCode(code string, filename string) string {
	lexer := lexers.Match(filename)
	if lexer == nil {
		ext := filepath.Ext(filename)
		if ext != "" {
			lexer = lexers.Match("file" + ext)
		}
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := styles.Get("monokai")
	if style == nil {
		style = styles.Fallback
	}
	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}
	var buf bytes.Buffer
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return code
	}
	return buf.String()
}
