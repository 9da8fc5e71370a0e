package tui

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unformat/shredder/internal/engine"
	"github.com/unformat/shredder/internal/session"
	"github.com/unformat/shredder/internal/types"
)

func newTestModel(t *testing.T) Model {
	t.Helper()
	eng := engine.New(engine.WithClock(func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC) }))
	m := NewModel(session.New(eng), WithPrefs(DefaultPrefs()))
	m.savePrefs = nil
	return m
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out
}

// loaded drives a load of path to completion.
func loaded(t *testing.T, m Model, path string) Model {
	t.Helper()
	cmd := loadCmd(m.sess, path)
	m.busy = true
	return update(t, m, cmd())
}

func TestLoad_ReviewStage(t *testing.T) {
	m := newTestModel(t)
	path := writeFile(t, "app.log", "user ops@example.com from 10.1.2.3\n")

	m = loaded(t, m, path)
	assert.False(t, m.busy)
	assert.Equal(t, session.StageReview, m.sess.Stage())
	assert.Len(t, m.table.Rows(), 2)
	assert.Equal(t, "HIGH", m.table.Rows()[0][0])
	assert.Contains(t, m.View(), "REVIEW")
	assert.Contains(t, m.View(), "LOG")
}

func TestLoad_MissingFile(t *testing.T) {
	m := newTestModel(t)
	m = loaded(t, m, filepath.Join(t.TempDir(), "nope.txt"))
	assert.Equal(t, session.StageIdle, m.sess.Stage())
	assert.True(t, strings.HasPrefix(m.status, "Error:"))
}

func TestLoad_Unsupported(t *testing.T) {
	m := newTestModel(t)
	m = loaded(t, m, writeFile(t, "blob.bin", "\x00\x01\x02\x03"))
	assert.Equal(t, session.StageIdle, m.sess.Stage())
	assert.Contains(t, m.status, "unsupported file type")
}

func TestEnterStartsLoad(t *testing.T) {
	m := newTestModel(t)
	m.input.SetValue(writeFile(t, "notes.txt", "clean"))
	next, cmd := m.Update(key("enter"))
	m = next.(Model)
	assert.True(t, m.busy)
	require.NotNil(t, cmd)

	// keys are ignored while busy
	next, cmd = m.Update(key("q"))
	assert.Nil(t, cmd)
	assert.False(t, next.(Model).quitting)
}

func TestQOnlyQuitsOutsidePrompt(t *testing.T) {
	m := newTestModel(t)
	m = update(t, m, key("q"))
	assert.False(t, m.quitting)
	assert.Equal(t, "q", m.input.Value())

	m = loaded(t, newTestModel(t), writeFile(t, "notes.txt", "clean"))
	_, cmd := m.Update(key("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestShredSaveCopy(t *testing.T) {
	m := newTestModel(t)
	var copied string
	m.copy = func(s string) error { copied = s; return nil }
	path := writeFile(t, "app.json", `{"key":"sk-abcdefghijklmnopqrstuvwx"}`)
	m = loaded(t, m, path)

	next, cmd := m.Update(key("s"))
	m = next.(Model)
	require.NotNil(t, cmd)
	assert.True(t, m.busy)
	m = update(t, m, shredCmd(m.sess)())
	assert.Equal(t, session.StageDone, m.sess.Stage())
	assert.Contains(t, m.View(), "OUTPUT CLEAN_app.json")

	m = update(t, m, key("c"))
	assert.Empty(t, copied)

	_, cmd = m.Update(key("d"))
	require.NotNil(t, cmd)
	m = update(t, m, cmd())
	want := filepath.Join(filepath.Dir(path), "CLEAN_app.json")
	assert.Equal(t, want, m.saved)
	data, err := os.ReadFile(want)
	require.NoError(t, err)
	assert.Equal(t, `{"key":"sk-********************"}`, string(data))

	_, cmd = m.Update(key("c"))
	require.NotNil(t, cmd)
	m = update(t, m, cmd())
	assert.Equal(t, want, copied)
	assert.Equal(t, "Copied: "+want, m.status)
}

func TestCopyError(t *testing.T) {
	m := newTestModel(t)
	m.copy = func(string) error { return errors.New("no display") }
	m.saved = "/tmp/CLEAN_x.txt"
	msg := m.copyPath()()
	assert.Equal(t, statusMsg("Clipboard error: no display"), msg)
}

func TestSaveToOutDir(t *testing.T) {
	out := filepath.Join(t.TempDir(), "clean")
	msg := saveCmd(engine.Artifact{Name: "CLEAN_a.txt", Data: []byte("x")}, "/somewhere/a.txt", out)()
	saved, ok := msg.(savedMsg)
	require.True(t, ok)
	require.NoError(t, saved.err)
	assert.Equal(t, filepath.Join(out, "CLEAN_a.txt"), saved.path)
}

func TestShredIgnoredAfterDone(t *testing.T) {
	m := newTestModel(t)
	m = loaded(t, m, writeFile(t, "notes.txt", "clean"))
	m = update(t, m, shredCmd(m.sess)())
	_, cmd := m.Update(key("s"))
	assert.Nil(t, cmd, "done stage does not shred again")
}

func TestReset(t *testing.T) {
	m := newTestModel(t)
	m = loaded(t, m, writeFile(t, "notes.txt", "10.0.0.1"))
	m = update(t, m, key("r"))
	assert.Equal(t, session.StageIdle, m.sess.Stage())
	assert.Empty(t, m.table.Rows())
	assert.Empty(t, m.input.Value())
	assert.Contains(t, m.View(), "file>")
}

func TestHideValues(t *testing.T) {
	m := newTestModel(t)
	var saved []Prefs
	m.savePrefs = func(p Prefs) error { saved = append(saved, p); return nil }
	m = loaded(t, m, writeFile(t, "notes.txt", "10.0.0.1"))
	assert.Equal(t, "Found 1 instance(s)", m.table.Rows()[0][2])

	m = update(t, m, key("h"))
	assert.Equal(t, "Foun***", m.table.Rows()[0][2])
	require.Len(t, saved, 1)
	assert.True(t, saved[0].HideValues)
}

func TestLogMsgRefreshesLog(t *testing.T) {
	m := newTestModel(t)
	m = loaded(t, m, writeFile(t, "notes.txt", "clean"))
	m = update(t, m, logMsg{})
	assert.Contains(t, m.logView.View(), "TEXT_ANALYSIS_COMPLETE")
}

func TestWindowResize(t *testing.T) {
	m := newTestModel(t)
	m = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	assert.Equal(t, 118, m.logView.Width)
	assert.Equal(t, 10, m.logView.Height)
	assert.Equal(t, 118, m.preview.Width)
}

func TestCtrlCQuits(t *testing.T) {
	m := newTestModel(t)
	m = update(t, m, key("ctrl+c"))
	assert.True(t, m.quitting)
	assert.Empty(t, m.View())
}

func TestMaskValue(t *testing.T) {
	assert.Equal(t, "***", maskValue(""))
	assert.Equal(t, "***", maskValue("abcd"))
	assert.Equal(t, "abcd***", maskValue("abcde"))
	assert.Equal(t, "Jörg***", maskValue("Jörg Müller"))
}

func TestPrefsRoundTrip(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	assert.Equal(t, DefaultPrefs(), LoadPrefs())
	require.NoError(t, SavePrefs(Prefs{HideValues: true}))
	assert.True(t, LoadPrefs().HideValues)
}

func TestPreviewOf(t *testing.T) {
	bin := previewOf(engine.Artifact{Name: "CLEAN_a.pdf", MIME: "application/pdf", Data: make([]byte, 2048)}, types.CatDocument)
	assert.Equal(t, "CLEAN_a.pdf  application/pdf  2 KB", bin)

	txt := previewOf(engine.Artifact{Name: "CLEAN_a.json", Data: []byte(`{"a":1}`)}, types.CatText)
	assert.Contains(t, txt, "a")
}
