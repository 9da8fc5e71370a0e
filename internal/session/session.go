// Package session holds the transient state of one upload: the loaded file,
// its findings, the cleaned output and a timestamped activity log. Nothing is
// persisted.
package session

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	xxhash "github.com/cespare/xxhash/v2"
	"github.com/google/uuid"

	"github.com/unformat/shredder/internal/engine"
	"github.com/unformat/shredder/internal/report"
	"github.com/unformat/shredder/internal/types"
)

// Stage is the session lifecycle position.
type Stage int

const (
	StageIdle Stage = iota
	StageInspecting
	StageReview
	StageShredding
	StageDone
)

func (s Stage) String() string {
	switch s {
	case StageInspecting:
		return "inspecting"
	case StageReview:
		return "review"
	case StageShredding:
		return "shredding"
	case StageDone:
		return "done"
	}
	return "idle"
}

func (s Stage) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Kind classifies a log line for display.
type Kind string

const (
	KindInfo    Kind = "info"
	KindSuccess Kind = "success"
	KindWarning Kind = "warning"
	KindError   Kind = "error"
	KindProcess Kind = "process"
	KindAction  Kind = "action"
)

// LogEntry is one line of the activity log.
type LogEntry struct {
	ID      int       `json:"id"`
	Time    time.Time `json:"time"`
	Message string    `json:"message"`
	Kind    Kind      `json:"kind"`
}

// Clock renders the entry time the way the log pane shows it.
func (l LogEntry) Clock() string { return l.Time.Format("15:04:05") }

var (
	// ErrBusy is returned when an operation is already in flight.
	ErrBusy = errors.New("session: operation in progress")
	// ErrNotReady is returned by Shred outside the review stage.
	ErrNotReady = errors.New("session: no file under review")
)

// State is a point-in-time copy of the session.
type State struct {
	ID          string           `json:"session_id"`
	Stage       Stage            `json:"stage"`
	File        string           `json:"file,omitempty"`
	Size        int64            `json:"size,omitempty"`
	Category    types.Category   `json:"category"`
	Fingerprint string           `json:"fingerprint,omitempty"`
	Findings    []types.Finding  `json:"findings,omitempty"`
	Output      *engine.Artifact `json:"-"`
	Log         []LogEntry       `json:"log"`
}

// Session is safe for concurrent use; engine calls run outside the lock so
// readers can observe progress.
type Session struct {
	eng      *engine.Engine
	now      func() time.Time
	listener func(LogEntry)

	mu          sync.Mutex
	id          string
	stage       Stage
	file        *engine.File
	cat         types.Category
	fingerprint string
	findings    []types.Finding
	output      *engine.Artifact
	log         []LogEntry
	nextID      int
	busy        bool
}

// Option configures a Session.
type Option func(*Session)

// WithClock sets the log timestamp source.
func WithClock(now func() time.Time) Option { return func(s *Session) { s.now = now } }

// WithListener registers a callback invoked for every new log entry, outside
// the session lock.
func WithListener(fn func(LogEntry)) Option { return func(s *Session) { s.listener = fn } }

// New returns an idle session backed by eng.
func New(eng *engine.Engine, opts ...Option) *Session {
	s := &Session{eng: eng, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

func kindOf(msg string) Kind {
	switch {
	case strings.HasPrefix(msg, "[ERROR]"):
		return KindError
	case strings.HasPrefix(msg, "[SUCCESS]"), strings.HasPrefix(msg, "[COMPLETE]"):
		return KindSuccess
	case strings.HasPrefix(msg, "[WARN]"), strings.HasPrefix(msg, "[ALERT]"), strings.HasPrefix(msg, "[RedFlag]"):
		return KindWarning
	case strings.HasPrefix(msg, "[ACTION]"):
		return KindAction
	case strings.HasPrefix(msg, "[INIT]"), strings.HasPrefix(msg, "[INFO]"):
		return KindInfo
	}
	return KindProcess
}

func (s *Session) add(msg string, kind Kind) {
	s.mu.Lock()
	s.nextID++
	e := LogEntry{ID: s.nextID, Time: s.now(), Message: msg, Kind: kind}
	s.log = append(s.log, e)
	s.mu.Unlock()
	if s.listener != nil {
		s.listener(e)
	}
}

func (s *Session) narrate(msg string) { s.add(msg, kindOf(msg)) }

// Load classifies f and inspects it. On success the session moves to review.
// An unsupported file leaves the session idle; an inspection failure returns
// it to idle with the file dropped.
func (s *Session) Load(f engine.File) ([]types.Finding, error) {
	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return nil, ErrBusy
	}
	cat := s.eng.Classify(f.MIME, f.Name)
	if cat == types.CatUnsupported {
		s.file, s.cat, s.stage = nil, types.CatUnsupported, StageIdle
		s.mu.Unlock()
		s.add("[ERROR] UNSUPPORTED_FILE_TYPE: "+f.Name, KindError)
		return nil, fmt.Errorf("%s: %w", f.Name, engine.ErrUnsupportedFileType)
	}
	s.busy = true
	s.id = uuid.NewString()
	s.stage = StageInspecting
	s.file = &f
	s.cat = cat
	s.fingerprint = fmt.Sprintf("%016x", xxhash.Sum64(f.Data))
	s.findings, s.output, s.log = nil, nil, nil
	short := strings.ToUpper(strings.ReplaceAll(s.id, "-", "")[:8])
	s.mu.Unlock()

	s.add("[INIT] SYSTEM_READY. NEW_SESSION_ID: "+short, KindInfo)
	s.add(fmt.Sprintf("[INFO] LOADING_FILE: %s (%s)", f.Name, report.FormatBytes(f.Size(), 2)), KindInfo)
	s.add("Verification: File processing in Local Sandbox - No Network Activity Detected", KindSuccess)

	fs, err := s.eng.Inspect(f, cat, s.narrate)

	s.mu.Lock()
	s.busy = false
	if err != nil {
		s.stage, s.file = StageIdle, nil
		s.mu.Unlock()
		s.add("[ERROR] INSPECTION_FAILED: "+err.Error(), KindError)
		return nil, err
	}
	s.findings = fs
	s.stage = StageReview
	s.mu.Unlock()
	s.add(fmt.Sprintf("[COMPLETE] METADATA_SCAN_FINISHED. %d ITEMS_FOUND.", len(fs)), KindSuccess)
	return fs, nil
}

// Shred redacts the file under review. A failure returns the session to
// review so the findings stay visible.
func (s *Session) Shred() (engine.Artifact, error) {
	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return engine.Artifact{}, ErrBusy
	}
	if s.stage != StageReview || s.file == nil {
		s.mu.Unlock()
		return engine.Artifact{}, ErrNotReady
	}
	s.busy = true
	s.stage = StageShredding
	f, cat := *s.file, s.cat
	s.mu.Unlock()

	art, err := s.eng.Redact(f, cat, s.narrate)

	s.mu.Lock()
	s.busy = false
	if err != nil {
		s.stage = StageReview
		s.mu.Unlock()
		s.add("[ERROR] SHREDDING_FAILED: "+err.Error(), KindError)
		return engine.Artifact{}, err
	}
	s.output = &art
	s.stage = StageDone
	s.mu.Unlock()
	s.add("[SUCCESS] FILE_CLEANED_SUCCESSFULLY. READY_FOR_DOWNLOAD.", KindSuccess)
	return art, nil
}

// Reset discards the file, findings, output and log.
func (s *Session) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return ErrBusy
	}
	s.id, s.stage, s.file, s.cat = "", StageIdle, nil, types.CatUnsupported
	s.fingerprint, s.findings, s.output, s.log = "", nil, nil, nil
	return nil
}

// Stage returns the current stage.
func (s *Session) Stage() Stage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stage
}

// Snapshot copies the current state.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := State{
		ID:          s.id,
		Stage:       s.stage,
		Category:    s.cat,
		Fingerprint: s.fingerprint,
		Findings:    append([]types.Finding(nil), s.findings...),
		Log:         append([]LogEntry(nil), s.log...),
	}
	if s.file != nil {
		st.File, st.Size = s.file.Name, s.file.Size()
	}
	if s.output != nil {
		out := *s.output
		st.Output = &out
	}
	return st
}
