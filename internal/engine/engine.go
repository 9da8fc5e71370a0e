package engine

import (
	"math/rand/v2"
	"time"

	"github.com/unformat/shredder/internal/classify"
	"github.com/unformat/shredder/internal/imaging"
	"github.com/unformat/shredder/internal/types"
)

// File is an input buffer with the caller-declared media type.
type File struct {
	Name string
	MIME string
	Data []byte
}

// Size returns the length of the buffer in bytes.
func (f File) Size() int64 { return int64(len(f.Data)) }

// Artifact is a cleaned output ready to be saved.
type Artifact struct {
	Name string
	MIME string
	Data []byte
}

// CleanName is the download name of a cleaned file.
func CleanName(name string) string { return "CLEAN_" + name }

// Engine runs inspection and redaction. The zero value is not usable; call New.
type Engine struct {
	now        func() time.Time
	rng        func() *rand.Rand
	transcoder imaging.Transcoder
	noise      imaging.Noise
	quality    int
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the time source used to stamp scrubbed documents.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithRand sets the source of per-call random generators for the image
// perturbation pass. The function is called once per Redact.
func WithRand(fn func() *rand.Rand) Option {
	return func(e *Engine) { e.rng = fn }
}

// WithTranscoder replaces the HEIC transcoder.
func WithTranscoder(t imaging.Transcoder) Option {
	return func(e *Engine) { e.transcoder = t }
}

// WithNoise overrides the perturbation parameters.
func WithNoise(n imaging.Noise) Option {
	return func(e *Engine) { e.noise = n }
}

// WithQuality sets the lossy export quality (1..100).
func WithQuality(q int) Option {
	return func(e *Engine) {
		if q > 0 && q <= 100 {
			e.quality = q
		}
	}
}

// New returns an Engine with defaults: wall clock, a freshly seeded
// generator per call, the goheif transcoder, 5%/±2 noise and quality 95.
func New(opts ...Option) *Engine {
	e := &Engine{
		now: time.Now,
		rng: func() *rand.Rand {
			return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
		},
		transcoder: imaging.HEIFTranscoder{},
		noise:      imaging.DefaultNoise,
		quality:    imaging.DefaultQuality,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Classify routes a file by declared media type and name.
func (e *Engine) Classify(mime, name string) types.Category {
	return classify.Classify(mime, name)
}

// streamName is the category label used in narration.
func streamName(cat types.Category) string {
	switch cat {
	case types.CatImage:
		return "IMAGE"
	case types.CatDocument:
		return "PDF"
	case types.CatText:
		return "TEXT"
	}
	return "UNKNOWN"
}
