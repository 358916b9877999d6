// Package throttle coalesces rapid context-change events into at most one
// suggestion request per quiet period. One cancellable timer lives here and
// nowhere else; UI layers feed events in and never touch timers themselves.
package throttle

import (
	"strings"
	"sync"
	"time"

	"citation-engine-be/pkg/textctx"
)

// ConnectionStater exposes the live connection predicate. The throttle asks
// the connection manager directly instead of caching a flag.
type ConnectionStater interface {
	IsOpen() bool
}

// Emitter receives the coalesced context once the debounce window closes.
type Emitter func(text string, ctx textctx.TextContext)

type Config struct {
	// Window is the trailing-edge debounce delay: the request fires this
	// long after the last change, and any change inside the window resets
	// the timer.
	Window time.Duration
	// MinSentenceLen suppresses requests whose trimmed current sentence is
	// shorter than this many characters.
	MinSentenceLen int
}

func DefaultConfig() Config {
	return Config{
		Window:         500 * time.Millisecond,
		MinSentenceLen: 10,
	}
}

type Throttle struct {
	cfg  Config
	conn ConnectionStater
	emit Emitter

	mu             sync.Mutex
	timer          *time.Timer
	seq            uint64
	pending        textctx.TextContext
	lastIssuedText string
	stopped        bool
}

func New(cfg Config, conn ConnectionStater, emit Emitter) *Throttle {
	if cfg.Window <= 0 {
		cfg.Window = DefaultConfig().Window
	}
	if cfg.MinSentenceLen <= 0 {
		cfg.MinSentenceLen = DefaultConfig().MinSentenceLen
	}
	return &Throttle{cfg: cfg, conn: conn, emit: emit}
}

// OnContextChanged records the newest context and (re)starts the debounce
// timer. Only the last context observed before the window closes is issued.
func (t *Throttle) OnContextChanged(ctx textctx.TextContext) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return
	}
	t.pending = ctx
	if t.timer != nil {
		t.timer.Stop()
	}
	// Stop can miss a callback that has already fired and is waiting on the
	// mutex; the sequence number lets fire detect it was superseded.
	t.seq++
	seq := t.seq
	t.timer = time.AfterFunc(t.cfg.Window, func() { t.fire(seq) })
}

// Stop cancels any pending request. Further events are ignored.
func (t *Throttle) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}

func (t *Throttle) fire(seq uint64) {
	t.mu.Lock()
	if t.stopped || seq != t.seq {
		t.mu.Unlock()
		return
	}
	ctx := t.pending
	text := strings.TrimSpace(ctx.CurrentSentence)

	// Suppression rules, in order: too short, identical to the previous
	// issued request, connection not actually open.
	if len([]rune(text)) < t.cfg.MinSentenceLen {
		t.mu.Unlock()
		return
	}
	if text == t.lastIssuedText {
		t.mu.Unlock()
		return
	}
	if !t.conn.IsOpen() {
		t.mu.Unlock()
		return
	}

	t.lastIssuedText = text
	emit := t.emit
	t.mu.Unlock()

	emit(text, ctx)
}
