package throttle

import (
	"sync"
	"testing"
	"time"

	"citation-engine-be/pkg/textctx"
)

type stubConn struct {
	mu   sync.Mutex
	open bool
}

func (c *stubConn) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}

func (c *stubConn) set(open bool) {
	c.mu.Lock()
	c.open = open
	c.mu.Unlock()
}

type recorder struct {
	mu    sync.Mutex
	texts []string
}

func (r *recorder) emit(text string, ctx textctx.TextContext) {
	r.mu.Lock()
	r.texts = append(r.texts, text)
	r.mu.Unlock()
}

func (r *recorder) emitted() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.texts))
	copy(out, r.texts)
	return out
}

func ctxFor(sentence string) textctx.TextContext {
	return textctx.TextContext{CurrentSentence: sentence, Paragraph: sentence}
}

func TestDebounceCoalescesBurst(t *testing.T) {
	conn := &stubConn{open: true}
	rec := &recorder{}
	th := New(Config{Window: 30 * time.Millisecond, MinSentenceLen: 10}, conn, rec.emit)
	defer th.Stop()

	// A burst of edits inside one window must produce exactly one request,
	// carrying the last context.
	th.OnContextChanged(ctxFor("Neural networks are"))
	th.OnContextChanged(ctxFor("Neural networks are widely"))
	th.OnContextChanged(ctxFor("Neural networks are widely used today"))

	time.Sleep(100 * time.Millisecond)

	got := rec.emitted()
	if len(got) != 1 {
		t.Fatalf("emitted %d requests, want 1", len(got))
	}
	if got[0] != "Neural networks are widely used today" {
		t.Errorf("emitted %q, want last context's text", got[0])
	}
}

func TestShortSentenceSuppressed(t *testing.T) {
	conn := &stubConn{open: true}
	rec := &recorder{}
	th := New(Config{Window: 20 * time.Millisecond, MinSentenceLen: 10}, conn, rec.emit)
	defer th.Stop()

	th.OnContextChanged(ctxFor("test."))

	time.Sleep(80 * time.Millisecond)
	if got := rec.emitted(); len(got) != 0 {
		t.Fatalf("emitted %v, want no requests for 5-char sentence", got)
	}
}

func TestDuplicateTextSuppressed(t *testing.T) {
	conn := &stubConn{open: true}
	rec := &recorder{}
	th := New(Config{Window: 20 * time.Millisecond, MinSentenceLen: 10}, conn, rec.emit)
	defer th.Stop()

	sentence := "Cursor moves but text is unchanged."
	th.OnContextChanged(ctxFor(sentence))
	time.Sleep(60 * time.Millisecond)

	// Cursor-only movement produces the same sentence again.
	th.OnContextChanged(ctxFor(sentence))
	time.Sleep(60 * time.Millisecond)

	if got := rec.emitted(); len(got) != 1 {
		t.Fatalf("emitted %d requests, want 1 (duplicate suppressed)", len(got))
	}
}

func TestClosedConnectionSuppressed(t *testing.T) {
	conn := &stubConn{open: false}
	rec := &recorder{}
	th := New(Config{Window: 20 * time.Millisecond, MinSentenceLen: 10}, conn, rec.emit)
	defer th.Stop()

	th.OnContextChanged(ctxFor("The connection is down right now."))
	time.Sleep(60 * time.Millisecond)

	if got := rec.emitted(); len(got) != 0 {
		t.Fatalf("emitted %v, want none while connection closed", got)
	}

	// Once open again, new changes go through.
	conn.set(true)
	th.OnContextChanged(ctxFor("The connection is back up again."))
	time.Sleep(60 * time.Millisecond)

	if got := rec.emitted(); len(got) != 1 {
		t.Fatalf("emitted %d requests after reopen, want 1", len(got))
	}
}

func TestSupersededTimerDoesNotEmitEarly(t *testing.T) {
	conn := &stubConn{open: true}
	rec := &recorder{}
	th := New(Config{Window: 40 * time.Millisecond, MinSentenceLen: 10}, conn, rec.emit)
	defer th.Stop()

	th.OnContextChanged(ctxFor("The first context in this sequence."))
	th.OnContextChanged(ctxFor("The second context replaces the old one."))

	// A callback from the first timer can have fired already and lost the
	// Stop race; invoking it now must not leak the new pending context
	// before its own window has elapsed.
	th.fire(1)
	if got := rec.emitted(); len(got) != 0 {
		t.Fatalf("stale timer emitted %v before the window closed", got)
	}

	time.Sleep(100 * time.Millisecond)
	got := rec.emitted()
	if len(got) != 1 {
		t.Fatalf("emitted %d requests, want 1", len(got))
	}
	if got[0] != "The second context replaces the old one." {
		t.Errorf("emitted %q, want the latest context's text", got[0])
	}
}

func TestStopCancelsPending(t *testing.T) {
	conn := &stubConn{open: true}
	rec := &recorder{}
	th := New(Config{Window: 30 * time.Millisecond, MinSentenceLen: 10}, conn, rec.emit)

	th.OnContextChanged(ctxFor("This one never gets issued."))
	th.Stop()

	time.Sleep(80 * time.Millisecond)
	if got := rec.emitted(); len(got) != 0 {
		t.Fatalf("emitted %v after Stop", got)
	}
}
