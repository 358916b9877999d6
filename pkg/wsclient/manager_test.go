package wsclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"citation-engine-be/internal/entity"
	"citation-engine-be/pkg/protocol"
	"citation-engine-be/pkg/textctx"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTransport struct {
	mu         sync.Mutex
	outbox     [][]byte
	writeLimit int // when > 0, writes beyond this many fail
	in         chan []byte
	closed     chan struct{}
	once       sync.Once
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		in:     make(chan []byte, 16),
		closed: make(chan struct{}),
	}
}

func (t *fakeTransport) ReadMessage() ([]byte, error) {
	select {
	case data := <-t.in:
		return data, nil
	case <-t.closed:
		return nil, errors.New("transport closed")
	}
}

func (t *fakeTransport) WriteMessage(data []byte) error {
	select {
	case <-t.closed:
		return errors.New("transport closed")
	default:
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.writeLimit > 0 && len(t.outbox) >= t.writeLimit {
		return errors.New("write refused")
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	t.outbox = append(t.outbox, cp)
	return nil
}

func (t *fakeTransport) Close() error {
	t.once.Do(func() { close(t.closed) })
	return nil
}

func (t *fakeTransport) serverPush(v interface{}) {
	data, _ := json.Marshal(v)
	t.in <- data
}

func (t *fakeTransport) sent() [][]byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([][]byte, len(t.outbox))
	copy(out, t.outbox)
	return out
}

type fakeDialer struct {
	mu              sync.Mutex
	failFirst       int
	attempts        int
	transports      []*fakeTransport
	firstWriteLimit int           // write cap applied to the first transport created
	gate            chan struct{} // when non-nil, Dial blocks until the gate closes
}

func (d *fakeDialer) Dial(ctx context.Context, url string, header http.Header) (Transport, error) {
	d.mu.Lock()
	d.attempts++
	n := d.attempts
	gate := d.gate
	d.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if n <= d.failFirst {
		return nil, fmt.Errorf("dial attempt %d refused", n)
	}

	t := newFakeTransport()
	d.mu.Lock()
	if len(d.transports) == 0 {
		t.writeLimit = d.firstWriteLimit
	}
	d.transports = append(d.transports, t)
	d.mu.Unlock()
	return t, nil
}

func (d *fakeDialer) attemptCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.attempts
}

func (d *fakeDialer) transport(i int) *fakeTransport {
	d.mu.Lock()
	defer d.mu.Unlock()
	if i >= len(d.transports) {
		return nil
	}
	return d.transports[i]
}

func testConfig() Config {
	return Config{
		URL:               "ws://test/ws/suggest",
		HandshakeTimeout:  200 * time.Millisecond,
		HeartbeatInterval: time.Hour, // heartbeat quiet unless a test wants it
		PongTimeout:       time.Hour,
		RequestTimeout:    time.Hour,
		BackoffFloor:      10 * time.Millisecond,
		BackoffCap:        40 * time.Millisecond,
	}
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("condition not met within %v", timeout)
}

func TestConnectedPredicateIsTruthful(t *testing.T) {
	gate := make(chan struct{})
	dialer := &fakeDialer{gate: gate}
	m := NewManagerWithDialer(testConfig(), dialer, nil)

	assert.Equal(t, StateIdle, m.State())
	assert.False(t, m.IsOpen())

	m.Connect()

	// Handshake has not completed; the manager must not report connected.
	assert.Equal(t, StateConnecting, m.State())
	assert.False(t, m.IsOpen())

	close(gate)
	waitFor(t, time.Second, m.IsOpen)
	assert.Equal(t, StateOpen, m.State())

	m.Disconnect()
	assert.False(t, m.IsOpen())
	assert.Equal(t, StateClosed, m.State())
}

func TestQueuedMessagesFlushOldestFirst(t *testing.T) {
	dialer := &fakeDialer{}
	m := NewManagerWithDialer(testConfig(), dialer, nil)

	m.Send([]byte("one"))
	m.Send([]byte("two"))
	m.Send([]byte("three"))

	m.Connect()
	waitFor(t, time.Second, m.IsOpen)

	tr := dialer.transport(0)
	require.NotNil(t, tr)
	waitFor(t, time.Second, func() bool { return len(tr.sent()) == 3 })

	sent := tr.sent()
	assert.Equal(t, "one", string(sent[0]))
	assert.Equal(t, "two", string(sent[1]))
	assert.Equal(t, "three", string(sent[2]))
}

func TestFullQueueDropsOldest(t *testing.T) {
	cfg := testConfig()
	cfg.QueueCapacity = 3
	dialer := &fakeDialer{}
	m := NewManagerWithDialer(cfg, dialer, nil)

	for i := 1; i <= 5; i++ {
		m.Send([]byte(fmt.Sprintf("msg-%d", i)))
	}

	m.Connect()
	waitFor(t, time.Second, m.IsOpen)

	tr := dialer.transport(0)
	require.NotNil(t, tr)
	waitFor(t, time.Second, func() bool { return len(tr.sent()) == 3 })

	sent := tr.sent()
	assert.Equal(t, "msg-3", string(sent[0]))
	assert.Equal(t, "msg-4", string(sent[1]))
	assert.Equal(t, "msg-5", string(sent[2]))
}

func TestDrainFailureKeepsUndrainedTail(t *testing.T) {
	dialer := &fakeDialer{firstWriteLimit: 1}
	m := NewManagerWithDialer(testConfig(), dialer, nil)

	m.Send([]byte("one"))
	m.Send([]byte("two"))
	m.Send([]byte("three"))

	m.Connect()

	// The first transport accepts a single write and then errors, so the
	// drain stops after "one". The rest must survive to the reconnect.
	waitFor(t, 2*time.Second, func() bool { return dialer.attemptCount() >= 2 && m.IsOpen() })

	tr2 := dialer.transport(1)
	require.NotNil(t, tr2)
	waitFor(t, time.Second, func() bool { return len(tr2.sent()) == 2 })

	sent := tr2.sent()
	assert.Equal(t, "two", string(sent[0]))
	assert.Equal(t, "three", string(sent[1]))

	first := dialer.transport(0).sent()
	require.Len(t, first, 1)
	assert.Equal(t, "one", string(first[0]))
}

func TestStaleResponseSuppression(t *testing.T) {
	dialer := &fakeDialer{}
	m := NewManagerWithDialer(testConfig(), dialer, nil)

	var mu sync.Mutex
	var delivered []string
	m.RegisterSuggestionsListener(func(msg protocol.SuggestionsMessage) {
		mu.Lock()
		delivered = append(delivered, msg.RequestId)
		mu.Unlock()
	})

	m.Connect()
	waitFor(t, time.Second, m.IsOpen)
	tr := dialer.transport(0)
	require.NotNil(t, tr)

	ctx := textctx.TextContext{CurrentSentence: "Attention mechanisms transformed machine translation"}
	idA := m.RequestSuggestions(ctx.CurrentSentence, ctx)
	idB := m.RequestSuggestions(ctx.CurrentSentence+" further", ctx)

	// B superseded A; A's late response must be discarded.
	tr.serverPush(protocol.NewSuggestions(idA, []entity.CitationSuggestion{{Title: "stale"}}))
	tr.serverPush(protocol.NewSuggestions(idB, []entity.CitationSuggestion{{Title: "fresh"}}))

	waitFor(t, time.Second, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(delivered) == 1
	})
	time.Sleep(20 * time.Millisecond) // give a wrong delivery time to surface

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, delivered, 1)
	assert.Equal(t, idB, delivered[0])
}

func TestReconnectAfterTransportError(t *testing.T) {
	dialer := &fakeDialer{}
	m := NewManagerWithDialer(testConfig(), dialer, nil)

	var mu sync.Mutex
	var states []ConnectionState
	m.RegisterConnectionStateListener(func(s ConnectionState) {
		mu.Lock()
		states = append(states, s)
		mu.Unlock()
	})

	m.Connect()
	waitFor(t, time.Second, m.IsOpen)

	// Simulated socket drop: readLoop sees an error and the manager must
	// come back on its own after the backoff delay.
	dialer.transport(0).Close()

	waitFor(t, 2*time.Second, func() bool { return dialer.attemptCount() >= 2 && m.IsOpen() })

	mu.Lock()
	defer mu.Unlock()
	assert.Contains(t, states, StateClosed)
	assert.Equal(t, StateOpen, states[len(states)-1])
}

func TestExplicitDisconnectIsTerminal(t *testing.T) {
	dialer := &fakeDialer{}
	m := NewManagerWithDialer(testConfig(), dialer, nil)

	m.Connect()
	waitFor(t, time.Second, m.IsOpen)
	m.Disconnect()

	time.Sleep(100 * time.Millisecond) // longer than any backoff delay

	assert.Equal(t, StateClosed, m.State())
	assert.Equal(t, 1, dialer.attemptCount())
}

func TestHandshakeFailureRetriesWithBackoff(t *testing.T) {
	dialer := &fakeDialer{failFirst: 2}
	m := NewManagerWithDialer(testConfig(), dialer, nil)

	m.Connect()
	waitFor(t, 2*time.Second, m.IsOpen)
	assert.Equal(t, 3, dialer.attemptCount())
}

func TestBackoffGrowsToCapAndStays(t *testing.T) {
	cfg := testConfig()
	cfg.BackoffFloor = 100 * time.Millisecond
	cfg.BackoffCap = 800 * time.Millisecond
	m := NewManagerWithDialer(cfg, &fakeDialer{}, nil)

	var delays []time.Duration
	for i := 0; i < 6; i++ {
		m.mu.Lock()
		delays = append(delays, m.nextBackoffLocked())
		m.mu.Unlock()
	}

	expected := []time.Duration{
		100 * time.Millisecond,
		200 * time.Millisecond,
		400 * time.Millisecond,
		800 * time.Millisecond,
		800 * time.Millisecond,
		800 * time.Millisecond,
	}
	assert.Equal(t, expected, delays)
}

func TestBackoffResetsAfterSuccessfulConnect(t *testing.T) {
	dialer := &fakeDialer{failFirst: 3}
	m := NewManagerWithDialer(testConfig(), dialer, nil)

	m.Connect()
	waitFor(t, 2*time.Second, m.IsOpen)

	m.mu.Lock()
	attempt := m.backoffAttempt
	m.mu.Unlock()
	assert.Equal(t, 0, attempt)
}

func TestHeartbeatTimeoutForcesReconnect(t *testing.T) {
	cfg := testConfig()
	cfg.HeartbeatInterval = 20 * time.Millisecond
	cfg.PongTimeout = 10 * time.Millisecond
	dialer := &fakeDialer{}
	m := NewManagerWithDialer(cfg, dialer, nil)

	m.Connect()
	waitFor(t, time.Second, m.IsOpen)

	// The fake server never answers pings, so the second heartbeat tick
	// must declare the connection dead and reconnect.
	waitFor(t, 2*time.Second, func() bool { return dialer.attemptCount() >= 2 })
}

func TestUpdateConfigClosesOldTransportFirst(t *testing.T) {
	dialer := &fakeDialer{}
	m := NewManagerWithDialer(testConfig(), dialer, nil)

	m.Connect()
	waitFor(t, time.Second, m.IsOpen)
	first := dialer.transport(0)
	require.NotNil(t, first)

	cfg := testConfig()
	cfg.Token = "rotated"
	m.UpdateConfig(cfg)

	waitFor(t, time.Second, func() bool { return dialer.attemptCount() == 2 && m.IsOpen() })

	select {
	case <-first.closed:
	default:
		t.Fatal("old transport was not closed before reopening")
	}
}

func TestRequestTimeoutSurfacesUnavailable(t *testing.T) {
	cfg := testConfig()
	cfg.RequestTimeout = 30 * time.Millisecond
	dialer := &fakeDialer{}
	m := NewManagerWithDialer(cfg, dialer, nil)

	var mu sync.Mutex
	var errs []protocol.ErrorMessage
	m.RegisterErrorListener(func(msg protocol.ErrorMessage) {
		mu.Lock()
		errs = append(errs, msg)
		mu.Unlock()
	})

	m.Connect()
	waitFor(t, time.Second, m.IsOpen)

	id := m.RequestSuggestions("An unanswered question lingers here", textctx.TextContext{CurrentSentence: "An unanswered question lingers here"})

	waitFor(t, time.Second, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(errs) == 1
	})

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, id, errs[0].RequestId)
	assert.Equal(t, "suggestions unavailable", errs[0].Message)
}
