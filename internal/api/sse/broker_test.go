package sse

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestNewSessionID(t *testing.T) {
	t.Parallel()

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id, err := NewSessionID()
		if err != nil {
			t.Fatalf("NewSessionID error: %v", err)
		}
		if len(id) != 32 {
			t.Fatalf("expected 32 hex chars, got %q", id)
		}
		if seen[id] {
			t.Fatalf("duplicate session id %q", id)
		}
		seen[id] = true
	}
}

func TestRegisterWritesConnected(t *testing.T) {
	t.Parallel()

	b := NewBroker()
	w := httptest.NewRecorder()

	done, err := b.Register("abc123", w)
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	select {
	case <-done:
		t.Fatalf("done closed immediately after Register")
	default:
	}

	body := w.Body.String()
	if !strings.Contains(body, "event: connected") {
		t.Fatalf("missing connected event, body: %q", body)
	}
	if !strings.Contains(body, `"sessionId":"abc123"`) {
		t.Fatalf("connected payload missing session id, body: %q", body)
	}
}

func TestPushDeliversExactlyOneTokenFrame(t *testing.T) {
	t.Parallel()

	b := NewBroker()
	w := httptest.NewRecorder()

	if _, err := b.Register("sid", w); err != nil {
		t.Fatalf("Register error: %v", err)
	}

	if !b.Push("sid", "token", map[string]string{"accessToken": "jwt-here"}) {
		t.Fatalf("Push returned false for a registered session")
	}

	body := w.Body.String()
	if got := strings.Count(body, "event: token"); got != 1 {
		t.Fatalf("expected exactly one token frame, got %d, body: %q", got, body)
	}
	if !strings.Contains(body, `"accessToken":"jwt-here"`) {
		t.Fatalf("token payload missing, body: %q", body)
	}
}

func TestPushBeforeRegisterReturnsFalse(t *testing.T) {
	t.Parallel()

	b := NewBroker()

	if b.Push("sid", "token", "x") {
		t.Fatalf("Push before Register should return false")
	}

	// The failed push must not poison a later Register for the same id.
	w := httptest.NewRecorder()
	if _, err := b.Register("sid", w); err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if !b.Push("sid", "token", "x") {
		t.Fatalf("Push after Register should return true")
	}
	// There is no replay: only the post-Register push is on the wire.
	if got := strings.Count(w.Body.String(), "event: token"); got != 1 {
		t.Fatalf("expected one token frame, got %d", got)
	}
}

func TestReRegisterEvictsPreviousChannel(t *testing.T) {
	t.Parallel()

	b := NewBroker()
	w1 := httptest.NewRecorder()
	w2 := httptest.NewRecorder()

	done1, err := b.Register("sid", w1)
	if err != nil {
		t.Fatalf("first Register error: %v", err)
	}
	if _, err := b.Register("sid", w2); err != nil {
		t.Fatalf("second Register error: %v", err)
	}

	select {
	case <-done1:
	default:
		t.Fatalf("first channel not evicted by re-registration")
	}

	if !b.Push("sid", "token", "x") {
		t.Fatalf("Push to re-registered session failed")
	}
	if strings.Contains(w1.Body.String(), "event: token") {
		t.Fatalf("evicted channel received the token")
	}
	if !strings.Contains(w2.Body.String(), "event: token") {
		t.Fatalf("live channel did not receive the token")
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	t.Parallel()

	b := NewBroker()
	w := httptest.NewRecorder()

	done, _ := b.Register("sid", w)
	b.Close("sid")
	b.Close("sid")

	select {
	case <-done:
	default:
		t.Fatalf("done not closed after Close")
	}
	if b.Push("sid", "token", "x") {
		t.Fatalf("Push after Close should return false")
	}
	if b.Len() != 0 {
		t.Fatalf("expected empty registry, got %d", b.Len())
	}
}

func TestSweepEvictsExpiredChannels(t *testing.T) {
	t.Parallel()

	b := NewBroker()
	now := time.Now()
	b.now = func() time.Time { return now }

	w := httptest.NewRecorder()
	done, _ := b.Register("old", w)

	// Past the TTL, the next Register sweeps the stale channel out.
	now = now.Add(SessionTTL + time.Second)
	if _, err := b.Register("fresh", httptest.NewRecorder()); err != nil {
		t.Fatalf("Register error: %v", err)
	}

	select {
	case <-done:
	default:
		t.Fatalf("expired channel not swept")
	}
	if b.Push("old", "token", "x") {
		t.Fatalf("Push to swept session should return false")
	}
}

// brokenWriter fails every write after the first n.
type brokenWriter struct {
	header http.Header
	ok     int
	writes int
}

func (w *brokenWriter) Header() http.Header {
	if w.header == nil {
		w.header = make(http.Header)
	}
	return w.header
}

func (w *brokenWriter) WriteHeader(int) {}

func (w *brokenWriter) Write(p []byte) (int, error) {
	w.writes++
	if w.writes > w.ok {
		return 0, errors.New("broken pipe")
	}
	return len(p), nil
}

func (w *brokenWriter) Flush() {}

func TestPushWriteFailureEvicts(t *testing.T) {
	t.Parallel()

	b := NewBroker()
	w := &brokenWriter{ok: 1} // connected frame succeeds, everything after fails

	done, err := b.Register("sid", w)
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}

	if b.Push("sid", "token", "x") {
		t.Fatalf("Push should report false on write failure")
	}
	select {
	case <-done:
	default:
		t.Fatalf("channel not evicted after write failure")
	}
	if b.Len() != 0 {
		t.Fatalf("expected empty registry after eviction")
	}
}

func TestRegisterFailsWhenConnectedFrameCannotBeWritten(t *testing.T) {
	t.Parallel()

	b := NewBroker()
	w := &brokenWriter{ok: 0}

	if _, err := b.Register("sid", w); err == nil {
		t.Fatalf("expected Register to fail when the first write fails")
	}
	if b.Len() != 0 {
		t.Fatalf("failed registration must not leave a channel behind")
	}
}

func TestKeepAliveFramesAndEviction(t *testing.T) {
	t.Parallel()

	b := NewBroker()
	b.keepAlive = 10 * time.Millisecond

	healthy := httptest.NewRecorder()
	dying := &brokenWriter{ok: 1}

	if _, err := b.Register("healthy", healthy); err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if _, err := b.Register("dying", dying); err != nil {
		t.Fatalf("Register error: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for b.Len() != 1 {
		select {
		case <-deadline:
			t.Fatalf("keep-alive did not evict the broken channel")
		case <-time.After(5 * time.Millisecond):
		}
	}

	if b.Push("dying", "token", "x") {
		t.Fatalf("Push to keep-alive-evicted channel should return false")
	}

	// Stop the remaining channel before inspecting its body so the
	// keep-alive goroutine is no longer writing to it.
	b.Close("healthy")
	if !strings.Contains(healthy.Body.String(), ": keep-alive") {
		t.Fatalf("healthy channel never received a keep-alive frame")
	}
}
