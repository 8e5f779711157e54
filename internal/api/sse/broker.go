package sse

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"
)

const (
	// SessionTTL bounds how long a registered channel may wait for its
	// token before the sweep drops it.
	SessionTTL = 5 * time.Minute

	keepAliveInterval = 30 * time.Second
)

var ErrStreamingUnsupported = errors.New("sse: response writer does not support flushing")

// NewSessionID returns the opaque correlator a browser tab uses to tie
// its stream to a token produced on another device.
func NewSessionID() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

type channel struct {
	w         http.ResponseWriter
	flusher   http.Flusher
	createdAt time.Time
	done      chan struct{}
}

func (c *channel) writeEvent(event string, data []byte) error {
	if _, err := fmt.Fprintf(c.w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return err
	}
	c.flusher.Flush()
	return nil
}

// Broker is the in-memory registry of waiting browser channels, keyed by
// session id. It owns every channel exclusively; handlers only block on
// the done signal Register returns. All map access goes through one mutex.
type Broker struct {
	mu       sync.Mutex
	channels map[string]*channel
	running  bool

	keepAlive time.Duration
	now       func() time.Time
}

func NewBroker() *Broker {
	return &Broker{
		channels:  make(map[string]*channel),
		keepAlive: keepAliveInterval,
		now:       time.Now,
	}
}

// Register stores w as the live channel for id, evicting any previous
// one, and immediately writes the connected event. The returned channel
// is closed when the session ends for any reason; the HTTP handler must
// block on it to keep the response writer alive.
func (b *Broker) Register(id string, w http.ResponseWriter) (<-chan struct{}, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, ErrStreamingUnsupported
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.sweepLocked()

	if _, exists := b.channels[id]; exists {
		b.evictLocked(id)
	}

	ch := &channel{
		w:         w,
		flusher:   flusher,
		createdAt: b.now(),
		done:      make(chan struct{}),
	}

	payload, _ := json.Marshal(map[string]string{"sessionId": id})
	if err := ch.writeEvent("connected", payload); err != nil {
		close(ch.done)
		return nil, err
	}

	b.channels[id] = ch
	if !b.running {
		b.running = true
		go b.keepAliveLoop()
	}
	return ch.done, nil
}

// Push writes a named event to the channel registered for id. A false
// return is not a fault: it means the tab never opened the stream, closed
// it, or the write failed and the channel was evicted. The caller falls
// back to delivering the payload in the HTTP response instead.
func (b *Broker) Push(id, event string, payload any) bool {
	data, err := json.Marshal(payload)
	if err != nil {
		return false
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	ch, ok := b.channels[id]
	if !ok {
		return false
	}
	if err := ch.writeEvent(event, data); err != nil {
		b.evictLocked(id)
		return false
	}
	return true
}

// Close drops the channel for id, if any. Safe to call repeatedly; the
// stream handler calls it when the client goes away.
func (b *Broker) Close(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.evictLocked(id)
}

// Len reports the number of live channels.
func (b *Broker) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.channels)
}

func (b *Broker) evictLocked(id string) {
	ch, ok := b.channels[id]
	if !ok {
		return
	}
	close(ch.done)
	delete(b.channels, id)
}

func (b *Broker) sweepLocked() {
	cutoff := b.now().Add(-SessionTTL)
	for id, ch := range b.channels {
		if ch.createdAt.Before(cutoff) {
			b.evictLocked(id)
		}
	}
}

// keepAliveLoop writes a comment frame to every live channel so proxies
// do not buffer or drop idle streams. A failed write evicts the channel.
// The loop exits once the registry is empty and is restarted lazily by
// the next Register.
func (b *Broker) keepAliveLoop() {
	ticker := time.NewTicker(b.keepAlive)
	defer ticker.Stop()

	for range ticker.C {
		b.mu.Lock()
		for id, ch := range b.channels {
			if _, err := fmt.Fprint(ch.w, ": keep-alive\n\n"); err != nil {
				b.evictLocked(id)
				continue
			}
			ch.flusher.Flush()
		}
		if len(b.channels) == 0 {
			b.running = false
			b.mu.Unlock()
			return
		}
		b.mu.Unlock()
	}
}
