package realtime

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// ConnState is the lifecycle of a Subscription's transport.
type ConnState int32

const (
	StateDisconnected ConnState = iota
	StateConnecting
	StateConnected
)

// seenLimit caps the dedup window before it is reset.
const seenLimit = 1024

// Subscription is a client-side event-stream consumer. It owns one SSE
// connection for a fixed topic list, reconnects with exponential backoff when
// the transport drops, and suppresses events it has already delivered
// (matched by event id). Changing topics means Close and a new Subscription;
// a live topic set is never mutated.
type Subscription struct {
	hubURL  string
	topics  []string
	onEvent func(Update)

	token  string
	client *http.Client
	state  atomic.Int32

	mu   sync.Mutex
	seen map[string]struct{}

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

func NewSubscription(hubURL string, topics []string, onEvent func(Update)) *Subscription {
	ctx, cancel := context.WithCancel(context.Background())
	return &Subscription{
		hubURL:  hubURL,
		topics:  topics,
		onEvent: onEvent,
		client:  &http.Client{},
		seen:    make(map[string]struct{}),
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
}

// SetAuthToken attaches a bearer token to every stream request. Call before
// Open.
func (s *Subscription) SetAuthToken(token string) {
	s.token = token
}

// State returns the current connection state.
func (s *Subscription) State() ConnState {
	return ConnState(s.state.Load())
}

// Open starts the consumer goroutine.
func (s *Subscription) Open() {
	go s.run()
}

// Close tears the stream down and stops reconnecting.
func (s *Subscription) Close() {
	s.cancel()
	<-s.done
}

func (s *Subscription) run() {
	defer close(s.done)
	defer s.state.Store(int32(StateDisconnected))

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 200 * time.Millisecond
	policy.MaxInterval = 30 * time.Second
	policy.MaxElapsedTime = 0 // retry until Close

	notify := func(err error, next time.Duration) {
		log.Printf("stream error, reconnecting in %s: %v", next.Round(time.Millisecond), err)
	}
	_ = backoff.RetryNotify(s.consume, backoff.WithContext(policy, s.ctx), notify)
}

// consume opens the SSE stream and dispatches events until it breaks.
func (s *Subscription) consume() error {
	s.state.Store(int32(StateConnecting))

	u, err := url.Parse(s.hubURL)
	if err != nil {
		return backoff.Permanent(err)
	}
	query := u.Query()
	for _, topic := range s.topics {
		query.Add("topic", topic)
	}
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(s.ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return backoff.Permanent(err)
	}
	req.Header.Set("Accept", "text/event-stream")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		s.state.Store(int32(StateDisconnected))
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.state.Store(int32(StateDisconnected))
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			return backoff.Permanent(fmt.Errorf("hub rejected subscription: %s", resp.Status))
		}
		return fmt.Errorf("hub returned %s", resp.Status)
	}

	s.state.Store(int32(StateConnected))

	scanner := bufio.NewScanner(resp.Body)
	var id string
	var data strings.Builder
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			if data.Len() > 0 {
				s.dispatch(id, data.String())
			}
			id = ""
			data.Reset()
		case strings.HasPrefix(line, "id:"):
			id = strings.TrimSpace(line[len("id:"):])
		case strings.HasPrefix(line, "data:"):
			if data.Len() > 0 {
				data.WriteByte('\n')
			}
			data.WriteString(strings.TrimSpace(line[len("data:"):]))
		}
		// Comment lines (keepalives) fall through.
	}

	s.state.Store(int32(StateDisconnected))
	if err := scanner.Err(); err != nil {
		return err
	}
	return errors.New("stream closed by hub")
}

func (s *Subscription) dispatch(id, data string) {
	if id != "" {
		s.mu.Lock()
		if _, dup := s.seen[id]; dup {
			s.mu.Unlock()
			return
		}
		if len(s.seen) >= seenLimit {
			s.seen = make(map[string]struct{})
		}
		s.seen[id] = struct{}{}
		s.mu.Unlock()
	}
	if s.onEvent != nil {
		s.onEvent(Update{ID: id, Data: data})
	}
}
