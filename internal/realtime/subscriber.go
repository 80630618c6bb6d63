// Package realtime maintains the push half of the dual update path: a
// websocket subscription to the authority's change feed for the current
// room. The feed is an accelerant, not a source of truth; every event is
// folded through the same reconciliation entry points the poller uses,
// so a dropped or duplicated event costs latency, never correctness.
package realtime

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/munidon/bw-genius/internal/model"
)

// State is the lifecycle of the room subscription
type State string

const (
	StateUnsubscribed State = "unsubscribed"
	StateSubscribing  State = "subscribing"
	StateSubscribed   State = "subscribed"
)

// Stream identifies which record kind a change event is about
type Stream string

const (
	StreamRooms       Stream = "rooms"
	StreamRounds      Stream = "rounds"
	StreamSubmissions Stream = "submissions"
)

// Sink receives reconciliation work derived from change events
type Sink interface {
	ApplyIncoming(ctx context.Context, room *model.Room) error
	ReloadRounds(ctx context.Context) error
	ReloadSubmissions(ctx context.Context) error
	LoadLatestRoom(ctx context.Context) error
}

type changeEvent struct {
	Type   string      `json:"type"`
	Stream Stream      `json:"stream"`
	Room   *model.Room `json:"room,omitempty"`
}

type subscribeRequest struct {
	Type  string `json:"type"`
	Topic string `json:"topic"`
}

// Subscriber manages a single room subscription. Subscribing to a new
// room tears down the previous connection; events from a superseded
// connection are discarded by generation.
type Subscriber struct {
	url     string
	tokenFn func() string
	dialer  *websocket.Dialer
	sink    Sink
	logger  *slog.Logger

	mu       sync.Mutex
	conn     *websocket.Conn
	gen      uint64
	state    State
	roomID   uuid.UUID
	listener func(State)
}

// NewSubscriber creates a Subscriber for the given websocket endpoint.
// tokenFn is called at dial time so a refreshed token is picked up.
func NewSubscriber(url string, tokenFn func() string, sink Sink, logger *slog.Logger) *Subscriber {
	return &Subscriber{
		url:     url,
		tokenFn: tokenFn,
		dialer:  &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		sink:    sink,
		logger:  logger.With(slog.String("component", "realtime")),
		state:   StateUnsubscribed,
	}
}

// SetStateListener registers a callback for state transitions. Must be
// set before Subscribe; the callback runs with internal locks released.
func (s *Subscriber) SetStateListener(fn func(State)) {
	s.mu.Lock()
	s.listener = fn
	s.mu.Unlock()
}

// State returns the current subscription state
func (s *Subscriber) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// RoomID returns the room the current subscription targets
func (s *Subscriber) RoomID() (uuid.UUID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roomID, s.state != StateUnsubscribed
}

// Subscribe connects to the change feed for the given room, replacing
// any existing subscription
func (s *Subscriber) Subscribe(ctx context.Context, roomID uuid.UUID) error {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	old := s.conn
	s.conn = nil
	s.roomID = roomID
	s.mu.Unlock()
	if old != nil {
		old.Close()
	}

	s.setState(gen, StateSubscribing)

	header := http.Header{}
	if token := s.tokenFn(); token != "" {
		header.Set("Authorization", "Bearer "+token)
	}

	conn, _, err := s.dialer.DialContext(ctx, s.url, header)
	if err != nil {
		s.setState(gen, StateUnsubscribed)
		return fmt.Errorf("dialing change feed: %w", err)
	}

	req := subscribeRequest{Type: "subscribe", Topic: "room:" + roomID.String()}
	if err := conn.WriteJSON(req); err != nil {
		conn.Close()
		s.setState(gen, StateUnsubscribed)
		return fmt.Errorf("subscribing to room feed: %w", err)
	}

	s.mu.Lock()
	if s.gen != gen {
		// A newer Subscribe or Unsubscribe won the race.
		s.mu.Unlock()
		conn.Close()
		return nil
	}
	s.conn = conn
	s.mu.Unlock()

	s.setState(gen, StateSubscribed)
	go s.readLoop(ctx, conn, gen)
	return nil
}

// Unsubscribe tears down the current subscription, if any
func (s *Subscriber) Unsubscribe() {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	conn := s.conn
	s.conn = nil
	s.mu.Unlock()

	if conn != nil {
		conn.Close()
	}
	s.setState(gen, StateUnsubscribed)
}

func (s *Subscriber) readLoop(ctx context.Context, conn *websocket.Conn, gen uint64) {
	defer conn.Close()

	for {
		var ev changeEvent
		if err := conn.ReadJSON(&ev); err != nil {
			s.mu.Lock()
			stale := s.gen != gen
			s.mu.Unlock()
			if !stale {
				s.logger.Warn("change feed closed", slog.String("error", err.Error()))
				s.setState(gen, StateUnsubscribed)
			}
			return
		}

		s.mu.Lock()
		stale := s.gen != gen
		s.mu.Unlock()
		if stale {
			return
		}

		s.dispatch(ctx, ev)
	}
}

// dispatch folds one change event into the sink. Events carrying a full
// room payload apply directly; everything else triggers a targeted
// refetch, which the sink's guards keep race-free.
func (s *Subscriber) dispatch(ctx context.Context, ev changeEvent) {
	switch ev.Stream {
	case StreamRooms:
		if ev.Room != nil {
			_ = s.sink.ApplyIncoming(ctx, ev.Room)
			return
		}
		_ = s.sink.LoadLatestRoom(ctx)
	case StreamRounds:
		_ = s.sink.ReloadRounds(ctx)
		_ = s.sink.LoadLatestRoom(ctx)
	case StreamSubmissions:
		_ = s.sink.ReloadSubmissions(ctx)
		_ = s.sink.ReloadRounds(ctx)
		_ = s.sink.LoadLatestRoom(ctx)
	default:
		s.logger.Debug("unhandled change event", slog.String("stream", string(ev.Stream)))
	}
}

func (s *Subscriber) setState(gen uint64, state State) {
	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		return
	}
	s.state = state
	listener := s.listener
	s.mu.Unlock()

	if listener != nil {
		listener(state)
	}
}
