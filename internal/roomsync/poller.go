package roomsync

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/munidon/bw-genius/internal/model"
)

// Poll cadences. The playing cadence backs off when the client is not
// visible; an idle client without a room only checks occasionally for a
// room it may have been pulled into elsewhere.
const (
	pollPlayingVisible = 800 * time.Millisecond
	pollPlayingHidden  = 2 * time.Second
	pollLobby          = time.Second
	pollIdle           = 5 * time.Second
)

// IntervalFor returns the poll interval for the given room state
func IntervalFor(status model.RoomStatus, hasRoom, visible bool) time.Duration {
	if !hasRoom {
		return pollIdle
	}
	if status == model.RoomStatusPlaying {
		if visible {
			return pollPlayingVisible
		}
		return pollPlayingHidden
	}
	return pollLobby
}

// Poller drives the pull path of room synchronization. It is the safety
// net under the push channel: even with every notification lost, the
// snapshot converges within one poll interval.
type Poller struct {
	engine  *Engine
	tracker *Tracker
	clock   clockwork.Clock

	mu      sync.Mutex
	visible bool
}

// NewPoller creates a Poller. Visibility starts true.
func NewPoller(engine *Engine, tracker *Tracker, clock clockwork.Clock) *Poller {
	return &Poller{
		engine:  engine,
		tracker: tracker,
		clock:   clock,
		visible: true,
	}
}

// SetVisible updates the client visibility hint used to pick cadence
func (p *Poller) SetVisible(visible bool) {
	p.mu.Lock()
	p.visible = visible
	p.mu.Unlock()
}

// Visible returns the current visibility hint
func (p *Poller) Visible() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.visible
}

// Run polls until the context is cancelled. Poll errors are absorbed;
// the previous snapshot stays valid and the next tick retries.
func (p *Poller) Run(ctx context.Context) error {
	for {
		status, hasRoom := p.engine.RoomStatus()
		timer := p.clock.NewTimer(IntervalFor(status, hasRoom, p.Visible()))

		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.Chan():
		}

		p.tick(ctx)
	}
}

func (p *Poller) tick(ctx context.Context) {
	if _, ok := p.tracker.UserID(); !ok {
		return
	}

	status, hasRoom := p.engine.RoomStatus()
	if hasRoom && status == model.RoomStatusPlaying {
		_ = p.engine.ReloadRounds(ctx)
		_ = p.engine.LoadLatestRoom(ctx)
		return
	}

	_ = p.engine.LoadLatestRoom(ctx)
	_ = p.engine.LoadMyRecord(ctx)
}
