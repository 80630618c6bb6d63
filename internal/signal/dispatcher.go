// Package signal converts room snapshot transitions into one-shot
// presentation cues (sound hooks, transient banners). It observes
// transitions in application order and never reorders cues relative to
// the snapshot changes that caused them.
package signal

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/munidon/bw-genius/internal/api"
	"github.com/munidon/bw-genius/internal/model"
	"github.com/munidon/bw-genius/internal/view"
)

// Cue identifies a one-shot presentation effect
type Cue string

const (
	CueGameStart    Cue = "game_start"
	CueVictory      Cue = "victory"
	CueDefeat       Cue = "defeat"
	CueDraw         Cue = "draw"
	CueForfeitWin   Cue = "forfeit_win"
	CueReadyConfirm Cue = "ready_confirm"
	CueTileSubmit   Cue = "tile_submit"
	CueLeave        Cue = "leave"
	CueError        Cue = "error"
)

// Event is a dispatched cue with its presentation payload
type Event struct {
	Cue         Cue
	StarterRole view.StarterRole // set for CueGameStart
	Tile        int              // set for CueTileSubmit
	Message     string
}

// Dispatcher tracks the previously observed room status and emits cues
// on transitions. Duplicate application of an identical snapshot causes
// no status transition and therefore no cue.
type Dispatcher struct {
	mu         sync.Mutex
	prevRoomID uuid.UUID
	prevStatus model.RoomStatus
	hasPrev    bool

	events chan Event
	logger *slog.Logger
}

// New creates a Dispatcher
func New(logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		events: make(chan Event, 64),
		logger: logger.With(slog.String("component", "signal")),
	}
}

// Events returns the cue stream. Consumers should drain it promptly;
// cues are dropped, not blocked on, when the buffer fills.
func (d *Dispatcher) Events() <-chan Event {
	return d.events
}

// RoomChanged observes an accepted snapshot. forfeit reports whether the
// transition left the current round unresolved (computed by the caller
// from the round list as of the transition).
func (d *Dispatcher) RoomChanged(next *model.Room, userID uuid.UUID, forfeit bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	prev := d.prevStatus
	hadPrev := d.hasPrev && d.prevRoomID == next.ID
	d.prevRoomID = next.ID
	d.prevStatus = next.Status
	d.hasPrev = true

	// A different room means a fresh baseline, not a transition.
	if !hadPrev {
		return
	}

	if prev == model.RoomStatusWaiting && next.Status == model.RoomStatusPlaying {
		role := view.StarterFollow
		if next.LeadPlayerID != nil && *next.LeadPlayerID == userID {
			role = view.StarterLead
		}
		d.emit(Event{Cue: CueGameStart, StarterRole: role})
		return
	}

	if prev == model.RoomStatusPlaying && next.Status == model.RoomStatusFinished {
		switch {
		case next.WinnerID == nil:
			d.emit(Event{Cue: CueDraw})
		case *next.WinnerID == userID:
			d.emit(Event{Cue: CueVictory})
			if forfeit {
				d.emit(Event{
					Cue:     CueForfeitWin,
					Message: "Your opponent forfeited. The round tiles are revealed on the results screen.",
				})
			}
		default:
			d.emit(Event{Cue: CueDefeat})
		}
	}
}

// RoomCleared observes the local room being torn down (leave, switch,
// logout). wasPlaying selects the forfeit wording.
func (d *Dispatcher) RoomCleared(wasPlaying bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.prevRoomID = uuid.UUID{}
	d.prevStatus = ""
	d.hasPrev = false

	msg := "Left the room."
	if wasPlaying {
		msg = "Left the game; the match was forfeited."
	}
	d.emit(Event{Cue: CueLeave, Message: msg})
}

// RoomLost observes the local room disappearing without user intent
// (debounced empty reads, session change). It resets the transition
// baseline and emits nothing.
func (d *Dispatcher) RoomLost() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.prevRoomID = uuid.UUID{}
	d.prevStatus = ""
	d.hasPrev = false
}

// TileSubmitted emits the submit cue for an accepted tile
func (d *Dispatcher) TileSubmitted(tile int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.emit(Event{Cue: CueTileSubmit, Tile: tile})
}

// ReadyConfirmed emits the ready-confirm cue
func (d *Dispatcher) ReadyConfirmed() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.emit(Event{Cue: CueReadyConfirm})
}

// ActionFailed emits the error cue with the user-facing message
func (d *Dispatcher) ActionFailed(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.emit(Event{Cue: CueError, Message: api.UserMessage(err)})
}

func (d *Dispatcher) emit(ev Event) {
	select {
	case d.events <- ev:
	default:
		d.logger.Warn("cue dropped - buffer full", slog.String("cue", string(ev.Cue)))
	}
}
