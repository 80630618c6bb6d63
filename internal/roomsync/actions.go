package roomsync

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/munidon/bw-genius/internal/api"
	"github.com/munidon/bw-genius/internal/model"
	"github.com/munidon/bw-genius/internal/view"
)

// Actions validate locally for responsiveness, then defer to the
// authority; the authority's answer is final either way. A rejected or
// failed action never mutates the local snapshot.

// fail routes an action error to the observer and returns it
func (e *Engine) fail(err error) error {
	if e.observer != nil {
		e.observer.ActionFailed(err)
	}
	return err
}

// CreateRoom creates a room with a freshly generated code and applies
// the authority's snapshot of it
func (e *Engine) CreateRoom(ctx context.Context, nickname string) (*model.Room, error) {
	if _, ok := e.tracker.UserID(); !ok {
		return nil, e.fail(model.ErrNotSignedIn)
	}
	nickname = strings.TrimSpace(nickname)
	if nickname == "" {
		return nil, e.fail(model.ErrNicknameRequired)
	}

	code := model.RoomCode(e.random.String(model.RoomCodeLength, model.RoomCodeAlphabet))
	room, err := e.authority.CreateRoom(ctx, code, nickname)
	if err != nil {
		return nil, e.fail(err)
	}

	_ = e.ApplyIncoming(ctx, room)
	return room, nil
}

// JoinRoom joins the room with the given code as guest
func (e *Engine) JoinRoom(ctx context.Context, code, nickname string) (*model.Room, error) {
	if _, ok := e.tracker.UserID(); !ok {
		return nil, e.fail(model.ErrNotSignedIn)
	}
	nickname = strings.TrimSpace(nickname)
	if nickname == "" {
		return nil, e.fail(model.ErrNicknameRequired)
	}
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != model.RoomCodeLength {
		return nil, e.fail(model.ErrInvalidRoomCode)
	}

	room, err := e.authority.JoinRoom(ctx, model.RoomCode(code), nickname)
	if err != nil {
		return nil, e.fail(err)
	}

	_ = e.ApplyIncoming(ctx, room)
	return room, nil
}

// SetReady toggles the local guest's ready flag
func (e *Engine) SetReady(ctx context.Context, ready bool) error {
	roomID, err := e.currentRoomID()
	if err != nil {
		return e.fail(err)
	}

	room, err := e.authority.SetReady(ctx, roomID, ready)
	if err != nil {
		return e.fail(err)
	}

	if ready && e.observer != nil {
		e.observer.ReadyConfirmed()
	}
	_ = e.ApplyIncoming(ctx, room)
	return nil
}

// StartGame starts the match. The snapshot is re-synced first so the
// preconditions are checked against fresh state, and the action is
// abandoned if the refresh lands the client in a different room.
func (e *Engine) StartGame(ctx context.Context, roomID uuid.UUID) error {
	if err := e.LoadLatestRoom(ctx); err != nil {
		return e.fail(err)
	}

	e.mu.Lock()
	room := e.room
	e.mu.Unlock()

	switch {
	case room == nil || room.ID != roomID:
		return e.fail(model.ErrRoomChanged)
	case room.GuestID == nil:
		return e.fail(model.ErrGuestNotJoined)
	case !room.GuestReady:
		return e.fail(model.ErrGuestNotReady)
	}

	next, err := e.authority.StartGame(ctx, roomID)
	if err != nil {
		return e.fail(err)
	}

	_ = e.ApplyIncoming(ctx, next)
	return nil
}

// SubmitTile plays a tile in the active round
func (e *Engine) SubmitTile(ctx context.Context, tile int) error {
	userID, ok := e.tracker.UserID()
	if !ok {
		return e.fail(model.ErrNotSignedIn)
	}
	if !model.ValidTile(tile) {
		return e.fail(model.ErrInvalidTile)
	}

	e.mu.Lock()
	room := e.room
	rounds := e.rounds
	submissions := e.submissions
	e.mu.Unlock()

	switch {
	case room == nil:
		return e.fail(model.ErrNoActiveRoom)
	case !view.IsMyTurn(room, rounds, userID):
		return e.fail(model.ErrNotYourTurn)
	case view.SubmittedThisRound(room, submissions):
		return e.fail(model.ErrAlreadySubmitted)
	}
	for _, s := range submissions {
		if s.Tile == tile {
			return e.fail(model.ErrTileAlreadyUsed)
		}
	}

	if e.observer != nil {
		e.observer.TileSubmitted(tile)
	}

	next, err := e.authority.SubmitTile(ctx, room.ID, tile)
	if err != nil {
		return e.fail(err)
	}

	_ = e.ApplyIncoming(ctx, next)
	return nil
}

// ResetRoom rewinds a finished room to waiting for a rematch
func (e *Engine) ResetRoom(ctx context.Context) error {
	roomID, err := e.currentRoomID()
	if err != nil {
		return e.fail(err)
	}

	room, err := e.authority.ResetRoom(ctx, roomID)
	if err != nil {
		return e.fail(err)
	}

	_ = e.ApplyIncoming(ctx, room)
	return nil
}

// LeaveRoom departs the current room. Local state clears even when the
// authority reports the room already gone; being gone is the goal.
func (e *Engine) LeaveRoom(ctx context.Context) error {
	e.mu.Lock()
	room := e.room
	e.mu.Unlock()
	if room == nil {
		return nil
	}
	wasPlaying := room.Status == model.RoomStatusPlaying

	if err := e.authority.LeaveRoom(ctx, room.ID); err != nil {
		if !api.IsCode(err, api.CodeRoomNotFound) {
			return e.fail(err)
		}
	}

	e.ClearRoomScoped()
	if e.observer != nil {
		e.observer.RoomCleared(wasPlaying)
	}
	return nil
}

func (e *Engine) currentRoomID() (uuid.UUID, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.room == nil {
		return uuid.UUID{}, model.ErrNoActiveRoom
	}
	return e.room.ID, nil
}
