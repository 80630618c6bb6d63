// Package roomsync keeps a local view of a shared, remotely-persisted
// room record correct and monotonically up to date. Push notifications,
// polls and user actions all funnel through one reconciliation entry
// point; per-stream sequence guards and a session epoch discard every
// stale in-flight result.
package roomsync

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/munidon/bw-genius/internal/api"
	"github.com/munidon/bw-genius/internal/dependencies/random"
	"github.com/munidon/bw-genius/internal/model"
	"github.com/munidon/bw-genius/internal/view"
)

// Observer receives snapshot transitions and action outcomes in
// application order. Implementations must not call back into the engine.
type Observer interface {
	RoomChanged(next *model.Room, userID uuid.UUID, forfeit bool)
	RoomCleared(wasPlaying bool)
	RoomLost()
	TileSubmitted(tile int)
	ReadyConfirmed()
	ActionFailed(err error)
}

// Snapshot is a copy of the engine's current state for consumers
type Snapshot struct {
	Room        *model.Room
	Rounds      []model.Round
	Submissions []model.Submission
	Reveals     []model.RevealedMove
	Profiles    map[uuid.UUID]model.Profile
	Record      model.PlayerRecord
}

// Engine is the room snapshot reconciler. There is exactly one current
// snapshot per client; all consumers read through the engine.
type Engine struct {
	authority api.Authority
	tracker   *Tracker
	observer  Observer
	random    random.Random
	logger    *slog.Logger

	mu          sync.Mutex
	room        *model.Room
	rounds      []model.Round
	submissions []model.Submission
	reveals     []model.RevealedMove
	revealsFor  *uuid.UUID
	profiles    map[uuid.UUID]model.Profile
	record      model.PlayerRecord

	roomGuard        Guard
	roundsGuard      Guard
	submissionsGuard Guard

	emptyRoomReads int
}

// NewEngine creates an Engine and attaches it to the tracker. observer
// may be nil.
func NewEngine(
	authority api.Authority,
	tracker *Tracker,
	observer Observer,
	rnd random.Random,
	logger *slog.Logger,
) *Engine {
	e := &Engine{
		authority: authority,
		tracker:   tracker,
		observer:  observer,
		random:    rnd,
		logger:    logger.With(slog.String("component", "roomsync")),
		profiles:  make(map[uuid.UUID]model.Profile),
	}
	tracker.attach(e)
	return e
}

// ApplyIncoming merges a candidate snapshot into local state.
//
// A candidate for a different room replaces the local snapshot
// unconditionally. For the same room, a candidate whose last-modified
// timestamp is strictly older than the local one is discarded; when the
// comparison is not decidable the candidate is applied (availability
// over strict rejection). Accepted candidates fully replace the
// snapshot and fan out dependent reloads.
func (e *Engine) ApplyIncoming(ctx context.Context, candidate *model.Room) error {
	if candidate == nil {
		return nil
	}

	e.mu.Lock()
	sameRoom := e.room != nil && e.room.ID == candidate.ID
	if sameRoom {
		if localAt, ok := e.room.UpdatedAtTime(); ok {
			if candAt, ok := candidate.UpdatedAtTime(); ok && candAt.Before(localAt) {
				e.mu.Unlock()
				e.logger.Debug("discarded superseded snapshot",
					slog.String("room_id", candidate.ID.String()))
				return nil
			}
		}
	} else {
		// Ancillary data from another room must never be read against
		// this snapshot, even for the moment the refetch takes.
		e.rounds = nil
		e.submissions = nil
	}

	e.room = candidate
	e.emptyRoomReads = 0
	if !candidate.IsTerminal() || !sameRoom {
		e.reveals = nil
		e.revealsFor = nil
	}

	userID, _ := e.tracker.UserID()
	forfeit := view.FinishedByForfeit(candidate, e.rounds)
	if e.observer != nil {
		e.observer.RoomChanged(candidate, userID, forfeit)
	}

	roomID := candidate.ID
	terminal := candidate.IsTerminal()
	playerIDs := candidate.PlayerIDs()
	e.mu.Unlock()

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		_ = e.ReloadRounds(ctx)
	}()
	go func() {
		defer wg.Done()
		_ = e.ReloadSubmissions(ctx)
	}()
	go func() {
		defer wg.Done()
		e.loadProfiles(ctx, playerIDs)
	}()
	if terminal {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e.loadReveals(ctx, roomID)
		}()
	}
	wg.Wait()

	return nil
}

// ReloadRounds refreshes the round list for the current room. A stale
// result (newer request issued, or room switched) is discarded.
func (e *Engine) ReloadRounds(ctx context.Context) error {
	e.mu.Lock()
	if e.room == nil {
		e.mu.Unlock()
		return nil
	}
	roomID := e.room.ID
	ticket := e.roundsGuard.Issue()
	e.mu.Unlock()

	rounds, err := e.authority.RoundsForRoom(ctx, roomID)
	if err != nil {
		e.logger.Warn("round reload failed", slog.String("error", err.Error()))
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.roundsGuard.Current(ticket) || e.room == nil || e.room.ID != roomID {
		return nil
	}
	e.rounds = rounds
	return nil
}

// ReloadSubmissions refreshes the local participant's submissions for
// the current room, discarding results that outlived the room or the
// identity they were issued under.
func (e *Engine) ReloadSubmissions(ctx context.Context) error {
	userID, ok := e.tracker.UserID()
	if !ok {
		return nil
	}

	e.mu.Lock()
	if e.room == nil {
		e.mu.Unlock()
		return nil
	}
	roomID := e.room.ID
	ticket := e.submissionsGuard.Issue()
	e.mu.Unlock()

	subs, err := e.authority.SubmissionsForPlayer(ctx, roomID, userID)
	if err != nil {
		e.logger.Warn("submission reload failed", slog.String("error", err.Error()))
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.submissionsGuard.Current(ticket) || e.room == nil || e.room.ID != roomID {
		return nil
	}
	if current, ok := e.tracker.UserID(); !ok || current != userID {
		return nil
	}
	e.submissions = subs
	return nil
}

// LoadLatestRoom refreshes the authoritative room snapshot: first the
// known room by ID, then a fallback lookup by participant. Empty reads
// are debounced (§ clearAfterEmptyReads) so a transient read-after-write
// gap cannot wipe a live room.
func (e *Engine) LoadLatestRoom(ctx context.Context) error {
	userID, ok := e.tracker.UserID()
	if !ok {
		return model.ErrNotSignedIn
	}
	epoch := e.tracker.Epoch()

	e.mu.Lock()
	ticket := e.roomGuard.Issue()
	local := e.room
	e.mu.Unlock()

	if local != nil {
		byID, err := e.authority.RoomByID(ctx, local.ID)
		if err != nil {
			// Transport failure leaves prior state untouched; it is
			// not "room no longer exists".
			return err
		}
		if e.stale(ticket, userID, epoch) {
			return nil
		}
		if byID != nil {
			localAt, localOK := local.UpdatedAtTime()
			nextAt, nextOK := byID.UpdatedAtTime()
			if !localOK || !nextOK || nextAt.After(localAt) {
				return e.ApplyIncoming(ctx, byID)
			}
			if !local.IsTerminal() {
				return nil
			}
			// A terminal room may be getting replaced; fall through to
			// the participant lookup to discover its successor.
		}
	}

	statuses := []model.RoomStatus{model.RoomStatusPlaying, model.RoomStatusWaiting}
	if local != nil && local.IsTerminal() {
		statuses = append(statuses, model.RoomStatusFinished)
	}

	latest, err := e.authority.LatestRoomForPlayer(ctx, userID, statuses)
	if err != nil {
		return err
	}
	if e.stale(ticket, userID, epoch) {
		return nil
	}
	if latest != nil {
		return e.ApplyIncoming(ctx, latest)
	}

	// Definitive empty read.
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.roomGuard.Current(ticket) || e.room == nil {
		return nil
	}
	if !e.room.IsTerminal() {
		e.emptyRoomReads++
		if e.emptyRoomReads < clearAfterEmptyReads {
			return nil
		}
	}
	e.clearRoomScopedLocked()
	return nil
}

// clearAfterEmptyReads is how many consecutive empty latest-room reads
// it takes to clear a live room. A terminal room clears on the first,
// since the client is already replacing it.
const clearAfterEmptyReads = 2

func (e *Engine) stale(ticket uint64, userID uuid.UUID, epoch uint64) bool {
	if !e.tracker.SameIdentity(userID, epoch) {
		return true
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return !e.roomGuard.Current(ticket)
}

func (e *Engine) loadReveals(ctx context.Context, roomID uuid.UUID) {
	rows, err := e.authority.RoomReveals(ctx, roomID)
	if err != nil {
		e.logger.Warn("reveal load failed", slog.String("error", err.Error()))
		rows = nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.room == nil || e.room.ID != roomID || !e.room.IsTerminal() {
		return
	}
	e.reveals = rows
	e.revealsFor = &roomID
}

func (e *Engine) loadProfiles(ctx context.Context, ids []uuid.UUID) {
	profiles, err := e.authority.ProfilesByIDs(ctx, ids)
	if err != nil {
		e.logger.Warn("profile lookup failed", slog.String("error", err.Error()))
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	for _, p := range profiles {
		e.profiles[p.ID] = p
	}
}

// LoadMyRecord refreshes the local participant's win/loss record
func (e *Engine) LoadMyRecord(ctx context.Context) error {
	userID, ok := e.tracker.UserID()
	if !ok {
		return model.ErrNotSignedIn
	}
	epoch := e.tracker.Epoch()

	profile, err := e.authority.ProfileByID(ctx, userID)
	if !e.tracker.SameIdentity(userID, epoch) {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if err != nil || profile == nil {
		e.record = model.PlayerRecord{}
		return err
	}
	e.record = profile.Record()
	e.profiles[profile.ID] = *profile
	return nil
}

// SyncNickname pulls the stored nickname for the current identity,
// falling back to the session-provided one when no profile exists yet
func (e *Engine) SyncNickname(ctx context.Context, fallback string) error {
	userID, ok := e.tracker.UserID()
	if !ok {
		return model.ErrNotSignedIn
	}
	epoch := e.tracker.Epoch()

	profile, err := e.authority.ProfileByID(ctx, userID)
	if !e.tracker.SameIdentity(userID, epoch) {
		return nil
	}
	if err != nil {
		return err
	}

	nickname := strings.TrimSpace(fallback)
	if profile != nil && profile.Nickname != "" {
		nickname = profile.Nickname
	}
	if nickname == "" {
		return nil
	}

	e.mu.Lock()
	if profile != nil {
		e.profiles[profile.ID] = *profile
	} else {
		e.profiles[userID] = model.Profile{ID: userID, Nickname: nickname}
	}
	e.mu.Unlock()

	e.tracker.setNickname(userID, nickname)
	return nil
}

// ClearRoomScoped drops all room-scoped state and invalidates every
// outstanding room-scoped fetch
func (e *Engine) ClearRoomScoped() {
	e.mu.Lock()
	e.clearRoomScopedLocked()
	e.mu.Unlock()
}

func (e *Engine) clearRoomScopedLocked() {
	e.roomGuard.Invalidate()
	e.roundsGuard.Invalidate()
	e.submissionsGuard.Invalidate()
	e.room = nil
	e.rounds = nil
	e.submissions = nil
	e.reveals = nil
	e.revealsFor = nil
	e.emptyRoomReads = 0
	if e.observer != nil {
		e.observer.RoomLost()
	}
}

// ClearIdentityScoped drops identity-scoped state along with everything
// room-scoped. Used on logout and session switches.
func (e *Engine) ClearIdentityScoped() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.clearRoomScopedLocked()
	e.record = model.PlayerRecord{}
	e.profiles = make(map[uuid.UUID]model.Profile)
}

// Room returns the current snapshot, or nil
func (e *Engine) Room() *model.Room {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.room
}

// RoomStatus returns the current room's status and whether a room exists
func (e *Engine) RoomStatus() (model.RoomStatus, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.room == nil {
		return "", false
	}
	return e.room.Status, true
}

// Snapshot returns a copy of all engine state for consumers
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	profiles := make(map[uuid.UUID]model.Profile, len(e.profiles))
	for id, p := range e.profiles {
		profiles[id] = p
	}
	return Snapshot{
		Room:        e.room,
		Rounds:      append([]model.Round(nil), e.rounds...),
		Submissions: append([]model.Submission(nil), e.submissions...),
		Reveals:     append([]model.RevealedMove(nil), e.reveals...),
		Profiles:    profiles,
		Record:      e.record,
	}
}
