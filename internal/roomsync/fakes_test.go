package roomsync

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/munidon/bw-genius/internal/auth"
	"github.com/munidon/bw-genius/internal/model"
)

// fakeAuthority is a programmable Authority. Unset functions return
// empty results, matching a remote with no data.
type fakeAuthority struct {
	mu sync.Mutex

	createRoomFn     func(code model.RoomCode, nickname string) (*model.Room, error)
	joinRoomFn       func(code model.RoomCode, nickname string) (*model.Room, error)
	setReadyFn       func(roomID uuid.UUID, ready bool) (*model.Room, error)
	startGameFn      func(roomID uuid.UUID) (*model.Room, error)
	submitTileFn     func(roomID uuid.UUID, tile int) (*model.Room, error)
	resetRoomFn      func(roomID uuid.UUID) (*model.Room, error)
	leaveRoomFn      func(roomID uuid.UUID) error
	upsertNicknameFn func(nickname string) error

	roomByIDFn    func(roomID uuid.UUID) (*model.Room, error)
	latestRoomFn  func(playerID uuid.UUID, statuses []model.RoomStatus) (*model.Room, error)
	roundsFn      func(roomID uuid.UUID) ([]model.Round, error)
	submissionsFn func(roomID, playerID uuid.UUID) ([]model.Submission, error)
	revealsFn     func(roomID uuid.UUID) ([]model.RevealedMove, error)
	profilesFn    func(ids []uuid.UUID) ([]model.Profile, error)

	cleanupCalls int
}

func (f *fakeAuthority) CreateRoom(ctx context.Context, code model.RoomCode, nickname string) (*model.Room, error) {
	if f.createRoomFn == nil {
		return nil, nil
	}
	return f.createRoomFn(code, nickname)
}

func (f *fakeAuthority) JoinRoom(ctx context.Context, code model.RoomCode, nickname string) (*model.Room, error) {
	if f.joinRoomFn == nil {
		return nil, nil
	}
	return f.joinRoomFn(code, nickname)
}

func (f *fakeAuthority) SetReady(ctx context.Context, roomID uuid.UUID, ready bool) (*model.Room, error) {
	if f.setReadyFn == nil {
		return nil, nil
	}
	return f.setReadyFn(roomID, ready)
}

func (f *fakeAuthority) StartGame(ctx context.Context, roomID uuid.UUID) (*model.Room, error) {
	if f.startGameFn == nil {
		return nil, nil
	}
	return f.startGameFn(roomID)
}

func (f *fakeAuthority) SubmitTile(ctx context.Context, roomID uuid.UUID, tile int) (*model.Room, error) {
	if f.submitTileFn == nil {
		return nil, nil
	}
	return f.submitTileFn(roomID, tile)
}

func (f *fakeAuthority) ResetRoom(ctx context.Context, roomID uuid.UUID) (*model.Room, error) {
	if f.resetRoomFn == nil {
		return nil, nil
	}
	return f.resetRoomFn(roomID)
}

func (f *fakeAuthority) LeaveRoom(ctx context.Context, roomID uuid.UUID) error {
	if f.leaveRoomFn == nil {
		return nil
	}
	return f.leaveRoomFn(roomID)
}

func (f *fakeAuthority) UpsertNickname(ctx context.Context, nickname string) error {
	if f.upsertNicknameFn == nil {
		return nil
	}
	return f.upsertNicknameFn(nickname)
}

func (f *fakeAuthority) CleanupStaleRooms(ctx context.Context) error {
	f.mu.Lock()
	f.cleanupCalls++
	f.mu.Unlock()
	return nil
}

func (f *fakeAuthority) CleanupCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cleanupCalls
}

func (f *fakeAuthority) RoomByID(ctx context.Context, roomID uuid.UUID) (*model.Room, error) {
	if f.roomByIDFn == nil {
		return nil, nil
	}
	return f.roomByIDFn(roomID)
}

func (f *fakeAuthority) LatestRoomForPlayer(ctx context.Context, playerID uuid.UUID, statuses []model.RoomStatus) (*model.Room, error) {
	if f.latestRoomFn == nil {
		return nil, nil
	}
	return f.latestRoomFn(playerID, statuses)
}

func (f *fakeAuthority) RoundsForRoom(ctx context.Context, roomID uuid.UUID) ([]model.Round, error) {
	if f.roundsFn == nil {
		return nil, nil
	}
	return f.roundsFn(roomID)
}

func (f *fakeAuthority) SubmissionsForPlayer(ctx context.Context, roomID, playerID uuid.UUID) ([]model.Submission, error) {
	if f.submissionsFn == nil {
		return nil, nil
	}
	return f.submissionsFn(roomID, playerID)
}

func (f *fakeAuthority) RoomReveals(ctx context.Context, roomID uuid.UUID) ([]model.RevealedMove, error) {
	if f.revealsFn == nil {
		return nil, nil
	}
	return f.revealsFn(roomID)
}

func (f *fakeAuthority) ProfilesByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Profile, error) {
	if f.profilesFn == nil {
		return nil, nil
	}
	return f.profilesFn(ids)
}

func (f *fakeAuthority) ProfileByID(ctx context.Context, id uuid.UUID) (*model.Profile, error) {
	profiles, err := f.ProfilesByIDs(ctx, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	for i := range profiles {
		if profiles[i].ID == id {
			return &profiles[i], nil
		}
	}
	return nil, nil
}

// fakeProvider is a programmable identity provider
type fakeProvider struct {
	mu         sync.Mutex
	session    *auth.Session
	sessionErr error
	signOutErr map[auth.Scope]error
	signOuts   []auth.Scope
	onSignOut  func(scope auth.Scope)
}

func (f *fakeProvider) Session(ctx context.Context) (*auth.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.session, f.sessionErr
}

func (f *fakeProvider) SignOut(ctx context.Context, scope auth.Scope) error {
	f.mu.Lock()
	f.signOuts = append(f.signOuts, scope)
	hook := f.onSignOut
	err := f.signOutErr[scope]
	f.mu.Unlock()

	if hook != nil {
		hook(scope)
	}
	return err
}

func (f *fakeProvider) SignOutScopes() []auth.Scope {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]auth.Scope(nil), f.signOuts...)
}

// roomChange is one observed snapshot transition
type roomChange struct {
	roomID  uuid.UUID
	status  model.RoomStatus
	forfeit bool
}

// recordingObserver captures observer callbacks for assertions
type recordingObserver struct {
	mu       sync.Mutex
	changes  []roomChange
	cleared  []bool
	lost     int
	tiles    []int
	ready    int
	failures []error
}

func (o *recordingObserver) RoomChanged(next *model.Room, userID uuid.UUID, forfeit bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.changes = append(o.changes, roomChange{roomID: next.ID, status: next.Status, forfeit: forfeit})
}

func (o *recordingObserver) RoomCleared(wasPlaying bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.cleared = append(o.cleared, wasPlaying)
}

func (o *recordingObserver) RoomLost() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.lost++
}

func (o *recordingObserver) TileSubmitted(tile int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.tiles = append(o.tiles, tile)
}

func (o *recordingObserver) ReadyConfirmed() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.ready++
}

func (o *recordingObserver) ActionFailed(err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.failures = append(o.failures, err)
}

func (o *recordingObserver) Changes() []roomChange {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]roomChange(nil), o.changes...)
}

func (o *recordingObserver) Cleared() []bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]bool(nil), o.cleared...)
}

func (o *recordingObserver) Lost() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lost
}

func (o *recordingObserver) Tiles() []int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]int(nil), o.tiles...)
}

func (o *recordingObserver) Failures() []error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]error(nil), o.failures...)
}
