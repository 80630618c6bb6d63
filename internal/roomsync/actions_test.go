package roomsync

import (
	"errors"

	"github.com/google/uuid"

	"github.com/munidon/bw-genius/internal/api"
	"github.com/munidon/bw-genius/internal/model"
)

// Action tests share the EngineSuite fixture.

func (s *EngineSuite) TestCreateRoomGeneratesCode() {
	s.random.QueueString("QZ4WX7")

	var gotCode model.RoomCode
	s.authority.createRoomFn = func(code model.RoomCode, nickname string) (*model.Room, error) {
		gotCode = code
		room := s.makeRoom(uuid.New(), model.RoomStatusWaiting, ts(0))
		room.Code = code
		return room, nil
	}

	room, err := s.engine.CreateRoom(s.ctx, "Ann")
	s.Require().NoError(err)
	s.Equal(model.RoomCode("QZ4WX7"), gotCode)
	s.Equal(room.ID, s.engine.Room().ID)
}

func (s *EngineSuite) TestCreateRoomRequiresNickname() {
	_, err := s.engine.CreateRoom(s.ctx, "   ")
	s.ErrorIs(err, model.ErrNicknameRequired)
	s.Require().Len(s.observer.Failures(), 1)
}

func (s *EngineSuite) TestJoinRoomNormalizesCode() {
	var gotCode model.RoomCode
	s.authority.joinRoomFn = func(code model.RoomCode, nickname string) (*model.Room, error) {
		gotCode = code
		room := s.makeRoom(uuid.New(), model.RoomStatusWaiting, ts(0))
		room.Code = code
		return room, nil
	}

	_, err := s.engine.JoinRoom(s.ctx, " qz4wx7 ", "Bob")
	s.Require().NoError(err)
	s.Equal(model.RoomCode("QZ4WX7"), gotCode)
}

func (s *EngineSuite) TestJoinRoomRejectsBadCode() {
	_, err := s.engine.JoinRoom(s.ctx, "ABC", "Bob")
	s.ErrorIs(err, model.ErrInvalidRoomCode)
}

func (s *EngineSuite) TestStartGameRequiresGuest() {
	roomID := uuid.New()
	room := s.makeRoom(roomID, model.RoomStatusWaiting, ts(0))
	room.GuestID = nil
	room.GuestReady = false
	s.Require().NoError(s.engine.ApplyIncoming(s.ctx, room))

	s.authority.roomByIDFn = func(uuid.UUID) (*model.Room, error) {
		return room, nil
	}

	s.ErrorIs(s.engine.StartGame(s.ctx, roomID), model.ErrGuestNotJoined)
}

func (s *EngineSuite) TestStartGameRequiresReadyGuest() {
	roomID := uuid.New()
	room := s.makeRoom(roomID, model.RoomStatusWaiting, ts(0))
	room.GuestReady = false
	s.Require().NoError(s.engine.ApplyIncoming(s.ctx, room))

	s.authority.roomByIDFn = func(uuid.UUID) (*model.Room, error) {
		return room, nil
	}

	s.ErrorIs(s.engine.StartGame(s.ctx, roomID), model.ErrGuestNotReady)
}

func (s *EngineSuite) TestStartGameAbandonedWhenRoomChanges() {
	oldID := uuid.New()
	finished := s.makeRoom(oldID, model.RoomStatusFinished, ts(0))
	finished.WinnerID = &s.hostID
	s.Require().NoError(s.engine.ApplyIncoming(s.ctx, finished))

	// The refresh lands the client in a different room.
	successor := s.makeRoom(uuid.New(), model.RoomStatusWaiting, ts(10))
	s.authority.roomByIDFn = func(uuid.UUID) (*model.Room, error) { return finished, nil }
	s.authority.latestRoomFn = func(uuid.UUID, []model.RoomStatus) (*model.Room, error) {
		return successor, nil
	}

	started := false
	s.authority.startGameFn = func(uuid.UUID) (*model.Room, error) {
		started = true
		return nil, nil
	}

	s.ErrorIs(s.engine.StartGame(s.ctx, oldID), model.ErrRoomChanged)
	s.False(started)
}

func (s *EngineSuite) TestStartGameSucceeds() {
	roomID := uuid.New()
	waiting := s.makeRoom(roomID, model.RoomStatusWaiting, ts(0))
	s.Require().NoError(s.engine.ApplyIncoming(s.ctx, waiting))

	s.authority.roomByIDFn = func(uuid.UUID) (*model.Room, error) { return waiting, nil }
	s.authority.startGameFn = func(id uuid.UUID) (*model.Room, error) {
		playing := s.makeRoom(id, model.RoomStatusPlaying, ts(10))
		playing.CurrentRound = 1
		playing.RoundPhase = model.RoundPhaseAwaitLead
		return playing, nil
	}

	s.Require().NoError(s.engine.StartGame(s.ctx, roomID))
	s.Equal(model.RoomStatusPlaying, s.engine.Room().Status)
}

func (s *EngineSuite) playingRoom(roomID uuid.UUID) *model.Room {
	room := s.makeRoom(roomID, model.RoomStatusPlaying, ts(0))
	room.CurrentRound = 1
	room.RoundPhase = model.RoundPhaseAwaitLead
	room.LeadPlayerID = &s.hostID
	return room
}

func (s *EngineSuite) TestSubmitTileSucceeds() {
	roomID := uuid.New()
	s.authority.roundsFn = func(id uuid.UUID) ([]model.Round, error) {
		return []model.Round{{RoomID: id, RoundNumber: 1, LeadPlayerID: s.hostID, FollowPlayerID: s.guestID}}, nil
	}
	s.Require().NoError(s.engine.ApplyIncoming(s.ctx, s.playingRoom(roomID)))

	var gotTile int
	s.authority.submitTileFn = func(id uuid.UUID, tile int) (*model.Room, error) {
		gotTile = tile
		next := s.playingRoom(id)
		next.RoundPhase = model.RoundPhaseAwaitFollow
		next.UpdatedAt = ts(10)
		return next, nil
	}

	s.Require().NoError(s.engine.SubmitTile(s.ctx, 5))
	s.Equal(5, gotTile)
	s.Equal([]int{5}, s.observer.Tiles())
}

func (s *EngineSuite) TestSubmitTileRejectsOutOfRange() {
	s.Require().NoError(s.engine.ApplyIncoming(s.ctx, s.playingRoom(uuid.New())))
	s.ErrorIs(s.engine.SubmitTile(s.ctx, 10), model.ErrInvalidTile)
}

func (s *EngineSuite) TestSubmitTileRejectsOutOfTurn() {
	roomID := uuid.New()
	s.authority.roundsFn = func(id uuid.UUID) ([]model.Round, error) {
		return []model.Round{{RoomID: id, RoundNumber: 1, LeadPlayerID: s.guestID, FollowPlayerID: s.hostID}}, nil
	}
	room := s.playingRoom(roomID)
	room.LeadPlayerID = &s.guestID
	s.Require().NoError(s.engine.ApplyIncoming(s.ctx, room))

	s.ErrorIs(s.engine.SubmitTile(s.ctx, 5), model.ErrNotYourTurn)
}

func (s *EngineSuite) TestSubmitTileRejectsUsedTile() {
	roomID := uuid.New()
	s.authority.roundsFn = func(id uuid.UUID) ([]model.Round, error) {
		return []model.Round{
			{RoomID: id, RoundNumber: 1, LeadPlayerID: s.hostID, FollowPlayerID: s.guestID},
			{RoomID: id, RoundNumber: 2, LeadPlayerID: s.hostID, FollowPlayerID: s.guestID},
		}, nil
	}
	s.authority.submissionsFn = func(id, playerID uuid.UUID) ([]model.Submission, error) {
		return []model.Submission{{RoomID: id, RoundNumber: 1, PlayerID: playerID, Tile: 5}}, nil
	}

	room := s.playingRoom(roomID)
	room.CurrentRound = 2
	s.Require().NoError(s.engine.ApplyIncoming(s.ctx, room))

	s.ErrorIs(s.engine.SubmitTile(s.ctx, 5), model.ErrTileAlreadyUsed)
}

func (s *EngineSuite) TestSubmitTileRejectsDoubleSubmit() {
	roomID := uuid.New()
	s.authority.roundsFn = func(id uuid.UUID) ([]model.Round, error) {
		return []model.Round{{RoomID: id, RoundNumber: 1, LeadPlayerID: s.hostID, FollowPlayerID: s.guestID}}, nil
	}
	s.authority.submissionsFn = func(id, playerID uuid.UUID) ([]model.Submission, error) {
		return []model.Submission{{RoomID: id, RoundNumber: 1, PlayerID: playerID, Tile: 5}}, nil
	}
	s.Require().NoError(s.engine.ApplyIncoming(s.ctx, s.playingRoom(roomID)))

	s.ErrorIs(s.engine.SubmitTile(s.ctx, 6), model.ErrAlreadySubmitted)
}

func (s *EngineSuite) TestRejectedSubmitLeavesStateIntact() {
	roomID := uuid.New()
	s.authority.roundsFn = func(id uuid.UUID) ([]model.Round, error) {
		return []model.Round{{RoomID: id, RoundNumber: 1, LeadPlayerID: s.hostID, FollowPlayerID: s.guestID}}, nil
	}
	s.Require().NoError(s.engine.ApplyIncoming(s.ctx, s.playingRoom(roomID)))

	rejection := &api.APIError{Code: api.CodeNotYourTurn, Message: "not your turn"}
	s.authority.submitTileFn = func(uuid.UUID, int) (*model.Room, error) {
		return nil, rejection
	}

	err := s.engine.SubmitTile(s.ctx, 5)
	s.True(api.IsCode(err, api.CodeNotYourTurn))
	s.Equal(model.RoundPhaseAwaitLead, s.engine.Room().RoundPhase)
	s.NotEmpty(s.observer.Failures())
}

func (s *EngineSuite) TestLeaveRoomClearsStateAndSignalsForfeit() {
	s.Require().NoError(s.engine.ApplyIncoming(s.ctx, s.playingRoom(uuid.New())))

	s.Require().NoError(s.engine.LeaveRoom(s.ctx))
	s.Nil(s.engine.Room())
	s.Equal([]bool{true}, s.observer.Cleared())
}

func (s *EngineSuite) TestLeaveRoomTreatsMissingRoomAsSuccess() {
	s.Require().NoError(s.engine.ApplyIncoming(s.ctx, s.makeRoom(uuid.New(), model.RoomStatusWaiting, ts(0))))

	s.authority.leaveRoomFn = func(uuid.UUID) error {
		return &api.APIError{Code: api.CodeRoomNotFound, Message: "room not found"}
	}

	s.Require().NoError(s.engine.LeaveRoom(s.ctx))
	s.Nil(s.engine.Room())
	s.Equal([]bool{false}, s.observer.Cleared())
}

func (s *EngineSuite) TestLeaveRoomKeepsStateOnTransportError() {
	s.Require().NoError(s.engine.ApplyIncoming(s.ctx, s.makeRoom(uuid.New(), model.RoomStatusWaiting, ts(0))))

	s.authority.leaveRoomFn = func(uuid.UUID) error {
		return errors.New("connection refused")
	}

	s.Error(s.engine.LeaveRoom(s.ctx))
	s.NotNil(s.engine.Room())
}

func (s *EngineSuite) TestLeaveRoomWithoutRoomIsNoOp() {
	s.Require().NoError(s.engine.LeaveRoom(s.ctx))
	s.Empty(s.observer.Cleared())
}

func (s *EngineSuite) TestResetRoomAppliesFreshWaitingRoom() {
	roomID := uuid.New()
	finished := s.makeRoom(roomID, model.RoomStatusFinished, ts(0))
	finished.WinnerID = &s.hostID
	s.Require().NoError(s.engine.ApplyIncoming(s.ctx, finished))

	s.authority.resetRoomFn = func(id uuid.UUID) (*model.Room, error) {
		return s.makeRoom(id, model.RoomStatusWaiting, ts(10)), nil
	}

	s.Require().NoError(s.engine.ResetRoom(s.ctx))
	s.Equal(model.RoomStatusWaiting, s.engine.Room().Status)
	s.Empty(s.engine.Snapshot().Reveals)
}

func (s *EngineSuite) TestSetReadySignalsConfirmation() {
	roomID := uuid.New()
	s.Require().NoError(s.engine.ApplyIncoming(s.ctx, s.makeRoom(roomID, model.RoomStatusWaiting, ts(0))))

	s.authority.setReadyFn = func(id uuid.UUID, ready bool) (*model.Room, error) {
		room := s.makeRoom(id, model.RoomStatusWaiting, ts(10))
		room.GuestReady = ready
		return room, nil
	}

	s.Require().NoError(s.engine.SetReady(s.ctx, true))
	s.True(s.engine.Room().GuestReady)
}
