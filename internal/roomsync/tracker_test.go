package roomsync

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/munidon/bw-genius/internal/auth"
	"github.com/munidon/bw-genius/internal/model"
	"github.com/munidon/bw-genius/internal/store"
	"github.com/munidon/bw-genius/internal/store/memory"
	"github.com/munidon/bw-genius/internal/testutil"
)

type TrackerSuite struct {
	suite.Suite
	authority *fakeAuthority
	provider  *fakeProvider
	artifacts *memory.Store
	observer  *recordingObserver
	tracker   *Tracker
	engine    *Engine
	ctx       context.Context

	userID uuid.UUID
}

func TestTrackerSuite(t *testing.T) {
	suite.Run(t, new(TrackerSuite))
}

func (s *TrackerSuite) SetupTest() {
	s.authority = &fakeAuthority{}
	s.provider = &fakeProvider{}
	s.artifacts = memory.New()
	s.observer = &recordingObserver{}
	s.ctx = context.Background()

	logger := testutil.NopLogger()
	s.tracker = NewTracker(s.provider, s.artifacts, s.authority, logger)
	s.engine = NewEngine(s.authority, s.tracker, s.observer, nil, logger)

	s.userID = uuid.MustParse("33333333-3333-3333-3333-333333333333")
}

func (s *TrackerSuite) session() *auth.Session {
	return &auth.Session{UserID: s.userID, Nickname: "Cara", AccessToken: "tok-abc"}
}

func (s *TrackerSuite) TestResumeWithSessionSetsIdentity() {
	s.provider.session = s.session()

	s.Require().NoError(s.tracker.Resume(s.ctx))

	userID, ok := s.tracker.UserID()
	s.Require().True(ok)
	s.Equal(s.userID, userID)
	s.Equal("Cara", s.tracker.Nickname())

	token, err := s.artifacts.Get(s.ctx, tokenArtifactKey)
	s.Require().NoError(err)
	s.Equal("tok-abc", token)
}

func (s *TrackerSuite) TestResumeWithoutSessionStaysSignedOut() {
	s.Require().NoError(s.tracker.Resume(s.ctx))

	_, ok := s.tracker.UserID()
	s.False(ok)
}

func (s *TrackerSuite) TestSessionChangeBumpsEpoch() {
	before := s.tracker.Epoch()
	s.Require().NoError(s.tracker.HandleSessionChange(s.ctx, s.session()))
	s.Greater(s.tracker.Epoch(), before)

	mid := s.tracker.Epoch()
	s.Require().NoError(s.tracker.HandleSessionChange(s.ctx, nil))
	s.Greater(s.tracker.Epoch(), mid)
}

func (s *TrackerSuite) TestSessionChangePicksUpStoredNickname() {
	s.authority.profilesFn = func(ids []uuid.UUID) ([]model.Profile, error) {
		return []model.Profile{{ID: s.userID, Nickname: "StoredName", Wins: 1, Losses: 0}}, nil
	}

	s.Require().NoError(s.tracker.HandleSessionChange(s.ctx, s.session()))

	s.Equal("StoredName", s.tracker.Nickname())
}

func (s *TrackerSuite) TestCleanupRunsOncePerIdentity() {
	s.Require().NoError(s.tracker.HandleSessionChange(s.ctx, s.session()))
	s.Eventually(func() bool {
		return s.authority.CleanupCalls() == 1
	}, time.Second, 10*time.Millisecond)

	// A refreshed session for the same identity does not sweep again.
	s.Require().NoError(s.tracker.HandleSessionChange(s.ctx, s.session()))
	time.Sleep(50 * time.Millisecond)
	s.Equal(1, s.authority.CleanupCalls())
}

func (s *TrackerSuite) TestSignOutSessionChangeClearsState() {
	s.Require().NoError(s.tracker.HandleSessionChange(s.ctx, s.session()))
	s.Require().NoError(s.engine.ApplyIncoming(s.ctx, &model.Room{
		ID: uuid.New(), HostID: s.userID, Status: model.RoomStatusWaiting, UpdatedAt: ts(0),
	}))

	s.Require().NoError(s.tracker.HandleSessionChange(s.ctx, nil))

	_, ok := s.tracker.UserID()
	s.False(ok)
	s.Nil(s.engine.Room())
	_, err := s.artifacts.Get(s.ctx, tokenArtifactKey)
	s.ErrorIs(err, store.ErrKeyNotFound)
}

func (s *TrackerSuite) TestLogoutClearsStateAndPurgesArtifacts() {
	s.Require().NoError(s.tracker.HandleSessionChange(s.ctx, s.session()))
	s.Require().NoError(s.artifacts.Put(s.ctx, legacyTokenKey, "old-token"))
	s.Require().NoError(s.engine.ApplyIncoming(s.ctx, &model.Room{
		ID: uuid.New(), HostID: s.userID, Status: model.RoomStatusPlaying, UpdatedAt: ts(0),
	}))

	s.Require().NoError(s.tracker.Logout(s.ctx))

	_, ok := s.tracker.UserID()
	s.False(ok)
	s.Nil(s.engine.Room())
	s.Zero(s.artifacts.Len())
	s.Equal([]auth.Scope{auth.ScopeGlobal}, s.provider.SignOutScopes())
}

func (s *TrackerSuite) TestLogoutFallsBackToLocalSignOut() {
	s.Require().NoError(s.tracker.HandleSessionChange(s.ctx, s.session()))
	s.provider.signOutErr = map[auth.Scope]error{
		auth.ScopeGlobal: errors.New("network unreachable"),
	}

	s.Require().NoError(s.tracker.Logout(s.ctx))

	s.Equal([]auth.Scope{auth.ScopeGlobal, auth.ScopeLocal}, s.provider.SignOutScopes())
}

func (s *TrackerSuite) TestLogoutReportsTotalSignOutFailure() {
	s.Require().NoError(s.tracker.HandleSessionChange(s.ctx, s.session()))
	s.provider.signOutErr = map[auth.Scope]error{
		auth.ScopeGlobal: errors.New("network unreachable"),
		auth.ScopeLocal:  errors.New("network unreachable"),
	}

	s.Error(s.tracker.Logout(s.ctx))

	// The local clear holds even when the provider is unreachable.
	_, ok := s.tracker.UserID()
	s.False(ok)
	s.Zero(s.artifacts.Len())
}

func (s *TrackerSuite) TestLogoutReclearsStateSlippedInDuringSignOut() {
	s.Require().NoError(s.tracker.HandleSessionChange(s.ctx, s.session()))

	// An in-flight fetch completes between the optimistic clear and the
	// provider's response.
	s.provider.onSignOut = func(scope auth.Scope) {
		_ = s.engine.ApplyIncoming(s.ctx, &model.Room{
			ID: uuid.New(), HostID: s.userID, Status: model.RoomStatusWaiting, UpdatedAt: ts(0),
		})
	}

	s.Require().NoError(s.tracker.Logout(s.ctx))
	s.Nil(s.engine.Room())
}

func (s *TrackerSuite) TestLogoutLeavesNewSessionAlone() {
	s.Require().NoError(s.tracker.HandleSessionChange(s.ctx, s.session()))

	// A new sign-in lands while the provider processes the sign-out.
	next := &auth.Session{
		UserID:      uuid.MustParse("44444444-4444-4444-4444-444444444444"),
		Nickname:    "Dana",
		AccessToken: "tok-next",
	}
	s.provider.onSignOut = func(scope auth.Scope) {
		s.NoError(s.tracker.HandleSessionChange(s.ctx, next))
	}

	s.Require().NoError(s.tracker.Logout(s.ctx))

	userID, ok := s.tracker.UserID()
	s.Require().True(ok)
	s.Equal(next.UserID, userID)

	// The new session's token survives; the second purge was skipped.
	token, err := s.artifacts.Get(s.ctx, tokenArtifactKey)
	s.Require().NoError(err)
	s.Equal("tok-next", token)
}
