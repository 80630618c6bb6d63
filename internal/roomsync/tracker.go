package roomsync

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/munidon/bw-genius/internal/api"
	"github.com/munidon/bw-genius/internal/auth"
	"github.com/munidon/bw-genius/internal/store"
)

const (
	// tokenArtifactKey is where the current access token is persisted
	// between runs.
	tokenArtifactKey = "auth-token"
	// legacyTokenKey is the pre-rename token location. Logout purges it
	// so an old client cannot resurrect a revoked session.
	legacyTokenKey = "session.token"
)

// purgePatterns matches every persisted credential artifact, current and
// legacy, by pattern rather than by exact key.
var purgePatterns = []string{"*" + tokenArtifactKey + "*", legacyTokenKey}

// Tracker owns the identity the rest of the engine operates under. Every
// session change bumps an epoch; work started under an older epoch finds
// out when it tries to apply and silently discards itself.
type Tracker struct {
	provider  auth.Provider
	artifacts store.Store
	authority api.Authority
	logger    *slog.Logger

	engine *Engine

	mu       sync.Mutex
	userID   *uuid.UUID
	nickname string
	epoch    uint64

	// cleanupDone records which identities already triggered the stale
	// room sweep this process. One sweep per identity is plenty.
	cleanupDone map[uuid.UUID]bool
}

// NewTracker creates a Tracker. The engine attaches itself via NewEngine.
func NewTracker(
	provider auth.Provider,
	artifacts store.Store,
	authority api.Authority,
	logger *slog.Logger,
) *Tracker {
	return &Tracker{
		provider:    provider,
		artifacts:   artifacts,
		authority:   authority,
		logger:      logger.With(slog.String("component", "session")),
		cleanupDone: make(map[uuid.UUID]bool),
	}
}

func (t *Tracker) attach(e *Engine) {
	t.engine = e
}

// UserID returns the current identity, if signed in
func (t *Tracker) UserID() (uuid.UUID, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.userID == nil {
		return uuid.UUID{}, false
	}
	return *t.userID, true
}

// Nickname returns the current identity's display name
func (t *Tracker) Nickname() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.nickname
}

// Epoch returns the current session epoch
func (t *Tracker) Epoch() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.epoch
}

// EpochIs reports whether the epoch is still current
func (t *Tracker) EpochIs(epoch uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.epoch == epoch
}

// SameIdentity reports whether the given identity and epoch are both
// still current. In-flight work captures these before its fetch and
// checks them before applying.
func (t *Tracker) SameIdentity(userID uuid.UUID, epoch uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.epoch == epoch && t.userID != nil && *t.userID == userID
}

func (t *Tracker) setNickname(userID uuid.UUID, nickname string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.userID != nil && *t.userID == userID {
		t.nickname = nickname
	}
}

// Resume loads the persisted session, if any, and brings the engine up
// to date with it. Called once at startup.
func (t *Tracker) Resume(ctx context.Context) error {
	sess, err := t.provider.Session(ctx)
	if err != nil {
		return fmt.Errorf("resuming session: %w", err)
	}
	return t.HandleSessionChange(ctx, sess)
}

// HandleSessionChange applies an authentication event: a new or refreshed
// session, or a sign-out (nil session). Either way the epoch advances, so
// everything in flight under the old identity is dead on arrival.
func (t *Tracker) HandleSessionChange(ctx context.Context, sess *auth.Session) error {
	t.mu.Lock()
	t.epoch++
	epoch := t.epoch

	if sess == nil {
		t.userID = nil
		t.nickname = ""
		t.mu.Unlock()

		t.engine.ClearIdentityScoped()
		t.purgeArtifacts(ctx)
		return nil
	}

	userID := sess.UserID
	t.userID = &userID
	t.nickname = sess.Nickname
	firstSeen := !t.cleanupDone[userID]
	t.cleanupDone[userID] = true
	t.mu.Unlock()

	if err := t.artifacts.Put(ctx, tokenArtifactKey, sess.AccessToken); err != nil {
		t.logger.Warn("persisting token failed", slog.String("error", err.Error()))
	}

	if firstSeen {
		// Best-effort sweep of this identity's stale rooms; runs once per
		// identity per process and must not block sign-in.
		go func() {
			sweepCtx := context.WithoutCancel(ctx)
			if err := t.authority.CleanupStaleRooms(sweepCtx); err != nil {
				t.logger.Warn("stale room sweep failed", slog.String("error", err.Error()))
			}
		}()
	}

	if !t.EpochIs(epoch) {
		return nil
	}
	if err := t.engine.SyncNickname(ctx, sess.Nickname); err != nil {
		t.logger.Warn("nickname sync failed", slog.String("error", err.Error()))
	}
	if err := t.engine.LoadMyRecord(ctx); err != nil {
		t.logger.Warn("record load failed", slog.String("error", err.Error()))
	}
	if !t.EpochIs(epoch) {
		return nil
	}
	if err := t.engine.LoadLatestRoom(ctx); err != nil {
		t.logger.Warn("room lookup failed", slog.String("error", err.Error()))
	}
	return nil
}

// Logout ends the session. Local state clears immediately and
// unconditionally; the provider sign-out happens after, with a local
// fallback if the global revocation fails. A second clear after the
// provider returns catches anything an in-flight fetch slipped in, but
// only if no new session arrived in between.
func (t *Tracker) Logout(ctx context.Context) error {
	t.mu.Lock()
	t.epoch++
	epoch := t.epoch
	t.userID = nil
	t.nickname = ""
	t.mu.Unlock()

	t.engine.ClearIdentityScoped()
	t.purgeArtifacts(ctx)

	signOutErr := t.provider.SignOut(ctx, auth.ScopeGlobal)
	if signOutErr != nil {
		t.logger.Warn("global sign-out failed, trying local",
			slog.String("error", signOutErr.Error()))
		if localErr := t.provider.SignOut(ctx, auth.ScopeLocal); localErr == nil {
			signOutErr = nil
		}
	}

	if t.EpochIs(epoch) {
		t.engine.ClearIdentityScoped()
		t.purgeArtifacts(ctx)
	}

	if signOutErr != nil {
		return fmt.Errorf("signing out: %w", signOutErr)
	}
	return nil
}

func (t *Tracker) purgeArtifacts(ctx context.Context) {
	removed, err := t.artifacts.DeleteMatching(ctx, purgePatterns...)
	if err != nil {
		t.logger.Warn("artifact purge failed", slog.String("error", err.Error()))
		return
	}
	t.logger.Debug("purged session artifacts", slog.Int("removed", removed))
}
