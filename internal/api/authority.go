package api

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/munidon/bw-genius/internal/model"
)

// Authority is the remote service that owns all room state and validates
// every action. The client only reads and submits requests; invalid calls
// come back as *APIError rather than mutating anything.
//
// Queries that can legitimately come up empty (RoomByID,
// LatestRoomForPlayer, ProfileByID) return (nil, nil) for a definitive
// empty read; an error always means the read itself failed.
type Authority interface {
	// Actions
	CreateRoom(ctx context.Context, code model.RoomCode, nickname string) (*model.Room, error)
	JoinRoom(ctx context.Context, code model.RoomCode, nickname string) (*model.Room, error)
	SetReady(ctx context.Context, roomID uuid.UUID, ready bool) (*model.Room, error)
	StartGame(ctx context.Context, roomID uuid.UUID) (*model.Room, error)
	SubmitTile(ctx context.Context, roomID uuid.UUID, tile int) (*model.Room, error)
	ResetRoom(ctx context.Context, roomID uuid.UUID) (*model.Room, error)
	LeaveRoom(ctx context.Context, roomID uuid.UUID) error
	UpsertNickname(ctx context.Context, nickname string) error
	CleanupStaleRooms(ctx context.Context) error

	// Queries
	RoomByID(ctx context.Context, roomID uuid.UUID) (*model.Room, error)
	LatestRoomForPlayer(ctx context.Context, playerID uuid.UUID, statuses []model.RoomStatus) (*model.Room, error)
	RoundsForRoom(ctx context.Context, roomID uuid.UUID) ([]model.Round, error)
	SubmissionsForPlayer(ctx context.Context, roomID, playerID uuid.UUID) ([]model.Submission, error)
	RoomReveals(ctx context.Context, roomID uuid.UUID) ([]model.RevealedMove, error)
	ProfilesByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Profile, error)
	ProfileByID(ctx context.Context, id uuid.UUID) (*model.Profile, error)
}

// HTTPAuthority implements Authority over the authority's JSON API
type HTTPAuthority struct {
	client *Client
}

var _ Authority = (*HTTPAuthority)(nil)

// NewHTTPAuthority creates an Authority backed by the given client
func NewHTTPAuthority(client *Client) *HTTPAuthority {
	return &HTTPAuthority{client: client}
}

func (a *HTTPAuthority) CreateRoom(ctx context.Context, code model.RoomCode, nickname string) (*model.Room, error) {
	var room model.Room
	req := map[string]any{"room_code": code, "nickname": nickname}
	if err := a.client.Post(ctx, "/api/rooms", req, &room); err != nil {
		return nil, err
	}
	return &room, nil
}

func (a *HTTPAuthority) JoinRoom(ctx context.Context, code model.RoomCode, nickname string) (*model.Room, error) {
	var room model.Room
	req := map[string]any{"nickname": nickname}
	if err := a.client.Post(ctx, fmt.Sprintf("/api/rooms/%s/join", code), req, &room); err != nil {
		return nil, err
	}
	return &room, nil
}

func (a *HTTPAuthority) SetReady(ctx context.Context, roomID uuid.UUID, ready bool) (*model.Room, error) {
	var room model.Room
	req := map[string]any{"ready": ready}
	if err := a.client.Post(ctx, fmt.Sprintf("/api/rooms/%s/ready", roomID), req, &room); err != nil {
		return nil, err
	}
	return &room, nil
}

func (a *HTTPAuthority) StartGame(ctx context.Context, roomID uuid.UUID) (*model.Room, error) {
	var room model.Room
	if err := a.client.Post(ctx, fmt.Sprintf("/api/rooms/%s/start", roomID), nil, &room); err != nil {
		return nil, err
	}
	return &room, nil
}

func (a *HTTPAuthority) SubmitTile(ctx context.Context, roomID uuid.UUID, tile int) (*model.Room, error) {
	var room model.Room
	req := map[string]any{"tile": tile}
	if err := a.client.Post(ctx, fmt.Sprintf("/api/rooms/%s/submit", roomID), req, &room); err != nil {
		return nil, err
	}
	return &room, nil
}

func (a *HTTPAuthority) ResetRoom(ctx context.Context, roomID uuid.UUID) (*model.Room, error) {
	var room model.Room
	if err := a.client.Post(ctx, fmt.Sprintf("/api/rooms/%s/reset", roomID), nil, &room); err != nil {
		return nil, err
	}
	return &room, nil
}

func (a *HTTPAuthority) LeaveRoom(ctx context.Context, roomID uuid.UUID) error {
	return a.client.Delete(ctx, fmt.Sprintf("/api/rooms/%s/members/me", roomID))
}

func (a *HTTPAuthority) UpsertNickname(ctx context.Context, nickname string) error {
	req := map[string]any{"nickname": nickname}
	return a.client.Post(ctx, "/api/profiles/me", req, nil)
}

// CleanupStaleRooms asks the authority to sweep stale finished rooms.
// Best effort; callers fire and forget.
func (a *HTTPAuthority) CleanupStaleRooms(ctx context.Context) error {
	return a.client.Post(ctx, "/api/maintenance/cleanup-stale-rooms", nil, nil)
}

func (a *HTTPAuthority) RoomByID(ctx context.Context, roomID uuid.UUID) (*model.Room, error) {
	var room *model.Room
	if err := a.client.Get(ctx, fmt.Sprintf("/api/rooms/%s", roomID), &room); err != nil {
		if IsCode(err, CodeRoomNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return room, nil
}

func (a *HTTPAuthority) LatestRoomForPlayer(ctx context.Context, playerID uuid.UUID, statuses []model.RoomStatus) (*model.Room, error) {
	parts := make([]string, len(statuses))
	for i, s := range statuses {
		parts[i] = string(s)
	}
	q := url.Values{}
	q.Set("player_id", playerID.String())
	q.Set("status", strings.Join(parts, ","))

	var room *model.Room
	if err := a.client.Get(ctx, "/api/rooms/latest?"+q.Encode(), &room); err != nil {
		if IsCode(err, CodeRoomNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return room, nil
}

func (a *HTTPAuthority) RoundsForRoom(ctx context.Context, roomID uuid.UUID) ([]model.Round, error) {
	var rounds []model.Round
	if err := a.client.Get(ctx, fmt.Sprintf("/api/rooms/%s/rounds", roomID), &rounds); err != nil {
		return nil, err
	}
	return rounds, nil
}

func (a *HTTPAuthority) SubmissionsForPlayer(ctx context.Context, roomID, playerID uuid.UUID) ([]model.Submission, error) {
	var subs []model.Submission
	path := fmt.Sprintf("/api/rooms/%s/submissions?player_id=%s", roomID, playerID)
	if err := a.client.Get(ctx, path, &subs); err != nil {
		return nil, err
	}
	return subs, nil
}

func (a *HTTPAuthority) RoomReveals(ctx context.Context, roomID uuid.UUID) ([]model.RevealedMove, error) {
	var rows []model.RevealedMove
	if err := a.client.Get(ctx, fmt.Sprintf("/api/rooms/%s/reveals", roomID), &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (a *HTTPAuthority) ProfilesByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Profile, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = id.String()
	}
	var profiles []model.Profile
	if err := a.client.Get(ctx, "/api/profiles?ids="+strings.Join(parts, ","), &profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}

func (a *HTTPAuthority) ProfileByID(ctx context.Context, id uuid.UUID) (*model.Profile, error) {
	profiles, err := a.ProfilesByIDs(ctx, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		return nil, nil
	}
	return &profiles[0], nil
}
