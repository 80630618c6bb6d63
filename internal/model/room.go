package model

import (
	"time"

	"github.com/google/uuid"
)

// RoomCode is the short shareable code used to join a room
type RoomCode string

// RoomCodeLength is the length of generated room codes
const RoomCodeLength = 6

// RoomCodeAlphabet is the characters used in room codes (avoid confusing chars)
const RoomCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// RoomStatus represents the lifecycle status of a room
type RoomStatus string

const (
	RoomStatusWaiting  RoomStatus = "waiting"  // Guest may join; game not started
	RoomStatusPlaying  RoomStatus = "playing"  // Match in progress
	RoomStatusFinished RoomStatus = "finished" // Match ended, by score or forfeit
)

// RoundPhase represents the sub-phase of the active round
type RoundPhase string

const (
	RoundPhaseIdle        RoundPhase = "idle"
	RoundPhaseAwaitLead   RoundPhase = "await_lead"
	RoundPhaseAwaitFollow RoundPhase = "await_follow"
	RoundPhaseResolved    RoundPhase = "resolved"
	RoundPhaseFinished    RoundPhase = "finished"
)

// Room is the full shared room record as of a given remote timestamp.
// The remote authority is the sole writer; the client only ever replaces
// its local copy wholesale with fresher snapshots.
type Room struct {
	ID           uuid.UUID  `json:"id"`
	Code         RoomCode   `json:"room_code"`
	HostID       uuid.UUID  `json:"host_id"`
	GuestID      *uuid.UUID `json:"guest_id"`
	GuestReady   bool       `json:"guest_ready"`
	Status       RoomStatus `json:"status"`
	CurrentRound int        `json:"current_round"`
	RoundPhase   RoundPhase `json:"round_phase"`
	LeadPlayerID *uuid.UUID `json:"lead_player_id"`
	HostScore    int        `json:"host_score"`
	GuestScore   int        `json:"guest_score"`
	WinnerID     *uuid.UUID `json:"winner_id"`

	// UpdatedAt is kept as the raw wire string. Snapshot freshness
	// comparison must tolerate unparseable values, so parsing is
	// deferred to UpdatedAtTime.
	UpdatedAt string `json:"updated_at"`
}

// UpdatedAtTime parses the last-modified timestamp. The second return is
// false when the value does not parse as RFC3339.
func (r *Room) UpdatedAtTime() (time.Time, bool) {
	t, err := time.Parse(time.RFC3339Nano, r.UpdatedAt)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// IsTerminal reports whether the room has reached its terminal status
func (r *Room) IsTerminal() bool {
	return r.Status == RoomStatusFinished
}

// HasPlayer reports whether the given identity is a participant of the room
func (r *Room) HasPlayer(id uuid.UUID) bool {
	if r.HostID == id {
		return true
	}
	return r.GuestID != nil && *r.GuestID == id
}

// PlayerIDs returns the identities referenced by the room (guest may be absent)
func (r *Room) PlayerIDs() []uuid.UUID {
	ids := []uuid.UUID{r.HostID}
	if r.GuestID != nil {
		ids = append(ids, *r.GuestID)
	}
	return ids
}
