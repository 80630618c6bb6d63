package model

import "github.com/google/uuid"

// RoundResult is the authority-decided outcome of a round
type RoundResult string

const (
	RoundResultHostWin  RoundResult = "HOST_WIN"
	RoundResultGuestWin RoundResult = "GUEST_WIN"
	RoundResultDraw     RoundResult = "DRAW"
)

// Round is the public record of one round in a room. Tile colors are the
// only disclosure made during play; numeric tiles stay hidden until the
// end-of-game reveal.
type Round struct {
	ID              int64        `json:"id"`
	RoomID          uuid.UUID    `json:"room_id"`
	RoundNumber     int          `json:"round_number"`
	LeadPlayerID    uuid.UUID    `json:"lead_player_id"`
	FollowPlayerID  uuid.UUID    `json:"follow_player_id"`
	LeadSubmitted   bool         `json:"lead_submitted"`
	FollowSubmitted bool         `json:"follow_submitted"`
	LeadTileColor   *TileColor   `json:"lead_tile_color"`
	FollowTileColor *TileColor   `json:"follow_tile_color"`
	Result          *RoundResult `json:"result"`
	WinnerID        *uuid.UUID   `json:"winner_id"`
}

// TileColorFor returns the disclosed tile color for the given player in
// this round, or nil if the player has not submitted or is not part of it
func (r *Round) TileColorFor(playerID uuid.UUID) *TileColor {
	if r.LeadPlayerID == playerID {
		return r.LeadTileColor
	}
	if r.FollowPlayerID == playerID {
		return r.FollowTileColor
	}
	return nil
}

// FindRound returns the round with the given number, or nil
func FindRound(rounds []Round, number int) *Round {
	for i := range rounds {
		if rounds[i].RoundNumber == number {
			return &rounds[i]
		}
	}
	return nil
}
