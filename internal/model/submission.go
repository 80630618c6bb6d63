package model

import "github.com/google/uuid"

// Submission records the numeric tile a participant played in a round.
// A participant submits at most one tile per round, and only from the
// tiles not already used in the room.
type Submission struct {
	ID          int64     `json:"id"`
	RoomID      uuid.UUID `json:"room_id"`
	RoundNumber int       `json:"round_number"`
	PlayerID    uuid.UUID `json:"player_id"`
	Tile        int       `json:"tile"`
}

// RevealedMove is the post-termination disclosure of a numeric tile per
// (round, participant). Populated only after the room is finished.
type RevealedMove struct {
	RoundNumber int       `json:"round_number"`
	PlayerID    uuid.UUID `json:"player_id"`
	Tile        int       `json:"tile"`
}
