// Package view computes pure, synchronous projections from the latest
// room snapshot plus ancillary lists. It holds no state of its own and
// is trivially re-derivable from the data model.
package view

import (
	"sort"

	"github.com/google/uuid"

	"github.com/munidon/bw-genius/internal/model"
)

// Role is the local participant's role in the room
type Role string

const (
	RoleNone  Role = ""
	RoleHost  Role = "host"
	RoleGuest Role = "guest"
)

// StarterRole is the local participant's order in the opening round
type StarterRole string

const (
	StarterLead   StarterRole = "lead"
	StarterFollow StarterRole = "follow"
)

// RoleOf returns the local participant's role in the room
func RoleOf(room *model.Room, userID uuid.UUID) Role {
	if room == nil {
		return RoleNone
	}
	if room.HostID == userID {
		return RoleHost
	}
	if room.GuestID != nil && *room.GuestID == userID {
		return RoleGuest
	}
	return RoleNone
}

// CurrentRound returns the record for the room's active round, or nil
func CurrentRound(room *model.Room, rounds []model.Round) *model.Round {
	if room == nil || room.CurrentRound <= 0 {
		return nil
	}
	return model.FindRound(rounds, room.CurrentRound)
}

// IsMyTurn reports whether the local identity may submit right now:
// only during a playing room whose sub-phase matches the identity's
// lead/follow role for the active round. False in every other status.
func IsMyTurn(room *model.Room, rounds []model.Round, userID uuid.UUID) bool {
	if room == nil || room.Status != model.RoomStatusPlaying {
		return false
	}
	round := CurrentRound(room, rounds)
	if round == nil {
		return false
	}
	switch room.RoundPhase {
	case model.RoundPhaseAwaitLead:
		return round.LeadPlayerID == userID
	case model.RoundPhaseAwaitFollow:
		return round.FollowPlayerID == userID
	}
	return false
}

// UsedTiles returns the tiles already played, ascending
func UsedTiles(submissions []model.Submission) []int {
	used := make([]int, 0, len(submissions))
	for _, s := range submissions {
		used = append(used, s.Tile)
	}
	sort.Ints(used)
	return used
}

// AvailableTiles returns the fixed pool minus the tiles already played
func AvailableTiles(submissions []model.Submission) []int {
	used := make(map[int]bool, len(submissions))
	for _, s := range submissions {
		used[s.Tile] = true
	}
	available := make([]int, 0, 9)
	for _, tile := range model.AllTiles() {
		if !used[tile] {
			available = append(available, tile)
		}
	}
	return available
}

// SubmittedThisRound reports whether the local identity already played
// a tile in the room's active round
func SubmittedThisRound(room *model.Room, submissions []model.Submission) bool {
	if room == nil {
		return false
	}
	for _, s := range submissions {
		if s.RoundNumber == room.CurrentRound {
			return true
		}
	}
	return false
}

// Scores returns (mine, opponent's) for the local identity
func Scores(room *model.Room, userID uuid.UUID) (int, int) {
	switch RoleOf(room, userID) {
	case RoleHost:
		return room.HostScore, room.GuestScore
	case RoleGuest:
		return room.GuestScore, room.HostScore
	}
	return 0, 0
}

// FinishedByForfeit reports whether a finished room was terminated by a
// participant leaving rather than by a naturally resolved final round.
// Distinguishable from a five-win finish: a forfeit leaves the current
// round without a result.
func FinishedByForfeit(room *model.Room, rounds []model.Round) bool {
	if room == nil || room.Status != model.RoomStatusFinished {
		return false
	}
	if room.WinnerID == nil {
		return false
	}
	round := CurrentRound(room, rounds)
	return round == nil || round.Result == nil
}

// RevealRow is one line of the end-of-game reveal table
type RevealRow struct {
	RoundNumber int
	HostTile    *int
	GuestTile   *int
	Result      *model.RoundResult
}

// RevealTable builds the end-of-game disclosure, constructible only once
// the room is finished and reveal rows have loaded. Round numbers come
// from the union of round records and reveal rows, ascending.
func RevealTable(room *model.Room, rounds []model.Round, reveals []model.RevealedMove) []RevealRow {
	if room == nil || room.Status != model.RoomStatusFinished {
		return nil
	}

	seen := make(map[int]bool)
	var numbers []int
	for _, r := range rounds {
		if !seen[r.RoundNumber] {
			seen[r.RoundNumber] = true
			numbers = append(numbers, r.RoundNumber)
		}
	}
	for _, r := range reveals {
		if !seen[r.RoundNumber] {
			seen[r.RoundNumber] = true
			numbers = append(numbers, r.RoundNumber)
		}
	}
	sort.Ints(numbers)

	tileFor := func(roundNo int, playerID *uuid.UUID) *int {
		if playerID == nil {
			return nil
		}
		for _, row := range reveals {
			if row.RoundNumber == roundNo && row.PlayerID == *playerID {
				tile := row.Tile
				return &tile
			}
		}
		return nil
	}

	table := make([]RevealRow, 0, len(numbers))
	for _, n := range numbers {
		row := RevealRow{
			RoundNumber: n,
			HostTile:    tileFor(n, &room.HostID),
			GuestTile:   tileFor(n, room.GuestID),
		}
		if round := model.FindRound(rounds, n); round != nil {
			row.Result = round.Result
		}
		table = append(table, row)
	}
	return table
}
