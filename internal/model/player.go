package model

import (
	"math"

	"github.com/google/uuid"
)

// Profile is a participant's public profile row
type Profile struct {
	ID       uuid.UUID `json:"id"`
	Nickname string    `json:"nickname"`
	Wins     int       `json:"wins"`
	Losses   int       `json:"losses"`
}

// Record returns the aggregate win/loss record derived from the profile
func (p *Profile) Record() PlayerRecord {
	return NewPlayerRecord(p.Wins, p.Losses)
}

// PlayerRecord is a derived aggregate of win/loss counts. Read-mostly
// reference data, never authoritative for in-game decisions.
type PlayerRecord struct {
	Total   int `json:"total"`
	Wins    int `json:"wins"`
	Losses  int `json:"losses"`
	WinRate int `json:"win_rate"` // percentage, rounded
}

// NewPlayerRecord builds a PlayerRecord from raw counts
func NewPlayerRecord(wins, losses int) PlayerRecord {
	total := wins + losses
	rate := 0
	if total > 0 {
		rate = int(math.Round(float64(wins) / float64(total) * 100))
	}
	return PlayerRecord{
		Total:   total,
		Wins:    wins,
		Losses:  losses,
		WinRate: rate,
	}
}
