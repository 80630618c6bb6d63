package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/munidon/bw-genius/internal/model"
	"github.com/munidon/bw-genius/internal/roomsync"
	"github.com/munidon/bw-genius/internal/view"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case SessionView:
		o.printSession(v)
	case RoomView:
		o.printRoom(v)
	case StatsView:
		o.printStats(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// SessionView describes the signed-in identity
type SessionView struct {
	UserID   string `json:"user_id"`
	Nickname string `json:"nickname"`
}

// RoomView is the room snapshot as presented to the user
type RoomView struct {
	Code           string          `json:"code"`
	Status         string          `json:"status"`
	Role           string          `json:"role"`
	Host           string          `json:"host"`
	Guest          string          `json:"guest,omitempty"`
	GuestReady     bool            `json:"guest_ready"`
	CurrentRound   int             `json:"current_round,omitempty"`
	RoundPhase     string          `json:"round_phase,omitempty"`
	MyTurn         bool            `json:"my_turn"`
	MyScore        int             `json:"my_score"`
	OpponentScore  int             `json:"opponent_score"`
	AvailableTiles []int           `json:"available_tiles,omitempty"`
	Winner         string          `json:"winner,omitempty"`
	Forfeit        bool            `json:"forfeit,omitempty"`
	Reveals        []RevealRowView `json:"reveals,omitempty"`
}

// RevealRowView is one disclosed round in the end-of-game table
type RevealRowView struct {
	Round     int    `json:"round"`
	HostTile  string `json:"host_tile"`
	GuestTile string `json:"guest_tile"`
	Result    string `json:"result,omitempty"`
}

// StatsView is the player's win/loss record
type StatsView struct {
	Nickname string `json:"nickname,omitempty"`
	Total    int    `json:"total"`
	Wins     int    `json:"wins"`
	Losses   int    `json:"losses"`
	WinRate  int    `json:"win_rate"`
}

func (o *Output) printSession(s SessionView) {
	fmt.Printf("Signed in: %s (%s)\n", s.Nickname, s.UserID)
}

func (o *Output) printRoom(r RoomView) {
	fmt.Printf("Room: %s\n", r.Code)
	fmt.Printf("Status: %s\n", r.Status)
	fmt.Printf("Role: %s\n", r.Role)
	fmt.Printf("Host: %s\n", r.Host)
	if r.Guest != "" {
		readyStr := ""
		if r.GuestReady {
			readyStr = " [ready]"
		}
		fmt.Printf("Guest: %s%s\n", r.Guest, readyStr)
	} else {
		fmt.Println("Guest: (waiting to join)")
	}

	if r.Status == string(model.RoomStatusPlaying) {
		fmt.Printf("Round: %d (%s)\n", r.CurrentRound, r.RoundPhase)
		if r.MyTurn {
			fmt.Println("It is your turn.")
		}
		fmt.Printf("Score: %d - %d\n", r.MyScore, r.OpponentScore)
		if len(r.AvailableTiles) > 0 {
			tiles := make([]string, len(r.AvailableTiles))
			for i, t := range r.AvailableTiles {
				tiles[i] = fmt.Sprintf("%d", t)
			}
			fmt.Printf("Tiles: %s\n", strings.Join(tiles, " "))
		}
	}

	if r.Status == string(model.RoomStatusFinished) {
		fmt.Printf("Final Score: %d - %d\n", r.MyScore, r.OpponentScore)
		if r.Winner != "" {
			suffix := ""
			if r.Forfeit {
				suffix = " (by forfeit)"
			}
			fmt.Printf("Winner: %s%s\n", r.Winner, suffix)
		} else {
			fmt.Println("Result: draw")
		}
		if len(r.Reveals) > 0 {
			fmt.Println("\nReveals:")
			for _, row := range r.Reveals {
				line := fmt.Sprintf("  Round %d: host %s, guest %s", row.Round, row.HostTile, row.GuestTile)
				if row.Result != "" {
					line += " - " + row.Result
				}
				fmt.Println(line)
			}
		}
	}
}

func (o *Output) printStats(s StatsView) {
	if s.Nickname != "" {
		fmt.Printf("Player: %s\n", s.Nickname)
	}
	fmt.Printf("Games: %d\n", s.Total)
	fmt.Printf("Wins: %d\n", s.Wins)
	fmt.Printf("Losses: %d\n", s.Losses)
	fmt.Printf("Win Rate: %d%%\n", s.WinRate)
}

// buildRoomView projects the engine snapshot into a RoomView
func buildRoomView(snap roomsync.Snapshot, userID uuid.UUID) (RoomView, bool) {
	room := snap.Room
	if room == nil {
		return RoomView{}, false
	}

	nickname := func(id *uuid.UUID) string {
		if id == nil {
			return ""
		}
		if p, ok := snap.Profiles[*id]; ok && p.Nickname != "" {
			return p.Nickname
		}
		return id.String()
	}

	mine, theirs := view.Scores(room, userID)
	rv := RoomView{
		Code:          string(room.Code),
		Status:        string(room.Status),
		Role:          string(view.RoleOf(room, userID)),
		Host:          nickname(&room.HostID),
		Guest:         nickname(room.GuestID),
		GuestReady:    room.GuestReady,
		CurrentRound:  room.CurrentRound,
		RoundPhase:    string(room.RoundPhase),
		MyTurn:        view.IsMyTurn(room, snap.Rounds, userID),
		MyScore:       mine,
		OpponentScore: theirs,
		Winner:        nickname(room.WinnerID),
		Forfeit:       view.FinishedByForfeit(room, snap.Rounds),
	}

	if room.Status == model.RoomStatusPlaying {
		rv.AvailableTiles = view.AvailableTiles(snap.Submissions)
	}

	for _, row := range view.RevealTable(room, snap.Rounds, snap.Reveals) {
		tile := func(t *int) string {
			if t == nil {
				return "-"
			}
			return fmt.Sprintf("%d (%s)", *t, model.TileColorOf(*t))
		}
		rrv := RevealRowView{
			Round:     row.RoundNumber,
			HostTile:  tile(row.HostTile),
			GuestTile: tile(row.GuestTile),
		}
		if row.Result != nil {
			rrv.Result = string(*row.Result)
		}
		rv.Reveals = append(rv.Reveals, rrv)
	}

	return rv, true
}
