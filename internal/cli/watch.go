package cli

import (
	"context"
	"fmt"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/munidon/bw-genius/internal/signal"
	"github.com/munidon/bw-genius/internal/view"
)

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Follow the current room live",
		Long: `watch keeps the room snapshot synchronized via polling and the push
feed, and prints game events as they happen. Press Ctrl+C to stop.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cfg.Output)

			if err := requireSession(cmd); err != nil {
				out.PrintError(err)
				return err
			}

			ctx, stop := ossignal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			go func() { _ = app.Poller.Run(ctx) }()
			go manageSubscription(ctx)

			printSnapshot(out)

			for {
				select {
				case <-ctx.Done():
					app.Subscriber.Unsubscribe()
					return nil
				case ev := <-app.Dispatcher.Events():
					printCue(out, ev)
				}
			}
		},
	}
}

// manageSubscription keeps the push subscription pointed at whatever room
// the snapshot currently holds, resubscribing when the room changes and
// tearing down when it clears.
func manageSubscription(ctx context.Context) {
	ticker := app.Clock.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
		}

		room := app.Engine.Room()
		current, subscribed := app.Subscriber.RoomID()

		switch {
		case room == nil:
			if subscribed {
				app.Subscriber.Unsubscribe()
			}
		case !subscribed || current != room.ID:
			_ = app.Subscriber.Subscribe(ctx, room.ID)
		}
	}
}

func printCue(out *Output, ev signal.Event) {
	if cfg.Output == "json" {
		out.Print(ev)
		return
	}

	switch ev.Cue {
	case signal.CueGameStart:
		order := "second"
		if ev.StarterRole == view.StarterLead {
			order = "first"
		}
		out.PrintMessage(fmt.Sprintf("Game on! You play %s this round.", order))
	case signal.CueVictory:
		out.PrintMessage("You won!")
	case signal.CueDefeat:
		out.PrintMessage("You lost.")
	case signal.CueDraw:
		out.PrintMessage("The game ended in a draw.")
	case signal.CueForfeitWin, signal.CueLeave:
		out.PrintMessage(ev.Message)
	case signal.CueReadyConfirm:
		out.PrintMessage("Ready.")
	case signal.CueTileSubmit:
		out.PrintMessage(fmt.Sprintf("Tile %d submitted.", ev.Tile))
	case signal.CueError:
		out.PrintMessage("Error: " + ev.Message)
	default:
		if ev.Message != "" {
			out.PrintMessage(ev.Message)
		}
	}
}
