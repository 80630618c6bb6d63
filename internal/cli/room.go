package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/munidon/bw-genius/internal/model"
)

func newRoomCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "room",
		Short: "Room operations",
	}

	cmd.AddCommand(newRoomCreateCmd())
	cmd.AddCommand(newRoomJoinCmd())
	cmd.AddCommand(newRoomReadyCmd())
	cmd.AddCommand(newRoomStartCmd())
	cmd.AddCommand(newRoomSubmitCmd())
	cmd.AddCommand(newRoomResetCmd())
	cmd.AddCommand(newRoomLeaveCmd())
	cmd.AddCommand(newRoomStatusCmd())

	return cmd
}

func newRoomCreateCmd() *cobra.Command {
	var nickname string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a room and wait as host",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cfg.Output)

			if err := requireSession(cmd); err != nil {
				out.PrintError(err)
				return err
			}
			if nickname == "" {
				nickname = app.Tracker.Nickname()
			}

			if _, err := app.Engine.CreateRoom(cmd.Context(), nickname); err != nil {
				out.PrintError(err)
				return err
			}

			printSnapshot(out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&nickname, "nickname", "n", "", "Nickname to play under")

	return cmd
}

func newRoomJoinCmd() *cobra.Command {
	var nickname string

	cmd := &cobra.Command{
		Use:   "join <code>",
		Short: "Join a room by its code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cfg.Output)

			if err := requireSession(cmd); err != nil {
				out.PrintError(err)
				return err
			}
			if nickname == "" {
				nickname = app.Tracker.Nickname()
			}

			if _, err := app.Engine.JoinRoom(cmd.Context(), args[0], nickname); err != nil {
				out.PrintError(err)
				return err
			}

			printSnapshot(out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&nickname, "nickname", "n", "", "Nickname to play under")

	return cmd
}

func newRoomReadyCmd() *cobra.Command {
	var unready bool

	cmd := &cobra.Command{
		Use:   "ready",
		Short: "Mark yourself ready (guest)",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cfg.Output)

			if err := requireSession(cmd); err != nil {
				out.PrintError(err)
				return err
			}

			if err := app.Engine.SetReady(cmd.Context(), !unready); err != nil {
				out.PrintError(err)
				return err
			}

			printSnapshot(out)
			return nil
		},
	}

	cmd.Flags().BoolVar(&unready, "off", false, "Withdraw readiness instead")

	return cmd
}

func newRoomStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the match (host)",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cfg.Output)

			if err := requireSession(cmd); err != nil {
				out.PrintError(err)
				return err
			}
			room := app.Engine.Room()
			if room == nil {
				out.PrintError(model.ErrNoActiveRoom)
				return model.ErrNoActiveRoom
			}

			if err := app.Engine.StartGame(cmd.Context(), room.ID); err != nil {
				out.PrintError(err)
				return err
			}

			printSnapshot(out)
			return nil
		},
	}
}

func newRoomSubmitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "submit <tile>",
		Short: "Play a tile in the active round",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cfg.Output)

			tile, err := strconv.Atoi(args[0])
			if err != nil {
				out.PrintError(err)
				return err
			}

			if err := requireSession(cmd); err != nil {
				out.PrintError(err)
				return err
			}

			if err := app.Engine.SubmitTile(cmd.Context(), tile); err != nil {
				out.PrintError(err)
				return err
			}

			printSnapshot(out)
			return nil
		},
	}
}

func newRoomResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Rewind a finished room for a rematch",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cfg.Output)

			if err := requireSession(cmd); err != nil {
				out.PrintError(err)
				return err
			}

			if err := app.Engine.ResetRoom(cmd.Context()); err != nil {
				out.PrintError(err)
				return err
			}

			printSnapshot(out)
			return nil
		},
	}
}

func newRoomLeaveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "leave",
		Short: "Leave the current room",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cfg.Output)

			if err := requireSession(cmd); err != nil {
				out.PrintError(err)
				return err
			}

			if err := app.Engine.LeaveRoom(cmd.Context()); err != nil {
				out.PrintError(err)
				return err
			}

			out.PrintMessage("Left the room.")
			return nil
		},
	}
}

func newRoomStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current room snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cfg.Output)

			if err := requireSession(cmd); err != nil {
				out.PrintError(err)
				return err
			}

			printSnapshot(out)
			return nil
		},
	}
}

func printSnapshot(out *Output) {
	userID, ok := app.Tracker.UserID()
	if !ok {
		return
	}
	if rv, ok := buildRoomView(app.Engine.Snapshot(), userID); ok {
		out.Print(rv)
	} else {
		out.PrintMessage("Not in a room.")
	}
}
