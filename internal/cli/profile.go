package cli

import (
	"github.com/spf13/cobra"

	"github.com/munidon/bw-genius/internal/model"
)

func newNicknameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "nickname <name>",
		Short: "Set your display name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cfg.Output)

			if err := requireSession(cmd); err != nil {
				out.PrintError(err)
				return err
			}

			if err := app.Authority.UpsertNickname(cmd.Context(), args[0]); err != nil {
				out.PrintError(err)
				return err
			}
			if err := app.Engine.SyncNickname(cmd.Context(), args[0]); err != nil {
				out.PrintError(err)
				return err
			}

			out.PrintMessage("Nickname updated: " + app.Tracker.Nickname())
			return nil
		},
	}
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show your win/loss record",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cfg.Output)

			if err := requireSession(cmd); err != nil {
				out.PrintError(err)
				return err
			}
			if err := app.Engine.LoadMyRecord(cmd.Context()); err != nil {
				out.PrintError(err)
				return err
			}

			record := app.Engine.Snapshot().Record
			out.Print(statsView(record, app.Tracker.Nickname()))
			return nil
		},
	}
}

func statsView(record model.PlayerRecord, nickname string) StatsView {
	return StatsView{
		Nickname: nickname,
		Total:    record.Total,
		Wins:     record.Wins,
		Losses:   record.Losses,
		WinRate:  record.WinRate,
	}
}
