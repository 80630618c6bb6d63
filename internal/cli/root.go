package cli

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/munidon/bw-genius/internal/factory"
	redisstore "github.com/munidon/bw-genius/internal/store/redis"
)

var (
	cfg *Config
	app *factory.App
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	// Best effort; a missing .env is the normal case
	_ = godotenv.Load()

	cfg = DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "bwgenius",
		Short: "CLI client for the black & white tile game",
		Long: `bwgenius is a CLI client for the black & white online tile game.

It keeps a live local snapshot of your room via polling and the push
feed, and exposes every room action: create, join, ready, start,
submit, reset and leave.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load token from file if not provided via flag/env
			if err := cfg.LoadToken(); err != nil {
				return err
			}

			factoryCfg := factory.Config{
				ServerURL:   cfg.ServerURL,
				Token:       cfg.Token,
				Logger:      newLogger(cfg.Verbose),
				StorageType: cfg.StorageType,
			}
			if cfg.StorageType == factory.StorageTypeRedis {
				redisCfg := redisstore.DefaultConfig()
				if cfg.RedisURL != "" {
					redisCfg.URL = cfg.RedisURL
				}
				factoryCfg.RedisConfig = &redisCfg
			}

			var err error
			app, err = factory.New(factoryCfg)
			return err
		},
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Server URL (env: BWGENIUS_SERVER)")
	rootCmd.PersistentFlags().StringVar(&cfg.Token, "token", cfg.Token, "Access token (env: BWGENIUS_TOKEN)")
	rootCmd.PersistentFlags().StringVar(&cfg.TokenFile, "token-file", cfg.TokenFile, "Token file path (env: BWGENIUS_TOKEN_FILE)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json")
	rootCmd.PersistentFlags().BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Verbose output")

	// Add subcommands
	rootCmd.AddCommand(newLoginCmd())
	rootCmd.AddCommand(newLogoutCmd())
	rootCmd.AddCommand(newNicknameCmd())
	rootCmd.AddCommand(newRoomCmd())
	rootCmd.AddCommand(newWatchCmd())
	rootCmd.AddCommand(newStatsCmd())

	return rootCmd
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
