package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/okian/wikidle/internal/playtest"
	"github.com/okian/wikidle/pkg/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg := &playtest.Config{}
	var (
		wordsPath string
		logFormat string
	)

	cmd := &cobra.Command{
		Use:           "playtest",
		Short:         "Play today's puzzle against a running wikidle server",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := logger.Init(logger.WithFormat(logFormat), logger.WithOutput(cmd.ErrOrStderr())); err != nil {
				return err
			}
			if cfg.Verbose {
				_ = logger.SetLevelString("debug")
			}

			words, err := playtest.LoadWords(wordsPath)
			if err != nil {
				return err
			}
			cfg.Words = words

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			_, err = playtest.Run(ctx, cfg, logger.Get().Named("playtest"))
			return err
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&cfg.BaseURL, "url", playtest.DefaultBaseURL, "Base URL of the service")
	flags.IntVar(&cfg.Players, "players", playtest.DefaultPlayers, "Number of simulated players")
	flags.Int64Var(&cfg.FirstUser, "first-user", playtest.DefaultFirstUser, "User id of the first player")
	flags.StringVar(&wordsPath, "words", "", "Word list file, one word per line (built-in list when empty)")
	flags.IntVar(&cfg.MaxGuesses, "max-guesses", playtest.DefaultMaxGuesses, "Guess budget per player")
	flags.DurationVar(&cfg.Timeout, "timeout", playtest.DefaultTimeout, "HTTP request timeout")
	flags.BoolVar(&cfg.Verbose, "verbose", false, "Log every guess")
	flags.StringVar(&logFormat, "log-format", logger.FormatText, "Log format: text or json")

	return cmd
}
