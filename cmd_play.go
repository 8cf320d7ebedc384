// cmd_play.go
//
// `mastermind play`: runs one session in the terminal. Logs go to LOG_FILE
// (or nowhere) so they never draw over the board.

package main

import (
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/robalobadob/mastermind/internal/daily"
	"github.com/robalobadob/mastermind/internal/game"
	"github.com/robalobadob/mastermind/internal/tui"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play in the terminal",
	Long: `Opens the board in the terminal. Use 1-6 or the arrow keys to choose colors
and enter to submit. With --daily every player gets the same secret for the day.`,
	RunE: runPlay,
}

func init() {
	playCmd.Flags().Bool("debug", false, "Allow ctrl+d to show the secret (overrides DEBUG)")
	playCmd.Flags().String("scoring", "", "simple | classic (overrides SCORING)")
	playCmd.Flags().Bool("daily", false, "Play today's shared puzzle")
	playCmd.Flags().String("secret", "", "Fix the first secret, e.g. red,orange,yellow,white (requires --debug)")
}

func runPlay(cmd *cobra.Command, args []string) error {
	if cmd.Flags().Changed("debug") {
		cfg.Debug, _ = cmd.Flags().GetBool("debug")
	}
	if s, _ := cmd.Flags().GetString("scoring"); s != "" {
		sc, err := game.ParseScoring(s)
		if err != nil {
			return err
		}
		cfg.Scoring = sc
	}

	closeLog, err := playLogger(cfg.LogFile)
	if err != nil {
		return err
	}
	defer closeLog()

	opts := []game.Option{game.WithScoring(cfg.Scoring)}
	var subtitle string
	if isDaily, _ := cmd.Flags().GetBool("daily"); isDaily {
		now := time.Now()
		opts = append(opts, game.WithSource(daily.Source(now, cfg.DailySalt)))
		subtitle = "daily " + daily.DateKey(now)
	}
	if s, _ := cmd.Flags().GetString("secret"); s != "" {
		if !cfg.Debug {
			return fmt.Errorf("--secret requires --debug")
		}
		code, err := game.ParseCode(s)
		if err != nil {
			return err
		}
		if !code.Complete() {
			return fmt.Errorf("--secret needs %d colors", game.Slots)
		}
		opts = append(opts, game.WithSecret(code))
	}

	sess := game.NewSession(opts...)
	log.Info().Str("session", sess.ID()).Str("scoring", string(cfg.Scoring)).Msg("terminal session started")

	p := tea.NewProgram(tui.New(sess, tui.Options{Debug: cfg.Debug, Subtitle: subtitle}), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	st := sess.State()
	fmt.Printf("%s after %d attempts\n", st.Title(), st.Attempts)
	return nil
}

// playLogger points the global logger at path, or silences it.
func playLogger(path string) (func(), error) {
	if path == "" {
		log.Logger = zerolog.Nop()
		return func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	log.Logger = zerolog.New(f).With().Timestamp().Logger()
	return func() { _ = f.Close() }, nil
}
