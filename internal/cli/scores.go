package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"trivia-quiz-service/internal/domain"
)

// NewScoresCmd prints the persisted leaderboard.
func NewScoresCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "scores",
		Short: "Show the high score leaderboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cfg, logger, err := loadConfig(*configPath, os.Stderr)
			if err != nil {
				return err
			}
			d, err := openDeps(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer d.Close()

			board, err := d.scoreBoard()
			if err != nil {
				return err
			}
			printScores(cmd.OutOrStdout(), board.Load(ctx))
			return nil
		},
	}
}

func printScores(w io.Writer, entries []domain.HighScoreEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No scores yet.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tSCORE\tPERCENT\tDATE")
	for i, e := range entries {
		fmt.Fprintf(tw, "%d\t%d/%d\t%d%%\t%s\n", i+1, e.Score, e.AnsweredQuestions, e.Percentage, e.Date)
	}
	_ = tw.Flush()
}
