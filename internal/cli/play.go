package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/config"
	"trivia-quiz-service/internal/domain"
)

// NewPlayCmd runs a quiz in the terminal against the configured question source and leaderboard.
func NewPlayCmd(configPath *string) *cobra.Command {
	var (
		count      int
		difficulty string
		src        string
		category   string
	)
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play a timed quiz in the terminal",
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

			questions, err := d.questionSource()
			if err != nil {
				return err
			}
			board, err := d.scoreBoard()
			if err != nil {
				return err
			}

			req := d.defaultRequest()
			if count > 0 {
				req.Count = count
			}
			if difficulty != "" {
				req.Difficulty = domain.Difficulty(difficulty)
			}
			if src != "" {
				req.Source = domain.SourceKind(src)
			}
			if category != "" {
				req.Category = category
			}
			if err := domain.Validator().Struct(req); err != nil {
				return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
			}

			set, err := questions.GetQuestions(ctx, req)
			if err != nil {
				return err
			}
			p := &player{
				engine: app.NewEngine(d.timeLimit()),
				board:  board,
				out:    cmd.OutOrStdout(),
				tick:   config.TTLDuration(cfg.Quiz.Tick, time.Second),
				logger: logger,
			}
			_, err = p.run(ctx, set, readLines(cmd.InOrStdin()))
			return err
		},
	}
	cmd.Flags().IntVar(&count, "count", 0, "number of questions")
	cmd.Flags().StringVar(&difficulty, "difficulty", "", "mixed, easy, medium or hard")
	cmd.Flags().StringVar(&src, "source", "", "local or remote")
	cmd.Flags().StringVar(&category, "category", "", "remote category name")
	return cmd
}

// player drives one Engine from line-based input.
type player struct {
	engine *app.Engine
	board  *app.ScoreBoard
	out    io.Writer
	tick   time.Duration // zero disables the countdown
	logger *slog.Logger
}

const playHelp = "Type an option number to answer, s to skip, n or Enter for next, p for previous, f to finish."

func (p *player) run(ctx context.Context, questions []domain.Question, lines <-chan string) (domain.Summary, error) {
	if err := p.engine.Start(questions); err != nil {
		return domain.Summary{}, err
	}
	fmt.Fprintln(p.out, playHelp)
	p.showCurrent()

	var ticks <-chan time.Time
	if p.tick > 0 {
		ticker := time.NewTicker(p.tick)
		defer ticker.Stop()
		ticks = ticker.C
	}

	for !p.engine.Completed() {
		select {
		case <-ctx.Done():
			return domain.Summary{}, ctx.Err()
		case <-ticks:
			if p.engine.Tick() {
				fmt.Fprintln(p.out, "Time's up!")
				p.showResult()
				continue
			}
			if state := p.engine.State(); state.Timer.Active {
				switch state.Timer.Remaining {
				case 10, 5:
					fmt.Fprintf(p.out, "%d seconds left\n", state.Timer.Remaining)
				}
			}
		case line, ok := <-lines:
			if !ok {
				lines = nil
				if err := p.engine.FinishEarly(); err != nil {
					return domain.Summary{}, err
				}
				continue
			}
			p.handle(line)
		}
	}
	return p.finish(ctx), nil
}

func (p *player) handle(line string) {
	cmd := strings.ToLower(strings.TrimSpace(line))
	var err error
	switch cmd {
	case "", "n":
		err = p.engine.Advance()
	case "p":
		err = p.engine.Retreat()
	case "s":
		if _, err = p.engine.Skip(); err == nil {
			p.showResult()
			return
		}
	case "f", "q":
		err = p.engine.FinishEarly()
	default:
		choice, convErr := strconv.Atoi(cmd)
		if convErr != nil {
			fmt.Fprintln(p.out, playHelp)
			return
		}
		if _, err = p.engine.Submit(choice - 1); err == nil {
			p.showResult()
			return
		}
	}
	if err != nil {
		fmt.Fprintf(p.out, "! %s\n", describe(err))
		return
	}
	if !p.engine.Completed() {
		p.showCurrent()
	}
}

func (p *player) showCurrent() {
	state := p.engine.State()
	q, ok := p.engine.Current()
	if !ok {
		return
	}
	fmt.Fprintf(p.out, "\nQuestion %d/%d [%s]\n%s\n", state.CurrentIndex+1, len(state.Questions), q.Difficulty, q.Text)
	for i, opt := range q.Options {
		fmt.Fprintf(p.out, "  %d) %s\n", i+1, opt)
	}
	if state.Locked {
		p.showResult()
		return
	}
	fmt.Fprintf(p.out, "%d seconds\n", state.Timer.Remaining)
}

// showResult prints the recorded outcome of the current question.
func (p *player) showResult() {
	state := p.engine.State()
	q, ok := p.engine.Current()
	if !ok {
		return
	}
	for _, a := range state.Answers {
		if a.QuestionID != q.ID {
			continue
		}
		switch {
		case a.IsCorrect:
			fmt.Fprintln(p.out, "Correct!")
		case a.Skipped:
			fmt.Fprintf(p.out, "Skipped. The answer was: %s\n", q.Options[a.CorrectIndex])
		default:
			fmt.Fprintf(p.out, "Wrong. The answer was: %s\n", q.Options[a.CorrectIndex])
		}
		return
	}
}

func (p *player) finish(ctx context.Context) domain.Summary {
	state := p.engine.State()
	entry := p.board.Finalize(state)
	scores, err := p.board.Record(ctx, entry)
	if err != nil {
		p.logger.WarnContext(ctx, "high score not saved", "error", err)
		scores = p.board.Load(ctx)
	}
	summary := p.board.Summarize(state)

	fmt.Fprintf(p.out, "\nScore: %d/%d (%d%%)\n", summary.Score, summary.AnsweredQuestions, summary.Percentage)
	if summary.FinishedEarly {
		fmt.Fprintf(p.out, "Finished early: %d of %d questions answered (%d%%)\n",
			summary.AnsweredQuestions, summary.TotalQuestions, summary.CompletionPercentage)
	}
	fmt.Fprintf(p.out, "Incorrect: %d  Skipped: %d  Timed out: %d\n", summary.Incorrect, summary.Skipped, summary.TimedOut)
	fmt.Fprintln(p.out, summary.Message)
	fmt.Fprintln(p.out, "\nHigh scores")
	printScores(p.out, scores)
	return summary
}

func describe(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return "no such option"
	case errors.Is(err, domain.ErrInvalidState):
		return strings.TrimPrefix(err.Error(), domain.ErrInvalidState.Error()+": ")
	default:
		return err.Error()
	}
}

// readLines forwards r line by line and closes the channel at EOF.
func readLines(r io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()
	return lines
}
