package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/spf13/cobra"

	"iwdc-quiz-service/internal/app"
	"iwdc-quiz-service/internal/config"
	"iwdc-quiz-service/internal/domain"
	"iwdc-quiz-service/internal/quiz"
)

const defaultPlayQuestions = 5

// NewPlayCmd runs a quiz in the terminal. It drives the same session state
// machine a web client would hold, and records the final tally on the
// configured leaderboard.
func NewPlayCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "play",
		Short: "Play a quiz in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(cmd.Context(), *configPath)
		},
	}
}

func runPlay(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	bank, err := buildBank(ctx, cfg, pool)
	if err != nil {
		return err
	}
	store := buildStore(cfg, pool, newRedisClient(cfg))

	count := cfg.Quiz.Questions
	if count <= 0 {
		count = defaultPlayQuestions
	}
	runner := quiz.NewRunner(bank.List(count), bank)

	in := bufio.NewScanner(os.Stdin)
	fmt.Print("Enter your name: ")
	if !in.Scan() {
		return fmt.Errorf("no name given")
	}
	session, err := runner.Start(in.Text())
	if err != nil {
		return err
	}

	fmt.Printf("\nWelcome, %s! You have %d lives. Answer with a number, or type 'submit' to finish early.\n",
		session.Name, session.Lives)

	for !session.State.Terminal() {
		q := runner.Questions()[session.Current]
		fmt.Printf("\n[%d/%d] %s  (lives: %d, score: %d)\n",
			session.Current+1, len(runner.Questions()), q.Prompt, session.Lives, session.Score)
		for i, option := range q.Options {
			fmt.Printf("  %d) %s\n", i+1, option)
		}
		fmt.Print("> ")
		if !in.Scan() {
			break
		}
		input := strings.TrimSpace(in.Text())

		if strings.EqualFold(input, "submit") {
			fmt.Print("Finish now and submit your current score? [y/N] ")
			if in.Scan() && strings.EqualFold(strings.TrimSpace(in.Text()), "y") {
				session, err = runner.SubmitEarly(session)
				if err != nil {
					return err
				}
			}
			continue
		}

		choice, err := strconv.Atoi(input)
		if err != nil || choice < 1 || choice > len(q.Options) {
			fmt.Println("Please answer with an option number.")
			continue
		}

		session, err = runner.Select(session, choice-1)
		if err != nil {
			return err
		}
		var check domain.AnswerCheck
		session, check, err = runner.Submit(session)
		if err != nil {
			return err
		}
		if check.IsCorrect {
			fmt.Println("Correct!")
		} else {
			fmt.Printf("Wrong, the answer was %d. Lives left: %d\n", check.CorrectAnswer+1, session.Lives)
		}
	}

	switch session.State {
	case quiz.Completed:
		fmt.Printf("\nQuiz completed! Final score: %d with %d lives remaining.\n", session.Score, session.Lives)
	case quiz.GameOver:
		fmt.Printf("\nGame over, you ran out of lives. Final score: %d.\n", session.Score)
	default:
		return nil
	}

	receipt, err := store.Submit(ctx, session.Name, session.Score)
	if err != nil {
		// A leaderboard hiccup never invalidates a finished quiz.
		fmt.Printf("Warning: leaderboard update failed (%v). Your score of %d still stands.\n", err, session.Score)
		return nil
	}

	if receipt.IsNewBest {
		fmt.Printf("New personal best! You are ranked #%d.\n", receipt.Rank)
	} else {
		fmt.Printf("Your best remains %d. You are ranked #%d.\n", receipt.Best, receipt.Rank)
	}
	printBoard(ctx, store)
	return nil
}

func printBoard(ctx context.Context, store app.LeaderboardStore) {
	board, err := store.TopN(ctx, 10)
	if err != nil || len(board) == 0 {
		return
	}
	fmt.Println("\nLeaderboard:")
	for _, entry := range board {
		fmt.Printf("  #%d %s: %d\n", entry.Rank, entry.Name, entry.Score)
	}
}
