package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"iwdc-quiz-service/internal/config"
	"iwdc-quiz-service/internal/domain"
	"iwdc-quiz-service/internal/quiz"
)

// NewSeedCmd loads question content from a YAML file into Postgres.
func NewSeedCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed [file]",
		Short: "Load questions from a YAML file into the database",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file := ""
			if len(args) > 0 {
				file = args[0]
			}
			return runSeed(cmd.Context(), *configPath, file)
		},
	}
}

func runSeed(ctx context.Context, configPath, file string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.Postgres.URL == "" {
		return fmt.Errorf("postgres url not configured")
	}
	if file == "" {
		file = cfg.Quiz.File
	}

	var questions []domain.Question
	if file != "" {
		questions, err = quiz.NewFileLoader(file).Load(ctx)
		if err != nil {
			return err
		}
	} else {
		questions = defaultQuestions()
	}

	// Run the content through bank validation before touching the database.
	if _, err := quiz.NewBank(ctx, quiz.StaticLoader(questions)); err != nil {
		return err
	}

	if err := runMigrationsWithConfig(ctx, cfg); err != nil {
		return err
	}

	db := openBunDB(cfg.Postgres.URL)
	defer db.Close()

	for _, q := range questions {
		options, err := json.Marshal(q.Options)
		if err != nil {
			return fmt.Errorf("marshal options for question %d: %w", q.ID, err)
		}
		_, err = db.ExecContext(ctx, `
			INSERT INTO questions (id, prompt, options, correct_index)
			VALUES (?, ?, ?::jsonb, ?)
			ON CONFLICT (id) DO UPDATE
				SET prompt = EXCLUDED.prompt,
				    options = EXCLUDED.options,
				    correct_index = EXCLUDED.correct_index`,
			q.ID, q.Prompt, string(options), q.CorrectIndex)
		if err != nil {
			return fmt.Errorf("seed question %d: %w", q.ID, err)
		}
	}
	log.Printf("seeded %d questions", len(questions))
	return nil
}
