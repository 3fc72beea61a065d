package quiz

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"iwdc-quiz-service/internal/domain"
)

// FileLoader reads question content from a YAML file. The same file feeds the
// seed command, so a deployment can run file-backed or Postgres-backed from
// one source of truth.
type FileLoader struct {
	path string
}

func NewFileLoader(path string) *FileLoader {
	return &FileLoader{path: path}
}

func (l *FileLoader) Load(_ context.Context) ([]domain.Question, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("read question file: %w", err)
	}
	var doc struct {
		Questions []domain.Question `yaml:"questions"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse question file: %w", err)
	}
	return doc.Questions, nil
}
