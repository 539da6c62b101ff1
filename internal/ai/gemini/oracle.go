package gemini

import (
	"context"

	"go.uber.org/zap"

	"github.com/spigell/college-counselor/internal/ai"
)

// Config configures the Gemini oracle.
type Config struct {
	APIKey       string
	Model        string
	MaxRetries   int
	MaxLogLength int
}

// Oracle implements ai.Oracle on top of a single Generator.
type Oracle struct {
	*Extractor
	*Assessor
	*Responder

	generator *Generator
}

var _ ai.Oracle = (*Oracle)(nil)

// New creates the Gemini client and the three oracle roles sharing it.
func New(ctx context.Context, cfg Config, logger *zap.Logger) (*Oracle, error) {
	generator, err := NewGenerator(ctx, cfg.APIKey, cfg.Model, cfg.MaxRetries, logger)
	if err != nil {
		return nil, err
	}
	log := generator.logger
	return &Oracle{
		Extractor: NewExtractor(generator, log, cfg.MaxLogLength),
		Assessor:  NewAssessor(generator, log, cfg.MaxLogLength),
		Responder: NewResponder(generator, log),
		generator: generator,
	}, nil
}

// Model returns the model in use.
func (o *Oracle) Model() string {
	return o.generator.Model()
}
