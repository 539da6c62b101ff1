package gemini

import (
	"context"
	"errors"
	"fmt"
	"math"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/spigell/college-counselor/internal/ai"
	"github.com/spigell/college-counselor/internal/utils"
)

const readyKey = "sufficient_for_recommendations"

// Assessor asks Gemini whether the known fields support recommendations.
type Assessor struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

func NewAssessor(generator contentGenerator, logger *zap.Logger, maxLogLength int) *Assessor {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Assessor{generator: generator, logger: logger, maxLogLen: maxLogLength}
}

func (a *Assessor) JudgeReadiness(ctx context.Context, known map[string]any) (*ai.Readiness, error) {
	prompt := buildAssessmentPrompt(known)

	raw, err := a.generator.Generate(ctx, Request{
		Message:     prompt,
		Temperature: temperature(assessmentTemperature),
		JSON:        true,
	})
	if err != nil {
		return nil, err
	}

	a.logger.Debug("gemini readiness response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, a.maxLogLen)),
	)

	readiness, err := parseReadiness(raw)
	if err != nil {
		return nil, err
	}
	readiness.Raw = raw
	return readiness, nil
}

func parseReadiness(raw string) (*ai.Readiness, error) {
	data, err := decodeObject(extractJSON(raw))
	if err != nil {
		return nil, fmt.Errorf("parse readiness response: %w", err)
	}

	ready, ok := data[readyKey]
	if !ok {
		return nil, errors.New("readiness response misses " + readyKey)
	}

	confidence := coerceFloat(data["confidence_level"])
	if math.IsNaN(confidence) {
		confidence = 0.5
	}

	return &ai.Readiness{
		Ready:      coerceBool(ready),
		Confidence: clamp01(confidence),
		Missing:    coerceStrings(data["missing_critical_info"]),
		FocusHint:  coerceString(data["next_conversation_focus"]),
		Reasoning:  coerceString(data["reasoning"]),
	}, nil
}
