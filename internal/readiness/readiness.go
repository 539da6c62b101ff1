package readiness

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/college-counselor/internal/ai"
	"github.com/spigell/college-counselor/internal/profile"
)

// Assessment sources.
const (
	SourceOracle   = "oracle"
	SourceFallback = "fallback"
)

const (
	fallbackConfidence = 0.5
	fallbackFocus      = "basic academic information"
	defaultTimeout     = 20 * time.Second
)

// EssentialFields gate the fallback heuristic: any one of them is enough.
var EssentialFields = []string{profile.Grade12Percentage, profile.PreferredStream, profile.BudgetMax}

// Assessment is a readiness verdict.
type Assessment struct {
	Ready      bool     `json:"sufficient_for_recommendations"`
	Confidence float64  `json:"confidence_level"`
	Missing    []string `json:"missing_critical_info"`
	FocusHint  string   `json:"next_conversation_focus"`
	Reasoning  string   `json:"reasoning,omitempty"`
	Source     string   `json:"source"`
}

// Fallback judges readiness without the oracle.
func Fallback(p *profile.Profile) *Assessment {
	ready := false
	missing := make([]string, 0, len(EssentialFields))
	for _, name := range EssentialFields {
		if p.Has(name) {
			ready = true
			continue
		}
		missing = append(missing, name)
	}

	return &Assessment{
		Ready:      ready,
		Confidence: fallbackConfidence,
		Missing:    missing,
		FocusHint:  fallbackFocus,
		Reasoning:  "heuristic check of essential fields",
		Source:     SourceFallback,
	}
}

// Evaluator asks the readiness judge and falls back to the heuristic on any failure.
type Evaluator struct {
	judge   ai.ReadinessJudge
	timeout time.Duration
	logger  *zap.Logger
}

// NewEvaluator creates an evaluator. A nil judge always uses the fallback.
func NewEvaluator(judge ai.ReadinessJudge, timeout time.Duration, logger *zap.Logger) *Evaluator {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Evaluator{judge: judge, timeout: timeout, logger: logger}
}

// Assess returns a verdict for p. It never fails.
func (e *Evaluator) Assess(ctx context.Context, p *profile.Profile) *Assessment {
	if e == nil || e.judge == nil {
		return Fallback(p)
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	verdict, err := e.judge.JudgeReadiness(ctx, p.NonEmpty())
	if err != nil || verdict == nil {
		e.logger.Warn("readiness judgment failed, using fallback", zap.Error(err))
		return Fallback(p)
	}

	return &Assessment{
		Ready:      verdict.Ready,
		Confidence: clamp(verdict.Confidence),
		Missing:    verdict.Missing,
		FocusHint:  verdict.FocusHint,
		Reasoning:  verdict.Reasoning,
		Source:     SourceOracle,
	}
}

func clamp(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return fallbackConfidence
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
