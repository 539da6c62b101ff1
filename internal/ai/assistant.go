package ai

import (
	"context"

	"github.com/spigell/college-counselor/internal/profile"
	"github.com/spigell/college-counselor/internal/ranking"
)

// Transcript roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one line of the conversation transcript.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Readiness is the oracle's judgment of whether a profile supports recommendations.
type Readiness struct {
	Ready      bool
	Confidence float64
	Missing    []string
	FocusHint  string
	Reasoning  string
	Raw        string
}

// ReplyRequest carries everything needed to compose the counselor's next message.
type ReplyRequest struct {
	Counselor       string
	Message         string
	History         []Message
	Profile         map[string]any
	Ready           bool
	JustReady       bool
	FocusHint       string
	Recommendations []ranking.Recommendation
}

// Extractor turns a free-form message into candidate profile facts. An empty result means nothing was found.
type Extractor interface {
	Extract(ctx context.Context, message string, current map[string]any) (profile.Facts, error)
}

// ReadinessJudge decides whether the known fields are enough to recommend colleges.
type ReadinessJudge interface {
	JudgeReadiness(ctx context.Context, known map[string]any) (*Readiness, error)
}

// Responder composes the counselor's reply.
type Responder interface {
	Reply(ctx context.Context, req *ReplyRequest) (string, error)
}

// Oracle bundles the three oracle capabilities of a provider.
type Oracle interface {
	Extractor
	ReadinessJudge
	Responder
}
