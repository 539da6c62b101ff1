package gemini

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/college-counselor/internal/ai"
)

// historyWindow is how many transcript messages accompany a reply request.
const historyWindow = 10

// Responder composes counselor replies with Gemini.
type Responder struct {
	generator contentGenerator
	logger    *zap.Logger
}

func NewResponder(generator contentGenerator, logger *zap.Logger) *Responder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Responder{generator: generator, logger: logger}
}

func (r *Responder) Reply(ctx context.Context, req *ai.ReplyRequest) (string, error) {
	if req == nil || strings.TrimSpace(req.Message) == "" {
		return "", errors.New("reply request needs a message")
	}

	history := req.History
	if len(history) > historyWindow {
		history = history[len(history)-historyWindow:]
	}

	reply, err := r.generator.Generate(ctx, Request{
		System:      buildReplySystem(req),
		Message:     req.Message,
		History:     history,
		Temperature: temperature(replyTemperature),
	})
	if err != nil {
		return "", err
	}

	r.logger.Debug("gemini reply composed", zap.Bool("ready", req.Ready), zap.Int("history", len(history)))
	return strings.TrimSpace(reply), nil
}
