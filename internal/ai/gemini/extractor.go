package gemini

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"github.com/spigell/college-counselor/internal/profile"
	"github.com/spigell/college-counselor/internal/utils"
)

type contentGenerator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

const (
	defaultMaxLogLength = 200

	extractionTemperature = 0.1
	assessmentTemperature = 0.2
	replyTemperature      = 0.7

	// confidenceCategory holds per-field confidences some responses return separately from the facts.
	confidenceCategory = "confidence"
)

// Extractor asks Gemini for profile facts contained in a message.
type Extractor struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

func NewExtractor(generator contentGenerator, logger *zap.Logger, maxLogLength int) *Extractor {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{generator: generator, logger: logger, maxLogLen: maxLogLength}
}

// Extract returns the facts found in message. A response that says nothing was found yields empty facts.
func (e *Extractor) Extract(ctx context.Context, message string, current map[string]any) (profile.Facts, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return profile.Facts{}, nil
	}

	prompt := buildExtractionPrompt(current, message)
	e.logger.Debug("gemini extraction request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("message_preview", utils.TruncateForLog(message, e.maxLogLen)),
	)

	raw, err := e.generator.Generate(ctx, Request{
		Message:     prompt,
		Temperature: temperature(extractionTemperature),
		JSON:        true,
	})
	if err != nil {
		return nil, err
	}

	e.logger.Debug("gemini extraction response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, e.maxLogLen)),
	)

	return parseFacts(raw)
}

type rawFact struct {
	Value      any      `mapstructure:"value"`
	Confidence *float64 `mapstructure:"confidence"`
}

func parseFacts(raw string) (profile.Facts, error) {
	cleaned := extractJSON(raw)
	if isNothingFound(cleaned) {
		return profile.Facts{}, nil
	}
	if !strings.HasPrefix(cleaned, "{") {
		return nil, errors.New("extraction response contains no JSON object")
	}

	data, err := decodeObject(cleaned)
	if err != nil {
		return nil, fmt.Errorf("parse extraction response: %w", err)
	}

	confidences, _ := data[confidenceCategory].(map[string]any)

	facts := make(profile.Facts)
	for category, entries := range data {
		if strings.EqualFold(strings.TrimSpace(category), confidenceCategory) {
			continue
		}
		fields, ok := entries.(map[string]any)
		if !ok {
			continue
		}

		for name, entry := range fields {
			fact, ok := decodeFact(entry)
			if !ok {
				continue
			}
			if fact.Confidence < 0 {
				fact.Confidence = lookupConfidence(confidences, name)
			}
			if facts[category] == nil {
				facts[category] = make(map[string]profile.Fact)
			}
			facts[category][name] = fact
		}
	}
	return facts, nil
}

// decodeFact accepts {value, confidence} objects and bare scalars. A negative confidence marks it as missing.
func decodeFact(entry any) (profile.Fact, bool) {
	if entry == nil {
		return profile.Fact{}, false
	}
	obj, isObject := entry.(map[string]any)
	if !isObject {
		return profile.Fact{Value: entry, Confidence: -1}, true
	}
	if _, ok := obj["value"]; !ok {
		return profile.Fact{}, false
	}

	var decoded rawFact
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &decoded,
	})
	if err != nil {
		return profile.Fact{}, false
	}
	if err := decoder.Decode(obj); err != nil {
		// Unusable confidence, keep the value.
		return profile.Fact{Value: obj["value"], Confidence: -1}, true
	}

	fact := profile.Fact{Value: decoded.Value, Confidence: -1}
	if decoded.Confidence != nil {
		fact.Confidence = clamp01(*decoded.Confidence)
	}
	return fact, true
}

func lookupConfidence(confidences map[string]any, name string) float64 {
	if v, ok := confidences[name]; ok {
		if c := coerceFloat(v); !math.IsNaN(c) {
			return clamp01(c)
		}
	}
	return profile.DefaultConfidence
}

func temperature(v float32) *float32 {
	return &v
}
