package gemini

import (
	"encoding/json"
	"fmt"
	"strings"

	_ "embed"

	"github.com/spigell/college-counselor/internal/ai"
	"github.com/spigell/college-counselor/internal/ranking"
)

var (
	//go:embed prompts/extract.md
	extractTemplate string
	//go:embed prompts/assess.md
	assessTemplate string
	//go:embed prompts/reply.md
	replyTemplate string
)

const topRecommendations = 3

func renderJSON(v any) string {
	if v == nil {
		return "{}"
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}

func buildExtractionPrompt(current map[string]any, message string) string {
	prompt := strings.ReplaceAll(extractTemplate, "{{PROFILE_JSON}}", renderJSON(current))
	return strings.ReplaceAll(prompt, "{{MESSAGE}}", message)
}

func buildAssessmentPrompt(known map[string]any) string {
	return strings.ReplaceAll(assessTemplate, "{{PROFILE_JSON}}", renderJSON(known))
}

func buildReplySystem(req *ai.ReplyRequest) string {
	prompt := strings.ReplaceAll(replyTemplate, "{{COUNSELOR}}", req.Counselor)
	prompt = strings.ReplaceAll(prompt, "{{PROFILE_JSON}}", renderJSON(req.Profile))
	return strings.ReplaceAll(prompt, "{{STAGE}}", stageInstructions(req))
}

func stageInstructions(req *ai.ReplyRequest) string {
	if !req.Ready || len(req.Recommendations) == 0 {
		focus := strings.TrimSpace(req.FocusHint)
		if focus == "" {
			focus = "basic academic information"
		}
		return fmt.Sprintf("You are still getting to know the student. Acknowledge what they just shared, then steer "+
			"the conversation toward: %s.", focus)
	}

	var b strings.Builder
	if req.JustReady {
		b.WriteString("You now know enough to recommend colleges. Present these top matches naturally, ")
		b.WriteString("mention why each fits, and invite questions:\n")
	} else {
		b.WriteString("You have already shared recommendations. Answer the student's message and refer to these ")
		b.WriteString("matches where relevant:\n")
	}
	writeRecommendations(&b, req.Recommendations)
	return b.String()
}

func writeRecommendations(b *strings.Builder, recs []ranking.Recommendation) {
	for i, rec := range recs {
		if i == topRecommendations {
			break
		}
		fmt.Fprintf(b, "%d. %s (%s, %s), fees %d, match score %d: %s\n",
			i+1, rec.Name, rec.Category, rec.Location, rec.Fees, rec.MatchScore, strings.Join(rec.MatchReasons, "; "))
	}
}
