package genai

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"planner-backend/application/ports"
)

const summarizerSystemPrompt = `You write a short, warm end-of-day digest email body in HTML.
You receive a person's captured notes for one day, grouped by category.
Open with one sentence about the shape of the day, then a section per
category that has entries. Keep it under 300 words. Do not invent entries.`

// Summarizer implements ports.Summarizer using the Gemini API
type Summarizer struct {
	client *genai.Client
	model  string
	logger *zap.Logger
}

// NewSummarizer creates a summarizer sharing the classifier's client
func NewSummarizer(classifier *Classifier, logger *zap.Logger) *Summarizer {
	return &Summarizer{
		client: classifier.client,
		model:  classifier.model,
		logger: logger,
	}
}

// Summarize turns a day of grouped entries into a narrative digest body
func (s *Summarizer) Summarize(ctx context.Context, userName string, day string, grouped ports.GroupedEntries) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Name: %s\nDay: %s\n\n", userName, day)
	for kind, lines := range grouped {
		fmt.Fprintf(&b, "## %s\n", kind)
		for _, line := range lines {
			fmt.Fprintf(&b, "- %s %s: %s\n", line.Time.Format("15:04"), line.Title, line.Snippet)
		}
		b.WriteString("\n")
	}

	result, err := s.client.Models.GenerateContent(ctx, s.model, genai.Text(b.String()), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(summarizerSystemPrompt, genai.RoleUser),
	})
	if err != nil {
		return "", classifyGeminiError(err)
	}

	return strings.TrimSpace(result.Text()), nil
}
