package genai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"planner-backend/application/ports"
	"planner-backend/domain/core/valueobjects"
	pkgerrors "planner-backend/pkg/errors"
)

const classifierSystemPrompt = `You are the intake brain of a personal planner.
Given one captured note, decide which module owns it and extract structured fields.
Respond with a single JSON object:
{
  "module": one of the allowed module names,
  "title": short display title (max 50 chars),
  "spoken_response": one friendly sentence confirming what was captured,
  "confidence": number between 0 and 1,
  "data": object with module-specific fields
}
For calendar: data needs "title", "start", "end" as RFC3339 local timestamps, optional "location".
For mood: data may include "rating" from 1 to 10.
For expense: data may include "amount" and three-letter "currency".
When unsure, use module "memo" with low confidence. Never invent module names.`

// Classifier implements ports.IntentClassifier using the Gemini API
type Classifier struct {
	client *genai.Client
	model  string
	logger *zap.Logger
}

// NewClassifier creates a new Classifier. model defaults to
// gemini-2.0-flash when empty.
func NewClassifier(ctx context.Context, apiKey, model string, logger *zap.Logger) (*Classifier, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &Classifier{
		client: client,
		model:  model,
		logger: logger,
	}, nil
}

// classifierVerdict mirrors the JSON shape the model is asked to return
type classifierVerdict struct {
	Module         string                 `json:"module"`
	Title          string                 `json:"title"`
	SpokenResponse string                 `json:"spoken_response"`
	Confidence     float64                `json:"confidence"`
	Data           map[string]interface{} `json:"data"`
}

// Classify maps canonical content to a module kind plus extracted fields
func (c *Classifier) Classify(
	ctx context.Context,
	content valueobjects.CanonicalContent,
	taxonomy []string,
	now time.Time,
	timezone string,
) (ports.Classification, error) {
	prompt := fmt.Sprintf(
		"Allowed modules: %s\nCurrent time: %s (%s)\nCaptured note:\n%s",
		strings.Join(taxonomy, ", "),
		now.Format(time.RFC3339),
		timezone,
		content.Text(),
	)

	contents := genai.Text(prompt)
	if content.HasMedia() {
		media := content.Media()
		contents = []*genai.Content{
			genai.NewContentFromParts([]*genai.Part{
				genai.NewPartFromText(prompt),
				genai.NewPartFromBytes(media.Data(), media.MediaType()),
			}, genai.RoleUser),
		}
	}

	result, err := c.client.Models.GenerateContent(ctx, c.model, contents, &genai.GenerateContentConfig{
		ResponseMIMEType:  "application/json",
		SystemInstruction: genai.NewContentFromText(classifierSystemPrompt, genai.RoleUser),
	})
	if err != nil {
		return ports.Classification{}, classifyGeminiError(err)
	}

	raw := strings.TrimSpace(result.Text())
	var verdict classifierVerdict
	if err := json.Unmarshal([]byte(raw), &verdict); err != nil {
		c.logger.Warn("classifier returned unparseable output",
			zap.String("output", truncate(raw, 200)),
			zap.Error(err),
		)
		return ports.Classification{}, pkgerrors.NewTransientError("classifier returned unparseable output")
	}

	return ports.Classification{
		ModuleKind:     verdict.Module,
		Title:          verdict.Title,
		SpokenResponse: verdict.SpokenResponse,
		Fields:         valueobjects.Payload(verdict.Data),
		Confidence:     verdict.Confidence,
	}, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

// classifyGeminiError maps provider failures onto the error taxonomy
func classifyGeminiError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case 401, 403:
			return pkgerrors.NewAuthExpiredError("gemini")
		case 429:
			return pkgerrors.NewRateLimitError("gemini")
		case 400:
			return pkgerrors.NewValidationError(fmt.Sprintf("classification rejected: %v", err))
		}
	}
	return pkgerrors.NewTransientError(fmt.Sprintf("classification failed: %v", err))
}
