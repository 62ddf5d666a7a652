package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ewfx/gaied-aivengers/internal/core"
	"github.com/ewfx/gaied-aivengers/internal/utils"
	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// GeminiClient is an implementation of the ReasoningClient interface using Google Gemini
type GeminiClient struct {
	client        *genai.Client
	model         *genai.GenerativeModel
	modelName     string
	maxBodySize   int
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

const classifyPromptFormat = `You are a loan servicing triage system. Classify the following email into the request taxonomy.
Respond with a JSON object containing:
- primary_request_type: string (the main request type, one of the taxonomy's primary types)
- sub_request_type: string (a sub type of the primary type, or empty if none applies)
- confidence_score: number between 0 and 1
- additional_request_types: array of strings (secondary request types, if any)
- reason: string (brief justification for the primary type)

If the email contains multiple requests, pick the primary type from the main action required and list the others as additional types.

## Request types and sub types:
%s
Email:
%s

Respond only with the JSON object and nothing else.`

const extractPromptFormat = `You are a loan servicing data extraction system. Extract structured fields from the following email.
Respond with a JSON object containing:
- request_type: string (the request type the fields belong to)
- deal_name: string ("Unknown" if not present)
- borrower: string ("Unknown" if not present)
- amount: number (omit if not present)
- payment_date: string (as written in the email, omit if not present)
- transaction_reference: string (omit if not present)

Email:
%s

Respond only with the JSON object and nothing else.`

const duplicatePromptFormat = `You are a duplicate email detector for a loan servicing team. Decide whether the following email duplicates any of the previously received emails below.
Respond with a JSON object containing:
- duplicate_flag: boolean
- duplicate_reason: string (why the email is or is not a duplicate)

Email:
%s

Previously received emails:
%s

Respond only with the JSON object and nothing else.`

// NewGeminiClient creates a new Gemini reasoning client
func NewGeminiClient(
	apiKey string,
	modelName string,
	maxTokens int,
	temperature float32,
	topP float32,
	maxBodySize int,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
) (*GeminiClient, error) {
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(temperature)
	model.SetTopP(topP)
	model.SetMaxOutputTokens(int32(maxTokens))

	return &GeminiClient{
		client:        client,
		model:         model,
		modelName:     modelName,
		maxBodySize:   maxBodySize,
		logger:        logger,
		textProcessor: textProcessor,
	}, nil
}

// Close closes the Gemini client
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// Classify assigns the email to the request taxonomy
func (c *GeminiClient) Classify(ctx context.Context, req *core.ReasoningRequest) (*core.ClassificationResult, error) {
	body := c.textProcessor.ProcessText(req.Text, c.maxBodySize)
	prompt := fmt.Sprintf(classifyPromptFormat, req.Taxonomy.PromptBlock(), body)

	responseText, err := c.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var result core.ClassificationResult
	if err := bindJSON(responseText, &result); err != nil {
		return nil, fmt.Errorf("failed to parse classification response: %w", err)
	}
	return &result, nil
}

// Extract pulls structured loan-servicing fields from the email text
func (c *GeminiClient) Extract(ctx context.Context, req *core.ReasoningRequest) (*core.ExtractionResult, error) {
	body := c.textProcessor.ProcessText(req.Text, c.maxBodySize)
	prompt := fmt.Sprintf(extractPromptFormat, body)

	responseText, err := c.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var result core.ExtractionResult
	if err := bindJSON(responseText, &result); err != nil {
		return nil, fmt.Errorf("failed to parse extraction response: %w", err)
	}
	if result.RequestType == "" {
		result.RequestType = "Unknown"
	}
	if result.DealName == "" {
		result.DealName = "Unknown"
	}
	if result.Borrower == "" {
		result.Borrower = "Unknown"
	}
	return &result, nil
}

// ReviewDuplicates produces a duplicate verdict from the retrieved candidates
func (c *GeminiClient) ReviewDuplicates(ctx context.Context, req *core.ReasoningRequest) (*core.DuplicateCheckResult, error) {
	body := c.textProcessor.ProcessText(req.Text, c.maxBodySize)
	candidates := "(none)"
	if len(req.DuplicateCandidates) > 0 {
		candidates = strings.Join(req.DuplicateCandidates, "\n---\n")
	}
	prompt := fmt.Sprintf(duplicatePromptFormat, body, candidates)

	responseText, err := c.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var result core.DuplicateCheckResult
	if err := bindJSON(responseText, &result); err != nil {
		return nil, fmt.Errorf("failed to parse duplicate response: %w", err)
	}
	return &result, nil
}

func (c *GeminiClient) generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content with Gemini: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("empty response from Gemini")
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("no text parts in Gemini response")
	}
	return b.String(), nil
}

func bindJSON(responseText string, out interface{}) error {
	if err := json.Unmarshal([]byte(responseText), out); err == nil {
		return nil
	}

	jsonStart := strings.IndexByte(responseText, '{')
	jsonEnd := strings.LastIndexByte(responseText, '}')
	if jsonStart < 0 || jsonEnd <= jsonStart {
		return fmt.Errorf("no JSON object found in response")
	}
	if err := json.Unmarshal([]byte(responseText[jsonStart:jsonEnd+1]), out); err != nil {
		return fmt.Errorf("failed to parse response as JSON: %w", err)
	}
	return nil
}
