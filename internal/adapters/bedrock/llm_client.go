package bedrock

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/ewfx/gaied-aivengers/internal/core"
	"github.com/ewfx/gaied-aivengers/internal/utils"
	"go.uber.org/zap"
)

// BedrockClient is an implementation of the ReasoningClient interface using Amazon Bedrock
type BedrockClient struct {
	client        *bedrockruntime.Client
	modelID       string
	maxTokens     int
	temperature   float32
	topP          float32
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

// NewBedrockClient creates a new Bedrock reasoning client
func NewBedrockClient(
	client *bedrockruntime.Client,
	modelID string,
	maxTokens int,
	temperature float32,
	topP float32,
	maxBodySize int,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
) *BedrockClient {
	return &BedrockClient{
		client:        client,
		modelID:       modelID,
		maxTokens:     maxTokens,
		temperature:   temperature,
		topP:          topP,
		maxBodySize:   maxBodySize,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// Classify assigns the email to the request taxonomy
func (c *BedrockClient) Classify(ctx context.Context, req *core.ReasoningRequest) (*core.ClassificationResult, error) {
	body := c.textProcessor.ProcessText(req.Text, c.maxBodySize)
	prompt := fmt.Sprintf(classifyPromptFormat, req.Taxonomy.PromptBlock(), body)

	responseText, err := c.invoke(ctx, prompt)
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
func (c *BedrockClient) Extract(ctx context.Context, req *core.ReasoningRequest) (*core.ExtractionResult, error) {
	body := c.textProcessor.ProcessText(req.Text, c.maxBodySize)
	prompt := fmt.Sprintf(extractPromptFormat, body)

	responseText, err := c.invoke(ctx, prompt)
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
func (c *BedrockClient) ReviewDuplicates(ctx context.Context, req *core.ReasoningRequest) (*core.DuplicateCheckResult, error) {
	body := c.textProcessor.ProcessText(req.Text, c.maxBodySize)
	candidates := "(none)"
	if len(req.DuplicateCandidates) > 0 {
		candidates = strings.Join(req.DuplicateCandidates, "\n---\n")
	}
	prompt := fmt.Sprintf(duplicatePromptFormat, body, candidates)

	responseText, err := c.invoke(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var result core.DuplicateCheckResult
	if err := bindJSON(responseText, &result); err != nil {
		return nil, fmt.Errorf("failed to parse duplicate response: %w", err)
	}
	return &result, nil
}

func (c *BedrockClient) isAnthropicModel() bool {
	return strings.HasPrefix(c.modelID, "anthropic.")
}

func (c *BedrockClient) isAmazonTitanModel() bool {
	return strings.HasPrefix(c.modelID, "amazon.titan")
}

// invoke sends the prompt to Bedrock, building the payload for the model
// family in use.
func (c *BedrockClient) invoke(ctx context.Context, prompt string) (string, error) {
	var payload []byte
	var err error

	if c.isAnthropicModel() {
		payload, err = json.Marshal(map[string]interface{}{
			"prompt":               fmt.Sprintf("\n\nHuman: %s\n\nAssistant:", prompt),
			"max_tokens_to_sample": c.maxTokens,
			"temperature":          c.temperature,
			"top_p":                c.topP,
		})
	} else if c.isAmazonTitanModel() {
		payload, err = json.Marshal(map[string]interface{}{
			"inputText": prompt,
			"textGenerationConfig": map[string]interface{}{
				"maxTokenCount": c.maxTokens,
				"temperature":   c.temperature,
				"topP":          c.topP,
			},
		})
	} else {
		payload, err = json.Marshal(map[string]interface{}{
			"prompt":      prompt,
			"max_tokens":  c.maxTokens,
			"temperature": c.temperature,
			"top_p":       c.topP,
		})
	}
	if err != nil {
		return "", fmt.Errorf("failed to marshal request payload: %w", err)
	}

	resp, err := c.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     &c.modelID,
		Body:        payload,
		Accept:      aws.String("application/json"),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to invoke Bedrock model: %w", err)
	}

	if c.isAnthropicModel() {
		var claudeResp struct {
			Completion string `json:"completion"`
		}
		if err := json.Unmarshal(resp.Body, &claudeResp); err != nil {
			return "", fmt.Errorf("failed to unmarshal Claude response: %w", err)
		}
		return claudeResp.Completion, nil
	}

	if c.isAmazonTitanModel() {
		var titanResp struct {
			Results []struct {
				OutputText string `json:"outputText"`
			} `json:"results"`
		}
		if err := json.Unmarshal(resp.Body, &titanResp); err != nil {
			return "", fmt.Errorf("failed to unmarshal Titan response: %w", err)
		}
		if len(titanResp.Results) == 0 {
			return "", fmt.Errorf("empty response from Titan model")
		}
		return titanResp.Results[0].OutputText, nil
	}

	var genericResp struct {
		Completion string `json:"completion"`
		OutputText string `json:"outputText"`
	}
	if err := json.Unmarshal(resp.Body, &genericResp); err != nil {
		return "", fmt.Errorf("failed to unmarshal model response: %w", err)
	}
	if genericResp.Completion != "" {
		return genericResp.Completion, nil
	}
	return genericResp.OutputText, nil
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
