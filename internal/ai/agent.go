package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"invoizo/internal/core"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"
	"github.com/openai/openai-go/shared/constant"
)

var (
	ErrNotConfigured = errors.New("API key not configured")
	ErrEmptyQuery    = errors.New("Please enter a question")
)

// Answer is the structured reply requested from the model.
type Answer struct {
	Summary         string    `json:"summary" jsonschema:"description=Two or three sentence direct answer to the query"`
	Sections        []Section `json:"sections" jsonschema:"description=Analysis sections in reading order"`
	Recommendations []string  `json:"recommendations" jsonschema:"description=Concrete next steps for the owner"`
}

type Section struct {
	Title  string   `json:"title"`
	Points []string `json:"points"`
}

// Analysis is one answered CFO question with the metrics it was based on.
type Analysis struct {
	Query       string               `json:"query"`
	Text        string               `json:"analysis"`
	Answer      Answer               `json:"structured"`
	Metrics     core.BusinessMetrics `json:"metrics"`
	GeneratedAt time.Time            `json:"generatedAt"`
}

// Completer sends a prompt and returns the raw JSON text of an Answer.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

type Analyst interface {
	Analyze(ctx context.Context, query string, metrics core.BusinessMetrics) (*Analysis, error)
}

type CFO struct {
	completer Completer
	now       func() time.Time
}

// NewCFO returns an assistant backed by the OpenAI Responses API. An empty
// apiKey yields an assistant whose Analyze always fails with ErrNotConfigured.
func NewCFO(apiKey, model string) *CFO {
	if strings.TrimSpace(apiKey) == "" {
		return &CFO{now: time.Now}
	}
	if model == "" {
		model = string(shared.ChatModelGPT4o)
	}
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &CFO{completer: &openaiCompleter{client: &client, model: model}, now: time.Now}
}

// NewCFOWith wires an arbitrary completer.
func NewCFOWith(c Completer) *CFO {
	return &CFO{completer: c, now: time.Now}
}

func (c *CFO) Configured() bool { return c.completer != nil }

func (c *CFO) Analyze(ctx context.Context, query string, metrics core.BusinessMetrics) (*Analysis, error) {
	if c.completer == nil {
		return nil, ErrNotConfigured
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	content, err := c.completer.Complete(ctx, BuildPrompt(query, metrics))
	if err != nil {
		return nil, err
	}
	if content == "" {
		return nil, fmt.Errorf("empty response content")
	}

	var ans Answer
	if err := json.Unmarshal([]byte(content), &ans); err != nil {
		// Plain prose is still a usable answer.
		ans = Answer{Summary: strings.TrimSpace(content)}
	}

	return &Analysis{
		Query:       query,
		Text:        ans.render(),
		Answer:      ans,
		Metrics:     metrics,
		GeneratedAt: c.now(),
	}, nil
}

type openaiCompleter struct {
	client *openai.Client
	model  string
}

func (o *openaiCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	schemaJSON, err := json.Marshal(generateSchema())
	if err != nil {
		return "", fmt.Errorf("failed to marshal schema: %w", err)
	}
	var schemaMap map[string]any
	if err := json.Unmarshal(schemaJSON, &schemaMap); err != nil {
		return "", fmt.Errorf("failed to unmarshal schema to map: %w", err)
	}

	params := responses.ResponseNewParams{
		Model: shared.ResponsesModel(o.model),
		Input: responses.ResponseNewParamsInputUnion{
			OfString: param.NewOpt(prompt),
		},
		Text: responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigUnionParam{
				OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
					Type:        constant.JSONSchema("json_schema"),
					Name:        "cfo_analysis",
					Strict:      param.NewOpt(true),
					Schema:      schemaMap,
					Description: param.NewOpt("A sectioned financial analysis answering the owner's question"),
				},
			},
		},
	}

	resp, err := o.client.Responses.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai responses error: %w", err)
	}
	return resp.OutputText(), nil
}

func generateSchema() interface{} {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v Answer
	return reflector.Reflect(v)
}
