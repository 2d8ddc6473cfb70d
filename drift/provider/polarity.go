package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/responses"
	"github.com/theimaginaryfoundation/tonal-drift/drift"
	"github.com/theimaginaryfoundation/tonal-drift/drift/fileutils"
)

const polarityPrompt = `You are a sentiment polarity scorer.

You will be given one utterance. Return its overall sentiment polarity as a number
between -1.0 (strongly negative) and 1.0 (strongly positive), 0.0 for neutral.
Judge the literal sentiment of the words; do not try to detect sarcasm.

Return only JSON matching the schema.`

// maxPolarityInputChars bounds the utterance sent to the model.
const maxPolarityInputChars = 2000

type polarityResponse struct {
	Polarity float64 `json:"polarity" jsonschema:"minimum=-1,maximum=1"`
}

var polaritySchema = GenerateSchema[polarityResponse]()

// OpenAIPolarity scores polarity with a model through the Responses API.
type OpenAIPolarity struct {
	Client ResponsesClient
	Model  string
}

// NewOpenAIPolarity returns a polarity provider backed by client.
func NewOpenAIPolarity(client *openai.Client, model string) OpenAIPolarity {
	return OpenAIPolarity{Client: Responses(client), Model: model}
}

var _ drift.PolarityProvider = OpenAIPolarity{}

func (p OpenAIPolarity) Polarity(ctx context.Context, text string) (float64, error) {
	if p.Client == nil {
		return 0, errors.New("OpenAIPolarity: client is nil")
	}
	if p.Model == "" {
		return 0, errors.New("OpenAIPolarity: model is empty")
	}

	format := responses.ResponseFormatTextConfigUnionParam{
		OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
			Name:        "Polarity",
			Schema:      polaritySchema,
			Strict:      openai.Bool(true),
			Description: openai.String("Sentiment polarity JSON"),
			Type:        "json_schema",
		},
	}
	input := []responses.ResponseInputItemUnionParam{
		responses.ResponseInputItemParamOfMessage(fileutils.Truncate(text, maxPolarityInputChars), responses.EasyInputMessageRoleUser),
	}
	params := responses.ResponseNewParams{
		Model:           p.Model,
		MaxOutputTokens: openai.Int(1000),
		Instructions:    openai.String(polarityPrompt),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: input,
		},
		Text: responses.ResponseTextConfigParam{
			Format: format,
		},
	}

	resp, err := CallWithRetry(ctx, p.Client, params)
	if err != nil {
		return 0, fmt.Errorf("OpenAIPolarity: %w", err)
	}

	var out polarityResponse
	if err := fileutils.DecodeModelJSON(resp.OutputText(), &out); err != nil {
		return 0, fmt.Errorf("OpenAIPolarity: decode: %w", err)
	}
	return drift.ClampPolarity(out.Polarity), nil
}
