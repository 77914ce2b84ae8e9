// Package tokenizer estimates how many model tokens a snapshot artifact occupies.
package tokenizer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gpt-4o"

// fallbackEncodingName is used for models tiktoken does not recognize.
const fallbackEncodingName = "cl100k_base"

var errNilEncoding = errors.New("nil tiktoken encoding")

// Counter estimates token counts for text content.
type Counter interface {
	Name() string
	CountString(input string) (int, error)
}

// Config selects the encoding used for counting.
type Config struct {
	Model string
}

// NewCounter returns a tiktoken Counter for the configured model together with the name of the
// encoding actually in use. Models tiktoken does not know fall back to cl100k_base.
func NewCounter(configuration Config) (Counter, string, error) {
	model := strings.ToLower(strings.TrimSpace(configuration.Model))
	if model == "" {
		model = DefaultModel
	}

	encoding, modelError := tiktoken.EncodingForModel(model)
	if modelError == nil && encoding != nil {
		return encodingCounter{encoding: encoding, name: model}, model, nil
	}

	fallback, fallbackError := tiktoken.GetEncoding(fallbackEncodingName)
	if fallbackError != nil {
		return nil, "", fmt.Errorf("initialize %s tokenizer: %w", fallbackEncodingName, fallbackError)
	}
	return encodingCounter{encoding: fallback, name: fallbackEncodingName}, fallbackEncodingName, nil
}

type encodingCounter struct {
	encoding *tiktoken.Tiktoken
	name     string
}

func (counter encodingCounter) Name() string {
	return counter.name
}

func (counter encodingCounter) CountString(input string) (int, error) {
	if counter.encoding == nil {
		return 0, errNilEncoding
	}
	return len(counter.encoding.Encode(input, nil, nil)), nil
}
