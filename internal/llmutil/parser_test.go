// internal/llmutil/parser_test.go
package llmutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type probePayload struct {
	Price        float64 `json:"price"`
	ProductName  string  `json:"product_name"`
	Availability string  `json:"availability"`
}

func TestParseJSONResponse_PlainObject(t *testing.T) {
	raw := `{"price": 19.99, "product_name": "Widget", "availability": "in_stock"}`

	result, err := ParseJSONResponse[probePayload](raw)
	require.NoError(t, err)
	assert.Equal(t, 19.99, result.Price)
	assert.Equal(t, "Widget", result.ProductName)
}

func TestParseJSONResponse_MarkdownFenced(t *testing.T) {
	raw := "```json\n{\"price\": 5.5, \"product_name\": \"Gizmo\"}\n```"

	result, err := ParseJSONResponse[probePayload](raw)
	require.NoError(t, err)
	assert.Equal(t, "Gizmo", result.ProductName)
}

func TestParseJSONResponse_ConversationalPreamble(t *testing.T) {
	raw := `Sure, here is the extracted data: {"price": 1.25, "product_name": "Bolt"} Let me know if you need anything else.`

	result, err := ParseJSONResponse[probePayload](raw)
	require.NoError(t, err)
	assert.Equal(t, 1.25, result.Price)
}

func TestParseJSONResponse_Array(t *testing.T) {
	raw := "```\n[\"wikidata\", \"google_kg\"]\n```"

	result, err := ParseJSONResponse[[]string](raw)
	require.NoError(t, err)
	assert.Equal(t, []string{"wikidata", "google_kg"}, *result)
}

func TestParseJSONResponse_Invalid(t *testing.T) {
	_, err := ParseJSONResponse[probePayload]("this response contains no structure at all")
	require.Error(t, err)
}

func TestExtractJSON_Empty(t *testing.T) {
	_, err := ExtractJSON("   ")
	require.Error(t, err)
}

func TestExtractJSON_PreservesRawPayload(t *testing.T) {
	raw := "```json\n{\"has_returns\": true, \"return_window_days\": 30}\n```"

	extracted, err := ExtractJSON(raw)
	require.NoError(t, err)
	assert.JSONEq(t, `{"has_returns": true, "return_window_days": 30}`, extracted)
}
