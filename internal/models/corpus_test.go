package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRawPageUnmarshalAcceptsBothContentKeys(t *testing.T) {
	var p RawPage
	require.NoError(t, json.Unmarshal([]byte(`{"url":"https://e.com/a","content":"# Title\n\nplenty of body text here"}`), &p))
	assert.Equal(t, "# Title\n\nplenty of body text here", p.Content)

	p = RawPage{}
	require.NoError(t, json.Unmarshal([]byte(`{"url":"https://e.com/a","markdown":"captured markdown"}`), &p))
	assert.Equal(t, "captured markdown", p.Content)

	// "markdown" wins when both keys are present
	p = RawPage{}
	require.NoError(t, json.Unmarshal([]byte(`{"markdown":"kept","content":"shadowed"}`), &p))
	assert.Equal(t, "kept", p.Content)
}

func TestRawPageUnmarshalKeepsMetricFields(t *testing.T) {
	var p RawPage
	raw := `{"url":"https://e.com/a","content":"body","word_count":42,"image_count":3}`
	require.NoError(t, json.Unmarshal([]byte(raw), &p))
	assert.Equal(t, "https://e.com/a", p.URL)
	assert.Equal(t, 42, p.WordCount)
	assert.Equal(t, 3, p.ImageCount)
}
