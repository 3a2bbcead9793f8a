package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyAgainstEmbeddedSchema(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(c *Config)
		wantErr bool
		errMsg  string
	}{
		{name: "defaults", modify: func(c *Config) {}},
		{name: "with headers", modify: func(c *Config) { c.Source.Headers = map[string]string{"X-A": "b"} }},
		{name: "nil slices", modify: func(c *Config) { c.Locator.Paths = nil; c.Source.Retry.Statuses = nil }},
		{
			name:    "zero max items",
			modify:  func(c *Config) { c.Feed.MaxItems = 0 },
			wantErr: true,
			errMsg:  "feed.max_items: 0 is less than minimum 1",
		},
		{
			name:    "zero attempts",
			modify:  func(c *Config) { c.Source.Retry.Attempts = 0 },
			wantErr: true,
			errMsg:  "source.retry.attempts",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := VerifyAgainstEmbeddedSchema(cfg)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestVerifyValue(t *testing.T) {
	min1 := 1.0
	schema := &schemaNode{
		Ref: "#/$defs/Root",
		Defs: map[string]*schemaNode{
			"Root": {
				Type:                 "object",
				Required:             []string{"name"},
				AdditionalProperties: []byte("false"),
				Properties: map[string]*schemaNode{
					"name":  {Type: "string"},
					"count": {Type: "integer", Minimum: &min1},
					"tags":  {Type: "array", Items: &schemaNode{Type: "string"}},
				},
			},
		},
	}

	tbl := []struct {
		val    map[string]any
		errMsg string
	}{
		{map[string]any{"name": "x", "count": 2.0, "tags": []any{"a"}}, ""},
		{map[string]any{"count": 2.0}, "name is required"},
		{map[string]any{"name": "x", "extra": 1.0}, "extra is not allowed"},
		{map[string]any{"name": 1.0}, "name: expected string"},
		{map[string]any{"name": "x", "count": 0.0}, "count: 0 is less than minimum 1"},
		{map[string]any{"name": "x", "tags": []any{1.0}}, "tags[0]: expected string"},
		{map[string]any{"name": "x", "tags": "a"}, "tags: expected array"},
	}
	for _, tt := range tbl {
		err := verifyValue(schema, schema.Defs, tt.val, "")
		if tt.errMsg == "" {
			assert.NoError(t, err)
			continue
		}
		require.Error(t, err)
		assert.Contains(t, err.Error(), tt.errMsg)
	}

	_, err := resolveRef(&schemaNode{Ref: "#/$defs/Missing"}, schema.Defs)
	require.Error(t, err)
}

func TestGenerateSchema(t *testing.T) {
	schema := GenerateSchema()
	require.NotNil(t, schema)
	require.NotNil(t, schema.Definitions)
	for _, name := range []string{"Config", "SourceConfig", "RetryConfig", "ExtractionConfig", "LocatorConfig", "FeedConfig"} {
		assert.Contains(t, schema.Definitions, name)
	}
}
