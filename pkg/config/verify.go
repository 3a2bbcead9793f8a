package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/invopop/jsonschema"
)

//go:embed schema.json
var embeddedSchema []byte

// schemaNode is the subset of JSON schema produced by jsonschema.Reflect which is checked here
type schemaNode struct {
	Ref                  string                 `json:"$ref"`
	Defs                 map[string]*schemaNode `json:"$defs"`
	Type                 string                 `json:"type"`
	Properties           map[string]*schemaNode `json:"properties"`
	Required             []string               `json:"required"`
	AdditionalProperties json.RawMessage        `json:"additionalProperties"`
	Minimum              *float64               `json:"minimum"`
	Items                *schemaNode            `json:"items"`
}

// VerifyAgainstEmbeddedSchema validates the config against the embedded JSON schema.
// It checks required keys, unknown keys of closed objects, basic types and minimums.
func VerifyAgainstEmbeddedSchema(cfg *Config) error {
	var schema schemaNode
	if err := json.Unmarshal(embeddedSchema, &schema); err != nil {
		return fmt.Errorf("parse embedded schema: %w", err)
	}

	// convert config to JSON for validation
	configData, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	var configMap map[string]any
	if err := json.Unmarshal(configData, &configMap); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}

	return verifyValue(&schema, schema.Defs, configMap, "")
}

func verifyValue(node *schemaNode, defs map[string]*schemaNode, val any, path string) error {
	node, err := resolveRef(node, defs)
	if err != nil {
		return err
	}
	if val == nil {
		return nil // nil slices and maps are marshaled as null
	}

	switch node.Type {
	case "object":
		obj, ok := val.(map[string]any)
		if !ok {
			return fmt.Errorf("%s: expected object, got %T", displayPath(path), val)
		}
		return verifyObject(node, defs, obj, path)
	case "array":
		arr, ok := val.([]any)
		if !ok {
			return fmt.Errorf("%s: expected array, got %T", displayPath(path), val)
		}
		if node.Items == nil {
			return nil
		}
		for i, v := range arr {
			if err := verifyValue(node.Items, defs, v, fmt.Sprintf("%s[%d]", path, i)); err != nil {
				return err
			}
		}
	case "integer", "number":
		num, ok := val.(float64)
		if !ok {
			return fmt.Errorf("%s: expected number, got %T", displayPath(path), val)
		}
		if node.Minimum != nil && num < *node.Minimum {
			return fmt.Errorf("%s: %v is less than minimum %v", displayPath(path), num, *node.Minimum)
		}
	case "string":
		if _, ok := val.(string); !ok {
			return fmt.Errorf("%s: expected string, got %T", displayPath(path), val)
		}
	case "boolean":
		if _, ok := val.(bool); !ok {
			return fmt.Errorf("%s: expected boolean, got %T", displayPath(path), val)
		}
	}
	return nil
}

func verifyObject(node *schemaNode, defs map[string]*schemaNode, obj map[string]any, path string) error {
	for _, key := range node.Required {
		if _, ok := obj[key]; !ok {
			return fmt.Errorf("%s is required", joinPath(path, key))
		}
	}

	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	closed := strings.TrimSpace(string(node.AdditionalProperties)) == "false"
	for _, k := range keys {
		prop, ok := node.Properties[k]
		if !ok {
			if closed {
				return fmt.Errorf("%s is not allowed", joinPath(path, k))
			}
			continue
		}
		if err := verifyValue(prop, defs, obj[k], joinPath(path, k)); err != nil {
			return err
		}
	}
	return nil
}

func resolveRef(node *schemaNode, defs map[string]*schemaNode) (*schemaNode, error) {
	for node.Ref != "" {
		name := strings.TrimPrefix(node.Ref, "#/$defs/")
		def, ok := defs[name]
		if !ok {
			return nil, fmt.Errorf("unknown schema reference %s", node.Ref)
		}
		node = def
	}
	return node, nil
}

func joinPath(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

func displayPath(path string) string {
	if path == "" {
		return "config"
	}
	return path
}

// GenerateSchema generates a JSON schema for the Config struct
func GenerateSchema() *jsonschema.Schema {
	return jsonschema.Reflect(&Config{})
}
