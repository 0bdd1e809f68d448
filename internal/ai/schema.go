package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
)

// Type is a JSON schema type understood by the model providers.
type Type string

const (
	TypeObject  Type = "object"
	TypeArray   Type = "array"
	TypeString  Type = "string"
	TypeNumber  Type = "number"
	TypeInteger Type = "integer"
	TypeBoolean Type = "boolean"
)

// Schema is the provider-neutral subset of an OpenAPI schema used for structured output.
type Schema struct {
	Type        Type
	Description string
	Properties  map[string]*Schema
	Items       *Schema
	Required    []string
	MinItems    int
}

// Validate checks a decoded JSON value against the schema.
func (s *Schema) Validate(v any) error {
	return s.validate("$", v)
}

func (s *Schema) validate(path string, v any) error {
	if s == nil {
		return nil
	}

	switch s.Type {
	case TypeObject:
		obj, ok := v.(map[string]any)
		if !ok {
			return fmt.Errorf("%s: expected object, got %s", path, kindOf(v))
		}
		for _, key := range s.Required {
			if _, ok := obj[key]; !ok {
				return fmt.Errorf("%s: missing required field %q", path, key)
			}
		}
		keys := make([]string, 0, len(s.Properties))
		for key := range s.Properties {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			value, ok := obj[key]
			if !ok || value == nil {
				continue
			}
			if err := s.Properties[key].validate(path+"."+key, value); err != nil {
				return err
			}
		}
	case TypeArray:
		arr, ok := v.([]any)
		if !ok {
			return fmt.Errorf("%s: expected array, got %s", path, kindOf(v))
		}
		if len(arr) < s.MinItems {
			return fmt.Errorf("%s: expected at least %d items, got %d", path, s.MinItems, len(arr))
		}
		for i, item := range arr {
			if err := s.Items.validate(fmt.Sprintf("%s[%d]", path, i), item); err != nil {
				return err
			}
		}
	case TypeString:
		if _, ok := v.(string); !ok {
			return fmt.Errorf("%s: expected string, got %s", path, kindOf(v))
		}
	case TypeNumber:
		if _, ok := v.(float64); !ok {
			return fmt.Errorf("%s: expected number, got %s", path, kindOf(v))
		}
	case TypeInteger:
		f, ok := v.(float64)
		if !ok || f != math.Trunc(f) {
			return fmt.Errorf("%s: expected integer, got %s", path, kindOf(v))
		}
	case TypeBoolean:
		if _, ok := v.(bool); !ok {
			return fmt.Errorf("%s: expected boolean, got %s", path, kindOf(v))
		}
	}

	return nil
}

func kindOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case float64:
		return "number"
	case bool:
		return "boolean"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// Generate asks gen for structured output and decodes it into T.
// Blank output yields ErrEmptyResponse; anything that fails to parse or
// validate yields a *SchemaViolationError.
func Generate[T any](ctx context.Context, gen StructuredGenerator, parts []Part, schema *Schema) (T, error) {
	var out T

	raw, err := gen.GenerateStructured(ctx, parts, schema)
	if err != nil {
		return out, err
	}

	cleaned := ExtractJSON(raw)
	if strings.TrimSpace(cleaned) == "" {
		return out, ErrEmptyResponse
	}

	var generic any
	if err := json.Unmarshal([]byte(cleaned), &generic); err != nil {
		return out, &SchemaViolationError{Raw: raw, Err: err}
	}

	if err := schema.Validate(generic); err != nil {
		return out, &SchemaViolationError{Raw: raw, Err: err}
	}

	if err := json.Unmarshal([]byte(cleaned), &out); err != nil {
		return out, &SchemaViolationError{Raw: raw, Err: err}
	}

	return out, nil
}
