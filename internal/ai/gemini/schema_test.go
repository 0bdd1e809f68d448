package gemini

import (
	"testing"

	"github.com/spigell/jobnado/internal/ai"
	"google.golang.org/genai"
)

func TestToGenaiSchema(t *testing.T) {
	schema := &ai.Schema{
		Type: ai.TypeObject,
		Properties: map[string]*ai.Schema{
			"roles": {Type: ai.TypeArray, Items: &ai.Schema{Type: ai.TypeString}, MinItems: 1},
			"score": {Type: ai.TypeInteger, Description: "0-100"},
		},
		Required: []string{"roles"},
	}

	got := toGenaiSchema(schema)

	if got.Type != genai.TypeObject {
		t.Fatalf("expected object type, got %q", got.Type)
	}

	if len(got.Required) != 1 || got.Required[0] != "roles" {
		t.Fatalf("unexpected required list: %v", got.Required)
	}

	roles := got.Properties["roles"]
	if roles == nil || roles.Type != genai.TypeArray || roles.Items == nil || roles.Items.Type != genai.TypeString {
		t.Fatalf("unexpected roles schema: %+v", roles)
	}

	if roles.MinItems == nil || *roles.MinItems != 1 {
		t.Fatalf("expected minItems 1, got %v", roles.MinItems)
	}

	score := got.Properties["score"]
	if score.Type != genai.TypeInteger || score.Description != "0-100" || score.MinItems != nil {
		t.Fatalf("unexpected score schema: %+v", score)
	}

	if toGenaiSchema(nil) != nil {
		t.Fatal("expected nil schema for nil input")
	}
}
