package api

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const userSchema = `{
	"type": "object",
	"required": ["rank", "rank_name", "xp", "next_rank"],
	"properties": {
		"user_id": {"type": "string"},
		"rank": {"type": "integer", "minimum": 1},
		"rank_name": {"type": "string"},
		"xp": {"type": "integer", "minimum": 0},
		"interactions": {"type": "integer"},
		"next_rank": {
			"type": "object",
			"required": ["threshold"],
			"properties": {
				"name": {"type": "string"},
				"threshold": {
					"oneOf": [
						{"type": "integer"},
						{"const": "N/A"},
						{"type": "null"}
					]
				}
			}
		}
	}
}`

// schemas are keyed by endpoint. The user shape is shared through $ref.
var schemas = map[string]string{
	"user": userSchema,
	"login": `{
		"type": "object",
		"required": ["user"],
		"properties": {
			"message": {"type": "string"},
			"user": {"$ref": "schema://user.json"}
		}
	}`,
	"chat": `{
		"type": "object",
		"required": ["answer"],
		"properties": {
			"answer": {"type": "string"},
			"followup_question": {"type": ["string", "null"]},
			"restricted": {"type": "boolean"},
			"user": {"oneOf": [{"type": "null"}, {"$ref": "schema://user.json"}]}
		}
	}`,
	"quiz": `{
		"type": "object",
		"required": ["correct", "xp_gained"],
		"properties": {
			"correct": {"type": "boolean"},
			"xp_gained": {"type": "integer"},
			"user": {"oneOf": [{"type": "null"}, {"$ref": "schema://user.json"}]}
		}
	}`,
}

var (
	compileOnce sync.Once
	compiled    map[string]*jsonschema.Schema
	compileErr  error
)

// validateBody checks raw against the schema registered for endpoint.
func validateBody(endpoint string, raw []byte) error {
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return &ErrInvalidResponse{Endpoint: endpoint, Body: raw, Err: fmt.Errorf("invalid JSON: %w", err)}
	}

	sch, err := schemaFor(endpoint)
	if err != nil {
		return &ErrInvalidResponse{Endpoint: endpoint, Body: raw, Err: err}
	}
	if err := sch.Validate(parsed); err != nil {
		return &ErrInvalidResponse{Endpoint: endpoint, Body: raw, Err: fmt.Errorf("schema validation failed: %w", err)}
	}
	return nil
}

func schemaFor(endpoint string) (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiled, compileErr = compileSchemas()
	})
	if compileErr != nil {
		return nil, compileErr
	}
	sch, ok := compiled[endpoint]
	if !ok {
		return nil, fmt.Errorf("no schema for %q", endpoint)
	}
	return sch, nil
}

func compileSchemas() (map[string]*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	for name, def := range schemas {
		var doc any
		if err := json.Unmarshal([]byte(def), &doc); err != nil {
			return nil, fmt.Errorf("parse schema %q: %w", name, err)
		}
		if err := c.AddResource(schemaURL(name), doc); err != nil {
			return nil, fmt.Errorf("add schema %q: %w", name, err)
		}
	}

	out := make(map[string]*jsonschema.Schema, len(schemas))
	for name := range schemas {
		sch, err := c.Compile(schemaURL(name))
		if err != nil {
			return nil, fmt.Errorf("compile schema %q: %w", name, err)
		}
		out[name] = sch
	}
	return out, nil
}

func schemaURL(name string) string {
	return fmt.Sprintf("schema://%s.json", name)
}
