package order

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// documentSchema constrains the shape of an order payload. It does not
// encode business rules.
func documentSchema() map[string]any {
	line := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"primaryName":   map[string]any{"type": "string", "minLength": 1},
			"secondaryName": map[string]any{"type": "string"},
			"unitPrice":     map[string]any{"type": "integer", "minimum": 0},
			"quantity":      map[string]any{"type": "integer", "minimum": 1},
			"category":      map[string]any{"type": "string"},
		},
		"required": []string{"primaryName", "unitPrice", "quantity"},
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"shopName":    map[string]any{"type": "string"},
			"orderId":     map[string]any{"type": "string"},
			"lines":       map[string]any{"type": "array", "items": line},
			"totalAmount": map[string]any{"type": "integer", "minimum": 0},
			"staticDetails": map[string]any{
				"type":                 "object",
				"additionalProperties": false,
				"properties": map[string]any{
					"address": map[string]any{"type": "string"},
					"phone":   map[string]any{"type": "string"},
				},
			},
		},
		"required": []string{"shopName", "orderId", "lines"},
	}
}

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		b, err := json.Marshal(documentSchema())
		if err != nil {
			schemaErr = fmt.Errorf("marshal schema: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("order.json", bytes.NewReader(b)); err != nil {
			schemaErr = fmt.Errorf("add schema: %w", err)
			return
		}
		schema, schemaErr = compiler.Compile("order.json")
		if schemaErr != nil {
			schemaErr = fmt.Errorf("compile schema: %w", schemaErr)
		}
	})
	return schema, schemaErr
}

// Parse validates data against the order schema and decodes it. A missing
// totalAmount is derived from the lines.
func Parse(data []byte) (Document, error) {
	s, err := compiledSchema()
	if err != nil {
		return Document{}, err
	}

	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return Document{}, fmt.Errorf("unmarshal order: %w", err)
	}
	if err := s.Validate(v); err != nil {
		return Document{}, fmt.Errorf("order does not match schema: %w", err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("decoding order: %w", err)
	}
	if _, ok := v.(map[string]any)["totalAmount"]; !ok {
		doc.TotalAmount = doc.SumLines()
	}
	return doc, nil
}
