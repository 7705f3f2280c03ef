package feed

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed payload_schema.json
var payloadSchemaJSON []byte

var (
	payloadSchemaOnce sync.Once
	payloadSchema     *jsonschema.Schema
	payloadSchemaErr  error
)

func compiledPayloadSchema() (*jsonschema.Schema, error) {
	payloadSchemaOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(payloadSchemaJSON))
		if err != nil {
			payloadSchemaErr = fmt.Errorf("failed to parse payload schema: %w", err)
			return
		}

		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("payload_schema.json", doc); err != nil {
			payloadSchemaErr = fmt.Errorf("failed to add payload schema resource: %w", err)
			return
		}

		payloadSchema, payloadSchemaErr = compiler.Compile("payload_schema.json")
	})
	return payloadSchema, payloadSchemaErr
}

// ValidatePayload checks a decoded feed payload against the embedded JSON
// Schema. Chance values above 1.0 are allowed: the feed has been observed
// to report them and they are stored uncorrected.
func ValidatePayload(p *Payload) error {
	schema, err := compiledPayloadSchema()
	if err != nil {
		return err
	}

	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal payload for validation: %w", err)
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("failed to reparse payload for validation: %w", err)
	}

	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("payload does not match feed schema: %w", err)
	}
	return nil
}
