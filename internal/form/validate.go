package form

import (
	_ "embed"
	"encoding/json"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed payload.schema.json
var payloadSchema string

const payloadSchemaURL = "payload.schema.json"

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

func schema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(payloadSchemaURL, strings.NewReader(payloadSchema)); err != nil {
			compileErr = errors.Wrap(err, "add payload schema")
			return
		}
		compiled, compileErr = compiler.Compile(payloadSchemaURL)
		if compileErr != nil {
			compileErr = errors.Wrap(compileErr, "compile payload schema")
		}
	})
	return compiled, compileErr
}

// Schema returns the JSON schema the payload is checked against
func Schema() string {
	return payloadSchema
}

// Validate checks p against the embedded payload schema. The payload is
// round-tripped through JSON so the validator sees plain JSON values.
func Validate(p Payload) error {
	s, err := schema()
	if err != nil {
		return err
	}

	b, err := json.Marshal(p)
	if err != nil {
		return errors.Wrap(err, "marshal payload")
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return errors.Wrap(err, "unmarshal payload")
	}
	if err := s.Validate(v); err != nil {
		return errors.Wrap(err, "payload does not match schema")
	}
	return nil
}
