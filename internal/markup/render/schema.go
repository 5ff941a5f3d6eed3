package render

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// SchemaProvider is implemented by providers that declare the parameters
// they consume as a JSON schema. The parameters are validated before Parts
// is called.
type SchemaProvider interface {
	Provider
	ParameterSchema() map[string]any
}

func validateParameters(provider string, schema map[string]any, params Parameters) error {
	if len(schema) == 0 {
		return nil
	}
	compiled, err := compileSchema(schema)
	if err != nil {
		return &ParameterError{Provider: provider, Issues: []ParameterIssue{{Message: "schema does not compile: " + err.Error()}}, Cause: err}
	}
	if err := compiled.Validate(jsonPayload(params)); err != nil {
		return &ParameterError{Provider: provider, Issues: schemaIssues(err), Cause: err}
	}
	return nil
}

func compileSchema(schema map[string]any) (*jsonschema.Schema, error) {
	encoded, err := json.Marshal(schema)
	if err != nil {
		return nil, err
	}
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource("schema.json", bytes.NewReader(encoded)); err != nil {
		return nil, err
	}
	return compiler.Compile("schema.json")
}

// jsonPayload converts params to the generic JSON shape the validator
// expects. Values that cannot be encoded are left out.
func jsonPayload(params Parameters) map[string]any {
	payload := make(map[string]any, len(params))
	for key, value := range params {
		encoded, err := json.Marshal(value)
		if err != nil {
			continue
		}
		var decoded any
		if err := json.Unmarshal(encoded, &decoded); err != nil {
			continue
		}
		payload[key] = decoded
	}
	return payload
}

func schemaIssues(err error) []ParameterIssue {
	var validationErr *jsonschema.ValidationError
	if !errors.As(err, &validationErr) || validationErr == nil {
		return []ParameterIssue{{Message: err.Error()}}
	}
	issues := []ParameterIssue{}
	var walk func(*jsonschema.ValidationError)
	walk = func(node *jsonschema.ValidationError) {
		if node == nil {
			return
		}
		if len(node.Causes) == 0 {
			issues = append(issues, ParameterIssue{
				Location: strings.TrimSpace(node.InstanceLocation),
				Message:  strings.TrimSpace(node.Message),
			})
			return
		}
		for _, cause := range node.Causes {
			walk(cause)
		}
	}
	walk(validationErr)
	return issues
}
