package validate

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/qri-io/jsonschema"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// Validator checks request payloads against the JSON Schemas embedded under
// schemas/. Schemas are keyed by filename without extension.
type Validator struct {
	schemas map[string]*jsonschema.Schema
}

func New() (*Validator, error) {
	entries, err := fs.ReadDir(schemaFS, "schemas")
	if err != nil {
		return nil, fmt.Errorf("read schemas dir: %w", err)
	}

	v := &Validator{schemas: make(map[string]*jsonschema.Schema, len(entries))}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		b, err := fs.ReadFile(schemaFS, path.Join("schemas", e.Name()))
		if err != nil {
			return nil, fmt.Errorf("read schema %s: %w", e.Name(), err)
		}
		rs := &jsonschema.Schema{}
		if err := json.Unmarshal(b, rs); err != nil {
			return nil, fmt.Errorf("compile schema %s: %w", e.Name(), err)
		}
		v.schemas[strings.TrimSuffix(e.Name(), ".json")] = rs
	}

	return v, nil
}

// Check validates a JSON payload against the named schema. The returned
// error carries the first schema violation in a form suitable for a 400
// response body.
func (v *Validator) Check(ctx context.Context, name string, payload []byte) error {
	rs, ok := v.schemas[name]
	if !ok {
		return fmt.Errorf("unknown schema %q", name)
	}

	keyErrs, err := rs.ValidateBytes(ctx, payload)
	if err != nil {
		return fmt.Errorf("invalid json: %w", err)
	}
	if len(keyErrs) > 0 {
		ke := keyErrs[0]
		if ke.PropertyPath != "" && ke.PropertyPath != "/" {
			return fmt.Errorf("%s: %s", ke.PropertyPath, ke.Message)
		}
		return fmt.Errorf("%s", ke.Message)
	}

	return nil
}
