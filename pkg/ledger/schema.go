package ledger

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// ManifestSchema returns the JSON Schema for manifest files, for editor
// validation of hand-authored manifests.
func ManifestSchema() ([]byte, error) {
	return reflectSchema(&Manifest{})
}

// LedgerSchema returns the JSON Schema for ledger files.
func LedgerSchema() ([]byte, error) {
	return reflectSchema(&Ledger{})
}

func reflectSchema(v interface{}) ([]byte, error) {
	reflector := &jsonschema.Reflector{ExpandedStruct: true}
	schema := reflector.Reflect(v)
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling schema: %w", err)
	}
	return data, nil
}
