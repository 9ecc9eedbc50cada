package ledger

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestSchemas(t *testing.T) {
	tests := []struct {
		name    string
		render  func() ([]byte, error)
		wantKey string
	}{
		{"manifest", ManifestSchema, "groups"},
		{"ledger", LedgerSchema, "tasks"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := tt.render()
			if err != nil {
				t.Fatalf("render schema: %v", err)
			}
			var doc map[string]interface{}
			if err := json.Unmarshal(data, &doc); err != nil {
				t.Fatalf("schema is not valid JSON: %v", err)
			}
			if !strings.Contains(string(data), `"`+tt.wantKey+`"`) {
				t.Errorf("schema does not mention %q", tt.wantKey)
			}
		})
	}
}
