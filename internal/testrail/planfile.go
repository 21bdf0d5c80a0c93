package testrail

import (
	"encoding/json"
	"fmt"
	"os"
)

// SavePlan writes the raw add_plan response to path. The document is
// stored verbatim so later runs see exactly what the API returned.
func SavePlan(path string, raw json.RawMessage) error {
	if path == "" {
		return fmt.Errorf("testrail: plan file path is empty")
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("testrail: write plan file %s: %w", path, err)
	}
	return nil
}

// LoadPlanDocument reads and decodes the persisted plan document. The
// result is handed to ResolveRunID, which tolerates shape variance, so
// decoding targets any rather than a struct.
func LoadPlanDocument(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("testrail: read plan file %s: %w", path, err)
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("testrail: parse plan file %s: %w", path, err)
	}
	return doc, nil
}
