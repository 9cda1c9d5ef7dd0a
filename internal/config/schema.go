package config

import (
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
)

// packageFilterSchema describes the JSON shape the in-process API (spec
// §6.5) accepts for a package-filter update, validated before it is
// applied to the running model.
var packageFilterSchema = &jsonschema.Schema{
	Type: "object",
	Properties: map[string]*jsonschema.Schema{
		"use_all_packs": {Type: "boolean"},
		"selected_packs": {
			Type:  "array",
			Items: &jsonschema.Schema{Type: "string"},
		},
		"latest_packs": {Type: "boolean"},
		"canonical_vendors": {
			Type:                 "object",
			AdditionalProperties: &jsonschema.Schema{Type: "string"},
		},
	},
}

// ValidatePackageFilter validates raw JSON against the package-filter
// schema and, if valid, decodes it into a PackageFilter (spec §6.5's
// in-process API contract for updating the resolution scope).
func ValidatePackageFilter(raw []byte) (*PackageFilter, error) {
	resolved, err := packageFilterSchema.Resolve(nil)
	if err != nil {
		return nil, fmt.Errorf("resolve package filter schema: %w", err)
	}

	var instance any
	if err := json.Unmarshal(raw, &instance); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if err := resolved.Validate(instance); err != nil {
		return nil, fmt.Errorf("package filter does not match schema: %w", err)
	}

	var filter PackageFilter
	if err := json.Unmarshal(raw, &filter); err != nil {
		return nil, fmt.Errorf("decode package filter: %w", err)
	}
	return &filter, nil
}
