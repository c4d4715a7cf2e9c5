package authority

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed profile.yaml
var profileDefaults []byte

// Profile holds the filter constants sent with every authority call: which
// location/business statuses count as active, which product-plan feature
// gates catalog eligibility, and the field masks per call shape. Defaults
// are embedded; deployments can override single values via config.
type Profile struct {
	LocationStatuses          []string `yaml:"locationStatuses"`
	BusinessStatuses          []string `yaml:"businessStatuses"`
	Features                  []string `yaml:"features"`
	LocationFieldMask         []string `yaml:"locationFieldMask"`
	EnrichedLocationFieldMask []string `yaml:"enrichedLocationFieldMask"`
	BusinessFieldMask         []string `yaml:"businessFieldMask"`
}

// DefaultProfile loads the embedded profile defaults.
func DefaultProfile() (*Profile, error) {
	var p Profile
	if err := yaml.Unmarshal(profileDefaults, &p); err != nil {
		return nil, fmt.Errorf("unmarshal authority profile defaults: %w", err)
	}
	return &p, nil
}
