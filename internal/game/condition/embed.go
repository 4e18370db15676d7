package condition

import "embed"

//go:embed defaults/*.yaml
var defaultDefs embed.FS

// NewDefaultRegistry returns a Registry populated with the standard
// embedded condition set. Hosts may register additional house-rule
// conditions on top before sharing the registry.
func NewDefaultRegistry() (*Registry, error) {
	reg := NewRegistry()
	if err := loadFS(reg, defaultDefs, "defaults"); err != nil {
		return nil, err
	}
	return reg, nil
}
