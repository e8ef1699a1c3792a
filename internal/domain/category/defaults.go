package category

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/hirosato/finance-ledger/backend/internal/domain/entry"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// DefaultSpec describes one system-wide category
type DefaultSpec struct {
	Name         string     `yaml:"name"`
	Color        string     `yaml:"color"`
	CategoryType entry.Type `yaml:"-"`
}

type defaultsFile struct {
	Expense []DefaultSpec `yaml:"expense"`
	Income  []DefaultSpec `yaml:"income"`
}

// Defaults returns the embedded default category catalog, expenses first
func Defaults() ([]DefaultSpec, error) {
	return parseDefaults(defaultsYAML)
}

func parseDefaults(data []byte) ([]DefaultSpec, error) {
	var file defaultsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse default categories: %w", err)
	}

	specs := make([]DefaultSpec, 0, len(file.Expense)+len(file.Income))
	for _, spec := range file.Expense {
		spec.CategoryType = entry.Expense
		specs = append(specs, spec)
	}
	for _, spec := range file.Income {
		spec.CategoryType = entry.Income
		specs = append(specs, spec)
	}
	return specs, nil
}
