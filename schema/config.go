package schema

import (
	"gopkg.in/yaml.v3"

	"github.com/syssam/graphcompiler/cerr"
)

// Config is the YAML-encoded extension to a GraphQL SDL schema document
// that spec §6.2(c) requires alongside it: the type-equivalence map, the
// index list, and the root types. The GraphQL SDL grammar itself has no
// syntax for these, so they travel as a sibling document. Custom scalars
// are not configured here; Load maps them through its own scalar table.
type Config struct {
	// Equivalence maps an object type name to the union type it is
	// semantically identical to (spec §3.1's type-equivalence hint).
	Equivalence map[string]string `yaml:"equivalence"`
	// Indexes lists the schema's read-only index descriptors.
	Indexes []ConfigIndex `yaml:"indexes"`
	// Root lists the schema's starting vertex types.
	Root []string `yaml:"root"`
}

// ConfigIndex is the YAML shape of an IndexDescriptor.
type ConfigIndex struct {
	Name         string   `yaml:"name"`
	BaseType     string   `yaml:"base_type"`
	Fields       []string `yaml:"fields"`
	Unique       bool     `yaml:"unique"`
	Ordered      bool     `yaml:"ordered"`
	IgnoresNulls bool     `yaml:"ignores_nulls"`
}

// LoadConfig parses a YAML-encoded Config.
func LoadConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, cerr.NewSchemaError(KindBadConfig, "", err.Error())
	}
	return &cfg, nil
}

// Options converts the config into New's functional options.
func (c *Config) Options() []Option {
	var opts []Option
	for obj, union := range c.Equivalence {
		opts = append(opts, WithEquivalence(obj, union))
	}
	if len(c.Root) > 0 {
		opts = append(opts, WithRoot(c.Root...))
	}
	if len(c.Indexes) > 0 {
		idx := make([]*IndexDescriptor, len(c.Indexes))
		for i, ci := range c.Indexes {
			idx[i] = &IndexDescriptor{
				Name: ci.Name, BaseType: ci.BaseType, Fields: ci.Fields,
				Unique: ci.Unique, Ordered: ci.Ordered, IgnoresNulls: ci.IgnoresNulls,
			}
		}
		opts = append(opts, WithIndexes(idx...))
	}
	return opts
}
