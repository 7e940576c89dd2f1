package jurisdiction

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Registry resolves jurisdiction codes to their compliance configuration.
// Implementations are immutable once built.
type Registry interface {
	Get(code string) Config
	Codes() []Code
	Default() Code
}

type staticRegistry struct {
	configs map[Code]Config
}

// NewStaticRegistry returns a registry holding the built-in configuration table
func NewStaticRegistry() Registry {
	return newStaticRegistry(builtinConfigs())
}

func newStaticRegistry(configs map[Code]Config) *staticRegistry {
	table := make(map[Code]Config, len(configs))
	for code, cfg := range configs {
		table[code] = cfg.clone()
	}
	return &staticRegistry{configs: table}
}

// Get returns the configuration for code, falling back to the default
// jurisdiction for unknown or empty codes.
func (r *staticRegistry) Get(code string) Config {
	if c, ok := ParseCode(code); ok {
		if cfg, ok := r.configs[c]; ok {
			return cfg.clone()
		}
	}
	return r.configs[DefaultCode].clone()
}

func (r *staticRegistry) Codes() []Code {
	return AllCodes()
}

func (r *staticRegistry) Default() Code {
	return DefaultCode
}

// Override replaces selected fields of a built-in jurisdiction configuration
type Override struct {
	FullName           *string              `yaml:"full_name"`
	EnabledForms       []FormID             `yaml:"enabled_forms"`
	Distance           *DistanceRequirement `yaml:"distance"`
	VetSignOffRequired *bool                `yaml:"vet_sign_off_required"`
	RetentionYears     *int                 `yaml:"retention_years"`
	CodeOfPractice     *string              `yaml:"code_of_practice"`
}

type overridesFile struct {
	Jurisdictions map[string]Override `yaml:"jurisdictions"`
}

// ParseOverrides decodes a YAML overrides document keyed by jurisdiction code
func ParseOverrides(data []byte) (map[Code]Override, error) {
	var doc overridesFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse jurisdiction overrides: %w", err)
	}

	out := make(map[Code]Override, len(doc.Jurisdictions))
	for raw, o := range doc.Jurisdictions {
		code, ok := ParseCode(raw)
		if !ok {
			return nil, fmt.Errorf("unknown jurisdiction code %q in overrides", raw)
		}
		for _, f := range o.EnabledForms {
			if !f.IsValid() {
				return nil, fmt.Errorf("unknown form %q for jurisdiction %s", f, code)
			}
		}
		if o.Distance != nil && o.Distance.MinimumKm < 0 {
			return nil, fmt.Errorf("negative minimum distance for jurisdiction %s", code)
		}
		if o.RetentionYears != nil && *o.RetentionYears < 0 {
			return nil, fmt.Errorf("negative retention years for jurisdiction %s", code)
		}
		out[code] = o
	}
	return out, nil
}

// NewRegistry builds a registry from the built-in table with the given overrides applied
func NewRegistry(overrides map[Code]Override) Registry {
	configs := builtinConfigs()
	for code, o := range overrides {
		cfg, ok := configs[code]
		if !ok {
			continue
		}
		configs[code] = o.apply(cfg)
	}
	return newStaticRegistry(configs)
}

// LoadRegistry builds a registry from an overrides file. An empty path yields
// the built-in table.
func LoadRegistry(path string) (Registry, error) {
	if path == "" {
		return NewStaticRegistry(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read jurisdiction overrides: %w", err)
	}

	overrides, err := ParseOverrides(data)
	if err != nil {
		return nil, err
	}
	return NewRegistry(overrides), nil
}

func (o Override) apply(cfg Config) Config {
	if o.FullName != nil {
		cfg.FullName = *o.FullName
	}
	if o.EnabledForms != nil {
		cfg.EnabledForms = NewFormSet(o.EnabledForms...)
	}
	if o.Distance != nil {
		cfg.Distance = *o.Distance
	}
	if o.VetSignOffRequired != nil {
		cfg.VetSignOffRequired = *o.VetSignOffRequired
	}
	if o.RetentionYears != nil {
		cfg.RetentionYears = *o.RetentionYears
	}
	if o.CodeOfPractice != nil {
		cfg.CodeOfPractice = *o.CodeOfPractice
	}
	return cfg
}
