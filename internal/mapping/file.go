package mapping

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// MappingFile lists the legacy types a registry maps.
type MappingFile struct {
	Version string     `yaml:"version"`
	Types   []TypeSpec `yaml:"types"`
}

// TypeSpec is one registration.
type TypeSpec struct {
	// Name is the class name, e.g. "ij.ByteProcessor".
	Name string `yaml:"name"`
	// BackRef overrides the registry's back-reference field.
	BackRef string `yaml:"back_ref,omitempty"`
	// Exclude lists extra fields that are never copied.
	Exclude []string `yaml:"exclude,omitempty"`
}

// LoadFile loads and parses a YAML mapping file from the given path.
func LoadFile(path string) (*MappingFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read mapping file %s: %w", path, err)
	}

	return Parse(data)
}

// Parse parses YAML data into a MappingFile.
func Parse(data []byte) (*MappingFile, error) {
	var mf MappingFile

	if err := yaml.Unmarshal(data, &mf); err != nil {
		return nil, fmt.Errorf("failed to parse mapping YAML: %w", err)
	}

	if mf.Version == "" {
		mf.Version = "1"
	}

	if err := mf.validate(); err != nil {
		return nil, err
	}

	return &mf, nil
}

func (mf *MappingFile) validate() error {
	seen := make(map[string]bool, len(mf.Types))

	for i, t := range mf.Types {
		if t.Name == "" {
			return fmt.Errorf("types[%d]: missing name", i)
		}

		if seen[t.Name] {
			return fmt.Errorf("types[%d]: %s listed twice", i, t.Name)
		}

		seen[t.Name] = true
	}

	return nil
}

func (t TypeSpec) options() []RegisterOption {
	var opts []RegisterOption
	if t.BackRef != "" {
		opts = append(opts, UsingBackRef(t.BackRef))
	}

	if len(t.Exclude) > 0 {
		opts = append(opts, Excluding(t.Exclude...))
	}

	return opts
}

// Apply registers every type of mf, resolving names through the local
// loader. Registrations made before a failure stay in place.
func (r *Registry) Apply(mf *MappingFile) error {
	if mf == nil {
		return errors.New("apply: nil mapping file")
	}

	for _, t := range mf.Types {
		c, err := r.local.LoadClass(t.Name)
		if err != nil {
			return &MappingError{Type: t.Name, Err: fmt.Errorf("%w: %w", ErrUnresolvedType, err)}
		}

		if _, err := r.RegisterClass(c, t.options()...); err != nil {
			return err
		}
	}

	return nil
}
