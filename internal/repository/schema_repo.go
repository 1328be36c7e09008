package repository

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/parisxmas/intake-relay/internal/models"
)

//go:embed schemas.yaml
var defaultSchemas []byte

type schemasFile struct {
	Version int                `yaml:"version"`
	Tabs    []models.TabSchema `yaml:"tabs"`
}

// SchemaRepo is the read-only registry of tab schemas, keyed by kind.
type SchemaRepo struct {
	byKind map[string]models.TabSchema
	order  []string
}

// LoadSchemas reads the YAML file at path, or the embedded defaults when
// path is empty.
func LoadSchemas(path string) (*SchemaRepo, error) {
	b := defaultSchemas
	if path != "" {
		var err error
		b, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("schemas: %w", err)
		}
	}
	return ParseSchemas(b)
}

func ParseSchemas(b []byte) (*SchemaRepo, error) {
	var sf schemasFile
	if err := yaml.Unmarshal(b, &sf); err != nil {
		return nil, fmt.Errorf("schemas: %w", err)
	}
	if sf.Version != 1 {
		return nil, errors.New("schemas: unsupported version")
	}
	if len(sf.Tabs) == 0 {
		return nil, errors.New("schemas: empty")
	}

	r := &SchemaRepo{byKind: make(map[string]models.TabSchema, len(sf.Tabs))}
	widths := make(map[string]int)
	for _, s := range sf.Tabs {
		if err := validateSchema(s); err != nil {
			return nil, err
		}
		if _, dup := r.byKind[s.Kind]; dup {
			return nil, fmt.Errorf("schemas: duplicate kind %q", s.Kind)
		}
		if w, ok := widths[s.Tab]; ok && w != s.Width() {
			return nil, fmt.Errorf("schemas: kind %q disagrees on width of tab %q (%d vs %d)", s.Kind, s.Tab, s.Width(), w)
		}
		widths[s.Tab] = s.Width()
		r.byKind[s.Kind] = s
		r.order = append(r.order, s.Kind)
	}
	return r, nil
}

func validateSchema(s models.TabSchema) error {
	if strings.TrimSpace(s.Kind) == "" || strings.ContainsAny(s.Kind, "/ ") {
		return fmt.Errorf("schemas: invalid kind %q", s.Kind)
	}
	if strings.TrimSpace(s.Tab) == "" {
		return fmt.Errorf("schemas: kind %q has no tab", s.Kind)
	}
	if len(s.Columns) == 0 {
		return fmt.Errorf("schemas: kind %q has no columns", s.Kind)
	}

	seen := make(map[string]struct{})
	for _, c := range s.Columns {
		if strings.TrimSpace(c.Field) == "" {
			return fmt.Errorf("schemas: kind %q has a column without field", s.Kind)
		}
		if c.Constant != "" && c.Required {
			return fmt.Errorf("schemas: kind %q column %q is constant and required", s.Kind, c.Field)
		}
		for _, name := range c.Names() {
			if _, dup := seen[name]; dup {
				return fmt.Errorf("schemas: kind %q accepts %q twice", s.Kind, name)
			}
			seen[name] = struct{}{}
		}
	}
	return nil
}

func (r *SchemaRepo) FindByKind(kind string) (models.TabSchema, bool) {
	s, ok := r.byKind[kind]
	return s, ok
}

// All returns the schemas in file order.
func (r *SchemaRepo) All() []models.TabSchema {
	out := make([]models.TabSchema, 0, len(r.order))
	for _, k := range r.order {
		out = append(out, r.byKind[k])
	}
	return out
}
