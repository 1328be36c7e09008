package models

// Column is one positional cell of a tab after the leading timestamp.
type Column struct {
	Field    string   `yaml:"field" json:"field"`
	Aliases  []string `yaml:"aliases,omitempty" json:"aliases,omitempty"`
	Required bool     `yaml:"required,omitempty" json:"required,omitempty"`
	// Constant, when set, is stamped by the server and ignores caller input.
	Constant string `yaml:"constant,omitempty" json:"constant,omitempty"`
}

// Names returns the accepted payload keys in resolution order.
func (c Column) Names() []string {
	return append([]string{c.Field}, c.Aliases...)
}

// TabSchema binds a submission kind to its destination tab and column layout.
type TabSchema struct {
	Kind    string   `yaml:"kind" json:"kind"`
	Tab     string   `yaml:"tab" json:"tab"`
	Columns []Column `yaml:"columns" json:"columns"`
}

// Width is the row length including the timestamp cell.
func (s TabSchema) Width() int {
	return len(s.Columns) + 1
}

// RequiredFields lists the primary names of required columns in order.
func (s TabSchema) RequiredFields() []string {
	var out []string
	for _, c := range s.Columns {
		if c.Required {
			out = append(out, c.Field)
		}
	}
	return out
}
