package ledger

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var validate = validator.New()

// TaskDef declares a task in the manifest.
type TaskDef struct {
	ID        string   `yaml:"id" json:"id" validate:"required"`
	Title     string   `yaml:"title,omitempty" json:"title,omitempty"`
	Files     []string `yaml:"files,omitempty" json:"files,omitempty"`
	DependsOn []string `yaml:"depends_on,omitempty" json:"depends_on,omitempty"`
}

// Group is an ordered or parallel collection of task declarations. A
// parallel group's eligible tasks may be started concurrently once their
// dependencies are satisfied.
type Group struct {
	Name     string     `yaml:"name" json:"name" validate:"required"`
	Parallel bool       `yaml:"parallel,omitempty" json:"parallel,omitempty"`
	Tasks    []*TaskDef `yaml:"tasks" json:"tasks" validate:"required,dive"`
}

// Manifest is the declarative execution graph: ordered groups of tasks with
// depends_on edges. It is read-only from the ledger's perspective.
type Manifest struct {
	Groups []*Group `yaml:"groups" json:"groups" validate:"required,dive"`

	// Derived indexes
	tasksByID map[string]*TaskDef
	order     []string
	groupOf   map[string]string
}

// LoadManifest reads and validates a manifest file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	m, err := ParseManifest(data)
	if err != nil {
		return nil, fmt.Errorf("manifest %s: %w", path, err)
	}
	return m, nil
}

// ParseManifest parses manifest YAML and rejects duplicate ids, missing
// dependencies, and dependency cycles at load time.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	if err := validate.Struct(&m); err != nil {
		return nil, fmt.Errorf("validating manifest: %w", err)
	}
	if err := m.index(); err != nil {
		return nil, err
	}
	if _, err := BuildGraph(&m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *Manifest) index() error {
	m.tasksByID = make(map[string]*TaskDef)
	m.groupOf = make(map[string]string)
	m.order = nil
	for _, group := range m.Groups {
		for _, def := range group.Tasks {
			if _, exists := m.tasksByID[def.ID]; exists {
				return fmt.Errorf("duplicate task id %q in manifest", def.ID)
			}
			m.tasksByID[def.ID] = def
			m.groupOf[def.ID] = group.Name
			m.order = append(m.order, def.ID)
		}
	}
	return nil
}

// TaskByID returns the declaration for a task id.
func (m *Manifest) TaskByID(id string) (*TaskDef, bool) {
	def, ok := m.tasksByID[id]
	return def, ok
}

// Has reports whether the manifest declares the task id.
func (m *Manifest) Has(id string) bool {
	_, ok := m.tasksByID[id]
	return ok
}

// Order returns all task ids in manifest declaration order.
func (m *Manifest) Order() []string {
	return m.order
}

// GroupOf returns the name of the group declaring the task id.
func (m *Manifest) GroupOf(id string) (string, bool) {
	name, ok := m.groupOf[id]
	return name, ok
}

// Save writes the manifest to path (mainly used for tests and init).
func (m *Manifest) Save(path string) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
