// Package catalog holds the set of alternative activities the engine can
// suggest. A Catalog is immutable and never empty.
package catalog

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/runger/dopamenu/internal/intervention/model"
)

var (
	// ErrEmptyCatalog is returned when a catalog would have no activities.
	ErrEmptyCatalog = errors.New("catalog has no activities")
	// ErrDuplicateID is returned when two activities share an ID.
	ErrDuplicateID = errors.New("duplicate activity id")
	// ErrInvalidCandidate wraps per-activity validation failures.
	ErrInvalidCandidate = errors.New("invalid activity")
)

// Catalog is a validated, non-empty, ordered list of candidates.
type Catalog struct {
	candidates []model.Candidate
	byID       map[string]int
}

// New validates the candidates and builds a catalog. Order is preserved;
// the first candidate is the engine's last-resort fallback.
func New(candidates ...model.Candidate) (*Catalog, error) {
	if len(candidates) == 0 {
		return nil, ErrEmptyCatalog
	}

	c := &Catalog{
		candidates: make([]model.Candidate, len(candidates)),
		byID:       make(map[string]int, len(candidates)),
	}
	copy(c.candidates, candidates)

	for i, cand := range c.candidates {
		if err := validate(cand); err != nil {
			return nil, fmt.Errorf("activity %d (%q): %w", i, cand.ID, err)
		}
		if _, dup := c.byID[cand.ID]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateID, cand.ID)
		}
		c.byID[cand.ID] = i
	}

	return c, nil
}

// MustNew is New for catalogs known to be valid at compile time.
func MustNew(candidates ...model.Candidate) *Catalog {
	c, err := New(candidates...)
	if err != nil {
		panic(err)
	}
	return c
}

func validate(c model.Candidate) error {
	if c.ID == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidCandidate)
	}
	if c.Label == "" {
		return fmt.Errorf("%w: label is required", ErrInvalidCandidate)
	}
	if !c.RequiredEffort.IsValid() {
		return fmt.Errorf("%w: unknown required_effort %q", ErrInvalidCandidate, c.RequiredEffort)
	}
	if !c.Surface.IsValid() {
		return fmt.Errorf("%w: unknown surface %q", ErrInvalidCandidate, c.Surface)
	}
	if err := c.Modality.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCandidate, err)
	}
	return nil
}

// All returns a copy of the candidates in catalog order.
func (c *Catalog) All() []model.Candidate {
	out := make([]model.Candidate, len(c.candidates))
	copy(out, c.candidates)
	return out
}

// First returns the first candidate. It always exists.
func (c *Catalog) First() model.Candidate {
	return c.candidates[0]
}

// Len returns the number of candidates.
func (c *Catalog) Len() int {
	return len(c.candidates)
}

// Get looks up a candidate by ID.
func (c *Catalog) Get(id string) (model.Candidate, bool) {
	i, ok := c.byID[id]
	if !ok {
		return model.Candidate{}, false
	}
	return c.candidates[i], true
}

// file is the on-disk YAML shape.
type file struct {
	Activities []model.Candidate `yaml:"activities"`
}

// Parse reads a YAML catalog of the form:
//
//	activities:
//	  - id: breathe
//	    label: Three slow breaths
//	    required_effort: very_low
//	    surface: off_phone
//	    modality: {passive_active: -0.6, ...}
func Parse(data []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	return New(f.Activities...)
}

// LoadFile reads and parses a YAML catalog file.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Load returns the catalog at path, or the default catalog when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

// Marshal renders the catalog as YAML in the format Parse accepts.
func (c *Catalog) Marshal() ([]byte, error) {
	return yaml.Marshal(file{Activities: c.candidates})
}
