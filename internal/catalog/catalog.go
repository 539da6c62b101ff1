package catalog

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// Entry is one institution of the catalog.
type Entry struct {
	Name       string   `json:"name" yaml:"name"`
	Category   string   `json:"category" yaml:"category"`
	Location   string   `json:"location" yaml:"location"`
	Fees       int      `json:"fees" yaml:"fees"`
	MinRank    *int     `json:"min_rank" yaml:"min_rank"`
	Streams    []string `json:"streams" yaml:"streams"`
	Acceptance string   `json:"acceptance,omitempty" yaml:"acceptance,omitempty"`
}

func (e Entry) clone() Entry {
	c := e
	if e.MinRank != nil {
		rank := *e.MinRank
		c.MinRank = &rank
	}
	c.Streams = slices.Clone(e.Streams)
	return c
}

func (e Entry) validate() error {
	var errs error
	if strings.TrimSpace(e.Name) == "" {
		errs = multierr.Append(errs, errors.New("name is required"))
	}
	if e.Fees < 0 {
		errs = multierr.Append(errs, fmt.Errorf("fees must not be negative, got %d", e.Fees))
	}
	if e.MinRank != nil && *e.MinRank < 1 {
		errs = multierr.Append(errs, fmt.Errorf("min_rank must be at least 1, got %d", *e.MinRank))
	}
	return errs
}

// Catalog is an immutable list of institutions. It is safe for concurrent use.
type Catalog struct {
	entries []Entry
}

// New validates and copies entries into a catalog.
func New(entries []Entry) (*Catalog, error) {
	var errs error
	copied := make([]Entry, 0, len(entries))
	for i, e := range entries {
		if err := e.validate(); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("entry %d (%q): %w", i, e.Name, err))
			continue
		}
		copied = append(copied, e.clone())
	}
	if errs != nil {
		return nil, errs
	}
	return &Catalog{entries: copied}, nil
}

type file struct {
	Colleges []Entry `yaml:"colleges"`
}

// LoadFile reads a YAML catalog with a top-level colleges list.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog file %q: %w", path, err)
	}

	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing catalog file %q: %w", path, err)
	}
	if len(f.Colleges) == 0 {
		return nil, fmt.Errorf("catalog file %q has no colleges", path)
	}

	c, err := New(f.Colleges)
	if err != nil {
		return nil, fmt.Errorf("validating catalog file %q: %w", path, err)
	}
	return c, nil
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}

// Entries returns a copy of the entries in catalog order.
func (c *Catalog) Entries() []Entry {
	if c == nil {
		return nil
	}
	out := make([]Entry, len(c.entries))
	for i, e := range c.entries {
		out[i] = e.clone()
	}
	return out
}

// Find returns the entry with the given name, compared case-insensitively.
func (c *Catalog) Find(name string) (Entry, bool) {
	if c == nil {
		return Entry{}, false
	}
	for _, e := range c.entries {
		if strings.EqualFold(e.Name, strings.TrimSpace(name)) {
			return e.clone(), true
		}
	}
	return Entry{}, false
}
