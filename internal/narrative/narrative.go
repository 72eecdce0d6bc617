// Package narrative holds the text pools: per-band hints, the fragment sets
// of each path, the secret fragments and the welcome line.
package narrative

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/san-kum/intervalo/internal/motion"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

var (
	ErrEmptyPool   = errors.New("empty narrative pool")
	ErrUnknownPath = errors.New("unknown path")
)

// Paths lists the built-in fragment paths in display order.
var Paths = []string{"luz", "sombra", "intervalo"}

type Catalog struct {
	Welcome string `yaml:"welcome"`

	// Hints is keyed by band name (pausa, lento, medio, rapido).
	Hints     map[string][]string   `yaml:"hints"`
	Fragments map[string][][]string `yaml:"fragments"`
	Secrets   map[string][]string   `yaml:"secrets"`
}

// Default returns a fresh copy of the built-in catalog.
func Default() *Catalog {
	c, err := Parse(defaultYAML)
	if err != nil {
		panic(fmt.Sprintf("narrative: embedded catalog: %v", err))
	}
	return c
}

func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// Load reads a catalog file and merges it over the defaults: any pool the
// file names replaces the built-in one.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	over, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	c := Default()
	c.merge(over)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Catalog) merge(o *Catalog) {
	if o.Welcome != "" {
		c.Welcome = o.Welcome
	}
	for k, v := range o.Hints {
		c.Hints[k] = v
	}
	for k, v := range o.Fragments {
		c.Fragments[k] = v
	}
	for k, v := range o.Secrets {
		c.Secrets[k] = v
	}
}

// Validate checks that every band has at least one hint and every path
// at least one fragment set.
func (c *Catalog) Validate() error {
	for _, b := range motion.Bands {
		if len(c.Hints[b.String()]) == 0 {
			return fmt.Errorf("%w: hints for %s", ErrEmptyPool, b)
		}
	}
	if len(c.Fragments) == 0 {
		return fmt.Errorf("%w: no fragment paths", ErrEmptyPool)
	}
	for name, sets := range c.Fragments {
		if len(sets) == 0 {
			return fmt.Errorf("%w: fragments for %s", ErrEmptyPool, name)
		}
	}
	return nil
}

// Pool implements motion.Pools.
func (c *Catalog) Pool(b motion.Band) []string { return c.Hints[b.String()] }

// FragmentSet returns set idx of path, wrapping around. Unknown paths fall
// back to luz.
func (c *Catalog) FragmentSet(path string, idx int) []string {
	sets, ok := c.Fragments[path]
	if !ok || len(sets) == 0 {
		sets = c.Fragments["luz"]
	}
	if len(sets) == 0 {
		return nil
	}
	idx %= len(sets)
	if idx < 0 {
		idx += len(sets)
	}
	return sets[idx]
}

func (c *Catalog) HasPath(path string) bool {
	_, ok := c.Fragments[path]
	return ok
}

func (c *Catalog) Secret(id string) ([]string, bool) {
	lines, ok := c.Secrets[id]
	return lines, ok && len(lines) > 0
}

// SecretIDs returns the secret ids in sorted order.
func (c *Catalog) SecretIDs() []string {
	ids := make([]string, 0, len(c.Secrets))
	for id := range c.Secrets {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
