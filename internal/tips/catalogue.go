package tips

import (
	_ "embed"
	"errors"
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"
)

//go:embed catalogue.yaml
var catalogueYAML []byte

var (
	ErrEmptyCatalogue = errors.New("tips: catalogue is empty")
	ErrDuplicateTip   = errors.New("tips: duplicate tip id")
)

type record struct {
	ID         string `yaml:"id"`
	Message    string `yaml:"message"`
	Category   string `yaml:"category"`
	Difficulty string `yaml:"difficulty"`
}

// Catalogue is an immutable list of tips in declaration order.
type Catalogue struct {
	tips []Tip
}

// Load decodes the embedded catalogue.
func Load() (*Catalogue, error) {
	return Parse(catalogueYAML)
}

// Parse decodes and validates a YAML list of tips.
func Parse(data []byte) (*Catalogue, error) {
	var records []record
	if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("tips: decode catalogue: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrEmptyCatalogue
	}

	seen := make(map[string]struct{}, len(records))
	out := make([]Tip, 0, len(records))
	for i, r := range records {
		if r.ID == "" || r.Message == "" {
			return nil, fmt.Errorf("tips: entry %d: id and message are required", i)
		}
		if _, dup := seen[r.ID]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateTip, r.ID)
		}
		seen[r.ID] = struct{}{}

		c, err := ParseCategory(r.Category)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %q", err, r.ID, r.Category)
		}
		d, err := ParseDifficulty(r.Difficulty)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %q", err, r.ID, r.Difficulty)
		}

		out = append(out, Tip{TipID: r.ID, Message: r.Message, Category: c, Difficulty: d})
	}

	return &Catalogue{tips: out}, nil
}

// All returns every tip.
func (c *Catalogue) All() []Tip {
	return slices.Clone(c.tips)
}

// Find returns the tips matching f, in catalogue order.
func (c *Catalogue) Find(f Filter) []Tip {
	out := make([]Tip, 0, len(c.tips))
	for _, t := range c.tips {
		if f.Match(t) {
			out = append(out, t)
		}
	}
	return out
}

func (c *Catalogue) ByCategory(cat Category) []Tip {
	return c.Find(Filter{Category: cat})
}

func (c *Catalogue) ByDifficulty(d Difficulty) []Tip {
	return c.Find(Filter{Difficulty: d})
}

// Len returns the number of tips.
func (c *Catalogue) Len() int { return len(c.tips) }
