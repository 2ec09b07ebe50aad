// Package catalog holds the per-cycle event configuration: which events and
// workshops exist, workshop capacities, the fee and the team-size rules.
package catalog

import (
	_ "embed"
	"os"
	"strings"

	"event-registration/models"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultCatalog []byte

// FullTeamSize is the largest team allowed. A team of this size needs a
// qualifying event or a workshop.
const FullTeamSize = 3

type Catalog struct {
	Title          string         `yaml:"title"`
	Venue          string         `yaml:"venue"`
	TeamIDPrefix   string         `yaml:"team_id_prefix"`
	FeePerMember   int            `yaml:"fee_per_member"`
	MaxTeamSize    int            `yaml:"max_team_size"`
	FullTeamEvents []string       `yaml:"full_team_events"`
	Events         []models.Event `yaml:"events"`
}

// Default returns the catalog compiled into the binary.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Load reads a catalog file, falling back to the embedded one when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read catalog %s", path)
	}
	return Parse(raw)
}

func Parse(raw []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, errors.Wrap(err, "parse catalog")
	}
	if c.TeamIDPrefix == "" {
		c.TeamIDPrefix = "NX"
	}
	if c.FeePerMember <= 0 {
		c.FeePerMember = 250
	}
	if c.MaxTeamSize <= 0 {
		c.MaxTeamSize = FullTeamSize
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalog) validate() error {
	if c.MaxTeamSize > FullTeamSize {
		return errors.Errorf("catalog: max_team_size %d exceeds %d", c.MaxTeamSize, FullTeamSize)
	}
	seen := make(map[string]bool, len(c.Events))
	for _, e := range c.Events {
		name := strings.TrimSpace(e.Name)
		if name == "" {
			return errors.New("catalog: event with empty name")
		}
		if seen[name] {
			return errors.Errorf("catalog: duplicate event %q", name)
		}
		seen[name] = true
		switch e.Category {
		case models.CategoryTechnical, models.CategoryNonTech, models.CategoryWorkshop:
		default:
			return errors.Errorf("catalog: event %q has unknown category %q", name, e.Category)
		}
		if e.MaxParticipants != nil && *e.MaxParticipants < 0 {
			return errors.Errorf("catalog: event %q has negative max_participants", name)
		}
	}
	return nil
}

// Lookup returns the event with the given name.
func (c *Catalog) Lookup(name string) (models.Event, bool) {
	for _, e := range c.Events {
		if e.Name == name {
			return e, true
		}
	}
	return models.Event{}, false
}

// Has reports whether name is a catalog event of the given category.
func (c *Catalog) Has(name string, category models.Category) bool {
	e, ok := c.Lookup(name)
	return ok && e.Category == category
}

func (c *Catalog) ByCategory(category models.Category) []models.Event {
	var out []models.Event
	for _, e := range c.Events {
		if e.Category == category {
			out = append(out, e)
		}
	}
	return out
}

// QualifiesFullTeam reports whether any of the selected events lets a team
// register with FullTeamSize members.
func (c *Catalog) QualifiesFullTeam(events []string) bool {
	for _, e := range events {
		for _, q := range c.FullTeamEvents {
			if e == q {
				return true
			}
		}
	}
	return false
}

// Fee is the registration amount for a team of n members.
func (c *Catalog) Fee(n int) int {
	return c.FeePerMember * n
}
