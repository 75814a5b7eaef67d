package deploy

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrMalformedCatalog is returned when catalog data violates the card contract.
var ErrMalformedCatalog = errors.New("malformed catalog")

// CatalogFile represents the top-level YAML structure of a card catalog.
// JSON catalogs parse too, since YAML is a superset.
type CatalogFile struct {
	Enemies  []*Card `yaml:"enemies"`
	Villains []*Card `yaml:"villains"`
	Allies   []*Card `yaml:"allies"`
	Heroes   []*Card `yaml:"heroes"`
}

// Catalog is the immutable set of card definitions for a session.
type Catalog struct {
	enemies  []*Card
	villains []*Card
	allies   []*Card
	heroes   []*Card

	byID       map[GroupID]*Card
	villainIDs map[GroupID]bool
}

// LoadCatalog reads and validates a catalog file.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseCatalog(data)
}

// ParseCatalog parses catalog YAML (or JSON) and validates it.
func ParseCatalog(data []byte) (*Catalog, error) {
	var cf CatalogFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("parse catalog YAML: %w", err)
	}
	return NewCatalog(cf.Enemies, cf.Villains, cf.Allies, cf.Heroes)
}

// NewCatalog builds a catalog from ordered card lists. Ids must be unique
// across all four lists.
func NewCatalog(enemies, villains, allies, heroes []*Card) (*Catalog, error) {
	c := &Catalog{
		enemies:    enemies,
		villains:   villains,
		allies:     allies,
		heroes:     heroes,
		byID:       make(map[GroupID]*Card),
		villainIDs: make(map[GroupID]bool),
	}
	for i, group := range [][]*Card{enemies, villains, allies, heroes} {
		// enemies and villains need a tier; heroes and allies carry none
		tiered := i < 2
		for _, card := range group {
			if err := validateCard(card, tiered); err != nil {
				return nil, err
			}
			if _, dup := c.byID[card.ID]; dup {
				return nil, fmt.Errorf("%w: duplicate id %s", ErrMalformedCatalog, card.ID)
			}
			c.byID[card.ID] = card
		}
	}
	for _, v := range villains {
		c.villainIDs[v.ID] = true
	}
	return c, nil
}

func validateCard(card *Card, tiered bool) error {
	if card == nil || card.ID.IsZero() {
		return fmt.Errorf("%w: card without id", ErrMalformedCatalog)
	}
	minTier := 0
	if tiered {
		minTier = 1
	}
	if card.Tier < minTier || card.Tier > 3 {
		return fmt.Errorf("%w: %s has tier %d", ErrMalformedCatalog, card.ID, card.Tier)
	}
	if card.Cost < 0 || card.RCost < 0 || card.Fame < 0 || card.Reimb < 0 || card.Size < 0 {
		return fmt.Errorf("%w: %s has a negative value", ErrMalformedCatalog, card.ID)
	}
	return nil
}

// Enemies returns the non-villain enemy definitions in catalog order.
func (c *Catalog) Enemies() []*Card { return c.enemies }

// Villains returns the villain definitions in catalog order.
func (c *Catalog) Villains() []*Card { return c.villains }

func (c *Catalog) Allies() []*Card { return c.allies }

func (c *Catalog) Heroes() []*Card { return c.heroes }

// Lookup returns any card by id.
func (c *Catalog) Lookup(id GroupID) (*Card, bool) {
	card, ok := c.byID[id]
	return card, ok
}

// IsVillain reports whether id belongs to the villain list.
func (c *Catalog) IsVillain(id GroupID) bool {
	return c.villainIDs[id]
}

// Enemy returns an enemy or villain definition.
func (c *Catalog) Enemy(id GroupID) (*Card, error) {
	return c.lookupIn(id, c.villains, c.enemies)
}

func (c *Catalog) Hero(id GroupID) (*Card, error) {
	return c.lookupIn(id, c.heroes)
}

func (c *Catalog) Ally(id GroupID) (*Card, error) {
	return c.lookupIn(id, c.allies)
}

func (c *Catalog) lookupIn(id GroupID, groups ...[]*Card) (*Card, error) {
	for _, g := range groups {
		for _, card := range g {
			if card.ID == id {
				return card, nil
			}
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
}
