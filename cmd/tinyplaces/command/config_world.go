package command

import (
	"fmt"
	"os"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-tinyplaces/internal/game"
	"github.com/pixil98/go-tinyplaces/internal/storage"
)

type WorldConfig struct {
	MapsPath  string                      `json:"maps_path"`
	Creatures AssetConfig[*game.Creature] `json:"creatures"`
	Spells    AssetConfig[*game.Spell]    `json:"spells"`
	Transits  []TransitConfig             `json:"transits"`
}

func (c *WorldConfig) validate() error {
	el := errors.NewErrorList()

	if c.MapsPath == "" {
		el.Add(fmt.Errorf("maps_path is required"))
	} else {
		_, err := os.Stat(c.MapsPath)
		if err != nil {
			el.Add(fmt.Errorf("invalid maps_path %q: %w", c.MapsPath, err))
		}
	}

	el.Add(c.Creatures.Validate("creatures"))
	el.Add(c.Spells.Validate("spells"))

	for i, t := range c.Transits {
		err := t.validate()
		if err != nil {
			el.Add(fmt.Errorf("transit %d: %w", i, err))
		}
	}

	return el.Err()
}

func (c *WorldConfig) BuildWorld(pub game.Publisher) (*game.World, error) {
	creatures, err := c.Creatures.BuildFileStore()
	if err != nil {
		return nil, fmt.Errorf("creating creature store: %w", err)
	}
	spells, err := c.Spells.BuildFileStore()
	if err != nil {
		return nil, fmt.Errorf("creating spell store: %w", err)
	}

	transits := game.DefaultTransits()
	if len(c.Transits) > 0 {
		transits = make([]game.Transit, len(c.Transits))
		for i, t := range c.Transits {
			transits[i] = t.build()
		}
	}

	return game.NewWorld(pub, creatures, spells, c.MapsPath, transits), nil
}

type TransitConfig struct {
	Room   string `json:"room"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Radius int    `json:"radius"`
	Target string `json:"target"`
	EntryX int    `json:"entry_x"`
	EntryY int    `json:"entry_y"`
	Spawn  string `json:"spawn,omitempty"`
}

func (t *TransitConfig) validate() error {
	el := errors.NewErrorList()

	if t.Room == "" {
		el.Add(fmt.Errorf("room is required"))
	}
	if t.Target == "" {
		el.Add(fmt.Errorf("target is required"))
	}
	if t.Radius <= 0 {
		el.Add(fmt.Errorf("radius must be positive"))
	}

	return el.Err()
}

func (t *TransitConfig) build() game.Transit {
	return game.Transit{
		Room:     t.Room,
		X:        t.X,
		Y:        t.Y,
		RadiusSq: t.Radius * t.Radius,
		Target:   t.Target,
		EntryX:   t.EntryX,
		EntryY:   t.EntryY,
		Spawn:    t.Spawn,
	}
}

type AssetConfig[T storage.ValidatingSpec] struct {
	Path string `json:"path"`
}

func (c *AssetConfig[T]) Validate(name string) error {
	if c.Path == "" {
		return fmt.Errorf("%s: path is required", name)
	}
	_, err := os.Stat(c.Path)
	if err != nil {
		return fmt.Errorf("%s: invalid path %q: %w", name, c.Path, err)
	}

	return nil
}

func (c *AssetConfig[T]) BuildFileStore() (*storage.FileStore[T], error) {
	return storage.NewFileStore[T](c.Path)
}
