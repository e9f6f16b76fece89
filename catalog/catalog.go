/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

// Package catalog holds the ordered, immutable set of maps that a veto
// session starts from.
package catalog

import (
	"errors"
	"fmt"
)

var (
	ErrTooFewItems = errors.New("catalog needs at least two items")
	ErrDuplicateID = errors.New("duplicate item id")
	ErrInvalidItem = errors.New("invalid item")
)

// Item is a single eliminable entry.
type Item struct {
	ID   string `json:"id" yaml:"id" toml:"id"`
	Name string `json:"name" yaml:"name" toml:"name"`
	Icon string `json:"icon" yaml:"icon" toml:"icon"`
}

type Catalog struct {
	items []Item
	index map[string]int
}

func New(items []Item) (*Catalog, error) {
	if len(items) < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrTooFewItems, len(items))
	}

	c := &Catalog{
		items: make([]Item, len(items)),
		index: make(map[string]int, len(items)),
	}

	for i, it := range items {
		if it.ID == "" || it.Name == "" {
			return nil, fmt.Errorf("%w at position %d: id and name are required", ErrInvalidItem, i)
		}
		if _, ok := c.index[it.ID]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateID, it.ID)
		}
		c.index[it.ID] = i
		c.items[i] = it
	}

	return c, nil
}

// Default returns the built-in Valorant map pool.
func Default() *Catalog {
	c, err := New([]Item{
		{ID: "abyss", Name: "Abyss", Icon: "🏔️"},
		{ID: "ascent", Name: "Ascent", Icon: "🏛️"},
		{ID: "bind", Name: "Bind", Icon: "🏜️"},
		{ID: "corrode", Name: "Corrode", Icon: "🏭"},
		{ID: "haven", Name: "Haven", Icon: "🛕"},
		{ID: "icebox", Name: "Icebox", Icon: "❄️"},
		{ID: "lotus", Name: "Lotus", Icon: "🪷"},
		{ID: "pearl", Name: "Pearl", Icon: "🐚"},
		{ID: "sunset", Name: "Sunset", Icon: "🌇"},
	})
	if err != nil {
		panic("catalog: invalid built-in map pool: " + err.Error())
	}
	return c
}

// Items returns a copy, in catalog order.
func (c *Catalog) Items() []Item {
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Catalog) Len() int {
	return len(c.items)
}

func (c *Catalog) Lookup(id string) (Item, bool) {
	i, ok := c.index[id]
	if !ok {
		return Item{}, false
	}
	return c.items[i], true
}
