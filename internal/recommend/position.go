// Comicrec - Comic Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/comicrec

package recommend

// Position is an item's index in the per-request corpus.
// It is never an ItemID.
type Position int

// PositionIndex maps corpus positions to item identifiers and back.
// It is built once per request and is read-only afterwards.
type PositionIndex struct {
	items []Item
	byID  map[ItemID]Position
}

// NewPositionIndex indexes items in their given order.
// If an identifier occurs twice, the first position wins.
func NewPositionIndex(items []Item) *PositionIndex {
	idx := &PositionIndex{
		items: items,
		byID:  make(map[ItemID]Position, len(items)),
	}
	for i := range items {
		if _, ok := idx.byID[items[i].ID]; !ok {
			idx.byID[items[i].ID] = Position(i)
		}
	}
	return idx
}

// Len returns the number of positions.
func (p *PositionIndex) Len() int {
	return len(p.items)
}

// ID returns the identifier at pos.
func (p *PositionIndex) ID(pos Position) ItemID {
	return p.items[pos].ID
}

// Item returns the item at pos.
func (p *PositionIndex) Item(pos Position) Item {
	return p.items[pos]
}

// Lookup returns the position of id.
func (p *PositionIndex) Lookup(id ItemID) (Position, bool) {
	pos, ok := p.byID[id]
	return pos, ok
}
