package session

import (
	"fmt"
	"slices"

	"github.com/huujin/valorant-card/catalog"
)

// Eliminate removes itemID from the pool on behalf of the captain whose turn
// it is. While the game is inactive the request is ignored.
//
// After a removal the pool either has one map left (that map is the result
// and the game stops), is empty (no result; only reachable from a pool that
// started with a single map), or play passes to the other captain.
func (m *Manager) Eliminate(connID, itemID string) ([]Effect, error) {
	if !m.s.active {
		return nil, nil
	}

	p, ok := m.s.participants[connID]
	if !ok || !p.IsCaptain {
		return nil, ErrNotCaptain
	}
	if p.Seat != m.s.turn {
		return nil, ErrNotYourTurn
	}

	if _, known := m.catalog.Lookup(itemID); !known {
		return nil, fmt.Errorf("%w: %q is not in the map pool", ErrItemAlreadyRemoved, itemID)
	}

	idx := slices.IndexFunc(m.s.pool, func(it catalog.Item) bool { return it.ID == itemID })
	if idx < 0 {
		return nil, ErrItemAlreadyRemoved
	}

	m.s.removed = append(m.s.removed, RemovedItem{Item: m.s.pool[idx], RemovedBy: p.Seat})
	m.s.pool = slices.Delete(m.s.pool, idx, idx+1)

	switch len(m.s.pool) {
	case 1:
		m.s.lastCard = true
		m.s.active = false
	case 0:
		m.s.lastCard = false
		m.s.exhausted = true
		m.s.active = false
	default:
		m.s.turn = m.s.otherCaptainSeat(m.s.turn)
	}

	return []Effect{toAll(EventGameState, m.s.gameView())}, nil
}
