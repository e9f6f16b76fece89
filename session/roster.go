package session

import (
	"fmt"
	"slices"
)

// JoinTournament registers connID on the tournament roster. A deviceToken
// in the request must be unused. Without one, the token given on join is
// recorded unless another registration already holds it, in which case the
// registration carries no token.
func (m *Manager) JoinTournament(connID, deviceToken string) ([]Effect, error) {
	p, ok := m.s.participants[connID]
	if !ok {
		return nil, ErrNotJoined
	}

	if m.s.registrantByDevice(deviceToken) >= 0 {
		return nil, ErrDuplicateDevice
	}
	if m.s.registrantByConn(connID) >= 0 {
		return nil, ErrAlreadyRegistered
	}
	if len(m.s.roster) >= m.rosterCapacity {
		return nil, ErrRosterFull
	}

	if deviceToken == "" && m.s.registrantByDevice(p.DeviceToken) < 0 {
		deviceToken = p.DeviceToken
	}

	m.s.roster = append(m.s.roster, Registrant{
		ID:          connID,
		Nickname:    p.Nickname,
		Seat:        p.Seat,
		DeviceToken: deviceToken,
		JoinedAt:    m.clock.Now(),
	})

	return []Effect{
		toAll(EventTournamentUpdate, m.s.tournamentView()),
		toOthers(connID, EventNotice, Notice{Text: fmt.Sprintf("%s joined the tournament", p.Nickname)}),
	}, nil
}

// LeaveTournament removes a registration, matched by the request's device
// token first so a player can leave from a different connection than the one
// they joined on, then by connID. A registration made with the token given on
// join already belongs to connID, since Join re-associates it.
func (m *Manager) LeaveTournament(connID, deviceToken string) ([]Effect, error) {
	i := m.s.registrantByDevice(deviceToken)
	if i < 0 {
		i = m.s.registrantByConn(connID)
	}
	if i < 0 {
		return nil, ErrNotRegistered
	}

	r := m.s.roster[i]
	m.s.roster = slices.Delete(m.s.roster, i, i+1)

	return []Effect{
		toAll(EventTournamentUpdate, m.s.tournamentView()),
		toOthers(connID, EventNotice, Notice{Text: fmt.Sprintf("%s left the tournament", r.Nickname)}),
	}, nil
}
