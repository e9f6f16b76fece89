// Package session implements the map veto state machine.
//
// A Manager owns the one shared session: who is connected, which two
// participants are captains, the remaining map pool, the removal history and
// the tournament roster. Each operation validates the request against the
// current state, mutates it, and returns the broadcasts the change requires
// as a list of Effects. A rejected request returns an error and leaves the
// state untouched.
//
// Manager does no locking of its own. It must be driven by a single
// goroutine, which is what hub.Hub does.
package session

import (
	"fmt"

	"github.com/jonboulle/clockwork"

	"github.com/huujin/valorant-card/catalog"
)

const DefaultRosterCapacity = 10

type Option func(*Manager)

// WithClock sets the clock used for registrant timestamps.
func WithClock(c clockwork.Clock) Option {
	return func(m *Manager) { m.clock = c }
}

// WithRosterCapacity caps the tournament roster. Values below 1 are ignored.
func WithRosterCapacity(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.rosterCapacity = n
		}
	}
}

type Manager struct {
	catalog        *catalog.Catalog
	clock          clockwork.Clock
	rosterCapacity int

	s state
}

func NewManager(cat *catalog.Catalog, opts ...Option) *Manager {
	m := &Manager{
		catalog:        cat,
		clock:          clockwork.NewRealClock(),
		rosterCapacity: DefaultRosterCapacity,
	}
	for _, opt := range opts {
		opt(m)
	}

	m.s = state{
		turn:         1,
		participants: make(map[string]Participant),
		captains:     make(map[string]Captain),
	}
	m.s.resetPool(cat.Items())

	return m
}

// Handle routes an intent from connID and turns any rejection into a
// rejected message for that connection alone.
func (m *Manager) Handle(connID string, in Intent) []Effect {
	var (
		effects []Effect
		err     error
	)

	switch i := in.(type) {
	case Join:
		effects = m.Join(connID, i.Nickname, i.DeviceToken)
	case BecomeCaptain:
		effects, err = m.BecomeCaptain(connID)
	case LeaveCaptain:
		effects, err = m.LeaveCaptain(connID)
	case ChangeNickname:
		effects, err = m.ChangeNickname(connID, i.Nickname)
	case Eliminate:
		effects, err = m.Eliminate(connID, i.ItemID)
	case JoinTournament:
		effects, err = m.JoinTournament(connID, i.DeviceToken)
	case LeaveTournament:
		effects, err = m.LeaveTournament(connID, i.DeviceToken)
	case ResetGame:
		effects = m.ResetGame()
	case ResetAll:
		effects = m.ResetAll()
	case ResetTournament:
		effects = m.ResetTournament()
	default:
		err = fmt.Errorf("%w: %T", ErrMalformedIntent, in)
	}

	if err != nil {
		return []Effect{reject(connID, err)}
	}
	return effects
}

// Snapshot returns a detached copy of the session.
func (m *Manager) Snapshot() Snapshot {
	return Snapshot{
		Game:         m.s.gameView(),
		Participants: m.s.participantsView(),
		Captains:     m.s.captainsView(),
		Tournament:   m.s.tournamentView(),
	}
}

// Connect greets a new connection with the current views.
func (m *Manager) Connect(connID string) []Effect {
	return []Effect{
		toSender(connID, EventGameState, m.s.gameView()),
		toSender(connID, EventParticipantsUpdate, m.s.participantsView()),
		toSender(connID, EventCaptainsUpdate, m.s.captainsView()),
		toSender(connID, EventTournamentUpdate, m.s.tournamentView()),
	}
}

// Join seats connID as a non-captain participant on the lowest free seat. A
// connection that already joined keeps its seat and role.
func (m *Manager) Join(connID, nickname, deviceToken string) []Effect {
	p, ok := m.s.participants[connID]
	if ok {
		p.Nickname = nickname
		if deviceToken != "" {
			p.DeviceToken = deviceToken
		}
		if c, isCaptain := m.s.captains[connID]; isCaptain {
			c.Nickname = nickname
			m.s.captains[connID] = c
		}
	} else {
		p = Participant{
			ID:          connID,
			Nickname:    nickname,
			Seat:        m.s.lowestFreeSeat(),
			DeviceToken: deviceToken,
		}
	}
	m.s.participants[connID] = p

	// Re-associate a registration made from this device on an earlier
	// connection, unless this connection already owns a different one.
	if i := m.s.registrantByDevice(p.DeviceToken); i >= 0 {
		if owner := m.s.registrantByConn(connID); owner < 0 {
			m.s.roster[i].ID = connID
		}
	}

	inTournament := false
	if i := m.s.registrantByConn(connID); i >= 0 {
		m.s.roster[i].Nickname = p.Nickname
		m.s.roster[i].Seat = p.Seat
		inTournament = true
	}

	return []Effect{
		toSender(connID, EventRoleAssigned, RoleAssigned{
			PlayerNumber:   p.Seat,
			IsCaptain:      p.IsCaptain,
			IsInTournament: inTournament,
		}),
		toAll(EventParticipantsUpdate, m.s.participantsView()),
		toAll(EventCaptainsUpdate, m.s.captainsView()),
		toAll(EventTournamentUpdate, m.s.tournamentView()),
	}
}

// Disconnect drops the participant and its captain mirror. Roster entries
// are kept so a registration survives a reconnect.
func (m *Manager) Disconnect(connID string) []Effect {
	if _, ok := m.s.participants[connID]; !ok {
		return nil
	}

	delete(m.s.participants, connID)
	delete(m.s.captains, connID)
	m.pauseIfShortOfCaptains()

	return []Effect{
		toAll(EventParticipantsUpdate, m.s.participantsView()),
		toAll(EventCaptainsUpdate, m.s.captainsView()),
		toAll(EventGameState, m.s.gameView()),
	}
}

func (m *Manager) BecomeCaptain(connID string) ([]Effect, error) {
	p, ok := m.s.participants[connID]
	if !ok {
		return nil, ErrNotJoined
	}
	if len(m.s.captains) >= 2 {
		return nil, ErrCaptainLimitReached
	}
	if p.IsCaptain {
		return nil, ErrAlreadyCaptain
	}

	p.IsCaptain = true
	m.s.participants[connID] = p
	m.s.captains[connID] = Captain{ID: connID, Nickname: p.Nickname, Seat: p.Seat}

	effects := []Effect{
		toAll(EventParticipantsUpdate, m.s.participantsView()),
		toAll(EventCaptainsUpdate, m.s.captainsView()),
	}

	if len(m.s.captains) == 2 {
		m.s.turn = m.s.firstCaptainSeat()
		m.s.active = len(m.s.pool) >= 2
		effects = append(effects, toAll(EventGameState, m.s.gameView()))
	}

	return effects, nil
}

func (m *Manager) LeaveCaptain(connID string) ([]Effect, error) {
	p, ok := m.s.participants[connID]
	if !ok || !p.IsCaptain {
		return nil, ErrNotACaptain
	}

	p.IsCaptain = false
	m.s.participants[connID] = p
	delete(m.s.captains, connID)
	m.pauseIfShortOfCaptains()

	return []Effect{
		toAll(EventParticipantsUpdate, m.s.participantsView()),
		toAll(EventCaptainsUpdate, m.s.captainsView()),
		toAll(EventGameState, m.s.gameView()),
	}, nil
}

// ChangeNickname renames the participant together with its captain mirror
// and roster entry.
func (m *Manager) ChangeNickname(connID, nickname string) ([]Effect, error) {
	p, ok := m.s.participants[connID]
	if !ok {
		return nil, ErrNotJoined
	}

	old := p.Nickname
	p.Nickname = nickname
	m.s.participants[connID] = p

	if c, ok := m.s.captains[connID]; ok {
		c.Nickname = nickname
		m.s.captains[connID] = c
	}
	if i := m.s.registrantByConn(connID); i >= 0 {
		m.s.roster[i].Nickname = nickname
	}

	return []Effect{
		toAll(EventParticipantsUpdate, m.s.participantsView()),
		toAll(EventCaptainsUpdate, m.s.captainsView()),
		toAll(EventTournamentUpdate, m.s.tournamentView()),
		toSender(connID, EventNicknameAccepted, NicknameAccepted{NewNickname: nickname}),
		toOthers(connID, EventNotice, Notice{Text: fmt.Sprintf("Player %s changed nickname to %s", old, nickname)}),
	}, nil
}

// pauseIfShortOfCaptains deactivates the game without touching the pool.
func (m *Manager) pauseIfShortOfCaptains() {
	if len(m.s.captains) < 2 {
		m.s.active = false
	}
}
