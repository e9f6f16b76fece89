package session

import (
	"time"

	"github.com/huujin/valorant-card/catalog"
)

// Participant is a joined connection.
type Participant struct {
	ID          string `json:"id"`
	Nickname    string `json:"nickname"`
	Seat        int    `json:"playerNumber"`
	IsCaptain   bool   `json:"isCaptain"`
	DeviceToken string `json:"-"`
}

// Captain mirrors a Participant that holds elimination rights.
type Captain struct {
	ID       string `json:"id"`
	Nickname string `json:"nickname"`
	Seat     int    `json:"playerNumber"`
}

type RemovedItem struct {
	catalog.Item
	RemovedBy int `json:"removedBy"`
}

// Registrant is a tournament roster entry. It outlives the connection that
// created it; ID and Seat are the last known values.
type Registrant struct {
	ID          string    `json:"id"`
	Nickname    string    `json:"nickname"`
	Seat        int       `json:"playerNumber"`
	DeviceToken string    `json:"-"`
	JoinedAt    time.Time `json:"joinedAt"`
}

// state is the single aggregate owned by a Manager.
type state struct {
	pool      []catalog.Item
	removed   []RemovedItem
	turn      int
	active    bool
	lastCard  bool
	exhausted bool

	participants map[string]Participant
	captains     map[string]Captain
	roster       []Registrant // join order
}

// GameView is the gameState payload.
type GameView struct {
	CurrentPlayer int            `json:"currentPlayer"`
	Cards         []catalog.Item `json:"cards"`
	RemovedCards  []RemovedItem  `json:"removedCards"`
	GameActive    bool           `json:"gameActive"`
	LastCard      bool           `json:"lastCard"`
	Exhausted     bool           `json:"exhausted"`
	Winner        *catalog.Item  `json:"winner,omitempty"`
}

// Snapshot is a detached copy of the whole session.
type Snapshot struct {
	Game         GameView               `json:"game"`
	Participants map[string]Participant `json:"participants"`
	Captains     map[string]Captain     `json:"captains"`
	Tournament   map[string]Registrant  `json:"tournament"`
}

func (s *state) gameView() GameView {
	v := GameView{
		CurrentPlayer: s.turn,
		Cards:         append([]catalog.Item{}, s.pool...),
		RemovedCards:  append([]RemovedItem{}, s.removed...),
		GameActive:    s.active,
		LastCard:      s.lastCard,
		Exhausted:     s.exhausted,
	}
	if s.lastCard && len(s.pool) == 1 {
		winner := s.pool[0]
		v.Winner = &winner
	}
	return v
}

func (s *state) participantsView() map[string]Participant {
	out := make(map[string]Participant, len(s.participants))
	for id, p := range s.participants {
		out[id] = p
	}
	return out
}

func (s *state) captainsView() map[string]Captain {
	out := make(map[string]Captain, len(s.captains))
	for id, c := range s.captains {
		out[id] = c
	}
	return out
}

// tournamentView keys registrants by their last known connection id.
func (s *state) tournamentView() map[string]Registrant {
	out := make(map[string]Registrant, len(s.roster))
	for _, r := range s.roster {
		out[r.ID] = r
	}
	return out
}

func (s *state) registrantByDevice(token string) int {
	if token == "" {
		return -1
	}
	for i, r := range s.roster {
		if r.DeviceToken == token {
			return i
		}
	}
	return -1
}

func (s *state) registrantByConn(connID string) int {
	for i, r := range s.roster {
		if r.ID == connID {
			return i
		}
	}
	return -1
}

// lowestFreeSeat scans 1..N+1 and returns the first seat no active
// participant holds.
func (s *state) lowestFreeSeat() int {
	taken := make(map[int]bool, len(s.participants))
	for _, p := range s.participants {
		taken[p.Seat] = true
	}
	for seat := 1; seat <= len(s.participants)+1; seat++ {
		if !taken[seat] {
			return seat
		}
	}
	return len(s.participants) + 1
}

// firstCaptainSeat returns the lowest captain seat, or 1 without captains.
func (s *state) firstCaptainSeat() int {
	seat := 0
	for _, c := range s.captains {
		if seat == 0 || c.Seat < seat {
			seat = c.Seat
		}
	}
	if seat == 0 {
		return 1
	}
	return seat
}

func (s *state) otherCaptainSeat(seat int) int {
	for _, c := range s.captains {
		if c.Seat != seat {
			return c.Seat
		}
	}
	return seat
}

func (s *state) resetPool(items []catalog.Item) {
	s.pool = items
	s.removed = []RemovedItem{}
	s.lastCard = false
	s.exhausted = false
}
