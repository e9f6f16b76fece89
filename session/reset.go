package session

// ResetGame refills the pool and keeps everyone in place. Play resumes
// immediately when two captains are seated.
func (m *Manager) ResetGame() []Effect {
	m.s.resetPool(m.catalog.Items())
	m.s.turn = m.s.firstCaptainSeat()
	m.s.active = len(m.s.captains) >= 2

	return []Effect{toAll(EventGameState, m.s.gameView())}
}

// ResetAll refills the pool and clears participants and captains. The
// tournament roster is kept.
func (m *Manager) ResetAll() []Effect {
	m.clearSession()
	return m.resetEffects("The session was reset. Join again to continue.")
}

// ResetTournament clears everything, roster included.
func (m *Manager) ResetTournament() []Effect {
	m.clearSession()
	m.s.roster = nil
	return m.resetEffects("The session and tournament roster were reset.")
}

func (m *Manager) clearSession() {
	m.s.resetPool(m.catalog.Items())
	m.s.participants = make(map[string]Participant)
	m.s.captains = make(map[string]Captain)
	m.s.turn = 1
	m.s.active = false
}

func (m *Manager) resetEffects(text string) []Effect {
	return []Effect{
		toAll(EventGameState, m.s.gameView()),
		toAll(EventParticipantsUpdate, m.s.participantsView()),
		toAll(EventCaptainsUpdate, m.s.captainsView()),
		toAll(EventTournamentUpdate, m.s.tournamentView()),
		toAll(EventNotice, Notice{Text: text}),
	}
}
