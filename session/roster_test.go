package session

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoinTournament(t *testing.T) {
	m := newTestManager(t)

	_, err := m.JoinTournament("a", "dev-a")
	require.ErrorIs(t, err, ErrNotJoined)

	m.Join("a", "Alpha", "")
	effects, err := m.JoinTournament("a", "dev-a")
	require.NoError(t, err)

	roster := findEffect(t, effects, EventTournamentUpdate).Payload.(map[string]Registrant)
	require.Contains(t, roster, "a")
	assert.Equal(t, Registrant{ID: "a", Nickname: "Alpha", Seat: 1, DeviceToken: "dev-a", JoinedAt: epoch}, roster["a"])

	notice := findEffect(t, effects, EventNotice)
	assert.Equal(t, ScopeOthers, notice.Scope)
	assert.Equal(t, Notice{Text: "Alpha joined the tournament"}, notice.Payload)

	_, err = m.JoinTournament("a", "")
	require.ErrorIs(t, err, ErrAlreadyRegistered)
}

func TestJoinTournament_UsesJoinDeviceToken(t *testing.T) {
	m := newTestManager(t)
	m.Join("a", "Alpha", "dev-a")
	m.Join("b", "Bravo", "")

	_, err := m.JoinTournament("a", "")
	require.NoError(t, err)

	_, err = m.JoinTournament("b", "dev-a")
	require.ErrorIs(t, err, ErrDuplicateDevice)
}

func TestJoinTournament_JoinTokenHeldByAnother(t *testing.T) {
	m := newTestManager(t)
	m.Join("a", "Alpha", "shared")
	m.Join("b", "Bravo", "")

	_, err := m.JoinTournament("b", "shared")
	require.NoError(t, err)

	_, err = m.JoinTournament("a", "")
	require.NoError(t, err)

	roster := m.Snapshot().Tournament
	require.Len(t, roster, 2)
	assert.Equal(t, "shared", roster["b"].DeviceToken)
	assert.Empty(t, roster["a"].DeviceToken)
}

func TestJoinTournament_RosterFull(t *testing.T) {
	m := newTestManager(t, WithRosterCapacity(2))

	for i := 0; i < 3; i++ {
		id := fmt.Sprintf("p%d", i)
		m.Join(id, id, "")
		_, err := m.JoinTournament(id, "dev-"+id)
		if i < 2 {
			require.NoError(t, err)
			continue
		}
		require.ErrorIs(t, err, ErrRosterFull)
	}

	assert.Len(t, m.Snapshot().Tournament, 2)
}

func TestJoinTournament_DefaultCapacity(t *testing.T) {
	m := newTestManager(t, WithRosterCapacity(0))

	var err error
	for i := 0; i < DefaultRosterCapacity+1; i++ {
		id := fmt.Sprintf("p%d", i)
		m.Join(id, id, "")
		_, err = m.JoinTournament(id, "")
	}
	require.ErrorIs(t, err, ErrRosterFull)
	assert.Len(t, m.Snapshot().Tournament, DefaultRosterCapacity)
}

func TestScenario_DuplicateDeviceAndReassociation(t *testing.T) {
	m := newTestManager(t)
	m.Join("a", "Alpha", "dev-1")
	m.Join("c", "Charlie", "")

	_, err := m.JoinTournament("a", "dev-1")
	require.NoError(t, err)

	_, err = m.JoinTournament("c", "dev-1")
	require.ErrorIs(t, err, ErrDuplicateDevice)

	effects := m.Disconnect("a")
	assert.False(t, hasEffect(effects, EventTournamentUpdate))
	require.Contains(t, m.Snapshot().Tournament, "a")

	effects = m.Join("a2", "Alpha Again", "dev-1")
	role := findEffect(t, effects, EventRoleAssigned).Payload.(RoleAssigned)
	assert.True(t, role.IsInTournament)

	roster := findEffect(t, effects, EventTournamentUpdate).Payload.(map[string]Registrant)
	require.Len(t, roster, 1)
	r := roster["a2"]
	assert.Equal(t, "Alpha Again", r.Nickname)
	assert.Equal(t, "dev-1", r.DeviceToken)
	assert.Equal(t, epoch, r.JoinedAt)

	_, err = m.JoinTournament("a2", "")
	require.ErrorIs(t, err, ErrAlreadyRegistered)
}

func TestLeaveTournament(t *testing.T) {
	m := newTestManager(t)
	m.Join("a", "Alpha", "dev-a")
	m.Join("b", "Bravo", "")

	_, err := m.LeaveTournament("b", "")
	require.ErrorIs(t, err, ErrNotRegistered)

	_, err = m.JoinTournament("a", "")
	require.NoError(t, err)
	_, err = m.JoinTournament("b", "")
	require.NoError(t, err)

	effects, err := m.LeaveTournament("b", "")
	require.NoError(t, err)
	roster := findEffect(t, effects, EventTournamentUpdate).Payload.(map[string]Registrant)
	assert.NotContains(t, roster, "b")
	assert.Equal(t, Notice{Text: "Bravo left the tournament"}, findEffect(t, effects, EventNotice).Payload)

	// Leaving by device token works from a connection that never registered.
	m.Disconnect("a")
	m.Join("c", "Charlie", "")
	_, err = m.LeaveTournament("c", "dev-a")
	require.NoError(t, err)
	assert.Empty(t, m.Snapshot().Tournament)
}

func TestLeaveTournament_PrefersOwnRegistration(t *testing.T) {
	m := newTestManager(t)
	m.Join("a", "Alpha", "D")
	m.Join("b", "Bravo", "")

	_, err := m.JoinTournament("a", "T")
	require.NoError(t, err)
	_, err = m.JoinTournament("b", "D")
	require.NoError(t, err)

	effects, err := m.LeaveTournament("a", "")
	require.NoError(t, err)

	roster := findEffect(t, effects, EventTournamentUpdate).Payload.(map[string]Registrant)
	assert.NotContains(t, roster, "a")
	assert.Contains(t, roster, "b")
	assert.Equal(t, Notice{Text: "Alpha left the tournament"}, findEffect(t, effects, EventNotice).Payload)
}

func TestLeaveTournament_AfterReconnect(t *testing.T) {
	m := newTestManager(t)
	m.Join("a", "Alpha", "dev-a")
	_, err := m.JoinTournament("a", "")
	require.NoError(t, err)

	m.Disconnect("a")
	m.Join("c", "Alpha", "dev-a")

	_, err = m.LeaveTournament("c", "")
	require.NoError(t, err)
	assert.Empty(t, m.Snapshot().Tournament)
}

func TestResetGame_KeepsPeople(t *testing.T) {
	m := newTestManager(t)
	seatCaptains(t, m)
	_, err := m.JoinTournament("a", "dev-a")
	require.NoError(t, err)
	_, err = m.Eliminate("a", "bind")
	require.NoError(t, err)
	_, err = m.Eliminate("b", "haven")
	require.NoError(t, err)

	effects := m.ResetGame()
	require.Len(t, effects, 1)

	game := effects[0].Payload.(GameView)
	assert.Len(t, game.Cards, 9)
	assert.Empty(t, game.RemovedCards)
	assert.True(t, game.GameActive)
	assert.Equal(t, 1, game.CurrentPlayer)

	snap := m.Snapshot()
	assert.Len(t, snap.Participants, 2)
	assert.Len(t, snap.Captains, 2)
	assert.Len(t, snap.Tournament, 1)
}

func TestResetGame_WithoutCaptainsStaysInactive(t *testing.T) {
	m := newTestManager(t)
	m.Join("a", "Alpha", "")

	game := m.ResetGame()[0].Payload.(GameView)
	assert.False(t, game.GameActive)
}

func TestScenario_ResetAllKeepsRoster(t *testing.T) {
	m := newTestManager(t)
	seatCaptains(t, m)
	_, err := m.JoinTournament("a", "dev-a")
	require.NoError(t, err)
	_, err = m.Eliminate("a", "bind")
	require.NoError(t, err)

	effects := m.ResetAll()

	roster := findEffect(t, effects, EventTournamentUpdate).Payload.(map[string]Registrant)
	require.Contains(t, roster, "a")
	assert.Equal(t, "Alpha", roster["a"].Nickname)

	assert.Empty(t, findEffect(t, effects, EventParticipantsUpdate).Payload)
	assert.Empty(t, findEffect(t, effects, EventCaptainsUpdate).Payload)

	game := findEffect(t, effects, EventGameState).Payload.(GameView)
	assert.False(t, game.GameActive)
	assert.Len(t, game.Cards, 9)

	// Seats start over after a session reset.
	role := findEffect(t, m.Join("b", "Bravo", ""), EventRoleAssigned).Payload.(RoleAssigned)
	assert.Equal(t, 1, role.PlayerNumber)
}

func TestResetTournament_ClearsEverything(t *testing.T) {
	m := newTestManager(t)
	seatCaptains(t, m)
	_, err := m.JoinTournament("a", "dev-a")
	require.NoError(t, err)

	effects := m.ResetTournament()
	assert.Empty(t, findEffect(t, effects, EventTournamentUpdate).Payload)

	snap := m.Snapshot()
	assert.Empty(t, snap.Participants)
	assert.Empty(t, snap.Captains)
	assert.Empty(t, snap.Tournament)
	assert.False(t, snap.Game.GameActive)

	m.Join("z", "Zulu", "dev-a")
	_, err = m.JoinTournament("z", "")
	require.NoError(t, err)
}

type recorder struct {
	calls []string
}

func (r *recorder) SendTo(connID, event string, _ any) {
	r.calls = append(r.calls, "to:"+connID+":"+event)
}

func (r *recorder) BroadcastAll(event string, _ any) {
	r.calls = append(r.calls, "all:"+event)
}

func (r *recorder) BroadcastExcept(connID, event string, _ any) {
	r.calls = append(r.calls, "except:"+connID+":"+event)
}

func TestDeliver_RoutesByScope(t *testing.T) {
	m := newTestManager(t)
	m.Join("a", "Alpha", "")

	effects, err := m.ChangeNickname("a", "Ace")
	require.NoError(t, err)

	rec := &recorder{}
	Deliver(rec, effects)

	assert.Equal(t, []string{
		"all:" + EventParticipantsUpdate,
		"all:" + EventCaptainsUpdate,
		"all:" + EventTournamentUpdate,
		"to:a:" + EventNicknameAccepted,
		"except:a:" + EventNotice,
	}, rec.calls)
}

func TestScope_String(t *testing.T) {
	assert.Equal(t, "sender", ScopeSender.String())
	assert.Equal(t, "others", ScopeOthers.String())
	assert.Equal(t, "all", ScopeAll.String())
	assert.Equal(t, "unknown", Scope(9).String())
}
