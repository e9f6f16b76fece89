package session

// Scope says who receives an Effect.
type Scope int

const (
	// ScopeSender delivers only to Target.
	ScopeSender Scope = iota
	// ScopeOthers delivers to every connection except Target.
	ScopeOthers
	// ScopeAll delivers to every connection.
	ScopeAll
)

func (s Scope) String() string {
	switch s {
	case ScopeSender:
		return "sender"
	case ScopeOthers:
		return "others"
	case ScopeAll:
		return "all"
	default:
		return "unknown"
	}
}

// Outbound event names.
const (
	EventGameState          = "gameState"
	EventParticipantsUpdate = "participantsUpdate"
	EventCaptainsUpdate     = "captainsUpdate"
	EventTournamentUpdate   = "tournamentUpdate"
	EventRoleAssigned       = "roleAssigned"
	EventNicknameAccepted   = "nicknameAccepted"
	EventNotice             = "notice"
	EventRejected           = "rejected"
)

// Effect is one broadcast instruction produced by a transition.
type Effect struct {
	Scope   Scope
	Target  string
	Event   string
	Payload any
}

type RoleAssigned struct {
	PlayerNumber   int  `json:"playerNumber"`
	IsCaptain      bool `json:"isCaptain"`
	IsInTournament bool `json:"isInTournament"`
}

type NicknameAccepted struct {
	NewNickname string `json:"newNickname"`
}

type Notice struct {
	Text string `json:"text"`
}

type Rejected struct {
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

// Broadcaster is the push channel a transition's effects are delivered over.
type Broadcaster interface {
	SendTo(connID, event string, payload any)
	BroadcastAll(event string, payload any)
	BroadcastExcept(connID, event string, payload any)
}

// Deliver hands effects to b in order.
func Deliver(b Broadcaster, effects []Effect) {
	for _, e := range effects {
		switch e.Scope {
		case ScopeSender:
			b.SendTo(e.Target, e.Event, e.Payload)
		case ScopeOthers:
			b.BroadcastExcept(e.Target, e.Event, e.Payload)
		case ScopeAll:
			b.BroadcastAll(e.Event, e.Payload)
		}
	}
}

func toSender(connID, event string, payload any) Effect {
	return Effect{Scope: ScopeSender, Target: connID, Event: event, Payload: payload}
}

func toOthers(connID, event string, payload any) Effect {
	return Effect{Scope: ScopeOthers, Target: connID, Event: event, Payload: payload}
}

func toAll(event string, payload any) Effect {
	return Effect{Scope: ScopeAll, Event: event, Payload: payload}
}

func reject(connID string, err error) Effect {
	return toSender(connID, EventRejected, Rejected{Reason: Code(err), Message: err.Error()})
}
