package hub

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/huujin/valorant-card/session"
)

const (
	maxNicknameLength    = 32
	maxDeviceTokenLength = 128
)

// ClientMessage is an inbound frame.
type ClientMessage struct {
	Type        string `json:"type"`                  // "join", "becomeCaptain", "eliminate", ...
	Nickname    string `json:"nickname,omitempty"`    // join
	DeviceToken string `json:"deviceToken,omitempty"` // join / joinTournament / leaveTournament
	NewNickname string `json:"newNickname,omitempty"` // changeNickname
	ItemID      string `json:"itemId,omitempty"`      // eliminate
}

// ServerMessage is an outbound frame.
type ServerMessage struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{session.ErrMalformedIntent}, args...)...)
}

func cleanNickname(name string) (string, error) {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		return "", malformed("nickname is required")
	case !utf8.ValidString(name):
		return "", malformed("nickname is not valid UTF-8")
	case utf8.RuneCountInString(name) > maxNicknameLength:
		return "", malformed("nickname is longer than %d characters", maxNicknameLength)
	}
	return name, nil
}

func cleanDeviceToken(token string) (string, error) {
	token = strings.TrimSpace(token)
	if len(token) > maxDeviceTokenLength {
		return "", malformed("device token is longer than %d bytes", maxDeviceTokenLength)
	}
	return token, nil
}

// decodeIntent parses and validates a frame before it reaches the session.
func decodeIntent(data []byte) (session.Intent, error) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, malformed("bad json")
	}

	token, err := cleanDeviceToken(msg.DeviceToken)
	if err != nil {
		return nil, err
	}

	switch msg.Type {
	case "join", "joinGame":
		name, err := cleanNickname(msg.Nickname)
		if err != nil {
			return nil, err
		}
		return session.Join{Nickname: name, DeviceToken: token}, nil

	case "becomeCaptain":
		return session.BecomeCaptain{}, nil

	case "leaveCaptain":
		return session.LeaveCaptain{}, nil

	case "changeNickname":
		name, err := cleanNickname(msg.NewNickname)
		if err != nil {
			return nil, err
		}
		return session.ChangeNickname{Nickname: name}, nil

	case "eliminate", "removeCard":
		if msg.ItemID == "" {
			return nil, malformed("itemId is required")
		}
		return session.Eliminate{ItemID: msg.ItemID}, nil

	case "joinTournament":
		return session.JoinTournament{DeviceToken: token}, nil

	case "leaveTournament":
		return session.LeaveTournament{DeviceToken: token}, nil

	case "resetGame":
		return session.ResetGame{}, nil

	case "resetAll":
		return session.ResetAll{}, nil

	case "resetTournament":
		return session.ResetTournament{}, nil

	case "":
		return nil, malformed("type is required")

	default:
		return nil, malformed("unknown type %q", msg.Type)
	}
}
