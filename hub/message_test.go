package hub

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huujin/valorant-card/session"
)

func TestDecodeIntent(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want session.Intent
	}{
		{"join", `{"type":"join","nickname":"  Sova ","deviceToken":"dev-1"}`, session.Join{Nickname: "Sova", DeviceToken: "dev-1"}},
		{"join alias", `{"type":"joinGame","nickname":"Sova"}`, session.Join{Nickname: "Sova"}},
		{"become captain", `{"type":"becomeCaptain"}`, session.BecomeCaptain{}},
		{"leave captain", `{"type":"leaveCaptain"}`, session.LeaveCaptain{}},
		{"change nickname", `{"type":"changeNickname","newNickname":"Jett"}`, session.ChangeNickname{Nickname: "Jett"}},
		{"eliminate", `{"type":"eliminate","itemId":"bind"}`, session.Eliminate{ItemID: "bind"}},
		{"remove card alias", `{"type":"removeCard","itemId":"bind"}`, session.Eliminate{ItemID: "bind"}},
		{"join tournament", `{"type":"joinTournament","deviceToken":"dev-1"}`, session.JoinTournament{DeviceToken: "dev-1"}},
		{"leave tournament", `{"type":"leaveTournament"}`, session.LeaveTournament{}},
		{"reset game", `{"type":"resetGame"}`, session.ResetGame{}},
		{"reset all", `{"type":"resetAll"}`, session.ResetAll{}},
		{"reset tournament", `{"type":"resetTournament"}`, session.ResetTournament{}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := decodeIntent([]byte(tc.in))
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDecodeIntent_Malformed(t *testing.T) {
	cases := []struct {
		name string
		in   string
	}{
		{"bad json", `{"type":`},
		{"missing type", `{}`},
		{"unknown type", `{"type":"dance"}`},
		{"empty nickname", `{"type":"join","nickname":"   "}`},
		{"long nickname", `{"type":"join","nickname":"` + strings.Repeat("x", maxNicknameLength+1) + `"}`},
		{"empty new nickname", `{"type":"changeNickname"}`},
		{"missing item", `{"type":"eliminate"}`},
		{"long device token", `{"type":"joinTournament","deviceToken":"` + strings.Repeat("d", maxDeviceTokenLength+1) + `"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := decodeIntent([]byte(tc.in))
			require.ErrorIs(t, err, session.ErrMalformedIntent)
			assert.Equal(t, "MalformedIntent", session.Code(err))
		})
	}
}

func TestDecodeIntent_NicknameCountsRunes(t *testing.T) {
	name := strings.Repeat("é", maxNicknameLength)
	got, err := decodeIntent([]byte(`{"type":"join","nickname":"` + name + `"}`))
	require.NoError(t, err)
	assert.Equal(t, session.Join{Nickname: name}, got)
}
