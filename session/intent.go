package session

// Intent is a validated client request. Payload checks (nickname length,
// required ids) happen before an Intent is built.
type Intent interface{ isIntent() }

type Join struct {
	Nickname    string
	DeviceToken string
}

type BecomeCaptain struct{}

type LeaveCaptain struct{}

type ChangeNickname struct {
	Nickname string
}

type Eliminate struct {
	ItemID string
}

type JoinTournament struct {
	DeviceToken string
}

type LeaveTournament struct {
	DeviceToken string
}

type ResetGame struct{}

type ResetAll struct{}

type ResetTournament struct{}

func (Join) isIntent()            {}
func (BecomeCaptain) isIntent()   {}
func (LeaveCaptain) isIntent()    {}
func (ChangeNickname) isIntent()  {}
func (Eliminate) isIntent()       {}
func (JoinTournament) isIntent()  {}
func (LeaveTournament) isIntent() {}
func (ResetGame) isIntent()       {}
func (ResetAll) isIntent()        {}
func (ResetTournament) isIntent() {}
