package session

import "errors"

// Rejections. None of them are fatal and none of them change state.
var (
	ErrNotJoined           = errors.New("join the game first")
	ErrAlreadyCaptain      = errors.New("you are already a captain")
	ErrNotACaptain         = errors.New("you are not a captain")
	ErrCaptainLimitReached = errors.New("captain limit reached (2)")
	ErrNotCaptain          = errors.New("only captains can remove cards")
	ErrNotYourTurn         = errors.New("it is not your turn")
	ErrItemAlreadyRemoved  = errors.New("card already removed")
	ErrDuplicateDevice     = errors.New("this device is already registered for the tournament")
	ErrAlreadyRegistered   = errors.New("you are already registered for the tournament")
	ErrRosterFull          = errors.New("tournament roster is full")
	ErrNotRegistered       = errors.New("you are not registered for the tournament")
	ErrMalformedIntent     = errors.New("malformed request")
)

var codes = []struct {
	err  error
	code string
}{
	{ErrNotJoined, "NotJoined"},
	{ErrAlreadyCaptain, "AlreadyCaptain"},
	{ErrNotACaptain, "NotACaptain"},
	{ErrCaptainLimitReached, "CaptainLimitReached"},
	{ErrNotCaptain, "NotCaptain"},
	{ErrNotYourTurn, "NotYourTurn"},
	{ErrItemAlreadyRemoved, "ItemAlreadyRemoved"},
	{ErrDuplicateDevice, "DuplicateDevice"},
	{ErrAlreadyRegistered, "AlreadyRegistered"},
	{ErrRosterFull, "RosterFull"},
	{ErrNotRegistered, "NotRegistered"},
	{ErrMalformedIntent, "MalformedIntent"},
}

// Code returns the wire reason code for err, or "Internal" for anything
// outside the rejection set.
func Code(err error) string {
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return "Internal"
}
