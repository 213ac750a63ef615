package tavla

import "fmt"

// Team identifies one side of the board.
type Team int8

const (
	TeamNone Team = iota
	TeamRed
	TeamWhite
)

var teamNames = [...]string{
	TeamNone:  "none",
	TeamRed:   "red",
	TeamWhite: "white",
}

func (t Team) String() string {
	if t < 0 || int(t) >= len(teamNames) {
		return "unknown"
	}
	return teamNames[t]
}

// Opponent returns the other team. TeamNone has no opponent.
func (t Team) Opponent() Team {
	switch t {
	case TeamRed:
		return TeamWhite
	case TeamWhite:
		return TeamRed
	default:
		return TeamNone
	}
}

// Valid reports whether t is one of the two playing teams.
func (t Team) Valid() bool {
	return t == TeamRed || t == TeamWhite
}

// ParseTeam returns the team with the given name.
func ParseTeam(name string) (Team, bool) {
	switch name {
	case "red", "x", "1":
		return TeamRed, true
	case "white", "o", "2":
		return TeamWhite, true
	}
	return TeamNone, false
}

// teamRule holds everything that differs between the two sides.
type teamRule struct {
	direction int
	homeStart int
	homeEnd   int
	barSpace  int
	offSpace  int
}

var teamRules = [...]teamRule{
	TeamRed: {
		direction: 1,
		homeStart: 18,
		homeEnd:   23,
		barSpace:  SpaceBarRed,
		offSpace:  SpaceOffRed,
	},
	TeamWhite: {
		direction: -1,
		homeStart: 0,
		homeEnd:   5,
		barSpace:  SpaceBarWhite,
		offSpace:  SpaceOffWhite,
	},
}

func (t Team) rule() teamRule {
	if !t.Valid() {
		return teamRule{}
	}
	return teamRules[t]
}

// Direction returns +1 for the team moving towards point 23 and -1 for the
// team moving towards point 0.
func (t Team) Direction() int {
	return t.rule().direction
}

// HomeRange returns the first and last point of the team's home region.
func HomeRange(t Team) (from int, to int) {
	r := t.rule()
	return r.homeStart, r.homeEnd
}

// InHome reports whether point lies in the team's home region.
func (t Team) InHome(point int) bool {
	from, to := HomeRange(t)
	return t.Valid() && point >= from && point <= to
}

// EntryPoint returns the point a checker on the bar enters with the given
// die value.
func (t Team) EntryPoint(value int) int {
	switch t {
	case TeamRed:
		return value - 1
	case TeamWhite:
		return BoardPoints - value
	}
	return -1
}

// EntryDistance returns the die value needed to enter from the bar onto point.
func (t Team) EntryDistance(point int) int {
	switch t {
	case TeamRed:
		return point + 1
	case TeamWhite:
		return BoardPoints - point
	}
	return 0
}

// BearOffDistance returns the smallest die value that carries a checker on
// point past the team's board edge.
func (t Team) BearOffDistance(point int) int {
	switch t {
	case TeamRed:
		return BoardPoints - point
	case TeamWhite:
		return point + 1
	}
	return 0
}

func (t Team) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *Team) UnmarshalText(text []byte) error {
	if string(text) == "none" {
		*t = TeamNone
		return nil
	}
	team, ok := ParseTeam(string(text))
	if !ok {
		return fmt.Errorf("unknown team %q", text)
	}
	*t = team
	return nil
}
