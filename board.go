package tavla

// Points are numbered 0-23. Red enters at 0 and bears off past 23, white
// enters at 23 and bears off past 0. The bars and the off-board tray are
// addressed with the space numbers following the points.
const (
	SpaceBarRed   = 24
	SpaceBarWhite = 25
	SpaceOffRed   = 26
	SpaceOffWhite = 27
)

const (
	BoardPoints     = 24
	BoardSpaces     = 28
	CheckersPerTeam = 15
)

// Phase is the stage of the current turn.
type Phase int8

const (
	PhaseAwaitingRoll Phase = iota
	PhaseAwaitingSelection
	PhaseAwaitingDestination
	PhaseAwaitingBarDestination
	PhaseWon
)

var phaseNames = [...]string{
	PhaseAwaitingRoll:           "roll",
	PhaseAwaitingSelection:      "select",
	PhaseAwaitingDestination:    "destination",
	PhaseAwaitingBarDestination: "enter",
	PhaseWon:                    "won",
}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return "unknown"
	}
	return phaseNames[p]
}

// startingPosition lists how many checkers each team has on a point when a
// game begins.
var startingPosition = []struct {
	team  Team
	point int
	count int
}{
	{TeamRed, 0, 2},
	{TeamRed, 11, 5},
	{TeamRed, 16, 3},
	{TeamRed, 18, 5},
	{TeamWhite, 23, 2},
	{TeamWhite, 12, 5},
	{TeamWhite, 7, 3},
	{TeamWhite, 5, 5},
}

// Board is a single game session. A finished game is discarded and a new
// Board is created to play again.
type Board struct {
	Points [BoardPoints]*Point
	Bars   [3]*Bar // Indexed by Team.
	Off    *Tray
	Dice   *Dice
	Turn   Team
	Winner Team

	// AutoPass ends the turn as soon as the side to move has no legal move
	// left. When false the side to move must pass manually.
	AutoPass bool

	rolled   bool // The side to move has rolled this turn.
	selected int
	marked   []int
}

// NewBoard returns a board in the starting position with red to move.
func NewBoard(roll Roller) *Board {
	b := &Board{
		Off:      &Tray{},
		Dice:     NewDice(roll),
		Turn:     TeamRed,
		selected: -1,
	}
	for i := range b.Points {
		b.Points[i] = newPoint(i)
	}
	b.Bars[TeamRed] = newBar(TeamRed)
	b.Bars[TeamWhite] = newBar(TeamWhite)

	for _, p := range startingPosition {
		for i := 0; i < p.count; i++ {
			b.Points[p.point].add(newChecker(p.team))
		}
	}
	for _, p := range b.Points {
		p.recompute()
		p.setActiveForTurn(b.Turn)
	}
	for _, bar := range b.bars() {
		bar.recompute()
		bar.setActiveForTurn(b.Turn)
	}
	return b
}

func (b *Board) bars() []*Bar {
	return []*Bar{b.Bars[TeamRed], b.Bars[TeamWhite]}
}

// Bar returns the bar of the given team.
func (b *Board) Bar(team Team) *Bar {
	if !team.Valid() {
		return nil
	}
	return b.Bars[team]
}

func (b *Board) currentBar() *Bar {
	return b.Bars[b.Turn]
}

// Phase returns the stage of the current turn.
func (b *Board) Phase() Phase {
	switch {
	case b.Winner != TeamNone:
		return PhaseWon
	case !b.rolled:
		return PhaseAwaitingRoll
	case b.currentBar().Len() != 0:
		return PhaseAwaitingBarDestination
	case b.selected >= 0:
		return PhaseAwaitingDestination
	default:
		return PhaseAwaitingSelection
	}
}

// Selected returns the point chosen as the source of the next move.
func (b *Board) Selected() (int, bool) {
	return b.selected, b.selected >= 0
}

// Marked returns the points currently highlighted as legal destinations.
func (b *Board) Marked() []int {
	m := make([]int, len(b.marked))
	copy(m, b.marked)
	return m
}

// OnBoard returns the number of checkers the team has on points and its bar.
func (b *Board) OnBoard(team Team) int {
	if !team.Valid() {
		return 0
	}
	n := b.Bars[team].Len()
	for _, p := range b.Points {
		if p.Team == team {
			n += p.Len()
		}
	}
	return n
}

// Count returns the number of checkers the team owns anywhere, including
// those borne off.
func (b *Board) Count(team Team) int {
	return b.OnBoard(team) + b.Off.Len(team)
}

// Home reports whether every checker the team has left in play is inside
// its home region.
func (b *Board) Home(team Team) bool {
	if !team.Valid() || b.Bars[team].Len() != 0 {
		return false
	}
	for _, p := range b.Points {
		if p.Team == team && !team.InHome(p.Index) {
			return false
		}
	}
	return true
}

// Pips returns the total distance the team's checkers must travel to bear
// off.
func (b *Board) Pips(team Team) int {
	if !team.Valid() {
		return 0
	}
	var pips int
	for _, p := range b.Points {
		if p.Team == team {
			pips += p.Len() * team.BearOffDistance(p.Index)
		}
	}
	return pips + b.Bars[team].Len()*(BoardPoints+1)
}

func validPoint(point int) bool {
	return point >= 0 && point < BoardPoints
}
