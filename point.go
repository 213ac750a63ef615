package tavla

// stack is the checker bookkeeping shared by points and bars. Checkers are
// kept in insertion order, so the bottom checker is the oldest.
type stack struct {
	space    int
	checkers []*Checker

	Open   bool // No checkers.
	Blot   bool // Exactly one checker.
	Team   Team // Team of the bottom checker, TeamNone when open.
	Active bool // Selectable by the side to move.
}

func newStack(space int) stack {
	return stack{space: space, Open: true}
}

// Len returns the number of checkers in the stack.
func (s *stack) Len() int {
	return len(s.checkers)
}

// Checkers returns the checkers in stacking order.
func (s *stack) Checkers() []*Checker {
	return s.checkers
}

func (s *stack) add(c *Checker) {
	s.checkers = append(s.checkers, c)
}

// removeTop pops the oldest checker.
func (s *stack) removeTop() (*Checker, bool) {
	if len(s.checkers) == 0 {
		return nil, false
	}
	c := s.checkers[0]
	s.checkers[0] = nil
	s.checkers = s.checkers[1:]
	return c, true
}

// recompute refreshes the derived flags and re-stacks the checkers. It must
// be called after every mutation.
func (s *stack) recompute() {
	s.Open = len(s.checkers) == 0
	s.Blot = len(s.checkers) == 1
	if s.Open {
		s.Team = TeamNone
	} else {
		s.Team = s.checkers[0].Team()
	}
	for i, c := range s.checkers {
		c.MoveTo(s.space, i)
	}
}

// Point is one of the 24 board positions.
type Point struct {
	stack

	Index     int
	Clicked   bool // Selected as the source of a move.
	ValidMove bool // Legal destination for the selected source or the bar.
}

func newPoint(index int) *Point {
	return &Point{
		stack: newStack(index),
		Index: index,
	}
}

func (p *Point) setActiveForTurn(turn Team) {
	p.Active = turn.Valid() && p.Team == turn
}

// acceptsTeam reports whether a checker of team may land here.
func (p *Point) acceptsTeam(team Team) bool {
	return p.Open || p.Blot || p.Team == team
}

// Bar holds the checkers of one team that have been hit.
type Bar struct {
	stack

	team Team
}

func newBar(team Team) *Bar {
	return &Bar{
		stack: newStack(team.rule().barSpace),
		team:  team,
	}
}

func (b *Bar) Owner() Team {
	return b.team
}

func (b *Bar) setActiveForTurn(turn Team) {
	b.Active = b.team == turn && len(b.checkers) != 0
}

// Tray holds the checkers that have been borne off, one collection per team.
type Tray struct {
	checkers [3][]*Checker
}

func (t *Tray) add(c *Checker) {
	team := c.Team()
	t.checkers[team] = append(t.checkers[team], c)
	c.MoveTo(team.rule().offSpace, len(t.checkers[team])-1)
}

// Len returns the number of checkers the team has borne off.
func (t *Tray) Len(team Team) int {
	if !team.Valid() {
		return 0
	}
	return len(t.checkers[team])
}

// Checkers returns the team's borne off checkers.
func (t *Tray) Checkers(team Team) []*Checker {
	if !team.Valid() {
		return nil
	}
	return t.checkers[team]
}
