package tavla

// Position is where a checker is displayed: the space it sits on and its
// height within that space's stack (0 is the bottom).
type Position struct {
	Space  int
	Height int
}

// Checker is a single playing piece. Its team never changes.
type Checker struct {
	team     Team
	Position Position
}

func newChecker(team Team) *Checker {
	return &Checker{team: team}
}

func (c *Checker) Team() Team {
	return c.team
}

// MoveTo sets the display position of the checker.
func (c *Checker) MoveTo(space int, height int) {
	c.Position = Position{Space: space, Height: height}
}
