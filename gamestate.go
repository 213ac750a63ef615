package tavla

import "fmt"

// GameState is a snapshot of a board that may be sent to clients.
type GameState struct {
	Board     [BoardSpaces]int // Positive values represent red checkers, negative values represent white checkers.
	Turn      Team
	Phase     string
	Roll1     int
	Roll2     int
	Dice      []int // Unused die values.
	Selected  int   // Selected source point, or -1.
	Available []int // Points marked as legal destinations.
	Winner    Team
}

// State returns a snapshot of the board.
func (b *Board) State() *GameState {
	g := &GameState{
		Turn:      b.Turn,
		Phase:     b.Phase().String(),
		Selected:  b.selected,
		Available: b.Marked(),
		Winner:    b.Winner,
	}
	if b.rolled {
		g.Roll1, g.Roll2 = b.Dice.Roll1, b.Dice.Roll2
		g.Dice = b.Dice.Values()
	}
	for _, p := range b.Points {
		g.Board[p.Index] = signedCount(p.Team, p.Len())
	}
	g.Board[SpaceBarRed] = b.Bars[TeamRed].Len()
	g.Board[SpaceBarWhite] = -b.Bars[TeamWhite].Len()
	g.Board[SpaceOffRed] = b.Off.Len(TeamRed)
	g.Board[SpaceOffWhite] = -b.Off.Len(TeamWhite)
	return g
}

func signedCount(team Team, count int) int {
	if team == TeamWhite {
		return -count
	}
	return count
}

// Checkers returns the number of checkers the team has in the snapshot,
// including those on the bar and those borne off.
func (g *GameState) Checkers(team Team) int {
	var n int
	for _, v := range g.Board {
		switch {
		case team == TeamRed && v > 0:
			n += v
		case team == TeamWhite && v < 0:
			n -= v
		}
	}
	return n
}

// MayRoll reports whether the given team may roll the dice.
func (g *GameState) MayRoll(team Team) bool {
	return g.Winner == TeamNone && g.Turn == team && g.Phase == PhaseAwaitingRoll.String()
}

// NewBoardFromState returns a board holding the checkers of a snapshot with
// its turn and winner. The side to move has not rolled yet.
func NewBoardFromState(roll Roller, state *GameState) (*Board, error) {
	for _, team := range []Team{TeamRed, TeamWhite} {
		if n := state.Checkers(team); n != CheckersPerTeam {
			return nil, fmt.Errorf("%s has %d checkers, expected %d", team, n, CheckersPerTeam)
		}
	}
	if !state.Turn.Valid() {
		return nil, fmt.Errorf("invalid turn %s", state.Turn)
	} else if state.Board[SpaceBarRed] < 0 || state.Board[SpaceOffRed] < 0 || state.Board[SpaceBarWhite] > 0 || state.Board[SpaceOffWhite] > 0 {
		return nil, fmt.Errorf("checkers on the bar or borne off belong to the wrong team")
	}

	b := NewBoard(roll)
	b.Turn = state.Turn
	b.Winner = state.Winner
	for _, p := range b.Points {
		p.checkers = nil
	}
	for space, v := range state.Board {
		team, n := TeamRed, v
		if v < 0 {
			team, n = TeamWhite, -v
		}
		for i := 0; i < n; i++ {
			c := newChecker(team)
			switch space {
			case SpaceBarRed, SpaceBarWhite:
				b.Bars[team].add(c)
			case SpaceOffRed, SpaceOffWhite:
				b.Off.add(c)
			default:
				b.Points[space].add(c)
			}
		}
	}

	active := b.Turn
	if b.Winner != TeamNone {
		active = TeamNone
	}
	for _, p := range b.Points {
		p.recompute()
		p.setActiveForTurn(active)
	}
	for _, bar := range b.bars() {
		bar.recompute()
		bar.setActiveForTurn(active)
	}
	return b, nil
}
