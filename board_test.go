package tavla

import (
	"testing"
)

// newTestBoard returns a board holding only the checkers in layout. Keys are
// points or bar spaces, positive values are red checkers and negative values
// are white checkers. Every checker not placed is borne off, so each team
// still owns 15 checkers.
func newTestBoard(roll Roller, layout map[int]int) *Board {
	b := NewBoard(roll)
	for _, p := range b.Points {
		p.checkers = nil
	}
	placed := make(map[Team]int)
	for space, n := range layout {
		team := TeamRed
		if n < 0 {
			team = TeamWhite
			n = -n
		}
		switch space {
		case SpaceBarRed:
			team = TeamRed
		case SpaceBarWhite:
			team = TeamWhite
		}
		for i := 0; i < n; i++ {
			switch space {
			case SpaceBarRed:
				b.Bars[TeamRed].add(newChecker(TeamRed))
			case SpaceBarWhite:
				b.Bars[TeamWhite].add(newChecker(TeamWhite))
			default:
				b.Points[space].add(newChecker(team))
			}
		}
		placed[team] += n
	}
	for _, team := range []Team{TeamRed, TeamWhite} {
		for i := placed[team]; i < CheckersPerTeam; i++ {
			b.Off.add(newChecker(team))
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

func hasChange(changes []Change, t ChangeType) bool {
	for _, c := range changes {
		if c.Type == t {
			return true
		}
	}
	return false
}

func checkConservation(t *testing.T, b *Board) {
	t.Helper()

	seen := make(map[*Checker]int)
	count := func(space int, checkers []*Checker) {
		for height, c := range checkers {
			seen[c]++
			if c.Position.Space != space || c.Position.Height != height {
				t.Fatalf("checker displayed at %+v, expected space %d height %d", c.Position, space, height)
			}
		}
	}
	for _, p := range b.Points {
		count(p.Index, p.Checkers())
		for _, c := range p.Checkers() {
			if c.Team() != p.Team {
				t.Fatalf("point %d holds checkers of more than one team", p.Index)
			}
		}
	}
	for _, team := range []Team{TeamRed, TeamWhite} {
		count(b.Bars[team].space, b.Bars[team].Checkers())
		count(team.rule().offSpace, b.Off.Checkers(team))
		if got := b.Count(team); got != CheckersPerTeam {
			t.Fatalf("%s has %d checkers, expected %d", team, got, CheckersPerTeam)
		}
	}
	if len(seen) != 2*CheckersPerTeam {
		t.Fatalf("found %d checkers, expected %d", len(seen), 2*CheckersPerTeam)
	}
	for c, n := range seen {
		if n != 1 {
			t.Fatalf("%s checker owned by %d containers", c.Team(), n)
		}
	}
}

func TestNewBoard(t *testing.T) {
	b := NewBoard(FixedRoller(3, 1))
	if b.Turn != TeamRed {
		t.Errorf("expected red to move first, got %s", b.Turn)
	}
	if b.Phase() != PhaseAwaitingRoll {
		t.Errorf("expected phase %s, got %s", PhaseAwaitingRoll, b.Phase())
	}
	expected := map[int]int{0: 2, 11: 5, 16: 3, 18: 5, 23: -2, 12: -5, 7: -3, 5: -5}
	for _, p := range b.Points {
		want := expected[p.Index]
		got := signedCount(p.Team, p.Len())
		if got != want {
			t.Errorf("point %d holds %d, expected %d", p.Index, got, want)
		}
		if p.Active != (p.Team == TeamRed) {
			t.Errorf("point %d active=%v", p.Index, p.Active)
		}
	}
	checkConservation(t, b)
}

func TestSelectMarksDestinations(t *testing.T) {
	b := NewBoard(FixedRoller(3, 1))
	if b.SelectSource(0) != nil {
		t.Fatal("selected a point before rolling")
	}
	if b.RollDice() == nil {
		t.Fatal("failed to roll")
	}

	changes := b.SelectSource(0)
	if !hasChange(changes, ChangeSelected) {
		t.Fatalf("failed to select point 0: %+v", changes)
	}
	if !b.Points[0].Clicked {
		t.Error("point 0 is not clicked")
	}
	for _, point := range []int{1, 3} {
		if !b.Points[point].ValidMove {
			t.Errorf("point %d is not marked", point)
		}
	}
	if b.Phase() != PhaseAwaitingDestination {
		t.Errorf("expected phase %s, got %s", PhaseAwaitingDestination, b.Phase())
	}
	if b.SelectSource(11) != nil {
		t.Error("selected a second source")
	}

	if b.DeselectSource() == nil {
		t.Fatal("failed to deselect")
	}
	for _, p := range b.Points {
		if p.ValidMove || p.Clicked {
			t.Errorf("point %d still marked after deselect", p.Index)
		}
	}
	if len(b.Marked()) != 0 {
		t.Errorf("marked points remain: %v", b.Marked())
	}
}

func TestSelectSkipsBlockedPoints(t *testing.T) {
	b := newTestBoard(FixedRoller(5, 2), map[int]int{0: 2, 5: -2, 2: -1})
	b.RollDice()
	b.SelectSource(0)
	if b.Points[5].ValidMove {
		t.Error("point held by two opposing checkers was marked")
	}
	if !b.Points[2].ValidMove {
		t.Error("opposing blot was not marked")
	}
}

func TestSelectRefusals(t *testing.T) {
	b := NewBoard(FixedRoller(3, 1))
	b.RollDice()
	for _, point := range []int{-1, 24, 23, 4} {
		if b.SelectSource(point) != nil {
			t.Errorf("selected point %d", point)
		}
	}
}

func TestWhiteMovesDownward(t *testing.T) {
	b := NewBoard(FixedRoller(3, 1, 2, 1))
	b.RollDice()
	b.Pass()
	if b.Turn != TeamWhite {
		t.Fatalf("expected white to move, got %s", b.Turn)
	}
	b.RollDice()
	b.SelectSource(23)
	for _, point := range []int{22, 21} {
		if !b.Points[point].ValidMove {
			t.Errorf("point %d is not marked", point)
		}
	}
	changes := b.ApplyMove(23, 21)
	if !hasChange(changes, ChangeMoved) {
		t.Fatalf("failed to move: %+v", changes)
	}
	if got := b.Dice.Values(); len(got) != 1 || got[0] != 1 {
		t.Errorf("expected remaining values [1], got %v", got)
	}
}

func TestHit(t *testing.T) {
	b := newTestBoard(FixedRoller(3, 1), map[int]int{0: 2, 3: -1, 12: -5})
	b.RollDice()
	b.SelectSource(0)
	changes := b.ApplyMove(0, 3)
	if !hasChange(changes, ChangeHit) || !hasChange(changes, ChangeMoved) {
		t.Fatalf("expected hit and move, got %+v", changes)
	}
	if n := b.Bars[TeamWhite].Len(); n != 1 {
		t.Errorf("white bar holds %d checkers, expected 1", n)
	}
	p := b.Points[3]
	if p.Len() != 1 || p.Team != TeamRed {
		t.Errorf("point 3 holds %d %s checkers, expected 1 red", p.Len(), p.Team)
	}
	if b.Bars[TeamWhite].Active {
		t.Error("white bar active during red's turn")
	}
	if got := b.Dice.Values(); len(got) != 1 || got[0] != 1 {
		t.Errorf("expected remaining values [1], got %v", got)
	}
	if _, ok := b.Selected(); ok {
		t.Error("selection kept after move")
	}
	checkConservation(t, b)
}

func TestApplyMoveRequiresMark(t *testing.T) {
	b := NewBoard(FixedRoller(3, 1))
	b.RollDice()
	if b.ApplyMove(0, 3) != nil {
		t.Fatal("moved without a selection")
	}
	b.SelectSource(0)
	if b.ApplyMove(0, 2) != nil {
		t.Fatal("moved to an unmarked point")
	}
	if b.ApplyMove(11, 3) != nil {
		t.Fatal("moved from a point that is not selected")
	}
	checkConservation(t, b)
}

func TestTurnChangesWhenDiceExhausted(t *testing.T) {
	b := NewBoard(FixedRoller(3, 1))
	b.RollDice()
	b.SelectSource(0)
	changes := b.ApplyMove(0, 1)
	if hasChange(changes, ChangeTurn) {
		t.Fatal("turn changed with a die value left")
	}
	if b.EndTurnIfExhausted() != nil {
		t.Fatal("turn ended with a die value left")
	}
	b.SelectSource(1)
	changes = b.ApplyMove(1, 4)
	if !hasChange(changes, ChangeTurn) {
		t.Fatalf("turn did not change: %+v", changes)
	}
	if b.Turn != TeamWhite {
		t.Errorf("expected white to move, got %s", b.Turn)
	}
	if !b.Dice.Rollable() || b.Phase() != PhaseAwaitingRoll {
		t.Error("dice not rollable after turn change")
	}
	for _, p := range b.Points {
		if p.Active != (p.Team == TeamWhite) {
			t.Errorf("point %d active=%v after turn change", p.Index, p.Active)
		}
	}
	checkConservation(t, b)
}

func TestDoubles(t *testing.T) {
	b := NewBoard(FixedRoller(2, 2))
	b.RollDice()
	moves := [][2]int{{0, 2}, {2, 4}, {4, 6}, {0, 2}}
	for i, m := range moves {
		if b.Turn != TeamRed {
			t.Fatalf("turn changed after %d moves", i)
		}
		b.SelectSource(m[0])
		if b.ApplyMove(m[0], m[1]) == nil {
			t.Fatalf("failed to move %d/%d", m[0], m[1])
		}
	}
	if b.Turn != TeamWhite {
		t.Errorf("expected white to move after four moves, got %s", b.Turn)
	}
}

func TestEnterFromBar(t *testing.T) {
	b := newTestBoard(FixedRoller(2, 4), map[int]int{SpaceBarRed: 2, 11: 5, 3: -2, 12: -5})
	changes := b.RollDice()
	if !hasChange(changes, ChangeRolled) {
		t.Fatal("failed to roll")
	}
	if b.Phase() != PhaseAwaitingBarDestination {
		t.Fatalf("expected phase %s, got %s", PhaseAwaitingBarDestination, b.Phase())
	}
	if !b.Points[1].ValidMove {
		t.Error("entry point 1 is not marked")
	}
	if b.Points[3].ValidMove {
		t.Error("blocked entry point 3 is marked")
	}
	if b.SelectSource(11) != nil {
		t.Error("selected a point with checkers on the bar")
	}

	changes = b.ApplyMoveFromBar(1)
	if !hasChange(changes, ChangeEntered) {
		t.Fatalf("failed to enter: %+v", changes)
	}
	if b.Bars[TeamRed].Len() != 1 {
		t.Errorf("red bar holds %d checkers, expected 1", b.Bars[TeamRed].Len())
	}
	if got := b.Dice.Values(); len(got) != 1 || got[0] != 4 {
		t.Errorf("expected remaining values [4], got %v", got)
	}
	if b.Points[1].ValidMove {
		t.Error("point 1 still marked without a 2 left")
	}
	if b.HasLegalMove() {
		t.Error("legal move reported for a blocked entry")
	}
	checkConservation(t, b)
}

func TestEnterFromBarWhite(t *testing.T) {
	b := newTestBoard(FixedRoller(1, 1, 3, 5), map[int]int{SpaceBarWhite: 1, 2: 2, 12: -5})
	b.RollDice()
	b.Pass()
	b.RollDice()
	if !b.Points[21].ValidMove || !b.Points[19].ValidMove {
		t.Fatalf("white entry points not marked: %v", b.Marked())
	}
	changes := b.ApplyMoveFromBar(19)
	if !hasChange(changes, ChangeEntered) {
		t.Fatalf("failed to enter: %+v", changes)
	}
	if b.Dice.Have(5) {
		t.Error("5 not consumed by entering on point 19")
	}
	if len(b.Marked()) != 0 {
		t.Errorf("marks left after the bar emptied: %v", b.Marked())
	}
}

func TestBearOff(t *testing.T) {
	b := newTestBoard(FixedRoller(6, 5), map[int]int{18: 13, 10: 1, 12: -5})
	b.RollDice()
	if b.AttemptBearOff(18) != nil {
		t.Fatal("bore off with a checker outside the home region")
	}
	b.Pass()

	b = newTestBoard(FixedRoller(6, 5), map[int]int{18: 13, 20: 1, 12: -5})
	b.RollDice()
	if b.AttemptBearOff(12) != nil {
		t.Fatal("bore off an opposing checker")
	}
	changes := b.AttemptBearOff(18)
	if !hasChange(changes, ChangeBoreOff) {
		t.Fatalf("failed to bear off: %+v", changes)
	}
	if got := b.Dice.Values(); len(got) != 1 || got[0] != 5 {
		t.Errorf("expected remaining values [5], got %v", got)
	}
	if b.Off.Len(TeamRed) != 2 {
		t.Errorf("red has %d checkers off, expected 2", b.Off.Len(TeamRed))
	}
	if b.AttemptBearOff(18) != nil {
		t.Error("bore off from point 18 with a 5")
	}
	changes = b.AttemptBearOff(20)
	if !hasChange(changes, ChangeBoreOff) || !hasChange(changes, ChangeTurn) {
		t.Fatalf("expected bear off and turn change, got %+v", changes)
	}
	checkConservation(t, b)
}

func TestBearOffRefusedWithCheckerOnBar(t *testing.T) {
	b := newTestBoard(FixedRoller(6, 5), map[int]int{SpaceBarRed: 1, 18: 13, 12: -5})
	b.RollDice()
	if b.AttemptBearOff(18) != nil {
		t.Fatal("bore off with a checker on the bar")
	}
}

func TestWin(t *testing.T) {
	b := newTestBoard(FixedRoller(1, 2), map[int]int{23: 1, 0: -15})
	b.RollDice()
	changes := b.AttemptBearOff(23)
	if !hasChange(changes, ChangeWin) {
		t.Fatalf("expected win, got %+v", changes)
	}
	if b.Winner != TeamRed || b.CheckWin() != TeamRed {
		t.Errorf("expected red to win, got %s", b.Winner)
	}
	if b.Phase() != PhaseWon {
		t.Errorf("expected phase %s, got %s", PhaseWon, b.Phase())
	}
	if hasChange(changes, ChangeTurn) {
		t.Error("turn changed after a win")
	}
	for _, c := range []Target{DiceTarget(), TurnChangerTarget(), PointTarget(0)} {
		if b.Click(c) != nil {
			t.Errorf("click on %s accepted after win", c)
		}
	}
	if b.RollDice() != nil || b.Pass() != nil || b.SelectSource(0) != nil {
		t.Error("operation accepted after win")
	}
	checkConservation(t, b)
}

func TestPass(t *testing.T) {
	b := newTestBoard(FixedRoller(1, 2), map[int]int{0: 2, 1: -2, 2: -2, 12: -5})
	if b.Pass() != nil {
		t.Fatal("passed before rolling")
	}
	changes := b.RollDice()
	if hasChange(changes, ChangeTurn) {
		t.Fatal("turn changed without AutoPass")
	}
	if b.HasLegalMove() {
		t.Fatal("legal move reported for a blocked checker")
	}
	changes = b.Pass()
	if !hasChange(changes, ChangeTurn) || b.Turn != TeamWhite {
		t.Fatalf("failed to pass: %+v", changes)
	}
}

func TestAutoPass(t *testing.T) {
	b := newTestBoard(FixedRoller(1, 2), map[int]int{0: 2, 1: -2, 2: -2, 12: -5})
	b.AutoPass = true
	changes := b.RollDice()
	if !hasChange(changes, ChangeRolled) || !hasChange(changes, ChangeTurn) {
		t.Fatalf("expected roll and turn change, got %+v", changes)
	}
	if b.Turn != TeamWhite {
		t.Errorf("expected white to move, got %s", b.Turn)
	}
}

func TestPips(t *testing.T) {
	b := NewBoard(nil)
	for _, team := range []Team{TeamRed, TeamWhite} {
		if pips := b.Pips(team); pips != 167 {
			t.Errorf("%s has %d pips, expected 167", team, pips)
		}
	}
}

func TestRandomPlayConservesCheckers(t *testing.T) {
	roll := SeededRoller(7)
	choose := SeededRoller(11)
	b := NewBoard(roll)
	b.AutoPass = true
	games := 0
	for i := 0; i < 5000; i++ {
		var target Target
		switch choose() {
		case 1:
			target = DiceTarget()
		default:
			target = PointTarget((choose()*choose() + i) % BoardPoints)
		}
		b.Click(target)
		checkConservation(t, b)
		for _, p := range b.Points {
			if p.Open != (p.Len() == 0) || p.Blot != (p.Len() == 1) {
				t.Fatalf("point %d flags out of date", p.Index)
			}
		}
		if b.Winner != TeamNone {
			games++
			b = NewBoard(roll)
			b.AutoPass = true
		}
	}
}
