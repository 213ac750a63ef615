package tavla

import "testing"

func TestPointRecompute(t *testing.T) {
	p := newPoint(4)
	p.recompute()
	if !p.Open || p.Blot || p.Team != TeamNone {
		t.Fatalf("empty point: open=%v blot=%v team=%s", p.Open, p.Blot, p.Team)
	}
	for n := 1; n <= 4; n++ {
		p.add(newChecker(TeamWhite))
		p.recompute()
		if p.Open != (p.Len() == 0) || p.Blot != (p.Len() == 1) {
			t.Errorf("%d checkers: open=%v blot=%v", n, p.Open, p.Blot)
		}
		if p.Team != TeamWhite {
			t.Errorf("%d checkers: team %s", n, p.Team)
		}
	}
}

func TestRemoveTopReturnsOldest(t *testing.T) {
	p := newPoint(0)
	first, second := newChecker(TeamRed), newChecker(TeamRed)
	p.add(first)
	p.add(second)
	p.recompute()
	if second.Position.Height != 1 {
		t.Errorf("second checker at height %d", second.Position.Height)
	}

	c, ok := p.removeTop()
	if !ok || c != first {
		t.Fatal("did not remove the oldest checker")
	}
	p.recompute()
	if second.Position.Height != 0 {
		t.Errorf("remaining checker at height %d", second.Position.Height)
	}
	p.removeTop()
	if _, ok := p.removeTop(); ok {
		t.Fatal("removed a checker from an empty point")
	}
}

func TestActiveForTurn(t *testing.T) {
	p := newPoint(3)
	p.add(newChecker(TeamRed))
	p.recompute()
	p.setActiveForTurn(TeamRed)
	if !p.Active {
		t.Error("red point inactive on red's turn")
	}
	p.setActiveForTurn(TeamWhite)
	if p.Active {
		t.Error("red point active on white's turn")
	}

	bar := newBar(TeamWhite)
	bar.setActiveForTurn(TeamWhite)
	if bar.Active {
		t.Error("empty bar is active")
	}
	bar.add(newChecker(TeamWhite))
	bar.recompute()
	bar.setActiveForTurn(TeamWhite)
	if !bar.Active {
		t.Error("white bar inactive on white's turn")
	}
	if bar.Owner() != TeamWhite {
		t.Errorf("bar owner %s", bar.Owner())
	}
}

func TestTeamRules(t *testing.T) {
	for _, team := range []Team{TeamRed, TeamWhite} {
		for v := 1; v <= 6; v++ {
			point := team.EntryPoint(v)
			if !validPoint(point) {
				t.Fatalf("%s enters on %d with %d", team, point, v)
			}
			if d := team.EntryDistance(point); d != v {
				t.Errorf("%s entering on %d uses %d, expected %d", team, point, d, v)
			}
			if team.InHome(point) {
				t.Errorf("%s enters inside its own home on %d", team, point)
			}
		}
		from, to := HomeRange(team)
		if to-from+1 != 6 {
			t.Errorf("%s home region spans %d points", team, to-from+1)
		}
		for point := from; point <= to; point++ {
			if d := team.BearOffDistance(point); d < 1 || d > 6 {
				t.Errorf("%s bears off from %d with %d", team, point, d)
			}
		}
	}
	if TeamRed.Opponent() != TeamWhite || TeamWhite.Opponent() != TeamRed || TeamNone.Opponent() != TeamNone {
		t.Error("unexpected opponent")
	}
}
