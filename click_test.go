package tavla

import "testing"

func TestClickSequence(t *testing.T) {
	b := NewBoard(FixedRoller(3, 1))
	if b.Click(PointTarget(0)) != nil {
		t.Fatal("point click accepted before rolling")
	}
	if !hasChange(b.Click(DiceTarget()), ChangeRolled) {
		t.Fatal("dice click did not roll")
	}
	if b.Click(DiceTarget()) != nil {
		t.Fatal("rolled twice")
	}

	if !hasChange(b.Click(PointTarget(0)), ChangeSelected) {
		t.Fatal("failed to select point 0")
	}
	if !hasChange(b.Click(PointTarget(0)), ChangeDeselected) {
		t.Fatal("second click did not deselect point 0")
	}
	b.Click(PointTarget(0))
	if b.Click(PointTarget(11)) != nil {
		t.Fatal("selected a second point")
	}
	if !hasChange(b.Click(PointTarget(3)), ChangeMoved) {
		t.Fatal("failed to move to point 3")
	}

	b.Click(PointTarget(11))
	changes := b.Click(PointTarget(12))
	if changes != nil {
		t.Fatal("moved onto a blocked point")
	}
	b.Click(PointTarget(11))
	b.Click(PointTarget(0))
	changes = b.Click(PointTarget(1))
	if !hasChange(changes, ChangeMoved) || !hasChange(changes, ChangeTurn) {
		t.Fatalf("expected move and turn change, got %+v", changes)
	}
}

func TestClickEntersFromBar(t *testing.T) {
	b := newTestBoard(FixedRoller(2, 4), map[int]int{SpaceBarRed: 1, 11: 5, 12: -5})
	b.Click(DiceTarget())
	if b.Click(PointTarget(11)) != nil {
		t.Fatal("selected a point with a checker on the bar")
	}
	if !hasChange(b.Click(PointTarget(3)), ChangeEntered) {
		t.Fatal("failed to enter on point 3")
	}
	if !hasChange(b.Click(PointTarget(11)), ChangeSelected) {
		t.Fatal("failed to select after entering")
	}
}

func TestClickBearsOff(t *testing.T) {
	b := newTestBoard(FixedRoller(6, 5), map[int]int{18: 2, 20: 1, 12: -5})
	b.Click(DiceTarget())
	if !hasChange(b.Click(PointTarget(18)), ChangeBoreOff) {
		t.Fatal("failed to bear off from point 18")
	}
	if !hasChange(b.Click(PointTarget(18)), ChangeSelected) {
		t.Fatal("expected a select when the remaining value is too small to bear off")
	}
}

func TestClickTurnChanger(t *testing.T) {
	b := NewBoard(FixedRoller(6, 6))
	if b.Click(TurnChangerTarget()) != nil {
		t.Fatal("passed before rolling")
	}
	b.Click(DiceTarget())
	if !hasChange(b.Click(TurnChangerTarget()), ChangeTurn) {
		t.Fatal("failed to pass")
	}
	if b.Turn != TeamWhite {
		t.Errorf("expected white to move, got %s", b.Turn)
	}
}

func TestParseTarget(t *testing.T) {
	for _, test := range []struct {
		in       string
		expected Target
		fail     bool
	}{
		{"dice", DiceTarget(), false},
		{"PASS", TurnChangerTarget(), false},
		{"1", PointTarget(0), false},
		{"24", PointTarget(23), false},
		{"0", Target{}, true},
		{"25", Target{}, true},
		{"bar", Target{}, true},
	} {
		target, err := ParseTarget(test.in)
		if test.fail {
			if err == nil {
				t.Errorf("%q: expected error", test.in)
			}
			continue
		} else if err != nil {
			t.Errorf("%q: %s", test.in, err)
			continue
		}
		if target != test.expected {
			t.Errorf("%q: expected %+v, got %+v", test.in, test.expected, target)
		}
	}
}
