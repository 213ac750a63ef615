package tavla

import (
	"reflect"
	"testing"
)

func TestDiceValues(t *testing.T) {
	for _, test := range []struct {
		roll1, roll2 int
		expected     []int
	}{
		{3, 3, []int{3, 3, 3, 3}},
		{2, 5, []int{2, 5}},
		{5, 2, []int{2, 5}},
		{6, 1, []int{1, 6}},
	} {
		d := NewDice(FixedRoller(test.roll1, test.roll2))
		if !d.Roll() {
			t.Fatalf("failed to roll %d-%d", test.roll1, test.roll2)
		}
		if got := d.Values(); !reflect.DeepEqual(got, test.expected) {
			t.Errorf("roll %d-%d: expected %v, got %v", test.roll1, test.roll2, test.expected, got)
		}
	}
}

func TestDiceConsume(t *testing.T) {
	d := NewDice(FixedRoller(4, 4))
	if !d.Rollable() {
		t.Fatal("new dice are not rollable")
	}
	d.Roll()
	if d.Roll() {
		t.Fatal("rolled again with values left")
	}
	if d.Consume(3) {
		t.Fatal("consumed a value that was not rolled")
	}
	for i := 0; i < 4; i++ {
		if d.Rollable() {
			t.Fatalf("rollable with %d values left", 4-i)
		}
		if !d.Consume(4) {
			t.Fatalf("failed to consume value %d", i+1)
		}
	}
	if !d.Exhausted() || !d.Rollable() {
		t.Fatal("dice not rollable after every value was used")
	}
	if !d.Roll() {
		t.Fatal("failed to roll again")
	}
}

func TestDiceReset(t *testing.T) {
	d := NewDice(FixedRoller(1, 2))
	d.Roll()
	d.Reset()
	if !d.Rollable() || len(d.Values()) != 0 {
		t.Fatalf("reset dice: rollable=%v values=%v", d.Rollable(), d.Values())
	}
}

func TestSeededRoller(t *testing.T) {
	a, b := SeededRoller(42), SeededRoller(42)
	var counts [7]int
	for i := 0; i < 6000; i++ {
		v := a()
		if v < 1 || v > 6 {
			t.Fatalf("rolled %d", v)
		}
		if w := b(); w != v {
			t.Fatalf("seeded rollers diverged at roll %d: %d != %d", i, v, w)
		}
		counts[v]++
	}
	for face := 1; face <= 6; face++ {
		if counts[face] < 800 || counts[face] > 1200 {
			t.Errorf("face %d rolled %d times out of 6000", face, counts[face])
		}
	}
}

func TestRandomRoller(t *testing.T) {
	for i := 0; i < 100; i++ {
		if v := RandomRoller(); v < 1 || v > 6 {
			t.Fatalf("rolled %d", v)
		}
	}
}
