package tavla

import (
	"fmt"
	"strconv"
	"strings"
)

// TargetKind is the kind of board element that was clicked.
type TargetKind int8

const (
	TargetNone TargetKind = iota
	TargetDice
	TargetTurnChanger
	TargetPoint
)

// Target is a clicked board element, already resolved from screen
// coordinates by the rendering layer.
type Target struct {
	Kind  TargetKind
	Point int
}

func DiceTarget() Target {
	return Target{Kind: TargetDice}
}

func TurnChangerTarget() Target {
	return Target{Kind: TargetTurnChanger}
}

func PointTarget(point int) Target {
	return Target{Kind: TargetPoint, Point: point}
}

func (t Target) String() string {
	switch t.Kind {
	case TargetDice:
		return "dice"
	case TargetTurnChanger:
		return "pass"
	case TargetPoint:
		return strconv.Itoa(t.Point + 1)
	default:
		return "none"
	}
}

// ParseTarget parses a target as written by players: "dice", "pass" or a
// point numbered 1-24.
func ParseTarget(s string) (Target, error) {
	switch strings.ToLower(s) {
	case "dice", "d", "roll", "r":
		return DiceTarget(), nil
	case "pass", "p", "turn":
		return TurnChangerTarget(), nil
	}
	point, err := strconv.Atoi(s)
	if err != nil || point < 1 || point > BoardPoints {
		return Target{}, fmt.Errorf("invalid target %q", s)
	}
	return PointTarget(point - 1), nil
}

// Click performs the single operation a click on target stands for.
func (b *Board) Click(t Target) []Change {
	switch t.Kind {
	case TargetDice:
		return b.RollDice()
	case TargetTurnChanger:
		return b.Pass()
	case TargetPoint:
		return b.clickPoint(t.Point)
	}
	return nil
}

func (b *Board) clickPoint(point int) []Change {
	if b.Winner != TeamNone || !validPoint(point) {
		return nil
	}
	p := b.Points[point]

	// Try bearing off before anything else.
	if b.Home(b.Turn) && p.Active && b.selected < 0 && b.rolled {
		if changes := b.AttemptBearOff(point); changes != nil {
			return changes
		}
	}

	if b.currentBar().Len() != 0 {
		if p.ValidMove {
			return b.ApplyMoveFromBar(point)
		}
		return nil
	}

	switch {
	case p.Clicked:
		return b.DeselectSource()
	case p.Active && b.selected < 0 && b.rolled:
		return b.SelectSource(point)
	case p.ValidMove && b.rolled:
		return b.ApplyMove(b.selected, point)
	}
	return nil
}
