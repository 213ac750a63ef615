package tavla

import (
	"bytes"
	"fmt"
)

var boardTopRed = []byte("+12-11-10--9--8--7-+---+-6--5--4--3--2--1-+")
var boardBottomRed = []byte("+13-14-15-16-17-18-+---+19-20-21-22-23-24-+")

var boardTopWhite = []byte("+13-14-15-16-17-18-+---+19-20-21-22-23-24-+")
var boardBottomWhite = []byte("+12-11-10--9--8--7-+---+-6--5--4--3--2--1-+")

const (
	VerticalBar rune = '│' // │
)

const stackRows = 5

// columns returns the point shown in each of the twelve columns of the top
// and bottom rows, so that the home region of perspective ends up in the
// bottom right corner.
func columns(perspective Team) (top [12]int, bottom [12]int) {
	for col := 0; col < 12; col++ {
		if perspective == TeamWhite {
			top[col] = 12 + col
			bottom[col] = 11 - col
		} else {
			top[col] = 11 - col
			bottom[col] = 12 + col
		}
	}
	return top, bottom
}

func teamSymbol(team Team) string {
	switch team {
	case TeamRed:
		return "x"
	case TeamWhite:
		return "o"
	default:
		return " "
	}
}

// renderCell renders one three character cell of a stack. height counts
// from the board edge, starting at 1. The first empty cell above a stack
// carries marker.
func renderCell(team Team, count int, height int, marker byte) []byte {
	switch {
	case height > stackRows:
		return []byte("   ")
	case height == stackRows && (count > stackRows || (count == stackRows && marker != ' ')):
		return []byte(fmt.Sprintf("%2d%c", count, marker))
	case height <= count:
		return []byte(" " + teamSymbol(team) + " ")
	case height == count+1:
		return []byte{' ', marker, ' '}
	default:
		return []byte("   ")
	}
}

func pointCell(p *Point, height int) []byte {
	marker := byte(' ')
	switch {
	case p.Clicked:
		marker = '^'
	case p.ValidMove:
		marker = '*'
	}
	return renderCell(p.Team, p.Len(), height, marker)
}

// TurnMessage returns the line shown to tell players whose turn it is.
func (b *Board) TurnMessage() string {
	if b.Winner != TeamNone {
		return b.Winner.String() + " wins!"
	}
	return "It's " + b.Turn.String() + "'s turn!"
}

// Render returns a text drawing of the board from the point of view of
// perspective. Marked destinations are shown with * and the selected source
// with ^.
func (b *Board) Render(perspective Team) []byte {
	if !perspective.Valid() {
		perspective = TeamRed
	}
	opponent := perspective.Opponent()
	top, bottom := columns(perspective)

	var t bytes.Buffer
	if perspective == TeamWhite {
		t.Write(boardTopWhite)
	} else {
		t.Write(boardTopRed)
	}
	t.WriteByte('\n')

	dice := func(team Team) string {
		if b.Turn != team || !b.rolled {
			return "  -  -  "
		}
		return fmt.Sprintf("  %d  %d  %v", b.Dice.Roll1, b.Dice.Roll2, b.Dice.Values())
	}
	info := func(team Team) string {
		s := teamSymbol(team) + " " + team.String()
		if off := b.Off.Len(team); off != 0 {
			s += fmt.Sprintf("  %d off", off)
		}
		return s
	}

	for row := 0; row < 2*stackRows+1; row++ {
		t.WriteRune(VerticalBar)
		for col := 0; col < 12; col++ {
			switch {
			case row < stackRows:
				t.Write(pointCell(b.Points[top[col]], row+1))
			case row == stackRows:
				t.Write([]byte("   "))
			default:
				t.Write(pointCell(b.Points[bottom[col]], 2*stackRows+1-row))
			}

			if col == 5 {
				t.WriteRune(VerticalBar)
				switch {
				case row < stackRows:
					bar := b.Bars[opponent]
					t.Write(renderCell(opponent, bar.Len(), row+1, ' '))
				case row == stackRows:
					t.Write([]byte("   "))
				default:
					bar := b.Bars[perspective]
					t.Write(renderCell(perspective, bar.Len(), 2*stackRows+1-row, ' '))
				}
				t.WriteRune(VerticalBar)
			}
		}
		t.WriteRune(VerticalBar)
		t.WriteString("  ")

		switch row {
		case 0:
			t.WriteString(info(opponent))
		case 2:
			t.WriteString(dice(opponent))
		case stackRows:
			t.WriteString(b.TurnMessage())
		case 8:
			t.WriteString(dice(perspective))
		case 2 * stackRows:
			t.WriteString(info(perspective))
		}
		t.WriteByte('\n')
	}

	if perspective == TeamWhite {
		t.Write(boardBottomWhite)
	} else {
		t.Write(boardBottomRed)
	}
	t.WriteByte('\n')
	return t.Bytes()
}
