package tavla

// ChangeType describes what a Change reports.
type ChangeType string

const (
	ChangeRolled     ChangeType = "rolled"
	ChangeSelected   ChangeType = "selected"
	ChangeDeselected ChangeType = "deselected"
	ChangeMoved      ChangeType = "moved"
	ChangeEntered    ChangeType = "entered"
	ChangeHit        ChangeType = "hit"
	ChangeBoreOff    ChangeType = "boreoff"
	ChangeTurn       ChangeType = "turn"
	ChangeWin        ChangeType = "win"
)

// Change is returned by every operation that mutated the board. Any change
// means the board should be redrawn.
type Change struct {
	Type  ChangeType
	Team  Team
	From  int // Source space.
	To    int // Destination space.
	Value int // Die value used, when one was consumed.

	Roll1 int
	Roll2 int
}
