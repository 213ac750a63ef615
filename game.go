package tavla

// Every operation below checks its preconditions before touching the board.
// A refused operation returns nil and leaves the board unchanged.

// RollDice rolls for the side to move. When the side to move has checkers on
// the bar, the points they may enter on are marked straight away.
func (b *Board) RollDice() []Change {
	if b.Winner != TeamNone || !b.Dice.Roll() {
		return nil
	}
	b.rolled = true
	changes := []Change{{
		Type:  ChangeRolled,
		Team:  b.Turn,
		Roll1: b.Dice.Roll1,
		Roll2: b.Dice.Roll2,
	}}
	if b.currentBar().Len() != 0 {
		b.markBarMoves()
	}
	return b.autoPass(changes)
}

// SelectSource selects point as the source of the next move and marks every
// point it may move to with the remaining dice.
func (b *Board) SelectSource(point int) []Change {
	if b.Winner != TeamNone || !b.rolled || b.selected >= 0 || !validPoint(point) || b.currentBar().Len() != 0 {
		return nil
	}
	p := b.Points[point]
	if !p.Active || p.Team != b.Turn {
		return nil
	}
	b.selected = point
	p.Clicked = true
	b.markMoves(point)
	return []Change{{
		Type: ChangeSelected,
		Team: b.Turn,
		From: point,
		To:   -1,
	}}
}

// DeselectSource clears the selected point and its marked destinations.
func (b *Board) DeselectSource() []Change {
	if b.selected < 0 {
		return nil
	}
	from := b.selected
	b.clearSelection()
	return []Change{{
		Type: ChangeDeselected,
		Team: b.Turn,
		From: from,
		To:   -1,
	}}
}

// ApplyMove moves a checker from the selected point src to the marked point
// dst, hitting a lone opposing checker there.
func (b *Board) ApplyMove(src int, dst int) []Change {
	if b.Winner != TeamNone || !b.rolled || b.selected < 0 || src != b.selected || b.currentBar().Len() != 0 {
		return nil
	} else if !validPoint(dst) || !b.Points[dst].ValidMove {
		return nil
	}
	value := (dst - src) * b.Turn.Direction()
	if !b.Dice.Have(value) {
		return nil
	}

	from := b.Points[src]
	changes := b.hit(dst)
	c, ok := from.removeTop()
	if !ok {
		return nil
	}
	b.land(c, dst)
	from.recompute()
	from.setActiveForTurn(b.Turn)

	b.clearSelection()
	b.Dice.Consume(value)
	changes = append(changes, Change{
		Type:  ChangeMoved,
		Team:  b.Turn,
		From:  src,
		To:    dst,
		Value: value,
	})
	return b.finishApplication(changes)
}

// ApplyMoveFromBar enters a checker from the bar of the side to move onto the
// marked point dst.
func (b *Board) ApplyMoveFromBar(dst int) []Change {
	bar := b.currentBar()
	if b.Winner != TeamNone || !b.rolled || bar.Len() == 0 || !validPoint(dst) || !b.Points[dst].ValidMove {
		return nil
	}
	value := b.Turn.EntryDistance(dst)
	if !b.Dice.Have(value) {
		return nil
	}

	changes := b.hit(dst)
	c, ok := bar.removeTop()
	if !ok {
		return nil
	}
	b.land(c, dst)
	bar.recompute()
	bar.setActiveForTurn(b.Turn)

	b.Dice.Consume(value)
	b.unmarkAll()
	if bar.Len() != 0 && !b.Dice.Exhausted() {
		b.markBarMoves()
	}
	changes = append(changes, Change{
		Type:  ChangeEntered,
		Team:  b.Turn,
		From:  bar.space,
		To:    dst,
		Value: value,
	})
	return b.finishApplication(changes)
}

// AttemptBearOff bears a single checker off point using the smallest
// remaining die value that carries it past the board edge. Nil is returned
// when bearing off is not allowed or no value is large enough.
func (b *Board) AttemptBearOff(point int) []Change {
	if b.Winner != TeamNone || !b.rolled || b.selected >= 0 || !validPoint(point) {
		return nil
	}
	p := b.Points[point]
	if p.Team != b.Turn || !b.Home(b.Turn) {
		return nil
	}

	distance := b.Turn.BearOffDistance(point)
	for _, value := range b.Dice.Values() {
		if value < distance {
			continue
		}
		c, ok := p.removeTop()
		if !ok {
			return nil
		}
		b.Off.add(c)
		p.recompute()
		p.setActiveForTurn(b.Turn)
		b.Dice.Consume(value)

		changes := []Change{{
			Type:  ChangeBoreOff,
			Team:  b.Turn,
			From:  point,
			To:    b.Turn.rule().offSpace,
			Value: value,
		}}
		if winner := b.CheckWin(); winner != TeamNone {
			return append(changes, Change{
				Type: ChangeWin,
				Team: winner,
				From: -1,
				To:   -1,
			})
		}
		return b.finishApplication(changes)
	}
	return nil
}

// CheckWin returns the winning team, if any. A team wins once it has no
// checkers left on the points or its bar. Nothing may be played after a win.
func (b *Board) CheckWin() Team {
	if b.Winner != TeamNone {
		return b.Winner
	}
	for _, team := range []Team{b.Turn, b.Turn.Opponent()} {
		if b.OnBoard(team) != 0 {
			continue
		}
		b.Winner = team
		b.clearSelection()
		for _, p := range b.Points {
			p.setActiveForTurn(TeamNone)
		}
		for _, bar := range b.bars() {
			bar.setActiveForTurn(TeamNone)
		}
		return team
	}
	return TeamNone
}

// EndTurnIfExhausted passes the turn to the other side once the side to move
// has used every value of its roll.
func (b *Board) EndTurnIfExhausted() []Change {
	if b.Winner != TeamNone || !b.rolled || !b.Dice.Exhausted() {
		return nil
	}
	return b.changeTurn()
}

// Pass gives up the rest of the turn. It unblocks a roll that leaves the
// side to move without a legal move.
func (b *Board) Pass() []Change {
	if b.Winner != TeamNone || !b.rolled {
		return nil
	}
	return b.changeTurn()
}

// HasLegalMove reports whether the side to move can use any remaining die
// value: entering from the bar, moving between points or bearing off.
func (b *Board) HasLegalMove() bool {
	if b.Winner != TeamNone || !b.rolled || b.Dice.Exhausted() {
		return false
	}
	values := b.Dice.Values()
	if b.currentBar().Len() != 0 {
		for _, v := range values {
			if b.Points[b.Turn.EntryPoint(v)].acceptsTeam(b.Turn) {
				return true
			}
		}
		return false
	}

	home := b.Home(b.Turn)
	for _, p := range b.Points {
		if p.Team != b.Turn {
			continue
		}
		for _, v := range values {
			dst := p.Index + v*b.Turn.Direction()
			if validPoint(dst) && b.Points[dst].acceptsTeam(b.Turn) {
				return true
			}
			if home && v >= b.Turn.BearOffDistance(p.Index) {
				return true
			}
		}
	}
	return false
}

func (b *Board) changeTurn() []Change {
	b.clearSelection()
	b.Turn = b.Turn.Opponent()
	b.rolled = false
	b.Dice.Reset()
	for _, p := range b.Points {
		p.setActiveForTurn(b.Turn)
	}
	for _, bar := range b.bars() {
		bar.recompute()
		bar.setActiveForTurn(b.Turn)
	}
	return []Change{{
		Type: ChangeTurn,
		Team: b.Turn,
		From: -1,
		To:   -1,
	}}
}

// finishApplication ends the turn once the roll is used up.
func (b *Board) finishApplication(changes []Change) []Change {
	if b.Dice.Exhausted() {
		return append(changes, b.changeTurn()...)
	}
	return b.autoPass(changes)
}

func (b *Board) autoPass(changes []Change) []Change {
	if !b.AutoPass || b.Winner != TeamNone || b.HasLegalMove() {
		return changes
	}
	return append(changes, b.changeTurn()...)
}

// hit sends a lone opposing checker on dst to its bar.
func (b *Board) hit(dst int) []Change {
	p := b.Points[dst]
	if !p.Blot || p.Team == b.Turn {
		return nil
	}
	c, ok := p.removeTop()
	if !ok {
		return nil
	}
	opponent := c.Team()
	bar := b.Bars[opponent]
	bar.add(c)
	bar.recompute()
	bar.setActiveForTurn(b.Turn)
	p.recompute()
	return []Change{{
		Type: ChangeHit,
		Team: opponent,
		From: dst,
		To:   bar.space,
	}}
}

func (b *Board) land(c *Checker, dst int) {
	p := b.Points[dst]
	p.add(c)
	p.recompute()
	p.setActiveForTurn(b.Turn)
}

func (b *Board) markMoves(src int) {
	for _, v := range b.Dice.Values() {
		dst := src + v*b.Turn.Direction()
		if !validPoint(dst) || !b.Points[dst].acceptsTeam(b.Turn) {
			continue
		}
		b.mark(dst)
	}
}

func (b *Board) markBarMoves() {
	for _, v := range b.Dice.Values() {
		dst := b.Turn.EntryPoint(v)
		if !b.Points[dst].acceptsTeam(b.Turn) {
			continue
		}
		b.mark(dst)
	}
}

func (b *Board) mark(point int) {
	p := b.Points[point]
	if p.ValidMove {
		return
	}
	p.ValidMove = true
	b.marked = append(b.marked, point)
}

// unmarkAll clears exactly the points that were marked, whatever dice
// remain.
func (b *Board) unmarkAll() {
	for _, point := range b.marked {
		b.Points[point].ValidMove = false
	}
	b.marked = b.marked[:0]
}

func (b *Board) clearSelection() {
	if b.selected >= 0 {
		b.Points[b.selected].Clicked = false
		b.selected = -1
	}
	b.unmarkAll()
}
