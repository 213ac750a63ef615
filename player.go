package tavla

type Player struct {
	Team   Team
	Name   string
	Rating int
}

func NewPlayer(team Team) Player {
	return Player{
		Team: team,
	}
}
