package server

import (
	"bufio"
	"bytes"
	"fmt"
	"time"

	"codeberg.org/tslocum/gotext"
	"codeberg.org/tslocum/tavla"
	"github.com/alexedwards/argon2id"
)

type serverGame struct {
	id         int
	created    int64
	active     int64
	name       []byte
	password   string // Argon2id hash.
	client1    *serverClient
	client2    *serverClient
	spectators []*serverClient
	player1    tavla.Player
	player2    tavla.Player
	started    time.Time
	replay     [][]byte
	roller     tavla.Roller
	*tavla.Board
}

func newServerGame(id int, roller tavla.Roller) *serverGame {
	now := time.Now().Unix()
	g := &serverGame{
		id:      id,
		created: now,
		active:  now,
		player1: tavla.NewPlayer(tavla.TeamRed),
		player2: tavla.NewPlayer(tavla.TeamWhite),
		roller:  roller,
	}
	g.reset()
	return g
}

// reset sets up a new game at the table.
func (g *serverGame) reset() {
	g.Board = tavla.NewBoard(g.roller)
	g.started = time.Time{}
	g.replay = g.replay[:0]
}

func (g *serverGame) setPassword(password []byte, salt string) error {
	hash, err := argon2id.CreateHash(string(password)+salt, argon2id.DefaultParams)
	if err != nil {
		return fmt.Errorf("failed to hash table password: %w", err)
	}
	g.password = hash
	return nil
}

func (g *serverGame) checkPassword(password []byte, salt string) bool {
	if g.password == "" {
		return true
	}
	match, err := argon2id.ComparePasswordAndHash(string(password)+salt, g.password)
	return err == nil && match
}

func (g *serverGame) player(team tavla.Team) *tavla.Player {
	switch team {
	case tavla.TeamRed:
		return &g.player1
	case tavla.TeamWhite:
		return &g.player2
	default:
		return nil
	}
}

func (g *serverGame) client(team tavla.Team) *serverClient {
	switch team {
	case tavla.TeamRed:
		return g.client1
	case tavla.TeamWhite:
		return g.client2
	default:
		return nil
	}
}

func (g *serverGame) playerName(team tavla.Team) string {
	p := g.player(team)
	if p == nil || p.Name == "" {
		return team.String()
	}
	return p.Name
}

func (g *serverGame) sendBoard(client *serverClient) {
	if client.json {
		ev := &tavla.EventBoard{
			GameState:    *g.State(),
			PlayerNumber: client.team,
			Player1:      g.player1,
			Player2:      g.player2,
		}
		client.sendEvent(ev)
		return
	}

	scanner := bufio.NewScanner(bytes.NewReader(g.Render(client.team)))
	for scanner.Scan() {
		client.sendNotice(scanner.Text())
	}
}

func (g *serverGame) playerCount() int {
	var c int
	if g.client1 != nil {
		c++
	}
	if g.client2 != nil {
		c++
	}
	return c
}

func (g *serverGame) eachClient(f func(client *serverClient)) {
	if g.client1 != nil {
		f(g.client1)
	}
	if g.client2 != nil {
		f(g.client2)
	}
	for _, spectator := range g.spectators {
		f(spectator)
	}
}

// addClient seats client at the table, or adds it as a spectator when both
// seats are taken.
func (g *serverGame) addClient(client *serverClient) (spectator bool) {
	if g.client1 != nil && g.client2 != nil {
		for _, spec := range g.spectators {
			if spec == client {
				return true
			}
		}
		client.team = tavla.TeamNone
		g.spectators = append(g.spectators, client)
		ev := &tavla.EventJoined{
			GameID:       g.id,
			PlayerNumber: tavla.TeamNone,
		}
		ev.Player = string(client.name)
		client.sendEvent(ev)
		g.sendBoard(client)
		return true
	}

	switch {
	case g.client1 != nil:
		client.team = tavla.TeamWhite
	case g.client2 != nil:
		client.team = tavla.TeamRed
	default:
		client.team = tavla.TeamRed
		if tavla.RandInt(2) == 0 {
			client.team = tavla.TeamWhite
		}
	}
	if client.team == tavla.TeamRed {
		g.client1 = client
	} else {
		g.client2 = client
	}
	p := g.player(client.team)
	p.Name = string(client.name)
	p.Rating = client.rating / 100

	ev := &tavla.EventJoined{
		GameID:       g.id,
		PlayerNumber: client.team,
	}
	ev.Player = string(client.name)
	g.eachClient(func(c *serverClient) {
		c.sendEvent(ev)
		g.sendBoard(c)
	})
	return false
}

func (g *serverGame) removeClient(client *serverClient) {
	ev := &tavla.EventLeft{}
	ev.Player = string(client.name)

	switch {
	case g.client1 == client:
		g.client1 = nil
		g.player1.Name = ""
		g.player1.Rating = 0
	case g.client2 == client:
		g.client2 = nil
		g.player2.Name = ""
		g.player2.Rating = 0
	default:
		for i, spectator := range g.spectators {
			if spectator == client {
				g.spectators = append(g.spectators[:i], g.spectators[i+1:]...)
				client.sendEvent(ev)
				client.team = tavla.TeamNone
				return
			}
		}
		return
	}

	client.sendEvent(ev)
	client.team = tavla.TeamNone
	g.eachClient(func(c *serverClient) {
		c.sendEvent(ev)
		if !c.json {
			g.sendBoard(c)
		}
	})
}

func (g *serverGame) opponent(client *serverClient) *serverClient {
	if g.client1 == client {
		return g.client2
	} else if g.client2 == client {
		return g.client1
	}
	return nil
}

func (g *serverGame) listing() *tavla.GameListing {
	if g.terminated() {
		return nil
	}
	return &tavla.GameListing{
		ID:       g.id,
		Password: len(g.password) != 0,
		Players:  g.playerCount(),
		Name:     string(g.name),
	}
}

// mayPlay returns the translated reason client may not act on the board, or
// an empty string when it is the client's turn.
func (g *serverGame) mayPlay(client *serverClient) string {
	switch {
	case client.team == tavla.TeamNone:
		return gotext.GetD(client.language, "You are spectating this match.")
	case g.Winner != tavla.TeamNone:
		return gotext.GetD(client.language, "The match has ended.")
	case g.client1 == nil || g.client2 == nil:
		return gotext.GetD(client.language, "You may not play until your opponent joins the match.")
	case g.Turn != client.team:
		return gotext.GetD(client.language, "It is not your turn.")
	}
	return ""
}

// play announces the changes made by an accepted board operation to every
// client at the table and records them in the replay. The returned value
// reports whether the game was won.
func (g *serverGame) play(changes []tavla.Change) bool {
	if g.started.IsZero() {
		g.started = time.Now()
	}
	g.active = time.Now().Unix()

	var won bool
	for _, change := range changes {
		player := g.playerName(change.Team)

		var ev interface{}
		switch change.Type {
		case tavla.ChangeRolled:
			e := &tavla.EventRolled{
				Roll1: change.Roll1,
				Roll2: change.Roll2,
			}
			e.Player = player
			ev = e
			g.replay = append(g.replay, []byte(fmt.Sprintf("%s r %d-%d", change.Team, change.Roll1, change.Roll2)))
		case tavla.ChangeMoved, tavla.ChangeEntered, tavla.ChangeBoreOff:
			e := &tavla.EventMoved{
				From: change.From,
				To:   change.To,
			}
			e.Player = player
			ev = e
			g.replay = append(g.replay, []byte(fmt.Sprintf("%s m %s/%s", change.Team, tavla.FormatSpace(change.From), tavla.FormatSpace(change.To))))
		case tavla.ChangeHit:
			e := &tavla.EventHit{
				Space: change.From,
			}
			e.Player = player
			ev = e
		case tavla.ChangeTurn:
			e := &tavla.EventTurn{}
			e.Player = player
			ev = e
		case tavla.ChangeWin:
			e := &tavla.EventWin{}
			e.Player = player
			ev = e
			won = true
		default:
			continue
		}
		g.eachClient(func(client *serverClient) {
			client.sendEvent(ev)
		})
	}

	g.eachClient(func(client *serverClient) {
		g.sendBoard(client)
	})
	return won
}

// result returns the record of a won game, including its replay.
func (g *serverGame) result() *gameRecord {
	header := []byte(fmt.Sprintf("i %d %s %s %s", g.started.Unix(), g.playerName(tavla.TeamRed), g.playerName(tavla.TeamWhite), g.Winner))
	replay := append([][]byte{header}, g.replay...)
	return &gameRecord{
		Started: g.started,
		Ended:   time.Now(),
		Player1: g.playerName(tavla.TeamRed),
		Player2: g.playerName(tavla.TeamWhite),
		Winner:  g.Winner,
		Replay:  bytes.Join(replay, []byte("\n")),
	}
}

func (g *serverGame) terminated() bool {
	return g.client1 == nil && g.client2 == nil
}
