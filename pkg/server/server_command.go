package server

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"codeberg.org/tslocum/gotext"
	"codeberg.org/tslocum/tavla"
)

func (s *server) handleCommands() {
	var cmd serverCommand
	for cmd = range s.commands {
		if cmd.client == nil {
			log.Panicf("nil client with command %s", cmd.command)
		} else if cmd.leave {
			s.leaveGame(cmd.client)
			continue
		} else if cmd.client.terminating || cmd.client.Terminated() {
			continue
		}
		s.handleCommand(cmd.client, cmd.command)
	}
}

func (s *server) handleCommand(client *serverClient, command []byte) {
	command = bytes.TrimSpace(command)

	firstSpace := bytes.IndexByte(command, ' ')
	var keyword string
	var startParameters int
	if firstSpace == -1 {
		keyword = string(command)
		startParameters = len(command)
	} else {
		keyword = string(command[:firstSpace])
		startParameters = firstSpace + 1
	}
	if keyword == "" {
		return
	}
	keyword = strings.ToLower(keyword)
	params := bytes.Fields(command[startParameters:])

	client.active = time.Now().Unix()

	// Require users to send login command first.
	if !client.loggedIn {
		switch keyword {
		case tavla.CommandLogin, tavla.CommandLoginJSON, "l", "lj":
			s.handleLogin(client, keyword, params)
		default:
			client.Terminate(gotext.GetD(client.language, "You must login before using other commands."))
		}
		return
	}

	clientGame := s.gameByClient(client)

	switch keyword {
	case tavla.CommandHelp, "h":
		if len(params) > 0 {
			command := strings.ToLower(string(params[0]))
			text, ok := tavla.HelpText[command]
			if !ok {
				client.sendNotice(gotext.GetD(client.language, "Unknown command: %s", command))
				return
			}
			client.sendEvent(&tavla.EventHelp{
				Topic:   command,
				Message: command + " " + text,
			})
			return
		}

		client.sendNotice(gotext.GetD(client.language, "Available commands:"))
		for _, command := range s.sortedCommands {
			client.sendNotice(command + " " + tavla.HelpText[command])
		}
	case tavla.CommandJSON:
		sendUsage := func() {
			client.sendNotice(gotext.GetD(client.language, "To enable JSON formatted messages, send 'json on'. To disable JSON formatted messages, send 'json off'."))
		}
		if len(params) != 1 {
			sendUsage()
			return
		}
		switch strings.ToLower(string(params[0])) {
		case "on":
			client.json = true
			client.sendNotice(gotext.GetD(client.language, "JSON formatted messages enabled."))
		case "off":
			client.json = false
			client.sendNotice(gotext.GetD(client.language, "JSON formatted messages disabled."))
		default:
			sendUsage()
		}
	case tavla.CommandSay, "s":
		if len(params) == 0 {
			return
		}
		if clientGame == nil {
			client.sendNotice(gotext.GetD(client.language, "Message not sent: You are not currently in a match."))
			return
		}
		opponent := clientGame.opponent(client)
		if opponent == nil {
			client.sendNotice(gotext.GetD(client.language, "Message not sent: There is no one else in the match."))
			return
		}
		ev := &tavla.EventSay{
			Message: string(bytes.Join(params, []byte(" "))),
		}
		ev.Player = string(client.name)
		opponent.sendEvent(ev)
		if s.options.RelayChat {
			for _, spectator := range clientGame.spectators {
				spectator.sendEvent(ev)
			}
		}
	case tavla.CommandList, "ls":
		ev := &tavla.EventList{}

		s.gamesLock.RLock()
		for _, g := range s.games {
			listing := g.listing()
			if listing == nil {
				continue
			}
			ev.Games = append(ev.Games, *listing)
		}
		s.gamesLock.RUnlock()

		client.sendEvent(ev)
	case tavla.CommandCreate, "c":
		s.handleCreate(client, clientGame, params)
	case tavla.CommandJoin, "j":
		s.handleJoin(client, clientGame, params)
	case tavla.CommandLeave:
		if clientGame == nil {
			client.sendNotice(gotext.GetD(client.language, "You are not currently in a match."))
			return
		}
		s.leaveGame(client)
	case tavla.CommandRoll, "r":
		if reason := s.playable(client, clientGame); reason != "" {
			client.sendEvent(&tavla.EventFailedRoll{
				Reason: reason,
			})
			return
		}
		changes := clientGame.RollDice()
		if changes == nil {
			client.sendEvent(&tavla.EventFailedRoll{
				Reason: gotext.GetD(client.language, "You may not roll at this time."),
			})
			return
		}
		s.play(clientGame, changes)
	case tavla.CommandSelect, tavla.CommandDeselect, tavla.CommandMove, "m", "mv", tavla.CommandEnter, tavla.CommandOff:
		s.handleMove(client, clientGame, keyword, params)
	case tavla.CommandClick:
		if reason := s.playable(client, clientGame); reason != "" {
			failMove(client, -1, -1, reason)
			return
		}
		if len(params) != 1 {
			failMove(client, -1, -1, gotext.GetD(client.language, "Please specify the dice, the turn changer or a point to click."))
			return
		}
		target, err := tavla.ParseTarget(string(params[0]))
		if err != nil {
			failMove(client, -1, -1, gotext.GetD(client.language, "Invalid target."))
			return
		} else if target.Kind == tavla.TargetTurnChanger && clientGame.HasLegalMove() {
			failMove(client, -1, -1, gotext.GetD(client.language, "You may not pass while a legal move remains."))
			return
		}
		changes := clientGame.Click(target)
		if changes == nil {
			from := -1
			if target.Kind == tavla.TargetPoint {
				from = target.Point
			}
			failMove(client, from, -1, gotext.GetD(client.language, "Nothing happened."))
			return
		}
		s.play(clientGame, changes)
	case tavla.CommandPass, "p":
		if reason := s.playable(client, clientGame); reason != "" {
			client.sendNotice(reason)
			return
		} else if clientGame.HasLegalMove() {
			client.sendNotice(gotext.GetD(client.language, "You may not pass while a legal move remains."))
			return
		}
		changes := clientGame.Pass()
		if changes == nil {
			client.sendNotice(gotext.GetD(client.language, "You may not pass until you have rolled."))
			return
		}
		s.play(clientGame, changes)
	case tavla.CommandBoard, "b":
		if clientGame == nil {
			client.sendNotice(gotext.GetD(client.language, "You are not currently in a match."))
			return
		}
		clientGame.sendBoard(client)
	case tavla.CommandReset:
		if clientGame == nil {
			client.sendNotice(gotext.GetD(client.language, "You are not currently in a match."))
			return
		} else if client.team == tavla.TeamNone {
			client.sendNotice(gotext.GetD(client.language, "Command ignored: You are spectating this match."))
			return
		} else if clientGame.Winner == tavla.TeamNone {
			client.sendNotice(gotext.GetD(client.language, "The current game has not finished."))
			return
		}
		clientGame.reset()
		clientGame.eachClient(func(c *serverClient) {
			c.sendNotice(gotext.GetD(c.language, "%s started a new game.", client.name))
			clientGame.sendBoard(c)
		})
	case tavla.CommandPong:
		// Do nothing.
	case tavla.CommandDisconnect:
		client.Terminate("Client disconnected")
	default:
		client.sendNotice(gotext.GetD(client.language, "Unknown command: %s", keyword))
	}
}

func (s *server) handleLogin(client *serverClient, keyword string, params [][]byte) {
	if keyword == tavla.CommandLoginJSON || keyword == "lj" {
		client.json = true
	}

	var username []byte
	if client.json {
		if len(params) > 0 {
			slashIndex := bytes.IndexRune(params[0], '/')
			if slashIndex != -1 {
				client.language = "tavla-" + string(s.matchLanguage(params[0][slashIndex+1:]))
			}
			if len(params) > 1 {
				username = params[1]
			}
		}
	} else if len(params) > 0 {
		username = params[0]
	}

	s.clientsLock.Lock()
	if len(username) == 0 {
		username = s.randomUsername()
	} else if reason := s.checkUsername(client, username); reason != "" {
		s.clientsLock.Unlock()
		client.Terminate(reason)
		return
	}
	client.name = username
	client.loggedIn = true
	clients := len(s.clients)
	s.clientsLock.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), clientTimeout)
	defer cancel()
	rating, err := s.recorder.rating(ctx, string(username))
	if err != nil {
		log.Printf("failed to retrieve rating of %s: %s", username, err)
		rating = defaultRating
	}
	client.rating = rating

	s.gamesLock.RLock()
	games := len(s.games)
	s.gamesLock.RUnlock()

	client.sendEvent(&tavla.EventWelcome{
		PlayerName: string(client.name),
		Clients:    clients,
		Games:      games,
	})

	log.Printf("Client %d logged in as %s", client.id, client.name)

	s.sendMOTD(client)
}

// checkUsername returns the reason username may not be used, and assumes
// clients are already locked.
func (s *server) checkUsername(client *serverClient, username []byte) string {
	switch {
	case !alphaNumericUnderscore.Match(username):
		return gotext.GetD(client.language, "Invalid username: must contain only letters, numbers and underscores.")
	case onlyNumbers.Match(username):
		return gotext.GetD(client.language, "Invalid username: must contain at least one non-numeric character.")
	case len(username) > maxUsernameLength:
		return gotext.GetD(client.language, "Invalid username: must be %d characters or less.", maxUsernameLength)
	case bytes.HasPrefix(bytes.ToLower(username), []byte("guest_")):
		return gotext.GetD(client.language, "Invalid username: names starting with guest_ are reserved.")
	case s.clientByUsername(username) != nil:
		return gotext.GetD(client.language, "That username is already in use.")
	}
	return ""
}

func (s *server) handleCreate(client *serverClient, clientGame *serverGame, params [][]byte) {
	if clientGame != nil {
		client.sendNotice(gotext.GetD(client.language, "Failed to create match: Please leave the match you are in before creating another."))
		return
	}

	sendUsage := func() {
		client.sendNotice(gotext.GetD(client.language, "To create a public match please specify public. To create a private match please specify private and a password."))
	}
	if len(params) == 0 {
		sendUsage()
		return
	}

	var gamePassword []byte
	var gameName []byte
	switch strings.ToLower(string(params[0])) {
	case "public":
		gameName = bytes.Join(params[1:], []byte(" "))
	case "private":
		if len(params) < 2 {
			sendUsage()
			return
		}
		gamePassword = params[1]
		gameName = bytes.Join(params[2:], []byte(" "))
	default:
		sendUsage()
		return
	}

	// Set default game name.
	if len(bytes.TrimSpace(gameName)) == 0 {
		abbr := "'s"
		lastLetter := client.name[len(client.name)-1]
		if lastLetter == 's' || lastLetter == 'S' {
			abbr = "'"
		}
		gameName = []byte(fmt.Sprintf("%s%s match", client.name, abbr))
	}

	g := newServerGame(<-s.newGameIDs, s.roller)
	g.name = gameName
	if len(gamePassword) != 0 {
		err := g.setPassword(gamePassword, s.options.PasswordSalt)
		if err != nil {
			log.Printf("failed to create match: %s", err)
			client.sendNotice(gotext.GetD(client.language, "Failed to create match."))
			return
		}
	}

	s.gamesLock.Lock()
	s.games = append(s.games, g)
	g.addClient(client)
	s.gamesLock.Unlock()

	client.sendNotice(gotext.GetD(client.language, "Created match: %s", g.name))
}

func (s *server) handleJoin(client *serverClient, clientGame *serverGame, params [][]byte) {
	if clientGame != nil {
		client.sendEvent(&tavla.EventFailedJoin{
			Reason: gotext.GetD(client.language, "Please leave the match you are in before joining another."),
		})
		return
	} else if len(params) == 0 {
		client.sendNotice(gotext.GetD(client.language, "To join a match please specify its ID or the name of a player in the match. To join a private match, a password must also be specified."))
		return
	}

	var g *serverGame
	if onlyNumbers.Match(params[0]) {
		gameID, err := strconv.Atoi(string(params[0]))
		if err == nil && gameID > 0 {
			g = s.gameByID(gameID)
		}
	} else {
		s.clientsLock.Lock()
		sc := s.clientByUsername(params[0])
		s.clientsLock.Unlock()
		if sc != nil {
			g = s.gameByClient(sc)
		}
	}
	if g == nil {
		client.sendEvent(&tavla.EventFailedJoin{
			Reason: gotext.GetD(client.language, "Match not found."),
		})
		return
	}

	if !g.checkPassword(bytes.Join(params[1:], []byte(" ")), s.options.PasswordSalt) {
		client.sendEvent(&tavla.EventFailedJoin{
			Reason: gotext.GetD(client.language, "Invalid password."),
		})
		return
	}

	s.gamesLock.Lock()
	spectator := g.addClient(client)
	s.gamesLock.Unlock()

	client.sendNotice(gotext.GetD(client.language, "Joined match: %s", g.name))
	if spectator {
		client.sendNotice(gotext.GetD(client.language, "You are spectating this match."))
	}
}

func (s *server) leaveGame(client *serverClient) {
	g := s.gameByClient(client)
	if g == nil {
		return
	}

	s.gamesLock.Lock()
	g.removeClient(client)
	s.gamesLock.Unlock()
}

func (s *server) handleMove(client *serverClient, clientGame *serverGame, keyword string, params [][]byte) {
	if reason := s.playable(client, clientGame); reason != "" {
		failMove(client, -1, -1, reason)
		return
	}

	if keyword == tavla.CommandDeselect {
		if clientGame.DeselectSource() == nil {
			failMove(client, -1, -1, gotext.GetD(client.language, "No point is selected."))
			return
		}
		clientGame.eachClient(func(c *serverClient) {
			clientGame.sendBoard(c)
		})
		return
	}

	point, ok := parsePoint(params)
	if !ok {
		failMove(client, -1, -1, gotext.GetD(client.language, "Please specify a point numbered 1-24."))
		return
	}

	var changes []tavla.Change
	from, to := point, -1
	switch keyword {
	case tavla.CommandSelect:
		changes = clientGame.SelectSource(point)
	case tavla.CommandEnter:
		from, to = barSpace(client.team), point
		changes = clientGame.ApplyMoveFromBar(point)
	case tavla.CommandOff:
		changes = clientGame.AttemptBearOff(point)
	default:
		src, selected := clientGame.Selected()
		if !selected {
			failMove(client, -1, point, gotext.GetD(client.language, "Please select a point to move from first."))
			return
		}
		from, to = src, point
		changes = clientGame.ApplyMove(src, point)
	}
	if changes == nil {
		failMove(client, from, to, gotext.GetD(client.language, "Illegal move."))
		return
	}
	s.play(clientGame, changes)
}

// playable returns the translated reason client may not act on the board of
// g, or an empty string when it is the client's turn.
func (s *server) playable(client *serverClient, g *serverGame) string {
	if g == nil {
		return gotext.GetD(client.language, "You are not currently in a match.")
	}
	return g.mayPlay(client)
}

// play announces accepted board changes and records the game once it is won.
func (s *server) play(g *serverGame, changes []tavla.Change) {
	if !g.play(changes) {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), clientTimeout)
	defer cancel()

	id, err := s.recorder.recordGame(ctx, g.result())
	if err != nil {
		log.Printf("failed to record game result: %s", err)
	} else if id != 0 {
		g.eachClient(func(c *serverClient) {
			c.sendNotice(gotext.GetD(c.language, "Replay saved as match %d.", id))
		})
	}

	winner, loser := g.Winner, g.Winner.Opponent()
	if !rated(g.playerName(winner), g.playerName(loser)) {
		return
	}
	winnerRating, loserRating, err := s.recorder.recordResult(ctx, g.playerName(winner), g.playerName(loser))
	if err != nil {
		log.Printf("failed to record match result: %s", err)
		return
	}
	g.player(winner).Rating = winnerRating / 100
	g.player(loser).Rating = loserRating / 100
	g.client(winner).rating = winnerRating
	g.client(loser).rating = loserRating
	g.eachClient(func(c *serverClient) {
		if c.json {
			g.sendBoard(c)
		}
	})
}

func failMove(client *serverClient, from int, to int, reason string) {
	client.sendEvent(&tavla.EventFailedMove{
		From:   from,
		To:     to,
		Reason: reason,
	})
}

// parsePoint parses a single point numbered 1-24 and returns its index.
func parsePoint(params [][]byte) (int, bool) {
	if len(params) != 1 {
		return 0, false
	}
	target, err := tavla.ParseTarget(string(params[0]))
	if err != nil || target.Kind != tavla.TargetPoint {
		return 0, false
	}
	return target.Point, true
}

func barSpace(team tavla.Team) int {
	if team == tavla.TeamWhite {
		return tavla.SpaceBarWhite
	}
	return tavla.SpaceBarRed
}
