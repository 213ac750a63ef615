package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"time"

	"codeberg.org/tslocum/gotext"
	"codeberg.org/tslocum/tavla"
)

type serverClient struct {
	id          int
	json        bool
	name        []byte
	rating      int
	language    string
	loggedIn    bool
	connected   int64
	active      int64
	lastPing    int64
	commands    chan []byte
	team        tavla.Team
	terminating bool
	tavla.Client
}

func (c *serverClient) sendEvent(e interface{}) {
	// JSON formatted messages.
	if c.json {
		switch ev := e.(type) {
		case *tavla.EventWelcome:
			ev.Type = tavla.EventTypeWelcome
		case *tavla.EventHelp:
			ev.Type = tavla.EventTypeHelp
		case *tavla.EventPing:
			ev.Type = tavla.EventTypePing
		case *tavla.EventNotice:
			ev.Type = tavla.EventTypeNotice
		case *tavla.EventSay:
			ev.Type = tavla.EventTypeSay
		case *tavla.EventList:
			ev.Type = tavla.EventTypeList
		case *tavla.EventJoined:
			ev.Type = tavla.EventTypeJoined
		case *tavla.EventFailedJoin:
			ev.Type = tavla.EventTypeFailedJoin
		case *tavla.EventLeft:
			ev.Type = tavla.EventTypeLeft
		case *tavla.EventBoard:
			ev.Type = tavla.EventTypeBoard
		case *tavla.EventRolled:
			ev.Type = tavla.EventTypeRolled
		case *tavla.EventFailedRoll:
			ev.Type = tavla.EventTypeFailedRoll
		case *tavla.EventMoved:
			ev.Type = tavla.EventTypeMoved
		case *tavla.EventHit:
			ev.Type = tavla.EventTypeHit
		case *tavla.EventFailedMove:
			ev.Type = tavla.EventTypeFailedMove
		case *tavla.EventTurn:
			ev.Type = tavla.EventTypeTurn
		case *tavla.EventWin:
			ev.Type = tavla.EventTypeWin
		default:
			log.Panicf("unknown event type %+v", ev)
		}

		buf, err := json.Marshal(e)
		if err != nil {
			panic(err)
		}
		c.Write(buf)
		return
	}

	// Human-readable messages.
	switch ev := e.(type) {
	case *tavla.EventWelcome:
		c.Write([]byte(fmt.Sprintf("welcome %s there are %d clients playing %d matches.", ev.PlayerName, ev.Clients, ev.Games)))
	case *tavla.EventHelp:
		c.Write([]byte("helpstart Help text:"))
		c.Write([]byte(fmt.Sprintf("help %s", ev.Message)))
		c.Write([]byte("helpend End of help text."))
	case *tavla.EventPing:
		c.Write([]byte(fmt.Sprintf("ping %s", ev.Message)))
	case *tavla.EventNotice:
		c.Write([]byte(fmt.Sprintf("notice %s", ev.Message)))
	case *tavla.EventSay:
		c.Write([]byte(fmt.Sprintf("say %s %s", ev.Player, ev.Message)))
	case *tavla.EventList:
		c.Write([]byte("liststart Matches list:"))
		for _, g := range ev.Games {
			password := 0
			if g.Password {
				password = 1
			}
			name := "(No name)"
			if g.Name != "" {
				name = g.Name
			}
			c.Write([]byte(fmt.Sprintf("game %d %d %d %s", g.ID, password, g.Players, name)))
		}
		c.Write([]byte("listend End of matches list."))
	case *tavla.EventJoined:
		c.Write([]byte(fmt.Sprintf("joined %d %s %s", ev.GameID, ev.PlayerNumber, ev.Player)))
	case *tavla.EventFailedJoin:
		c.Write([]byte(fmt.Sprintf("failedjoin %s", ev.Reason)))
	case *tavla.EventLeft:
		c.Write([]byte(fmt.Sprintf("left %s", ev.Player)))
	case *tavla.EventRolled:
		c.Write([]byte(fmt.Sprintf("rolled %s %d %d", ev.Player, ev.Roll1, ev.Roll2)))
	case *tavla.EventFailedRoll:
		c.Write([]byte(fmt.Sprintf("failedroll %s", ev.Reason)))
	case *tavla.EventMoved:
		c.Write([]byte(fmt.Sprintf("moved %s %s/%s", ev.Player, tavla.FormatSpace(ev.From), tavla.FormatSpace(ev.To))))
	case *tavla.EventHit:
		c.Write([]byte(fmt.Sprintf("hit %s %s", ev.Player, tavla.FormatSpace(ev.Space))))
	case *tavla.EventFailedMove:
		c.Write([]byte(fmt.Sprintf("failedmove %s/%s %s", tavla.FormatSpace(ev.From), tavla.FormatSpace(ev.To), ev.Reason)))
	case *tavla.EventTurn:
		c.Write([]byte(fmt.Sprintf("turn %s", ev.Player)))
	case *tavla.EventWin:
		c.Write([]byte(fmt.Sprintf("win %s wins!", ev.Player)))
	case *tavla.EventBoard:
		// Text clients receive the drawing from serverGame.sendBoard.
	default:
		log.Printf("warning: skipped sending unknown event to non-json client: %+v", ev)
	}
}

func (c *serverClient) sendNotice(message string) {
	c.sendEvent(&tavla.EventNotice{
		Message: message,
	})
}

func (c *serverClient) label() string {
	if len(c.name) > 0 {
		return string(c.name)
	}
	return strconv.Itoa(c.id)
}

func (c *serverClient) Terminate(reason string) {
	if c.Terminated() || c.terminating {
		return
	}
	c.terminating = true

	if reason != "" {
		c.sendNotice(gotext.GetD(c.language, "Connection terminated: %s", reason))
	} else {
		c.sendNotice(gotext.GetD(c.language, "Connection terminated."))
	}

	go func() {
		time.Sleep(time.Second)
		c.Client.Terminate(reason)
	}()
}

func logClientRead(msg []byte) {
	msgLower := bytes.ToLower(msg)
	loginJSON := bytes.HasPrefix(msgLower, []byte("loginjson ")) || bytes.HasPrefix(msgLower, []byte("lj "))
	joinPrivate := bytes.HasPrefix(msgLower, []byte("join ")) || bytes.HasPrefix(msgLower, []byte("j "))
	createPrivate := bytes.HasPrefix(msgLower, []byte("create private ")) || bytes.HasPrefix(msgLower, []byte("c private "))
	switch {
	case bytes.HasPrefix(msgLower, []byte("login ")) || bytes.HasPrefix(msgLower, []byte("l ")) || loginJSON:
		split := bytes.Split(msg, []byte(" "))
		var clientName []byte
		var username []byte
		l := len(split)
		if l > 1 {
			if loginJSON {
				clientName = split[1]
				if l > 2 {
					username = split[2]
				}
			} else {
				username = split[1]
			}
		}
		if len(clientName) == 0 {
			clientName = []byte("unspecified")
		}
		log.Printf("<- %s %s %s", split[0], clientName, username)
	case joinPrivate || createPrivate:
		log.Printf("<- %s", maskPassword(msg))
	case !bytes.HasPrefix(msgLower, []byte("list")) && !bytes.HasPrefix(msgLower, []byte("ls")) && !bytes.HasPrefix(msgLower, []byte("pong")):
		log.Printf("<- %s", msg)
	}
}

// maskPassword hides the third word of a command, which is the table
// password of both "join id password" and "create private password".
func maskPassword(msg []byte) []byte {
	split := bytes.Fields(msg)
	if len(split) <= 2 {
		return msg
	}
	split[2] = []byte("*******")
	return bytes.Join(split, []byte(" "))
}
