package tavla

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// events are always received FROM the server

type Event struct {
	Type   string
	Player string
}

type EventWelcome struct {
	Event
	PlayerName string
	Clients    int
	Games      int
}

type EventHelp struct {
	Event
	Topic   string
	Message string
}

type EventPing struct {
	Event
	Message string
}

type EventNotice struct {
	Event
	Message string
}

type EventSay struct {
	Event
	Message string
}

type GameListing struct {
	ID       int
	Password bool
	Players  int
	Name     string
}

type EventList struct {
	Event
	Games []GameListing
}

type EventJoined struct {
	Event
	GameID       int
	PlayerNumber Team
}

type EventFailedJoin struct {
	Event
	Reason string
}

type EventLeft struct {
	Event
}

type EventBoard struct {
	Event
	GameState
	PlayerNumber Team
	Player1      Player
	Player2      Player
}

type EventRolled struct {
	Event
	Roll1 int
	Roll2 int
}

type EventFailedRoll struct {
	Event
	Reason string
}

type EventMoved struct {
	Event
	From int
	To   int
}

type EventHit struct {
	Event
	Space int
}

type EventFailedMove struct {
	Event
	From   int
	To     int
	Reason string
}

type EventTurn struct {
	Event
}

type EventWin struct {
	Event
}

const (
	EventTypeWelcome    = "welcome"
	EventTypeHelp       = "help"
	EventTypePing       = "ping"
	EventTypeNotice     = "notice"
	EventTypeSay        = "say"
	EventTypeList       = "list"
	EventTypeJoined     = "joined"
	EventTypeFailedJoin = "failedjoin"
	EventTypeLeft       = "left"
	EventTypeBoard      = "board"
	EventTypeRolled     = "rolled"
	EventTypeFailedRoll = "failedroll"
	EventTypeMoved      = "moved"
	EventTypeHit        = "hit"
	EventTypeFailedMove = "failedmove"
	EventTypeTurn       = "turn"
	EventTypeWin        = "win"
)

// DecodeEvent decodes a JSON formatted event.
func DecodeEvent(message []byte) (interface{}, error) {
	e := &Event{}
	err := json.Unmarshal(message, e)
	if err != nil {
		return nil, err
	}

	var ev interface{}
	switch e.Type {
	case EventTypeWelcome:
		ev = &EventWelcome{}
	case EventTypeHelp:
		ev = &EventHelp{}
	case EventTypePing:
		ev = &EventPing{}
	case EventTypeNotice:
		ev = &EventNotice{}
	case EventTypeSay:
		ev = &EventSay{}
	case EventTypeList:
		ev = &EventList{}
	case EventTypeJoined:
		ev = &EventJoined{}
	case EventTypeFailedJoin:
		ev = &EventFailedJoin{}
	case EventTypeLeft:
		ev = &EventLeft{}
	case EventTypeBoard:
		ev = &EventBoard{}
	case EventTypeRolled:
		ev = &EventRolled{}
	case EventTypeFailedRoll:
		ev = &EventFailedRoll{}
	case EventTypeMoved:
		ev = &EventMoved{}
	case EventTypeHit:
		ev = &EventHit{}
	case EventTypeFailedMove:
		ev = &EventFailedMove{}
	case EventTypeTurn:
		ev = &EventTurn{}
	case EventTypeWin:
		ev = &EventWin{}
	default:
		return nil, fmt.Errorf("failed to decode event: unknown event type: %s", e.Type)
	}
	err = json.Unmarshal(message, ev)
	if err != nil {
		return nil, err
	}
	return ev, nil
}

// FormatSpace returns the name players use for a space: points are numbered
// 1-24, followed by "bar" and "off".
func FormatSpace(space int) string {
	switch {
	case space >= 0 && space < BoardPoints:
		return strconv.Itoa(space + 1)
	case space == SpaceBarRed || space == SpaceBarWhite:
		return "bar"
	case space == SpaceOffRed || space == SpaceOffWhite:
		return "off"
	default:
		return "?"
	}
}
