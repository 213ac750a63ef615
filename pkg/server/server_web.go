package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"codeberg.org/tslocum/tavla"
	"github.com/gorilla/mux"
	"golang.org/x/crypto/sha3"
)

func (s *server) addCORSHeader(f func(http.ResponseWriter, *http.Request)) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		f(w, r)
	}
}

func (s *server) router() *mux.Router {
	m := mux.NewRouter()
	handle := func(path string, f func(http.ResponseWriter, *http.Request)) *mux.Route {
		return m.HandleFunc(path, s.addCORSHeader(f))
	}

	handle("/match/{id:[0-9]+}", s.handleMatch)
	handle("/matches.json", s.handleListMatches)
	handle("/", s.handleWebSocket)
	return m
}

func (s *server) listenWebSocket(address string) {
	log.Printf("Listening for WebSocket connections on %s...", address)

	err := http.ListenAndServe(address, s.router())
	log.Fatalf("failed to listen on %s: %s", address, err)
}

func (s *server) cachedMatches() []byte {
	s.gamesCacheLock.Lock()
	defer s.gamesCacheLock.Unlock()

	if time.Since(s.gamesCacheTime) < 5*time.Second {
		return s.gamesCache
	}

	s.gamesLock.RLock()
	defer s.gamesLock.RUnlock()

	var games []*tavla.GameListing
	for _, g := range s.games {
		listing := g.listing()
		if listing == nil || listing.Password || listing.Players == 2 {
			continue
		}
		games = append(games, listing)
	}

	s.gamesCacheTime = time.Now()
	if len(games) == 0 {
		s.gamesCache = []byte("[]")
		return s.gamesCache
	}
	var err error
	s.gamesCache, err = json.Marshal(games)
	if err != nil {
		log.Fatalf("failed to marshal %+v: %s", games, err)
	}
	return s.gamesCache
}

func (s *server) handleMatch(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := strconv.Atoi(vars["id"])
	if err != nil || id <= 0 {
		http.NotFound(w, r)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), clientTimeout)
	defer cancel()

	record, err := s.recorder.matchInfo(ctx, id)
	if err != nil {
		log.Printf("failed to retrieve match: %s", err)
	}
	if record == nil || len(record.Replay) == 0 {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/plain")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s_%s_%s.match"`, record.Started.In(s.tz).Format("20060102-1504"), record.Player1, record.Player2))
	w.Write(record.Replay)
}

func (s *server) handleListMatches(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write(s.cachedMatches())
}

func (s *server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	const bufferSize = 8
	commands := make(chan []byte, bufferSize)
	events := make(chan []byte, bufferSize)

	wsClient := newWebSocketClient(r, w, s.hashIP(r.RemoteAddr), commands, events, s.options.Verbose)
	if wsClient == nil {
		return
	}

	now := time.Now().Unix()

	c := &serverClient{
		id:        <-s.newClientIDs,
		language:  "tavla-en",
		connected: now,
		active:    now,
		commands:  commands,
		Client:    wsClient,
	}
	s.handleClient(c)
}

// hashIP returns a salted hash of the host part of address, so client
// addresses are never logged or stored in the clear.
func (s *server) hashIP(address string) string {
	leftBracket, rightBracket := strings.IndexByte(address, '['), strings.IndexByte(address, ']')
	if leftBracket != -1 && rightBracket != -1 && rightBracket > leftBracket {
		address = address[leftBracket+1 : rightBracket]
	} else if strings.IndexByte(address, '.') != -1 {
		colon := strings.IndexByte(address, ':')
		if colon != -1 {
			address = address[:colon]
		}
	}

	buf := []byte(address + s.options.IPSalt)
	h := make([]byte, 64)
	sha3.ShakeSum256(h, buf)
	return fmt.Sprintf("%x", h)
}
