package server

//go:generate xgotext -no-locations -default tavla -in . -out locales

import (
	"bytes"
	"embed"
	"fmt"
	"log"
	"net"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"codeberg.org/tslocum/gotext"
	"codeberg.org/tslocum/tavla"
	"github.com/caarlos0/env/v11"
	"golang.org/x/text/language"
)

const clientTimeout = 40 * time.Second

const maxUsernameLength = 18

var (
	onlyNumbers            = regexp.MustCompile(`^[0-9]+$`)
	alphaNumericUnderscore = regexp.MustCompile(`^[A-Za-z0-9_]+$`)
)

//go:embed locales
var assetFS embed.FS

var englishIdentifier = []byte("en")

func init() {
	gotext.SetDomain("tavla-en")
}

// Options configures a server. Fields are read from TAVLA_* environment
// variables by ParseOptions and may then be overridden by flags.
type Options struct {
	DataSource   string `env:"TAVLA_DB"`
	PasswordSalt string `env:"TAVLA_SALT_PASSWORD"`
	IPSalt       string `env:"TAVLA_SALT_IP"`
	TZ           string `env:"TAVLA_TZ" envDefault:"UTC"`
	MOTD         string `env:"TAVLA_MOTD"`
	RelayChat    bool   `env:"TAVLA_RELAY_CHAT"`
	Verbose      bool   `env:"TAVLA_VERBOSE"`
}

// ParseOptions returns options populated from the environment.
func ParseOptions() (*Options, error) {
	op := &Options{}
	if err := env.Parse(op); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return op, nil
}

type serverCommand struct {
	client  *serverClient
	command []byte
	leave   bool // Sent once the client has disconnected.
}

type server struct {
	clients      []*serverClient
	games        []*serverGame
	listeners    []net.Listener
	newGameIDs   chan int
	newClientIDs chan int
	commands     chan serverCommand
	welcome      []byte

	gamesLock   sync.RWMutex
	clientsLock sync.Mutex

	gamesCache     []byte
	gamesCacheTime time.Time
	gamesCacheLock sync.Mutex

	sortedCommands []string

	recorder recorder
	roller   tavla.Roller

	tz            *time.Location
	languageTags  []language.Tag
	languageNames [][]byte

	options *Options
}

func NewServer(op *Options) *server {
	if op == nil {
		op = &Options{}
	}
	const bufferSize = 10
	s := &server{
		newGameIDs:   make(chan int),
		newClientIDs: make(chan int),
		commands:     make(chan serverCommand, bufferSize),
		welcome:      []byte("hello Welcome to tavla! Please log in by sending the 'login' command. You may specify a username, otherwise you will be assigned a random username. Have fun!"),
		roller:       tavla.RandomRoller,
		options:      op,
	}
	s.loadLocales()

	for command := range tavla.HelpText {
		s.sortedCommands = append(s.sortedCommands, command)
	}
	sort.Slice(s.sortedCommands, func(i, j int) bool { return s.sortedCommands[i] < s.sortedCommands[j] })

	if op.TZ != "" {
		var err error
		s.tz, err = time.LoadLocation(op.TZ)
		if err != nil {
			log.Fatalf("failed to parse timezone %s: %s", op.TZ, err)
		}
	} else {
		s.tz = time.UTC
	}

	var err error
	s.recorder, err = openRecorder(op.DataSource)
	if err != nil {
		log.Fatalf("failed to connect to database: %s", err)
	}
	if op.DataSource != "" {
		log.Println("Connected to database successfully")
	}

	go s.handleNewGameIDs()
	go s.handleNewClientIDs()
	go s.handleCommands()
	go s.handleGames()
	return s
}

func (s *server) loadLocales() {
	entries, err := assetFS.ReadDir("locales")
	if err != nil {
		log.Fatalf("failed to list files in locales directory: %s", err)
	}

	var availableTags = []language.Tag{
		language.MustParse("en_US"),
	}
	var availableNames = [][]byte{
		[]byte("en"),
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		availableTags = append(availableTags, language.MustParse(entry.Name()))
		availableNames = append(availableNames, []byte(entry.Name()))

		b, err := assetFS.ReadFile(fmt.Sprintf("locales/%s/%s.po", entry.Name(), entry.Name()))
		if err != nil {
			log.Fatalf("failed to read locale %s: %s", entry.Name(), err)
		}

		po := gotext.NewPo()
		po.Parse(b)
		gotext.GetStorage().AddTranslator(fmt.Sprintf("tavla-%s", entry.Name()), po)
	}
	s.languageTags = availableTags
	s.languageNames = availableNames
}

func (s *server) matchLanguage(identifier []byte) []byte {
	if len(identifier) == 0 {
		return englishIdentifier
	}

	tag, err := language.Parse(string(identifier))
	if err != nil {
		return englishIdentifier
	}
	var preferred = []language.Tag{tag}

	useLanguage, index, _ := language.NewMatcher(s.languageTags).Match(preferred...)
	useLanguageCode := useLanguage.String()
	if index < 0 || useLanguageCode == "" || strings.HasPrefix(useLanguageCode, "en") {
		return englishIdentifier
	}
	return s.languageNames[index]
}

// Listen accepts connections on address. The network "ws" serves WebSocket
// clients and the HTTP endpoints, any other network is passed to net.Listen.
func (s *server) Listen(network string, address string) {
	if strings.ToLower(network) == "ws" {
		go s.listenWebSocket(address)
		return
	}

	log.Printf("Listening for %s connections on %s...", strings.ToUpper(network), address)
	listener, err := net.Listen(network, address)
	if err != nil {
		log.Fatalf("failed to listen on %s: %s", address, err)
	}
	go s.handleListener(listener)
	s.listeners = append(s.listeners, listener)
}

func (s *server) handleListener(listener net.Listener) {
	for {
		conn, err := listener.Accept()
		if err != nil {
			log.Printf("stopped accepting connections on %s: %s", listener.Addr(), err)
			return
		}
		go s.handleConnection(conn)
	}
}

// ListenLocal returns a channel of in-memory connections to the server.
func (s *server) ListenLocal() chan net.Conn {
	conns := make(chan net.Conn)
	go s.handleLocal(conns)
	return conns
}

func (s *server) handleLocal(conns chan net.Conn) {
	for {
		local, remote := net.Pipe()

		conns <- local
		go s.handleConnection(remote)
	}
}

// Close stops every listener and closes the database connection.
func (s *server) Close() error {
	for _, listener := range s.listeners {
		listener.Close()
	}
	return s.recorder.Close()
}

func (s *server) clientByUsername(username []byte) *serverClient {
	lower := bytes.ToLower(username)
	for _, c := range s.clients {
		if bytes.Equal(bytes.ToLower(c.name), lower) {
			return c
		}
	}
	return nil
}

func (s *server) addClient(c *serverClient) {
	s.clientsLock.Lock()
	defer s.clientsLock.Unlock()

	s.clients = append(s.clients, c)
}

func (s *server) removeClient(c *serverClient) {
	s.commands <- serverCommand{
		client: c,
		leave:  true,
	}
	c.Terminate("")

	close(c.commands)

	s.clientsLock.Lock()
	defer s.clientsLock.Unlock()

	for i, sc := range s.clients {
		if sc == c {
			s.clients = append(s.clients[:i], s.clients[i+1:]...)
			return
		}
	}
}

// handleGames removes tables once every player has left.
func (s *server) handleGames() {
	t := time.NewTicker(time.Minute)
	for range t.C {
		s.gamesLock.Lock()
		s.removeTerminatedGames()
		s.gamesLock.Unlock()
	}
}

func (s *server) removeTerminatedGames() {
	i := 0
	for _, g := range s.games {
		if !g.terminated() {
			s.games[i] = g
			i++
		}
	}
	for j := i; j < len(s.games); j++ {
		s.games[j] = nil // Allow memory to be deallocated.
	}
	s.games = s.games[:i]
}

func (s *server) handleClient(c *serverClient) {
	s.addClient(c)

	log.Printf("Client %d connected from %s", c.id, c.Address())

	go s.handlePingClient(c)
	go s.handleClientCommands(c)

	c.HandleReadWrite()

	// Remove client.
	s.removeClient(c)

	log.Printf("Client %s disconnected from %s", c.label(), c.Address())
}

func (s *server) handleConnection(conn net.Conn) {
	const bufferSize = 8
	commands := make(chan []byte, bufferSize)
	events := make(chan []byte, bufferSize)

	now := time.Now().Unix()

	c := &serverClient{
		id:        <-s.newClientIDs,
		language:  "tavla-en",
		connected: now,
		active:    now,
		commands:  commands,
		Client:    newSocketClient(conn, s.hashIP(conn.RemoteAddr().String()), commands, events, s.options.Verbose),
	}
	s.sendWelcome(c)
	s.handleClient(c)
}

func (s *server) handlePingClient(c *serverClient) {
	t := time.NewTicker(30 * time.Second)
	defer t.Stop()
	for {
		<-t.C

		if c.Terminated() {
			return
		}

		if !c.loggedIn {
			c.Terminate("User did not send login command within 30 seconds.")
			return
		}

		c.lastPing = time.Now().Unix()
		c.sendEvent(&tavla.EventPing{
			Message: fmt.Sprintf("%d", c.lastPing),
		})
	}
}

func (s *server) handleClientCommands(c *serverClient) {
	var command []byte
	for command = range c.commands {
		s.commands <- serverCommand{
			client:  c,
			command: command,
		}
	}
}

func (s *server) handleNewGameIDs() {
	gameID := 1
	for {
		s.newGameIDs <- gameID
		gameID++
	}
}

func (s *server) handleNewClientIDs() {
	clientID := 1
	for {
		s.newClientIDs <- clientID
		clientID++
	}
}

// randomUsername returns a random guest username, and assumes clients are already locked.
func (s *server) randomUsername() []byte {
	for {
		name := []byte(fmt.Sprintf("Guest_%d", 100+tavla.RandInt(900)))

		if s.clientByUsername(name) == nil {
			return name
		}
	}
}

func (s *server) sendWelcome(c *serverClient) {
	if c.json {
		return
	}
	c.Write(s.welcome)
}

func (s *server) sendMOTD(c *serverClient) {
	if s.options.MOTD == "" {
		return
	}
	c.sendNotice(s.options.MOTD)
}

func (s *server) gameByClient(c *serverClient) *serverGame {
	s.gamesLock.RLock()
	defer s.gamesLock.RUnlock()

	for _, g := range s.games {
		if g.client1 == c || g.client2 == c {
			return g
		}
		for _, spec := range g.spectators {
			if spec == c {
				return g
			}
		}
	}
	return nil
}

func (s *server) gameByID(id int) *serverGame {
	s.gamesLock.RLock()
	defer s.gamesLock.RUnlock()

	for _, g := range s.games {
		if g.id == id && !g.terminated() {
			return g
		}
	}
	return nil
}
