package tavla

// commands are always sent TO the server

const (
	CommandLogin      = "login"      // Log in with an optional username.
	CommandLoginJSON  = "loginjson"  // Log in and receive JSON events.
	CommandHelp       = "help"       // Print help information.
	CommandJSON       = "json"       // Toggle JSON formatted events.
	CommandSay        = "say"        // Send a chat message.
	CommandList       = "list"       // List available tables.
	CommandCreate     = "create"     // Create a table.
	CommandJoin       = "join"       // Join a table.
	CommandLeave      = "leave"      // Leave a table.
	CommandRoll       = "roll"       // Roll the dice.
	CommandSelect     = "select"     // Select the point to move from.
	CommandDeselect   = "deselect"   // Clear the selected point.
	CommandMove       = "move"       // Move the selected checker.
	CommandEnter      = "enter"      // Enter a checker from the bar.
	CommandOff        = "off"        // Bear a checker off.
	CommandClick      = "click"      // Click the dice, the turn changer or a point.
	CommandPass       = "pass"       // Give up the rest of the turn.
	CommandBoard      = "board"      // Print the current table state.
	CommandReset      = "reset"      // Start a new game once the game is won.
	CommandPong       = "pong"       // Response to server ping.
	CommandDisconnect = "disconnect" // Disconnect from the server.
)

var HelpText = map[string]string{
	CommandLogin:      "[username] - Log in. A random username is assigned when none is provided.",
	CommandLoginJSON:  "<client name/language> [username] - Log in and receive events in JSON format.",
	CommandHelp:       "[command] - Request help for all commands, or optionally a specific command.",
	CommandJSON:       "<on/off> - Turn JSON formatted events on or off.",
	CommandSay:        "<message> - Send a chat message to the player you are playing against.",
	CommandList:       "- List all tables.",
	CommandCreate:     "<public>/<private [password]> [name] - Create a table. A table name is assigned when none is provided.",
	CommandJoin:       "<id> [password] - Join a table.",
	CommandLeave:      "- Leave the table.",
	CommandRoll:       "- Roll the dice.",
	CommandSelect:     "<point> - Select the point to move a checker from.",
	CommandDeselect:   "- Clear the selected point.",
	CommandMove:       "<point> - Move the selected checker to a point.",
	CommandEnter:      "<point> - Enter a checker from the bar onto a point.",
	CommandOff:        "<point> - Bear a checker off from a point.",
	CommandClick:      "<dice/pass/point> - Click the dice, the turn changer or a point.",
	CommandPass:       "- Give up the rest of your turn when no legal move remains.",
	CommandBoard:      "- Print the current table state.",
	CommandReset:      "- Start a new game at the table once the game is won.",
	CommandPong:       "<message> - Sent in response to server ping event to prevent the connection from timing out.",
	CommandDisconnect: "- Disconnect from the server.",
}
