package tavla

// Client is a connection to a player, implemented by each server transport.
type Client interface {
	Address() string
	HandleReadWrite()
	Write(message []byte)
	Terminate(reason string)
	Terminated() bool
}
