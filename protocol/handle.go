package protocol

// PeerHandle lets the worker write a reply back to the specific peer an
// inbound message arrived from.
type PeerHandle interface {
	Write(msg Message)
}

// ServerHandle lets the worker broadcast a message to every connected peer
// and initiate outbound connections. The core only consumes this
// interface; the concrete transport (socket server, peer registry,
// connection lifecycle) lives outside it.
type ServerHandle interface {
	Broadcast(msg Message)
	Connect(address string) error
}

// InboundMessage is what arrives on the worker pool's shared inbound
// channel: the undecoded bytes and a handle back to the peer that sent
// them.
type InboundMessage struct {
	Bytes []byte
	Peer  PeerHandle
}
