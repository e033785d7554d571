package lc

import "net"

// Opcode identifies the built-in dispatch handler a received message is
// routed through.
type Opcode uint8

const (
	OpData Opcode = 0
	OpPing Opcode = 1
	OpPong Opcode = 2
)

// FreeFunc releases a message's payload buffer. It is invoked at most
// once, from Message.Free.
type FreeFunc func(data []byte, hint any)

// Message is an in-memory record of one datagram, either composed by the
// caller for sending or populated by the receive path.
type Message struct {
	Payload []byte
	Opcode  Opcode
	Seq     uint64
	Nonce   uint64

	// Timestamp is nanoseconds since the Unix epoch. On send, a caller
	// may pre-populate it to override the current clock; on receive it
	// is always the value decoded from the wire.
	Timestamp int64

	Src, Dst         net.IP
	SrcText, DstText string

	SocketID uint32
	Channel  *Channel

	free     FreeFunc
	freeHint any
}

// NewMessage returns a zeroed message ready for the caller to populate.
func NewMessage() *Message {
	return &Message{}
}

// NewMessageData wraps an existing buffer, deferring to free (if non-nil)
// to release it when the message is freed. hint is passed through to free
// unchanged, for callers that need to recover pool or arena context.
func NewMessageData(data []byte, free FreeFunc, hint any) *Message {
	return &Message{Payload: data, free: free, freeHint: hint}
}

// NewMessageSize allocates a fresh payload buffer of the given length.
func NewMessageSize(n int) *Message {
	return &Message{Payload: make([]byte, n)}
}

// Free releases the message's payload via its registered free function,
// if any, and clears the payload reference. It is safe to call more than
// once; only the first call has any effect.
func (m *Message) Free() {
	if m.free != nil {
		m.free(m.Payload, m.freeHint)
		m.free = nil
	}
	m.Payload = nil
}

// ID computes an n-byte identity digest for the message: a keyed hash of
// its payload and source address, with an empty key. Two messages that
// hash to the same ID were, with overwhelming probability, the same
// datagram observed by the same or a cooperating receiver.
func (m *Message) ID(n int) ([]byte, error) {
	data := m.Payload
	if m.Src != nil {
		data = append(append([]byte{}, m.Payload...), m.Src.To16()...)
	}
	return keyedHashN(n, nil, data)
}

// Attr identifies a generic, settable/gettable message field, mirroring
// the protocol's attribute-accessor surface.
type Attr int

const (
	AttrData Attr = iota
	AttrLen
	AttrOpcode
)

// Get reads a generic message attribute.
func (m *Message) Get(attr Attr) (any, error) {
	switch attr {
	case AttrData:
		return m.Payload, nil
	case AttrLen:
		return len(m.Payload), nil
	case AttrOpcode:
		return m.Opcode, nil
	default:
		return nil, newError(ErrMsgAttrUnknown, nil)
	}
}

// Set writes a generic message attribute.
func (m *Message) Set(attr Attr, value any) error {
	switch attr {
	case AttrData:
		data, ok := value.([]byte)
		if !ok {
			return newError(ErrInvalidParams, nil)
		}
		m.Payload = data
	case AttrOpcode:
		op, ok := value.(Opcode)
		if !ok {
			return newError(ErrInvalidParams, nil)
		}
		m.Opcode = op
	default:
		return newError(ErrMsgAttrUnknown, nil)
	}
	return nil
}
