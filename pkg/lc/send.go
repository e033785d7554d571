package lc

import (
	"crypto/rand"
	"encoding/binary"
	"net"
	"time"

	"golang.org/x/net/ipv6"
)

// Send transmits msg on the channel's bound socket, addressed to the
// channel's group address. The channel's sequence counter is advanced
// before the header is built, and a fresh random nonce is generated for
// every send. A zero Timestamp is filled in with the current time. A
// zero-length payload is a valid, sendable message; there is simply
// nothing after the header.
func (c *Channel) Send(msg *Message) (int, error) {
	c.mu.Lock()
	sock := c.sock
	addr := c.addr
	c.mu.Unlock()
	if sock == nil {
		return 0, newError(ErrSocketRequired, nil)
	}

	if msg.Timestamp == 0 {
		msg.Timestamp = time.Now().UnixNano()
	}
	msg.Seq = c.nextSendSeq()
	var nonceBuf [8]byte
	if _, err := rand.Read(nonceBuf[:]); err != nil {
		return 0, newError(ErrAlloc, err)
	}
	msg.Nonce = binary.BigEndian.Uint64(nonceBuf[:])

	return sock.writeTo(msg, &addr)
}

// writeTo frames msg and writes it to dst over the socket's packet
// connection.
func (s *Socket) writeTo(msg *Message, dst *net.UDPAddr) (int, error) {
	header := encodeHeader(msg, len(msg.Payload))
	frame := append(header, msg.Payload...)
	n, err := s.pconn.WriteTo(frame, &ipv6.ControlMessage{}, dst)
	if err != nil {
		return n, err
	}
	return n, nil
}

// Send writes data as a single datagram to every channel currently bound
// to the socket, each addressed to its own group. It returns the total
// number of bytes written (header plus payload) across all channels. Any failure
// aborts the fan-out and the send is reported as failed as a whole; the
// partial byte count is discarded since a caller cannot usefully act on
// it.
func (s *Socket) Send(data []byte) (int, error) {
	channels := s.ctx.channelsOnSocket(s)
	total := 0
	for _, c := range channels {
		msg := NewMessageData(data, nil, nil)
		n, err := c.Send(msg)
		if err != nil {
			return -1, err
		}
		total += n
	}
	return total, nil
}

// SendMsg is the Message-typed form of Send: the same msg is sent to
// every channel bound to the socket. Each send overwrites msg's Seq and
// Nonce, and the first one fills in a zero Timestamp.
func (s *Socket) SendMsg(msg *Message) (int, error) {
	channels := s.ctx.channelsOnSocket(s)
	total := 0
	for _, c := range channels {
		n, err := c.Send(msg)
		if err != nil {
			return -1, err
		}
		total += n
	}
	return total, nil
}
