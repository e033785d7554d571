package lc

import (
	"log"
	"net"
)

// maxDatagram bounds the buffer recvOne allocates per receive. IPv6 UDP
// payloads larger than this are not expected by this protocol and are
// dropped rather than accepted into an unbounded allocation.
const maxDatagram = 65535

// recvOne blocks for a single datagram on the socket, decodes its wire
// header, and returns the resulting Message together with the channel it
// was addressed to (nil if the destination group is not a known
// channel). Short datagrams (too small to hold a full header), ones on
// an interface the socket is not scoped to, and ones addressed to a
// group the socket has not joined (software fallback path only) are
// silently discarded and the read retried.
func (s *Socket) recvOne() (*Message, *Channel, error) {
	buf := make([]byte, maxDatagram)
	for {
		n, cm, src, err := s.pconn.ReadFrom(buf)
		if err != nil {
			return nil, nil, err
		}
		if n < headerSize {
			continue
		}

		var dst net.IP
		if cm != nil {
			s.mu.Lock()
			ifx := s.ifx
			s.mu.Unlock()
			if ifx != 0 && cm.IfIndex != ifx {
				continue
			}
			dst = cm.Dst
		}

		if dst != nil && !s.joined(dst) {
			log.Printf("lc: dropping datagram addressed to unjoined group %s", dst)
			continue
		}

		msg := NewMessageSize(0)
		payloadLen, err := decodeHeader(buf[:n], msg)
		if err != nil {
			continue
		}
		if headerSize+payloadLen > n {
			continue
		}
		msg.Payload = append([]byte{}, buf[headerSize:headerSize+payloadLen]...)
		msg.SocketID = s.id
		if dst != nil {
			msg.Dst = dst
			msg.DstText = dst.String()
		}
		if udpSrc, ok := src.(*net.UDPAddr); ok {
			msg.Src = udpSrc.IP
			msg.SrcText = udpSrc.IP.String()
		}

		var channel *Channel
		if dst != nil {
			channel = s.ctx.channelByAddress(dst)
		}
		if channel != nil {
			channel.advance(msg.Seq, msg.Nonce)
			msg.Channel = channel
		}
		return msg, channel, nil
	}
}

// Recv blocks for and returns the next datagram received on the socket,
// without any opcode dispatch or message-logger invocation: PING is
// returned to the caller like any other message, not auto-answered.
// Recv and Listen are mutually exclusive uses of a socket's single
// receive path; calling Recv while a listener is running on the same
// socket races with it for datagrams.
func (s *Socket) Recv() (*Message, error) {
	msg, _, err := s.recvOne()
	return msg, err
}

// RecvMsg is the Message-typed form of Recv: it fills in and returns out,
// overwriting its payload and header fields, and returns the number of
// payload bytes received.
func (s *Socket) RecvMsg(out *Message) (int, error) {
	msg, _, err := s.recvOne()
	if err != nil {
		return 0, err
	}
	*out = *msg
	return len(out.Payload), nil
}
