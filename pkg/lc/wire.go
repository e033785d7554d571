package lc

import (
	"encoding/binary"
)

// headerSize is the fixed wire header length: 8-byte timestamp, 8-byte
// sequence, 8-byte nonce, 1-byte opcode, 8-byte payload length.
const headerSize = 8 + 8 + 8 + 1 + 8

// encodeHeader writes the fixed-layout big-endian header for a message
// whose payload is payloadLen bytes.
func encodeHeader(m *Message, payloadLen int) []byte {
	buf := make([]byte, headerSize)
	binary.BigEndian.PutUint64(buf[0:8], uint64(m.Timestamp))
	binary.BigEndian.PutUint64(buf[8:16], m.Seq)
	binary.BigEndian.PutUint64(buf[16:24], m.Nonce)
	buf[24] = byte(m.Opcode)
	binary.BigEndian.PutUint64(buf[25:33], uint64(payloadLen))
	return buf
}

// decodeHeader parses a headerSize-byte buffer into a Message, returning
// the declared payload length.
func decodeHeader(buf []byte, m *Message) (payloadLen int, err error) {
	if len(buf) < headerSize {
		return 0, newError(ErrInvalidParams, nil)
	}
	m.Timestamp = int64(binary.BigEndian.Uint64(buf[0:8]))
	m.Seq = binary.BigEndian.Uint64(buf[8:16])
	m.Nonce = binary.BigEndian.Uint64(buf[16:24])
	m.Opcode = Opcode(buf[24])
	payloadLen = int(binary.BigEndian.Uint64(buf[25:33]))
	return payloadLen, nil
}
