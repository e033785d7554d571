package lc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHeaderRoundTrip(t *testing.T) {
	msg := &Message{
		Timestamp: 1234567890,
		Seq:       42,
		Nonce:     0xdeadbeefcafebabe,
		Opcode:    OpPing,
	}
	payload := []byte("hello, channel")

	buf := encodeHeader(msg, len(payload))
	require.Len(t, buf, headerSize)

	decoded := &Message{}
	n, err := decodeHeader(buf, decoded)
	require.NoError(t, err)
	require.Equal(t, len(payload), n)
	require.Equal(t, msg.Timestamp, decoded.Timestamp)
	require.Equal(t, msg.Seq, decoded.Seq)
	require.Equal(t, msg.Nonce, decoded.Nonce)
	require.Equal(t, msg.Opcode, decoded.Opcode)
}

func TestDecodeHeaderRejectsShortBuffer(t *testing.T) {
	_, err := decodeHeader(make([]byte, headerSize-1), &Message{})
	require.Error(t, err)
}

func TestMessageIDDeterministic(t *testing.T) {
	m := &Message{Payload: []byte("payload")}
	a, err := m.ID(16)
	require.NoError(t, err)
	b, err := m.ID(16)
	require.NoError(t, err)
	require.Equal(t, a, b)
	require.Len(t, a, 16)
}

func TestMessageFreeCallsOnce(t *testing.T) {
	calls := 0
	m := NewMessageData([]byte("x"), func(data []byte, hint any) {
		calls++
	}, nil)
	m.Free()
	m.Free()
	require.Equal(t, 1, calls)
	require.Nil(t, m.Payload)
}

func TestMessageGetSetAttr(t *testing.T) {
	m := NewMessage()
	require.NoError(t, m.Set(AttrData, []byte("abc")))
	v, err := m.Get(AttrLen)
	require.NoError(t, err)
	require.Equal(t, 3, v)

	_, err = m.Get(Attr(99))
	require.Error(t, err)
}
