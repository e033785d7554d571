package lc

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// findMulticastInterface returns the index of an up, multicast-capable,
// IPv6-addressed interface suitable for loopback multicast tests,
// preferring the loopback interface itself.
func findMulticastInterface(t *testing.T) int {
	t.Helper()
	ifaces, err := net.Interfaces()
	require.NoError(t, err)

	var fallback int
	for _, ifi := range ifaces {
		if ifi.Flags&net.FlagUp == 0 || ifi.Flags&net.FlagMulticast == 0 {
			continue
		}
		if !hasIPv6Addr(&ifi) {
			continue
		}
		if ifi.Flags&net.FlagLoopback != 0 {
			return ifi.Index
		}
		if fallback == 0 {
			fallback = ifi.Index
		}
	}
	if fallback == 0 {
		t.Skip("no up, multicast-capable, IPv6-addressed interface available")
	}
	return fallback
}

func newLoopbackSocket(t *testing.T) (*Context, *Socket) {
	t.Helper()
	ctx := NewContext()
	sock, err := ctx.NewSocket()
	if err != nil {
		t.Skipf("raw IPv6 sockets unavailable in this environment: %v", err)
	}
	ifx := findMulticastInterface(t)
	require.NoError(t, sock.Bind(ifx))
	return ctx, sock
}

func TestSendReceiveRoundTripOverLoopback(t *testing.T) {
	ctx, sock := newLoopbackSocket(t)
	defer ctx.Close()

	channel, err := ctx.NewChannel("listener-round-trip")
	require.NoError(t, err)
	require.NoError(t, channel.Bind(sock))
	require.NoError(t, channel.Join())
	defer channel.Part()

	received := make(chan []byte, 1)
	err = sock.Listen(func(c *Channel, msg *Message) {
		if c == channel {
			// msg is freed once the callback returns; keep a copy.
			received <- append([]byte{}, msg.Payload...)
		}
	}, func(error) {})
	require.NoError(t, err)
	defer sock.StopListening()

	payload := []byte("round trip payload")
	_, err = channel.Send(NewMessageData(payload, nil, nil))
	require.NoError(t, err)

	select {
	case got := <-received:
		require.Equal(t, payload, got)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for message")
	}
}

func TestPingIsAnsweredWithPong(t *testing.T) {
	ctx, sock := newLoopbackSocket(t)
	defer ctx.Close()

	channel, err := ctx.NewChannel("listener-ping-pong")
	require.NoError(t, err)
	require.NoError(t, channel.Bind(sock))
	require.NoError(t, channel.Join())
	defer channel.Part()

	pongs := make(chan *Message, 1)
	err = sock.Listen(func(c *Channel, msg *Message) {
		if msg.Opcode == OpPong {
			pongs <- msg
		}
	}, func(error) {})
	require.NoError(t, err)
	defer sock.StopListening()

	ping := NewMessageData([]byte("ping"), nil, nil)
	ping.Opcode = OpPing
	_, err = channel.Send(ping)
	require.NoError(t, err)

	select {
	case <-pongs:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for pong")
	}
}

func TestPingCallbackFiresEvenWithLoopbackDisabled(t *testing.T) {
	ctx, sock := newLoopbackSocket(t)
	defer ctx.Close()
	require.NoError(t, sock.SetLoopback(false))

	channel, err := ctx.NewChannel("listener-ping-no-loopback")
	require.NoError(t, err)
	require.NoError(t, channel.Bind(sock))
	require.NoError(t, channel.Join())
	defer channel.Part()

	delivered := make(chan *Message, 1)
	err = sock.Listen(func(c *Channel, msg *Message) {
		delivered <- msg
	}, func(error) {})
	require.NoError(t, err)
	defer sock.StopListening()

	ping := NewMessageData([]byte("ping"), nil, nil)
	ping.Opcode = OpPing
	_, err = channel.Send(ping)
	require.NoError(t, err)

	select {
	case msg := <-delivered:
		require.Equal(t, OpPong, msg.Opcode)
	case <-time.After(5 * time.Second):
		t.Fatal("onMsg was never invoked for the PING message")
	}
}

func TestStopListeningIsIdempotent(t *testing.T) {
	_, sock := newLoopbackSocket(t)
	defer sock.Close()

	require.NoError(t, sock.StopListening())

	err := sock.Listen(func(*Channel, *Message) {}, func(error) {})
	require.NoError(t, err)
	require.NoError(t, sock.StopListening())
	require.NoError(t, sock.StopListening())
}

func TestListenTwiceReturnsErrSocketListening(t *testing.T) {
	_, sock := newLoopbackSocket(t)
	defer sock.Close()

	require.NoError(t, sock.Listen(func(*Channel, *Message) {}, func(error) {}))
	defer sock.StopListening()

	err := sock.Listen(func(*Channel, *Message) {}, func(error) {})
	require.Error(t, err)
	var lcErr *Error
	require.ErrorAs(t, err, &lcErr)
	require.Equal(t, ErrSocketListening, lcErr.Code)
}
