package lc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewChannelSamePortAsDefault(t *testing.T) {
	ctx := NewContext()
	defer ctx.Close()

	c, err := ctx.NewChannel("default-port")
	require.NoError(t, err)
	require.Equal(t, DefaultPort, c.SockAddr().Port)
	require.Equal(t, "default-port", c.URI())
}

func TestNewChannelAddrRejectsNil(t *testing.T) {
	ctx := NewContext()
	defer ctx.Close()

	_, err := ctx.NewChannelAddr(nil)
	require.Error(t, err)
}

func TestSidebandProducesDistinctChannel(t *testing.T) {
	ctx := NewContext()
	defer ctx.Close()

	base, err := ctx.NewChannel("parent")
	require.NoError(t, err)

	child := base.Sideband(7)
	require.False(t, base.Addr().Equal(child.Addr()))
	require.Equal(t, base.Addr().To16()[:8], child.Addr().To16()[:8])
}

func TestSidehashReproducibleWithSameKey(t *testing.T) {
	ctx := NewContext()
	defer ctx.Close()

	base, err := ctx.NewChannel("parent")
	require.NoError(t, err)

	a, err := base.Sidehash([]byte("k"))
	require.NoError(t, err)
	b, err := base.Sidehash([]byte("k"))
	require.NoError(t, err)
	require.True(t, a.Addr().Equal(b.Addr()))
}

func TestChannelAdvanceSequenceIsMonotonic(t *testing.T) {
	ctx := NewContext()
	defer ctx.Close()

	c, err := ctx.NewChannel("seq")
	require.NoError(t, err)

	c.advance(5, 1)
	first := c.seq
	require.Greater(t, first, uint64(5))

	c.advance(1, 2)
	require.Greater(t, c.seq, first)
}

func TestChannelBindUnbindAccounting(t *testing.T) {
	ctx := NewContext()
	defer ctx.Close()

	sock, err := ctx.NewSocket()
	if err != nil {
		t.Skipf("raw IPv6 sockets unavailable in this environment: %v", err)
	}
	defer sock.Close()

	c, err := ctx.NewChannel("bind-unbind")
	require.NoError(t, err)

	require.NoError(t, c.Bind(sock))
	require.Equal(t, 1, sock.Bound())
	require.Same(t, sock, c.Socket())

	c.Unbind()
	require.Equal(t, 0, sock.Bound())
	require.Nil(t, c.Socket())
}
