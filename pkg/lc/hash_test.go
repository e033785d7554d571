package lc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDeriveGroupAddrDeterministic(t *testing.T) {
	a, err := deriveGroupAddr(DefaultBaseAddr, []byte("chat"), 0)
	require.NoError(t, err)
	b, err := deriveGroupAddr(DefaultBaseAddr, []byte("chat"), 0)
	require.NoError(t, err)
	require.True(t, a.Equal(b))

	c, err := deriveGroupAddr(DefaultBaseAddr, []byte("other"), 0)
	require.NoError(t, err)
	require.False(t, a.Equal(c))
}

func TestDeriveGroupAddrKeepsScopeBytes(t *testing.T) {
	addr, err := deriveGroupAddr(DefaultBaseAddr, []byte("chat"), 0)
	require.NoError(t, err)
	base := []byte{0xff, 0x1e}
	require.Equal(t, base, []byte(addr.To16()[:2]))
}

func TestDeriveGroupAddrFlagsChangeAddress(t *testing.T) {
	a, err := deriveGroupAddr(DefaultBaseAddr, []byte("chat"), 0)
	require.NoError(t, err)
	b, err := deriveGroupAddr(DefaultBaseAddr, []byte("chat"), 1)
	require.NoError(t, err)
	require.False(t, a.Equal(b))
}

func TestRandomGroupAddrKeepsScopeBytes(t *testing.T) {
	addr, err := randomGroupAddr(DefaultBaseAddr)
	require.NoError(t, err)
	require.Equal(t, byte(0xff), addr.To16()[0])
	require.Equal(t, byte(0x1e), addr.To16()[1])
}

func TestSidehashDeterministicAndKeyed(t *testing.T) {
	base, err := deriveGroupAddr(DefaultBaseAddr, []byte("chat"), 0)
	require.NoError(t, err)

	a, err := sidehashAddr(base, []byte("secret"))
	require.NoError(t, err)
	b, err := sidehashAddr(base, []byte("secret"))
	require.NoError(t, err)
	require.True(t, a.Equal(b))

	c, err := sidehashAddr(base, []byte("different"))
	require.NoError(t, err)
	require.False(t, a.Equal(c))
}

func TestSidebandWritesLowEightBytes(t *testing.T) {
	base, err := deriveGroupAddr(DefaultBaseAddr, []byte("chat"), 0)
	require.NoError(t, err)

	side := sidebandAddr(base, 0x0102030405060708)
	require.Equal(t, base.To16()[:8], side.To16()[:8])
	require.NotEqual(t, base.To16()[8:], side.To16()[8:])
}
