package lc

import (
	"net"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestJoinSetIdempotentAndRemovable(t *testing.T) {
	sock := &Socket{joinSet: make(map[[16]byte]struct{})}
	group := net.ParseIP("ff1e::1")

	require.False(t, sock.joined(group))

	sock.updateJoinSet(group, true)
	sock.updateJoinSet(group, true)
	require.True(t, sock.joined(group))
	require.Len(t, sock.joinSet, 1)

	sock.updateJoinSet(group, false)
	require.False(t, sock.joined(group))
	require.Empty(t, sock.joinSet)
}

func TestJoinSetNilMeansKernelFilters(t *testing.T) {
	sock := &Socket{}
	require.True(t, sock.joined(net.ParseIP("ff1e::1")))
	sock.updateJoinSet(net.ParseIP("ff1e::1"), true)
	require.Nil(t, sock.joinSet)
}
