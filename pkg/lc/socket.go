package lc

import (
	"net"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/net/ipv6"
	"golang.org/x/sys/unix"
)

var sockCounter uint32

// DefaultHopLimit is the multicast hop count new sockets are created
// with: small enough that routers do not forward traffic beyond the local
// link by default.
const DefaultHopLimit = 1

// Socket is a handle over a single IPv6 UDP endpoint. It may have zero or
// more channels bound to it, is bindable to a specific interface (ifx ==
// 0 means "all multicast-capable interfaces"), and owns at most one
// listener goroutine at a time.
type Socket struct {
	id  uint32
	ctx *Context

	conn  *net.UDPConn
	pconn *ipv6.PacketConn

	mu       sync.Mutex
	ifx      int
	bound    int
	boundEP  bool
	joinSet  map[[16]byte]struct{} // non-nil iff the kernel can't filter per socket
	listener *listenerState
	logger   func(*Channel, *Message)
}

// NewSocket creates an IPv6 UDP endpoint with the defaults the protocol
// specifies: packet-info reception enabled, multicast loopback on,
// multicast hop limit set to DefaultHopLimit, and multicast-all disabled
// where the platform supports it (Linux). Where it isn't supported, the
// socket falls back to filtering received datagrams against a
// software-maintained join set.
func (ctx *Context) NewSocket() (*Socket, error) {
	fd, err := unix.Socket(unix.AF_INET6, unix.SOCK_DGRAM, unix.IPPROTO_UDP)
	if err != nil {
		return nil, newError(ErrSetsockopt, err)
	}

	cleanup := func() {
		_ = unix.Close(fd)
	}

	if err := unix.SetsockoptInt(fd, unix.IPPROTO_IPV6, unix.IPV6_RECVPKTINFO, 1); err != nil {
		cleanup()
		return nil, newError(ErrSetsockopt, err)
	}
	if err := unix.SetsockoptInt(fd, unix.IPPROTO_IPV6, unix.IPV6_MULTICAST_LOOP, 1); err != nil {
		cleanup()
		return nil, newError(ErrSetsockopt, err)
	}
	if err := unix.SetsockoptInt(fd, unix.IPPROTO_IPV6, unix.IPV6_MULTICAST_HOPS, DefaultHopLimit); err != nil {
		cleanup()
		return nil, newError(ErrSetsockopt, err)
	}
	kernelFilters, err := disableMulticastAll(fd)
	if err != nil {
		cleanup()
		return nil, newError(ErrSetsockopt, err)
	}

	f := os.NewFile(uintptr(fd), "lc-socket")
	pc, err := net.FilePacketConn(f)
	_ = f.Close()
	if err != nil {
		return nil, newError(ErrSetsockopt, err)
	}
	conn, ok := pc.(*net.UDPConn)
	if !ok {
		_ = pc.Close()
		return nil, newError(ErrSetsockopt, nil)
	}

	pconn := ipv6.NewPacketConn(conn)
	if err := pconn.SetControlMessage(ipv6.FlagDst|ipv6.FlagInterface, true); err != nil {
		_ = conn.Close()
		return nil, newError(ErrSetsockopt, err)
	}

	sock := &Socket{
		id:    atomic.AddUint32(&sockCounter, 1),
		ctx:   ctx,
		conn:  conn,
		pconn: pconn,
	}
	if !kernelFilters {
		sock.joinSet = make(map[[16]byte]struct{})
	}

	ctx.addSocket(sock)
	return sock, nil
}

// ID returns the socket's process-wide unique identifier.
func (s *Socket) ID() uint32 { return s.id }

// Bind restricts the socket to a single interface (by index); ifx == 0
// restores "all multicast-capable interfaces" for future joins.
func (s *Socket) Bind(ifx int) error {
	if err := unix.SetsockoptInt(s.fd(), unix.IPPROTO_IPV6, unix.IPV6_MULTICAST_IF, ifx); err != nil {
		return newError(ErrSetsockopt, err)
	}
	s.mu.Lock()
	s.ifx = ifx
	s.mu.Unlock()
	return nil
}

// bindAddr is the first-bind-wins endpoint bind described in Channel.Bind:
// SO_REUSEADDR and SO_REUSEPORT are set, and the wildcard bind is
// performed at most once per socket.
func (s *Socket) bindAddr(port int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.boundEP {
		return nil
	}
	fd := s.fd()
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		return newError(ErrSetsockopt, err)
	}
	if err := setReusePort(fd); err != nil {
		return newError(ErrSetsockopt, err)
	}
	sa := &unix.SockaddrInet6{Port: port}
	if err := unix.Bind(fd, sa); err != nil && err != unix.EINVAL {
		return newError(ErrSocketBind, err)
	}
	s.boundEP = true
	return nil
}

func (s *Socket) incrementBound() {
	s.mu.Lock()
	s.bound++
	s.mu.Unlock()
}

func (s *Socket) decrementBound() {
	s.mu.Lock()
	s.bound--
	s.mu.Unlock()
}

// Bound returns the number of channels currently bound to the socket.
func (s *Socket) Bound() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bound
}

// SetLoopback toggles multicast loopback delivery on the socket.
func (s *Socket) SetLoopback(on bool) error {
	v := 0
	if on {
		v = 1
	}
	if err := unix.SetsockoptInt(s.fd(), unix.IPPROTO_IPV6, unix.IPV6_MULTICAST_LOOP, v); err != nil {
		return newError(ErrSetsockopt, err)
	}
	return nil
}

// SetTTL sets the multicast hop limit used by sends on this socket.
func (s *Socket) SetTTL(hops int) error {
	if err := unix.SetsockoptInt(s.fd(), unix.IPPROTO_IPV6, unix.IPV6_MULTICAST_HOPS, hops); err != nil {
		return newError(ErrSetsockopt, err)
	}
	return nil
}

// GetOption reads an IPPROTO_IPV6-level socket option.
func (s *Socket) GetOption(optname int) (int, error) {
	v, err := unix.GetsockoptInt(s.fd(), unix.IPPROTO_IPV6, optname)
	if err != nil {
		return 0, newError(ErrSetsockopt, err)
	}
	return v, nil
}

// SetOption writes an IPPROTO_IPV6-level socket option.
func (s *Socket) SetOption(optname, value int) error {
	if err := unix.SetsockoptInt(s.fd(), unix.IPPROTO_IPV6, optname, value); err != nil {
		return newError(ErrSetsockopt, err)
	}
	return nil
}

// File returns the raw file descriptor backing the socket, for callers
// that need to interoperate with lower-level APIs. The returned value is
// only valid while the socket remains open.
func (s *Socket) File() (int, error) {
	var fd int
	raw, err := s.conn.SyscallConn()
	if err != nil {
		return 0, err
	}
	err = raw.Control(func(f uintptr) { fd = int(f) })
	return fd, err
}

func (s *Socket) fd() int {
	fd, _ := s.File()
	return fd
}

// SetMessageLogger installs a hook invoked by the listener for every
// inbound datagram resolved to a known channel, after its sequence/nonce
// state has been advanced and before opcode dispatch.
func (s *Socket) SetMessageLogger(fn func(*Channel, *Message)) {
	s.mu.Lock()
	s.logger = fn
	s.mu.Unlock()
}

// Close stops any listener, closes the socket's endpoint and removes it
// from its context.
func (s *Socket) Close() error {
	_ = s.StopListening()
	s.mu.Lock()
	s.joinSet = nil
	s.mu.Unlock()
	err := s.conn.Close()
	s.ctx.removeSocket(s)
	return err
}

func (s *Socket) readDeadline(d time.Time) {
	_ = s.conn.SetReadDeadline(d)
}
