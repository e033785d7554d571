package lc

import (
	"net"
	"sync"
	"sync/atomic"
)

var chanCounter uint32

// DefaultPort is the UDP port channels bind to when the caller does not
// override it by constructing the channel from an explicit address.
const DefaultPort = 4242

// Channel is a named group endpoint: an IPv6 multicast socket address plus
// the per-channel Lamport sequence and nonce state advanced by sends and
// receives. A channel does not own the socket it is bound to; it only
// holds a non-owning reference and accounts for itself in the socket's
// bound-channel counter.
type Channel struct {
	id  uint32
	ctx *Context
	uri string

	mu   sync.Mutex
	sock *Socket
	addr net.UDPAddr

	seq   uint64
	nonce uint64
}

func newChannel(ctx *Context, addr net.IP, port int, uri string) *Channel {
	c := &Channel{
		id:  atomic.AddUint32(&chanCounter, 1),
		ctx: ctx,
		uri: uri,
		addr: net.UDPAddr{
			IP:   addr,
			Port: port,
		},
	}
	ctx.addChannel(c)
	return c
}

// NewChannel derives a channel's group address deterministically from its
// name: two independent callers that construct a channel with the same
// name arrive at the same group address without coordination.
func (ctx *Context) NewChannel(name string) (*Channel, error) {
	c, err := ctx.NewChannelBytes([]byte(name))
	if err != nil {
		return nil, err
	}
	c.uri = name
	return c, nil
}

// NewChannelBytes is the byte-string form of NewChannel: no URI is
// retained since the caller did not supply one.
func (ctx *Context) NewChannelBytes(name []byte) (*Channel, error) {
	addr, err := deriveGroupAddr(DefaultBaseAddr, name, 0)
	if err != nil {
		return nil, err
	}
	return newChannel(ctx, addr, DefaultPort, ""), nil
}

// NewChannelAddr constructs a channel directly from a socket address,
// bypassing name hashing entirely.
func (ctx *Context) NewChannelAddr(addr *net.UDPAddr) (*Channel, error) {
	if addr == nil || addr.IP.To16() == nil {
		return nil, newError(ErrInvalidParams, nil)
	}
	ip := make(net.IP, 16)
	copy(ip, addr.IP.To16())
	return newChannel(ctx, ip, addr.Port, ""), nil
}

// RandomChannel draws a channel whose group address is unused with
// probability 1.
func (ctx *Context) RandomChannel() (*Channel, error) {
	addr, err := randomGroupAddr(DefaultBaseAddr)
	if err != nil {
		return nil, err
	}
	return newChannel(ctx, addr, DefaultPort, ""), nil
}

// CopyChannel allocates a fresh channel in ctx with the same group address
// as base. The new channel is unbound and carries no URI.
func (ctx *Context) CopyChannel(base *Channel) *Channel {
	base.mu.Lock()
	addr := base.addr
	base.mu.Unlock()
	ip := make(net.IP, 16)
	copy(ip, addr.IP.To16())
	return newChannel(ctx, ip, addr.Port, "")
}

// Sideband derives a channel from base whose group address keeps base's
// high 8 address bytes and carries band as the low 8 bytes.
func (c *Channel) Sideband(band uint64) *Channel {
	c.mu.Lock()
	addr := c.addr
	c.mu.Unlock()
	side := c.ctx.CopyChannel(c)
	side.mu.Lock()
	side.addr.IP = sidebandAddr(addr.IP, band)
	side.addr.Port = addr.Port
	side.mu.Unlock()
	return side
}

// Sidehash derives a channel from base whose group address is a keyed
// hash of base's address, producing a child channel only holders of key
// can compute.
func (c *Channel) Sidehash(key []byte) (*Channel, error) {
	c.mu.Lock()
	addr := c.addr
	c.mu.Unlock()
	digest, err := sidehashAddr(addr.IP, key)
	if err != nil {
		return nil, err
	}
	side := c.ctx.CopyChannel(c)
	side.mu.Lock()
	side.addr.IP = digest
	side.addr.Port = addr.Port
	side.mu.Unlock()
	return side, nil
}

// ID returns the channel's process-wide unique identifier.
func (c *Channel) ID() uint32 { return c.id }

// Ctx returns the channel's owning context.
func (c *Channel) Ctx() *Context { return c.ctx }

// URI returns the original name the channel was constructed from, or ""
// if it was not constructed from a string.
func (c *Channel) URI() string { return c.uri }

// Socket returns the socket the channel is currently bound to, or nil.
func (c *Channel) Socket() *Socket {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sock
}

// Addr returns the channel's IPv6 group address.
func (c *Channel) Addr() net.IP {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.addr.IP
}

// SockAddr returns the channel's full socket address (group address and
// port).
func (c *Channel) SockAddr() net.UDPAddr {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.addr
}

// Bind associates the channel with sock. On the first bind of any
// channel to a given socket, the socket's endpoint is bound to the
// wildcard address on the channel's port with address/port reuse;
// subsequent binds to the same socket only account for the channel.
func (c *Channel) Bind(sock *Socket) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sock == sock {
		return nil
	}
	if err := sock.bindAddr(c.addr.Port); err != nil {
		return err
	}
	if c.sock != nil {
		c.sock.decrementBound()
	}
	c.sock = sock
	sock.incrementBound()
	return nil
}

// Unbind disassociates the channel from its socket, if any.
func (c *Channel) Unbind() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sock == nil {
		return
	}
	c.sock.decrementBound()
	c.sock = nil
}

// Join issues a group-membership request for the channel on its bound
// socket.
func (c *Channel) Join() error {
	return c.membership(true)
}

// Part leaves the channel's group on its bound socket.
func (c *Channel) Part() error {
	return c.membership(false)
}

// Close unbinds the channel (if bound) and removes it from its context.
func (c *Channel) Close() error {
	c.Unbind()
	c.release()
	return nil
}

func (c *Channel) release() {
	c.ctx.removeChannel(c)
}

// advance implements the Lamport-style sequence update a receiver applies
// after processing a datagram for this channel: the stored sequence after
// processing is strictly greater than both its previous value and the
// sequence just received.
func (c *Channel) advance(seq, nonce uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	next := c.seq
	if seq > next {
		next = seq
	}
	c.seq = next + 1
	c.nonce = nonce
}

func (c *Channel) nextSendSeq() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	return c.seq
}
