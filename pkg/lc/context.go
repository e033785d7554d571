package lc

import (
	"sync"
	"sync/atomic"
)

var ctxCounter uint32

// Context is the top-level container owning a set of sockets and channels.
// Lifecycles of everything it owns are scoped to it: Close tears down every
// socket (stopping its listener) and releases every channel.
type Context struct {
	id uint32

	mu       sync.Mutex
	sockets  []*Socket
	channels []*Channel
}

// NewContext creates a new, empty context with a process-wide unique id.
func NewContext() *Context {
	return &Context{id: atomic.AddUint32(&ctxCounter, 1)}
}

// ID returns the context's process-wide unique identifier.
func (ctx *Context) ID() uint32 {
	if ctx == nil {
		return 0
	}
	return ctx.id
}

// Close stops every listening socket, closes every socket's endpoint and
// releases every channel owned by the context. It is safe to call once.
func (ctx *Context) Close() error {
	ctx.mu.Lock()
	sockets := ctx.sockets
	channels := ctx.channels
	ctx.sockets = nil
	ctx.channels = nil
	ctx.mu.Unlock()

	var firstErr error
	for _, s := range sockets {
		if err := s.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	for _, c := range channels {
		c.release()
	}
	return firstErr
}

func (ctx *Context) addSocket(s *Socket) {
	ctx.mu.Lock()
	ctx.sockets = append(ctx.sockets, s)
	ctx.mu.Unlock()
}

func (ctx *Context) removeSocket(s *Socket) {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	for i, p := range ctx.sockets {
		if p == s {
			ctx.sockets = append(ctx.sockets[:i], ctx.sockets[i+1:]...)
			return
		}
	}
}

func (ctx *Context) addChannel(c *Channel) {
	ctx.mu.Lock()
	ctx.channels = append([]*Channel{c}, ctx.channels...)
	ctx.mu.Unlock()
}

func (ctx *Context) removeChannel(c *Channel) {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	for i, p := range ctx.channels {
		if p == c {
			ctx.channels = append(ctx.channels[:i], ctx.channels[i+1:]...)
			return
		}
	}
}

// channelByAddress scans the context's channel list for one whose group
// address matches addr. Channels are kept in a flat, mutex-guarded slice
// rather than the intrusive linked list of the original implementation,
// which lets Listen's hot path and concurrent channel creation/removal
// from the caller's goroutine coexist without a documented-but-unenforced
// "don't mutate while listening" contract.
func (ctx *Context) channelByAddress(addr []byte) *Channel {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	for _, c := range ctx.channels {
		if ipEqual(c.addr.IP, addr) {
			return c
		}
	}
	return nil
}

func (ctx *Context) channelsOnSocket(s *Socket) []*Channel {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	out := make([]*Channel, 0, len(ctx.channels))
	for _, c := range ctx.channels {
		c.mu.Lock()
		bound := c.sock == s
		c.mu.Unlock()
		if bound {
			out = append(out, c)
		}
	}
	return out
}
