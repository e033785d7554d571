package lc

import (
	"context"
	"log"
	"time"
)

// MsgCallback receives a fully decoded, dispatched message. c is nil if
// the message's destination address did not match any channel known to
// the socket's context. msg is freed when the callback returns, so a
// callback that keeps its payload must copy it.
type MsgCallback func(c *Channel, msg *Message)

// ErrCallback receives a non-cancellation error encountered while
// listening. The listener keeps running after invoking it.
type ErrCallback func(err error)

// listenerState holds the machinery backing one in-flight Listen call.
type listenerState struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Listen starts a goroutine that receives datagrams on the socket until
// StopListening is called or the socket is closed. A socket may have at
// most one listener at a time.
func (s *Socket) Listen(onMsg MsgCallback, onErr ErrCallback) error {
	s.mu.Lock()
	if s.listener != nil {
		s.mu.Unlock()
		return newError(ErrSocketListening, nil)
	}
	ctx, cancel := context.WithCancel(context.Background())
	ls := &listenerState{cancel: cancel, done: make(chan struct{})}
	s.listener = ls
	s.mu.Unlock()

	log.Printf("lc: listener starting on socket %d", s.id)
	go s.listenLoop(ctx, ls, onMsg, onErr)
	return nil
}

func (s *Socket) listenLoop(ctx context.Context, ls *listenerState, onMsg MsgCallback, onErr ErrCallback) {
	defer close(ls.done)
	for {
		if ctx.Err() != nil {
			return
		}
		msg, channel, err := s.recvOne()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if onErr != nil {
				onErr(err)
			}
			continue
		}
		s.dispatch(channel, msg, onMsg, onErr)
	}
}

// dispatch runs the message logger hook (the destination channel's
// sequence state has already been advanced by recvOne) and applies the
// opcode table: PING is answered with a PONG on the same channel, and
// msg.Opcode is rewritten to PONG to reflect that reply in place.
// Regardless of opcode handling, onMsg is invoked afterward for every
// message.
func (s *Socket) dispatch(channel *Channel, msg *Message, onMsg MsgCallback, onErr ErrCallback) {
	defer msg.Free()

	s.mu.Lock()
	logger := s.logger
	s.mu.Unlock()
	if logger != nil && channel != nil {
		logger(channel, msg)
	}

	if msg.Opcode == OpPing && channel != nil {
		pong := NewMessageData(msg.Payload, nil, nil)
		pong.Opcode = OpPong
		if _, err := channel.Send(pong); err != nil && onErr != nil {
			onErr(err)
		}
		msg.Opcode = OpPong
	}

	if onMsg != nil {
		onMsg(channel, msg)
	}
}

// StopListening cancels the socket's listener, if any, and waits for its
// goroutine to exit. It is idempotent: calling it on a socket with no
// active listener is a no-op.
func (s *Socket) StopListening() error {
	s.mu.Lock()
	ls := s.listener
	s.listener = nil
	s.mu.Unlock()
	if ls == nil {
		return nil
	}
	ls.cancel()
	s.readDeadline(time.Now())
	<-ls.done
	s.readDeadline(time.Time{})
	log.Printf("lc: listener stopped on socket %d", s.id)
	return nil
}
