package lc

import (
	"log"
	"net"
)

// membership issues the join/leave group-membership request for the
// channel on its bound socket. If the socket is bound to a specific
// interface, only that interface is used; otherwise every interface that
// is up, multicast-capable and has an IPv6 address is tried, and the
// operation succeeds if at least one interface accepts it.
func (c *Channel) membership(join bool) error {
	c.mu.Lock()
	sock := c.sock
	group := append(net.IP{}, c.addr.IP.To16()...)
	c.mu.Unlock()

	if sock == nil {
		return newError(ErrSocketRequired, nil)
	}

	sock.updateJoinSet(group, join)

	sock.mu.Lock()
	ifx := sock.ifx
	sock.mu.Unlock()

	errCode := ErrMulticastJoin
	verb := "join"
	if !join {
		errCode = ErrMulticastPart
		verb = "part"
	}

	if ifx != 0 {
		ifi, err := net.InterfaceByIndex(ifx)
		if err != nil {
			log.Printf("lc: %s %s on interface %d failed: %v", verb, group, ifx, err)
			return newError(errCode, err)
		}
		if err := doMembership(sock, ifi, group, join); err != nil {
			log.Printf("lc: %s %s on %s failed: %v", verb, group, ifi.Name, err)
			return newError(errCode, err)
		}
		log.Printf("lc: %s %s on %s", verb, group, ifi.Name)
		return nil
	}

	ifaces, err := net.Interfaces()
	if err != nil {
		return newError(errCode, err)
	}

	succeeded := false
	var lastErr error
	for i := range ifaces {
		ifi := &ifaces[i]
		if ifi.Flags&net.FlagUp == 0 || ifi.Flags&net.FlagMulticast == 0 {
			continue
		}
		if !hasIPv6Addr(ifi) {
			continue
		}
		if err := doMembership(sock, ifi, group, join); err != nil {
			log.Printf("lc: %s %s on %s failed: %v", verb, group, ifi.Name, err)
			lastErr = err
			continue
		}
		log.Printf("lc: %s %s on %s", verb, group, ifi.Name)
		succeeded = true
	}
	if !succeeded {
		return newError(errCode, lastErr)
	}
	return nil
}

func doMembership(sock *Socket, ifi *net.Interface, group net.IP, join bool) error {
	addr := &net.UDPAddr{IP: group}
	if join {
		return sock.pconn.JoinGroup(ifi, addr)
	}
	return sock.pconn.LeaveGroup(ifi, addr)
}

func hasIPv6Addr(ifi *net.Interface) bool {
	addrs, err := ifi.Addrs()
	if err != nil {
		return false
	}
	for _, a := range addrs {
		ipNet, ok := a.(*net.IPNet)
		if !ok {
			continue
		}
		if ipNet.IP.To4() == nil && ipNet.IP.To16() != nil {
			return true
		}
	}
	return false
}

// updateJoinSet mutates the software join-set fallback. It is a no-op
// when the kernel can filter per socket (joinSet == nil). Using a map
// rather than a linked list means "leave" removes exactly the matching
// entry and nothing else, and joining twice leaves exactly one entry -
// both properties the original implementation's list-based set does not
// reliably provide.
func (s *Socket) updateJoinSet(group net.IP, join bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.joinSet == nil {
		return
	}
	var key [16]byte
	copy(key[:], group.To16())
	if join {
		s.joinSet[key] = struct{}{}
	} else {
		delete(s.joinSet, key)
	}
}

// joined reports whether group is in the socket's software join set. It
// always returns true when the kernel filters per socket (joinSet == nil),
// since in that case the kernel has already ensured the datagram was
// addressed to a joined group.
func (s *Socket) joined(group net.IP) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.joinSet == nil {
		return true
	}
	var key [16]byte
	copy(key[:], group.To16())
	_, ok := s.joinSet[key]
	return ok
}
