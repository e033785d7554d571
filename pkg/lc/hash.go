package lc

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"net"

	"golang.org/x/crypto/blake2b"
)

// DefaultBaseAddr is the administratively-scoped IPv6 multicast base
// address channel names are hashed into when no other base is given.
const DefaultBaseAddr = "ff1e::"

// groupDigestSize is the number of bytes of entropy XORed into a base
// group address: bytes 0-1 of an IPv6 multicast address carry the
// multicast prefix and scope and are never touched.
const groupDigestSize = 14

// keyedHash16 computes the 16-byte keyed digest of data under key. An
// empty key is a valid, and the common, case. This is the "generic keyed
// hash producing 16-byte digests" the protocol treats as an external
// primitive; blake2b's native keyed (MAC) mode and configurable digest
// size make it a direct fit without inventing anything bespoke.
func keyedHash16(key, data []byte) ([]byte, error) {
	h, err := blake2b.New(16, key)
	if err != nil {
		return nil, err
	}
	h.Write(data)
	return h.Sum(nil), nil
}

// keyedHashN computes an n-byte keyed digest of data under key.
func keyedHashN(n int, key, data []byte) ([]byte, error) {
	h, err := blake2b.New(n, key)
	if err != nil {
		return nil, err
	}
	h.Write(data)
	return h.Sum(nil), nil
}

// deriveGroupAddr computes base XOR hash(name||flags) over bytes 2-15,
// leaving the multicast prefix and scope (bytes 0-1) untouched.
func deriveGroupAddr(base string, name []byte, flags uint32) (net.IP, error) {
	baseIP := net.ParseIP(base)
	if baseIP == nil || baseIP.To16() == nil {
		return nil, newError(ErrInvalidBaseAddr, fmt.Errorf("not an IPv6 address: %q", base))
	}
	baseIP = baseIP.To16()

	var flagsBuf [4]byte
	binary.BigEndian.PutUint32(flagsBuf[:], flags)

	digest, err := keyedHash16(nil, append(append([]byte{}, name...), flagsBuf[:]...))
	if err != nil {
		return nil, err
	}

	addr := make(net.IP, 16)
	copy(addr, baseIP)
	for i := 2; i < 16; i++ {
		addr[i] ^= digest[i]
	}
	return addr, nil
}

// randomGroupAddr draws 14 random bytes and hashes them the same way a
// channel name would be hashed, giving a channel that is unused with
// probability 1.
func randomGroupAddr(base string) (net.IP, error) {
	buf := make([]byte, groupDigestSize)
	if _, err := rand.Read(buf); err != nil {
		return nil, newError(ErrAlloc, err)
	}
	return deriveGroupAddr(base, buf, 0)
}

// sidehashAddr keyed-hashes the 16-byte base group address with key,
// writing the 14-byte digest directly into bytes 2-15 of a copy of base
// (bytes 0-1, the multicast prefix and scope, are preserved unchanged).
func sidehashAddr(base net.IP, key []byte) (net.IP, error) {
	baseIP := base.To16()
	if baseIP == nil {
		return nil, newError(ErrInvalidBaseAddr, fmt.Errorf("not an IPv6 address"))
	}
	digest, err := keyedHashN(groupDigestSize, key, baseIP)
	if err != nil {
		return nil, err
	}
	addr := make(net.IP, 16)
	copy(addr, baseIP)
	copy(addr[2:16], digest)
	return addr, nil
}

// sidebandAddr embeds band as the low 8 bytes of a copy of base, leaving
// bytes 0-7 (the high half, including the multicast prefix/scope) intact.
// The tag is written in the host's native byte order: this is the same
// contract the original implementation has (it writes through a uint64
// pointer), so two processes of different endianness will not agree on a
// sideband channel for the same (base, band) pair. That is accepted as a
// documented limitation rather than silently normalised, since there is
// no interop target specified that would make picking a wire order
// meaningful.
func sidebandAddr(base net.IP, band uint64) net.IP {
	baseIP := base.To16()
	addr := make(net.IP, 16)
	copy(addr, baseIP)
	binary.NativeEndian.PutUint64(addr[8:16], band)
	return addr
}

func ipEqual(a net.IP, b []byte) bool {
	a16 := a.To16()
	if a16 == nil || len(b) != 16 {
		return false
	}
	for i := range a16 {
		if a16[i] != b[i] {
			return false
		}
	}
	return true
}
