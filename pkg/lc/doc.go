// Package lc implements group communication over IPv6 multicast.
//
// Applications create named logical channels, each mapped deterministically
// to an IPv6 multicast group address, join them on a socket, and exchange
// framed messages with other holders of the same channel name. The package
// does not provide reliability, ordering across channels, encryption or
// fragmentation beyond a single UDP datagram.
package lc
