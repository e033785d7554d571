//go:build linux

package lc

import "golang.org/x/sys/unix"

// disableMulticastAll asks the kernel to deliver only datagrams destined
// for groups explicitly joined on this socket (Linux 4.2+). When the
// option is rejected (older kernel), the caller must fall back to
// software join-set filtering, so a rejection is not itself an error.
func disableMulticastAll(fd int) (supported bool, err error) {
	if err := unix.SetsockoptInt(fd, unix.IPPROTO_IPV6, unix.IPV6_MULTICAST_ALL, 0); err != nil {
		return false, nil
	}
	return true, nil
}
