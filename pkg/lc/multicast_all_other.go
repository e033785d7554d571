//go:build !linux

package lc

// disableMulticastAll is a Linux-only kernel optimisation (IPV6_MULTICAST_ALL,
// added in 4.2). Everywhere else the socket always needs the software
// join-set fallback.
func disableMulticastAll(fd int) (supported bool, err error) {
	return false, nil
}
