//go:build linux || darwin

package backing

import "golang.org/x/sys/unix"

func reserveAddressSpace(size int) ([]byte, error) {
	return unix.Mmap(-1, 0, size, unix.PROT_NONE, unix.MAP_PRIVATE|unix.MAP_ANON)
}

func commitPages(pages []byte) error {
	return unix.Mprotect(pages, unix.PROT_READ|unix.PROT_WRITE)
}

// decommitPages gives the physical pages back to the kernel and revokes access to the range
func decommitPages(pages []byte) error {
	err := unix.Madvise(pages, unix.MADV_DONTNEED)
	if err != nil {
		return err
	}

	return unix.Mprotect(pages, unix.PROT_NONE)
}

func releaseAddressSpace(reservation []byte) error {
	return unix.Munmap(reservation)
}

func mapPages(size int) ([]byte, error) {
	return unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
}

func unmapPages(memory []byte) error {
	return unix.Munmap(memory)
}
