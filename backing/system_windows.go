//go:build windows

package backing

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

func reserveAddressSpace(size int) ([]byte, error) {
	addr, err := windows.VirtualAlloc(0, uintptr(size), windows.MEM_RESERVE, windows.PAGE_NOACCESS)
	if err != nil {
		return nil, err
	}

	return unsafe.Slice((*byte)(unsafe.Pointer(addr)), size), nil
}

func commitPages(pages []byte) error {
	_, err := windows.VirtualAlloc(uintptr(unsafe.Pointer(&pages[0])), uintptr(len(pages)), windows.MEM_COMMIT, windows.PAGE_READWRITE)
	return err
}

// decommitPages gives the pages back to the system while keeping the address range reserved
func decommitPages(pages []byte) error {
	return windows.VirtualFree(uintptr(unsafe.Pointer(&pages[0])), uintptr(len(pages)), windows.MEM_DECOMMIT)
}

func releaseAddressSpace(reservation []byte) error {
	return windows.VirtualFree(uintptr(unsafe.Pointer(&reservation[0])), 0, windows.MEM_RELEASE)
}

func mapPages(size int) ([]byte, error) {
	addr, err := windows.VirtualAlloc(0, uintptr(size), windows.MEM_RESERVE|windows.MEM_COMMIT, windows.PAGE_READWRITE)
	if err != nil {
		return nil, err
	}

	return unsafe.Slice((*byte)(unsafe.Pointer(addr)), size), nil
}

func unmapPages(memory []byte) error {
	return releaseAddressSpace(memory)
}
