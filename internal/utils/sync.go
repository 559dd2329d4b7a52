package utils

import (
	"sync"
)

// OptionalMutex is a sync.Mutex that can be switched off when its owner is created. An allocator
// built as externally synchronized carries a disabled mutex, and Lock/Unlock cost nothing.
type OptionalMutex struct {
	Mutex    sync.Mutex
	UseMutex bool
}

func (m *OptionalMutex) Lock() {
	if m.UseMutex {
		m.Mutex.Lock()
	}
}

func (m *OptionalMutex) Unlock() {
	if m.UseMutex {
		m.Mutex.Unlock()
	}
}
