package jitspeak

import (
	"errors"
	"fmt"
	"sync"

	"github.com/pboyd/malloc"
)

// Allocator hands out the memory the private runner table is copied into.
// Memory is only writable between BeginMutate and EndMutate.
type Allocator interface {
	BeginMutate() error
	EndMutate() error
	Allocate(size int) ([]byte, error)
	Free(buf []byte) error
}

// errImmutable is returned instead of writing to read-only pages, which
// would fault inside the runner.
var errImmutable = errors.New("allocator is not mutable")

// arenaAllocator keeps runner tables outside the Go heap in pages that are
// read-only while not being written.
type arenaAllocator struct {
	*malloc.Arena
	protect  func(int) error
	mu       sync.Mutex
	initOnce sync.Once
	mutable  bool
}

func (a *arenaAllocator) init(startSize int) error {
	var err error
	a.initOnce.Do(func() {
		be := malloc.MmapBackend(malloc.MmapProt(protRW))
		if protBE, ok := be.(malloc.ProtectedArenaBackend); ok {
			a.protect = protBE.Protect
		} else {
			a.protect = func(int) error {
				return nil
			}
		}

		a.Arena = malloc.NewArena(uint64(startSize), malloc.Backend(be))
		if a.Arena == nil {
			err = errors.New("unable to initialize arena")
			return
		}
		a.mutable = true
	})
	return err
}

func (a *arenaAllocator) BeginMutate() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	// BeginMutate can be called before the first allocation.
	if a.protect == nil || a.mutable {
		return nil
	}

	err := a.protect(protRW)
	if err == nil {
		a.mutable = true
	}
	return err
}

func (a *arenaAllocator) EndMutate() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.protect == nil || !a.mutable {
		return nil
	}

	err := a.protect(protRO)
	if err == nil {
		a.mutable = false
	}
	return err
}

func (a *arenaAllocator) Allocate(size int) ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	// Room for the current table and its replacement during a re-handshake.
	err := a.init(2 * size)
	if err != nil {
		return nil, fmt.Errorf("error initializing allocator: %w", err)
	}

	if !a.mutable {
		return nil, errImmutable
	}

	return malloc.MallocSlice[byte](a.Arena, size)
}

func (a *arenaAllocator) Free(buf []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.Arena == nil {
		return errors.New("free before first allocation")
	}
	if !a.mutable {
		return errImmutable
	}

	malloc.FreeSlice(a.Arena, buf)
	return nil
}
