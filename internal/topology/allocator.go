package topology

import (
	"fmt"

	"podnet/internal/domain"
)

// DefaultAllocatorStart is the initial rotation cursor.
const DefaultAllocatorStart = 5

// Allocator hands out network ports round-robin. It keeps a single cursor
// shared across all networks: each attempt uses index = cursor % len(ports)
// and then advances the cursor.
type Allocator struct {
	cursor int
}

// NewAllocator creates an allocator with the given starting cursor.
func NewAllocator(start int) *Allocator {
	return &Allocator{cursor: start}
}

// Cursor returns the current rotation cursor.
func (a *Allocator) Cursor() int {
	return a.cursor
}

// SetCursor restores a previously saved cursor.
func (a *Allocator) SetCursor(cursor int) {
	if cursor >= 0 {
		a.cursor = cursor
	}
}

// Next returns the next index in rotation for a pool of portCount ports.
func (a *Allocator) Next(portCount int) int {
	idx := a.cursor % portCount
	a.cursor++
	return idx
}

// Allocate picks the next free port in rotation. Occupied ports are
// skipped; after a full turn without a free port the cursor is restored
// and ErrNetworkFull is returned.
func (a *Allocator) Allocate(ports []domain.Port, occupied func(portID string) bool) (domain.Port, error) {
	if len(ports) == 0 {
		return domain.Port{}, fmt.Errorf("%w: %w", domain.ErrInvalidConnection, domain.ErrNetworkFull)
	}

	saved := a.cursor
	for range ports {
		p := ports[a.Next(len(ports))]
		if !occupied(p.ID) {
			return p, nil
		}
	}
	a.cursor = saved
	return domain.Port{}, fmt.Errorf("%w: %w", domain.ErrInvalidConnection, domain.ErrNetworkFull)
}
