package topology

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"podnet/internal/domain"
)

func ports(n int) []domain.Port {
	out := make([]domain.Port, n)
	for i := range out {
		out[i] = domain.Port{ID: fmt.Sprintf("p%d", i), Index: i}
	}
	return out
}

func TestAllocatorRoundRobin(t *testing.T) {
	a := NewAllocator(DefaultAllocatorStart)
	pool := ports(3)
	free := func(string) bool { return false }

	var got []string
	for i := 0; i < 4; i++ {
		p, err := a.Allocate(pool, free)
		require.NoError(t, err)
		got = append(got, p.ID)
	}
	// cursor 5,6,7,8 over 3 ports
	assert.Equal(t, []string{"p2", "p0", "p1", "p2"}, got)
	assert.Equal(t, 9, a.Cursor())
}

func TestAllocatorSharedCursor(t *testing.T) {
	a := NewAllocator(0)
	free := func(string) bool { return false }

	p, _ := a.Allocate(ports(4), free)
	assert.Equal(t, "p0", p.ID)
	p, _ = a.Allocate(ports(2), free)
	assert.Equal(t, "p1", p.ID)
	p, _ = a.Allocate(ports(4), free)
	assert.Equal(t, "p2", p.ID)
}

func TestAllocatorFull(t *testing.T) {
	a := NewAllocator(7)
	busy := func(string) bool { return true }

	_, err := a.Allocate(ports(3), busy)
	assert.ErrorIs(t, err, domain.ErrNetworkFull)
	assert.Equal(t, 7, a.Cursor())

	_, err = a.Allocate(nil, busy)
	assert.ErrorIs(t, err, domain.ErrInvalidConnection)
}

func TestAllocatorSetCursor(t *testing.T) {
	a := NewAllocator(0)
	a.SetCursor(42)
	assert.Equal(t, 42, a.Cursor())
	a.SetCursor(-1)
	assert.Equal(t, 42, a.Cursor())
	assert.Equal(t, 0, a.Next(6))
}
