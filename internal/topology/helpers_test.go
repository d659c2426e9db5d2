package topology

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"podnet/internal/domain"
)

// seqIDs returns a deterministic generator: net1, conn2, net3, ...
func seqIDs() func(string) string {
	n := 0
	return func(kind string) string {
		n++
		return fmt.Sprintf("%s%d", kind, n)
	}
}

func newTestGraph(opts ...Option) *Graph {
	return New(append([]Option{WithIDGenerator(seqIDs())}, opts...)...)
}

func hostSpec(id string, ifaces ...string) domain.HostSpec {
	spec := domain.HostSpec{ID: id, Name: id}
	for _, i := range ifaces {
		spec.Interfaces = append(spec.Interfaces, domain.InterfaceSpec{ID: i, Name: "eth-" + i})
	}
	return spec
}

func mustAddHost(t *testing.T, g *Graph, id string, ifaces ...string) {
	t.Helper()
	_, err := g.AddHost(hostSpec(id, ifaces...))
	require.NoError(t, err)
}

func mustAddNetwork(t *testing.T, g *Graph, name string, public bool) string {
	t.Helper()
	id, err := g.AddNetwork(name, public)
	require.NoError(t, err)
	return id
}
