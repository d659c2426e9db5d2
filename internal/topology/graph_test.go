package topology

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"podnet/internal/domain"
)

func TestAddNetwork(t *testing.T) {
	t.Run("duplicate name is rejected and set is unchanged", func(t *testing.T) {
		g := newTestGraph()
		mustAddNetwork(t, g, "public", true)

		_, err := g.AddNetwork("public", false)
		require.ErrorIs(t, err, domain.ErrValidation)
		assert.Equal(t, 1, g.NetworkCount())
	})

	t.Run("creates the configured number of ports", func(t *testing.T) {
		g := newTestGraph(WithPortCount(4))
		id := mustAddNetwork(t, g, "storage", false)

		n, err := g.Network(id)
		require.NoError(t, err)
		require.Len(t, n.Ports, 4)
		for i, p := range n.Ports {
			assert.Equal(t, i, p.Index)
			assert.Equal(t, id, p.NetworkID)
		}
	})

	t.Run("default port capacity", func(t *testing.T) {
		g := newTestGraph()
		id := mustAddNetwork(t, g, "mgmt", false)
		n, _ := g.Network(id)
		assert.Len(t, n.Ports, domain.DefaultPortCount)
	})

	t.Run("invalid names", func(t *testing.T) {
		names := []string{
			"",
			strings.Repeat("a", domain.MaxNameLength+1),
			"has space",
			"under_score",
			"1starts-with-digit",
			"-starts-with-dash",
			"ends-with-dash-",
		}
		g := newTestGraph()
		for _, name := range names {
			_, err := g.AddNetwork(name, false)
			assert.ErrorIs(t, err, domain.ErrValidation, "name %q", name)
		}
		assert.Equal(t, 0, g.NetworkCount())
	})

	t.Run("longest allowed name", func(t *testing.T) {
		g := newTestGraph()
		_, err := g.AddNetwork("a"+strings.Repeat("1", domain.MaxNameLength-1), false)
		assert.NoError(t, err)
	})

	t.Run("second public network is rejected", func(t *testing.T) {
		g := newTestGraph()
		mustAddNetwork(t, g, "public", true)
		_, err := g.AddNetwork("internet", true)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("public name is reserved", func(t *testing.T) {
		g := newTestGraph()
		_, err := g.AddNetwork("public", false)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestAddHost(t *testing.T) {
	t.Run("duplicate host id", func(t *testing.T) {
		g := newTestGraph()
		mustAddHost(t, g, "h1", "i1")
		_, err := g.AddHost(hostSpec("h1", "i9"))
		assert.ErrorIs(t, err, domain.ErrDuplicateID)
		assert.Equal(t, 1, g.HostCount())
	})

	t.Run("interface id already used by another host", func(t *testing.T) {
		g := newTestGraph()
		mustAddHost(t, g, "h1", "i1")
		_, err := g.AddHost(hostSpec("h2", "i1"))
		assert.ErrorIs(t, err, domain.ErrDuplicateID)
		_, err = g.Host("h2")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("interfaces keep declaration order", func(t *testing.T) {
		g := newTestGraph()
		mustAddHost(t, g, "h1", "i3", "i1", "i2")
		h, err := g.Host("h1")
		require.NoError(t, err)
		assert.Equal(t, []string{"i3", "i1", "i2"}, h.InterfaceIDs())

		iface, err := g.Interface("i1")
		require.NoError(t, err)
		assert.Equal(t, "h1", iface.HostID)
	})

	t.Run("host limit", func(t *testing.T) {
		g := newTestGraph(WithMaxHosts(1))
		mustAddHost(t, g, "h1")
		_, err := g.AddHost(hostSpec("h2"))
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("invalid host name", func(t *testing.T) {
		g := newTestGraph()
		_, err := g.AddHost(domain.HostSpec{ID: "h1", Name: "bad name"})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("nameless host is named after its id", func(t *testing.T) {
		g := newTestGraph()
		_, err := g.AddHost(domain.HostSpec{ID: "node-a"})
		require.NoError(t, err)
		h, err := g.Host("node-a")
		require.NoError(t, err)
		assert.Equal(t, "node-a", h.Name)
	})

	t.Run("nameless host id must be a valid name", func(t *testing.T) {
		g := newTestGraph()
		for _, id := range []string{"10-0-0-5", "node_a"} {
			_, err := g.AddHost(domain.HostSpec{ID: id})
			var nerr *domain.NameError
			require.ErrorAs(t, err, &nerr, id)
			assert.Equal(t, "host", nerr.Kind)
		}
		assert.Equal(t, 0, g.HostCount())
	})

	t.Run("duplicate hostname is rejected", func(t *testing.T) {
		g := newTestGraph()
		_, err := g.AddHost(domain.HostSpec{ID: "h1", Name: "compute"})
		require.NoError(t, err)

		_, err = g.AddHost(domain.HostSpec{ID: "h2", Name: "compute"})
		var nerr *domain.NameError
		require.ErrorAs(t, err, &nerr)
		assert.Equal(t, "All hostnames must be unique.", nerr.Message)
		assert.Equal(t, 1, g.HostCount())

		// an id colliding with an existing hostname counts as a duplicate
		_, err = g.AddHost(domain.HostSpec{ID: "compute"})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("removing a host frees its name", func(t *testing.T) {
		g := newTestGraph()
		_, err := g.AddHost(domain.HostSpec{ID: "h1", Name: "compute"})
		require.NoError(t, err)
		require.NoError(t, g.RemoveHost("h1"))

		_, err = g.AddHost(domain.HostSpec{ID: "h2", Name: "compute"})
		assert.NoError(t, err)
	})

	t.Run("replace carries the name index", func(t *testing.T) {
		g := newTestGraph()
		fresh := g.Empty()
		_, err := fresh.AddHost(domain.HostSpec{ID: "h1", Name: "compute"})
		require.NoError(t, err)
		g.Replace(fresh)

		_, err = g.AddHost(domain.HostSpec{ID: "h2", Name: "compute"})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestConnectScenarios(t *testing.T) {
	g := newTestGraph()
	mustAddHost(t, g, "h1", "i1")
	n1 := mustAddNetwork(t, g, "n1", false)

	c1, err := g.Connect("i1", n1, false)
	require.NoError(t, err)

	conn, err := g.Connection(c1)
	require.NoError(t, err)
	assert.False(t, conn.Tagged)
	port, err := g.Port(conn.PortID)
	require.NoError(t, err)
	assert.Equal(t, n1, port.NetworkID)

	t.Run("second untagged connection conflicts", func(t *testing.T) {
		before := g.ConnectionCount()
		cursor := g.Allocator().Cursor()
		_, err := g.Connect("i1", n1, false)
		assert.ErrorIs(t, err, domain.ErrVlanConflict)
		assert.Equal(t, before, g.ConnectionCount())
		assert.Equal(t, cursor, g.Allocator().Cursor())
	})

	t.Run("tagged connection does not conflict", func(t *testing.T) {
		_, err := g.Connect("i1", n1, true)
		assert.NoError(t, err)
		state, err := g.InterfaceVlanState("i1")
		require.NoError(t, err)
		assert.Equal(t, domain.VlanUntagged, state)
	})

	t.Run("removing the network cascades", func(t *testing.T) {
		n, _ := g.Network(n1)
		require.NoError(t, g.RemoveNetwork(n1))

		_, err := g.Connection(c1)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		for _, p := range n.Ports {
			_, err := g.Port(p.ID)
			assert.ErrorIs(t, err, domain.ErrNotFound)
		}
		assert.Empty(t, g.ConnectionsOf("i1"))
		state, _ := g.InterfaceVlanState("i1")
		assert.Equal(t, domain.VlanNone, state)
	})
}

func TestConnectPort(t *testing.T) {
	g := newTestGraph(WithPortCount(3))
	mustAddHost(t, g, "h1", "i1", "i2")
	n1 := mustAddNetwork(t, g, "n1", false)
	n2 := mustAddNetwork(t, g, "n2", false)
	p1 := n1 + "-p1"
	p2 := n1 + "-p2"

	t.Run("port to port is rejected", func(t *testing.T) {
		_, err := g.ConnectPort(p1, p2, true)
		assert.ErrorIs(t, err, domain.ErrInvalidConnection)
		assert.Equal(t, 0, g.ConnectionCount())
	})

	t.Run("interface to interface is rejected", func(t *testing.T) {
		_, err := g.ConnectPort("i1", "i2", true)
		assert.ErrorIs(t, err, domain.ErrInvalidConnection)
	})

	t.Run("host vertex is not connectable", func(t *testing.T) {
		_, err := g.ConnectPort("h1", p1, true)
		assert.ErrorIs(t, err, domain.ErrInvalidConnection)
	})

	t.Run("unknown endpoint", func(t *testing.T) {
		_, err := g.ConnectPort("i1", "nope", true)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("reverse direction is normalized", func(t *testing.T) {
		id, err := g.ConnectPort(p1, "i1", true)
		require.NoError(t, err)
		c, _ := g.Connection(id)
		assert.Equal(t, "i1", c.InterfaceID)
		assert.Equal(t, p1, c.PortID)
	})

	t.Run("occupied port is rejected", func(t *testing.T) {
		_, err := g.ConnectPort("i2", p1, true)
		assert.ErrorIs(t, err, domain.ErrInvalidConnection)
	})

	t.Run("network target uses the allocator", func(t *testing.T) {
		id, err := g.ConnectPort("i2", n2, false)
		require.NoError(t, err)
		c, _ := g.Connection(id)
		p, _ := g.Port(c.PortID)
		assert.Equal(t, n2, p.NetworkID)
	})
}

func TestConnectSkipsOccupiedPorts(t *testing.T) {
	g := newTestGraph(WithPortCount(2), WithAllocatorStart(0))
	mustAddHost(t, g, "h1", "i1", "i2", "i3")
	n1 := mustAddNetwork(t, g, "n1", false)

	_, err := g.ConnectPort("i1", n1+"-p1", true)
	require.NoError(t, err)

	// cursor 0 points at the occupied p1, so p2 is picked
	id, err := g.Connect("i2", n1, true)
	require.NoError(t, err)
	c, _ := g.Connection(id)
	assert.Equal(t, n1+"-p2", c.PortID)

	_, err = g.Connect("i3", n1, true)
	assert.ErrorIs(t, err, domain.ErrInvalidConnection)
	assert.ErrorIs(t, err, domain.ErrNetworkFull)
	assert.Equal(t, 2, g.ConnectionCount())
}

func TestRemoveHost(t *testing.T) {
	g := newTestGraph()
	mustAddHost(t, g, "h1", "i1", "i2")
	mustAddHost(t, g, "h2", "i3")
	n1 := mustAddNetwork(t, g, "n1", false)
	n2 := mustAddNetwork(t, g, "n2", false)

	for _, pair := range [][2]string{{"i1", n1}, {"i1", n2}, {"i2", n1}, {"i3", n1}} {
		_, err := g.Connect(pair[0], pair[1], true)
		require.NoError(t, err)
	}

	require.NoError(t, g.RemoveHost("h1"))

	for _, c := range g.Connections() {
		assert.NotEqual(t, "i1", c.InterfaceID)
		assert.NotEqual(t, "i2", c.InterfaceID)
	}
	assert.Equal(t, 1, g.ConnectionCount())
	_, err := g.Interface("i1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	t.Run("unknown host", func(t *testing.T) {
		assert.ErrorIs(t, g.RemoveHost("h1"), domain.ErrNotFound)
	})
}

func TestRemoveNetwork(t *testing.T) {
	g := newTestGraph()

	t.Run("unknown network", func(t *testing.T) {
		assert.ErrorIs(t, g.RemoveNetwork("net404"), domain.ErrNotFound)
	})

	t.Run("public network is protected", func(t *testing.T) {
		id, created, err := g.EnsurePublicNetwork()
		require.NoError(t, err)
		require.True(t, created)
		assert.ErrorIs(t, g.RemoveNetwork(id), domain.ErrValidation)
		assert.True(t, g.HasPublicNetwork())
	})

	t.Run("name becomes available again", func(t *testing.T) {
		id := mustAddNetwork(t, g, "lab", false)
		require.NoError(t, g.RemoveNetwork(id))
		mustAddNetwork(t, g, "lab", false)
	})
}

func TestRenameNetwork(t *testing.T) {
	g := newTestGraph()
	a := mustAddNetwork(t, g, "alpha", false)
	mustAddNetwork(t, g, "beta", false)

	assert.ErrorIs(t, g.RenameNetwork(a, "beta"), domain.ErrValidation)
	assert.ErrorIs(t, g.RenameNetwork(a, "bad name"), domain.ErrValidation)
	assert.ErrorIs(t, g.RenameNetwork("net404", "gamma"), domain.ErrNotFound)

	require.NoError(t, g.RenameNetwork(a, "gamma"))
	n, err := g.NetworkByName("gamma")
	require.NoError(t, err)
	assert.Equal(t, a, n.ID)
	_, err = g.NetworkByName("alpha")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSetTagged(t *testing.T) {
	g := newTestGraph()
	mustAddHost(t, g, "h1", "i1")
	n1 := mustAddNetwork(t, g, "n1", false)

	untagged, err := g.Connect("i1", n1, false)
	require.NoError(t, err)
	tagged, err := g.Connect("i1", n1, true)
	require.NoError(t, err)

	t.Run("untagging a second connection conflicts", func(t *testing.T) {
		assert.ErrorIs(t, g.SetTagged(tagged, false), domain.ErrVlanConflict)
		c, _ := g.Connection(tagged)
		assert.True(t, c.Tagged)
	})

	t.Run("re-untagging the untagged connection is fine", func(t *testing.T) {
		assert.NoError(t, g.SetTagged(untagged, false))
	})

	t.Run("swap after tagging the first", func(t *testing.T) {
		require.NoError(t, g.SetTagged(untagged, true))
		state, _ := g.InterfaceVlanState("i1")
		assert.Equal(t, domain.VlanTaggedOnly, state)

		require.NoError(t, g.SetTagged(tagged, false))
		state, _ = g.InterfaceVlanState("i1")
		assert.Equal(t, domain.VlanUntagged, state)
	})

	t.Run("unknown connection", func(t *testing.T) {
		assert.ErrorIs(t, g.SetTagged("conn404", true), domain.ErrNotFound)
	})
}

func TestDisconnect(t *testing.T) {
	g := newTestGraph()
	mustAddHost(t, g, "h1", "i1")
	n1 := mustAddNetwork(t, g, "n1", false)

	id, err := g.Connect("i1", n1, false)
	require.NoError(t, err)
	c, _ := g.Connection(id)

	require.NoError(t, g.Disconnect(id))
	_, occupied := g.PortConnection(c.PortID)
	assert.False(t, occupied)
	assert.ErrorIs(t, g.Disconnect(id), domain.ErrNotFound)

	// the untagged slot is free again
	_, err = g.Connect("i1", n1, false)
	assert.NoError(t, err)
}

func TestReplace(t *testing.T) {
	g := newTestGraph()
	mustAddNetwork(t, g, "old", false)

	fresh := g.Empty()
	mustAddNetwork(t, fresh, "new", false)
	g.Replace(fresh)

	_, err := g.NetworkByName("old")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = g.NetworkByName("new")
	assert.NoError(t, err)
}
