package topology

import (
	"fmt"
	"sort"

	"podnet/internal/domain"
)

// Host returns a copy of the host with the given id.
func (g *Graph) Host(id string) (domain.Host, error) {
	h, ok := g.hosts[id]
	if !ok {
		return domain.Host{}, fmt.Errorf("%w: host %s", domain.ErrNotFound, id)
	}
	return h.Clone(), nil
}

// Hosts lists hosts in insertion order.
func (g *Graph) Hosts() []domain.Host {
	out := make([]domain.Host, 0, len(g.hostOrder.ids))
	for _, id := range g.hostOrder.ids {
		out = append(out, g.hosts[id].Clone())
	}
	return out
}

// Interface returns the interface with the given id.
func (g *Graph) Interface(id string) (domain.Interface, error) {
	iface, ok := g.interfaces[id]
	if !ok {
		return domain.Interface{}, fmt.Errorf("%w: interface %s", domain.ErrNotFound, id)
	}
	return iface, nil
}

// Network returns a copy of the network with the given id.
func (g *Graph) Network(id string) (domain.Network, error) {
	n, ok := g.networks[id]
	if !ok {
		return domain.Network{}, fmt.Errorf("%w: network %s", domain.ErrNotFound, id)
	}
	return n.Clone(), nil
}

// NetworkByName looks up a network by its unique name.
func (g *Graph) NetworkByName(name string) (domain.Network, error) {
	id, ok := g.networkNames[name]
	if !ok {
		return domain.Network{}, fmt.Errorf("%w: network named %q", domain.ErrNotFound, name)
	}
	return g.networks[id].Clone(), nil
}

// Networks lists networks in insertion order.
func (g *Graph) Networks() []domain.Network {
	out := make([]domain.Network, 0, len(g.networkOrder.ids))
	for _, id := range g.networkOrder.ids {
		out = append(out, g.networks[id].Clone())
	}
	return out
}

// PublicNetwork returns the public network, if one exists.
func (g *Graph) PublicNetwork() (domain.Network, bool) {
	if g.publicID == "" {
		return domain.Network{}, false
	}
	return g.networks[g.publicID].Clone(), true
}

// HasPublicNetwork reports whether a public network exists.
func (g *Graph) HasPublicNetwork() bool {
	return g.publicID != ""
}

// Port returns the port with the given id.
func (g *Graph) Port(id string) (domain.Port, error) {
	p, ok := g.ports[id]
	if !ok {
		return domain.Port{}, fmt.Errorf("%w: port %s", domain.ErrNotFound, id)
	}
	return p, nil
}

// Connection returns a copy of the connection with the given id.
func (g *Graph) Connection(id string) (domain.Connection, error) {
	c, ok := g.connections[id]
	if !ok {
		return domain.Connection{}, fmt.Errorf("%w: connection %s", domain.ErrNotFound, id)
	}
	return *c, nil
}

// Connections lists connections in creation order.
func (g *Graph) Connections() []domain.Connection {
	out := make([]domain.Connection, 0, len(g.connOrder.ids))
	for _, id := range g.connOrder.ids {
		out = append(out, *g.connections[id])
	}
	return out
}

// ConnectionsOf lists the connections attached to an interface or port.
func (g *Graph) ConnectionsOf(endpointID string) []domain.Connection {
	set := g.byEndpoint[endpointID]
	if len(set) == 0 {
		return nil
	}
	out := make([]domain.Connection, 0, len(set))
	for id := range set {
		out = append(out, *g.connections[id])
	}
	sort.Slice(out, func(i, j int) bool {
		return g.connSeq[out[i].ID] < g.connSeq[out[j].ID]
	})
	return out
}

// PortConnection returns the connection occupying a port, if any.
func (g *Graph) PortConnection(portID string) (domain.Connection, bool) {
	for id := range g.byEndpoint[portID] {
		return *g.connections[id], true
	}
	return domain.Connection{}, false
}

// InterfaceVlanState returns the VLAN state of an interface.
func (g *Graph) InterfaceVlanState(interfaceID string) (domain.VlanState, error) {
	return g.Enforcer().State(interfaceID)
}

// HostCount returns the number of hosts.
func (g *Graph) HostCount() int { return len(g.hosts) }

// NetworkCount returns the number of networks.
func (g *Graph) NetworkCount() int { return len(g.networks) }

// ConnectionCount returns the number of connections.
func (g *Graph) ConnectionCount() int { return len(g.connections) }
