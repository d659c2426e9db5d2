package topology

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
	"gonum.org/v1/gonum/graph/traverse"

	"podnet/internal/domain"
)

// Segment is a layer-2 domain: networks and the hosts attached to them
// through any chain of connections.
type Segment struct {
	Hosts    []string `json:"hosts"`
	Networks []string `json:"networks"`
}

// arena is a host/network adjacency graph rebuilt from the connection
// registry. Node ids are positions in ids; hosts come first.
type arena struct {
	ids      []string
	index    map[string]int64
	numHosts int
	g        *simple.UndirectedGraph
}

func (g *Graph) buildArena() *arena {
	a := &arena{
		ids:   make([]string, 0, len(g.hosts)+len(g.networks)),
		index: make(map[string]int64, len(g.hosts)+len(g.networks)),
		g:     simple.NewUndirectedGraph(),
	}
	add := func(id string) {
		n := int64(len(a.ids))
		a.ids = append(a.ids, id)
		a.index[id] = n
		a.g.AddNode(simple.Node(n))
	}
	for _, id := range g.hostOrder.ids {
		add(id)
	}
	a.numHosts = len(a.ids)
	for _, id := range g.networkOrder.ids {
		add(id)
	}

	for _, c := range g.connections {
		h := a.index[g.interfaces[c.InterfaceID].HostID]
		n := a.index[g.ports[c.PortID].NetworkID]
		a.g.SetEdge(simple.Edge{F: simple.Node(h), T: simple.Node(n)})
	}
	return a
}

// split sorts node ids back into host and network ids in registry order.
func (a *arena) split(nodes []graph.Node) Segment {
	ordinals := make([]int64, len(nodes))
	for i, n := range nodes {
		ordinals[i] = n.ID()
	}
	sort.Slice(ordinals, func(i, j int) bool { return ordinals[i] < ordinals[j] })

	var s Segment
	for _, o := range ordinals {
		if int(o) < a.numHosts {
			s.Hosts = append(s.Hosts, a.ids[o])
		} else {
			s.Networks = append(s.Networks, a.ids[o])
		}
	}
	return s
}

// Reachable returns every host and network in the same layer-2 domain as
// hostID. The host itself is included.
func (g *Graph) Reachable(hostID string) (Segment, error) {
	if _, ok := g.hosts[hostID]; !ok {
		return Segment{}, fmt.Errorf("%w: host %s", domain.ErrNotFound, hostID)
	}

	a := g.buildArena()
	var visited []graph.Node
	bf := traverse.BreadthFirst{
		Visit: func(n graph.Node) { visited = append(visited, n) },
	}
	bf.Walk(a.g, simple.Node(a.index[hostID]), nil)
	return a.split(visited), nil
}

// Segments partitions the design into layer-2 domains. Unconnected hosts
// and networks form segments of their own.
func (g *Graph) Segments() []Segment {
	a := g.buildArena()
	comps := topo.ConnectedComponents(a.g)

	segs := make([]Segment, 0, len(comps))
	for _, comp := range comps {
		segs = append(segs, a.split(comp))
	}
	// order by the earliest registered member
	first := func(s Segment) int64 {
		if len(s.Hosts) > 0 {
			return a.index[s.Hosts[0]]
		}
		return a.index[s.Networks[0]]
	}
	sort.Slice(segs, func(i, j int) bool { return first(segs[i]) < first(segs[j]) })
	return segs
}

// SharedNetworks returns the networks that hostID shares with at least
// one other host, in registry order.
func (g *Graph) SharedNetworks(hostID string) ([]string, error) {
	host, ok := g.hosts[hostID]
	if !ok {
		return nil, fmt.Errorf("%w: host %s", domain.ErrNotFound, hostID)
	}

	mine := make(map[string]bool)
	for _, iface := range host.Interfaces {
		for connID := range g.byEndpoint[iface.ID] {
			mine[g.ports[g.connections[connID].PortID].NetworkID] = true
		}
	}

	var shared []string
	for _, netID := range g.networkOrder.ids {
		if !mine[netID] {
			continue
		}
		for _, p := range g.networks[netID].Ports {
			c, ok := g.PortConnection(p.ID)
			if ok && g.interfaces[c.InterfaceID].HostID != hostID {
				shared = append(shared, netID)
				break
			}
		}
	}
	return shared, nil
}
