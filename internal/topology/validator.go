package topology

import (
	"fmt"

	"podnet/internal/domain"
)

// EndpointKind identifies what an id refers to.
type EndpointKind string

const (
	KindHost      EndpointKind = "host"
	KindInterface EndpointKind = "interface"
	KindNetwork   EndpointKind = "network"
	KindPort      EndpointKind = "port"
)

// Endpoint is a resolved graph element.
type Endpoint struct {
	ID       string
	Kind     EndpointKind
	Category domain.Category
	// OwnerID is the host of an interface or the network of a port.
	OwnerID string
}

// Edge is a structurally valid, normalized interface-to-network edge.
// PortID is empty when the network side named a whole network.
type Edge struct {
	InterfaceID string
	NetworkID   string
	PortID      string
}

// Validator decides whether an edge between two elements may be created.
// It looks only at endpoint categories and port occupancy, never at tags.
type Validator struct {
	g *Graph
}

// Validator returns a validator bound to the graph's current state.
func (g *Graph) Validator() Validator {
	return Validator{g: g}
}

// Resolve finds the element behind id.
func (v Validator) Resolve(id string) (Endpoint, error) {
	g := v.g
	if iface, ok := g.interfaces[id]; ok {
		return Endpoint{ID: id, Kind: KindInterface, Category: domain.CategoryHost, OwnerID: iface.HostID}, nil
	}
	if p, ok := g.ports[id]; ok {
		return Endpoint{ID: id, Kind: KindPort, Category: domain.CategoryNetwork, OwnerID: p.NetworkID}, nil
	}
	if _, ok := g.hosts[id]; ok {
		return Endpoint{ID: id, Kind: KindHost, Category: domain.CategoryHost, OwnerID: id}, nil
	}
	if _, ok := g.networks[id]; ok {
		return Endpoint{ID: id, Kind: KindNetwork, Category: domain.CategoryNetwork, OwnerID: id}, nil
	}
	return Endpoint{}, fmt.Errorf("%w: endpoint %s", domain.ErrNotFound, id)
}

// Validate checks a proposed edge between a and b, given in either order.
// Endpoints of the same category are rejected, and the host side must be
// an interface.
func (v Validator) Validate(a, b string) (Edge, error) {
	ea, err := v.Resolve(a)
	if err != nil {
		return Edge{}, err
	}
	eb, err := v.Resolve(b)
	if err != nil {
		return Edge{}, err
	}
	if ea.Category == eb.Category {
		return Edge{}, fmt.Errorf("%w: cannot connect %s %s to %s %s",
			domain.ErrInvalidConnection, ea.Kind, ea.ID, eb.Kind, eb.ID)
	}

	hostSide, netSide := ea, eb
	if hostSide.Category != domain.CategoryHost {
		hostSide, netSide = eb, ea
	}
	if hostSide.Kind != KindInterface {
		return Edge{}, fmt.Errorf("%w: host %s must be connected through one of its interfaces",
			domain.ErrInvalidConnection, hostSide.ID)
	}

	edge := Edge{InterfaceID: hostSide.ID, NetworkID: netSide.OwnerID}
	if netSide.Kind == KindPort {
		edge.PortID = netSide.ID
	}
	return edge, nil
}

// CheckPortFree rejects a port that already hosts a connection.
func (v Validator) CheckPortFree(portID string) error {
	for connID := range v.g.byEndpoint[portID] {
		return fmt.Errorf("%w: port %s is already used by connection %s",
			domain.ErrInvalidConnection, portID, connID)
	}
	return nil
}
