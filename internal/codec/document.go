package codec

import (
	"fmt"

	"podnet/internal/domain"
	"podnet/internal/topology"
)

// DocumentVersion is the version written by Serialize.
const DocumentVersion = 1

// Document is the persisted form of a topology graph.
type Document struct {
	Version     int             `json:"version" yaml:"version"`
	Allocator   *AllocatorState `json:"allocator,omitempty" yaml:"allocator,omitempty"`
	Networks    []NetworkDoc    `json:"networks" yaml:"networks"`
	Hosts       []HostDoc       `json:"hosts" yaml:"hosts"`
	Connections []ConnectionDoc `json:"connections" yaml:"connections"`
}

// AllocatorState carries the port rotation cursor.
type AllocatorState struct {
	Cursor int `json:"cursor" yaml:"cursor"`
}

type NetworkDoc struct {
	ID     string    `json:"id" yaml:"id"`
	Name   string    `json:"name" yaml:"name"`
	Public bool      `json:"public" yaml:"public"`
	Ports  []PortDoc `json:"ports" yaml:"ports"`
}

type PortDoc struct {
	ID string `json:"id" yaml:"id"`
}

type HostDoc struct {
	ID          string         `json:"id" yaml:"id"`
	Name        string         `json:"name" yaml:"name"`
	Description string         `json:"description,omitempty" yaml:"description,omitempty"`
	Interfaces  []InterfaceDoc `json:"interfaces" yaml:"interfaces"`
}

type InterfaceDoc struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

type ConnectionDoc struct {
	ID          string `json:"id" yaml:"id"`
	InterfaceID string `json:"interfaceId" yaml:"interfaceId"`
	PortID      string `json:"portId" yaml:"portId"`
	Tagged      bool   `json:"tagged" yaml:"tagged"`
}

// Serialize captures the full state of g.
func Serialize(g *topology.Graph) *Document {
	doc := &Document{
		Version:     DocumentVersion,
		Allocator:   &AllocatorState{Cursor: g.Allocator().Cursor()},
		Networks:    []NetworkDoc{},
		Hosts:       []HostDoc{},
		Connections: []ConnectionDoc{},
	}

	for _, n := range g.Networks() {
		nd := NetworkDoc{ID: n.ID, Name: n.Name, Public: n.Public, Ports: make([]PortDoc, len(n.Ports))}
		for i, p := range n.Ports {
			nd.Ports[i] = PortDoc{ID: p.ID}
		}
		doc.Networks = append(doc.Networks, nd)
	}

	for _, h := range g.Hosts() {
		hd := HostDoc{ID: h.ID, Name: h.Name, Description: h.Description, Interfaces: make([]InterfaceDoc, len(h.Interfaces))}
		for i, iface := range h.Interfaces {
			hd.Interfaces[i] = InterfaceDoc{ID: iface.ID, Name: iface.Name}
		}
		doc.Hosts = append(doc.Hosts, hd)
	}

	for _, c := range g.Connections() {
		doc.Connections = append(doc.Connections, ConnectionDoc{
			ID:          c.ID,
			InterfaceID: c.InterfaceID,
			PortID:      c.PortID,
			Tagged:      c.Tagged,
		})
	}
	return doc
}

// RestoreResult reports what Restore derived from the document.
type RestoreResult struct {
	Hosts           int
	Networks        int
	Connections     int
	PublicNetworkID string
	// PublicSynthesized is set when the document had no public network.
	PublicSynthesized bool
}

// Restore rebuilds g from doc. The document is loaded into an empty graph
// with g's settings and swapped in only if every entity is accepted; on
// error g is left untouched. All errors wrap domain.ErrCodec.
func Restore(g *topology.Graph, doc *Document) (RestoreResult, error) {
	if doc == nil {
		return RestoreResult{}, fmt.Errorf("%w: empty document", domain.ErrCodec)
	}
	if doc.Version > DocumentVersion {
		return RestoreResult{}, fmt.Errorf("%w: unsupported document version %d", domain.ErrCodec, doc.Version)
	}

	fresh := g.Empty()

	for i, nd := range doc.Networks {
		n := domain.Network{ID: nd.ID, Name: nd.Name, Public: nd.Public, Ports: make([]domain.Port, len(nd.Ports))}
		for j, pd := range nd.Ports {
			n.Ports[j] = domain.Port{ID: pd.ID}
		}
		if err := fresh.InsertNetwork(n); err != nil {
			return RestoreResult{}, fmt.Errorf("%w: networks[%d]: %w", domain.ErrCodec, i, err)
		}
	}

	for i, hd := range doc.Hosts {
		spec := domain.HostSpec{ID: hd.ID, Name: hd.Name, Description: hd.Description}
		for _, id := range hd.Interfaces {
			spec.Interfaces = append(spec.Interfaces, domain.InterfaceSpec{ID: id.ID, Name: id.Name})
		}
		if _, err := fresh.AddHost(spec); err != nil {
			return RestoreResult{}, fmt.Errorf("%w: hosts[%d]: %w", domain.ErrCodec, i, err)
		}
	}

	for i, cd := range doc.Connections {
		c := domain.Connection{ID: cd.ID, InterfaceID: cd.InterfaceID, PortID: cd.PortID, Tagged: cd.Tagged}
		if err := fresh.AddConnection(c); err != nil {
			return RestoreResult{}, fmt.Errorf("%w: connections[%d]: %w", domain.ErrCodec, i, err)
		}
	}

	publicID, created, err := fresh.EnsurePublicNetwork()
	if err != nil {
		return RestoreResult{}, fmt.Errorf("%w: public network: %w", domain.ErrCodec, err)
	}
	if doc.Allocator != nil {
		fresh.Allocator().SetCursor(doc.Allocator.Cursor)
	}

	g.Replace(fresh)
	return RestoreResult{
		Hosts:             g.HostCount(),
		Networks:          g.NetworkCount(),
		Connections:       g.ConnectionCount(),
		PublicNetworkID:   publicID,
		PublicSynthesized: created,
	}, nil
}
