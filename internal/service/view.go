package service

import (
	"podnet/internal/codec"
	"podnet/internal/domain"
	"podnet/internal/topology"
)

// Hosts lists the hosts of the design
func (s *EditorService) Hosts() []domain.Host {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.graph.Hosts()
}

// Host returns one host
func (s *EditorService) Host(id string) (domain.Host, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.graph.Host(id)
}

// Networks lists the networks of the design
func (s *EditorService) Networks() []domain.Network {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.graph.Networks()
}

// Connections lists the connections of the design
func (s *EditorService) Connections() []domain.Connection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.graph.Connections()
}

// Connection returns one connection
func (s *EditorService) Connection(id string) (domain.Connection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.graph.Connection(id)
}

// InterfaceState returns the VLAN state of an interface and its connections
func (s *EditorService) InterfaceState(interfaceID string) (domain.VlanState, []domain.Connection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, err := s.graph.InterfaceVlanState(interfaceID)
	if err != nil {
		return "", nil, err
	}
	return state, s.graph.ConnectionsOf(interfaceID), nil
}

// Reachable returns the layer-2 domain of a host
func (s *EditorService) Reachable(hostID string) (topology.Segment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.graph.Reachable(hostID)
}

// SharedNetworks returns the networks a host shares with other hosts
func (s *EditorService) SharedNetworks(hostID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.graph.SharedNetworks(hostID)
}

// Segments partitions the design into layer-2 domains
func (s *EditorService) Segments() []topology.Segment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.graph.Segments()
}

// Document serializes the current design
func (s *EditorService) Document() *codec.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return codec.Serialize(s.graph)
}
