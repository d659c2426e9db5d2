package service

import (
	"errors"
	"fmt"

	"podnet/internal/domain"
	"podnet/internal/loader"
)

// ApplyPrefill populates the design from a prefill document: networks
// first, then hosts, then any wiring declared on host interfaces. Items
// are applied independently; every rejection is returned joined.
func (s *EditorService) ApplyPrefill(p *loader.Prefill) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, nerr := s.addNetworks(p.Networks)
	_, herr := s.addHosts(p.HostSpecs())
	errs := []error{nerr, herr}

	for _, pc := range p.Connections() {
		id, err := s.connectByName(pc)
		var ev Event
		if err == nil {
			c, _ := s.graph.Connection(id)
			ev = Event{Type: EventConnectionCreated, Payload: c}
		} else {
			errs = append(errs, fmt.Errorf("interface %s to %q: %w", pc.InterfaceID, pc.Network, err))
		}
		s.finish("connection_prefilled", err, ev)
	}

	return errors.Join(errs...)
}

func (s *EditorService) connectByName(pc loader.PendingConnection) (string, error) {
	var networkID string
	if pc.Network == domain.PublicNetworkName || pc.Network == s.graph.PublicNetworkName() {
		n, ok := s.graph.PublicNetwork()
		if !ok {
			return "", fmt.Errorf("%w: public network", domain.ErrNotFound)
		}
		networkID = n.ID
	} else {
		n, err := s.graph.NetworkByName(pc.Network)
		if err != nil {
			return "", err
		}
		networkID = n.ID
	}
	return s.graph.Connect(pc.InterfaceID, networkID, pc.Tagged)
}
