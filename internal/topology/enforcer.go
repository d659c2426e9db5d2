package topology

import (
	"fmt"

	"podnet/internal/domain"
)

// Enforcer keeps at most one untagged connection per interface.
type Enforcer struct {
	g *Graph
}

// Enforcer returns an enforcer bound to the graph's current state.
func (g *Graph) Enforcer() Enforcer {
	return Enforcer{g: g}
}

// Check reports whether a connection on interfaceID may take the given
// tag state. except names a connection to ignore, normally the one being
// toggled; pass "" for a new connection. Tagged never conflicts.
func (e Enforcer) Check(interfaceID, except string, tagged bool) error {
	if tagged {
		return nil
	}
	if other, ok := e.untagged(interfaceID, except); ok {
		return fmt.Errorf("%w: interface %s already has untagged connection %s",
			domain.ErrVlanConflict, interfaceID, other)
	}
	return nil
}

// State returns the VLAN state of an interface.
func (e Enforcer) State(interfaceID string) (domain.VlanState, error) {
	if _, ok := e.g.interfaces[interfaceID]; !ok {
		return "", fmt.Errorf("%w: interface %s", domain.ErrNotFound, interfaceID)
	}
	if len(e.g.byEndpoint[interfaceID]) == 0 {
		return domain.VlanNone, nil
	}
	if _, ok := e.untagged(interfaceID, ""); ok {
		return domain.VlanUntagged, nil
	}
	return domain.VlanTaggedOnly, nil
}

func (e Enforcer) untagged(interfaceID, except string) (string, bool) {
	for connID := range e.g.byEndpoint[interfaceID] {
		if connID == except {
			continue
		}
		if !e.g.connections[connID].Tagged {
			return connID, true
		}
	}
	return "", false
}
