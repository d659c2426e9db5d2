package domain

const (
	// DefaultPortCount is the port capacity of a new network.
	DefaultPortCount = 45

	// PublicNetworkName is the reserved name of the synthesized public network.
	PublicNetworkName = "public"
)

// Network is a VLAN with a fixed, ordered pool of ports.
type Network struct {
	ID     string `json:"id" yaml:"id"`
	Name   string `json:"name" yaml:"name"`
	Public bool   `json:"public" yaml:"public"`
	Ports  []Port `json:"ports" yaml:"ports"`
}

// Port is a connection slot in a network. Index is its position in the
// network's port list.
type Port struct {
	ID        string `json:"id" yaml:"id"`
	NetworkID string `json:"-" yaml:"-"`
	Index     int    `json:"index" yaml:"index"`
}

// NetworkSpec is the input for a prefilled network.
type NetworkSpec struct {
	Name   string `json:"name" yaml:"name"`
	Public bool   `json:"public,omitempty" yaml:"public,omitempty"`
}

// Clone returns a deep copy of the network.
func (n *Network) Clone() Network {
	c := *n
	c.Ports = append([]Port(nil), n.Ports...)
	return c
}
