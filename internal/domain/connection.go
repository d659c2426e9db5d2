package domain

// Connection links one interface to one port. It is held in the graph's
// connection registry and referenced from both endpoints by id.
type Connection struct {
	ID          string `json:"id" yaml:"id"`
	InterfaceID string `json:"interfaceId" yaml:"interfaceId"`
	PortID      string `json:"portId" yaml:"portId"`
	Tagged      bool   `json:"tagged" yaml:"tagged"`
}

// TagState is the VLAN mode of a connection as seen by a renderer.
type TagState string

const (
	TagStateTagged   TagState = "tagged"
	TagStateUntagged TagState = "untagged"
)

// TagState returns the connection's VLAN mode.
func (c *Connection) TagState() TagState {
	if c.Tagged {
		return TagStateTagged
	}
	return TagStateUntagged
}

// VlanState summarises the tag state of all connections on an interface.
type VlanState string

const (
	// VlanNone means the interface has no connections.
	VlanNone VlanState = "none"
	// VlanTaggedOnly means every connection on the interface is tagged.
	VlanTaggedOnly VlanState = "tagged_only"
	// VlanUntagged means exactly one connection is untagged, plus any tagged ones.
	VlanUntagged VlanState = "untagged"
)

// Category is the top-level container kind an endpoint belongs to.
type Category string

const (
	CategoryHost    Category = "host"
	CategoryNetwork Category = "network"
)
