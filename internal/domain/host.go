package domain

// Host is a bookable machine in a pod design. It owns its interfaces.
type Host struct {
	ID          string      `json:"id" yaml:"id"`
	Name        string      `json:"name" yaml:"name"`
	Description string      `json:"description,omitempty" yaml:"description,omitempty"`
	Interfaces  []Interface `json:"interfaces" yaml:"interfaces"`
}

// Interface is a named network attachment point on a host.
type Interface struct {
	ID     string `json:"id" yaml:"id"`
	Name   string `json:"name" yaml:"name"`
	HostID string `json:"-" yaml:"-"`
}

// HostSpec is the input for adding a host. Interface order is preserved.
type HostSpec struct {
	ID          string          `json:"id" yaml:"id"`
	Name        string          `json:"name" yaml:"name"`
	Description string          `json:"description,omitempty" yaml:"description,omitempty"`
	Interfaces  []InterfaceSpec `json:"interfaces" yaml:"interfaces"`
}

// InterfaceSpec declares one interface of a HostSpec.
type InterfaceSpec struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// Clone returns a deep copy of the host.
func (h *Host) Clone() Host {
	c := *h
	c.Interfaces = append([]Interface(nil), h.Interfaces...)
	return c
}

// InterfaceIDs returns the ids of the host's interfaces in declaration order.
func (h *Host) InterfaceIDs() []string {
	ids := make([]string, len(h.Interfaces))
	for i, iface := range h.Interfaces {
		ids[i] = iface.ID
	}
	return ids
}
