package codec

import (
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// AnsibleCodec exports a design as an Ansible inventory. Each network
// becomes a group of the hosts attached to it; per-interface VLAN
// membership is written as host vars. Inventories cannot be imported.
type AnsibleCodec struct{}

// NewAnsibleCodec creates a new Ansible codec
func NewAnsibleCodec() *AnsibleCodec {
	return &AnsibleCodec{}
}

// Format returns the codec format identifier
func (c *AnsibleCodec) Format() string {
	return "ansible-inventory"
}

type ansibleInventory struct {
	All ansibleGroup `yaml:"all"`
}

type ansibleGroup struct {
	Children map[string]ansibleGroupDef `yaml:"children,omitempty"`
	Hosts    map[string]ansibleHost     `yaml:"hosts,omitempty"`
}

type ansibleGroupDef struct {
	Hosts map[string]ansibleHost `yaml:"hosts,omitempty"`
	Vars  map[string]interface{} `yaml:"vars,omitempty"`
}

type ansibleHost struct {
	Vars map[string]interface{} `yaml:",inline"`
}

// ansibleVlan is one entry of a host's pod_interfaces var.
type ansibleVlan struct {
	Network string `yaml:"network"`
	Tagged  bool   `yaml:"tagged"`
}

// Export writes doc as an Ansible inventory
func (c *AnsibleCodec) Export(doc *Document, w io.Writer) error {
	inv := ansibleInventory{
		All: ansibleGroup{
			Children: make(map[string]ansibleGroupDef),
			Hosts:    make(map[string]ansibleHost),
		},
	}

	type ifaceRef struct{ host, name string }
	ifaces := make(map[string]ifaceRef)
	hostNames := make(map[string]string)
	memberships := make(map[string]map[string][]ansibleVlan) // host -> interface -> vlans

	for _, h := range doc.Hosts {
		hostNames[h.ID] = h.Name
		memberships[h.ID] = make(map[string][]ansibleVlan)
		for _, i := range h.Interfaces {
			ifaces[i.ID] = ifaceRef{host: h.ID, name: i.Name}
		}
	}

	portNetwork := make(map[string]NetworkDoc)
	for _, n := range doc.Networks {
		inv.All.Children[groupName(n.Name)] = ansibleGroupDef{
			Hosts: make(map[string]ansibleHost),
			Vars: map[string]interface{}{
				"pod_network": n.Name,
				"pod_public":  n.Public,
			},
		}
		for _, p := range n.Ports {
			portNetwork[p.ID] = n
		}
	}

	for _, conn := range doc.Connections {
		ref, ok := ifaces[conn.InterfaceID]
		if !ok {
			return fmt.Errorf("connection %s: unknown interface %s", conn.ID, conn.InterfaceID)
		}
		n, ok := portNetwork[conn.PortID]
		if !ok {
			return fmt.Errorf("connection %s: unknown port %s", conn.ID, conn.PortID)
		}
		memberships[ref.host][ref.name] = append(memberships[ref.host][ref.name], ansibleVlan{Network: n.Name, Tagged: conn.Tagged})
		inv.All.Children[groupName(n.Name)].Hosts[hostNames[ref.host]] = ansibleHost{}
	}

	for _, h := range doc.Hosts {
		vars := map[string]interface{}{"pod_host_id": h.ID}
		if h.Description != "" {
			vars["pod_description"] = h.Description
		}
		if len(memberships[h.ID]) > 0 {
			vars["pod_interfaces"] = memberships[h.ID]
		}
		inv.All.Hosts[h.Name] = ansibleHost{Vars: vars}
	}

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()

	if err := encoder.Encode(&inv); err != nil {
		return fmt.Errorf("failed to encode Ansible inventory: %w", err)
	}

	return nil
}

// groupName converts a network name into a valid Ansible group name
func groupName(network string) string {
	return "net_" + strings.ReplaceAll(strings.ToLower(network), "-", "_")
}
