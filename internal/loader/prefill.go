package loader

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"podnet/internal/domain"

	"gopkg.in/yaml.v3"
)

// Prefill is the initial population handed to the editor: the networks of
// a template and the hosts selected for it, optionally pre-wired.
// JSON input is accepted since it parses as YAML.
type Prefill struct {
	Networks []domain.NetworkSpec `yaml:"networks"`
	Hosts    []HostYAML           `yaml:"hosts"`
}

// HostYAML represents a prefilled host
type HostYAML struct {
	ID          string          `yaml:"id"`
	Name        string          `yaml:"name"`
	Description string          `yaml:"description,omitempty"`
	Interfaces  []InterfaceYAML `yaml:"interfaces"`
}

// InterfaceYAML represents a host interface and its existing wiring
type InterfaceYAML struct {
	ID          string           `yaml:"id"`
	Name        string           `yaml:"name"`
	Connections []ConnectionYAML `yaml:"connections,omitempty"`
}

// ConnectionYAML attaches an interface to a network by name. The name
// "public" always refers to the public network.
type ConnectionYAML struct {
	Network string `yaml:"network"`
	Tagged  bool   `yaml:"tagged"`
}

// PendingConnection is a prefilled connection resolved to ids and names.
type PendingConnection struct {
	HostID      string
	InterfaceID string
	Network     string
	Tagged      bool
}

// LoadFile reads a prefill document from disk
func LoadFile(path string) (*Prefill, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read prefill file: %w", err)
	}
	return Parse(bytes.NewReader(data))
}

// Parse reads a prefill document
func Parse(r io.Reader) (*Prefill, error) {
	var p Prefill
	decoder := yaml.NewDecoder(r)
	if err := decoder.Decode(&p); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to parse prefill: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Validate checks the structural requirements of the document. Naming
// and uniqueness rules are enforced when the specs reach the graph.
func (p *Prefill) Validate() error {
	for i, h := range p.Hosts {
		if h.ID == "" {
			return fmt.Errorf("%w: hosts[%d]: id is required", domain.ErrValidation, i)
		}
		for j, iface := range h.Interfaces {
			if iface.ID == "" {
				return fmt.Errorf("%w: host %s: interfaces[%d]: id is required", domain.ErrValidation, h.ID, j)
			}
			for k, c := range iface.Connections {
				if c.Network == "" {
					return fmt.Errorf("%w: interface %s: connections[%d]: network is required", domain.ErrValidation, iface.ID, k)
				}
			}
		}
	}
	return nil
}

// HostSpecs converts the prefilled hosts to graph input, in document order
func (p *Prefill) HostSpecs() []domain.HostSpec {
	specs := make([]domain.HostSpec, 0, len(p.Hosts))
	for _, h := range p.Hosts {
		spec := domain.HostSpec{ID: h.ID, Name: h.Name, Description: h.Description}
		for _, iface := range h.Interfaces {
			spec.Interfaces = append(spec.Interfaces, domain.InterfaceSpec{ID: iface.ID, Name: iface.Name})
		}
		specs = append(specs, spec)
	}
	return specs
}

// Connections lists the prefilled wiring in document order
func (p *Prefill) Connections() []PendingConnection {
	var out []PendingConnection
	for _, h := range p.Hosts {
		for _, iface := range h.Interfaces {
			for _, c := range iface.Connections {
				out = append(out, PendingConnection{
					HostID:      h.ID,
					InterfaceID: iface.ID,
					Network:     c.Network,
					Tagged:      c.Tagged,
				})
			}
		}
	}
	return out
}

// Marshal encodes a prefill document as YAML
func (p *Prefill) Marshal(w io.Writer) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()

	if err := encoder.Encode(p); err != nil {
		return fmt.Errorf("failed to encode prefill: %w", err)
	}
	return nil
}
