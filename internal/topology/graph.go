package topology

import (
	"fmt"

	"github.com/google/uuid"

	"podnet/internal/domain"
)

// Graph is the in-memory model of a pod design: hosts with their
// interfaces, networks with their ports, and the connections between
// them. It does no locking; callers serialize access.
type Graph struct {
	portCount  int
	maxHosts   int
	publicName string
	allocStart int
	newID      func(kind string) string

	alloc *Allocator

	hosts      map[string]*domain.Host
	hostOrder  ordered
	hostNames  map[string]string
	interfaces map[string]domain.Interface

	networks     map[string]*domain.Network
	networkOrder ordered
	networkNames map[string]string
	ports        map[string]domain.Port
	publicID     string

	connections map[string]*domain.Connection
	connOrder   ordered
	connSeq     map[string]int
	nextSeq     int
	// endpoint (interface or port) id -> connection ids
	byEndpoint map[string]map[string]struct{}
}

// Option configures a Graph.
type Option func(*Graph)

// WithPortCount sets the number of ports created for each new network.
func WithPortCount(n int) Option {
	return func(g *Graph) {
		if n > 0 {
			g.portCount = n
		}
	}
}

// WithAllocatorStart sets the initial round-robin cursor.
func WithAllocatorStart(cursor int) Option {
	return func(g *Graph) {
		if cursor >= 0 {
			g.allocStart = cursor
		}
	}
}

// WithMaxHosts caps the number of hosts. Zero means no cap.
func WithMaxHosts(n int) Option {
	return func(g *Graph) {
		if n >= 0 {
			g.maxHosts = n
		}
	}
}

// WithPublicNetworkName overrides the name used for the synthesized public network.
func WithPublicNetworkName(name string) Option {
	return func(g *Graph) {
		if name != "" {
			g.publicName = name
		}
	}
}

// WithIDGenerator replaces the uuid based id generator. kind is one of
// "net" or "conn".
func WithIDGenerator(fn func(kind string) string) Option {
	return func(g *Graph) {
		if fn != nil {
			g.newID = fn
		}
	}
}

// New creates an empty graph.
func New(opts ...Option) *Graph {
	g := &Graph{
		portCount:  domain.DefaultPortCount,
		publicName: domain.PublicNetworkName,
		allocStart: DefaultAllocatorStart,
		newID: func(kind string) string {
			return kind + "-" + uuid.NewString()
		},
	}
	for _, opt := range opts {
		opt(g)
	}
	g.reset()
	return g
}

func (g *Graph) reset() {
	g.alloc = NewAllocator(g.allocStart)
	g.hosts = make(map[string]*domain.Host)
	g.hostOrder = ordered{}
	g.hostNames = make(map[string]string)
	g.interfaces = make(map[string]domain.Interface)
	g.networks = make(map[string]*domain.Network)
	g.networkOrder = ordered{}
	g.networkNames = make(map[string]string)
	g.ports = make(map[string]domain.Port)
	g.publicID = ""
	g.connections = make(map[string]*domain.Connection)
	g.connOrder = ordered{}
	g.connSeq = make(map[string]int)
	g.nextSeq = 0
	g.byEndpoint = make(map[string]map[string]struct{})
}

// Empty returns a new, empty graph with the same settings as g.
func (g *Graph) Empty() *Graph {
	e := &Graph{
		portCount:  g.portCount,
		maxHosts:   g.maxHosts,
		publicName: g.publicName,
		allocStart: g.allocStart,
		newID:      g.newID,
	}
	e.reset()
	return e
}

// Replace swaps g's contents for those of other. other must not be used
// afterwards.
func (g *Graph) Replace(other *Graph) {
	*g = *other
}

// Allocator returns the port allocator owned by the graph.
func (g *Graph) Allocator() *Allocator {
	return g.alloc
}

// PortCount returns the port capacity used for new networks.
func (g *Graph) PortCount() int {
	return g.portCount
}

// PublicNetworkName returns the reserved public network name.
func (g *Graph) PublicNetworkName() string {
	return g.publicName
}

// exists reports whether id is registered for any entity kind.
func (g *Graph) exists(id string) bool {
	if _, ok := g.hosts[id]; ok {
		return true
	}
	if _, ok := g.interfaces[id]; ok {
		return true
	}
	if _, ok := g.networks[id]; ok {
		return true
	}
	if _, ok := g.ports[id]; ok {
		return true
	}
	_, ok := g.connections[id]
	return ok
}

// AddHost inserts a host and its interfaces.
func (g *Graph) AddHost(spec domain.HostSpec) (string, error) {
	if spec.ID == "" {
		return "", fmt.Errorf("%w: host id is required", domain.ErrValidation)
	}
	if g.exists(spec.ID) {
		return "", fmt.Errorf("%w: host %s", domain.ErrDuplicateID, spec.ID)
	}
	if g.maxHosts > 0 && len(g.hosts) >= g.maxHosts {
		return "", fmt.Errorf("%w: a design may not have more than %d hosts", domain.ErrValidation, g.maxHosts)
	}

	// A nameless host is shown under its id, so the id must pass the
	// host name rules.
	name := spec.Name
	if name == "" {
		name = spec.ID
	}
	if err := g.checkHostName(spec.ID, name); err != nil {
		return "", err
	}

	host := &domain.Host{
		ID:          spec.ID,
		Name:        name,
		Description: spec.Description,
		Interfaces:  make([]domain.Interface, 0, len(spec.Interfaces)),
	}
	seen := make(map[string]bool, len(spec.Interfaces))
	for _, is := range spec.Interfaces {
		if is.ID == "" {
			return "", fmt.Errorf("%w: host %s: interface id is required", domain.ErrValidation, spec.ID)
		}
		if seen[is.ID] || is.ID == spec.ID || g.exists(is.ID) {
			return "", fmt.Errorf("%w: interface %s", domain.ErrDuplicateID, is.ID)
		}
		seen[is.ID] = true

		ifName := is.Name
		if ifName == "" {
			ifName = is.ID
		}
		host.Interfaces = append(host.Interfaces, domain.Interface{ID: is.ID, Name: ifName, HostID: spec.ID})
	}

	g.hosts[host.ID] = host
	g.hostOrder.add(host.ID)
	g.hostNames[host.Name] = host.ID
	for _, iface := range host.Interfaces {
		g.interfaces[iface.ID] = iface
	}
	return host.ID, nil
}

// checkHostName applies the format rules and hostname uniqueness.
func (g *Graph) checkHostName(self, name string) error {
	if err := domain.ValidateHostName(name); err != nil {
		return err
	}
	if owner, ok := g.hostNames[name]; ok && owner != self {
		return &domain.NameError{Kind: "host", Name: name, Message: "All hostnames must be unique."}
	}
	return nil
}

// AddNetwork creates a network with a full pool of ports.
func (g *Graph) AddNetwork(name string, public bool) (string, error) {
	id := g.newID("net")
	n := domain.Network{ID: id, Name: name, Public: public}
	for i := 0; i < g.portCount; i++ {
		n.Ports = append(n.Ports, domain.Port{ID: fmt.Sprintf("%s-p%d", id, i+1)})
	}
	if err := g.InsertNetwork(n); err != nil {
		return "", err
	}
	return id, nil
}

// InsertNetwork registers a network whose id and port ids are already
// chosen. Port indexes and back references are reassigned from list order.
func (g *Graph) InsertNetwork(n domain.Network) error {
	if n.ID == "" {
		return fmt.Errorf("%w: network id is required", domain.ErrValidation)
	}
	if g.exists(n.ID) {
		return fmt.Errorf("%w: network %s", domain.ErrDuplicateID, n.ID)
	}
	if err := g.checkNetworkName(n.ID, n.Name, n.Public); err != nil {
		return err
	}
	if n.Public && g.publicID != "" {
		return fmt.Errorf("%w: network %q is already the public network", domain.ErrValidation, g.networks[g.publicID].Name)
	}
	if len(n.Ports) == 0 {
		return fmt.Errorf("%w: network %s has no ports", domain.ErrValidation, n.ID)
	}

	net := n.Clone()
	seen := make(map[string]bool, len(net.Ports))
	for i := range net.Ports {
		pid := net.Ports[i].ID
		if pid == "" {
			return fmt.Errorf("%w: network %s: port %d has no id", domain.ErrValidation, n.ID, i)
		}
		if seen[pid] || pid == n.ID || g.exists(pid) {
			return fmt.Errorf("%w: port %s", domain.ErrDuplicateID, pid)
		}
		seen[pid] = true
		net.Ports[i].Index = i
		net.Ports[i].NetworkID = n.ID
	}

	g.networks[net.ID] = &net
	g.networkOrder.add(net.ID)
	g.networkNames[net.Name] = net.ID
	for _, p := range net.Ports {
		g.ports[p.ID] = p
	}
	if net.Public {
		g.publicID = net.ID
	}
	return nil
}

// checkNetworkName applies the format rules, uniqueness and the public
// name reservation. self is the id of the network being named.
func (g *Graph) checkNetworkName(self, name string, public bool) error {
	if err := domain.ValidateNetworkName(name); err != nil {
		return err
	}
	if owner, ok := g.networkNames[name]; ok && owner != self {
		return &domain.NameError{Kind: "network", Name: name, Message: "All network names must be unique."}
	}
	if name == g.publicName && !public {
		return &domain.NameError{Kind: "network", Name: name, Message: "This name is reserved for the public network."}
	}
	return nil
}

// RenameNetwork changes a network's name.
func (g *Graph) RenameNetwork(id, name string) error {
	n, ok := g.networks[id]
	if !ok {
		return fmt.Errorf("%w: network %s", domain.ErrNotFound, id)
	}
	if n.Name == name {
		return nil
	}
	if err := g.checkNetworkName(id, name, n.Public); err != nil {
		return err
	}
	delete(g.networkNames, n.Name)
	n.Name = name
	g.networkNames[name] = id
	return nil
}

// EnsurePublicNetwork creates the public network if none exists. It
// returns the public network id and whether it was created.
func (g *Graph) EnsurePublicNetwork() (string, bool, error) {
	if g.publicID != "" {
		return g.publicID, false, nil
	}
	id, err := g.AddNetwork(g.publicName, true)
	if err != nil {
		return "", false, err
	}
	return id, true, nil
}

// RemoveHost deletes a host, its interfaces and their connections.
func (g *Graph) RemoveHost(id string) error {
	host, ok := g.hosts[id]
	if !ok {
		return fmt.Errorf("%w: host %s", domain.ErrNotFound, id)
	}
	for _, iface := range host.Interfaces {
		for connID := range g.byEndpoint[iface.ID] {
			g.drop(connID)
		}
		delete(g.byEndpoint, iface.ID)
		delete(g.interfaces, iface.ID)
	}
	delete(g.hosts, id)
	delete(g.hostNames, host.Name)
	g.hostOrder.remove(id)
	return nil
}

// RemoveNetwork deletes a network, its ports and every connection on
// them. The public network cannot be removed.
func (g *Graph) RemoveNetwork(id string) error {
	n, ok := g.networks[id]
	if !ok {
		return fmt.Errorf("%w: network %s", domain.ErrNotFound, id)
	}
	if n.Public {
		return fmt.Errorf("%w: the public network cannot be removed", domain.ErrValidation)
	}
	for _, p := range n.Ports {
		for connID := range g.byEndpoint[p.ID] {
			g.drop(connID)
		}
		delete(g.byEndpoint, p.ID)
		delete(g.ports, p.ID)
	}
	delete(g.networkNames, n.Name)
	delete(g.networks, id)
	g.networkOrder.remove(id)
	return nil
}

// Connect wires an interface to a network. The port is chosen by the
// allocator.
func (g *Graph) Connect(interfaceID, networkID string, tagged bool) (string, error) {
	edge, err := g.Validator().Validate(interfaceID, networkID)
	if err != nil {
		return "", err
	}
	if edge.PortID != "" {
		return "", fmt.Errorf("%w: %s is a port, not a network", domain.ErrInvalidConnection, networkID)
	}
	if err := g.Enforcer().Check(edge.InterfaceID, "", tagged); err != nil {
		return "", err
	}

	n := g.networks[edge.NetworkID]
	port, err := g.alloc.Allocate(n.Ports, g.portOccupied)
	if err != nil {
		return "", fmt.Errorf("network %s: %w", n.Name, err)
	}

	return g.commitNew(edge.InterfaceID, port.ID, tagged)
}

// ConnectPort wires an interface to a specific port. The endpoints may be
// given in either order; a network id instead of a port id falls back to
// Connect.
func (g *Graph) ConnectPort(a, b string, tagged bool) (string, error) {
	edge, err := g.Validator().Validate(a, b)
	if err != nil {
		return "", err
	}
	if edge.PortID == "" {
		return g.Connect(edge.InterfaceID, edge.NetworkID, tagged)
	}
	if err := g.Validator().CheckPortFree(edge.PortID); err != nil {
		return "", err
	}
	if err := g.Enforcer().Check(edge.InterfaceID, "", tagged); err != nil {
		return "", err
	}
	return g.commitNew(edge.InterfaceID, edge.PortID, tagged)
}

// AddConnection registers a connection whose id is already chosen.
func (g *Graph) AddConnection(c domain.Connection) error {
	if c.ID == "" {
		return fmt.Errorf("%w: connection id is required", domain.ErrValidation)
	}
	if g.exists(c.ID) {
		return fmt.Errorf("%w: connection %s", domain.ErrDuplicateID, c.ID)
	}
	edge, err := g.Validator().Validate(c.InterfaceID, c.PortID)
	if err != nil {
		return err
	}
	if edge.PortID == "" {
		return fmt.Errorf("%w: connection %s must target a port", domain.ErrInvalidConnection, c.ID)
	}
	if err := g.Validator().CheckPortFree(edge.PortID); err != nil {
		return err
	}
	if err := g.Enforcer().Check(edge.InterfaceID, "", c.Tagged); err != nil {
		return err
	}
	g.commit(&domain.Connection{ID: c.ID, InterfaceID: edge.InterfaceID, PortID: edge.PortID, Tagged: c.Tagged})
	return nil
}

func (g *Graph) commitNew(interfaceID, portID string, tagged bool) (string, error) {
	id := g.newID("conn")
	if g.exists(id) {
		return "", fmt.Errorf("%w: connection %s", domain.ErrDuplicateID, id)
	}
	g.commit(&domain.Connection{ID: id, InterfaceID: interfaceID, PortID: portID, Tagged: tagged})
	return id, nil
}

// Disconnect removes a connection and frees its port.
func (g *Graph) Disconnect(connectionID string) error {
	if _, ok := g.connections[connectionID]; !ok {
		return fmt.Errorf("%w: connection %s", domain.ErrNotFound, connectionID)
	}
	g.drop(connectionID)
	return nil
}

// SetTagged changes a connection's tag state. Untagging is checked
// against the interface's other connections.
func (g *Graph) SetTagged(connectionID string, tagged bool) error {
	c, ok := g.connections[connectionID]
	if !ok {
		return fmt.Errorf("%w: connection %s", domain.ErrNotFound, connectionID)
	}
	if err := g.Enforcer().Check(c.InterfaceID, c.ID, tagged); err != nil {
		return err
	}
	c.Tagged = tagged
	return nil
}

func (g *Graph) commit(c *domain.Connection) {
	g.connections[c.ID] = c
	g.connOrder.add(c.ID)
	g.connSeq[c.ID] = g.nextSeq
	g.nextSeq++
	g.link(c.InterfaceID, c.ID)
	g.link(c.PortID, c.ID)
}

func (g *Graph) drop(connectionID string) {
	c, ok := g.connections[connectionID]
	if !ok {
		return
	}
	g.unlink(c.InterfaceID, c.ID)
	g.unlink(c.PortID, c.ID)
	delete(g.connections, connectionID)
	delete(g.connSeq, connectionID)
	g.connOrder.remove(connectionID)
}

func (g *Graph) link(endpointID, connectionID string) {
	set, ok := g.byEndpoint[endpointID]
	if !ok {
		set = make(map[string]struct{})
		g.byEndpoint[endpointID] = set
	}
	set[connectionID] = struct{}{}
}

func (g *Graph) unlink(endpointID, connectionID string) {
	set := g.byEndpoint[endpointID]
	delete(set, connectionID)
	if len(set) == 0 {
		delete(g.byEndpoint, endpointID)
	}
}

func (g *Graph) portOccupied(portID string) bool {
	return len(g.byEndpoint[portID]) > 0
}

// ordered keeps insertion order for registry listings.
type ordered struct {
	ids []string
}

func (o *ordered) add(id string) {
	o.ids = append(o.ids, id)
}

func (o *ordered) remove(id string) {
	for i, v := range o.ids {
		if v == id {
			o.ids = append(o.ids[:i:i], o.ids[i+1:]...)
			return
		}
	}
}
