package service

import (
	"bytes"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"podnet/internal/codec"
	"podnet/internal/domain"
	"podnet/internal/telemetry"
	"podnet/internal/topology"
)

// Editor is the set of events a drawing surface sends to the design core.
type Editor interface {
	OnEdgeDrawn(sourceID, targetID string) (string, error)
	OnEdgeDeleted(connectionID string) error
	OnVertexDeleted(id string) error
	OnTagChoiceConfirmed(connectionID string, tagged bool) error
	OnDocumentLoaded(raw []byte, format string) (codec.RestoreResult, error)
	OnHostsPrefilled(specs []domain.HostSpec) ([]string, error)
	OnNetworksPrefilled(specs []domain.NetworkSpec) ([]string, error)
}

// EditorService owns a topology graph and serializes every call into it.
// Accepted changes and rejections are published on the event bus.
type EditorService struct {
	mu       sync.Mutex
	graph    *topology.Graph
	eventBus *EventBus
	logger   *zap.Logger
}

var _ Editor = (*EditorService)(nil)

// NewEditorService creates an editor over graph. The public network is
// created if the graph has none.
func NewEditorService(graph *topology.Graph, eventBus *EventBus, logger *zap.Logger) (*EditorService, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if eventBus == nil {
		eventBus = NewEventBus()
	}
	s := &EditorService{
		graph:    graph,
		eventBus: eventBus,
		logger:   logger.Named("editor"),
	}
	if _, _, err := graph.EnsurePublicNetwork(); err != nil {
		return nil, fmt.Errorf("failed to create public network: %w", err)
	}
	s.updateGauges()
	return s, nil
}

// finish records the outcome of op and publishes the success event or a
// rejection. Callers hold s.mu.
func (s *EditorService) finish(op string, err error, success Event) {
	telemetry.RecordOperation(op, err)
	if err != nil {
		reason := domain.ReasonCode(err)
		s.logger.Warn("operation rejected",
			zap.String("op", op),
			zap.String("reason", reason),
			zap.Error(err))
		s.eventBus.Publish(Event{Type: EventRejected, Payload: Rejection{
			Op:      op,
			Reason:  reason,
			Message: domain.UserMessage(err),
			Detail:  err.Error(),
		}})
		return
	}
	s.logger.Debug("operation applied", zap.String("op", op), zap.String("event", string(success.Type)))
	s.eventBus.Publish(success)
	s.updateGauges()
}

func (s *EditorService) updateGauges() {
	telemetry.SetEntityCounts(s.graph.HostCount(), s.graph.NetworkCount(), s.graph.ConnectionCount())
}

// OnEdgeDrawn commits a drawn edge as a tagged connection, since tagged
// never conflicts. The editor then asks for the tag choice and reports it
// with OnTagChoiceConfirmed, or cancels with OnEdgeDeleted. Either
// endpoint order is accepted; a network target gets a port from the
// allocator.
func (s *EditorService) OnEdgeDrawn(sourceID, targetID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.graph.ConnectPort(sourceID, targetID, true)
	var ev Event
	if err == nil {
		c, _ := s.graph.Connection(id)
		ev = Event{Type: EventConnectionCreated, Payload: c}
	}
	s.finish("edge_drawn", err, ev)
	return id, err
}

// Connect wires an interface to a network with an explicit tag choice.
func (s *EditorService) Connect(interfaceID, networkID string, tagged bool) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.graph.Connect(interfaceID, networkID, tagged)
	var ev Event
	if err == nil {
		c, _ := s.graph.Connection(id)
		ev = Event{Type: EventConnectionCreated, Payload: c}
	}
	s.finish("connect", err, ev)
	return id, err
}

// OnEdgeDeleted removes a connection.
func (s *EditorService) OnEdgeDeleted(connectionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.graph.Connection(connectionID)
	if err == nil {
		err = s.graph.Disconnect(connectionID)
	}
	s.finish("edge_deleted", err, Event{Type: EventConnectionDeleted, Payload: c})
	return err
}

// OnVertexDeleted removes a host or a network together with its
// connections.
func (s *EditorService) OnVertexDeleted(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		err error
		ev  Event
	)
	if h, herr := s.graph.Host(id); herr == nil {
		err = s.graph.RemoveHost(id)
		ev = Event{Type: EventHostRemoved, Payload: h}
	} else if n, nerr := s.graph.Network(id); nerr == nil {
		err = s.graph.RemoveNetwork(id)
		ev = Event{Type: EventNetworkRemoved, Payload: n}
	} else {
		err = fmt.Errorf("%w: no host or network %s", domain.ErrNotFound, id)
	}
	s.finish("vertex_deleted", err, ev)
	return err
}

// OnTagChoiceConfirmed sets a connection's tag state.
func (s *EditorService) OnTagChoiceConfirmed(connectionID string, tagged bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.graph.SetTagged(connectionID, tagged)
	var ev Event
	if err == nil {
		c, _ := s.graph.Connection(connectionID)
		ev = Event{Type: EventConnectionUpdated, Payload: c}
	}
	s.finish("tag_confirmed", err, ev)
	return err
}

// OnDocumentLoaded parses raw in the given format and replaces the design
// with it. On any error the current design is kept.
func (s *EditorService) OnDocumentLoaded(raw []byte, format string) (codec.RestoreResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.load(raw, format)
	s.finish("document_loaded", err, Event{Type: EventDocumentLoaded, Payload: res})
	if err == nil {
		s.logger.Info("document loaded",
			zap.Int("hosts", res.Hosts),
			zap.Int("networks", res.Networks),
			zap.Int("connections", res.Connections),
			zap.Bool("public_synthesized", res.PublicSynthesized))
	}
	return res, err
}

func (s *EditorService) load(raw []byte, format string) (codec.RestoreResult, error) {
	imp, err := codec.ImporterFor(format)
	if err != nil {
		return codec.RestoreResult{}, fmt.Errorf("%w: %w", domain.ErrCodec, err)
	}
	doc, err := imp.Parse(bytes.NewReader(raw))
	if err != nil {
		return codec.RestoreResult{}, err
	}
	return codec.Restore(s.graph, doc)
}

// OnHostsPrefilled adds each host. Hosts are applied one by one; the ids
// of accepted hosts are returned along with the joined rejections.
func (s *EditorService) OnHostsPrefilled(specs []domain.HostSpec) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addHosts(specs)
}

func (s *EditorService) addHosts(specs []domain.HostSpec) ([]string, error) {
	var (
		ids  []string
		errs []error
	)
	for _, spec := range specs {
		id, err := s.graph.AddHost(spec)
		var ev Event
		if err == nil {
			h, _ := s.graph.Host(id)
			ev = Event{Type: EventHostAdded, Payload: h}
			ids = append(ids, id)
		} else {
			errs = append(errs, fmt.Errorf("host %s: %w", spec.ID, err))
		}
		s.finish("host_prefilled", err, ev)
	}
	return ids, errors.Join(errs...)
}

// OnNetworksPrefilled creates each network, then the public network if
// none of them was public.
func (s *EditorService) OnNetworksPrefilled(specs []domain.NetworkSpec) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addNetworks(specs)
}

func (s *EditorService) addNetworks(specs []domain.NetworkSpec) ([]string, error) {
	var (
		ids  []string
		errs []error
	)
	for _, spec := range specs {
		if spec.Public && s.replaceSyntheticPublic(spec.Name) {
			n, _ := s.graph.PublicNetwork()
			ids = append(ids, n.ID)
			s.finish("network_prefilled", nil, Event{Type: EventNetworkRenamed, Payload: n})
			continue
		}
		id, err := s.graph.AddNetwork(spec.Name, spec.Public)
		var ev Event
		if err == nil {
			n, _ := s.graph.Network(id)
			ev = Event{Type: EventNetworkAdded, Payload: n}
			ids = append(ids, id)
		} else {
			errs = append(errs, fmt.Errorf("network %q: %w", spec.Name, err))
		}
		s.finish("network_prefilled", err, ev)
	}
	if _, created, err := s.graph.EnsurePublicNetwork(); err != nil {
		errs = append(errs, err)
	} else if created {
		n, _ := s.graph.PublicNetwork()
		s.finish("network_prefilled", nil, Event{Type: EventNetworkAdded, Payload: n})
	}
	return ids, errors.Join(errs...)
}

// replaceSyntheticPublic adopts a prefilled public network by renaming the
// automatically created one, as long as nothing is wired to it yet.
func (s *EditorService) replaceSyntheticPublic(name string) bool {
	n, ok := s.graph.PublicNetwork()
	if !ok || n.Name != s.graph.PublicNetworkName() {
		return false
	}
	for _, p := range n.Ports {
		if _, used := s.graph.PortConnection(p.ID); used {
			return false
		}
	}
	return s.graph.RenameNetwork(n.ID, name) == nil
}

// CreateNetwork adds a network by name.
func (s *EditorService) CreateNetwork(name string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.graph.AddNetwork(name, false)
	var ev Event
	if err == nil {
		n, _ := s.graph.Network(id)
		ev = Event{Type: EventNetworkAdded, Payload: n}
	}
	s.finish("network_created", err, ev)
	return id, err
}

// RenameNetwork renames a network.
func (s *EditorService) RenameNetwork(id, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.graph.RenameNetwork(id, name)
	var ev Event
	if err == nil {
		n, _ := s.graph.Network(id)
		ev = Event{Type: EventNetworkRenamed, Payload: n}
	}
	s.finish("network_renamed", err, ev)
	return err
}

// AddHost adds a single host chosen from the inventory.
func (s *EditorService) AddHost(spec domain.HostSpec) (string, error) {
	ids, err := s.OnHostsPrefilled([]domain.HostSpec{spec})
	if err != nil {
		return "", err
	}
	return ids[0], nil
}
