package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"podnet/internal/adapter"
	"podnet/internal/codec"
	"podnet/internal/config"
	"podnet/internal/domain"
	"podnet/internal/loader"
	"podnet/internal/repository"
	"podnet/internal/repository/sqlite"
	"podnet/internal/service"
	"podnet/internal/telemetry"
	"podnet/internal/topology"
	"podnet/internal/watcher"
)

var errUsage = fmt.Errorf("%w: invalid arguments", domain.ErrValidation)

type app struct {
	cfg    *config.Config
	logger *zap.Logger
	out    io.Writer
}

// newEditor builds an empty design with the configured limits.
func (a *app) newEditor() (*service.EditorService, *service.EventBus, error) {
	bus := service.NewEventBus()
	editor, err := service.NewEditorService(topology.New(a.cfg.GraphOptions()...), bus, a.logger)
	if err != nil {
		return nil, nil, err
	}
	return editor, bus, nil
}

func (a *app) loadFile(editor *service.EditorService, path string) (codec.RestoreResult, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return codec.RestoreResult{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return editor.OnDocumentLoaded(raw, codec.FormatFromPath(path))
}

func (a *app) export(editor *service.EditorService, format string, w io.Writer) error {
	exp, err := codec.ExporterFor(format)
	if err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	return exp.Export(editor.Document(), w)
}

func (a *app) validate(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: validate <doc>", errUsage)
	}
	editor, _, err := a.newEditor()
	if err != nil {
		return err
	}
	res, err := a.loadFile(editor, args[0])
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "%s: %d hosts, %d networks, %d connections\n",
		args[0], res.Hosts, res.Networks, res.Connections)
	if res.PublicSynthesized {
		fmt.Fprintf(a.out, "public network %s was added\n", res.PublicNetworkID)
	}
	return nil
}

func (a *app) convert(args []string) error {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	to := fs.String("to", "yaml", "output format: json, yaml or ansible")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if fs.NArg() < 1 || fs.NArg() > 2 {
		return fmt.Errorf("%w: convert [-to fmt] <doc> [out]", errUsage)
	}

	editor, _, err := a.newEditor()
	if err != nil {
		return err
	}
	if _, err := a.loadFile(editor, fs.Arg(0)); err != nil {
		return err
	}

	if fs.NArg() == 1 {
		return a.export(editor, *to, a.out)
	}
	f, err := os.Create(fs.Arg(1))
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", fs.Arg(1), err)
	}
	defer f.Close()
	return a.export(editor, *to, f)
}

func (a *app) segments(args []string) error {
	fs := flag.NewFlagSet("segments", flag.ContinueOnError)
	host := fs.String("host", "", "report only the segment and wiring of this host")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("%w: segments [-host id] <doc>", errUsage)
	}
	editor, _, err := a.newEditor()
	if err != nil {
		return err
	}
	if _, err := a.loadFile(editor, fs.Arg(0)); err != nil {
		return err
	}

	if *host != "" {
		return a.hostReport(editor, *host)
	}
	for i, seg := range editor.Segments() {
		fmt.Fprintf(a.out, "segment %d\n  networks: %s\n  hosts: %s\n",
			i+1, strings.Join(seg.Networks, ", "), strings.Join(seg.Hosts, ", "))
	}
	return nil
}

// hostReport prints the layer-2 reach of one host and the VLAN state of
// each of its interfaces.
func (a *app) hostReport(editor *service.EditorService, hostID string) error {
	h, err := editor.Host(hostID)
	if err != nil {
		return err
	}
	seg, err := editor.Reachable(hostID)
	if err != nil {
		return err
	}
	shared, err := editor.SharedNetworks(hostID)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "host %s (%s)\n  reaches hosts: %s\n  reaches networks: %s\n  shared networks: %s\n",
		h.ID, h.Name, strings.Join(seg.Hosts, ", "), strings.Join(seg.Networks, ", "), strings.Join(shared, ", "))
	for _, ifaceID := range h.InterfaceIDs() {
		state, conns, err := editor.InterfaceState(ifaceID)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "  interface %s: %s\n", ifaceID, state)
		for _, c := range conns {
			fmt.Fprintf(a.out, "    %s %s\n", c.PortID, c.TagState())
		}
	}
	return nil
}

func (a *app) prefill(args []string) error {
	fs := flag.NewFlagSet("prefill", flag.ContinueOnError)
	to := fs.String("to", "json", "output format: json, yaml or ansible")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("%w: prefill [-to fmt] <file>", errUsage)
	}

	p, err := loader.LoadFile(fs.Arg(0))
	if err != nil {
		return err
	}
	editor, _, err := a.newEditor()
	if err != nil {
		return err
	}
	if err := editor.ApplyPrefill(p); err != nil {
		return err
	}
	return a.export(editor, *to, a.out)
}

func (a *app) discover(args []string) error {
	fs := flag.NewFlagSet("discover", flag.ContinueOnError)
	targets := fs.String("targets", strings.Join(a.cfg.Discovery.Targets, ","), "comma-separated CIDRs or addresses")
	ports := fs.String("ports", a.cfg.Discovery.Ports, "ports to scan")
	skipPing := fs.Bool("skip-ping", false, "treat all hosts as online")
	services := fs.Bool("service-detection", false, "detect service names and versions (-sV)")
	timeout := fs.Duration("timeout", 10*time.Minute, "scan timeout")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scanner := adapter.NewNmapAdapter(strings.Split(*targets, ","), a.logger,
		adapter.WithPortRange(*ports),
		adapter.WithSkipHostDiscovery(*skipPing),
		adapter.WithServiceDetection(*services),
		adapter.WithTimeout(*timeout),
	)
	p, err := scanner.Discover(ctx)
	if err != nil {
		return err
	}
	return p.Marshal(a.out)
}

func (a *app) snapshot(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: snapshot save|load|list|delete", errUsage)
	}

	fs := flag.NewFlagSet("snapshot "+args[0], flag.ContinueOnError)
	name := fs.String("name", "", "snapshot name")
	desc := fs.String("desc", "", "snapshot description (save)")
	to := fs.String("to", "json", "output format (load)")
	network := fs.String("network", "", "only snapshots containing this network (list)")
	if err := fs.Parse(args[1:]); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	repo, err := sqlite.New(a.cfg.Database.Path, a.logger)
	if err != nil {
		return err
	}
	defer repo.Close()

	editor, _, err := a.newEditor()
	if err != nil {
		return err
	}
	snaps := service.NewSnapshotService(repo, editor, a.logger)
	ctx := context.Background()

	switch args[0] {
	case "save":
		if *name == "" || fs.NArg() != 1 {
			return fmt.Errorf("%w: snapshot save -name N [-desc D] <doc>", errUsage)
		}
		if _, err := a.loadFile(editor, fs.Arg(0)); err != nil {
			return err
		}
		snap, err := snaps.Save(ctx, *name, *desc)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "saved %s (%s)\n", snap.Name, snap.ID)
		return nil

	case "load":
		if *name == "" {
			return fmt.Errorf("%w: snapshot load -name N [-to fmt]", errUsage)
		}
		if _, err := snaps.Load(ctx, *name); err != nil {
			return err
		}
		return a.export(editor, *to, a.out)

	case "list":
		var list []repository.Snapshot
		if *network != "" {
			list, err = snaps.FindByNetwork(ctx, *network)
		} else {
			list, err = snaps.List(ctx)
		}
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tHOSTS\tNETWORKS\tCONNECTIONS\tUPDATED")
		for _, s := range list {
			fmt.Fprintf(tw, "%s\t%d\t%s\t%d\t%s\n", s.Name, s.Hosts,
				strings.Join(s.Networks, ","), s.Connections, s.UpdatedAt.Format(time.RFC3339))
		}
		return tw.Flush()

	case "delete":
		if *name == "" {
			return fmt.Errorf("%w: snapshot delete -name N", errUsage)
		}
		return snaps.Delete(ctx, *name)

	default:
		return fmt.Errorf("%w: unknown snapshot command %q", errUsage, args[0])
	}
}

func (a *app) watch(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: watch <doc>", errUsage)
	}
	path := args[0]

	editor, bus, err := a.newEditor()
	if err != nil {
		return err
	}

	events := make(chan service.Event, 100)
	bus.Subscribe(events)
	go func() {
		for event := range events {
			a.logger.Debug("event", zap.String("type", string(event.Type)))
		}
	}()

	if a.cfg.Metrics.Addr != "" {
		telemetry.InitMetrics()
		go a.serveMetrics(a.cfg.Metrics.Addr)
	}

	reload := func(p string) {
		res, err := a.loadFile(editor, p)
		if err != nil {
			// the editor already logged the rejection; keep the last good design
			return
		}
		a.logger.Info("design loaded",
			zap.String("path", p),
			zap.Int("hosts", res.Hosts),
			zap.Int("networks", res.Networks),
			zap.Int("connections", res.Connections),
			zap.Bool("public_synthesized", res.PublicSynthesized))
	}
	reload(path)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = watcher.New(path, reload, a.logger).Watch(ctx)
	if errors.Is(err, context.Canceled) {
		a.logger.Info("watch stopped")
		return nil
	}
	return err
}

func (a *app) serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	a.logger.Info("serving metrics", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		a.logger.Error("metrics server failed", zap.Error(err))
	}
}
