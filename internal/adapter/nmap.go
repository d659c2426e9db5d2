package adapter

import (
	"context"
	"fmt"
	"net"
	"sort"
	"strconv"
	"strings"
	"time"

	nmap "github.com/Ullaakut/nmap/v3"
	"go.uber.org/zap"

	"podnet/internal/domain"
	"podnet/internal/loader"
)

// NmapAdapter discovers hosts with nmap and converts them to prefill entries
type NmapAdapter struct {
	targets           []string
	timeout           time.Duration
	portRange         string
	serviceDetection  bool
	skipHostDiscovery bool
	ifacePrefix       string
	logger            *zap.Logger
}

// NewNmapAdapter creates a new nmap-based discovery adapter
// targets: list of CIDR ranges or individual IPs to scan
func NewNmapAdapter(targets []string, logger *zap.Logger, opts ...NmapOption) *NmapAdapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	adapter := &NmapAdapter{
		targets:          targets,
		timeout:          10 * time.Minute,
		portRange:        "22,80,443",
		serviceDetection: false,
		ifacePrefix:      "eth",
		logger:           logger.Named("nmap"),
	}

	for _, opt := range opts {
		opt(adapter)
	}

	return adapter
}

// Discover scans every target and returns the live hosts as a prefill.
// A target that fails to scan is logged and skipped; Discover fails only
// when the targets are invalid or nothing could be scanned at all.
func (n *NmapAdapter) Discover(ctx context.Context) (*loader.Prefill, error) {
	targets, err := expandTargets(n.targets)
	if err != nil {
		return nil, err
	}
	if len(targets) == 0 {
		return nil, fmt.Errorf("%w: no discovery targets configured", domain.ErrValidation)
	}

	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	n.logger.Info("starting scan", zap.Strings("targets", targets), zap.String("ports", n.portRange))

	prefill := &loader.Prefill{}
	seen := make(map[string]bool)
	var lastErr error
	scanned := 0

	for _, target := range targets {
		result, err := n.scanTarget(ctx, target)
		if err != nil {
			n.logger.Warn("scan failed", zap.String("target", target), zap.Error(err))
			lastErr = err
			continue
		}
		scanned++
		for _, h := range n.HostsFromRun(result) {
			if seen[h.ID] {
				continue
			}
			seen[h.ID] = true
			prefill.Hosts = append(prefill.Hosts, h)
		}
	}

	if scanned == 0 && lastErr != nil {
		return nil, fmt.Errorf("discovery failed: %w", lastErr)
	}

	n.logger.Info("scan complete", zap.Int("hosts", len(prefill.Hosts)))
	return prefill, nil
}

// scanTarget performs an nmap scan on a single target
func (n *NmapAdapter) scanTarget(ctx context.Context, target string) (*nmap.Run, error) {
	opts := []nmap.Option{
		nmap.WithTargets(target),
		nmap.WithPorts(n.portRange),
	}
	if n.serviceDetection {
		opts = append(opts, nmap.WithServiceInfo())
	}
	if n.skipHostDiscovery {
		opts = append(opts, nmap.WithSkipHostDiscovery())
	}

	scanner, err := nmap.NewScanner(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create scanner: %w", err)
	}

	n.logger.Debug("scanning target", zap.String("target", target))
	result, warnings, err := scanner.Run()
	if err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}
	if warnings != nil && len(*warnings) > 0 {
		n.logger.Warn("nmap warnings", zap.String("target", target), zap.Strings("warnings", *warnings))
	}
	return result, nil
}

// HostsFromRun converts nmap results into prefill hosts. Hosts that are
// not up are skipped. Each IPv4 or IPv6 address becomes one interface.
func (n *NmapAdapter) HostsFromRun(result *nmap.Run) []loader.HostYAML {
	if result == nil {
		return nil
	}

	var hosts []loader.HostYAML
	for _, host := range result.Hosts {
		if host.Status.State != "up" {
			continue
		}

		var ips []string
		for _, addr := range host.Addresses {
			if addr.AddrType == "ipv4" || addr.AddrType == "ipv6" {
				ips = append(ips, addr.Addr)
			}
		}
		if len(ips) == 0 {
			continue
		}

		id := "host-" + sanitizeIP(ips[0])
		h := loader.HostYAML{
			ID:          id,
			Name:        hostName(host, id),
			Description: describe(ips, host.Ports),
		}
		for i := range ips {
			h.Interfaces = append(h.Interfaces, loader.InterfaceYAML{
				ID:   fmt.Sprintf("%s-if%d", id, i),
				Name: fmt.Sprintf("%s%d", n.ifacePrefix, i),
			})
		}

		n.logger.Debug("discovered host",
			zap.String("id", h.ID),
			zap.String("name", h.Name),
			zap.Int("interfaces", len(h.Interfaces)))
		hosts = append(hosts, h)
	}
	return hosts
}

// hostName derives a valid host name from the reverse DNS entry, falling
// back to the generated id.
func hostName(host nmap.Host, fallback string) string {
	if len(host.Hostnames) == 0 {
		return fallback
	}
	name := host.Hostnames[0].Name
	if idx := strings.Index(name, "."); idx > 0 {
		name = name[:idx]
	}
	name = strings.Trim(strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		}
		return '-'
	}, name), "-")
	if domain.ValidateHostName(name) != nil {
		return fallback
	}
	return name
}

func describe(ips []string, ports []nmap.Port) string {
	desc := "discovered at " + strings.Join(ips, ", ")
	open := openPorts(ports)
	if len(open) == 0 {
		return desc
	}
	labels := make([]string, len(open))
	for i, p := range open {
		labels[i] = strconv.Itoa(int(p.ID))
		// service names are only present with service detection
		if p.Service.Name != "" {
			labels[i] += "/" + p.Service.Name
		}
	}
	return desc + "; open ports " + strings.Join(labels, ",")
}

// openPorts returns the open ports sorted by number
func openPorts(ports []nmap.Port) []nmap.Port {
	var open []nmap.Port
	for _, port := range ports {
		if port.State.State == "open" {
			open = append(open, port)
		}
	}
	sort.Slice(open, func(i, j int) bool { return open[i].ID < open[j].ID })
	return open
}

// sanitizeIP converts an IP address to an id fragment
func sanitizeIP(ip string) string {
	if parsed := net.ParseIP(ip); parsed != nil {
		ip = parsed.String()
	}
	return strings.Trim(strings.NewReplacer(".", "-", ":", "-").Replace(ip), "-")
}

// expandTargets validates CIDR targets; nmap handles the expansion itself
func expandTargets(targets []string) ([]string, error) {
	var expanded []string
	for _, target := range targets {
		target = strings.TrimSpace(target)
		if target == "" {
			continue
		}
		if strings.Contains(target, "/") {
			_, ipNet, err := net.ParseCIDR(target)
			if err != nil {
				return nil, fmt.Errorf("%w: invalid CIDR %s: %v", domain.ErrValidation, target, err)
			}
			expanded = append(expanded, ipNet.String())
		} else {
			expanded = append(expanded, target)
		}
	}
	return expanded, nil
}

// parsePorts validates a port range string
// Supported: "80,443,8080" or "1-1000" or "22,80-443,8080"
func parsePorts(portRange string) (string, error) {
	for _, part := range strings.Split(portRange, ",") {
		part = strings.TrimSpace(part)
		if lo, hi, ok := strings.Cut(part, "-"); ok {
			start, err := strconv.Atoi(strings.TrimSpace(lo))
			if err != nil || start < 1 || start > 65535 {
				return "", fmt.Errorf("invalid port number: %s", lo)
			}
			end, err := strconv.Atoi(strings.TrimSpace(hi))
			if err != nil || end < 1 || end > 65535 || end < start {
				return "", fmt.Errorf("invalid port number: %s", hi)
			}
			continue
		}
		port, err := strconv.Atoi(part)
		if err != nil || port < 1 || port > 65535 {
			return "", fmt.Errorf("invalid port number: %s", part)
		}
	}
	return portRange, nil
}
