package telemetry

import (
	"context"
	"net"
	"os"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
)

// newResource builds the trace resource describing this profiler instance.
// host.name carries the host's IP so samples from a fleet of analysis
// boxes can be told apart, and any OTEL_RESOURCE_ATTRIBUTES entries are
// appended on top of the service identity.
func newResource(ctx context.Context, cfg *Config) (*resource.Resource, error) {
	attrs := []attribute.KeyValue{
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
	}
	if ip := hostIP(); ip != "" {
		attrs = append(attrs, semconv.HostName(ip))
	}
	for k, v := range cfg.ResourceAttrs {
		attrs = append(attrs, attribute.String(k, v))
	}

	return resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(semconv.SchemaURL, attrs...),
	)
}

// hostIP resolves the hostname to an IP, preferring IPv4 and falling back
// to interface addresses. Returns "" when nothing usable is found.
func hostIP() string {
	hostname, err := os.Hostname()
	if err != nil {
		return interfaceIP()
	}
	addrs, err := net.LookupIP(hostname)
	if err != nil {
		return interfaceIP()
	}

	var fallback string
	for _, addr := range addrs {
		if addr.IsLoopback() {
			continue
		}
		if v4 := addr.To4(); v4 != nil {
			return v4.String()
		}
		if fallback == "" {
			fallback = addr.String()
		}
	}
	if fallback != "" {
		return fallback
	}
	return interfaceIP()
}

// interfaceIP returns the first non-loopback IP of an up interface.
func interfaceIP() string {
	ifaces, err := net.Interfaces()
	if err != nil {
		return ""
	}
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			var ip net.IP
			switch v := addr.(type) {
			case *net.IPNet:
				ip = v.IP
			case *net.IPAddr:
				ip = v.IP
			}
			if ip == nil || ip.IsLoopback() {
				continue
			}
			if v4 := ip.To4(); v4 != nil {
				return v4.String()
			}
		}
	}
	return ""
}
