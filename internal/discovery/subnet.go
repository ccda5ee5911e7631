package discovery

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
)

// ErrNoSubnet is returned when the host has no usable private IPv4 network.
var ErrNoSubnet = errors.New("no local IPv4 network")

// LocalSubnet returns the "a.b.c" prefix of the first up, non-loopback,
// private IPv4 address. When iface is set only that interface is considered.
func LocalSubnet(iface string) (string, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return "", fmt.Errorf("list interfaces: %w", err)
	}
	iface = strings.TrimSpace(iface)
	for _, ifc := range ifaces {
		if iface != "" && ifc.Name != iface {
			continue
		}
		if ifc.Flags&net.FlagUp == 0 || ifc.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := ifc.Addrs()
		if err != nil {
			continue
		}
		if subnet, ok := subnetFromAddrs(addrs); ok {
			return subnet, nil
		}
	}
	if iface != "" {
		return "", fmt.Errorf("interface %s: %w", iface, ErrNoSubnet)
	}
	return "", ErrNoSubnet
}

func subnetFromAddrs(addrs []net.Addr) (string, bool) {
	for _, addr := range addrs {
		var ip net.IP
		switch v := addr.(type) {
		case *net.IPNet:
			ip = v.IP
		case *net.IPAddr:
			ip = v.IP
		}
		ip4 := ip.To4()
		if ip4 == nil || ip4.IsLoopback() || !ip4.IsPrivate() {
			continue
		}
		return fmt.Sprintf("%d.%d.%d", ip4[0], ip4[1], ip4[2]), true
	}
	return "", false
}

// ParseSubnet accepts "a.b.c", "a.b.c.d" or "a.b.c.0/24" and returns the
// "a.b.c" prefix.
func ParseSubnet(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", ErrNoSubnet
	}
	if prefix, bits, ok := strings.Cut(s, "/"); ok {
		if bits != "24" {
			return "", fmt.Errorf("subnet %q: only /24 networks are supported", raw)
		}
		s = prefix
	}
	parts := strings.Split(s, ".")
	if len(parts) == 4 {
		parts = parts[:3]
	}
	if len(parts) != 3 {
		return "", fmt.Errorf("subnet %q: want a.b.c", raw)
	}
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 || n > 255 {
			return "", fmt.Errorf("subnet %q: bad octet %q", raw, p)
		}
	}
	return strings.Join(parts, "."), nil
}

// Hosts lists subnet.1 through subnet.254.
func Hosts(subnet string) []string {
	hosts := make([]string, 0, 254)
	for i := 1; i <= 254; i++ {
		hosts = append(hosts, subnet+"."+strconv.Itoa(i))
	}
	return hosts
}
