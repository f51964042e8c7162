// Package netutil определяет адрес машины в локальной сети для баннера "Serving on".
package netutil

import (
	"fmt"
	"net"

	"github.com/jackpal/gateway"

	"github.com/sir_venger/cactus/pkg/logger"
)

const fallbackHost = "localhost"

// LocalIP возвращает IPv4 интерфейса, через который виден шлюз по умолчанию.
// Без шлюза берётся первый не-loopback IPv4, а если нет и его, то localhost.
func LocalIP() string {
	ifaces, err := interfaceAddrs()
	if err != nil {
		logger.Warn("list interfaces", "error", err)
		return fallbackHost
	}

	gw, err := gateway.DiscoverGateway()
	if err != nil {
		logger.Debug("discover gateway", "error", err)
	}

	if ip := pickAddr(ifaces, gw); ip != nil {
		return ip.String()
	}
	return fallbackHost
}

// LocalNets возвращает подсети поднятых интерфейсов: по ним выбирается адрес найденного сервера.
func LocalNets() []*net.IPNet {
	addrs, err := interfaceAddrs()
	if err != nil {
		logger.Debug("list interfaces", "error", err)
		return nil
	}
	return ipNets(addrs)
}

func ipNets(addrs []net.Addr) []*net.IPNet {
	var out []*net.IPNet
	for _, a := range addrs {
		if ipnet, ok := a.(*net.IPNet); ok {
			out = append(out, ipnet)
		}
	}
	return out
}

func interfaceAddrs() ([]net.Addr, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, fmt.Errorf("interfaces: %w", err)
	}

	var out []net.Addr
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			logger.Debug("interface addresses", "iface", iface.Name, "error", err)
			continue
		}
		out = append(out, addrs...)
	}
	return out, nil
}

// pickAddr предпочитает адрес из подсети шлюза, иначе первый глобальный IPv4.
func pickAddr(addrs []net.Addr, gw net.IP) net.IP {
	var first net.IP
	for _, a := range addrs {
		ipnet, ok := a.(*net.IPNet)
		if !ok {
			continue
		}
		ip4 := ipnet.IP.To4()
		if ip4 == nil || ip4.IsLoopback() || !ip4.IsGlobalUnicast() {
			continue
		}
		if gw != nil && ipnet.Contains(gw) {
			return ip4
		}
		if first == nil {
			first = ip4
		}
	}
	return first
}
