package discovery

import (
	"context"
	"fmt"
	"net"
	"strings"

	"github.com/grandcat/zeroconf"

	"github.com/sir_venger/cactus/internal/models"
	"github.com/sir_venger/cactus/pkg/dropproto"
	"github.com/sir_venger/cactus/pkg/logger"
)

// Find ищет сервер, у которого TXT name совпадает с query, и возвращает первый ответ.
// Собственного таймаута нет: поиск идёт, пока не найден сервер или не отменён ctx.
func (c *Client) Find(ctx context.Context, query string) (models.ResolvedInstance, error) {
	browser, err := c.newBrowser()
	if err != nil {
		return models.ResolvedInstance{}, fmt.Errorf("init resolver: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	nets := c.localNets()
	service := Record(query, 0).ServiceType()
	entries := make(chan *zeroconf.ServiceEntry, 16)
	if err := browser.Browse(ctx, service, dropproto.ServiceDomain, entries); err != nil {
		return models.ResolvedInstance{}, fmt.Errorf("browse %s: %w", service, err)
	}

	for {
		select {
		case <-ctx.Done():
			return models.ResolvedInstance{}, ctx.Err()
		case e, ok := <-entries:
			if !ok {
				if err := ctx.Err(); err != nil {
					return models.ResolvedInstance{}, err
				}
				return models.ResolvedInstance{}, models.ErrBrowseStopped
			}
			if e == nil || !hasName(e.Text, query) {
				continue
			}
			inst, ok := instanceOf(e, nets)
			if !ok {
				logger.Debug("service without address", "instance", e.Instance)
				continue
			}
			logger.Debug("service found", "instance", e.Instance, "address", inst.Address, "port", inst.Port)
			return inst, nil
		}
	}
}

func hasName(text []string, name string) bool {
	want := dropproto.TextNameKey + "=" + name
	for _, t := range text {
		if t == want {
			return true
		}
	}
	return false
}

// instanceOf выбирает адрес. Сначала адрес из подсети одного из локальных интерфейсов
// (IPv4, затем IPv6): у сервера может быть объявлен и адрес docker- или VPN-моста.
// Иначе первый IPv4, первый IPv6, имя хоста.
func instanceOf(e *zeroconf.ServiceEntry, nets []*net.IPNet) (models.ResolvedInstance, bool) {
	inst := models.ResolvedInstance{Port: e.Port}
	if ip := onLocalNet(e.AddrIPv4, nets); ip != nil {
		inst.Address = ip.String()
		return inst, true
	}
	if ip := onLocalNet(e.AddrIPv6, nets); ip != nil {
		inst.Address = ip.String()
		return inst, true
	}

	switch {
	case len(e.AddrIPv4) > 0:
		inst.Address = e.AddrIPv4[0].String()
	case len(e.AddrIPv6) > 0:
		inst.Address = e.AddrIPv6[0].String()
	case e.HostName != "":
		inst.Address = strings.TrimSuffix(e.HostName, ".")
	default:
		return inst, false
	}
	return inst, true
}

func onLocalNet(ips []net.IP, nets []*net.IPNet) net.IP {
	for _, ip := range ips {
		for _, n := range nets {
			if n.Contains(ip) {
				return ip
			}
		}
	}
	return nil
}
