package models

import (
	"fmt"
	"net"
	"sort"
	"strconv"

	"github.com/sir_venger/cactus/pkg/dropproto"
)

// ServiceRecord — объявление сервера в локальной сети.
type ServiceRecord struct {
	Name     string
	Type     string
	Protocol string
	Port     int
	Text     map[string]string
}

// ServiceType возвращает DNS-SD тип сервиса, например "_http._tcp".
func (r ServiceRecord) ServiceType() string {
	return fmt.Sprintf("_%s._%s", r.Type, r.Protocol)
}

// TXT сериализует метаданные в пары key=value в стабильном порядке.
func (r ServiceRecord) TXT() []string {
	keys := make([]string, 0, len(r.Text))
	for k := range r.Text {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+r.Text[k])
	}
	return out
}

// ResolvedInstance — адрес найденного сервера.
type ResolvedInstance struct {
	Address string
	Port    int
}

// URL собирает адрес, по которому сервер доступен из браузера.
// Стандартный веб-порт опускается.
func (i ResolvedInstance) URL() string {
	host := i.Address
	if ip := net.ParseIP(host); ip != nil && ip.To4() == nil {
		host = "[" + host + "]"
	}
	if i.Port == dropproto.DefaultWebPort {
		return "http://" + host
	}
	return "http://" + host + ":" + strconv.Itoa(i.Port)
}
