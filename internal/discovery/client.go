// Package discovery объявляет сервер в локальной сети через mDNS/DNS-SD
// и находит уже объявленные серверы по имени из TXT-записи.
package discovery

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/grandcat/zeroconf"

	"github.com/sir_venger/cactus/internal/models"
	"github.com/sir_venger/cactus/internal/netutil"
	"github.com/sir_venger/cactus/pkg/dropproto"
)

const defaultShutdownTimeout = 2 * time.Second

type (
	// Registration — активное объявление, снимаемое через Shutdown.
	Registration interface {
		Shutdown()
	}

	// RegisterFunc публикует сервис; сигнатура повторяет zeroconf.Register без сетевых интерфейсов.
	RegisterFunc func(instance, service, domain string, port int, text []string) (Registration, error)

	// Browser отправляет найденные записи в entries, пока не отменён ctx.
	Browser interface {
		Browse(ctx context.Context, service, domain string, entries chan<- *zeroconf.ServiceEntry) error
	}
)

// Client владеет объявлениями процесса и выполняет поиск серверов.
// Создаётся один раз в main и передаётся явно.
type Client struct {
	register        RegisterFunc
	newBrowser      func() (Browser, error)
	localNets       func() []*net.IPNet
	shutdownTimeout time.Duration

	mu        sync.Mutex
	published []Registration
}

type Option func(*Client)

// WithRegistrar подменяет публикацию, например в тестах.
func WithRegistrar(fn RegisterFunc) Option {
	return func(c *Client) { c.register = fn }
}

// WithBrowser подменяет источник mDNS-записей.
func WithBrowser(b Browser) Option {
	return func(c *Client) {
		c.newBrowser = func() (Browser, error) { return b, nil }
	}
}

// WithLocalNets задаёт подсети машины вместо опроса интерфейсов.
func WithLocalNets(nets ...*net.IPNet) Option {
	return func(c *Client) {
		c.localNets = func() []*net.IPNet { return nets }
	}
}

// WithShutdownTimeout ограничивает время снятия объявлений в Close.
func WithShutdownTimeout(d time.Duration) Option {
	return func(c *Client) { c.shutdownTimeout = d }
}

func New(opts ...Option) *Client {
	c := &Client{
		register:        zeroconfRegister,
		newBrowser:      zeroconfBrowser,
		localNets:       netutil.LocalNets,
		shutdownTimeout: defaultShutdownTimeout,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Record собирает объявление cactus для заданного экземпляра и порта.
func Record(instance string, port int) models.ServiceRecord {
	if instance == "" {
		instance = dropproto.Identifier
	}
	return models.ServiceRecord{
		Name:     instance,
		Type:     dropproto.ServiceKind,
		Protocol: dropproto.ServiceProtocol,
		Port:     port,
		Text:     map[string]string{dropproto.TextNameKey: dropproto.Identifier},
	}
}

// Close снимает все объявления. Ждёт не дольше shutdownTimeout:
// если сеть недоступна, процесс не должен зависнуть на выходе.
func (c *Client) Close() error {
	c.mu.Lock()
	regs := c.published
	c.published = nil
	c.mu.Unlock()

	if len(regs) == 0 {
		return nil
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		var wg sync.WaitGroup
		for _, r := range regs {
			wg.Add(1)
			go func(r Registration) {
				defer wg.Done()
				r.Shutdown()
			}(r)
		}
		wg.Wait()
	}()

	select {
	case <-done:
		return nil
	case <-time.After(c.shutdownTimeout):
		return context.DeadlineExceeded
	}
}

func zeroconfRegister(instance, service, domain string, port int, text []string) (Registration, error) {
	return zeroconf.Register(instance, service, domain, port, text, nil)
}

func zeroconfBrowser() (Browser, error) {
	return zeroconf.NewResolver()
}
