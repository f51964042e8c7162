package discovery

import (
	"context"
	"errors"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/grandcat/zeroconf"

	"github.com/sir_venger/cactus/internal/models"
)

// fakeBrowser отдаёт заранее заданные записи и закрывает канал после отмены ctx, как zeroconf.
type fakeBrowser struct {
	entries []*zeroconf.ServiceEntry
	err     error
	service string
}

func (b *fakeBrowser) Browse(ctx context.Context, service, domain string, out chan<- *zeroconf.ServiceEntry) error {
	if b.err != nil {
		return b.err
	}
	b.service = service
	go func() {
		defer close(out)
		for _, e := range b.entries {
			select {
			case out <- e:
			case <-ctx.Done():
				return
			}
		}
		<-ctx.Done()
	}()
	return nil
}

func entry(instance string, port int, ip string, text ...string) *zeroconf.ServiceEntry {
	e := zeroconf.NewServiceEntry(instance, "_http._tcp", "local.")
	e.Port = port
	e.Text = text
	if ip != "" {
		if p := net.ParseIP(ip); p.To4() != nil {
			e.AddrIPv4 = []net.IP{p}
		} else {
			e.AddrIPv6 = []net.IP{p}
		}
	}
	return e
}

func TestFind(t *testing.T) {
	tests := []struct {
		name    string
		entries []*zeroconf.ServiceEntry
		wantURL string
	}{
		{
			name:    "custom port",
			entries: []*zeroconf.ServiceEntry{entry("cactus", 9000, "192.168.1.20", "name=cactus")},
			wantURL: "http://192.168.1.20:9000",
		},
		{
			name:    "port 80 has no suffix",
			entries: []*zeroconf.ServiceEntry{entry("cactus", 80, "10.0.0.5", "name=cactus")},
			wantURL: "http://10.0.0.5",
		},
		{
			name: "non matching services are skipped",
			entries: []*zeroconf.ServiceEntry{
				entry("printer", 631, "10.0.0.2", "name=printer"),
				entry("untagged", 8080, "10.0.0.3"),
				entry("cactus", 8989, "10.0.0.4", "name=cactus"),
			},
			wantURL: "http://10.0.0.4:8989",
		},
		{
			name: "first responder wins",
			entries: []*zeroconf.ServiceEntry{
				entry("cactus", 8989, "10.0.0.7", "name=cactus"),
				entry("cactus", 8989, "10.0.0.8", "name=cactus"),
			},
			wantURL: "http://10.0.0.7:8989",
		},
		{
			name:    "ipv6",
			entries: []*zeroconf.ServiceEntry{entry("cactus", 8989, "fe80::1", "name=cactus")},
			wantURL: "http://[fe80::1]:8989",
		},
		{
			name: "address-less entry skipped",
			entries: []*zeroconf.ServiceEntry{
				entry("cactus", 8989, "", "name=cactus"),
				entry("cactus", 8989, "10.0.0.9", "name=cactus"),
			},
			wantURL: "http://10.0.0.9:8989",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &fakeBrowser{entries: tt.entries}
			c := New(WithBrowser(b))

			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()

			inst, err := c.Find(ctx, "cactus")
			if err != nil {
				t.Fatalf("find: %v", err)
			}
			if got := inst.URL(); got != tt.wantURL {
				t.Fatalf("URL() = %q, want %q", got, tt.wantURL)
			}
			if b.service != "_http._tcp" {
				t.Fatalf("browsed %q", b.service)
			}
		})
	}
}

func mustNet(t *testing.T, s string) *net.IPNet {
	t.Helper()
	_, n, err := net.ParseCIDR(s)
	if err != nil {
		t.Fatal(err)
	}
	return n
}

func TestFind_PrefersAddressOnLocalSubnet(t *testing.T) {
	multi := func() *zeroconf.ServiceEntry {
		e := entry("cactus", 8989, "", "name=cactus")
		e.AddrIPv4 = []net.IP{net.ParseIP("172.17.0.1"), net.ParseIP("10.8.0.3"), net.ParseIP("192.168.1.20")}
		e.AddrIPv6 = []net.IP{net.ParseIP("fd00::20")}
		return e
	}

	tests := []struct {
		name string
		nets []string
		want string
	}{
		{"lan subnet", []string{"192.168.1.0/24"}, "192.168.1.20"},
		{"vpn subnet", []string{"10.8.0.0/24", "192.168.1.0/24"}, "10.8.0.3"},
		{"only ipv6 reachable", []string{"fd00::/64"}, "fd00::20"},
		{"nothing local keeps announced order", []string{"203.0.113.0/24"}, "172.17.0.1"},
		{"no interfaces", nil, "172.17.0.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var nets []*net.IPNet
			for _, s := range tt.nets {
				nets = append(nets, mustNet(t, s))
			}
			c := New(
				WithBrowser(&fakeBrowser{entries: []*zeroconf.ServiceEntry{multi()}}),
				WithLocalNets(nets...),
			)

			inst, err := c.Find(context.Background(), "cactus")
			if err != nil {
				t.Fatal(err)
			}
			if inst.Address != tt.want {
				t.Fatalf("address = %s, want %s", inst.Address, tt.want)
			}
		})
	}
}

func TestFind_HostNameFallback(t *testing.T) {
	e := entry("cactus", 8989, "", "name=cactus")
	e.HostName = "laptop.local."
	c := New(WithBrowser(&fakeBrowser{entries: []*zeroconf.ServiceEntry{e}}))

	inst, err := c.Find(context.Background(), "cactus")
	if err != nil {
		t.Fatal(err)
	}
	if inst.Address != "laptop.local" || inst.Port != 8989 {
		t.Fatalf("got %+v", inst)
	}
}

func TestFind_CancelledWithoutMatch(t *testing.T) {
	b := &fakeBrowser{entries: []*zeroconf.ServiceEntry{entry("printer", 631, "10.0.0.2", "name=printer")}}
	c := New(WithBrowser(b))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.Find(ctx, "cactus")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
}

func TestFind_BrowseError(t *testing.T) {
	boom := errors.New("no multicast")
	c := New(WithBrowser(&fakeBrowser{err: boom}))

	if _, err := c.Find(context.Background(), "cactus"); !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
}

type fakeRegistration struct {
	down  atomic.Bool
	block chan struct{}
}

func (r *fakeRegistration) Shutdown() {
	if r.block != nil {
		<-r.block
	}
	r.down.Store(true)
}

func TestPublishAndClose(t *testing.T) {
	var (
		gotInstance, gotService, gotDomain string
		gotPort                            int
		gotText                            []string
	)
	reg := &fakeRegistration{}
	c := New(WithRegistrar(func(instance, service, domain string, port int, text []string) (Registration, error) {
		gotInstance, gotService, gotDomain, gotPort, gotText = instance, service, domain, port, text
		return reg, nil
	}))

	if err := c.Publish(Record("cactus", 8989)); err != nil {
		t.Fatal(err)
	}
	if gotInstance != "cactus" || gotService != "_http._tcp" || gotDomain != "local." || gotPort != 8989 {
		t.Fatalf("registered %s %s %s %d", gotInstance, gotService, gotDomain, gotPort)
	}
	if len(gotText) != 1 || gotText[0] != "name=cactus" {
		t.Fatalf("txt = %v", gotText)
	}
	if !c.Published() {
		t.Fatalf("expected active registration")
	}

	if err := c.Close(); err != nil {
		t.Fatal(err)
	}
	if !reg.down.Load() {
		t.Fatalf("registration was not withdrawn")
	}
	if c.Published() {
		t.Fatalf("registrations must be cleared after Close")
	}
}

func TestPublish_Errors(t *testing.T) {
	boom := errors.New("bind 5353")
	c := New(WithRegistrar(func(string, string, string, int, []string) (Registration, error) {
		return nil, boom
	}))

	if err := c.Publish(Record("cactus", 8989)); !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	if err := c.Publish(models.ServiceRecord{Name: "cactus", Type: "http", Protocol: "tcp"}); err == nil {
		t.Fatalf("expected error for zero port")
	}
	if c.Published() {
		t.Fatalf("failed publish must not be tracked")
	}
}

func TestClose_BoundedByTimeout(t *testing.T) {
	reg := &fakeRegistration{block: make(chan struct{})}
	defer close(reg.block)

	c := New(
		WithRegistrar(func(string, string, string, int, []string) (Registration, error) { return reg, nil }),
		WithShutdownTimeout(30*time.Millisecond),
	)
	if err := c.Publish(Record("", 8989)); err != nil {
		t.Fatal(err)
	}

	start := time.Now()
	err := c.Close()
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
	if time.Since(start) > time.Second {
		t.Fatalf("Close blocked for %v", time.Since(start))
	}
}
