// Package poller answers switch queries from the cache or from a live poll,
// and optionally keeps the cache warm in the background.
package poller

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"go-swmon/internal/cache"
	"go-swmon/internal/models"
	"go-swmon/internal/parser"
	"go-swmon/internal/telemetry"
	"go-swmon/internal/transport"

	"golang.org/x/sync/singleflight"
)

var (
	ErrUnknownDevice = errors.New("switch not in inventory")
	ErrInvalidPort   = errors.New("invalid interface name")
)

// Inventory is the part of the switch inventory the poller reads.
type Inventory interface {
	Get(host string) (models.Switch, bool)
	List() ([]models.Switch, error)
}

// SystemProber fills in system info when the CLI banner lacks it.
type SystemProber interface {
	SystemInfo(ctx context.Context, host, community string) (models.SystemInfo, error)
}

type Service struct {
	exec  transport.Executor
	cache *cache.Cache
	inv   Inventory
	asm   telemetry.Assembler
	snmp  SystemProber
	now   func() time.Time
	group singleflight.Group
}

type Option func(*Service)

// WithSystemProber enables the SNMP fallback for switches with a community.
func WithSystemProber(p SystemProber) Option {
	return func(s *Service) { s.snmp = p }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func New(exec transport.Executor, c *cache.Cache, inv Inventory, asm telemetry.Assembler, opts ...Option) *Service {
	s := &Service{
		exec:  exec,
		cache: c,
		inv:   inv,
		asm:   asm,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetPorts returns the port list of host, from cache when fresh. Hosts that
// left the inventory are refused even while their entry is still cached.
// Concurrent misses for one host share a single poll. A caller whose ctx ends
// stops waiting, but the shared poll runs on; the executor timeout bounds it.
func (s *Service) GetPorts(ctx context.Context, host string) (models.PortsResult, error) {
	sw, ok := s.inv.Get(host)
	if !ok {
		return models.PortsResult{}, ErrUnknownDevice
	}

	key := cache.PortsKey(host)
	if v, _, ok := s.cache.Get(key); ok {
		res := v.(models.PortsResult)
		res.Source = models.SourceCache
		return res, nil
	}

	ch := s.group.DoChan(key, func() (any, error) {
		return s.poll(context.WithoutCancel(ctx), sw)
	})
	select {
	case r := <-ch:
		if r.Err != nil {
			return models.PortsResult{}, r.Err
		}
		return r.Val.(models.PortsResult), nil
	case <-ctx.Done():
		return models.PortsResult{}, ctx.Err()
	}
}

func (s *Service) poll(ctx context.Context, sw models.Switch) (models.PortsResult, error) {
	log.Printf("[poller] polling %s (%s)", sw.Name, sw.Host)

	out, err := s.exec.ExecuteBatch(ctx, sw.Host, telemetry.Commands())
	if err != nil {
		log.Printf("[poller] %s unreachable: %v", sw.Host, err)
		s.cache.Set(cache.StatusKey(sw.Host), models.SwitchStatus{
			Reachable:  false,
			Reason:     transport.Reason(err),
			LastPolled: s.now().UTC(),
		})
		return models.PortsResult{}, err
	}

	ports, sys := s.asm.Build(telemetry.Outputs(out))
	if sys.Hostname == parser.UnknownHostname {
		sys = s.probeSystem(ctx, sw, sys)
	}

	polled := s.now().UTC()
	res := models.PortsResult{
		Source:   models.SourceLive,
		CachedAt: polled,
		Ports:    ports,
		SysInfo:  sys,
	}
	s.cache.Set(cache.PortsKey(sw.Host), res)
	s.cache.Set(cache.StatusKey(sw.Host), telemetry.Summarize(ports, polled))
	return res, nil
}

// probeSystem asks SNMP for what the banner did not give. Failures keep the
// CLI values.
func (s *Service) probeSystem(ctx context.Context, sw models.Switch, sys models.SystemInfo) models.SystemInfo {
	if s.snmp == nil || sw.Community == "" {
		return sys
	}
	info, err := s.snmp.SystemInfo(ctx, sw.Host, sw.Community)
	if err != nil {
		log.Printf("[poller] snmp fallback for %s: %v", sw.Host, err)
		return sys
	}
	if info.Hostname != "" {
		sys.Hostname = info.Hostname
	}
	if sys.Uptime == 0 {
		sys.Uptime = info.Uptime
	}
	return sys
}

// GetPortMac fetches the MAC table of one port. It always goes to the
// switch.
func (s *Service) GetPortMac(ctx context.Context, host, portID string) ([]models.MacEntry, error) {
	if _, ok := s.inv.Get(host); !ok {
		return nil, ErrUnknownDevice
	}
	if !parser.IsInterfaceName(portID) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPort, portID)
	}
	raw, err := s.exec.Execute(ctx, host, telemetry.MacCommand(portID))
	if err != nil {
		return nil, err
	}
	return parser.ParseMacTable(raw), nil
}

// Refresh drops everything cached for host so the next query polls live.
func (s *Service) Refresh(host string) {
	s.cache.Invalidate(cache.HostKeys(host)...)
}

// Ping opens a session and reports the prompt hostname. Connection failures
// are reported in the result, not as an error.
func (s *Service) Ping(ctx context.Context, host string) (models.PingResult, error) {
	if _, ok := s.inv.Get(host); !ok {
		return models.PingResult{}, ErrUnknownDevice
	}
	hostname, err := s.exec.Prompt(ctx, host)
	if err != nil {
		return models.PingResult{Reachable: false, Reason: pingReason(err)}, nil
	}
	return models.PingResult{Reachable: true, Hostname: hostname}, nil
}

func pingReason(err error) string {
	switch transport.KindOf(err) {
	case transport.KindAuthFailed, transport.KindTimeout:
		return transport.Reason(err)
	}
	var e *transport.Error
	if errors.As(err, &e) && e.Err != nil {
		return e.Err.Error()
	}
	return err.Error()
}

// Switches lists the inventory with cached status.
func (s *Service) Switches() ([]models.SwitchView, error) {
	switches, err := s.inv.List()
	if err != nil {
		return nil, err
	}
	return s.Statuses(switches), nil
}

// Statuses joins switches with their cached status. Fields stay nil for
// switches never polled or whose status expired.
func (s *Service) Statuses(switches []models.Switch) []models.SwitchView {
	views := make([]models.SwitchView, 0, len(switches))
	for _, sw := range switches {
		view := models.SwitchView{Switch: sw}
		if v, _, ok := s.cache.Get(cache.StatusKey(sw.Host)); ok {
			st := v.(models.SwitchStatus)
			reachable := st.Reachable
			polled := st.LastPolled
			view.Reachable = &reachable
			view.LastPolled = &polled
			view.Reason = st.Reason
			if st.Reachable {
				count, up := st.PortCount, st.PortsUp
				view.PortCount = &count
				view.PortsUp = &up
			}
		}
		views = append(views, view)
	}
	return views
}

// CachedHosts counts live cache entries.
func (s *Service) CachedHosts() int {
	return s.cache.Len()
}

// StartBackgroundPolling re-polls every inventory switch each interval until
// ctx is cancelled. A zero interval disables it.
func (s *Service) StartBackgroundPolling(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		s.pollAll(ctx)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *Service) pollAll(ctx context.Context) {
	switches, err := s.inv.List()
	if err != nil {
		log.Printf("[poller] list inventory: %v", err)
		return
	}
	for _, sw := range switches {
		if ctx.Err() != nil {
			return
		}
		s.Refresh(sw.Host)
		_, _ = s.GetPorts(ctx, sw.Host)
	}
	purged := s.cache.Purge()
	log.Printf("[poller] polling cycle complete (%d switches, %d expired entries purged)", len(switches), purged)
}
