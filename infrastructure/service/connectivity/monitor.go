package connectivity

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/agrisync/agrisync/application/port/outbound"
	"github.com/agrisync/agrisync/infrastructure/service/logger"
)

const defaultProbeInterval = 10 * time.Second

// Monitor probes a remote endpoint to decide whether the device is
// online. Subscribers only hear about transitions, not every probe.
type Monitor struct {
	probeURL   string
	interval   time.Duration
	httpClient *http.Client
	logger     logger.Logger

	mu     sync.RWMutex
	online bool
	subs   []chan bool

	stop chan struct{}
	done chan struct{}
}

func NewMonitor(probeURL string, interval time.Duration, log logger.Logger) *Monitor {
	if interval <= 0 {
		interval = defaultProbeInterval
	}
	return &Monitor{
		probeURL: probeURL,
		interval: interval,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
		logger: log,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

var _ outbound.ConnectivityMonitor = (*Monitor)(nil)

func (m *Monitor) Online() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.online
}

func (m *Monitor) Subscribe() <-chan bool {
	ch := make(chan bool, 1)
	m.mu.Lock()
	m.subs = append(m.subs, ch)
	m.mu.Unlock()
	return ch
}

// Start probes immediately, then on every tick.
func (m *Monitor) Start(ctx context.Context) {
	go func() {
		defer close(m.done)
		m.probe(ctx)

		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-m.stop:
				return
			case <-ticker.C:
				m.probe(ctx)
			}
		}
	}()
}

func (m *Monitor) Stop() {
	close(m.stop)
	<-m.done
}

func (m *Monitor) probe(ctx context.Context) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, m.probeURL, nil)
	if err != nil {
		m.setOnline(ctx, false)
		return
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		m.setOnline(ctx, false)
		return
	}
	resp.Body.Close()

	// Any response at all means the network path works; the probe is not
	// a health check of the backend's application layer.
	m.setOnline(ctx, true)
}

// SetOnline forces the state, used when an external signal (OS network
// callback, explicit user toggle) knows better than the probe.
func (m *Monitor) SetOnline(ctx context.Context, online bool) {
	m.setOnline(ctx, online)
}

func (m *Monitor) setOnline(ctx context.Context, online bool) {
	m.mu.Lock()
	changed := m.online != online
	m.online = online
	subs := make([]chan bool, len(m.subs))
	copy(subs, m.subs)
	m.mu.Unlock()

	if !changed {
		return
	}

	m.logger.Info(ctx, "Connectivity changed", map[string]interface{}{
		"online": online,
	})

	for _, ch := range subs {
		select {
		case ch <- online:
		default:
			// Drop the oldest pending transition so subscribers always
			// see the latest state.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- online:
			default:
			}
		}
	}
}
