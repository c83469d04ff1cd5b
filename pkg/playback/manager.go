package playback

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"
	"github.com/travigo/fleettrack/pkg/ctdf"
	"github.com/travigo/fleettrack/pkg/datasource"
)

type managedSession struct {
	session *Session
	sink    FrameSink
	cancel  context.CancelFunc
}

// Manager owns one running session per device
type Manager struct {
	Source datasource.TrackSource
	Config Config

	// NewSink is called once per session to get where its frames go
	NewSink func(deviceID string) FrameSink

	mutex    sync.Mutex
	sessions map[string]*managedSession
}

func NewManager(source datasource.TrackSource, config Config, newSink func(deviceID string) FrameSink) *Manager {
	return &Manager{
		Source:   source,
		Config:   config,
		NewSink:  newSink,
		sessions: map[string]*managedSession{},
	}
}

// Load builds a fresh session for the device and starts its tick loop, replacing
// any session already running for it
func (m *Manager) Load(ctx context.Context, deviceID string, window ctdf.TimeWindow) (*Session, error) {
	var sink FrameSink
	if m.NewSink != nil {
		sink = m.NewSink(deviceID)
	}

	session := NewSession(deviceID, m.Config, sink)
	if err := session.Load(ctx, m.Source, window); err != nil {
		closeSink(sink)
		return nil, err
	}

	runCtx, cancel := context.WithCancel(context.Background())

	m.mutex.Lock()
	previous := m.sessions[deviceID]
	m.sessions[deviceID] = &managedSession{session: session, sink: sink, cancel: cancel}
	m.mutex.Unlock()

	if previous != nil {
		previous.stop()
	}

	go session.Controller.Run(runCtx)

	return session, nil
}

// LoadMany loads several devices in parallel. Failed devices are logged and left out.
func (m *Manager) LoadMany(ctx context.Context, deviceIDs []string, window ctdf.TimeWindow) []*Session {
	loadPool := pool.NewWithResults[*Session]().WithMaxGoroutines(4)

	for _, deviceID := range deviceIDs {
		deviceID := deviceID
		loadPool.Go(func() *Session {
			session, err := m.Load(ctx, deviceID, window)
			if err != nil {
				log.Error().Err(err).Str("device", deviceID).Msg("Failed to load playback")
				return nil
			}
			return session
		})
	}

	var sessions []*Session
	for _, session := range loadPool.Wait() {
		if session != nil {
			sessions = append(sessions, session)
		}
	}

	return sessions
}

func (m *Manager) Get(deviceID string) (*Session, bool) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	managed, ok := m.sessions[deviceID]
	if !ok {
		return nil, false
	}

	return managed.session, true
}

func (m *Manager) Close(deviceID string) {
	m.mutex.Lock()
	managed := m.sessions[deviceID]
	delete(m.sessions, deviceID)
	m.mutex.Unlock()

	if managed != nil {
		managed.stop()
	}
}

func (m *Manager) CloseAll() {
	m.mutex.Lock()
	sessions := m.sessions
	m.sessions = map[string]*managedSession{}
	m.mutex.Unlock()

	for _, managed := range sessions {
		managed.stop()
	}
}

func (s *managedSession) stop() {
	s.cancel()
	s.session.Controller.Pause()
	closeSink(s.sink)
}

func closeSink(sink FrameSink) {
	if closer, ok := sink.(interface{ Close() }); ok {
		closer.Close()
	}
}
