package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/nerrad567/gray-logic-remote/internal/connection"
	"github.com/nerrad567/gray-logic-remote/internal/device"
	"github.com/nerrad567/gray-logic-remote/internal/feedback"
	"github.com/nerrad567/gray-logic-remote/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-remote/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-remote/internal/journal"
	"github.com/nerrad567/gray-logic-remote/internal/site"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// WebSocket broadcast channels.
const (
	ChannelStatus         = "status"
	ChannelZoneChanged    = "zone.changed"
	ChannelDeviceFeedback = "device.feedback"
)

// ConnectionState is the read side of the connection manager.
// *connection.Manager satisfies it.
type ConnectionState interface {
	State() connection.State
	Address() string
	FailedAttempts() int
}

// HistoryReader serves journalled feedback. *journal.Repository satisfies it.
type HistoryReader interface {
	History(ctx context.Context, kind feedback.Kind, id, limit int) ([]journal.Record, error)
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config     config.APIConfig
	WS         config.WebSocketConfig
	Logger     *logging.Logger
	Session    *site.Session
	Store      *feedback.Store
	Connection ConnectionState
	History    HistoryReader // optional: history endpoint answers 503 without it
	Version    string
}

// Server is the local HTTP API server.
type Server struct {
	cfg        config.APIConfig
	wsCfg      config.WebSocketConfig
	logger     *logging.Logger
	session    *site.Session
	store      *feedback.Store
	connection ConnectionState
	history    HistoryReader
	version    string
	server     *http.Server
	hub        *Hub
	cancel     context.CancelFunc

	// mu guards the projectors of the active zone.
	mu         sync.Mutex
	zone       *site.Zone
	projectors []*device.Projector
}

// New creates a new API server with the given dependencies and starts
// following the session's zone changes. The listener is not started until
// Start is called.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Session == nil {
		return nil, fmt.Errorf("session is required")
	}
	if deps.Store == nil {
		return nil, fmt.Errorf("feedback store is required")
	}
	if deps.Connection == nil {
		return nil, fmt.Errorf("connection state is required")
	}

	s := &Server{
		cfg:        deps.Config,
		wsCfg:      deps.WS,
		logger:     deps.Logger,
		session:    deps.Session,
		store:      deps.Store,
		connection: deps.Connection,
		history:    deps.History,
		version:    deps.Version,
		hub:        NewHub(deps.WS, deps.Logger),
	}

	s.hub.SetReplay(s.replay)
	s.followZone(deps.Session.Zone())
	deps.Session.OnZoneChange(s.followZone)
	return s, nil
}

// Start begins listening for HTTP connections in a background goroutine.
func (s *Server) Start(ctx context.Context) error {
	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)

	go s.hub.Run(srvCtx)

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           s.buildRouter(),
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		s.logger.Info("API server starting", "address", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Close gracefully shuts down the API server and releases the zone
// projectors. It waits up to 10 seconds for in-flight requests.
func (s *Server) Close() error {
	s.followZone(nil)

	if s.server == nil {
		return nil
	}
	if s.cancel != nil {
		s.cancel()
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the API server is running.
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("api server not started")
	}
	return nil
}

// Hub returns the server's WebSocket hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Notify broadcasts a connection status event on the "status" channel. It
// makes the Server a connection.StatusNotifier.
func (s *Server) Notify(status connection.Status) {
	event := statusEvent{
		Status:  status.Kind.String(),
		Address: status.Address,
		Message: status.Message(),
	}
	if status.Err != nil {
		event.Error = status.Err.Error()
	}
	s.hub.Broadcast(ChannelStatus, event)
}

// followZone swaps the device projectors for those of zone, which may be
// nil, and announces the change.
func (s *Server) followZone(zone *site.Zone) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.projectors {
		p.Close()
	}
	s.projectors = nil
	s.zone = zone

	if zone == nil {
		s.hub.Broadcast(ChannelZoneChanged, zoneChangedEvent{})
		return
	}

	for _, dev := range zone.All() {
		slug := zone.Slug
		p := device.NewProjector(s.store, dev, func(projection device.Projection) {
			s.hub.Broadcast(ChannelDeviceFeedback, feedbackEvent{
				Zone:     slug,
				Device:   dev.Slug,
				Feedback: projection.ByOp(dev.Commands),
			})
		})
		s.projectors = append(s.projectors, p)
	}
	s.hub.Broadcast(ChannelZoneChanged, zoneChangedEvent{Zone: zone.Slug, Name: zone.Name})
}

// replay returns the current state of channel for a new subscriber.
func (s *Server) replay(channel string) []any {
	switch channel {
	case ChannelStatus:
		return []any{statusEvent{
			Status:  s.connection.State().String(),
			Address: s.connection.Address(),
		}}
	case ChannelZoneChanged:
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.zone == nil {
			return []any{zoneChangedEvent{}}
		}
		return []any{zoneChangedEvent{Zone: s.zone.Slug, Name: s.zone.Name}}
	case ChannelDeviceFeedback:
		s.mu.Lock()
		defer s.mu.Unlock()
		events := make([]any, 0, len(s.projectors))
		for _, p := range s.projectors {
			dev := p.Device()
			events = append(events, feedbackEvent{
				Zone:     s.zone.Slug,
				Device:   dev.Slug,
				Feedback: p.Current().ByOp(dev.Commands),
			})
		}
		return events
	default:
		return nil
	}
}

type statusEvent struct {
	Status  string `json:"status"`
	Address string `json:"address,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

type zoneChangedEvent struct {
	Zone string `json:"zone,omitempty"`
	Name string `json:"name,omitempty"`
}

type feedbackEvent struct {
	Zone     string                           `json:"zone"`
	Device   string                           `json:"device"`
	Feedback map[feedback.Kind]map[string]any `json:"feedback"`
}
