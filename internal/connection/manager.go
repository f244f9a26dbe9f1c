package connection

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nerrad567/gray-logic-remote/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-remote/internal/protocol"
)

// Logger defines the logging interface used by the Manager.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Manager owns at most one live WebSocket connection to the remote source.
type Manager struct {
	cfg    config.ConnectionConfig
	sink   protocol.Sink
	dialer *websocket.Dialer
	logger Logger
	now    func() time.Time

	// mu guards the connection state below.
	mu         sync.Mutex
	state      State
	conn       *websocket.Conn
	address    string
	generation uint64
	live       bool
	failed     int
	stop       chan struct{}

	// writeMu serialises frame writes; gorilla allows one concurrent writer.
	writeMu sync.Mutex

	// ingestMu is held while a frame is applied to the sink. Closing a
	// connection acquires it once so no stale frame lands afterwards.
	ingestMu sync.Mutex

	notifyMu sync.RWMutex
	notifier StatusNotifier
}

// NewManager creates a disconnected Manager that applies inbound frames to sink.
func NewManager(cfg config.ConnectionConfig, sink protocol.Sink) *Manager {
	return &Manager{
		cfg:  cfg,
		sink: sink,
		dialer: &websocket.Dialer{
			Proxy: http.ProxyFromEnvironment,
		},
		logger: noopLogger{},
		now:    time.Now,
	}
}

// SetLogger sets the logger for the manager.
func (m *Manager) SetLogger(logger Logger) {
	if logger == nil {
		logger = noopLogger{}
	}
	m.mu.Lock()
	m.logger = logger
	m.mu.Unlock()
}

// SetNotifier sets the receiver of status events. Nil disables events.
func (m *Manager) SetNotifier(notifier StatusNotifier) {
	m.notifyMu.Lock()
	m.notifier = notifier
	m.notifyMu.Unlock()
}

// Connect opens a connection to address, closing any existing one first
// without a lost event.
//
// On success the Manager is Connected, a connected event is emitted and the
// read pump is running. On a dial error the Manager returns to Disconnected,
// a connection-failed event is emitted and the error wraps
// ErrConnectionFailed. The context bounds the dial only.
func (m *Manager) Connect(ctx context.Context, address string) error {
	if err := validateAddress(address); err != nil {
		m.log().Error("connect rejected", "address", address, "error", err)
		return err
	}

	m.mu.Lock()
	previous := m.detachLocked()
	m.generation++
	gen := m.generation
	m.state = StateConnecting
	m.address = address
	logger := m.logger
	m.mu.Unlock()

	m.closeDetached(previous, true)
	logger.Info("connecting", "address", address)

	conn, resp, err := m.dialer.DialContext(ctx, address, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	m.mu.Lock()
	if gen != m.generation {
		m.mu.Unlock()
		if conn != nil {
			conn.Close()
		}
		logger.Debug("connect superseded", "address", address)
		return ErrSuperseded
	}

	if err != nil {
		m.state = StateDisconnected
		m.failed++
		attempts := m.failed
		m.mu.Unlock()

		logger.Error("connection failed", "address", address, "attempts", attempts, "error", err)
		m.emit(StatusConnectionFailed, address, err)
		return fmt.Errorf("%w: %s: %w", ErrConnectionFailed, address, err)
	}

	stop := make(chan struct{})
	m.conn = conn
	m.state = StateConnected
	m.live = true
	m.failed = 0
	m.stop = stop
	m.mu.Unlock()

	logger.Info("connected", "address", address)
	m.emit(StatusConnected, address, nil)

	go m.readPump(conn, gen)
	if m.cfg.PingInterval > 0 {
		go m.pingLoop(conn, gen, stop)
	}
	return nil
}

// Disconnect closes the current connection, if any, discarding in-flight
// frames. A live session closed with silent == false emits a lost event.
// Disconnect while Connecting abandons the pending dial.
func (m *Manager) Disconnect(silent bool) {
	m.mu.Lock()
	wasLive := m.live && m.state == StateConnected
	address := m.address
	previous := m.detachLocked()
	m.generation++
	m.state = StateDisconnected
	logger := m.logger
	m.mu.Unlock()

	m.closeDetached(previous, true)
	logger.Info("disconnected", "address", address, "silent", silent)

	if wasLive && !silent {
		m.emit(StatusConnectionLost, address, nil)
	}
}

// SendCommand encodes cmd and writes it as one text frame. It returns false,
// sending nothing, when not connected or when cmd cannot be encoded. A write
// error drops the connection.
func (m *Manager) SendCommand(cmd protocol.Command) bool {
	m.mu.Lock()
	conn := m.conn
	gen := m.generation
	connected := m.state == StateConnected && conn != nil
	logger := m.logger
	m.mu.Unlock()

	if !connected {
		logger.Warn("command dropped: not connected", "kind", cmd.Kind.String(), "id", cmd.ID)
		return false
	}

	data, err := protocol.Encode(cmd)
	if err != nil {
		logger.Error("command rejected", "kind", cmd.Kind.String(), "id", cmd.ID, "error", err)
		return false
	}

	m.writeMu.Lock()
	if wait := m.cfg.WriteWait(); wait > 0 {
		//nolint:errcheck // Best-effort deadline; write error caught below
		conn.SetWriteDeadline(m.now().Add(wait))
	}
	err = conn.WriteMessage(websocket.TextMessage, data)
	m.writeMu.Unlock()

	if err != nil {
		logger.Error("command write failed", "kind", cmd.Kind.String(), "id", cmd.ID, "error", err)
		m.drop(gen, err)
		return false
	}

	logger.Debug("command sent", "kind", cmd.Kind.String(), "id", cmd.ID)
	return true
}

// IsConnected reports whether a connection is open.
func (m *Manager) IsConnected() bool {
	return m.State() == StateConnected
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Address returns the address of the current or last connection attempt.
func (m *Manager) Address() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.address
}

// FailedAttempts returns the number of consecutive failed connects since the
// last successful one.
func (m *Manager) FailedAttempts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.failed
}

// readPump applies inbound frames to the sink until the connection ends.
func (m *Manager) readPump(conn *websocket.Conn, gen uint64) {
	if limit := m.cfg.MaxMessageSize; limit > 0 {
		conn.SetReadLimit(int64(limit))
	}
	var wait time.Duration
	if ping := m.cfg.PingPeriod(); ping > 0 {
		wait = ping + m.cfg.PongWait()
		//nolint:errcheck // Best-effort deadline on connection setup
		conn.SetReadDeadline(m.now().Add(wait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(m.now().Add(wait))
		})
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			m.drop(gen, err)
			return
		}
		if wait > 0 {
			//nolint:errcheck // Best-effort deadline reset
			conn.SetReadDeadline(m.now().Add(wait))
		}
		if !m.ingest(gen, data) {
			return
		}
	}
}

// ingest applies one frame when gen is still current. It returns false when
// the connection has been superseded.
func (m *Manager) ingest(gen uint64, data []byte) bool {
	m.ingestMu.Lock()
	defer m.ingestMu.Unlock()

	m.mu.Lock()
	current := gen == m.generation
	logger := m.logger
	m.mu.Unlock()
	if !current {
		return false
	}

	msg, err := protocol.Ingest(data, m.sink)
	if err != nil {
		logger.Warn("inbound frame ignored", "error", err)
		return true
	}
	if len(msg.Skipped) > 0 {
		logger.Warn("snapshot keys ignored", "type", msg.Kind.String(), "keys", msg.Skipped)
	}
	return true
}

// pingLoop sends keepalive pings until stop is closed or a write fails.
func (m *Manager) pingLoop(conn *websocket.Conn, gen uint64, stop <-chan struct{}) {
	ticker := time.NewTicker(m.cfg.PingPeriod())
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			deadline := m.now().Add(m.cfg.PongWait())
			m.writeMu.Lock()
			err := conn.WriteControl(websocket.PingMessage, nil, deadline)
			m.writeMu.Unlock()
			if err != nil {
				m.drop(gen, err)
				return
			}
		}
	}
}

// drop ends connection gen after a transport error or a remote close.
// It is a no-op when gen has already been closed or replaced.
func (m *Manager) drop(gen uint64, cause error) {
	m.mu.Lock()
	if gen != m.generation {
		m.mu.Unlock()
		return
	}
	wasLive := m.live
	address := m.address
	previous := m.detachLocked()
	m.generation++
	m.state = StateDisconnected
	logger := m.logger
	m.mu.Unlock()

	m.closeDetached(previous, false)

	if websocket.IsUnexpectedCloseError(cause, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
		logger.Warn("connection lost", "address", address, "error", cause)
	} else {
		logger.Info("connection closed by remote", "address", address, "error", cause)
	}

	if wasLive {
		m.emit(StatusConnectionLost, address, cause)
	}
}

// detached is a connection removed from the Manager awaiting close.
type detached struct {
	conn *websocket.Conn
	stop chan struct{}
}

// detachLocked removes the current connection from the Manager.
// Caller must hold m.mu.
func (m *Manager) detachLocked() detached {
	d := detached{conn: m.conn, stop: m.stop}
	m.conn = nil
	m.stop = nil
	m.live = false
	return d
}

// closeDetached closes d. With wait set it also blocks until any frame
// being applied has finished.
func (m *Manager) closeDetached(d detached, wait bool) {
	if d.stop != nil {
		close(d.stop)
	}
	if d.conn != nil {
		d.conn.Close()
	}
	if wait {
		m.ingestMu.Lock()
		m.ingestMu.Unlock() //nolint:staticcheck // empty critical section
	}
}

func (m *Manager) emit(kind StatusKind, address string, err error) {
	m.notifyMu.RLock()
	notifier := m.notifier
	m.notifyMu.RUnlock()
	if notifier == nil {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			m.log().Error("status notifier panicked", "status", kind.String(), "panic", r)
		}
	}()
	notifier.Notify(Status{Kind: kind, Address: address, Err: err, At: m.now()})
}

func (m *Manager) log() Logger {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.logger
}

func validateAddress(address string) error {
	if err := config.ValidateWebSocketURL(address); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}
	return nil
}
