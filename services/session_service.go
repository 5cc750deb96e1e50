package services

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"

	"campus-navigator/config"
	"campus-navigator/geo"
	"campus-navigator/guidance"
	"campus-navigator/routing"
	"campus-navigator/simulation"
	"campus-navigator/speech"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrNoRoute         = errors.New("no walking route between the given points")
)

type SessionRequest struct {
	Start geo.Coordinate `json:"start"`
	End   geo.Coordinate `json:"end"`
	Speed string         `json:"speed"`
	Tour  bool           `json:"tour"`
	Muted bool           `json:"muted"`
}

type managedSession struct {
	session *guidance.Session

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	closed bool
}

// SessionService keeps live guidance sessions, each ticking on its own goroutine.
type SessionService struct {
	cfg     *config.Config
	routing *RoutingService
	clock   clock.Clock
	newSink func() speech.Sink

	mu       sync.RWMutex
	sessions map[string]*managedSession
}

// NewSessionService builds the service. newSink may be nil, in which case sessions have
// subtitles only.
func NewSessionService(cfg *config.Config, rs *RoutingService, clk clock.Clock, newSink func() speech.Sink) *SessionService {
	if clk == nil {
		clk = clock.New()
	}
	return &SessionService{
		cfg:      cfg,
		routing:  rs,
		clock:    clk,
		newSink:  newSink,
		sessions: make(map[string]*managedSession),
	}
}

// Create routes req and starts a session walking it.
func (ss *SessionService) Create(req SessionRequest) (string, routing.RouteResult, error) {
	speed, err := simulation.ParseSpeed(req.Speed)
	if err != nil {
		return "", routing.RouteResult{}, err
	}

	var sink speech.Sink
	if ss.newSink != nil {
		sink = ss.newSink()
	}
	session := guidance.New(guidance.Options{
		Config:    ss.cfg,
		Landmarks: ss.routing.Landmarks(),
		Router:    ss.routing.Router(),
		Sink:      sink,
		Clock:     ss.clock,
		TourMode:  req.Tour,
		Muted:     req.Muted,
		Speed:     speed,
	})

	route := session.Start(req.Start, req.End)
	if route.Empty() {
		return "", route, ErrNoRoute
	}

	id := uuid.NewString()
	ms := &managedSession{session: session}
	ms.start(id)
	ss.mu.Lock()
	ss.sessions[id] = ms
	ss.mu.Unlock()
	log.Printf("Session %s started: %d points, %s", id, len(route.Coordinates), geo.FormatDistance(route.DistanceM))
	return id, route, nil
}

func (ss *SessionService) Get(id string) (*guidance.Session, error) {
	ms, err := ss.lookup(id)
	if err != nil {
		return nil, err
	}
	return ms.session, nil
}

// SetDestination reroutes a session from wherever the walker is now.
func (ss *SessionService) SetDestination(id string, end geo.Coordinate) (routing.RouteResult, error) {
	ms, err := ss.lookup(id)
	if err != nil {
		return routing.RouteResult{}, err
	}

	from := ms.session.Route().Start()
	if snap := ms.session.Snapshot(); snap.State.Camera != simulation.Idle {
		from = snap.State.Position
	}

	ms.stop()
	route := ms.session.Start(from, end)
	if route.Empty() {
		return route, ErrNoRoute
	}
	ms.start(id)
	return route, nil
}

func (ss *SessionService) Delete(id string) error {
	ss.mu.Lock()
	ms, ok := ss.sessions[id]
	delete(ss.sessions, id)
	ss.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}

	ms.close()
	log.Printf("Session %s deleted", id)
	return nil
}

func (ss *SessionService) Count() int {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	return len(ss.sessions)
}

// Shutdown stops every session.
func (ss *SessionService) Shutdown() {
	ss.mu.Lock()
	sessions := ss.sessions
	ss.sessions = make(map[string]*managedSession)
	ss.mu.Unlock()

	for _, ms := range sessions {
		ms.close()
	}
}

func (ss *SessionService) lookup(id string) (*managedSession, error) {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	ms, ok := ss.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return ms, nil
}

// start launches the tick loop unless it is already running or the session was
// closed.
func (ms *managedSession) start(id string) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if ms.closed {
		return
	}
	if ms.done != nil {
		select {
		case <-ms.done:
		default:
			return
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	ms.cancel = cancel
	ms.done = done

	go func() {
		defer close(done)
		if err := ms.session.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("ERROR: session %s stopped: %v", id, err)
			return
		}
		log.Printf("Session %s tick loop ended", id)
	}()
}

// stop cancels the tick loop and waits for it to exit.
func (ms *managedSession) stop() {
	ms.mu.Lock()
	cancel, done := ms.cancel, ms.done
	ms.cancel = nil
	ms.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// close stops the tick loop for good and cancels the session.
func (ms *managedSession) close() {
	ms.mu.Lock()
	ms.closed = true
	ms.mu.Unlock()

	ms.stop()
	ms.session.Stop()
}
