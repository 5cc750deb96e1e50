// Package guidance runs one navigation or tour session: a simulation driver, both
// narration synthesizers and the speech channel they share, all advanced on a single
// logical thread.
//
// Every public method takes the session lock, so calls from HTTP handlers, the tick
// loop and audio callbacks are serialized. Audio completion is never run inline: a sink
// calls Post and the callback runs at the start of the next Tick.
package guidance

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"campus-navigator/config"
	"campus-navigator/geo"
	"campus-navigator/models"
	"campus-navigator/narration"
	"campus-navigator/routing"
	"campus-navigator/simulation"
	"campus-navigator/speech"
)

// Update is the per-tick view published to the surrounding application.
type Update struct {
	simulation.Update
	Subtitle speech.Subtitle `json:"subtitle"`
	Speaking bool            `json:"speaking"`
	Muted    bool            `json:"muted"`
	Paused   bool            `json:"paused"`
	TourMode bool            `json:"tourMode"`
	Tick     uint64          `json:"tick"`
}

type Options struct {
	Config    *config.Config
	Landmarks []models.Landmark
	Router    *routing.Router
	Sink      speech.Sink
	Clock     clock.Clock

	TourMode bool
	Muted    bool
	Speed    simulation.Speed

	// OnSubtitle and OnUpdate are called with the session lock held and must not call
	// back into the session.
	OnSubtitle func(speech.Subtitle)
	OnUpdate   func(Update)
}

type Session struct {
	mu sync.Mutex

	cfg    *config.Config
	router *routing.Router
	clock  clock.Clock
	now    time.Time

	queue   *taskQueue
	channel *speech.Channel
	driver  *simulation.Driver
	nav     *narration.NavigationSynthesizer
	tour    *narration.TourSynthesizer

	route    routing.RouteResult
	tourMode bool
	ticks    uint64
	last     Update

	onSubtitle func(speech.Subtitle)
	onUpdate   func(Update)
}

func New(opts Options) *Session {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Defaults()
	}
	clk := opts.Clock
	if clk == nil {
		clk = clock.New()
	}

	s := &Session{
		cfg:        cfg,
		router:     opts.Router,
		clock:      clk,
		now:        clk.Now(),
		tourMode:   opts.TourMode,
		onSubtitle: opts.OnSubtitle,
		onUpdate:   opts.OnUpdate,
	}
	s.queue = &taskQueue{now: func() time.Time { return s.now }}

	sink := opts.Sink
	if cfg.Speech.AudioUnavailable {
		sink = nil
	}
	s.channel = speech.NewChannel(sink, s.queue, speech.Options{
		SubtitleGrace:  cfg.Speech.SubtitleGrace(),
		WordsPerMinute: cfg.Speech.WordsPerMinute,
		MinUtterance:   time.Duration(cfg.Speech.MinUtteranceMS) * time.Millisecond,
		OnSubtitle:     s.subtitleChanged,
	})
	s.channel.SetMuted(opts.Muted)

	s.driver = simulation.NewDriver(cfg.Simulation, cfg.Guidance)
	s.driver.SetSpeed(opts.Speed, s.now)
	s.nav = narration.NewNavigationSynthesizer(cfg.Guidance, opts.Landmarks, narration.NewVisitedSet(), cfg.Speech.ArrivalPhrase)
	s.tour = narration.NewTourSynthesizer(cfg.Guidance, opts.Landmarks, narration.NewVisitedSet(), cfg.Speech.WelcomePhrase)
	return s
}

// Start routes between two coordinates and begins guiding along the result. An empty
// result means no route; the session is left idle.
func (s *Session) Start(start, end geo.Coordinate) routing.RouteResult {
	if s.router == nil {
		log.Printf("WARNING: session has no router, cannot route %s -> %s", start, end)
		s.SetRoute(routing.RouteResult{})
		return routing.RouteResult{}
	}
	route := s.router.Route(start, end)
	s.SetRoute(route)
	return route
}

// SetRoute discards the current walk and narration state and accepts route.
func (s *Session) SetRoute(route routing.RouteResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sync()

	s.cancel()
	s.route = route
	s.driver.SetRoute(route)
	s.publish(s.driver.Last())
}

// Stop turns guidance off.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sync()

	s.cancel()
	s.route = routing.RouteResult{}
	s.publish(s.driver.Last())
}

// cancel tears the session down in a fixed order so that neither a late tick nor a
// late audio completion can act on the previous route.
func (s *Session) cancel() {
	s.queue.dropPosted()
	s.driver.Reset()
	s.channel.Stop()
	s.nav.Reset()
	s.tour.Reset()
}

// Tick advances the session to now. Order: pending audio callbacks, due timers, the
// walk, navigation narration, tour narration.
func (s *Session) Tick(now time.Time) Update {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.now = now
	s.queue.drainPosted()
	s.queue.runDue(now)

	if !s.driver.HasRoute() {
		return s.publish(s.driver.Last())
	}

	u := s.driver.Step(now)
	if !s.driver.Paused() {
		s.nav.Update(u.State.Position, u.Instruction, s.channel)
		if s.tourMode {
			s.tour.Update(u.State.Position, s.channel)
		}
	}
	return s.publish(u)
}

// Run ticks the session at the configured frame rate until ctx is done or the walk has
// finished and the channel has gone quiet.
func (s *Session) Run(ctx context.Context) error {
	ticker := s.clock.Ticker(s.cfg.Simulation.TickInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			u := s.Tick(s.clock.Now())
			if u.Finished && !u.Speaking && !u.Subtitle.Visible {
				return nil
			}
		}
	}
}

// Post schedules f on the tick thread. Audio sinks use it to report completion.
func (s *Session) Post(f func()) {
	s.queue.Post(f)
}

func (s *Session) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sync()
	s.driver.Pause(s.now)
	s.publish(s.driver.Last())
}

func (s *Session) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sync()
	s.driver.Resume(s.now)
	s.publish(s.driver.Last())
}

func (s *Session) SetMuted(muted bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sync()
	s.channel.SetMuted(muted)
	s.publish(s.driver.Last())
}

func (s *Session) SetSpeed(speed simulation.Speed) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sync()
	s.driver.SetSpeed(speed, s.now)
}

// SetTourMode toggles storytelling. Turning it on starts a fresh tour; turning it off
// ends the session like Stop.
func (s *Session) SetTourMode(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sync()

	if on == s.tourMode {
		return
	}
	s.tourMode = on
	if on {
		s.tour.Reset()
		return
	}
	s.cancel()
	s.route = routing.RouteResult{}
	s.publish(s.driver.Last())
}

// SetGuidance turns guidance off, or back on along the current route.
func (s *Session) SetGuidance(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sync()

	if on {
		if !s.driver.HasRoute() && !s.route.Empty() {
			s.cancel()
			s.driver.SetRoute(s.route)
		}
		return
	}
	s.cancel()
	s.publish(s.driver.Last())
}

// RepeatTour speaks the last tour narration again.
func (s *Session) RepeatTour() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sync()
	return s.tour.RepeatLast(s.channel)
}

// Snapshot returns the most recently published update.
func (s *Session) Snapshot() Update {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

func (s *Session) Route() routing.RouteResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.route
}

// LastSpoken is the last utterance that completed or was recorded while muted.
func (s *Session) LastSpoken() (speech.Request, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.channel.LastSpoken()
}

// sync moves the session clock forward for calls made between ticks.
func (s *Session) sync() {
	if now := s.clock.Now(); now.After(s.now) {
		s.now = now
	}
}

func (s *Session) publish(u simulation.Update) Update {
	s.ticks++
	s.last = Update{
		Update:   u,
		Subtitle: s.channel.Subtitle(),
		Speaking: s.channel.IsSpeaking(),
		Muted:    s.channel.Muted(),
		Paused:   s.driver.Paused(),
		TourMode: s.tourMode,
		Tick:     s.ticks,
	}
	if s.onUpdate != nil {
		s.onUpdate(s.last)
	}
	return s.last
}

func (s *Session) subtitleChanged(sub speech.Subtitle) {
	if s.onSubtitle != nil {
		s.onSubtitle(sub)
	}
}
