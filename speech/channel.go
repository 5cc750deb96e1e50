// Package speech arbitrates the single spoken-output channel shared by turn-by-turn
// navigation and tour narration.
//
// A Channel holds at most one active utterance. There is no queue: a request either
// starts immediately, replacing what is playing, or is dropped. All methods must be
// called from one logical thread; completion callbacks coming from a Sink are routed
// back onto that thread through the Scheduler.
package speech

import (
	"strings"
	"time"
)

// Priority orders the two narration sources.
type Priority int

const (
	// Tour is ambient storytelling. It never interrupts Navigation.
	Tour Priority = iota + 1
	// Navigation is turn-by-turn guidance. It interrupts Tour.
	Navigation
)

func (p Priority) String() string {
	switch p {
	case Tour:
		return "tour"
	case Navigation:
		return "navigation"
	default:
		return "none"
	}
}

// Request is one candidate utterance. Key is chosen by the issuing synthesizer.
type Request struct {
	Text     string   `json:"text"`
	Priority Priority `json:"priority"`
	Key      string   `json:"key,omitempty"`
}

// Subtitle is the on-screen record of what is, or just was, being said.
type Subtitle struct {
	Text    string   `json:"text"`
	Source  Priority `json:"source"`
	Visible bool     `json:"visible"`
}

// Sink plays text as audio. Speak must eventually call done exactly once if playback
// completes on its own; after Stop it may still call done, which is ignored.
type Sink interface {
	Available() bool
	Speak(text string, done func())
	Stop()
}

// Scheduler defers work onto the channel's logical thread.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) (cancel func())
	Post(f func())
}

type Options struct {
	SubtitleGrace  time.Duration
	WordsPerMinute int
	MinUtterance   time.Duration
	OnSubtitle     func(Subtitle)
}

type utterance struct {
	Request
	id uint64
}

type Channel struct {
	sink  Sink
	sched Scheduler
	opts  Options

	active     *utterance
	last       *Request
	muted      bool
	subtitle   Subtitle
	subtitleID uint64
	seq        uint64

	cancelFallback func()
	cancelClear    func()
}

// NewChannel builds a channel. A nil sink behaves as unavailable audio: subtitles are
// still shown and completion fires after an estimated speaking time. sched must run
// callbacks on the same logical thread that calls into the channel.
func NewChannel(sink Sink, sched Scheduler, opts Options) *Channel {
	if sched == nil {
		panic("speech: NewChannel requires a Scheduler")
	}
	if opts.WordsPerMinute <= 0 {
		opts.WordsPerMinute = 160
	}
	return &Channel{sink: sink, sched: sched, opts: opts}
}

// Speak submits a request and reports whether it was accepted, meaning it started
// playing or, while muted, was recorded as last spoken.
func (c *Channel) Speak(req Request) bool {
	if strings.TrimSpace(req.Text) == "" {
		return false
	}
	if c.active != nil {
		if c.active.Text == req.Text {
			return false
		}
		if c.active.Priority == Navigation && req.Priority == Tour {
			return false
		}
	}
	if c.muted {
		r := req
		c.last = &r
		return true
	}

	c.interrupt()
	c.seq++
	u := &utterance{Request: req, id: c.seq}
	c.active = u
	c.cancelPendingClear()
	c.setSubtitle(Subtitle{Text: req.Text, Source: req.Priority, Visible: true}, u.id)

	if c.audioAvailable() {
		id := u.id
		c.sink.Speak(req.Text, func() {
			c.sched.Post(func() { c.finish(id) })
		})
	} else {
		id := u.id
		c.cancelFallback = c.sched.AfterFunc(c.estimate(req.Text), func() { c.finish(id) })
	}
	return true
}

// Stop silences the channel and clears the subtitle immediately.
func (c *Channel) Stop() {
	c.interrupt()
	c.cancelPendingClear()
	c.setSubtitle(Subtitle{}, 0)
}

// StopKey stops the channel only when the active utterance carries key.
func (c *Channel) StopKey(key string) bool {
	if c.active == nil || c.active.Key != key {
		return false
	}
	c.Stop()
	return true
}

// SetMuted gates the channel. Muting stops the active utterance.
func (c *Channel) SetMuted(muted bool) {
	if muted && !c.muted {
		c.Stop()
	}
	c.muted = muted
}

func (c *Channel) Muted() bool { return c.muted }

// IsSpeaking reports whether an utterance is in progress.
func (c *Channel) IsSpeaking() bool { return c.active != nil }

// Active returns the request being spoken right now.
func (c *Channel) Active() (Request, bool) {
	if c.active == nil {
		return Request{}, false
	}
	return c.active.Request, true
}

// LastSpoken returns the last request that completed, or was recorded while muted.
func (c *Channel) LastSpoken() (Request, bool) {
	if c.last == nil {
		return Request{}, false
	}
	return *c.last, true
}

// Subtitle returns the currently displayed subtitle.
func (c *Channel) Subtitle() Subtitle { return c.subtitle }

func (c *Channel) finish(id uint64) {
	if c.active == nil || c.active.id != id {
		return
	}
	done := c.active.Request
	c.last = &done
	c.active = nil
	c.cancelFallback = nil

	c.cancelPendingClear()
	c.cancelClear = c.sched.AfterFunc(c.opts.SubtitleGrace, func() {
		if c.active == nil && c.subtitleID == id {
			c.setSubtitle(Subtitle{}, 0)
		}
	})
}

// interrupt drops the active utterance without recording it as spoken.
func (c *Channel) interrupt() {
	if c.active == nil {
		return
	}
	c.active = nil
	if c.cancelFallback != nil {
		c.cancelFallback()
		c.cancelFallback = nil
	}
	if c.audioAvailable() {
		c.sink.Stop()
	}
}

func (c *Channel) cancelPendingClear() {
	if c.cancelClear != nil {
		c.cancelClear()
		c.cancelClear = nil
	}
}

func (c *Channel) setSubtitle(s Subtitle, id uint64) {
	if s == c.subtitle && id == c.subtitleID {
		return
	}
	c.subtitle = s
	c.subtitleID = id
	if c.opts.OnSubtitle != nil {
		c.opts.OnSubtitle(s)
	}
}

func (c *Channel) audioAvailable() bool {
	return c.sink != nil && c.sink.Available()
}

// estimate approximates how long text takes to say at the configured pace.
func (c *Channel) estimate(text string) time.Duration {
	words := len(strings.Fields(text))
	d := time.Duration(words) * time.Minute / time.Duration(c.opts.WordsPerMinute)
	if d < c.opts.MinUtterance {
		d = c.opts.MinUtterance
	}
	return d
}
