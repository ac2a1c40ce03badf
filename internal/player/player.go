// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package player plays a recap as an auto-advancing slideshow.
//
// A Player moves through Intro, Playing, Paused and Outro (or stays in Empty
// for a recap without slides). While Playing, a single timer advances the
// slide every interval. The timer is owned by the Player: arming it always
// stops the previous one first, and every arm carries a generation number so
// a callback that was already running when it was stopped cannot act on a
// newer state. Every slide change and phase change is published to the
// listeners as a Frame.
package player

import (
	"errors"
	"sync"
	"time"

	"github.com/jaycherian/lumi/internal/core/model"
)

// DefaultInterval is the auto-advance interval.
const DefaultInterval = 2500 * time.Millisecond

var (
	// ErrInvalidTransition is returned for a control that the current phase does not accept.
	ErrInvalidTransition = errors.New("invalid player transition")
	// ErrClosed is returned for any control after Close.
	ErrClosed = errors.New("player is closed")
)

// Listener receives frames. It is called with the player's lock held and
// must not call back into the Player.
type Listener func(Frame)

// Option configures a Player.
type Option func(*Player)

// WithClock replaces SystemClock.
func WithClock(clock Clock) Option {
	return func(p *Player) {
		p.clock = clock
	}
}

// WithInterval sets the auto-advance interval; non-positive values keep the default.
func WithInterval(interval time.Duration) Option {
	return func(p *Player) {
		if interval > 0 {
			p.interval = interval
		}
	}
}

// WithListener registers a listener at construction.
func WithListener(listener Listener) Option {
	return func(p *Player) {
		p.listeners[p.nextListener] = listener
		p.nextListener++
	}
}

// Player is safe for concurrent use.
type Player struct {
	mu           sync.Mutex
	recap        *model.RecapSet
	clock        Clock
	interval     time.Duration
	phase        Phase
	index        int
	timer        Timer
	generation   uint64
	closed       bool
	done         chan struct{}
	listeners    map[int]Listener
	nextListener int
}

// New creates a player for recap. The player starts in PhaseIntro, or in
// PhaseEmpty when the recap has no slides. The recap is never modified.
func New(recap *model.RecapSet, opts ...Option) *Player {
	if recap == nil {
		recap = &model.RecapSet{}
		recap.ApplyDefaults()
	}
	p := &Player{
		recap:     recap,
		clock:     SystemClock,
		interval:  DefaultInterval,
		phase:     PhaseIntro,
		done:      make(chan struct{}),
		listeners: make(map[int]Listener),
	}
	if recap.Len() == 0 {
		p.phase = PhaseEmpty
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Recap returns the recap being played.
func (p *Player) Recap() *model.RecapSet {
	return p.recap
}

// Interval returns the auto-advance interval.
func (p *Player) Interval() time.Duration {
	return p.interval
}

// Subscribe registers listener and returns a function that removes it.
func (p *Player) Subscribe(listener Listener) (unsubscribe func()) {
	_, unsubscribe = p.SubscribeWithSnapshot(listener)
	return unsubscribe
}

func (p *Player) unsubscriber(id int) func() {
	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.listeners, id)
	}
}

// SubscribeWithSnapshot registers listener and returns the current frame
// taken under the same lock, so no emitted frame can precede it.
func (p *Player) SubscribeWithSnapshot(listener Listener) (Frame, func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := p.nextListener
	p.nextListener++
	p.listeners[id] = listener
	return newFrame(p.recap, p.phase, p.index), p.unsubscriber(id)
}

// Done is closed when the player is closed.
func (p *Player) Done() <-chan struct{} {
	return p.done
}

// Snapshot returns the current frame.
func (p *Player) Snapshot() Frame {
	p.mu.Lock()
	defer p.mu.Unlock()
	return newFrame(p.recap, p.phase, p.index)
}

// Phase returns the current phase.
func (p *Player) Phase() Phase {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.phase
}

// Current returns the slide at the current index; false for an empty recap.
func (p *Player) Current() (model.Slide, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.phase == PhaseEmpty {
		return model.Slide{}, false
	}
	return p.recap.Slides[p.index], true
}

// Start leaves the intro and plays from the first slide.
func (p *Player) Start() error {
	return p.control(func() error {
		if p.phase != PhaseIntro {
			return ErrInvalidTransition
		}
		p.play(0)
		return nil
	})
}

// Replay restarts from the first slide once the outro is showing.
func (p *Player) Replay() error {
	return p.control(func() error {
		if p.phase != PhaseOutro {
			return ErrInvalidTransition
		}
		p.play(0)
		return nil
	})
}

// Pause stops auto-advance.
func (p *Player) Pause() error {
	return p.control(func() error {
		if p.phase != PhasePlaying {
			return ErrInvalidTransition
		}
		p.disarm()
		p.phase = PhasePaused
		p.emit()
		return nil
	})
}

// Resume restarts auto-advance from the current slide with a full interval.
func (p *Player) Resume() error {
	return p.control(func() error {
		if p.phase != PhasePaused {
			return ErrInvalidTransition
		}
		p.play(p.index)
		return nil
	})
}

// Toggle is the single play control: Start in the intro, Replay in the
// outro, Pause while playing and Resume while paused.
func (p *Player) Toggle() error {
	return p.control(func() error {
		switch p.phase {
		case PhaseIntro, PhaseOutro:
			p.play(0)
		case PhasePlaying:
			p.disarm()
			p.phase = PhasePaused
			p.emit()
		case PhasePaused:
			p.play(p.index)
		}
		return nil
	})
}

// Next moves forward one slide, or to the outro from the last slide. While
// playing the timer restarts with a full interval; while paused the player
// stays paused.
func (p *Player) Next() error {
	return p.control(func() error {
		if p.phase != PhasePlaying && p.phase != PhasePaused {
			return ErrInvalidTransition
		}
		p.advance()
		return nil
	})
}

// Prev moves back one slide. On the first slide it does nothing, and the
// timer keeps its schedule.
func (p *Player) Prev() error {
	return p.control(func() error {
		if p.phase != PhasePlaying && p.phase != PhasePaused {
			return ErrInvalidTransition
		}
		if p.index == 0 {
			return nil
		}
		p.index--
		if p.phase == PhasePlaying {
			p.arm()
		}
		p.emit()
		return nil
	})
}

// Close stops the timer and ends the player. Calling it again does nothing.
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.disarm()
	p.closed = true
	close(p.done)
}

// control runs fn under the lock after the checks every control shares.
func (p *Player) control(fn func() error) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	if p.phase == PhaseEmpty {
		return model.ErrEmptyRecap
	}
	return fn()
}

func (p *Player) play(index int) {
	p.index = index
	p.phase = PhasePlaying
	p.arm()
	p.emit()
}

// advance moves to the next slide or to the outro; the caller holds the lock.
func (p *Player) advance() {
	if p.index >= p.recap.Len()-1 {
		p.disarm()
		p.phase = PhaseOutro
		p.emit()
		return
	}
	p.index++
	if p.phase == PhasePlaying {
		p.arm()
	}
	p.emit()
}

func (p *Player) arm() {
	p.disarm()
	gen := p.generation
	p.timer = p.clock.AfterFunc(p.interval, func() {
		p.tick(gen)
	})
}

// disarm stops the pending timer and invalidates any callback already in flight.
func (p *Player) disarm() {
	p.generation++
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
}

func (p *Player) tick(gen uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed || gen != p.generation || p.phase != PhasePlaying {
		return
	}
	p.timer = nil
	p.advance()
}

func (p *Player) emit() {
	f := newFrame(p.recap, p.phase, p.index)
	for _, l := range p.listeners {
		l(f)
	}
}
