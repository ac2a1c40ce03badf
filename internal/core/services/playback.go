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

package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jaycherian/lumi/internal/cloud"
	"github.com/jaycherian/lumi/internal/core/cor"
	"github.com/jaycherian/lumi/internal/core/model"
	"github.com/jaycherian/lumi/internal/player"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// Action is a player control sent by a client.
type Action string

const (
	ActionStart  Action = "start"
	ActionPause  Action = "pause"
	ActionResume Action = "resume"
	ActionToggle Action = "toggle"
	ActionNext   Action = "next"
	ActionPrev   Action = "prev"
	ActionReplay Action = "replay"
)

// ErrUnknownAction is returned by Command for an action it does not know.
var ErrUnknownAction = errors.New("unknown player action")

// RecapReader is the read side of RecapStore.
type RecapReader interface {
	Get(ctx context.Context, id string) (*model.RecapSet, error)
}

// Session is one open player.
type Session struct {
	Id       string         `json:"id"`
	RecapId  string         `json:"recap_id"`
	Player   *player.Player `json:"-"`
	lastUsed time.Time
}

// PlaybackOption configures a PlaybackService.
type PlaybackOption func(*PlaybackService)

// WithPlayerClock sets the clock handed to every player.
func WithPlayerClock(clock player.Clock) PlaybackOption {
	return func(s *PlaybackService) {
		s.clock = clock
	}
}

// WithNow replaces time.Now for idle bookkeeping.
func WithNow(now func() time.Time) PlaybackOption {
	return func(s *PlaybackService) {
		s.now = now
	}
}

// PlaybackService owns the server-side player sessions.
type PlaybackService struct {
	mu           sync.Mutex
	sessions     map[string]*Session
	recaps       RecapReader
	sharer       Sharer
	interval     time.Duration
	maxSessions  int
	idleTimeout  time.Duration
	clock        player.Clock
	now          func() time.Time
	openSessions metric.Int64UpDownCounter
	commands     metric.Int64Counter
}

// NewPlaybackService creates the registry. sharer may be nil, in which case
// Share fails with model.ErrShareFailure.
func NewPlaybackService(recaps RecapReader, sharer Sharer, config cloud.Player, opts ...PlaybackOption) *PlaybackService {
	meter := otel.Meter(cor.MeterNamespace)
	openSessions, err := meter.Int64UpDownCounter("player.sessions.open")
	if err != nil {
		slog.Warn("error creating session gauge", "error", err)
	}
	commands, err := meter.Int64Counter("player.commands")
	if err != nil {
		slog.Warn("error creating command counter", "error", err)
	}

	s := &PlaybackService{
		sessions:     make(map[string]*Session),
		recaps:       recaps,
		sharer:       sharer,
		interval:     config.SlideDuration(),
		maxSessions:  config.MaxSessions,
		idleTimeout:  time.Duration(config.IdleTimeoutInMins) * time.Minute,
		clock:        player.SystemClock,
		now:          time.Now,
		openSessions: openSessions,
		commands:     commands,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open loads the recap and starts a session on it in the intro phase.
func (s *PlaybackService) Open(ctx context.Context, recapId string) (*Session, error) {
	recap, err := s.recaps.Get(ctx, recapId)
	if err != nil {
		return nil, err
	}
	return s.OpenRecap(ctx, recap)
}

// OpenRecap starts a session on a recap that is already loaded.
func (s *PlaybackService) OpenRecap(ctx context.Context, recap *model.RecapSet) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.maxSessions > 0 && len(s.sessions) >= s.maxSessions {
		return nil, model.ErrSessionLimit
	}
	sess := &Session{
		Id:       uuid.NewString(),
		RecapId:  recap.Id,
		Player:   player.New(recap, player.WithClock(s.clock), player.WithInterval(s.interval)),
		lastUsed: s.now(),
	}
	s.sessions[sess.Id] = sess
	if s.openSessions != nil {
		s.openSessions.Add(ctx, 1)
	}
	slog.InfoContext(ctx, "player session opened", "session_id", sess.Id, "recap_id", recap.Id, "slides", recap.Len())
	return sess, nil
}

// Get returns the session and marks it as used.
func (s *PlaybackService) Get(id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.touchLocked(id)
}

// Touch marks the session as used, keeping it from the idle reaper.
func (s *PlaybackService) Touch(id string) error {
	_, err := s.Get(id)
	return err
}

// Command applies action to the session's player and returns the frame
// that results. Rejected transitions leave the player unchanged.
func (s *PlaybackService) Command(ctx context.Context, id string, action Action) (player.Frame, error) {
	sess, err := s.Get(id)
	if err != nil {
		return player.Frame{}, err
	}

	var control func() error
	switch action {
	case ActionStart:
		control = sess.Player.Start
	case ActionPause:
		control = sess.Player.Pause
	case ActionResume:
		control = sess.Player.Resume
	case ActionToggle:
		control = sess.Player.Toggle
	case ActionNext:
		control = sess.Player.Next
	case ActionPrev:
		control = sess.Player.Prev
	case ActionReplay:
		control = sess.Player.Replay
	default:
		return player.Frame{}, fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}

	if s.commands != nil {
		s.commands.Add(ctx, 1)
	}
	if err := control(); err != nil {
		return sess.Player.Snapshot(), fmt.Errorf("%s: %w", action, err)
	}
	return sess.Player.Snapshot(), nil
}

// Subscribe registers listener on the session's player.
func (s *PlaybackService) Subscribe(id string, listener player.Listener) (func(), error) {
	sess, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	return sess.Player.Subscribe(listener), nil
}

// Share shares the slide currently on screen. On an empty recap there is
// nothing to share and the result is empty.
func (s *PlaybackService) Share(ctx context.Context, id string) (string, error) {
	sess, err := s.Get(id)
	if err != nil {
		return "", err
	}
	slide, ok := sess.Player.Current()
	if !ok {
		return "", nil
	}
	if s.sharer == nil {
		return "", fmt.Errorf("%w: sharing is not configured", model.ErrShareFailure)
	}
	return s.sharer.Share(ctx, slide)
}

// Close ends the session and stops its timer.
func (s *PlaybackService) Close(ctx context.Context, id string) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	if ok {
		delete(s.sessions, id)
	}
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", model.ErrSessionNotFound, id)
	}
	s.closeSession(ctx, sess)
	return nil
}

// Len is the number of open sessions.
func (s *PlaybackService) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Reap closes sessions that were not used within the idle timeout and
// returns how many it closed.
func (s *PlaybackService) Reap(ctx context.Context) int {
	if s.idleTimeout <= 0 {
		return 0
	}
	cutoff := s.now().Add(-s.idleTimeout)

	s.mu.Lock()
	idle := make([]*Session, 0)
	for id, sess := range s.sessions {
		if sess.lastUsed.Before(cutoff) {
			idle = append(idle, sess)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, sess := range idle {
		slog.InfoContext(ctx, "closing idle player session", "session_id", sess.Id)
		s.closeSession(ctx, sess)
	}
	return len(idle)
}

// RunReaper calls Reap every interval until ctx is done.
func (s *PlaybackService) RunReaper(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Reap(ctx)
		}
	}
}

// CloseAll ends every session.
func (s *PlaybackService) CloseAll(ctx context.Context) {
	s.mu.Lock()
	all := s.sessions
	s.sessions = make(map[string]*Session)
	s.mu.Unlock()
	for _, sess := range all {
		s.closeSession(ctx, sess)
	}
}

func (s *PlaybackService) touchLocked(id string) (*Session, error) {
	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", model.ErrSessionNotFound, id)
	}
	sess.lastUsed = s.now()
	return sess, nil
}

func (s *PlaybackService) closeSession(ctx context.Context, sess *Session) {
	sess.Player.Close()
	if s.openSessions != nil {
		s.openSessions.Add(ctx, -1)
	}
}
