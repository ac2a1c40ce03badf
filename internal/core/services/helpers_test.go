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

package services_test

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/jaycherian/lumi/internal/core/model"
	"github.com/jaycherian/lumi/internal/core/services"
	"github.com/jaycherian/lumi/internal/player"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *services.SQLiteRecapStore {
	t.Helper()
	store, err := services.NewSQLiteRecapStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func slides(n int) []model.Slide {
	out := make([]model.Slide, n)
	for i := range out {
		out[i] = model.Slide{URI: fmt.Sprintf("gs://lumi-test-uploads/incoming/%d.jpg", i)}
	}
	return out
}

// manualClock fires timers only from Advance.
type manualClock struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*manualTimer
}

type manualTimer struct {
	clock *manualClock
	at    time.Duration
	f     func()
	done  bool
}

func (c *manualClock) AfterFunc(d time.Duration, f func()) player.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTimer{clock: c, at: c.now + d, f: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	was := !t.done
	t.done = true
	return was
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now + d
	c.mu.Unlock()
	for {
		c.mu.Lock()
		live := make([]*manualTimer, 0)
		for _, t := range c.timers {
			if !t.done && t.at <= target {
				live = append(live, t)
			}
		}
		if len(live) == 0 {
			c.now = target
			c.mu.Unlock()
			return
		}
		sort.Slice(live, func(i, j int) bool { return live[i].at < live[j].at })
		next := live[0]
		next.done = true
		c.now = next.at
		c.mu.Unlock()
		next.f()
	}
}

func (c *manualClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.done {
			n++
		}
	}
	return n
}

// blockingRunner holds every Run until release is closed.
type blockingRunner struct {
	started chan *model.RecapRequest
	release chan struct{}
}

func (r *blockingRunner) Run(ctx context.Context, req *model.RecapRequest) (*model.RecapSet, error) {
	r.started <- req
	select {
	case <-r.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return model.NewRecapSet(req.Slides, req.Caption), nil
}

type echoRunner struct {
	requests []*model.RecapRequest
}

func (r *echoRunner) Run(_ context.Context, req *model.RecapRequest) (*model.RecapSet, error) {
	r.requests = append(r.requests, req)
	if len(req.Slides) == 0 {
		return nil, model.ErrEmptySelection
	}
	return model.NewRecapSet(req.Slides, req.Caption), nil
}
