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
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jaycherian/lumi/internal/core/model"
	"github.com/jaycherian/lumi/internal/photosource"
)

// Selection is the set of photos a user has picked for one recap, in the
// order they were picked. Duplicates are allowed.
type Selection struct {
	Id         string        `json:"id"`
	CreateDate time.Time     `json:"create_date"`
	Slides     []model.Slide `json:"slides"`
	Analyzing  bool          `json:"analyzing"`
}

func (s *Selection) clone() *Selection {
	out := *s
	out.Slides = make([]model.Slide, len(s.Slides))
	copy(out.Slides, s.Slides)
	return &out
}

// SelectionService keeps selections in memory. Selections are working
// state for a single recap and are not persisted.
type SelectionService struct {
	mu         sync.Mutex
	selections map[string]*Selection
}

func NewSelectionService() *SelectionService {
	return &SelectionService{selections: make(map[string]*Selection)}
}

// Create starts a selection holding slides.
func (s *SelectionService) Create(slides ...model.Slide) *Selection {
	sel := &Selection{
		Id:         uuid.NewString(),
		CreateDate: time.Now(),
		Slides:     append(make([]model.Slide, 0, len(slides)), slides...),
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selections[sel.Id] = sel
	return sel.clone()
}

// Append adds slides to the end of the selection.
func (s *SelectionService) Append(id string, slides ...model.Slide) (*Selection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sel, ok := s.selections[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", model.ErrSelectionNotFound, id)
	}
	sel.Slides = append(sel.Slides, slides...)
	return sel.clone(), nil
}

// AppendFrom picks photos from source and appends them. A source that
// picks nothing leaves the selection unchanged; a denied source returns
// an error matching model.ErrPermissionDenied.
func (s *SelectionService) AppendFrom(ctx context.Context, id string, source photosource.Source) (*Selection, error) {
	if _, err := s.Get(id); err != nil {
		return nil, err
	}
	slides, err := source.Pick(ctx)
	if err != nil {
		return nil, err
	}
	return s.Append(id, slides...)
}

// Get returns a copy of the selection.
func (s *SelectionService) Get(id string) (*Selection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sel, ok := s.selections[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", model.ErrSelectionNotFound, id)
	}
	return sel.clone(), nil
}

// Delete removes the selection. A selection being analyzed cannot be deleted.
func (s *SelectionService) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sel, ok := s.selections[id]
	if !ok {
		return fmt.Errorf("%w: %s", model.ErrSelectionNotFound, id)
	}
	if sel.Analyzing {
		return fmt.Errorf("%w: %s", model.ErrAnalysisInFlight, id)
	}
	delete(s.selections, id)
	return nil
}

// BeginAnalysis marks the selection as being analyzed and returns a
// snapshot of it together with the function that clears the mark. Only one
// analysis per selection may be outstanding.
func (s *SelectionService) BeginAnalysis(id string) (*Selection, func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sel, ok := s.selections[id]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", model.ErrSelectionNotFound, id)
	}
	if sel.Analyzing {
		return nil, nil, fmt.Errorf("%w: %s", model.ErrAnalysisInFlight, id)
	}
	sel.Analyzing = true

	var once sync.Once
	release := func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			sel.Analyzing = false
		})
	}
	return sel.clone(), release, nil
}

// Len is the number of selections held.
func (s *SelectionService) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.selections)
}
