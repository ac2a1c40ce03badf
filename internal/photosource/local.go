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

package photosource

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/jaycherian/lumi/internal/core/model"
	"github.com/jaycherian/lumi/internal/imageutil"
)

// LocalSource picks every image file directly inside Dir, in name order.
// Files that are not images are skipped.
type LocalSource struct {
	Dir   string
	Limit int // Maximum number of slides; 0 means no limit.
}

// NewLocalSource creates a LocalSource for dir.
func NewLocalSource(dir string, limit int) *LocalSource {
	return &LocalSource{Dir: dir, Limit: limit}
}

func (s *LocalSource) Pick(ctx context.Context) ([]model.Slide, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return nil, MapError("read photo directory", err)
	}

	root, err := filepath.Abs(s.Dir)
	if err != nil {
		return nil, MapError("resolve photo directory", err)
	}

	out := make([]model.Slide, 0, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(root, entry.Name())
		ok, err := isImageFile(path)
		if err != nil {
			return nil, MapError("open photo", err)
		}
		if !ok {
			slog.DebugContext(ctx, "skipping non-image file", "path", path)
			continue
		}
		out = append(out, model.Slide{URI: path})
		if s.Limit > 0 && len(out) >= s.Limit {
			break
		}
	}
	return out, nil
}

func isImageFile(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()
	if _, err := imageutil.SniffReader(f); err != nil {
		if errors.Is(err, imageutil.ErrNotImage) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
