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

// Package photosource obtains the user's photo selection from wherever the
// photos live: a local directory, a Cloud Storage library prefix or a batch
// of uploaded files. Every source distinguishes a denied request
// (model.ErrPermissionDenied) from a request that picked nothing (an empty
// slice and a nil error).
package photosource

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/jaycherian/lumi/internal/cloud"
	"github.com/jaycherian/lumi/internal/core/model"
)

// Source yields slides in the order the user picked them.
type Source interface {
	Pick(ctx context.Context) ([]model.Slide, error)
}

// MapError converts storage and file system permission failures into
// model.ErrPermissionDenied and leaves other errors alone.
func MapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, model.ErrPermissionDenied) {
		return err
	}
	if errors.Is(err, fs.ErrPermission) || cloud.IsPermissionError(err) {
		return fmt.Errorf("%s: %w: %v", op, model.ErrPermissionDenied, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
