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
	"fmt"
	"io"
	"mime/multipart"
	"path"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"github.com/jaycherian/lumi/internal/cloud"
	"github.com/jaycherian/lumi/internal/core/model"
	"github.com/jaycherian/lumi/internal/imageutil"
)

// ObjectWriter opens a writer for a new object.
type ObjectWriter interface {
	NewWriter(ctx context.Context, bucket string, name string, contentType string) io.WriteCloser
}

// GCSObjectWriter writes objects with a storage client.
type GCSObjectWriter struct {
	Client *storage.Client
}

func (g *GCSObjectWriter) NewWriter(ctx context.Context, bucket string, name string, contentType string) io.WriteCloser {
	w := g.Client.Bucket(bucket).Object(name).NewWriter(ctx)
	w.ContentType = contentType
	return w
}

// UploadSource stages a batch of multipart files into the upload bucket and
// yields them as gs:// slides in the order they were sent.
type UploadSource struct {
	writer ObjectWriter
	bucket string
	prefix string
	files  []*multipart.FileHeader
}

// NewUploadSource creates a source for one batch of uploaded files.
func NewUploadSource(writer ObjectWriter, bucket string, prefix string, files []*multipart.FileHeader) *UploadSource {
	return &UploadSource{writer: writer, bucket: bucket, prefix: prefix, files: files}
}

// Pick uploads every file. A file that is not an image fails the whole
// batch with an error wrapping imageutil.ErrNotImage; objects already
// written stay in the bucket for its lifecycle rule to collect.
func (s *UploadSource) Pick(ctx context.Context) ([]model.Slide, error) {
	out := make([]model.Slide, 0, len(s.files))
	for _, fh := range s.files {
		slide, err := s.stage(ctx, fh)
		if err != nil {
			return nil, err
		}
		out = append(out, slide)
	}
	return out, nil
}

func (s *UploadSource) stage(ctx context.Context, fh *multipart.FileHeader) (model.Slide, error) {
	f, err := fh.Open()
	if err != nil {
		return model.Slide{}, fmt.Errorf("open upload %s: %w", fh.Filename, err)
	}
	defer f.Close()

	mimeType, err := imageutil.SniffReader(f)
	if err != nil {
		return model.Slide{}, fmt.Errorf("upload %s: %w", fh.Filename, err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return model.Slide{}, fmt.Errorf("rewind upload %s: %w", fh.Filename, err)
	}

	name := ObjectName(s.prefix, fh.Filename)
	w := s.writer.NewWriter(ctx, s.bucket, name, mimeType)
	if _, err := io.Copy(w, f); err != nil {
		_ = w.Close()
		return model.Slide{}, MapError("write upload", err)
	}
	if err := w.Close(); err != nil {
		return model.Slide{}, MapError("finalize upload", err)
	}
	return model.Slide{URI: (&cloud.GCSObject{Bucket: s.bucket, Name: name}).URI()}, nil
}

// ObjectName builds a unique object name under prefix that keeps the
// original file extension.
func ObjectName(prefix string, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	name := uuid.NewString() + ext
	if prefix == "" {
		return name
	}
	return strings.TrimSuffix(prefix, "/") + "/" + name
}
