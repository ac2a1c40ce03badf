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
	"strings"

	"cloud.google.com/go/storage"
	"github.com/jaycherian/lumi/internal/cloud"
	"github.com/jaycherian/lumi/internal/core/model"
	"google.golang.org/api/iterator"
)

// GCSSource picks the image objects under a bucket prefix, in the order the
// storage listing returns them (lexicographic by name).
type GCSSource struct {
	client *storage.Client
	bucket string
	prefix string
	limit  int
}

// NewGCSSource creates a GCSSource. limit caps the slide count; 0 means no limit.
func NewGCSSource(client *storage.Client, bucket string, prefix string, limit int) *GCSSource {
	return &GCSSource{client: client, bucket: bucket, prefix: prefix, limit: limit}
}

func (s *GCSSource) Pick(ctx context.Context) ([]model.Slide, error) {
	it := s.client.Bucket(s.bucket).Objects(ctx, &storage.Query{Prefix: s.prefix})
	out := make([]model.Slide, 0)
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, MapError("list library objects", err)
		}
		if !IsImageObject(attrs.Name, attrs.ContentType) {
			continue
		}
		out = append(out, model.Slide{URI: (&cloud.GCSObject{Bucket: attrs.Bucket, Name: attrs.Name}).URI()})
		if s.limit > 0 && len(out) >= s.limit {
			break
		}
	}
	return out, nil
}

// IsImageObject decides from the stored content type, falling back to the
// object name's extension when the content type is missing or generic.
func IsImageObject(name string, contentType string) bool {
	if strings.HasSuffix(name, "/") {
		return false
	}
	if strings.HasPrefix(contentType, "image/") {
		return true
	}
	if contentType == "" || contentType == "application/octet-stream" {
		return cloud.IsImageExtension(name)
	}
	return false
}
