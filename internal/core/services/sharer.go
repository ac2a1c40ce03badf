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
	"log/slog"
	"net/http"
	"strings"
	"time"

	credentials "cloud.google.com/go/iam/credentials/apiv1"
	"cloud.google.com/go/iam/credentials/apiv1/credentialspb"
	"cloud.google.com/go/storage"
	"github.com/jaycherian/lumi/internal/cloud"
	"github.com/jaycherian/lumi/internal/core/model"
)

// Sharer turns a slide into something the user can hand to someone else.
type Sharer interface {
	Share(ctx context.Context, slide model.Slide) (string, error)
}

// URLSigner signs a GET URL for bucket/object.
type URLSigner func(bucket string, object string, opts *storage.SignedURLOptions) (string, error)

// SignedURLSharer shares Cloud Storage slides as V4 signed URLs. The URL is
// signed by SignerEmail through the IAM Credentials API, so no key file is
// needed. Slides outside Cloud Storage are returned unchanged.
type SignedURLSharer struct {
	StorageClient *storage.Client                   // Used when Signer is nil.
	IAMClient     *credentials.IamCredentialsClient // Signs the URL payload.
	SignerEmail   string                            // Service account that signs.
	TTL           time.Duration                     // Lifetime of the link.
	Signer        URLSigner                         // Overrides StorageClient, mostly for tests.
}

// Share returns a link for slide. Failures match model.ErrShareFailure.
func (s *SignedURLSharer) Share(ctx context.Context, slide model.Slide) (string, error) {
	if !cloud.IsGCSURI(slide.URI) {
		return strings.TrimPrefix(slide.URI, "file://"), nil
	}

	obj, err := cloud.ParseGCSURI(slide.URI)
	if err != nil {
		return "", s.fail(ctx, slide, err)
	}

	opts := &storage.SignedURLOptions{
		Scheme:         storage.SigningSchemeV4,
		Method:         http.MethodGet,
		Expires:        time.Now().Add(s.ttl()),
		GoogleAccessID: s.SignerEmail,
	}
	if s.IAMClient != nil {
		opts.SignBytes = func(b []byte) ([]byte, error) {
			req := &credentialspb.SignBlobRequest{
				Name:    fmt.Sprintf("projects/-/serviceAccounts/%s", s.SignerEmail),
				Payload: b,
			}
			resp, err := s.IAMClient.SignBlob(ctx, req)
			if err != nil {
				return nil, fmt.Errorf("IAMClient.SignBlob: %w", err)
			}
			return resp.SignedBlob, nil
		}
	}

	signer := s.Signer
	if signer == nil {
		if s.StorageClient == nil {
			return "", s.fail(ctx, slide, fmt.Errorf("no storage client configured"))
		}
		signer = func(bucket string, object string, opts *storage.SignedURLOptions) (string, error) {
			return s.StorageClient.Bucket(bucket).SignedURL(object, opts)
		}
	}

	u, err := signer(obj.Bucket, obj.Name, opts)
	if err != nil {
		return "", s.fail(ctx, slide, fmt.Errorf("Bucket(%q).Object(%q).SignedURL: %w", obj.Bucket, obj.Name, err))
	}
	return u, nil
}

func (s *SignedURLSharer) ttl() time.Duration {
	if s.TTL <= 0 {
		return 15 * time.Minute
	}
	return s.TTL
}

func (s *SignedURLSharer) fail(ctx context.Context, slide model.Slide, err error) error {
	slog.WarnContext(ctx, "share failed", "uri", slide.URI, "error", err)
	return fmt.Errorf("%w: %w", model.ErrShareFailure, err)
}
