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

// Package cloud contains data structures and utilities for interacting with Google Cloud services.
// This file holds the Google Cloud Storage helpers: the internal object
// reference, URI parsing and the MIME lookup used for slides.
//
// Structs:
//   - GCSObject: Bucket, object name and MIME type of one stored photo.
//
// Functions:
//   - ParseGCSURI: Splits gs:// and storage.googleapis.com URLs.
//   - ImageMIMEType: Guesses an image MIME type from an object name.
package cloud

import (
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"

	"google.golang.org/api/googleapi"
)

// GCSScheme prefixes object URIs.
const GCSScheme = "gs://"

var gcsHTTPPrefixes = []string{
	"https://storage.googleapis.com/",
	"https://storage.mtls.cloud.google.com/",
	"https://storage.cloud.google.com/",
}

// GCSObject is a reference to one stored object.
type GCSObject struct {
	Bucket   string // The bucket name.
	Name     string // The object name.
	MIMEType string // The content type, e.g. "image/jpeg".
}

// URI renders the object as gs://bucket/name.
func (o *GCSObject) URI() string {
	return fmt.Sprintf("%s%s/%s", GCSScheme, o.Bucket, o.Name)
}

// IsGCSURI reports whether uri points into Cloud Storage.
func IsGCSURI(uri string) bool {
	if strings.HasPrefix(uri, GCSScheme) {
		return true
	}
	for _, p := range gcsHTTPPrefixes {
		if strings.HasPrefix(uri, p) {
			return true
		}
	}
	return false
}

// ParseGCSURI extracts the bucket and object from a gs:// URI or a
// storage HTTPS URL.
func ParseGCSURI(uri string) (*GCSObject, error) {
	rest := ""
	switch {
	case strings.HasPrefix(uri, GCSScheme):
		rest = strings.TrimPrefix(uri, GCSScheme)
	default:
		for _, p := range gcsHTTPPrefixes {
			if strings.HasPrefix(uri, p) {
				rest = strings.TrimPrefix(uri, p)
				break
			}
		}
	}
	if rest == "" {
		return nil, fmt.Errorf("invalid GCS URI format: %s", uri)
	}
	parts := strings.SplitN(rest, "/", 2)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return nil, fmt.Errorf("invalid GCS URI: unable to determine bucket and object from %s", uri)
	}
	return &GCSObject{Bucket: parts[0], Name: parts[1], MIMEType: ImageMIMEType(parts[1])}, nil
}

var imageMIMETypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".heic": "image/heic",
	".heif": "image/heif",
}

// ImageMIMEType maps a file extension to an image MIME type, defaulting to JPEG.
func ImageMIMEType(name string) string {
	if t, ok := imageMIMETypes[strings.ToLower(path.Ext(name))]; ok {
		return t
	}
	return "image/jpeg"
}

// IsImageExtension reports whether name has a known image extension.
func IsImageExtension(name string) bool {
	_, ok := imageMIMETypes[strings.ToLower(path.Ext(name))]
	return ok
}

// IsPermissionError reports whether err is a Cloud API 401 or 403.
func IsPermissionError(err error) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusForbidden || apiErr.Code == http.StatusUnauthorized
	}
	return false
}
