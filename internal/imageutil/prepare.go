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

// Package imageutil prepares local photos for the analysis model: it checks
// the bytes really are an image, scales large photos down and re-encodes them
// as JPEG so inline request payloads stay small.
package imageutil

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif" // Register GIF decoder
	"image/jpeg"
	_ "image/png" // Register PNG decoder
	"io"
	"os"

	"github.com/h2non/filetype"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

const (
	// MaxEdge bounds the longer side of a prepared photo.
	MaxEdge     = 1024
	jpegQuality = 85
	sniffLen    = 261
)

// ErrNotImage is returned for content that is not a recognised image type.
var ErrNotImage = errors.New("content is not an image")

// Sniff returns the MIME type of an image header, or ErrNotImage.
func Sniff(header []byte) (string, error) {
	if !filetype.IsImage(header) {
		return "", ErrNotImage
	}
	kind, err := filetype.Match(header)
	if err != nil {
		return "", fmt.Errorf("failed to match file type: %w", err)
	}
	return kind.MIME.Value, nil
}

// SniffReader reads the first bytes of r and sniffs them. The reader is
// consumed; callers that need the content should seek back.
func SniffReader(r io.Reader) (string, error) {
	header := make([]byte, sniffLen)
	n, err := io.ReadFull(r, header)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", err
	}
	return Sniff(header[:n])
}

// PrepareFile loads a photo from disk and returns JPEG bytes no larger than
// MaxEdge on either side. The file on disk is not modified.
func PrepareFile(path string) (data []byte, mimeType string, err error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read image: %w", err)
	}
	return Prepare(raw)
}

// Prepare decodes raw image bytes, scales and re-encodes them. Formats the
// standard decoders cannot read (HEIC, for example) are passed through
// unchanged with their sniffed MIME type.
func Prepare(raw []byte) (data []byte, mimeType string, err error) {
	mimeType, err = Sniff(raw)
	if err != nil {
		return nil, "", err
	}

	src, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return raw, mimeType, nil
		}
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, ScaleToFit(src, MaxEdge), &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, "", fmt.Errorf("failed to encode JPEG: %w", err)
	}
	return buf.Bytes(), "image/jpeg", nil
}

// ScaleToFit scales img so its longer side is at most maxEdge, preserving
// the aspect ratio. Smaller images are returned as is.
func ScaleToFit(img image.Image, maxEdge int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxEdge && h <= maxEdge {
		return img
	}

	ratio := float64(maxEdge) / float64(w)
	if rh := float64(maxEdge) / float64(h); rh < ratio {
		ratio = rh
	}
	newW := max(1, int(float64(w)*ratio))
	newH := max(1, int(float64(h)*ratio))

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	draw.BiLinear.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}
