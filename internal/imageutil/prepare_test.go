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

package imageutil_test

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jaycherian/lumi/internal/imageutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.White)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestPrepareScalesLargeImage(t *testing.T) {
	data, mime, err := imageutil.Prepare(encodePNG(t, 2048, 1024))
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", mime)

	img, err := jpeg.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, imageutil.MaxEdge, img.Bounds().Dx())
	assert.Equal(t, imageutil.MaxEdge/2, img.Bounds().Dy())
}

func TestPrepareSmallImageNoUpscale(t *testing.T) {
	data, _, err := imageutil.Prepare(encodePNG(t, 40, 30))
	require.NoError(t, err)

	img, err := jpeg.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 40, img.Bounds().Dx())
	assert.Equal(t, 30, img.Bounds().Dy())
}

func TestPrepareRejectsText(t *testing.T) {
	_, _, err := imageutil.Prepare([]byte("hello, not a photo"))
	assert.ErrorIs(t, err, imageutil.ErrNotImage)
}

func TestPrepareFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "photo.png")
	require.NoError(t, os.WriteFile(path, encodePNG(t, 10, 10), 0o600))

	data, mime, err := imageutil.PrepareFile(path)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", mime)
	assert.NotEmpty(t, data)

	_, _, err = imageutil.PrepareFile(filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)
}

func TestSniffReader(t *testing.T) {
	mime, err := imageutil.SniffReader(bytes.NewReader(encodePNG(t, 2, 2)))
	require.NoError(t, err)
	assert.Equal(t, "image/png", mime)

	_, err = imageutil.SniffReader(strings.NewReader(""))
	assert.ErrorIs(t, err, imageutil.ErrNotImage)
}
