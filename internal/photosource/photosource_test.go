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

package photosource_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jaycherian/lumi/internal/core/model"
	"github.com/jaycherian/lumi/internal/imageutil"
	"github.com/jaycherian/lumi/internal/photosource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
)

// pngHeader is enough of a PNG for type sniffing.
var pngHeader = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0x0D, 'I', 'H', 'D', 'R'}

func writeFile(t *testing.T, dir, name string, data []byte) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o600))
}

func TestLocalSourcePicksImagesInNameOrder(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.png", pngHeader)
	writeFile(t, dir, "a.png", pngHeader)
	writeFile(t, dir, "notes.txt", []byte("not a photo"))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o700))

	slides, err := photosource.NewLocalSource(dir, 0).Pick(context.Background())
	require.NoError(t, err)
	require.Len(t, slides, 2)
	assert.Equal(t, "a.png", filepath.Base(slides[0].URI))
	assert.Equal(t, "b.png", filepath.Base(slides[1].URI))
	assert.True(t, filepath.IsAbs(slides[0].URI))
}

func TestLocalSourceLimit(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 5; i++ {
		writeFile(t, dir, fmt.Sprintf("%d.png", i), pngHeader)
	}
	slides, err := photosource.NewLocalSource(dir, 3).Pick(context.Background())
	require.NoError(t, err)
	assert.Len(t, slides, 3)
}

func TestLocalSourceEmptyIsNotDenied(t *testing.T) {
	slides, err := photosource.NewLocalSource(t.TempDir(), 0).Pick(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, slides)
	assert.Empty(t, slides)
}

func TestLocalSourceMissingDirectory(t *testing.T) {
	_, err := photosource.NewLocalSource(filepath.Join(t.TempDir(), "missing"), 0).Pick(context.Background())
	require.Error(t, err)
	assert.False(t, errors.Is(err, model.ErrPermissionDenied))
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestMapError(t *testing.T) {
	assert.Nil(t, photosource.MapError("op", nil))

	denied := photosource.MapError("op", &fs.PathError{Op: "open", Path: "/x", Err: fs.ErrPermission})
	assert.ErrorIs(t, denied, model.ErrPermissionDenied)

	forbidden := photosource.MapError("op", &googleapi.Error{Code: 403})
	assert.ErrorIs(t, forbidden, model.ErrPermissionDenied)

	unauthorized := photosource.MapError("op", &googleapi.Error{Code: 401})
	assert.ErrorIs(t, unauthorized, model.ErrPermissionDenied)

	other := photosource.MapError("op", &googleapi.Error{Code: 500})
	assert.False(t, errors.Is(other, model.ErrPermissionDenied))
}

func TestIsImageObject(t *testing.T) {
	assert.True(t, photosource.IsImageObject("a/b.jpg", "image/jpeg"))
	assert.True(t, photosource.IsImageObject("a/b.png", ""))
	assert.True(t, photosource.IsImageObject("a/b.webp", "application/octet-stream"))
	assert.False(t, photosource.IsImageObject("a/", ""))
	assert.False(t, photosource.IsImageObject("a/b.mp4", "video/mp4"))
	assert.False(t, photosource.IsImageObject("a/b.txt", ""))
}

type memWriter struct {
	bytes.Buffer
	closed bool
}

func (m *memWriter) Close() error {
	m.closed = true
	return nil
}

type memObjects struct {
	objects map[string]*memWriter
	types   map[string]string
}

func (m *memObjects) NewWriter(_ context.Context, bucket string, name string, contentType string) io.WriteCloser {
	w := &memWriter{}
	key := bucket + "/" + name
	m.objects[key] = w
	m.types[key] = contentType
	return w
}

func multipartFiles(t *testing.T, files map[string][]byte, order []string) []*multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, name := range order {
		fw, err := mw.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = fw.Write(files[name])
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	form, err := multipart.NewReader(&body, mw.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["files"]
}

func TestUploadSourceStagesInOrder(t *testing.T) {
	store := &memObjects{objects: map[string]*memWriter{}, types: map[string]string{}}
	files := multipartFiles(t, map[string][]byte{"one.PNG": pngHeader, "two.png": pngHeader}, []string{"one.PNG", "two.png"})

	slides, err := photosource.NewUploadSource(store, "uploads", "incoming/", files).Pick(context.Background())
	require.NoError(t, err)
	require.Len(t, slides, 2)
	for _, s := range slides {
		assert.True(t, strings.HasPrefix(s.URI, "gs://uploads/incoming/"))
		assert.True(t, strings.HasSuffix(s.URI, ".png"))
		key := strings.TrimPrefix(s.URI, "gs://")
		require.Contains(t, store.objects, key)
		assert.True(t, store.objects[key].closed)
		assert.Equal(t, pngHeader, store.objects[key].Bytes())
		assert.Equal(t, "image/png", store.types[key])
	}
	assert.NotEqual(t, slides[0].URI, slides[1].URI)
}

func TestUploadSourceRejectsNonImages(t *testing.T) {
	store := &memObjects{objects: map[string]*memWriter{}, types: map[string]string{}}
	files := multipartFiles(t, map[string][]byte{"notes.txt": []byte("plain text")}, []string{"notes.txt"})

	_, err := photosource.NewUploadSource(store, "uploads", "", files).Pick(context.Background())
	assert.ErrorIs(t, err, imageutil.ErrNotImage)
	assert.Empty(t, store.objects)
}

func TestObjectName(t *testing.T) {
	assert.True(t, strings.HasPrefix(photosource.ObjectName("a/b/", "x.JPG"), "a/b/"))
	assert.True(t, strings.HasSuffix(photosource.ObjectName("", "x.JPG"), ".jpg"))
	assert.False(t, strings.Contains(photosource.ObjectName("", "x.JPG"), "/"))
}
