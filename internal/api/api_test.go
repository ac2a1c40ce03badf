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

package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jaycherian/lumi/internal/api"
	"github.com/jaycherian/lumi/internal/cloud"
	"github.com/jaycherian/lumi/internal/core/model"
	"github.com/jaycherian/lumi/internal/core/services"
	"github.com/jaycherian/lumi/internal/photosource"
	"github.com/jaycherian/lumi/internal/player"
	test "github.com/jaycherian/lumi/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memWriter struct {
	bytes.Buffer
	objects *memObjects
	name    string
}

func (w *memWriter) Close() error {
	w.objects.mu.Lock()
	defer w.objects.mu.Unlock()
	w.objects.data[w.name] = w.Bytes()
	return nil
}

type memObjects struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (m *memObjects) NewWriter(_ context.Context, bucket string, name string, _ string) io.WriteCloser {
	return &memWriter{objects: m, name: bucket + "/" + name}
}

type reverseRunner struct {
	store services.RecapStore
}

// Run mimics a successful analysis that reverses the selection.
func (r *reverseRunner) Run(ctx context.Context, req *model.RecapRequest) (*model.RecapSet, error) {
	if len(req.Slides) == 0 {
		return nil, model.ErrEmptySelection
	}
	ordered := make([]model.Slide, 0, len(req.Slides))
	for i := len(req.Slides) - 1; i >= 0; i-- {
		ordered = append(ordered, req.Slides[i])
	}
	recap := model.NewRecapSet(ordered, req.Caption)
	recap.Title = "Reversed"
	if err := r.store.Save(ctx, recap); err != nil {
		return nil, err
	}
	return recap, nil
}

type fixture struct {
	router  *gin.Engine
	api     *api.API
	store   *services.SQLiteRecapStore
	objects *memObjects
	library string
}

func newFixture(t *testing.T) *fixture {
	gin.SetMode(gin.TestMode)
	store, err := services.NewSQLiteRecapStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	library := t.TempDir()
	test.WritePNG(t, library, "a.png", 8, 8)
	test.WritePNG(t, library, "b.png", 8, 8)

	selections := services.NewSelectionService()
	objects := &memObjects{data: make(map[string][]byte)}
	a := &api.API{
		Selections:   selections,
		Recaps:       &services.RecapService{Selections: selections, Runner: &reverseRunner{store: store}, Store: store},
		Playback:     services.NewPlaybackService(store, &services.SignedURLSharer{}, cloud.Player{SlideDurationMs: 60000}),
		Library:      photosource.NewLocalSource(library, 0),
		UploadWriter: objects,
		UploadBucket: "lumi-test-uploads",
		UploadPrefix: "incoming",
		SlideBuckets: []string{"b"},
	}
	r := gin.New()
	a.Register(r.Group("/api/v1"))
	return &fixture{router: r, api: a, store: store, objects: objects, library: library}
}

func (f *fixture) do(t *testing.T, method string, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func multipartBody(t *testing.T, files map[string][]byte) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	for name, data := range files {
		part, err := w.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf, w.FormDataContentType()
}

func TestSelectionLifecycle(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/selections", map[string]any{
		"slides": []model.Slide{{URI: "gs://b/1.jpg"}, {URI: "gs://b/2.jpg"}},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	sel := decode[services.Selection](t, rec)
	assert.Len(t, sel.Slides, 2)

	rec = f.do(t, http.MethodPost, "/api/v1/selections/"+sel.Id+"/library", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[services.Selection](t, rec).Slides, 4)

	rec = f.do(t, http.MethodGet, "/api/v1/selections/"+sel.Id, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodDelete, "/api/v1/selections/"+sel.Id, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/v1/selections/"+sel.Id, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSelectionUploads(t *testing.T) {
	f := newFixture(t)
	png, err := os.ReadFile(test.WritePNG(t, t.TempDir(), "x.png", 4, 4))
	require.NoError(t, err)

	body, contentType := multipartBody(t, map[string][]byte{"x.png": png})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/selections", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)
	sel := decode[services.Selection](t, rec)
	require.Len(t, sel.Slides, 1)
	assert.True(t, strings.HasPrefix(sel.Slides[0].URI, "gs://lumi-test-uploads/incoming/"))
	assert.Len(t, f.objects.data, 1)

	body, contentType = multipartBody(t, map[string][]byte{"notes.txt": []byte("just some text")})
	req = httptest.NewRequest(http.MethodPost, "/api/v1/selections/"+sel.Id+"/photos", body)
	req.Header.Set("Content-Type", contentType)
	rec = httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateRecapFromSelection(t *testing.T) {
	f := newFixture(t)
	sel := decode[services.Selection](t, f.do(t, http.MethodPost, "/api/v1/selections", map[string]any{
		"slides": []model.Slide{{URI: "gs://b/1.jpg"}, {URI: "gs://b/2.jpg"}},
	}))

	rec := f.do(t, http.MethodPost, "/api/v1/recaps", map[string]string{"selection_id": sel.Id, "caption": "Beach day"})
	require.Equal(t, http.StatusCreated, rec.Code)
	recap := decode[model.RecapSet](t, rec)
	assert.Equal(t, "gs://b/2.jpg", recap.Slides[0].URI)
	assert.Equal(t, "Beach day", recap.Caption)

	rec = f.do(t, http.MethodGet, "/api/v1/recaps/"+recap.Id, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/v1/recaps?limit=5", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]model.RecapSet](t, rec), 1)
}

func TestCreateRecapErrors(t *testing.T) {
	f := newFixture(t)
	sel := decode[services.Selection](t, f.do(t, http.MethodPost, "/api/v1/selections", nil))

	rec := f.do(t, http.MethodPost, "/api/v1/recaps", map[string]string{"selection_id": sel.Id})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/v1/recaps", map[string]string{"selection_id": "missing"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/v1/recaps/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestClientSlidesMustBeInAllowedBuckets(t *testing.T) {
	f := newFixture(t)
	for _, uri := range []string{
		"/etc/photos/secret.jpg",
		"file:///etc/photos/secret.jpg",
		"https://example.com/a.jpg",
		"https://storage.googleapis.com/b/1.jpg",
		"gs://other-bucket/1.jpg",
		"gs://b",
	} {
		rec := f.do(t, http.MethodPost, "/api/v1/selections", map[string]any{
			"slides": []model.Slide{{URI: "gs://b/ok.jpg"}, {URI: uri}},
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code, uri)

		rec = f.do(t, http.MethodPost, "/api/v1/recaps", map[string]any{
			"slides": []model.Slide{{URI: uri}},
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code, uri)
	}
	assert.Zero(t, f.api.Selections.Len())

	rec := f.do(t, http.MethodPost, "/api/v1/recaps", map[string]any{
		"slides": []model.Slide{{URI: "gs://lumi-test-uploads/incoming/1.jpg"}, {URI: "gs://b/2.jpg"}},
	})
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestSessionFlow(t *testing.T) {
	f := newFixture(t)
	recap := model.NewRecapSet(model.NewSlides("/photos/1.jpg", "/photos/2.jpg"), "")
	require.NoError(t, f.store.Save(context.Background(), recap))

	rec := f.do(t, http.MethodPost, "/api/v1/recaps/"+recap.Id+"/sessions", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	opened := decode[struct {
		SessionId string       `json:"session_id"`
		Frame     player.Frame `json:"frame"`
	}](t, rec)
	assert.Equal(t, player.PhaseIntro, opened.Frame.Phase)
	base := "/api/v1/sessions/" + opened.SessionId

	rec = f.do(t, http.MethodPost, base+"/commands", map[string]string{"action": "next"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = f.do(t, http.MethodPost, base+"/commands", map[string]string{"action": "start"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, player.PhasePlaying, decode[player.Frame](t, rec).Phase)

	rec = f.do(t, http.MethodPost, base+"/commands", map[string]string{"action": "next"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decode[player.Frame](t, rec).Index)

	rec = f.do(t, http.MethodPost, base+"/commands", map[string]string{"action": "dance"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPost, base+"/share", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/photos/2.jpg", decode[map[string]string](t, rec)["url"])

	rec = f.do(t, http.MethodGet, base, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/v1/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode[api.Stats](t, rec)
	assert.Equal(t, 1, stats.OpenSessions)
	assert.Equal(t, 1, stats.RecentRecaps)

	rec = f.do(t, http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = f.do(t, http.MethodGet, base, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStatusFor(t *testing.T) {
	cases := map[error]int{
		model.ErrEmptySelection:     http.StatusBadRequest,
		model.ErrSelectionTooLarge:  http.StatusBadRequest,
		model.ErrSlideNotAllowed:    http.StatusBadRequest,
		model.ErrPermissionDenied:   http.StatusForbidden,
		model.ErrRecapNotFound:      http.StatusNotFound,
		model.ErrAnalysisInFlight:   http.StatusConflict,
		player.ErrInvalidTransition: http.StatusConflict,
		model.ErrEmptyRecap:         http.StatusConflict,
		model.ErrSessionLimit:       http.StatusTooManyRequests,
		model.ErrShareFailure:       http.StatusBadGateway,
		context.DeadlineExceeded:    http.StatusInternalServerError,
	}
	for err, status := range cases {
		assert.Equal(t, status, api.StatusFor(err), err.Error())
	}
}
