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

package services_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jaycherian/lumi/internal/core/model"
	"github.com/jaycherian/lumi/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteRecapStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	recap := model.NewRecapSet(slides(3), "Weekend in Chicago with the crew")
	recap.Title = "Deep Dish Diaries"
	recap.VibeKey = "friends"
	recap.VibeLabel = "Crew goals"
	recap.Highlights = []int{2, 0}
	recap.Notice = model.Notice{Code: model.NoticeOrderingUnavailable, Message: "kept your order"}
	require.NoError(t, store.Save(ctx, recap))

	got, err := store.Get(ctx, recap.Id)
	require.NoError(t, err)
	assert.Equal(t, recap.Id, got.Id)
	assert.Equal(t, recap.Slides, got.Slides)
	assert.Equal(t, "Deep Dish Diaries", got.Title)
	assert.Equal(t, []int{2, 0}, got.Highlights)
	assert.Equal(t, model.NoticeOrderingUnavailable, got.Notice.Code)
	assert.True(t, recap.CreateDate.Equal(got.CreateDate))
}

func TestSQLiteRecapStoreSaveReplaces(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	recap := model.NewRecapSet(slides(1), "")
	require.NoError(t, store.Save(ctx, recap))
	recap.Title = "Second cut"
	require.NoError(t, store.Save(ctx, recap))

	got, err := store.Get(ctx, recap.Id)
	require.NoError(t, err)
	assert.Equal(t, "Second cut", got.Title)

	all, err := store.List(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestSQLiteRecapStoreNotFound(t *testing.T) {
	_, err := newStore(t).Get(context.Background(), "missing")
	assert.ErrorIs(t, err, model.ErrRecapNotFound)
}

func TestSQLiteRecapStoreListNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ids := make([]string, 0)
	for i := 0; i < 4; i++ {
		recap := model.NewRecapSet(slides(1), "")
		recap.CreateDate = base.Add(time.Duration(i) * time.Hour)
		require.NoError(t, store.Save(ctx, recap))
		ids = append(ids, recap.Id)
	}

	got, err := store.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, ids[3], got[0].Id)
	assert.Equal(t, ids[2], got[1].Id)
}

func TestSQLiteRecapStoreOnDisk(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "lumi.db")

	store, err := services.NewSQLiteRecapStore(path)
	require.NoError(t, err)
	recap := model.NewRecapSet(slides(2), "")
	require.NoError(t, store.Save(ctx, recap))
	require.NoError(t, store.Close())

	reopened, err := services.NewSQLiteRecapStore(path)
	require.NoError(t, err)
	defer reopened.Close()
	got, err := reopened.Get(ctx, recap.Id)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultVibeKey, got.VibeKey)
	assert.NotNil(t, got.Highlights)
}

func TestGetRecapSchema(t *testing.T) {
	schema, err := services.GetRecapSchema()
	require.NoError(t, err)
	names := make([]string, 0, len(schema))
	for _, f := range schema {
		names = append(names, f.Name)
	}
	assert.Contains(t, names, "id")
	assert.Contains(t, names, "slides")
	assert.Contains(t, names, "notice")
}
