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

package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/jaycherian/lumi/internal/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestWriteRecapJSON(t *testing.T) {
	recap := testRecap(2)
	var buf bytes.Buffer
	require.NoError(t, writeRecap(&buf, recap, "json"))

	got := &model.RecapSet{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), got))
	assert.Equal(t, recap.Id, got.Id)
	assert.Equal(t, recap.Slides, got.Slides)
	assert.Equal(t, recap.Highlights, got.Highlights)
}

func TestWriteRecapYAML(t *testing.T) {
	recap := testRecap(2)
	recap.Title = "Lake Days"
	var buf bytes.Buffer
	require.NoError(t, writeRecap(&buf, recap, "yaml"))
	assert.Contains(t, buf.String(), "title: Lake Days")
	assert.Contains(t, buf.String(), "- uri: a.jpg")

	got := &model.RecapSet{}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), got))
	assert.Equal(t, "Lake Days", got.Title)
	assert.Equal(t, recap.VibeKey, got.VibeKey)
}

func TestWriteRecapUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, writeRecap(&buf, testRecap(1), "xml"))
	assert.Zero(t, buf.Len())
}

func TestPrintListEmpty(t *testing.T) {
	var buf bytes.Buffer
	printList(&buf, nil)
	assert.Contains(t, buf.String(), "no recaps yet")
}
