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
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/bigquery"
	"github.com/jaycherian/lumi/internal/core/model"
	"google.golang.org/api/iterator"
)

// RecapStore persists recaps.
type RecapStore interface {
	Save(ctx context.Context, recap *model.RecapSet) error
	Get(ctx context.Context, id string) (*model.RecapSet, error)
	List(ctx context.Context, limit int) ([]*model.RecapSet, error)
}

// BigQueryRecapStore keeps one row per recap in a BigQuery table. Rows are
// streamed in with an Inserter using the struct's bigquery tags.
type BigQueryRecapStore struct {
	BigqueryClient *bigquery.Client
	DatasetName    string
	RecapTable     string
}

// GetFQN returns the table name in standard SQL form, project.dataset.table.
func (s *BigQueryRecapStore) GetFQN() string {
	fqn := s.BigqueryClient.Dataset(s.DatasetName).Table(s.RecapTable).FullyQualifiedName()
	return strings.Replace(fqn, ":", ".", -1)
}

func (s *BigQueryRecapStore) Save(ctx context.Context, recap *model.RecapSet) error {
	i := s.BigqueryClient.Dataset(s.DatasetName).Table(s.RecapTable).Inserter()
	if err := i.Put(ctx, recap); err != nil {
		return fmt.Errorf("bigquery insert failed for recap %s: %w", recap.Id, err)
	}
	return nil
}

func (s *BigQueryRecapStore) Get(ctx context.Context, id string) (*model.RecapSet, error) {
	q := s.BigqueryClient.Query(fmt.Sprintf(QryFindRecapById, s.GetFQN()))
	q.Parameters = []bigquery.QueryParameter{{Name: "id", Value: id}}
	itr, err := q.Read(ctx)
	if err != nil {
		return nil, err
	}
	recap := &model.RecapSet{}
	if err := itr.Next(recap); err != nil {
		if errors.Is(err, iterator.Done) {
			return nil, fmt.Errorf("%w: %s", model.ErrRecapNotFound, id)
		}
		return nil, err
	}
	recap.ApplyDefaults()
	return recap, nil
}

func (s *BigQueryRecapStore) List(ctx context.Context, limit int) ([]*model.RecapSet, error) {
	q := s.BigqueryClient.Query(fmt.Sprintf(QryListRecaps, s.GetFQN()))
	q.Parameters = []bigquery.QueryParameter{{Name: "limit", Value: limit}}
	itr, err := q.Read(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*model.RecapSet, 0)
	for {
		recap := &model.RecapSet{}
		err := itr.Next(recap)
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, err
		}
		recap.ApplyDefaults()
		out = append(out, recap)
	}
	return out, nil
}

// GetRecapSchema infers the table schema from model.RecapSet.
func GetRecapSchema() (bigquery.Schema, error) {
	return bigquery.InferSchema(model.RecapSet{})
}
