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
	"fmt"
	"io"

	"github.com/jaycherian/lumi/internal/core/model"
	"github.com/spf13/cobra"
)

func newListCmd(opts *rootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored recaps, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openStore(opts.config)
			if err != nil {
				return err
			}
			defer store.Close()

			recaps, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			printList(cmd.OutOrStdout(), recaps)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Show at most this many recaps")
	return cmd
}

func printList(w io.Writer, recaps []*model.RecapSet) {
	if len(recaps) == 0 {
		fmt.Fprintln(w, metaStyle.Render("no recaps yet"))
		return
	}
	for _, r := range recaps {
		fmt.Fprintf(w, "%s  %s  %s  %s\n",
			r.Id,
			metaStyle.Render(r.CreateDate.Local().Format("2006-01-02 15:04")),
			titleStyle(r.Accent()).Render(displayTitle(r)),
			metaStyle.Render(fmt.Sprintf("%d slides", r.Len())))
	}
}
