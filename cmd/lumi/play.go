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
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/jaycherian/lumi/internal/cloud"
	"github.com/jaycherian/lumi/internal/core/model"
	"github.com/jaycherian/lumi/internal/core/services"
	"github.com/jaycherian/lumi/internal/player"
	"github.com/spf13/cobra"
)

var keyActions = map[string]services.Action{
	"":  services.ActionToggle,
	"t": services.ActionToggle,
	"n": services.ActionNext,
	"p": services.ActionPrev,
	"r": services.ActionReplay,
}

func newPlayCmd(opts *rootOptions) *cobra.Command {
	var interval time.Duration
	var exitAtEnd bool

	cmd := &cobra.Command{
		Use:   "play <recap-id>",
		Short: "Play a stored recap in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(opts.config)
			if err != nil {
				return err
			}
			defer store.Close()

			playerConfig := opts.config.Player
			if interval > 0 {
				playerConfig.SlideDurationMs = int(interval / time.Millisecond)
			}
			playback := services.NewPlaybackService(store, &services.SignedURLSharer{TTL: opts.config.Share.TTL()}, playerConfig)
			defer playback.CloseAll(cmd.Context())

			sess, err := playback.Open(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return runPlayer(cmd.Context(), playback, sess.Id, cmd.InOrStdin(), cmd.OutOrStdout(), exitAtEnd)
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", 0, fmt.Sprintf("Time per slide (default %s)", cloud.DefaultSlideDuration))
	cmd.Flags().BoolVar(&exitAtEnd, "exit-at-end", false, "Start immediately and exit when the credits roll")
	return cmd
}

// runPlayer renders frames of session to out and applies the single-key
// commands read line by line from in. It returns when the user quits, when
// in is exhausted, or, with exitAtEnd, when the outro is reached.
func runPlayer(ctx context.Context, playback *services.PlaybackService, sessionId string, in io.Reader, out io.Writer, exitAtEnd bool) error {
	frames := make(chan player.Frame, 16)
	unsubscribe, err := playback.Subscribe(sessionId, func(f player.Frame) {
		select {
		case frames <- f:
		default:
		}
	})
	if err != nil {
		return err
	}
	defer unsubscribe()

	sess, err := playback.Get(sessionId)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, renderFrame(sess.Player.Snapshot()))
	if sess.Player.Phase() == player.PhaseEmpty {
		return model.ErrEmptyRecap
	}

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- strings.ToLower(strings.TrimSpace(scanner.Text())):
			case <-ctx.Done():
				return
			}
		}
	}()

	if exitAtEnd {
		if _, err := playback.Command(ctx, sessionId, services.ActionStart); err != nil {
			return err
		}
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case f := <-frames:
			fmt.Fprintln(out, renderFrame(f))
			if exitAtEnd && f.Phase == player.PhaseOutro {
				return nil
			}
		case line, ok := <-lines:
			if !ok {
				if exitAtEnd {
					lines = nil
					continue
				}
				return nil
			}
			if line == "q" {
				return nil
			}
			if line == "s" {
				link, err := playback.Share(ctx, sessionId)
				if err != nil {
					fmt.Fprintln(out, noticeStyle.Render(err.Error()))
					continue
				}
				fmt.Fprintln(out, metaStyle.Render("share: ")+link)
				continue
			}
			action, known := keyActions[line]
			if !known {
				fmt.Fprintln(out, metaStyle.Render("unknown key "+line))
				continue
			}
			if _, err := playback.Command(ctx, sessionId, action); err != nil {
				if !errors.Is(err, player.ErrInvalidTransition) {
					return err
				}
				slog.Debug("ignored key", "key", line, "error", err)
			}
		}
	}
}
