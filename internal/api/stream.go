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

package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/jaycherian/lumi/internal/core/services"
	"github.com/jaycherian/lumi/internal/player"
)

const (
	streamBuffer    = 16
	streamWriteWait = 10 * time.Second
	streamPongWait  = 60 * time.Second
	streamPingEvery = streamPongWait * 9 / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// streamMessage is what a client may send on the stream: a player action.
type streamMessage struct {
	Action services.Action `json:"action"`
}

// stream upgrades to a websocket, sends the current frame and then every
// frame the session's player emits. The stream ends with a close message
// when the session is closed. Clients can drive the player by
// sending {"action": "..."} messages; rejected actions are answered with
// {"error": ...}.
func (a *API) stream(c *gin.Context) {
	id := c.Param("id")
	sess, err := a.Playback.Get(id)
	if err != nil {
		respondError(c, err)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.WarnContext(c.Request.Context(), "websocket upgrade failed", "session_id", id, "error", err)
		return
	}
	defer conn.Close()

	// Listeners run under the player's lock, so frames are handed over
	// without blocking and dropped when the client falls behind.
	frames := make(chan any, streamBuffer)
	snapshot, unsubscribe := sess.Player.SubscribeWithSnapshot(func(f player.Frame) {
		select {
		case frames <- f:
		default:
		}
	})
	defer unsubscribe()
	if err := a.writeFrame(conn, id, snapshot); err != nil {
		return
	}

	ctx := c.Request.Context()
	done := make(chan struct{})
	go func() {
		defer close(done)
		conn.SetReadLimit(4096)
		_ = conn.SetReadDeadline(time.Now().Add(streamPongWait))
		conn.SetPongHandler(func(string) error {
			_ = a.Playback.Touch(id)
			return conn.SetReadDeadline(time.Now().Add(streamPongWait))
		})
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			msg := &streamMessage{}
			err = json.Unmarshal(data, msg)
			if err == nil {
				_, err = a.Playback.Command(ctx, id, msg.Action)
			}
			if err != nil {
				select {
				case frames <- gin.H{"error": err.Error()}:
				default:
				}
			}
		}
	}()

	ping := time.NewTicker(streamPingEvery)
	defer ping.Stop()
	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-sess.Player.Done():
			_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session closed"))
			return
		case msg := <-frames:
			if err := a.writeFrame(conn, id, msg); err != nil {
				slog.DebugContext(ctx, "stream write failed", "session_id", id, "error", err)
				return
			}
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// writeFrame sends msg and marks the session as used.
func (a *API) writeFrame(conn *websocket.Conn, id string, msg any) error {
	_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
	if err := conn.WriteJSON(msg); err != nil {
		return err
	}
	_ = a.Playback.Touch(id)
	return nil
}
