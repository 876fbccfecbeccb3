/*
Package handler provides the HTTP handler function for WebSocket connection upgrading and initialization.

This file contains the HandleWebSocket function, which upgrades the HTTP connection
to WebSocket and initiates the client lifecycle. The connection binds itself to a
logical user later, via the register-user event.
*/
package handler

import (
	"net/http"

	"github.com/gorilla/websocket"

	"blahbluh/internal/app/chat"
	"blahbluh/internal/pkg/logx"
)

// HandleWebSocket creates an HTTP HandlerFunc to process WebSocket connection requests.
func HandleWebSocket(upgrader websocket.Upgrader, deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Error(err, "Failed to upgrade connection to WebSocket")
			return
		}

		client := chat.NewClient(deps.Hub, deps.Service, conn)

		deps.Hub.Register(client)

		go client.WritePump()

		client.ReadPump()
	}
}
