// Package ws serves the interactive terminal over WebSocket.
//
// Each connection owns one terminal session: its log, history and recall
// cursor live only as long as the socket. Theme changes requested by the
// session are pushed to the browser as theme frames.
//
// Message Types (Client → Server):
//   - execute: run one line, {"type":"execute","input":"help"}
//   - recall: move through history, {"type":"recall","direction":"up"}
//   - ping: keep-alive ping
//
// Message Types (Server → Client):
//   - entry: an appended log entry (the welcome entry is sent on connect)
//   - clear: the log was emptied
//   - buffer: the staged input after a recall
//   - theme: the site theme to apply
//   - pong: reply to ping
//   - error: malformed client frame
//
// Example Usage:
//
//	handler := ws.NewHandler(ws.Config{Projects: source, Metrics: metrics})
//	router.GET("/api/terminal", handler.HandleConnection)
package ws
