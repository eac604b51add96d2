// Package realtime keeps the registry of live WebSocket connections and
// routes chat broadcasts and targeted flash messages to them.
//
// A Manager owns the registry. Connections are added with Register and
// removed with Unregister, which is idempotent and also closes the socket.
// Delivery is best-effort: a send that fails removes the connection and is
// not counted, it is never reported to the publisher as an error.
//
// Liveness is checked by a single sweep per process:
//
//	mgr := realtime.NewManager(cfg, realtime.WithLogger(log))
//	go mgr.Run(ctx)
//
// Each sweep sends the text frame "ping" to every connection. Clients answer
// with the text frame "pong"; a connection that stays silent longer than
// PingInterval+PongTimeout is closed and dropped.
//
// Handlers exposes the two socket endpoints: a chat socket that rebroadcasts
// every inbound frame to the "clients" channel, and a receive-only flash
// socket subscribed to the caller's identity channel and to "flash:all".
package realtime
