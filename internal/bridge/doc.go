// Package bridge exposes the engine to host surfaces over a WebSocket.
//
// The bridge is the boundary between the connection engine and whatever
// renders the session (an embedded UI, a Node host process, a debugging
// page). Every engine event is fanned out to all connected clients as a
// JSON envelope, and clients send control commands back on the same
// connection.
//
// # Wire Format
//
// Server -> client messages are JSON envelopes:
//
//	{"event": "statusChanged", "data": {"status": "Connected - CarPlay"}}
//	{"event": "videoFrame", "data": {"width": 800, "height": 640, "keyframe": true, "data": "<base64>"}}
//
// Client -> server messages are commands keyed by "op":
//
//	{"op": "touch", "x": 0.5, "y": 0.5, "action": "down"}
//	{"op": "key", "name": "home"}
//	{"op": "volume", "value": 0.8}
//	{"op": "videoSettings", "width": 1280, "height": 720, "dpi": 160}
//	{"op": "status"}
//
// Command failures come back as {"event": "error"} envelopes on the
// issuing connection; they never tear the connection down.
//
// # Backpressure
//
// Broadcast runs on engine goroutines and must never block. Each client
// has a bounded outbound queue; when it fills, messages to that client
// are dropped. Video frames dominate the traffic, and a dropped frame
// costs the client one picture update, not protocol state.
//
// # Usage Example
//
//	node := carlink.New(cfg)
//	srv := bridge.NewServer(cfg.BridgeAddr, node)
//	if err := srv.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package bridge
