// Package serve exposes a VGV stream over HTTP.
//
// Routes:
//
//	GET /            HTML player for the stream
//	GET /stream.vgv  raw stream text
//	GET /ws          websocket feed of frame lines, paced in real time
//	GET /healthz     liveness check
//	GET /metrics     Prometheus metrics
//
// The websocket feed sends the header line first and then one text message
// per frame. After a frame the feed waits one frame duration per image the
// frame produces, so Unchanged(n) holds the picture for n ticks.
package serve
