// Package export renders VGV streams into playable artifacts.
//
// Two exporters are provided:
//
//   - Video replays a stream, rasterizes every output image and pipes raw
//     RGBA frames into a muxer (ffmpeg by default) at the stream's frame rate.
//   - HTML replays a stream into a self-contained HTML document with an
//     embedded player that cycles frames at the declared interval.
//
// # Video pipeline
//
// Replay is strictly sequential since each Delta depends on the exact content
// reconstructed before it. The replaying producer hands one Job per output
// image to a single worker through a bounded Queue:
//
//	producer (replay) --Push--> Queue (bounded) --Pop--> worker (rasterize, write) --> Muxer
//
// When the queue is full the producer blocks, so memory stays bounded by the
// queue capacity no matter how long the stream is. After the last image the
// producer sends an explicit end-of-work sentinel; completion never depends
// on the queue becoming empty. The worker is joined through an errgroup, and
// an error or panic on either side releases the other side.
//
// An Unchanged(n) frame yields n jobs carrying the same markup. The worker
// keeps the last rasterized image and writes it again instead of rasterizing
// identical markup twice, so the output still has one frame per tick.
//
// Example:
//
//	v := export.NewVideo(raster.NewGG(), export.NewFFmpeg(),
//	    export.WithAudio("music.mp3"),
//	)
//	res, err := v.Export(ctx, frames, "out.mp4")
package export
