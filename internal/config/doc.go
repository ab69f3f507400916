// Package config provides configuration for the vgv command.
//
// Configuration is read from vgv.json (or vgv.yaml / vgv.yml) found in the
// working directory or one of its parents, then overridden by VGV_*
// environment variables, then by command line flags.
//
// # Configuration File Structure
//
//	{
//	  "encode": {
//	    "fullDiffRatio": 100,
//	    "durationMs": 40,
//	    "width": 1280,
//	    "height": 720,
//	    "backdrop": "white"
//	  },
//	  "export": {
//	    "queueSize": 1000,
//	    "ffmpeg": "/usr/bin/ffmpeg",
//	    "outputArgs": ["-pix_fmt", "yuv420p"],
//	    "sanitize": true
//	  },
//	  "serve": { "addr": ":8080" },
//	  "upload": { "store": "s3", "bucket": "renders", "region": "eu-west-1" },
//	  "log": { "level": "info", "format": "text" },
//	  "telemetry": { "endpoint": "localhost:4318" }
//	}
//
// # Environment
//
// Every field has a VGV_<SECTION>_<FIELD> override, for example
// VGV_ENCODE_FULL_DIFF_RATIO or VGV_UPLOAD_BUCKET. Upload credentials are
// read from the environment only (VGV_UPLOAD_ACCESS_KEY_ID,
// VGV_UPLOAD_SECRET_ACCESS_KEY, VGV_UPLOAD_SESSION_TOKEN) and are never
// written back by SaveTo.
package config
