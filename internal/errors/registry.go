package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category   Category
	Message    string
	Detail     string
	Suggestion string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Stream Errors (E001-E019)
	// ============================================

	"E001": {
		Category:   CategoryStream,
		Message:    "Not a vgv stream",
		Detail:     "The first line of a stream must be the magic token vgv1.",
		Suggestion: "Check that the file was produced by 'vgv encode' and is not empty.",
	},
	"E002": {
		Category:   CategoryStream,
		Message:    "Malformed frame",
		Detail:     "A frame line could not be decoded. Every line is a one letter tag followed by the frame body.",
		Suggestion: "Check the frame body against its tag.",
	},
	"E003": {
		Category: CategoryStream,
		Message:  "Unsupported frame type",
		Detail:   "The stream uses a frame tag this decoder does not know. Audio frames (A) are reserved and not supported.",
	},
	"E004": {
		Category:   CategoryStream,
		Message:    "Frame line too long",
		Detail:     "A single frame exceeds the decoder's line size limit.",
		Suggestion: "Re-encode with a smaller full diff ratio or split the content.",
	},
	"E005": {
		Category:   CategoryStream,
		Message:    "Invalid stream parameters",
		Detail:     "Frame duration, width and height must all be greater than zero.",
		Suggestion: "Set encode.durationMs, encode.width and encode.height in vgv.json or pass --duration and --size.",
	},

	// ============================================
	// Render Errors (E020-E039)
	// ============================================

	"E020": {
		Category:   CategoryRender,
		Message:    "Delta does not apply",
		Suggestion: "The stream is corrupt or was edited by hand. Re-encode it from the source snapshots.",
	},
	"E021": {
		Category: CategoryRender,
		Message:  "Frame before initialization",
		Detail:   "The first frame of a stream must be an Initialization (I) frame.",
	},
	"E022": {
		Category: CategoryRender,
		Message:  "Stream initialized twice",
		Detail:   "A stream carries exactly one Initialization (I) frame.",
	},
	"E023": {
		Category: CategoryRender,
		Message:  "Replay failed",
	},

	// ============================================
	// Export Errors (E040-E059)
	// ============================================

	"E040": {
		Category:   CategoryExport,
		Message:    "ffmpeg not found",
		Detail:     "Video export pipes raw frames into ffmpeg, which was not found on PATH.",
		Suggestion: "Install ffmpeg or set export.ffmpeg in vgv.json to its full path.",
	},
	"E041": {
		Category:   CategoryExport,
		Message:    "ffmpeg failed",
		Suggestion: "Run with --log-level debug to see the ffmpeg arguments.",
	},
	"E042": {
		Category: CategoryExport,
		Message:  "Rasterization failed",
	},
	"E043": {
		Category: CategoryExport,
		Message:  "Writing frames failed",
		Detail:   "The muxer stopped accepting frames before the stream ended.",
	},
	"E044": {
		Category: CategoryExport,
		Message:  "Missing initialization frame",
		Detail:   "The first frame after the header must be an Initialization (I) frame.",
	},
	"E045": {
		Category: CategoryExport,
		Message:  "Could not start ffmpeg",
	},

	// ============================================
	// Upload Errors (E060-E079)
	// ============================================

	"E060": {
		Category:   CategoryUpload,
		Message:    "Upload failed",
		Suggestion: "Check upload.bucket, upload.region and the VGV_UPLOAD_* credentials.",
	},
	"E061": {
		Category: CategoryUpload,
		Message:  "Invalid upload key",
		Detail:   "Keys are relative slash separated paths and may not leave the store root.",
	},
	"E062": {
		Category:   CategoryUpload,
		Message:    "Artifact too large",
		Suggestion: "Raise upload.maxSize in vgv.json.",
	},

	// ============================================
	// Config Errors (E120-E139)
	// ============================================

	"E120": {
		Category:   CategoryConfig,
		Message:    "Configuration file not found",
		Suggestion: "Create vgv.json or pass --config.",
	},
	"E121": {
		Category: CategoryConfig,
		Message:  "Invalid configuration file",
		Detail:   "The configuration file could not be parsed.",
	},
	"E122": {
		Category: CategoryConfig,
		Message:  "Invalid configuration value",
	},
	"E123": {
		Category:   CategoryConfig,
		Message:    "Invalid environment override",
		Suggestion: "Check the VGV_* environment variables.",
	},

	// ============================================
	// CLI Errors (E140-E159)
	// ============================================

	"E140": {
		Category: CategoryCLI,
		Message:  "Input not found",
	},
	"E141": {
		Category:   CategoryCLI,
		Message:    "No snapshots to encode",
		Detail:     "The input contains no .svg files.",
		Suggestion: "Pass a directory of SVG snapshots or a list of .svg files.",
	},
	"E142": {
		Category: CategoryCLI,
		Message:  "Invalid flag value",
	},

	// ============================================
	// Generic (E900-E999)
	// ============================================

	"E900": {
		Category: CategoryCLI,
		Message:  "Unexpected error",
	},
	"E901": {
		Category: CategoryCLI,
		Message:  "Interrupted",
	},
}

// Lookup returns the template for a code.
func Lookup(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Codes returns all registered codes of a category.
func Codes(category Category) []string {
	var codes []string
	for code, t := range registry {
		if t.Category == category {
			codes = append(codes, code)
		}
	}
	return codes
}
