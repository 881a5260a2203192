// Package audio decodes input media into PCM WAV and reads it back frame by
// frame.
package audio

import (
	"errors"
	"path/filepath"
	"sort"
	"strings"

	"github.com/guiyumin/vsub/internal/core/vad"
)

var (
	// ErrUnsupportedFormat is returned for inputs whose extension is not
	// in SupportedExtensions.
	ErrUnsupportedFormat = errors.New("unsupported audio format")

	// ErrEmptyAudio is returned when a WAV file carries no PCM frames. It
	// is the detector's error, so callers can match either name.
	ErrEmptyAudio = vad.ErrEmptyAudio

	// ErrInvalidWAV is returned when a file is not a readable PCM WAV.
	ErrInvalidWAV = errors.New("invalid WAV file")
)

// SupportedExtensions lists every input container accepted by Convert.
var SupportedExtensions = map[string]bool{
	// audio
	".mp3": true, ".wav": true, ".flac": true, ".m4a": true, ".aac": true,
	".ogg": true, ".wma": true, ".aiff": true, ".opus": true, ".amr": true,
	".au": true, ".ra": true,
	// video
	".mp4": true, ".mkv": true, ".avi": true, ".mov": true, ".webm": true,
	".flv": true, ".wmv": true, ".m4v": true, ".3gp": true,
}

// IsSupported reports whether path has a supported extension.
func IsSupported(path string) bool {
	return SupportedExtensions[strings.ToLower(filepath.Ext(path))]
}

// Extensions returns the supported extensions in sorted order.
func Extensions() []string {
	exts := make([]string, 0, len(SupportedExtensions))
	for ext := range SupportedExtensions {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}
