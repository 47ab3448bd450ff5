package entity

import "strings"

// MimeTypeWebP is the output format for every extracted poster image.
const MimeTypeWebP = "image/webp"

// VideoInput is one unit of work: extract the frame at FrameIndex
// (zero-based) from the video at URL.
type VideoInput struct {
	URL        string `json:"url"`
	FrameIndex int    `json:"frame_index"`
}

// ExtractedImage is the poster produced for one successfully processed
// VideoInput.
type ExtractedImage struct {
	Filename string
	MimeType string
	Bytes    []byte
}

// ItemFailure records a VideoInput that could not be processed, with the
// error that stopped it. Failures never abort the rest of the batch.
type ItemFailure struct {
	Input VideoInput
	Err   error
}

func (f ItemFailure) Reason() string {
	if f.Err == nil {
		return ""
	}
	return f.Err.Error()
}

// OutputFilename derives the archive entry name for a source URL: the
// last path segment with its extension segments stripped, plus ".webp".
// "https://x.com/a/clip.mp4" -> "clip.webp", "https://x.com/noext" ->
// "noext.webp", "https://x.com/a.b.c.mov" -> "a.b.webp".
func OutputFilename(rawURL string) string {
	base := rawURL
	if i := strings.LastIndexByte(base, '/'); i >= 0 {
		base = base[i+1:]
	}
	base = stripExt(stripExt(base))
	return base + ".webp"
}

func stripExt(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[:i]
	}
	return name
}
