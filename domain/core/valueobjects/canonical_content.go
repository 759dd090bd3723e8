package valueobjects

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// MediaDescriptor carries the non-text half of canonical content: the
// original image bytes (or a representative video frame) plus its MIME type.
// Audio never produces a descriptor; it is transcribed into the text half.
type MediaDescriptor struct {
	data      []byte
	mediaType string
}

// NewMediaDescriptor creates a media descriptor
func NewMediaDescriptor(data []byte, mediaType string) MediaDescriptor {
	if mediaType == "" {
		mediaType = "image/jpeg"
	}
	return MediaDescriptor{data: data, mediaType: mediaType}
}

// Data returns the raw media bytes
func (m MediaDescriptor) Data() []byte {
	return m.data
}

// MediaType returns the MIME type of the media
func (m MediaDescriptor) MediaType() string {
	return m.mediaType
}

// IsZero reports whether the descriptor holds no media
func (m MediaDescriptor) IsZero() bool {
	return len(m.data) == 0
}

// CanonicalContent is the uniform representation the normalizer produces
// regardless of the original input kind: text (possibly empty for pure
// image input) plus an optional media descriptor.
type CanonicalContent struct {
	text  string
	media MediaDescriptor
}

// NewCanonicalContent creates canonical content from text only
func NewCanonicalContent(text string) CanonicalContent {
	return CanonicalContent{text: strings.TrimSpace(text)}
}

// NewCanonicalContentWithMedia creates canonical content carrying media
func NewCanonicalContentWithMedia(text string, media MediaDescriptor) CanonicalContent {
	return CanonicalContent{text: strings.TrimSpace(text), media: media}
}

// Text returns the text half of the content
func (c CanonicalContent) Text() string {
	return c.text
}

// Media returns the media descriptor, zero-valued when absent
func (c CanonicalContent) Media() MediaDescriptor {
	return c.media
}

// HasMedia reports whether the content carries media bytes
func (c CanonicalContent) HasMedia() bool {
	return !c.media.IsZero()
}

// IsEmpty reports whether neither text nor media is present
func (c CanonicalContent) IsEmpty() bool {
	return c.text == "" && c.media.IsZero()
}

// Hash returns a stable content hash used for idempotency key derivation.
// Media contributes its bytes so an identical photo resubmitted by a flaky
// client dedupes the same way text does.
func (c CanonicalContent) Hash() string {
	h := sha256.New()
	h.Write([]byte(c.text))
	if !c.media.IsZero() {
		h.Write(c.media.data)
	}
	return hex.EncodeToString(h.Sum(nil))
}
