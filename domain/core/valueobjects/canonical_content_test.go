package valueobjects_test

import (
	"testing"

	"planner-backend/domain/core/valueobjects"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalContent_TextOnly(t *testing.T) {
	content := valueobjects.NewCanonicalContent("  remember the milk  ")

	assert.Equal(t, "remember the milk", content.Text())
	assert.False(t, content.HasMedia())
	assert.False(t, content.IsEmpty())
}

func TestCanonicalContent_WithMedia(t *testing.T) {
	media := valueobjects.NewMediaDescriptor([]byte{0xff, 0xd8}, "image/jpeg")
	content := valueobjects.NewCanonicalContentWithMedia("whiteboard", media)

	assert.True(t, content.HasMedia())
	assert.Equal(t, "image/jpeg", content.Media().MediaType())
}

func TestCanonicalContent_Empty(t *testing.T) {
	assert.True(t, valueobjects.NewCanonicalContent("   ").IsEmpty())
	assert.False(t, valueobjects.NewCanonicalContentWithMedia("", valueobjects.NewMediaDescriptor([]byte{1}, "")).IsEmpty())
}

func TestCanonicalContent_HashStability(t *testing.T) {
	a := valueobjects.NewCanonicalContent("buy milk")
	b := valueobjects.NewCanonicalContent("buy milk")
	c := valueobjects.NewCanonicalContent("buy bread")

	assert.Equal(t, a.Hash(), b.Hash())
	assert.NotEqual(t, a.Hash(), c.Hash())
}

func TestCanonicalContent_HashIncludesMedia(t *testing.T) {
	text := valueobjects.NewCanonicalContent("whiteboard")
	withMedia := valueobjects.NewCanonicalContentWithMedia("whiteboard",
		valueobjects.NewMediaDescriptor([]byte{1, 2, 3}, "image/png"))

	assert.NotEqual(t, text.Hash(), withMedia.Hash())
}

func TestMediaDescriptor_DefaultsMediaType(t *testing.T) {
	media := valueobjects.NewMediaDescriptor([]byte{1}, "")

	assert.Equal(t, "image/jpeg", media.MediaType())
	assert.False(t, media.IsZero())
	assert.True(t, valueobjects.NewMediaDescriptor(nil, "image/png").IsZero())
}
