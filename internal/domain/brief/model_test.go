package brief

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDurationSeconds(t *testing.T) {
	assert.Equal(t, 15, (&Brief{VideoDuration: "15s"}).DurationSeconds())
	assert.Equal(t, 90, (&Brief{VideoDuration: "90s"}).DurationSeconds())
	assert.Equal(t, 60, (&Brief{VideoDuration: "2 minutes"}).DurationSeconds())
	assert.Equal(t, 60, (&Brief{}).DurationSeconds())
}

func TestAspectRatio(t *testing.T) {
	assert.Equal(t, "16:9", (&Brief{}).AspectRatio())
	assert.Equal(t, "9:16", (&Brief{RecordingFormats: []string{"Vertical (9:16)"}}).AspectRatio())
	assert.Equal(t, "9:16", (&Brief{RecordingFormats: []string{"Square (1:1)", "TikTok/Instagram Stories"}}).AspectRatio())
	assert.Equal(t, "1:1", (&Brief{RecordingFormats: []string{"Instagram Feed"}}).AspectRatio())
	assert.Equal(t, "16:9", (&Brief{RecordingFormats: []string{"Landscape (16:9)"}}).AspectRatio())
}
