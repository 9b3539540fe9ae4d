package queue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVideoQueuedEnvelope(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.FixedZone("WIB", 7*3600))
	body, err := encodeVideoQueued("v1", now)
	require.NoError(t, err)
	assert.JSONEq(t, `{"video_id":"v1","queued_at":"2024-05-01T05:00:00Z"}`, string(body))

	msg, err := decodeVideoQueued(body)
	require.NoError(t, err)
	assert.Equal(t, "v1", msg.VideoID)
	assert.True(t, msg.QueuedAt.Equal(now))
}

func TestVideoQueuedRejectsInvalid(t *testing.T) {
	_, err := encodeVideoQueued("", time.Now())
	assert.Error(t, err)

	for _, body := range []string{`not json`, `{}`, `{"video_id":""}`} {
		_, err := decodeVideoQueued([]byte(body))
		assert.Error(t, err, body)
	}
}

func TestNoop(t *testing.T) {
	var n Noop
	assert.NoError(t, n.PublishVideoQueued(context.Background(), "v1"))
	assert.NoError(t, n.Close())
}
