package kafka

import (
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapMessageToRecord(t *testing.T) {
	msg := kafkago.Message{
		Key:       []byte("fire-1"),
		Value:     []byte(`{"latitude": -45.57, "longitude": -71.3, "brightness": 350, "confidence": "high", "date": "2025-05-28T15:10:00Z"}`),
		Topic:     "raw-fire-detections",
		Partition: 1,
		Offset:    7,
		Time:      time.Date(2025, 5, 28, 0, 0, 0, 0, time.UTC),
	}

	rec, err := mapMessageToRecord(msg)
	require.NoError(t, err)

	assert.Equal(t, -45.57, rec["latitude"])
	assert.Equal(t, "high", rec["confidence"])
	assert.Equal(t, "2025-05-28T15:10:00Z", rec["date"])
	_, hasAcq := rec["acq_date"]
	assert.False(t, hasAcq, "explicit date wins over the message timestamp")
}

func TestMapMessageToRecord_DatelessRecordInheritsMessageTime(t *testing.T) {
	msg := kafkago.Message{
		Value: []byte(`{"latitude": 1, "longitude": 2, "brightness": 300}`),
		Time:  time.Date(2025, 5, 27, 18, 45, 0, 0, time.UTC),
	}

	rec, err := mapMessageToRecord(msg)
	require.NoError(t, err)
	assert.Equal(t, "2025-05-27", rec["acq_date"])
}

func TestMapMessageToRecord_InvalidJSON(t *testing.T) {
	msg := kafkago.Message{Value: []byte("not-json{{{")}

	_, err := mapMessageToRecord(msg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode record")
}
