package messaging

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solistra/profiler/internal/config"
	"github.com/solistra/profiler/pkg/models"
)

func TestSnapshotMessage_Serialization(t *testing.T) {
	vec := make([]float64, models.EmbeddingDim)
	vec[0] = 1

	message := models.SnapshotMessage{
		JobID:  uuid.New(),
		UserID: uuid.New(),
		Interactions: []models.InteractionRecord{
			{Vector: vec, InteractionType: models.InteractionRepost},
		},
		Timestamp: time.Now().UTC().Truncate(time.Second),
	}

	messageBytes, err := json.Marshal(message)
	require.NoError(t, err)
	assert.NotEmpty(t, messageBytes)

	var decoded models.SnapshotMessage
	err = json.Unmarshal(messageBytes, &decoded)
	require.NoError(t, err)

	assert.Equal(t, message.JobID, decoded.JobID)
	assert.Equal(t, message.UserID, decoded.UserID)
	require.Len(t, decoded.Interactions, 1)
	assert.Equal(t, models.InteractionRepost, decoded.Interactions[0].InteractionType)
	assert.Len(t, decoded.Interactions[0].Vector, models.EmbeddingDim)
	assert.True(t, message.Timestamp.Equal(decoded.Timestamp))
}

func TestNewMessageBus_RequiresBrokers(t *testing.T) {
	cfg := config.Default()
	cfg.Kafka.Brokers = nil

	bus, err := NewMessageBus(cfg, logrus.New())
	assert.Error(t, err)
	assert.Nil(t, bus)
}
