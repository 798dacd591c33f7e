package rabbitmq

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetNotificationQueues(t *testing.T) {
	queues := GetNotificationQueues()

	require.Len(t, queues, 1)
	assert.Equal(t, QueueCourseUpdated, queues[0].QueueName)
	assert.Equal(t, RoutingKeyCourseUpdated, queues[0].RoutingKey)
}
