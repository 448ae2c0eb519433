package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// The notification service binds its queues to these exact keys; changing
// one silently drops emails.
func TestRoutingKeysMatchNotificationBindings(t *testing.T) {
	assert.Equal(t, "pass.event.created", RoutingKeyPassCreated)
	assert.Equal(t, "pass.event.approved", RoutingKeyPassApproved)
	assert.Equal(t, "pass.event.rejected", RoutingKeyPassRejected)
	assert.Equal(t, "pass.event.expired", RoutingKeyPassExpired)
	assert.Equal(t, "user.event.created", RoutingKeyUserCreated)
	assert.Equal(t, "password.reset", RoutingKeyPasswordReset)
}
