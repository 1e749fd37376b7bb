package aws

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientsSatisfyWorkerInterfaces(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")

	sesClient, err := NewSESClient(context.Background(), "us-east-1")
	require.NoError(t, err)
	snsClient, err := NewSNSClient(context.Background(), "us-east-1")
	require.NoError(t, err)

	var sender EmailSender = sesClient
	var publisher SMSPublisher = snsClient
	assert.NotNil(t, sender)
	assert.NotNil(t, publisher)
}
