package service

import (
	"errors"
	"testing"
	"time"

	"github.com/resend/resend-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoopEmailService(t *testing.T) {
	svc := &NoopEmailService{}

	assert.NoError(t, svc.SendSubmissionConfirmation("user@example.com", "Опрос", "http://localhost/edit"))
	assert.NoError(t, svc.SendNewResponseAlert("owner@example.com", "Опрос", 1))
	assert.NoError(t, svc.SendCollaborationInvite("editor@example.com", "Опрос", "editor"))
}

func TestNewResendEmailService_RequiresKeyAndFrom(t *testing.T) {
	_, err := NewResendEmailService("", "Forms <no-reply@example.com>")
	require.Error(t, err)

	_, err = NewResendEmailService("re_test_key", "")
	require.Error(t, err)

	svc, err := NewResendEmailService("re_test_key", "Forms <no-reply@example.com>")
	require.NoError(t, err)
	require.NotNil(t, svc)
}

func TestResendRetryDelay_RateLimitHonorsRetryAfter(t *testing.T) {
	err := &resend.RateLimitError{RetryAfter: "2"}

	wait, retry := resendRetryDelay(err, 0)
	require.True(t, retry)
	assert.Equal(t, 2*time.Second, wait)
}

func TestResendRetryDelay_RateLimitCapsRetryAfter(t *testing.T) {
	err := &resend.RateLimitError{RetryAfter: "600"}

	wait, retry := resendRetryDelay(err, 0)
	require.True(t, retry)
	assert.Equal(t, 30*time.Second, wait)
}

func TestResendRetryDelay_RateLimitWithoutHeaderBacksOff(t *testing.T) {
	err := &resend.RateLimitError{}

	wait, retry := resendRetryDelay(err, 1)
	require.True(t, retry)
	assert.Equal(t, 2*time.Second, wait)
}

func TestResendRetryDelay_TimeoutMessageRetries(t *testing.T) {
	_, retry := resendRetryDelay(errors.New("context deadline exceeded: timeout"), 0)
	assert.True(t, retry)
}

func TestResendRetryDelay_PermanentErrorStops(t *testing.T) {
	_, retry := resendRetryDelay(errors.New("invalid recipient address"), 0)
	assert.False(t, retry)
}
