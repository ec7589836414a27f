package openstack_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaigouthro/nimbus/pkg/openstack"
)

func TestGatewayError(t *testing.T) {
	t.Parallel()

	t.Run("with status", func(t *testing.T) {
		t.Parallel()

		err := &openstack.GatewayError{
			StatusCode: http.StatusNotFound,
			Message:    "Instance srv-9 could not be found.",
			Method:     http.MethodGet,
			URL:        "https://nova/v2.1/servers/srv-9",
		}

		assert.Equal(t, "GET https://nova/v2.1/servers/srv-9: 404 Not Found: Instance srv-9 could not be found.", err.Error())
		assert.True(t, openstack.IsNotFound(err))
		assert.Equal(t, http.StatusNotFound, openstack.StatusCode(fmt.Errorf("wrapped: %w", err)))
	})

	t.Run("transport failure", func(t *testing.T) {
		t.Parallel()

		err := &openstack.GatewayError{
			Message: "dial tcp: connection refused",
			Method:  http.MethodPost,
			URL:     "https://nova/v2.1/servers",
			Err:     context.DeadlineExceeded,
		}

		assert.Equal(t, "POST https://nova/v2.1/servers: dial tcp: connection refused", err.Error())
		require.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Equal(t, 0, openstack.StatusCode(err))
		assert.False(t, openstack.IsNotFound(err))
	})
}

func TestAuthError(t *testing.T) {
	t.Parallel()

	gwErr := &openstack.GatewayError{StatusCode: http.StatusUnauthorized, Message: "expired", Method: http.MethodGet, URL: "https://glance/v2/images"}
	err := fmt.Errorf("listing images: %w", &openstack.AuthError{Gateway: gwErr, Hint: openstack.AuthHint})

	assert.True(t, openstack.IsUnauthorized(err))
	assert.Equal(t, http.StatusUnauthorized, openstack.StatusCode(err))
	assert.Contains(t, err.Error(), openstack.AuthHint)

	target := &openstack.GatewayError{}
	require.ErrorAs(t, err, &target)
	assert.Same(t, gwErr, target)

	assert.False(t, openstack.IsUnauthorized(gwErr))
}

func TestValidationError(t *testing.T) {
	t.Parallel()

	err := (&openstack.CreateVolumeRequest{SizeGB: 0}).Validate()
	require.Error(t, err)
	require.ErrorIs(t, err, openstack.ErrInvalidRequest)

	validationErr := &openstack.ValidationError{}
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "size_gb", validationErr.Field)
	assert.Equal(t, "invalid request: size_gb must be positive", err.Error())
	assert.Equal(t, 0, openstack.StatusCode(err))
}

func TestRequireID(t *testing.T) {
	t.Parallel()

	require.NoError(t, openstack.RequireID("volume_id", "vol-1"))

	for _, id := range []string{"", "  "} {
		err := openstack.RequireID("volume_id", id)
		require.ErrorIs(t, err, openstack.ErrInvalidRequest)
		assert.Equal(t, "invalid request: volume_id is required", err.Error())
	}
}

func TestEndpointNotFound(t *testing.T) {
	t.Parallel()

	err := openstack.EndpointNotFound("volumev3|volumev2|volume")

	assert.True(t, openstack.IsEndpointNotFound(err))
	assert.True(t, errors.Is(fmt.Errorf("listing volumes: %w", err), openstack.ErrEndpointNotFound))
	assert.Contains(t, err.Error(), "volumev3|volumev2|volume")
}
