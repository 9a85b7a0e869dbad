package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockdesk/stockdesk/internal/shared"
)

func TestAuthenticate(t *testing.T) {
	svc := NewService(newStubRepo(t))

	user, err := svc.Authenticate(context.Background(), "admin", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, int64(1), user.ID)
	assert.True(t, user.IsAdmin)

	_, err = svc.Authenticate(context.Background(), "admin", "wrong")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)

	_, err = svc.Authenticate(context.Background(), "nobody", "correct-horse")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
}
