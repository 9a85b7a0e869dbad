package main

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stockdesk/stockdesk/internal/app"
	"github.com/stockdesk/stockdesk/internal/testing/guard"
)

func TestMainReturnsInTestMode(t *testing.T) {
	require.Equal(t, "1", os.Getenv(guard.EnvVar))
	require.True(t, app.RefreshTestMode())

	require.NotPanics(t, main)
}
