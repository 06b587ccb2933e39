package checker

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckSystemReachableAPI(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	status, err := CheckSystem(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.True(t, status.APIReachable)
	assert.Equal(t, http.StatusNotFound, status.APIStatus)
	assert.Empty(t, status.APIError)
	assert.NotEmpty(t, status.UptimeString)
}

func TestCheckSystemUnreachableAPI(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	status, err := CheckSystem(context.Background(), url)
	require.NoError(t, err)
	assert.False(t, status.APIReachable)
	assert.NotEmpty(t, status.APIError)
}
