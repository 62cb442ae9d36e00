package main

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	httpapi "github.com/yourorg/listing-api/http"
)

func TestBuildRouter(t *testing.T) {
	srv := httptest.NewServer(BuildRouter(httpapi.ListingsDeps{}, httpapi.FeedsDeps{}))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"ok":true}`, string(body))

	resp, err = http.Post(srv.URL+"/v1/listings/resolve", "application/json", strings.NewReader(`{"listingType":"Rental","agentId":"A1"}`))
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"ok":true,"listingType":"rental"}`, string(body))

	resp, err = http.Post(srv.URL+"/v1/feeds/a/refresh", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
