package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var fixtureSeed = time.Now().UnixNano()

func postJSON[TResponse any](t *testing.T, path string, body interface{}) (*http.Response, TResponse) {
	t.Helper()

	var response TResponse

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	resp, err := fixture.client.Post(
		fixture.baseURL+path,
		"application/json",
		bytes.NewReader(payload),
	)
	require.NoError(t, err)

	defer func() {
		require.NoError(t, resp.Body.Close())
	}()

	if resp.StatusCode < 300 {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&response))
	}

	return resp, response
}

func getJSON[TResponse any](t *testing.T, path string) (*http.Response, TResponse) {
	t.Helper()

	var response TResponse

	resp, err := fixture.client.Get(fixture.baseURL + path)
	require.NoError(t, err)

	defer func() {
		require.NoError(t, resp.Body.Close())
	}()

	if resp.StatusCode < 300 {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&response))
	}

	return resp, response
}

var uniqueCounter int

// uniqueName avoids collisions between tests sharing one database.
func uniqueName(prefix string) string {
	uniqueCounter++
	return fmt.Sprintf("%s-%d-%d", prefix, uniqueCounter, fixtureSeed)
}
