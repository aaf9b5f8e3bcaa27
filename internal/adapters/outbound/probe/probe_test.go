package probe_test

import (
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ch1kim0n1/HackSentinel/internal/adapters/outbound/probe"
)

// serverPort starts an HTTP server on a free localhost port and returns
// the port number.
func serverPort(t *testing.T, status int) int {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)

	_, portStr, err := net.SplitHostPort(srv.Listener.Addr().String())
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)
	return port
}

// freePort returns a port nothing is listening on.
func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	_, portStr, err := net.SplitHostPort(l.Addr().String())
	require.NoError(t, err)
	require.NoError(t, l.Close())
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)
	return port
}

func TestProbe_AliveServer(t *testing.T) {
	port := serverPort(t, http.StatusOK)

	res := probe.New().Probe([]int{port})

	assert.True(t, res.Alive)
	assert.Equal(t, port, res.Port)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Empty(t, res.Error)
}

func TestProbe_ErrorStatusStillCountsAsAlive(t *testing.T) {
	port := serverPort(t, http.StatusInternalServerError)

	res := probe.New().Probe([]int{port})

	assert.True(t, res.Alive, "an answering server is alive even when it errors")
	assert.Equal(t, http.StatusInternalServerError, res.StatusCode)
}

func TestProbe_NoServer(t *testing.T) {
	res := probe.New().Probe([]int{freePort(t)})

	assert.False(t, res.Alive)
	assert.Equal(t, "no server detected", res.Error)
}

func TestProbe_SkipsClosedPorts(t *testing.T) {
	open := serverPort(t, http.StatusOK)

	res := probe.New().Probe([]int{freePort(t), open})

	assert.True(t, res.Alive)
	assert.Equal(t, open, res.Port)
}
