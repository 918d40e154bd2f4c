package services

import (
	"net"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindAvailablePort_SkipsBusyPort(t *testing.T) {
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer busy.Close()
	port := busy.Addr().(*net.TCPAddr).Port

	got, err := FindAvailablePort("127.0.0.1", port, port+20)

	require.NoError(t, err)
	assert.NotEqual(t, port, got)
	assert.Greater(t, got, port)

	l, err := net.Listen("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(got)))
	require.NoError(t, err)
	l.Close()
}

func TestFindAvailablePort_NoneFree(t *testing.T) {
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer busy.Close()
	port := busy.Addr().(*net.TCPAddr).Port

	_, err = FindAvailablePort("127.0.0.1", port, port)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), strconv.Itoa(port))
}
