package telemetry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_EnsureConnected_returns_immediately_when_associated(t *testing.T) {
	// Arrange
	calls := 0
	link := NewLinkManager("wlan0", 50*time.Millisecond, "", nil)
	link.linkUp = func(string) (bool, error) {
		calls++
		return true, nil
	}

	// Act
	err := link.EnsureConnected(context.Background())

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func Test_EnsureConnected_polls_until_associated(t *testing.T) {
	// Arrange
	calls := 0
	link := NewLinkManager("wlan0", 1*time.Second, "", nil)
	link.pollInterval = 1 * time.Millisecond
	link.linkUp = func(string) (bool, error) {
		calls++
		return calls >= 3, nil
	}

	// Act
	err := link.EnsureConnected(context.Background())

	// Assert
	require.NoError(t, err)
	assert.GreaterOrEqual(t, calls, 3)
}

func Test_EnsureConnected_fails_after_the_timeout(t *testing.T) {
	// Arrange
	link := NewLinkManager("wlan0", 5*time.Millisecond, "", nil)
	link.pollInterval = 1 * time.Millisecond
	link.linkUp = func(string) (bool, error) {
		return false, nil
	}

	// Act
	err := link.EnsureConnected(context.Background())

	// Assert
	assert.Error(t, err)
}

func Test_SelfTest_passes_when_all_probes_answer(t *testing.T) {
	// Arrange
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	link := NewLinkManager("wlan0", time.Second, "", []string{server.URL, server.URL})

	// Act
	err := link.SelfTest(context.Background())

	// Assert
	assert.NoError(t, err)
}

func Test_SelfTest_reports_unreachable_probes(t *testing.T) {
	// Arrange
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	server.Close()

	link := NewLinkManager("wlan0", time.Second, "", []string{server.URL})

	// Act
	err := link.SelfTest(context.Background())

	// Assert
	assert.Error(t, err)
}
