package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHealthCheck(t *testing.T) {
	h := NewTestHelper(t)

	var result map[string]interface{}
	status := h.GetJSON(t, "/health", &result)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "healthy", result["status"])
	assert.Equal(t, "soundbox", result["service"])
	assert.Equal(t, Version, result["version"])
	assert.Equal(t, h.AudiosDir, result["library"])
	assert.Equal(t, float64(0), result["players"])
}
