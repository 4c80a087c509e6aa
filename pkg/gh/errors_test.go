package gh

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIError_Error(t *testing.T) {
	err := NewAPIError(404, map[string]interface{}{
		"message":           "Not Found",
		"documentation_url": "https://docs.github.com/rest",
	})

	expected := "{\n  \"documentation_url\": \"https://docs.github.com/rest\",\n  \"message\": \"Not Found\"\n}"
	assert.Equal(t, expected, err.Error())
	assert.Equal(t, "Not Found", err.Message)
	assert.Equal(t, "https://docs.github.com/rest", err.DocumentationURL)
	assert.Equal(t, 404, err.StatusCode)
}

func TestNewAPIError_NonStringMessage(t *testing.T) {
	err := NewAPIError(200, map[string]interface{}{"message": 12})
	assert.Equal(t, "12", err.Message)
}

func TestErrorHelpers(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		notFound     bool
		unauthorized bool
	}{
		{
			name:     "404 status",
			err:      NewAPIError(404, map[string]interface{}{"message": "gone"}),
			notFound: true,
		},
		{
			name:     "not found message on 200",
			err:      NewAPIError(200, map[string]interface{}{"message": "Not Found"}),
			notFound: true,
		},
		{
			name:         "bad credentials",
			err:          NewAPIError(401, map[string]interface{}{"message": "Bad credentials"}),
			unauthorized: true,
		},
		{
			name:     "wrapped",
			err:      fmt.Errorf("listing releases: %w", NewAPIError(404, map[string]interface{}{"message": "Not Found"})),
			notFound: true,
		},
		{
			name: "plain error",
			err:  errors.New("boom"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.notFound, IsNotFound(tt.err))
			assert.Equal(t, tt.unauthorized, IsUnauthorized(tt.err))
		})
	}
}

func TestAsAPIError(t *testing.T) {
	wrapped := fmt.Errorf("context: %w", NewAPIError(422, map[string]interface{}{"message": "Validation Failed"}))

	apiErr, ok := AsAPIError(wrapped)
	require.True(t, ok)
	assert.Equal(t, "Validation Failed", apiErr.Message)

	_, ok = AsAPIError(ErrEmptyPath)
	assert.False(t, ok)
}
