package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateETag(t *testing.T) {
	payload := map[string]int{"a": 1, "b": 2}

	first, err := GenerateETag(payload)
	require.NoError(t, err)
	second, err := GenerateETag(payload)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Len(t, first, 64)

	other, err := GenerateETag(map[string]int{"a": 2})
	require.NoError(t, err)
	assert.NotEqual(t, first, other)
}

func TestMinFloat(t *testing.T) {
	assert.Equal(t, 1.5, MinFloat(1.5, 2.0))
	assert.Equal(t, -3.0, MinFloat(-3.0, -1.0))
}

func TestRoundFloat(t *testing.T) {
	assert.Equal(t, 1.23, RoundFloat(1.2312, 2))
	assert.Equal(t, 1.24, RoundFloat(1.2399, 2))
}
