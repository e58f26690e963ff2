package models

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectDataMarshalROI(t *testing.T) {
	data, err := json.Marshal(ProjectData{Name: "Curista", ROI: 42.5})
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, 42.5, decoded["roi"])
}

func TestProjectDataMarshalInfiniteROI(t *testing.T) {
	// A project with revenue and no expenses has no finite ROI; it must
	// still serialize.
	data, err := json.Marshal(ProjectData{Name: "Curista", Revenue: 100, ROI: math.Inf(1)})
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Nil(t, decoded["roi"])
	assert.Equal(t, "Curista", decoded["name"])
}

func TestTransactionOmitsEmptyProject(t *testing.T) {
	data, err := json.Marshal(Transaction{ID: 1, Date: "2025-01-05"})
	require.NoError(t, err)
	assert.NotContains(t, string(data), "project")
}
