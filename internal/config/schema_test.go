package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePackageFilter_AcceptsWellFormedFilter(t *testing.T) {
	filter, err := ValidatePackageFilter([]byte(`{"use_all_packs": false, "selected_packs": ["ARM::CMSIS@*"], "latest_packs": true}`))
	require.NoError(t, err)
	require.NotNil(t, filter)
	assert.False(t, filter.UseAllPacks)
	assert.Equal(t, []string{"ARM::CMSIS@*"}, filter.SelectedPacks)
	assert.True(t, filter.LatestPacks)
}

func TestValidatePackageFilter_RejectsWrongType(t *testing.T) {
	_, err := ValidatePackageFilter([]byte(`{"use_all_packs": "yes"}`))
	assert.Error(t, err)
}

func TestValidatePackageFilter_RejectsInvalidJSON(t *testing.T) {
	_, err := ValidatePackageFilter([]byte(`{not json`))
	assert.Error(t, err)
}
