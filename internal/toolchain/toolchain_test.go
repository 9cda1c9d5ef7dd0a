package toolchain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSatisfies_WithinRange(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Install("AC6", "6.18.1"))
	assert.True(t, r.Satisfies("ac6", ">=6.16.0 <7.0.0"))
}

func TestSatisfies_OutOfRange(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Install("GCC", "10.3.1"))
	assert.False(t, r.Satisfies("GCC", ">=12.0.0"))
}

func TestSatisfies_UnknownFamily(t *testing.T) {
	r := NewRegistry()
	assert.False(t, r.Satisfies("IAR", ">=1.0.0"))
}

func TestInstall_LenientTwoComponentVersion(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Install("AC6", "6.16"))
	v, ok := r.Version("AC6")
	require.True(t, ok)
	assert.Equal(t, uint64(6), v.Major)
	assert.Equal(t, uint64(16), v.Minor)
}
