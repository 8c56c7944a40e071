package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilderCarriesMetadata(t *testing.T) {
	t.Parallel()

	base := NewStd("device gone")
	err := New(base).
		Component("capture").
		Category(CategoryDevice).
		Context("device_index", 2).
		Build()

	assert.Equal(t, "device gone", err.Error())
	assert.Equal(t, "capture", err.Component)
	assert.Equal(t, CategoryDevice, err.Category)
	assert.Equal(t, 2, err.GetContext()["device_index"])
	assert.ErrorIs(t, err, base)
	assert.False(t, err.Timestamp.IsZero())
}

func TestBuilderDefaults(t *testing.T) {
	t.Parallel()

	err := New(nil).Build()
	assert.Equal(t, ComponentUnknown, err.Component)
	assert.Equal(t, CategoryGeneric, err.Category)
	assert.Equal(t, "generic error", err.Error())
	assert.Nil(t, err.GetContext())
}

func TestEnhancedErrorMatchesByCategory(t *testing.T) {
	t.Parallel()

	a := Newf("first").Category(CategoryState).Build()
	b := Newf("second").Category(CategoryState).Build()
	c := Newf("third").Category(CategoryDevice).Build()

	assert.ErrorIs(t, a, b)
	assert.NotErrorIs(t, a, c)
}

func TestAsRecoversEnhancedError(t *testing.T) {
	t.Parallel()

	built := Newf("probe failed: %s", "bad header").
		Component("sound").
		Category(CategoryFileIO).
		Build()

	var ee *EnhancedError
	require.True(t, As(built, &ee))
	assert.Equal(t, "sound", ee.Component)
}

func TestGetContextReturnsCopy(t *testing.T) {
	t.Parallel()

	err := Newf("x").Context("k", "v").Build()
	ctx := err.GetContext()
	ctx["k"] = "mutated"
	assert.Equal(t, "v", err.GetContext()["k"])
}
