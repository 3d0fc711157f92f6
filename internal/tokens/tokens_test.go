package tokens

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapTo_PicksNearestMember(t *testing.T) {
	options := []float64{0, 4, 8, 12, 16, 24, 32}
	for _, v := range []float64{-3, 0, 1, 5, 9.9, 13, 17, 23, 100} {
		got := SnapTo(v, options)
		assert.Contains(t, options, got)
		for _, o := range options {
			assert.LessOrEqual(t, math.Abs(got-v), math.Abs(o-v), "value %v snapped to %v but %v is closer", v, got, o)
		}
	}
}

func TestSnapTo_TiePrefersSmaller(t *testing.T) {
	assert.Equal(t, 16.0, SnapTo(20, []float64{16, 24}))
	assert.Equal(t, 16.0, SnapTo(20, []float64{24, 16}))
	assert.Equal(t, 4.0, SnapTo(6, []float64{8, 4}))
}

func TestSnapTo_EmptyIsIdentity(t *testing.T) {
	assert.Equal(t, 13.5, SnapTo(13.5, nil))
}

func TestDefault_Categories(t *testing.T) {
	tbl := Default()
	assert.Equal(t, 16.0, tbl.Snap(20, ItemSpacing))
	assert.Equal(t, 64.0, tbl.Snap(70, SectionPadding))
	assert.Equal(t, 12.0, tbl.Snap(11, Radius))
	assert.Equal(t, 48.0, tbl.Snap(60, FontSize))
	assert.Equal(t, 20.0, Snap(19, Spacing))
}

func TestTable_ReverseLookups(t *testing.T) {
	tbl := Default()
	assert.Equal(t, "lg", tbl.RadiusKey(13))
	assert.Equal(t, "none", tbl.RadiusKey(1))
	assert.Equal(t, "h2", tbl.TypographyKey(35))
	assert.Equal(t, "small", tbl.TypographyKey(13))

	assert.Equal(t, "Bold", tbl.TypographyFor("h1").FontStyle)
	assert.Equal(t, 16.0, tbl.TypographyFor("unknown").FontSize)

	g, ok := tbl.GridFor("mobile")
	require.True(t, ok)
	assert.Equal(t, 390.0, g.Viewport)
	_, ok = tbl.GridFor("watch")
	assert.False(t, ok)
}

func TestLoad_RejectsEmptyCategory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"spacing":[],"sectionPadding":[1],"itemSpacing":[1],"radii":{"a":1},"typography":{"body":{"fontSize":16}}}`), 0644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "spacing")
}

func TestLoad_EmptyPathIsDefault(t *testing.T) {
	tbl, err := Load("")
	require.NoError(t, err)
	assert.Same(t, Default(), tbl)
	assert.NotEmpty(t, tbl.JSON())
}
