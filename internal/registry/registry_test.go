package registry

import (
	"errors"
	"image"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/reclaim/launchers/internal/platform"
	"github.com/reclaim/launchers/internal/platform/platformtest"
)

func TestResolveIsIdempotent(t *testing.T) {
	r := New(platformtest.New())
	p := platformtest.NewProgram("Editor")

	first, ok := r.Resolve(p)
	require.True(t, ok)
	require.Equal(t, ID(1), first.ID())

	for i := 0; i < 5; i++ {
		again, ok := r.Resolve(p)
		require.True(t, ok)
		require.Same(t, first, again)
		require.Equal(t, first.ID(), again.ID())
	}

	other, ok := r.Resolve(platformtest.NewProgram("Editor"))
	require.True(t, ok)
	require.Equal(t, ID(2), other.ID(), "identity is by program, not by name")
}

func TestResolveSkipsInvalidPrograms(t *testing.T) {
	r := New(platformtest.New())

	_, ok := r.Resolve(platformtest.NewProgram(""))
	require.False(t, ok)
	_, ok = r.Resolve(nil)
	require.False(t, ok)
	require.Zero(t, r.Len())

	d, ok := r.Resolve(platformtest.NewProgram("Viewer"))
	require.True(t, ok)
	require.Equal(t, ID(1), d.ID(), "skipped programs must not consume ids")
}

func TestLookup(t *testing.T) {
	r := New(platformtest.New())
	d, _ := r.Resolve(platformtest.NewProgram("Editor"))

	got, err := r.Lookup(d.ID())
	require.NoError(t, err)
	require.Same(t, d, got)

	_, err = r.Lookup(42)
	require.ErrorIs(t, err, ErrUnknownID)
}

func TestIconResolvedOnce(t *testing.T) {
	r := New(platformtest.New())
	withIcon := platformtest.NewProgram("Editor")
	noIcon := &platformtest.Program{Label: "Plain"}

	d, _ := r.Resolve(withIcon)
	img := r.Icon(d)
	require.NotNil(t, img)
	require.Same(t, img, r.Icon(d))
	require.Equal(t, 1, withIcon.IconCalls())

	d, _ = r.Resolve(noIcon)
	require.Nil(t, r.Icon(d))
	require.Nil(t, r.Icon(d))
	require.Equal(t, 1, noIcon.IconCalls(), "absent icons are not fetched again")
}

func TestIconConversionFailureIsAbsent(t *testing.T) {
	calls := 0
	r := New(platformtest.New(), WithConverter(func(*platform.Image) (image.Image, error) {
		calls++
		return nil, errors.New("bad icon")
	}))
	d, _ := r.Resolve(platformtest.NewProgram("Editor"))

	require.Nil(t, r.Icon(d))
	require.Nil(t, r.Icon(d))
	require.Equal(t, 1, calls)
}

func TestHashIsStable(t *testing.T) {
	r := New(platformtest.New())
	p := platformtest.NewProgram("Editor")
	d, _ := r.Resolve(p)

	h := r.Hash(d)
	require.Equal(t, h, r.Hash(d))
	again, _ := r.Resolve(p)
	require.Equal(t, h, r.Hash(again))
}
