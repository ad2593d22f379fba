package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/veandco/go-sdl2/sdl"
)

func TestCleanupReleasesInReverse(t *testing.T) {
	app := &ChainDemo{}

	var order []string
	for _, name := range []string{"window", "instance", "surface", "device"} {
		name := name
		app.onCleanup(func() { order = append(order, name) })
	}

	app.cleanup()
	require.Equal(t, []string{"device", "surface", "instance", "window"}, order)
	assert.Empty(t, app.release)

	app.cleanup()
	assert.Len(t, order, 4)
}

func TestHandleEvent(t *testing.T) {
	app := &ChainDemo{rendering: true}

	quit, err := app.handleEvent(&sdl.WindowEvent{Event: sdl.WINDOWEVENT_MINIMIZED})
	require.NoError(t, err)
	assert.False(t, quit)
	assert.False(t, app.rendering)

	quit, err = app.handleEvent(&sdl.KeyboardEvent{})
	require.NoError(t, err)
	assert.False(t, quit)

	quit, err = app.handleEvent(&sdl.QuitEvent{})
	require.NoError(t, err)
	assert.True(t, quit)
}
