// SPDX-FileCopyrightText: 2023 Martin Berlin
//
// SPDX-License-Identifier: MIT

package pinsim_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pca9535 "github.com/martinberlin/wokwi-pca9535"
	"github.com/martinberlin/wokwi-pca9535/pinsim"
)

func checkLevel(t *testing.T, c *pinsim.Circuit, name string, xv int) {
	t.Helper()
	v, err := c.Level(name)
	assert.Nil(t, err)
	assert.Equal(t, xv, v)
}

func TestPinAllocation(t *testing.T) {
	c := pinsim.New()

	p, err := c.Pin("X1", pca9535.ModeInput)
	require.Nil(t, err)
	require.NotNil(t, p)

	// duplicate name
	bp, err := c.Pin("X1", pca9535.ModeInput)
	assert.NotNil(t, err)
	assert.Nil(t, bp)

	// unknown names
	_, err = c.Level("X2")
	assert.NotNil(t, err)
	_, err = c.Mode("X2")
	assert.NotNil(t, err)
	assert.NotNil(t, c.SetPull("X2", pca9535.LevelHigh))
	assert.NotNil(t, c.Release("X2"))
	assert.NotNil(t, c.Toggle("X2"))
}

func TestLevelResolution(t *testing.T) {
	c := pinsim.New()
	p, err := c.Pin("X1", pca9535.ModeInput)
	require.Nil(t, err)

	// floating high-impedance input reads low
	checkLevel(t, c, "X1", pca9535.LevelLow)

	// floating pull-up reads high
	p.SetMode(pca9535.ModeInputPullup)
	checkLevel(t, c, "X1", pca9535.LevelHigh)

	// external drive overrides the pull-up
	require.Nil(t, c.Pulldown("X1"))
	checkLevel(t, c, "X1", pca9535.LevelLow)
	require.Nil(t, c.Pullup("X1"))
	checkLevel(t, c, "X1", pca9535.LevelHigh)

	// a device driving low wins over any external drive
	p.SetMode(pca9535.ModeOutputLow)
	checkLevel(t, c, "X1", pca9535.LevelLow)
	low, err := c.DrivenLow("X1")
	assert.Nil(t, err)
	assert.True(t, low)

	// releasing the external drive returns the pin to its pull
	p.SetMode(pca9535.ModeInputPullup)
	checkLevel(t, c, "X1", pca9535.LevelHigh)
	require.Nil(t, c.Pulldown("X1"))
	require.Nil(t, c.Release("X1"))
	checkLevel(t, c, "X1", pca9535.LevelHigh)
}

func TestToggle(t *testing.T) {
	c := pinsim.New()
	_, err := c.Pin("X1", pca9535.ModeInputPullup)
	require.Nil(t, err)

	checkLevel(t, c, "X1", pca9535.LevelHigh)
	require.Nil(t, c.Toggle("X1"))
	checkLevel(t, c, "X1", pca9535.LevelLow)
	require.Nil(t, c.Toggle("X1"))
	checkLevel(t, c, "X1", pca9535.LevelHigh)
}

func TestWatch(t *testing.T) {
	c := pinsim.New()
	p, err := c.Pin("X1", pca9535.ModeInputPullup)
	require.Nil(t, err)

	var levels []int
	p.Watch(func(level int) { levels = append(levels, level) })

	// no change, no notification
	require.Nil(t, c.Pullup("X1"))
	assert.Empty(t, levels)

	// dispatch is in-line and in stimulus order
	require.Nil(t, c.Pulldown("X1"))
	require.Nil(t, c.Pullup("X1"))
	assert.Equal(t, []int{pca9535.LevelLow, pca9535.LevelHigh}, levels)

	// mode changes notify too
	p.SetMode(pca9535.ModeOutputLow)
	assert.Equal(t, pca9535.LevelLow, p.Level())
	assert.Equal(t, []int{pca9535.LevelLow, pca9535.LevelHigh, pca9535.LevelLow}, levels)

	// unwatch stops notifications
	p.Unwatch()
	p.SetMode(pca9535.ModeInputPullup)
	require.Nil(t, c.Pulldown("X1"))
	require.Nil(t, c.Pullup("X1"))
	assert.Equal(t, 3, len(levels))
}
