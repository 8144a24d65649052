package regdb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPHYParamsFromIDFindsKnownMode(t *testing.T) {
	p, ok := PHYParamsFromID(0x03)

	require.True(t, ok)
	assert.Equal(t, Modulation2FSK, p.Modulation)
	assert.Equal(t, 100000, p.DatarateBps)
}

func TestPHYParamsFromIDMissesUnknownMode(t *testing.T) {
	_, ok := PHYParamsFromID(0xff)
	assert.False(t, ok)
}

func TestChanParamsByOpClassFindsKnownRow(t *testing.T) {
	c, ok := ChanParamsByOpClass("NA", 1)

	require.True(t, ok)
	assert.Equal(t, 902200000, c.Chan0FreqHz)
	assert.Equal(t, 200000, c.ChanSpacingHz)
}

func TestChanParamsByOpClassRejectsZeroClass(t *testing.T) {
	_, ok := ChanParamsByOpClass("NA", 0)
	assert.False(t, ok)
}

func TestChanParamsByPlanIDFindsKnownRow(t *testing.T) {
	c, ok := ChanParamsByPlanID("NA", 4)

	require.True(t, ok)
	assert.Equal(t, 800000, c.ChanSpacingHz)
}

func TestChanParamsResolvePrefersPlanIDOverOpClass(t *testing.T) {
	c, ok := ChanParamsResolve("NA", 5, 1)

	require.True(t, ok)
	assert.Equal(t, 1200000, c.ChanSpacingHz, "plan ID 5 should win over op class 1")
}

func TestChanParamsResolveFallsBackToOpClass(t *testing.T) {
	c, ok := ChanParamsResolve("NA", 0, 2)

	require.True(t, ok)
	assert.Equal(t, 400000, c.ChanSpacingHz)
}

func TestChanParamsResolveMissesUnknownDomain(t *testing.T) {
	_, ok := ChanParamsResolve("ZZ", 1, 1)
	assert.False(t, ok)
}

func TestChanSpacingIDMapsKnownValues(t *testing.T) {
	assert.Equal(t, 1, ChanSpacingID(200000))
	assert.Equal(t, 6, ChanSpacingID(1200000))
}

func TestChanSpacingIDReturnsUndefForUnknownValue(t *testing.T) {
	assert.Equal(t, ChanSpacingUndef, ChanSpacingID(999))
}

func TestIsStdTrueForListedPHYMode(t *testing.T) {
	assert.True(t, IsStd("NA", 0x02))
}

func TestIsStdFalseForUnlistedPHYMode(t *testing.T) {
	assert.False(t, IsStd("NA", 0x99))
}

func TestCheckPHYChanCompatTrueWhenListed(t *testing.T) {
	phy, ok := PHYParamsFromID(0x02)
	require.True(t, ok)
	c, ok := ChanParamsByOpClass("NA", 1)
	require.True(t, ok)

	assert.True(t, CheckPHYChanCompat(phy, c))
}

func TestCheckPHYChanCompatFalseWhenNotListed(t *testing.T) {
	phy, ok := PHYParamsFromID(0x44)
	require.True(t, ok)
	c, ok := ChanParamsByOpClass("NA", 1)
	require.True(t, ok)

	assert.False(t, CheckPHYChanCompat(phy, c))
}
