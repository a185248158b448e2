package scope

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseSwitch(t *testing.T) {
	testCases := []struct {
		arg string
		val uint32
		ok  bool
	}{
		{"on", 1, true},
		{"OFF", 0, true},
		{"true", 1, true},
		{"0", 0, true},
		{"1", 1, true},
		{"maybe", 0, false},
	}
	for _, tc := range testCases {
		val, err := ParseSwitch(tc.arg)
		if !tc.ok {
			require.Error(t, err, tc.arg)
			continue
		}
		require.NoError(t, err, tc.arg)
		require.Equal(t, tc.val, val, tc.arg)
	}
}

func TestParseValue(t *testing.T) {
	val, err := ParseValue("0x80")
	require.NoError(t, err)
	require.Equal(t, uint32(128), val)
	val, err = ParseValue("962")
	require.NoError(t, err)
	require.Equal(t, uint32(962), val)
	_, err = ParseValue("-1")
	require.Error(t, err)
}

func TestCommandsRegistered(t *testing.T) {
	for _, cmd := range []string{TriggerCmd.Name, OneShotCmd.Name, FreezeCmd.Name} {
		require.NotEmpty(t, cmd)
	}
	require.Equal(t, "oneshot", OneShotCmd.Name)
	require.Equal(t, []string{"hold"}, FreezeCmd.Aliases)
}
