package tapecmp

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateMask(t *testing.T) {
	m := DateMask()
	for _, test := range []struct{ in, out string }{
		{"run date: 01/02/23\n", "run date: XX/XX/XX\n"},
		{"01/02/23 and 11/12/99", "XX/XX/XX and XX/XX/XX"},
		{"1/2/23\n", "1/2/23\n"},
		{"2023/01/02\n", "20XX/XX/XX\n"},
		{"no date\n", "no date\n"},
	} {
		res, err := m.Apply(test.in)
		require.NoError(t, err)
		assert.Equal(t, test.out, res)
	}
}

func TestNormalize(t *testing.T) {
	user, err := NewMask(`(?<=time )\d+\.\d+s`, "Ts")
	require.NoError(t, err)
	lines := []string{"date 01/02/23 time 1.25s\n", "x 1.0\n"}
	res, err := Normalize(lines, DateMask(), user)
	require.NoError(t, err)
	if diff := cmp.Diff([]string{"date XX/XX/XX time Ts\n", "x 1.0\n"}, res); diff != "" {
		t.Error(diff)
	}
	assert.Equal(t, "date 01/02/23 time 1.25s\n", lines[0], "input modified")
}

func TestMask_groups(t *testing.T) {
	m, err := NewMask(`v(\d)\.\d+`, "v$1.x")
	require.NoError(t, err)
	res, err := m.Apply("version v2.17\n")
	require.NoError(t, err)
	assert.Equal(t, "version v2.x\n", res)
}

func TestMask_uncompiled(t *testing.T) {
	m := &Mask{Pattern: `\d{2}:\d{2}`, Replace: "hh:mm"}
	res, err := m.Apply("at 12:30\n")
	require.NoError(t, err)
	assert.Equal(t, "at hh:mm\n", res)
}

func TestNewMask_invalid(t *testing.T) {
	_, err := NewMask(`(unclosed`, "")
	assert.Error(t, err)
}
