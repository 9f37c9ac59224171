package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDemoCmd(t *testing.T) {
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"demo", "--rounds", "3", "-c", writeFile(t, "local:\n  contexts: 2\nlog:\n  level: error\n")})
	cmd.SetContext(t.Context())

	require.NoError(t, cmd.Execute())

	s := out.String()
	require.Contains(t, s, "round 1: ")
	require.Contains(t, s, "total=1\n")
	require.Contains(t, s, "total=2\n")
	require.Contains(t, s, "round 3: ")
	require.Contains(t, s, "total=3\n")
	require.Contains(t, s, "ctx-0 round 3")
	require.Contains(t, s, "ctx-1 round 3")
}
