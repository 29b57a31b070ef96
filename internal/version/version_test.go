package version

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

// TestVersionStrings ensures the rendered strings carry the version.
func TestVersionStrings(t *testing.T) {
	t.Parallel()

	require.NotEmpty(t, Short())
	require.Contains(t, Full(), Short())
	require.Equal(t, "catpoint-server/"+Version+" ("+Commit+")", UserAgent("catpoint-server"))
	require.Len(t, LogFields(), 6)
}

// TestVersionCommand runs the subcommand in both output modes.
func TestVersionCommand(t *testing.T) {
	t.Parallel()

	run := func(args ...string) string {
		root := &cobra.Command{Use: "catpoint-ctl"}
		AttachCobraVersionCommand(root)

		var out bytes.Buffer

		root.SetOut(&out)
		root.SetArgs(args)
		require.NoError(t, root.Execute())

		return out.String()
	}

	require.Equal(t, "catpoint-ctl "+Full()+"\n", run("version"))
	require.Equal(t, Short()+"\n", run("version", "--short"))
}
