// Show command prints the working chain in order.
package cli

import (
	"github.com/spf13/cobra"
)

func newShowCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the working chain head to tail",
		Long: `Show walks the working chain from the head and prints each record with its
neighbors. Text output is one record per line; json and yaml print an
ordered list of {id, record} entries.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := a.openWorkspace()
			if err != nil {
				return err
			}
			defer ws.close()

			list := ws.list
			entries := make([]entry, 0, list.Len())
			for list.Rewind(); list.Valid(); list.Advance() {
				n, _ := list.Current()
				entries = append(entries, nodeEntry(n))
			}
			return writeEntries(cmd.OutOrStdout(), format, entries)
		},
	}

	cmd.Flags().StringVar(&format, "format", formatText, "output format: text, json or yaml")
	return cmd
}
