// Diff command reports how the working chain differs from the baseline.
package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"
)

func newDiffCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "diff",
		Short: "List records whose presence or links changed since the last commit",
		Long: `Diff prints every record in the working chain that is new or whose prev or
next neighbor differs from the committed baseline, in chain order. Text output
also lists baseline records that are no longer in the chain.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := a.openWorkspace()
			if err != nil {
				return err
			}
			defer ws.close()

			changes := ws.list.Changes()
			entries := make([]entry, 0, len(changes))
			for _, id := range ws.list.IDs() {
				if rec, ok := changes[id]; ok {
					entries = append(entries, entry{ID: id, Record: rec})
				}
			}

			var removed []string
			for id := range ws.list.Baseline() {
				if _, err := ws.list.Find(id); err != nil {
					removed = append(removed, id)
				}
			}
			slices.Sort(removed)
			a.log.Debug("diff", "changed", len(entries), "removed", len(removed))

			out := cmd.OutOrStdout()
			if err := writeEntries(out, format, entries); err != nil {
				return err
			}
			if format == formatText {
				for _, id := range removed {
					fmt.Fprintf(out, "%s removed\n", id)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", formatText, "output format: text, json or yaml")
	return cmd
}
