// Commit command makes the working chain the new baseline.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/strand/pkg/types"
)

func newCommitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "commit",
		Short: "Record the working chain as the baseline",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := a.openWorkspace()
			if err != nil {
				return err
			}
			defer ws.close()

			changed := len(ws.list.Changes())
			if err := ws.store.Save(types.SnapshotBase, ws.list.Export()); err != nil {
				return err
			}
			a.log.Info("committed", "records", ws.list.Len(), "changed", changed)
			fmt.Fprintf(cmd.OutOrStdout(), "Committed %d record(s), %d changed\n", ws.list.Len(), changed)
			return nil
		},
	}
}
