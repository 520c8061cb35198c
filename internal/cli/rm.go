// Rm command removes records from the working chain.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRmCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id> [id ...]",
		Short: "Remove records from the working chain",
		Long: `Rm unlinks each named record and joins its neighbors. Nothing is saved
unless every identity is found.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := a.openWorkspace()
			if err != nil {
				return err
			}
			defer ws.close()

			for _, id := range args {
				if _, err := ws.list.Delete(id); err != nil {
					return lookupError(err)
				}
				a.log.Info("removed record", "id", id)
			}
			if err := ws.save(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d record(s)\n", len(args))
			return nil
		},
	}
}
