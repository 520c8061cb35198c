// Mv command relocates a record within the working chain.
package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var errNoPlacement = errors.New("one of --first, --before or --after is required")

func newMvCmd(a *app) *cobra.Command {
	var where placement

	cmd := &cobra.Command{
		Use:   "mv <id> (--first | --before <id> | --after <id>)",
		Short: "Move a record to a new position",
		Long: `Mv unlinks a record and reinserts it at the given position, keeping its
identity and fields.

Example:
  strand mv docs --first
  strand mv review --before docs`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			if !where.first && where.anchor() == "" {
				return userError(errNoPlacement)
			}
			if where.anchor() == id {
				return userError(fmt.Errorf("cannot move %s relative to itself", id))
			}

			ws, err := a.openWorkspace()
			if err != nil {
				return err
			}
			defer ws.close()

			if anchor := where.anchor(); anchor != "" {
				if _, err := ws.list.Find(anchor); err != nil {
					return lookupError(err)
				}
			}
			removed, err := ws.list.Delete(id)
			if err != nil {
				return lookupError(err)
			}
			if _, err := where.insert(ws.list, withIdentity(removed.Payload(), id)); err != nil {
				return fmt.Errorf("reinsert %s: %w", id, err)
			}
			if err := ws.save(); err != nil {
				return err
			}

			a.log.Info("moved record", "id", id)
			fmt.Fprintf(cmd.OutOrStdout(), "Moved %s\n", id)
			return nil
		},
	}

	where.register(cmd)
	return cmd
}
