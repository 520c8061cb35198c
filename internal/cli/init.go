// Init command for the strand CLI.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/strand/pkg/chain"
	"github.com/mesh-intelligence/strand/pkg/types"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize strand storage",
		Long: `Init creates the config and data directories and an empty working chain
and baseline. Existing snapshots are left untouched.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			for _, name := range []string{types.SnapshotWork, types.SnapshotBase} {
				created, err := ensureSnapshot(store, name)
				if err != nil {
					return err
				}
				if created {
					a.log.Info("created snapshot", "snapshot", name)
				}
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Strand initialized successfully")
			fmt.Fprintln(out, "  config: ", a.configDir)
			fmt.Fprintln(out, "  data:   ", a.dataDir)
			fmt.Fprintln(out, "  backend:", a.cfg.GetString(cfgKeyBackend))
			return nil
		},
	}
}

// ensureSnapshot saves an empty snapshot under name unless one exists.
func ensureSnapshot(store types.SnapshotStore, name string) (bool, error) {
	names, err := store.Names()
	if err != nil {
		return false, err
	}
	for _, n := range names {
		if n == name {
			return false, nil
		}
	}
	empty := chain.Snapshot[string]{Records: map[string]chain.Record{}}
	if err := store.Save(name, empty); err != nil {
		return false, fmt.Errorf("init %s: %w", name, err)
	}
	return true, nil
}
