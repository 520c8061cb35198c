// Import command loads a chain from a JSON snapshot file.
package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/strand/pkg/chain"
	"github.com/mesh-intelligence/strand/pkg/types"
)

func newImportCmd(a *app) *cobra.Command {
	var head string

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the working chain and baseline with a JSON snapshot",
		Long: `Import reads a JSON object mapping identities to records, each carrying
"prev" and "next" neighbor identities, and rebuilds the chain from the head.
Without --head the head is the single record whose prev is null. The result
becomes both the working chain and the baseline.

Example:
  strand import chain.json
  strand import chain.json --head intro`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := readSnapshotFile(args[0])
			if err != nil {
				return userError(err)
			}
			if head == "" {
				if head, err = chain.InferHead(records); err != nil {
					return userError(fmt.Errorf("import %s: %w", args[0], err))
				}
			}

			list := chain.New[string]()
			if err := list.Import(records, head); err != nil {
				return userError(fmt.Errorf("import %s: %w", args[0], err))
			}
			if skipped := len(records) - list.Len(); skipped > 0 {
				a.log.Warn("records not reachable from head", "head", head, "skipped", skipped)
			}

			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			snap := list.Export()
			for _, name := range []string{types.SnapshotWork, types.SnapshotBase} {
				if err := store.Save(name, snap); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d record(s) from %s\n", list.Len(), args[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&head, "head", "", "identity of the first record (default: inferred)")
	return cmd
}

func readSnapshotFile(path string) (map[string]chain.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var records map[string]chain.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	for id, rec := range records {
		if rec == nil {
			rec = chain.Record{}
			records[id] = rec
		}
		for _, key := range []string{"prev", "next"} {
			rec[key] = types.LinkID(rec[key])
		}
	}
	return records, nil
}
