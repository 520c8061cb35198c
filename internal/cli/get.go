// Get and nth commands print single records.
package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/strand/pkg/chain"
)

func newGetCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Print the record with the given identity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.printOne(cmd, format, func(list *chain.List[string]) (chain.Node[string], error) {
				return list.Find(args[0])
			})
		},
	}

	cmd.Flags().StringVar(&format, "format", formatText, "output format: text, json or yaml")
	return cmd
}

func newNthCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "nth <position>",
		Short: "Print the record at a zero-based position",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pos, err := strconv.Atoi(args[0])
			if err != nil {
				return userError(fmt.Errorf("position %q: not an integer", args[0]))
			}
			return a.printOne(cmd, format, func(list *chain.List[string]) (chain.Node[string], error) {
				return list.FindNth(pos)
			})
		},
	}

	cmd.Flags().StringVar(&format, "format", formatText, "output format: text, json or yaml")
	return cmd
}

// printOne loads the workspace, resolves a node with find and prints it.
func (a *app) printOne(cmd *cobra.Command, format string, find func(*chain.List[string]) (chain.Node[string], error)) error {
	ws, err := a.openWorkspace()
	if err != nil {
		return err
	}
	defer ws.close()

	n, err := find(ws.list)
	if err != nil {
		return lookupError(err)
	}
	return writeEntries(cmd.OutOrStdout(), format, []entry{nodeEntry(n)})
}
