// Add command inserts a record into the working chain.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/strand/pkg/chain"
)

// placement says where a new or moved record goes.
type placement struct {
	first  bool
	before string
	after  string
}

func (p *placement) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&p.first, "first", false, "insert at the head")
	cmd.Flags().StringVar(&p.before, "before", "", "insert before the record with this identity")
	cmd.Flags().StringVar(&p.after, "after", "", "insert after the record with this identity")
	cmd.MarkFlagsMutuallyExclusive("first", "before", "after")
}

// insert places payload in list. Without a placement flag it appends.
func (p *placement) insert(list *chain.List[string], payload chain.Record) (chain.Node[string], error) {
	switch {
	case p.first:
		return list.InsertFirst(payload)
	case p.before != "":
		return list.InsertBefore(payload, p.before)
	case p.after != "":
		return list.InsertAfter(payload, p.after)
	default:
		return list.InsertLast(payload)
	}
}

// anchor returns the identity named by --before or --after.
func (p *placement) anchor() string {
	if p.before != "" {
		return p.before
	}
	return p.after
}

func newAddCmd(a *app) *cobra.Command {
	var (
		id    string
		where placement
	)

	cmd := &cobra.Command{
		Use:   "add [field=value ...]",
		Short: "Add a record to the working chain",
		Long: `Add creates a record from key=value fields and links it into the working
chain. Values that parse as JSON keep their type; anything else is stored as
a string. Without --id the record gets a new UUID v7 identity.

Example:
  strand add title="Write docs" --id docs
  strand add title=Review priority=2 --after docs
  strand add title=Start --first`,
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := parseFields(args)
			if err != nil {
				return userError(err)
			}
			if id == "" {
				id = newID()
			}
			payload["_id"] = id

			ws, err := a.openWorkspace()
			if err != nil {
				return err
			}
			defer ws.close()

			n, err := where.insert(ws.list, payload)
			if err != nil {
				return userError(fmt.Errorf("add %s: %w", id, err))
			}
			if err := ws.save(); err != nil {
				return err
			}

			a.log.Info("added record", "id", n.ID(), "position", ws.list.Len())
			fmt.Fprintln(cmd.OutOrStdout(), n.ID())
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "identity for the new record (default: generated UUID v7)")
	where.register(cmd)
	return cmd
}
