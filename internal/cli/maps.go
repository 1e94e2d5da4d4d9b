package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/4TheSolutions/nest/pkg/storage"
)

// mapsCommand creates the document management command.
func (c *CLI) mapsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "maps",
		Short: "Manage stored mind maps",
	}

	cmd.AddCommand(c.mapsListCommand())
	cmd.AddCommand(c.mapsDeleteCommand())
	cmd.AddCommand(c.mapsClearCommand())

	return cmd
}

// mapsListCommand creates the "maps list" subcommand.
func (c *CLI) mapsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored maps",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			store, err := c.openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			infos, err := store.List(ctx)
			if err != nil {
				return fmt.Errorf("list maps: %w", err)
			}
			if len(infos) == 0 {
				printInfo("No maps stored")
				return nil
			}
			for _, info := range infos {
				printKeyValue(info.Name, fmt.Sprintf("%d nodes, updated %s", info.Nodes, formatRelativeTime(info.UpdatedAt)))
			}
			return nil
		},
	}
}

// mapsDeleteCommand creates the "maps delete" subcommand.
func (c *CLI) mapsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a stored map",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			name := args[0]
			if err := storage.ValidateName(name); err != nil {
				return err
			}

			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			store, err := c.openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Delete(ctx, name); err != nil {
				return fmt.Errorf("delete %q: %w", name, err)
			}
			printSuccess("Deleted %q", name)
			return nil
		},
	}
}

// mapsClearCommand creates the "maps clear" subcommand.
func (c *CLI) mapsClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all stored maps",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			store, err := c.openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			infos, err := store.List(ctx)
			if err != nil {
				return fmt.Errorf("list maps: %w", err)
			}
			if len(infos) == 0 {
				printInfo("No maps stored")
				return nil
			}

			count := 0
			for _, info := range infos {
				if err := store.Delete(ctx, info.Name); err != nil {
					printWarning("Could not delete %q: %v", info.Name, err)
					continue
				}
				count++
			}
			printSuccess("Deleted %d maps", count)
			return nil
		},
	}
}

func formatRelativeTime(t time.Time) string {
	diff := time.Since(t)

	switch {
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	default:
		return t.Format("Jan 2, 2006")
	}
}
