package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/4TheSolutions/nest/pkg/mindmap"
	"github.com/4TheSolutions/nest/pkg/storage"
)

// saveTimeout bounds one document write from the commit hook.
const saveTimeout = 5 * time.Second

// editCommand creates the interactive editor command.
func (c *CLI) editCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "edit [name]",
		Short: "Edit a mind map in the terminal",
		Long: `Edit opens a mind map in a full-screen terminal editor. The named map is
loaded from the configured backend, or created empty if it does not exist
yet. Every completed mutation is saved back immediately.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runEdit(cmd.Context(), mapName(args))
		},
	}
}

func (c *CLI) runEdit(ctx context.Context, name string) error {
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

	doc, err := store.Load(ctx, name)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		doc = storage.NewDocument(name)
	case err != nil:
		return fmt.Errorf("load %q: %w", name, err)
	}

	m := mindmap.New()
	m.Restore(doc.Map)

	save := &saveState{}
	m.SetHooks(mindmap.Hooks{
		Commit: func(snap mindmap.Snapshot) {
			doc.Map = snap
			sctx, cancel := context.WithTimeout(ctx, saveTimeout)
			defer cancel()
			save.commits++
			save.err = store.Save(sctx, doc)
		},
	})

	p := tea.NewProgram(newEditorModel(name, m, save),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run editor: %w", err)
	}

	if save.err != nil {
		return fmt.Errorf("save %q: %w", name, save.err)
	}
	if save.commits == 0 {
		printInfo("No changes to %q", name)
		return nil
	}
	printSuccess("Saved %q (%d nodes)", name, m.Len())
	return nil
}
