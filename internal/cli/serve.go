package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/4TheSolutions/nest/internal/server"
	"github.com/4TheSolutions/nest/pkg/storage"
)

// serveCommand creates the HTTP API command.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve [name]",
		Short: "Serve a mind map over HTTP",
		Long: `Serve exposes the named map through a JSON API with the same operations
as the terminal editor, plus a websocket that streams the draw scene after
every change. Mutations are saved to the configured backend immediately.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), mapName(args), addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}

func (c *CLI) runServe(ctx context.Context, name, addr string) error {
	if err := storage.ValidateName(name); err != nil {
		return err
	}

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if addr == "" {
		addr = cfg.Server.Addr
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

	printInfo("Serving %q", name)
	printDetail("API:  http://%s/api/map", addr)
	printDetail("Live: ws://%s/live", addr)

	return server.New(c.Logger, store, doc).Run(ctx, addr)
}
