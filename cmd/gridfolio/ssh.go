package main

import (
	"github.com/spf13/cobra"

	"github.com/vovakirdan/gridfolio/internal/platform/tui"
)

func newSSHCmd(a *app) *cobra.Command {
	var (
		addr    string
		hostKey string
	)

	cmd := &cobra.Command{
		Use:   "ssh",
		Short: "Serve the terminal board over SSH",
		Long: `Start an SSH server that gives every user the terminal board.

Each SSH user gets a layout of their own, stored as "ssh:<user>" and kept
between connections. New users start from a copy of the layout selected
with --layout.

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise, auto-generates a key at ~/.gridfolio/host_key

Examples:
  gridfolio ssh                           # Listen on server.ssh_addr
  gridfolio ssh --addr :2222              # Listen on port 2222
  gridfolio ssh --host-key ./my_host_key  # Use specific host key

Users can connect with:
  ssh localhost -p 23235`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr != "" {
				a.cfg.Server.SSHAddr = addr
			}
			if hostKey != "" {
				a.cfg.Server.HostKeyPath = hostKey
			}

			ctx := cmd.Context()
			logger := loggerFromContext(ctx)
			backend, err := a.openBackend(ctx)
			if err != nil {
				return err
			}
			defer backend.Close()

			server, err := tui.NewSSHServer(a.cfg, backend, logger.WithPrefix("ssh"))
			if err != nil {
				logger.Error("cannot create server", "err", err)
				return err
			}

			cmd.Printf("Starting gridfolio SSH server on %s\n", server.Addr())
			cmd.Println("Press Ctrl+C to stop")
			return server.ListenAndServe()
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "SSH listen address (overrides server.ssh_addr)")
	cmd.Flags().StringVar(&hostKey, "host-key", "", "Path to host key file (auto-generated if not specified)")
	return cmd
}
