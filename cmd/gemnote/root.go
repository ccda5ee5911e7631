package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/five82/gemnote/internal/app"
)

// cli carries flag values and the runtime opened for the running command.
type cli struct {
	opts app.Options
	rt   *app.Runtime

	in     io.Reader
	out    io.Writer
	errOut io.Writer
}

func newCLI() *cli {
	return &cli{in: os.Stdin, out: os.Stdout, errOut: os.Stderr}
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:   "gemnote",
		Short: "Capture clipboard text and send it to Anytype as notes",
		Long: `gemnote keeps a short list of clipboard snippets and sends them to the
Anytype desktop app through its local REST API. The API is found by
sweeping the local /24 network, so the first run only needs an API key.

Run without arguments to start the interactive interface.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			opts := c.opts
			if cmd != cmd.Root() {
				// The TUI owns the terminal; everything else may log to stderr.
				opts.Console = c.errOut
				opts.ConsoleLevel = "warn"
			}
			rt, err := app.Open(opts)
			if err != nil {
				return err
			}
			c.rt = rt
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			c.rt.Close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.rt.RunTUI(cmd.Context())
		},
	}

	root.SetIn(c.in)
	root.SetOut(c.out)
	root.SetErr(c.errOut)

	flags := root.PersistentFlags()
	flags.StringVar(&c.opts.ConfigPath, "config", "", "config file (default ~/.config/gemnote/config.toml)")
	flags.StringVar(&c.opts.PrefsPath, "prefs", "", "preferences file (default ~/.config/gemnote/prefs.toml)")
	flags.BoolVarP(&c.opts.Verbose, "verbose", "v", false, "enable debug logging")
	flags.StringVar(&c.opts.LogLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.BoolVar(&c.opts.InMemoryClipboard, "in-memory-clipboard", false, "use a process-local clipboard instead of the system one")

	root.AddCommand(
		newWatchCmd(c),
		newScanCmd(c),
		newConnectCmd(c),
		newKeyCmd(c),
		newAddCmd(c),
		newListCmd(c),
		newSendCmd(c),
		newDeleteCmd(c),
		newClearCmd(c),
		newSpacesCmd(c),
		newTypesCmd(c),
		newLogsCmd(c),
		newStatusCmd(c),
	)
	return root
}
