package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/five82/gemnote/internal/app"
	"github.com/five82/gemnote/internal/discovery"
	"github.com/five82/gemnote/internal/entries"
	"github.com/five82/gemnote/internal/logging"
	"github.com/five82/gemnote/internal/logtail"
)

// describe adds a next step to errors the user can fix from the CLI.
func describe(err error) string {
	switch {
	case errors.Is(err, app.ErrNoAPIKey):
		return err.Error() + " (run: gemnote key)"
	case errors.Is(err, app.ErrNoSpace):
		return err.Error() + " (run: gemnote spaces --select <id>)"
	case errors.Is(err, discovery.ErrNotFound):
		return err.Error() + " (is Anytype running on this network? try: gemnote connect <url>)"
	}
	return err.Error()
}

func newWatchCmd(c *cli) *cobra.Command {
	var autoSend bool
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Capture clipboard changes until interrupted",
		Long: `Watches the clipboard and stores every new non-blank text as an entry.
With --auto-send the Anytype connection is kept alive in the background and
each entry is sent as soon as it is captured; entries captured while offline
stay pending.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "Watching the %s clipboard, Ctrl+C to stop\n", c.rt.Clipboard.Name())
			return c.rt.Watch(cmd.Context(), autoSend)
		},
	}
	cmd.Flags().BoolVar(&autoSend, "auto-send", false, "send captured entries to Anytype")
	return cmd
}

func newScanCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "Sweep the local network for the Anytype API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.rt.Connector.Scan(cmd.Context()); err != nil {
				return err
			}
			printConnection(cmd.OutOrStdout(), c)
			return nil
		},
	}
}

func newConnectCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "connect [url]",
		Short: "Connect to Anytype and remember the address",
		Long: `Without an argument the remembered address is tried first and the local
network is swept when it no longer answers. With a URL only that address is
verified; a missing port defaults to 31010.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if len(args) == 1 {
				err = c.rt.Connector.ConnectTo(cmd.Context(), args[0])
			} else {
				err = c.rt.Connector.Connect(cmd.Context())
			}
			if err != nil {
				return err
			}
			printConnection(cmd.OutOrStdout(), c)
			return nil
		},
	}
}

func newKeyCmd(c *cli) *cobra.Command {
	var clearKey bool
	cmd := &cobra.Command{
		Use:   "key [value|-]",
		Short: "Show or set the Anytype API key",
		Long: `Without an argument reports whether a key is set. Pass the key, or "-" to
read it from stdin. GEMNOTE_API_KEY overrides the stored key and is never
written to disk.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			conn := c.rt.Connector
			if clearKey {
				if err := conn.SetAPIKey(""); err != nil {
					return err
				}
				fmt.Fprintln(out, "API key cleared")
				return nil
			}
			if len(args) == 0 {
				if key := conn.APIKey(); key != "" {
					fmt.Fprintf(out, "API key set (%s)\n", maskKey(key))
				} else {
					fmt.Fprintln(out, "No API key set")
				}
				return nil
			}

			value := args[0]
			if value == "-" {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && !errors.Is(err, io.EOF) {
					return fmt.Errorf("read key: %w", err)
				}
				value = line
			}
			value = strings.TrimSpace(value)
			if value == "" {
				return errors.New("api key is empty")
			}
			if err := conn.SetAPIKey(value); err != nil {
				return err
			}
			fmt.Fprintln(out, "API key saved")
			return nil
		},
	}
	cmd.Flags().BoolVar(&clearKey, "clear", false, "remove the stored key")
	return cmd
}

func newAddCmd(c *cli) *cobra.Command {
	var fromClipboard bool
	cmd := &cobra.Command{
		Use:   "add [text]",
		Short: "Add an entry from arguments or the clipboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			if fromClipboard || len(args) == 0 {
				clip, err := c.rt.Clipboard.Read(cmd.Context())
				if err != nil {
					return fmt.Errorf("read clipboard: %w", err)
				}
				text = clip
			}
			entry, err := c.rt.Entries.Add(text)
			switch {
			case errors.Is(err, entries.ErrEmpty) && len(args) == 0:
				return errors.New("clipboard is empty")
			case err != nil:
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s  %s\n", shortID(entry.ID), oneLine(entry.Preview, 60))
			return nil
		},
	}
	cmd.Flags().BoolVar(&fromClipboard, "clipboard", false, "read the text from the clipboard")
	return cmd
}

func newListCmd(c *cli) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List captured entries, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			items := c.rt.Entries.List()
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if items == nil {
					items = []entries.Entry{}
				}
				return enc.Encode(items)
			}
			if len(items) == 0 {
				fmt.Fprintln(out, "No entries")
				return nil
			}
			fmt.Fprintln(out, renderEntries(items))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print entries as JSON")
	return cmd
}

func newSendCmd(c *cli) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "send <id>... | --all",
		Short: "Send entries to Anytype",
		Long: `Sends the given entries (unique id prefixes are accepted) to the selected
space as objects of the selected type. --all sends every pending entry,
oldest first.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if all && len(args) > 0 {
				return errors.New("pass entry ids or --all, not both")
			}
			if !all && len(args) == 0 {
				return errors.New("pass at least one entry id, or --all")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			// Resolve first so a typo fails before any network work.
			targets := make([]entries.Entry, 0, len(args))
			for _, ref := range args {
				e, err := c.rt.Entries.Resolve(ref)
				if err != nil {
					return fmt.Errorf("%s: %w", ref, err)
				}
				targets = append(targets, e)
			}

			if err := c.rt.Connector.Connect(ctx); err != nil {
				return err
			}

			if all {
				n, err := c.rt.Connector.SendAll(ctx)
				fmt.Fprintf(out, "Sent %d %s\n", n, plural(n, "entry", "entries"))
				return err
			}
			for _, e := range targets {
				sent, err := c.rt.Connector.Send(ctx, e.ID)
				if err != nil {
					return fmt.Errorf("send %s: %w", shortID(e.ID), err)
				}
				fmt.Fprintf(out, "Sent %s  %s\n", shortID(sent.ID), sent.ObjectID)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "send every pending entry")
	return cmd
}

func newDeleteCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete an entry",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := c.rt.Entries.Resolve(args[0])
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			if err := c.rt.Entries.Delete(e.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", shortID(e.ID))
			return nil
		},
	}
}

func newClearCmd(c *cli) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			n := c.rt.Entries.Len()
			if n == 0 {
				fmt.Fprintln(out, "No entries")
				return nil
			}
			if !yes {
				fmt.Fprintf(out, "Delete all %d entries? [y/N] ", n)
				answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				switch strings.ToLower(strings.TrimSpace(answer)) {
				case "y", "yes":
				default:
					fmt.Fprintln(out, "Cancelled")
					return nil
				}
			}
			if err := c.rt.Entries.Clear(); err != nil {
				return err
			}
			fmt.Fprintf(out, "Deleted %d %s\n", n, plural(n, "entry", "entries"))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func newSpacesCmd(c *cli) *cobra.Command {
	var selectID string
	cmd := &cobra.Command{
		Use:   "spaces",
		Short: "List Anytype spaces or select the target space",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			conn := c.rt.Connector
			if err := conn.Connect(ctx); err != nil {
				return err
			}
			if selectID != "" {
				if err := conn.SelectSpace(ctx, selectID); err != nil {
					return err
				}
			}
			snap := c.rt.State.Snapshot()
			fmt.Fprintln(cmd.OutOrStdout(), renderSpaces(snap.Spaces, snap.SpaceID))
			return nil
		},
	}
	cmd.Flags().StringVar(&selectID, "select", "", "space id to send notes to")
	return cmd
}

func newTypesCmd(c *cli) *cobra.Command {
	var selectKey string
	cmd := &cobra.Command{
		Use:   "types",
		Short: "List object types of the selected space or select one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conn := c.rt.Connector
			if err := conn.Connect(cmd.Context()); err != nil {
				return err
			}
			if selectKey != "" {
				if err := conn.SelectType(selectKey); err != nil {
					return err
				}
			}
			snap := c.rt.State.Snapshot()
			if snap.SpaceID == "" {
				return app.ErrNoSpace
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTypes(snap.Types, snap.TypeKey))
			return nil
		},
	}
	cmd.Flags().StringVar(&selectKey, "select", "", "object type key used for new notes")
	return cmd
}

func newLogsCmd(c *cli) *cobra.Command {
	var (
		lines int
		level string
		raw   bool
	)
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the tail of the gemnote log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := c.rt.Config.LogPath()
			tail, err := logtail.Read(path, lines)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}
			if level != "" {
				minLevel, err := logging.ParseLevel(level)
				if err != nil {
					return err
				}
				tail = logtail.Filter(tail, minLevel)
			}
			out := cmd.OutOrStdout()
			for _, line := range tail {
				if !raw {
					line = logtail.Format(line)
				}
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "number of lines to show; 0 shows all")
	cmd.Flags().StringVar(&level, "level", "", "minimum level: debug, info, warn, error")
	cmd.Flags().BoolVar(&raw, "raw", false, "print the JSON lines unformatted")
	return cmd
}

func newStatusCmd(c *cli) *cobra.Command {
	var check bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show settings, the remembered connection and entry counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			var connErr error
			if check {
				connErr = c.rt.Connector.Connect(cmd.Context())
			}
			printStatus(out, c, check, connErr)
			return nil
		},
	}
	cmd.Flags().BoolVar(&check, "check", false, "connect to Anytype and report the result")
	return cmd
}
