package commands

import (
	"os"
	"path/filepath"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"student-scores/models"
	"student-scores/printer"
	"student-scores/replica"
)

var (
	replicaPath      string
	replicaRedisAddr string
	replicaNamespace string
)

var replicaCmd = &cobra.Command{
	Use:   "replica",
	Short: "Work with the local offline replica",
	Long: `The replica mirrors the server view. Edits made with 'replica edit' are
applied locally and queued; 'replica flush' sends them in order.

By default the replica is a bbolt file. Pass --redis to share one replica
between machines through Redis instead.`,
}

// openMirror opens the configured store and wires it to the service.
// Thresholds are fetched once so local edits are classified; when the
// server is unreachable levels are left empty.
func openMirror(cmd *cobra.Command, needConfig bool) (*replica.Mirror, func(), error) {
	var store replica.Store
	if replicaRedisAddr != "" {
		rs, err := replica.NewRedisStore(&redis.Options{Addr: replicaRedisAddr}, replicaNamespace)
		if err != nil {
			return nil, nil, err
		}
		store = rs
	} else {
		bs, err := replica.OpenBolt(replicaPath)
		if err != nil {
			return nil, nil, err
		}
		store = bs
	}

	c := newClient()
	m := &replica.Mirror{Store: store, Remote: c, Subject: subject}
	if needConfig {
		if cfg, err := c.GetConfig(cmd.Context()); err == nil {
			m.Config = cfg
		} else {
			printer.Warning(cmd.ErrOrStderr(), "thresholds unavailable, levels not computed: %v", err)
		}
	}
	return m, func() { store.Close() }, nil
}

var replicaPullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Refresh the replica from the server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, closeStore, err := openMirror(cmd, false)
		if err != nil {
			return printer.Error(cmd.ErrOrStderr(), "Cannot open replica", err.Error(), "")
		}
		defer closeStore()

		n, err := m.Pull(cmd.Context())
		if err != nil {
			return failed(cmd, "Pull failed", err)
		}
		printer.Success(cmd.OutOrStdout(), "pulled %d students", n)
		return nil
	},
}

var replicaListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the replica; dirty rows are marked with *",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, closeStore, err := openMirror(cmd, false)
		if err != nil {
			return printer.Error(cmd.ErrOrStderr(), "Cannot open replica", err.Error(), "")
		}
		defer closeStore()

		local, err := m.List(cmd.Context())
		if err != nil {
			return failed(cmd, "Cannot read replica", err)
		}
		records := make([]models.StudentRecord, len(local))
		for i, rec := range local {
			records[i] = rec.StudentRecord
			if rec.Dirty {
				records[i].Identifier += "*"
			}
		}
		printer.Students(cmd.OutOrStdout(), records)
		return nil
	},
}

var replicaEditCmd = &cobra.Command{
	Use:   "edit <identifier>",
	Short: "Change the local copy and queue the patch",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := patchFromFlags(cmd, args[0])
		if err != nil {
			return failed(cmd, "Invalid patch", err)
		}
		m, closeStore, err := openMirror(cmd, true)
		if err != nil {
			return printer.Error(cmd.ErrOrStderr(), "Cannot open replica", err.Error(), "")
		}
		defer closeStore()

		rec, err := m.Edit(cmd.Context(), req)
		if err != nil {
			return failed(cmd, "Edit rejected", err)
		}
		printer.Success(cmd.OutOrStdout(), "queued edit for %s", rec.Identifier)
		return nil
	},
}

var replicaFlushCmd = &cobra.Command{
	Use:   "flush",
	Short: "Send queued edits to the server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, closeStore, err := openMirror(cmd, false)
		if err != nil {
			return printer.Error(cmd.ErrOrStderr(), "Cannot open replica", err.Error(), "")
		}
		defer closeStore()

		res, err := m.Flush(cmd.Context())
		out := cmd.OutOrStdout()
		if res == nil {
			return failed(cmd, "Cannot read queued edits", err)
		}
		for _, r := range res.Rejected {
			printer.Warning(out, "dropped %s", r)
		}
		if err != nil {
			printer.Warning(out, "%d edits still queued", res.Pending)
			return failed(cmd, "Flush interrupted", err)
		}
		printer.Success(out, "sent %d edits", res.Sent)
		return nil
	},
}

var replicaRemoveCmd = &cobra.Command{
	Use:   "remove <identifier>",
	Short: "Delete a student on the server and in the replica",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, closeStore, err := openMirror(cmd, false)
		if err != nil {
			return printer.Error(cmd.ErrOrStderr(), "Cannot open replica", err.Error(), "")
		}
		defer closeStore()

		if err := m.Remove(cmd.Context(), args[0]); err != nil {
			return failed(cmd, "Remove failed", err)
		}
		printer.Success(cmd.OutOrStdout(), "removed %s", args[0])
		return nil
	},
}

func defaultReplicaPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "scorectl", "replica.db")
}

func init() {
	replicaCmd.PersistentFlags().StringVar(&replicaPath, "path", defaultReplicaPath(), "bbolt replica file")
	replicaCmd.PersistentFlags().StringVar(&replicaRedisAddr, "redis", "", "use a Redis replica at this address")
	replicaCmd.PersistentFlags().StringVar(&replicaNamespace, "namespace", "default", "Redis key namespace")

	addPatchFlags(replicaEditCmd)
	replicaCmd.AddCommand(replicaPullCmd, replicaListCmd, replicaEditCmd, replicaFlushCmd, replicaRemoveCmd)
	rootCmd.AddCommand(replicaCmd)
}
