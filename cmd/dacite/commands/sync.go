package commands

import (
	"context"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/dacite-io/dacite/config"
	"github.com/dacite-io/dacite/errors"
	"github.com/dacite-io/dacite/hash"
	"github.com/dacite-io/dacite/logger"
	"github.com/dacite-io/dacite/store"
	"github.com/dacite-io/dacite/sync"
)

// SyncCmd reconciles the local store with remote peers.
var SyncCmd = &cobra.Command{
	Use:   "sync [peer-url...]",
	Short: "Reconcile the local blob store with remote peers",
	Long: `Run one reconciliation session against each peer. Peers default to
the [sync] peers list in dacite.toml. Only nodes whose addresses are
missing on one side cross the wire; shared subtrees are pruned at the
first matching address.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		peers := args
		if len(peers) == 0 {
			peers = cfg.Sync.Peers
		}
		if len(peers) == 0 {
			return errors.New("no peers: pass peer URLs or set [sync] peers in dacite.toml")
		}

		root, err := parseRoot(mustString(cmd, "root"))
		if err != nil {
			return err
		}

		st, err := store.Open(cfg.Database.Path, logger.Logger)
		if err != nil {
			return err
		}
		defer st.Close()

		timeout, _ := cmd.Flags().GetDuration("timeout")

		for _, peerURL := range peers {
			if err := syncOnce(cmd.Context(), peerURL, root, cfg.Sync.Name, st, timeout); err != nil {
				pterm.Error.Printf("%s: %v\n", peerURL, err)
				continue
			}
		}
		return nil
	},
}

func syncOnce(ctx context.Context, peerURL string, root hash.Hash, name string, st store.Store, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	conn, err := sync.Dial(ctx, peerURL)
	if err != nil {
		return err
	}
	defer conn.Close()

	peer := sync.NewPeer(conn, root, st, logger.ComponentLogger("sync"))
	peer.Name = name
	remoteRoot, sent, received, err := peer.Reconcile(ctx)
	if err != nil {
		return err
	}

	pterm.Success.Printf("%s: sent %d, received %d (remote root %s)\n",
		peerURL, sent, received, remoteRoot.Short())
	return nil
}

// parseRoot parses an optional hex root; empty means the zero root
// (nothing to advertise).
func parseRoot(s string) (hash.Hash, error) {
	if s == "" {
		return hash.Hash{}, nil
	}
	return hash.Parse(s)
}

func mustString(cmd *cobra.Command, name string) string {
	s, _ := cmd.Flags().GetString(name)
	return s
}

func init() {
	SyncCmd.Flags().String("root", "", "Root address (hex) to advertise")
	SyncCmd.Flags().Duration("timeout", 60*time.Second, "Per-peer session timeout")
}
