package commands

import (
	"context"
	"io"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/dacite-io/dacite/config"
	"github.com/dacite-io/dacite/errors"
	"github.com/dacite-io/dacite/logger"
	"github.com/dacite-io/dacite/store"
	"github.com/dacite-io/dacite/sync"
	"github.com/dacite-io/dacite/value"
)

// HashCmd computes the content address of a JSON document.
var HashCmd = &cobra.Command{
	Use:   "hash [file]",
	Short: "Compute the content address of a JSON document",
	Long: `Convert a JSON document into the Dacite value model and print its
256-bit content address. Reads stdin when file is "-" or omitted.

With --store, the document's node tree is also published into the
local blob store, making it servable and syncable.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var data []byte
		var err error
		if len(args) == 0 || args[0] == "-" {
			data, err = io.ReadAll(cmd.InOrStdin())
		} else {
			data, err = os.ReadFile(args[0])
		}
		if err != nil {
			return errors.Wrap(err, "read input")
		}

		v, err := value.FromJSON(data)
		if err != nil {
			return err
		}

		addr := v.Hash()
		pterm.DefaultBasicText.Println(addr.Hex())

		publish, _ := cmd.Flags().GetBool("store")
		if !publish {
			return nil
		}

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		st, err := store.Open(cfg.Database.Path, logger.Logger)
		if err != nil {
			return err
		}
		defer st.Close()

		if _, err := sync.Publish(context.Background(), v, st); err != nil {
			return errors.Wrap(err, "publish nodes")
		}
		pterm.Success.Printf("Published %s (%s) to %s\n", addr.Short(), v.Kind(), cfg.Database.Path)
		return nil
	},
}

func init() {
	HashCmd.Flags().BoolP("store", "s", false, "Publish the node tree into the local blob store")
}
