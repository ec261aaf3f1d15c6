package cmd

import (
	"context"
	"encoding/json"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// indexDumpCmd represents the indexDump command
var indexDumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Dumps the entire container listing as JSON",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		sess, err := openSession(ctx)
		if err != nil {
			log.WithError(err).Fatal("cannot open container")
		}
		defer sess.Close()

		l, err := sess.Index.All(ctx)
		if err != nil {
			log.WithError(err).Fatal("cannot get listing")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		err = enc.Encode(l)
		if err != nil {
			log.WithError(err).Fatal("cannot encode listing")
		}
	},
}

func init() {
	indexCmd.AddCommand(indexDumpCmd)
}
