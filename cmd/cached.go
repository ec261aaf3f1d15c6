package cmd

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// cachedCmd represents the cached command
var cachedCmd = &cobra.Command{
	Use:   "cached",
	Short: "Shows what the store holds for the container, without listing the driver",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		sess, err := openSession(ctx)
		if err != nil {
			log.WithError(err).Fatal("cannot open container")
		}
		defer sess.Close()

		l, ok, err := sess.Index.Cached(ctx)
		if err != nil {
			log.WithError(err).Fatal("cannot read store")
		}
		if !ok {
			fmt.Printf("%s: nothing cached\n", sess.Index.Key())
			return
		}

		var (
			files int
			total int64
		)
		for _, r := range l.Records() {
			if r.Size != nil {
				files++
				total += *r.Size
			}
		}
		fmt.Printf("%s: %d entries, %d files, %s\n", sess.Index.Key(), l.Len(), files, humanize.Bytes(uint64(total)))
	},
}

func init() {
	rootCmd.AddCommand(cachedCmd)
}
