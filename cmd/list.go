package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/csweichel/assetidx/pkg/index"
	"github.com/dustin/go-humanize"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var listOpts struct {
	Recursive bool
	Dirs      bool
	Match     string
}

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list [folder]",
	Short: "Lists the visible files (or directories) of a folder",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		folder := "/"
		if len(args) > 0 {
			folder = args[0]
		}
		if listOpts.Match != "" && !doublestar.ValidatePattern(listOpts.Match) {
			log.WithField("pattern", listOpts.Match).Fatal("invalid match pattern")
		}

		ctx := context.Background()
		sess, err := openSession(ctx)
		if err != nil {
			log.WithError(err).Fatal("cannot open container")
		}
		defer sess.Close()

		var l *index.Listing
		if listOpts.Dirs {
			l, err = sess.Index.FilteredDirectoriesIn(ctx, folder, listOpts.Recursive)
		} else {
			l, err = sess.Index.FilteredFilesIn(ctx, folder, listOpts.Recursive)
		}
		if err != nil {
			log.WithError(err).Fatal("cannot list folder")
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		defer w.Flush()
		for _, r := range l.Records() {
			if listOpts.Match != "" {
				ok, _ := doublestar.Match(strings.TrimPrefix(listOpts.Match, "/"), strings.TrimPrefix(r.Path, "/"))
				if !ok {
					continue
				}
			}

			sze := "-"
			if r.Size != nil {
				sze = humanize.Bytes(uint64(*r.Size))
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.Type, sze, humanize.Time(time.Unix(r.Timestamp, 0)), r.Path)
		}
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVarP(&listOpts.Recursive, "recursive", "r", false, "include everything below the folder")
	listCmd.Flags().BoolVarP(&listOpts.Dirs, "dirs", "d", false, "list directories instead of files")
	listCmd.Flags().StringVar(&listOpts.Match, "match", "", "only list paths matching this glob, e.g. **/*.png")
}
