package cmd

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/csweichel/assetidx/pkg/driver"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// indexGenerateCmd represents the index generate command
var indexGenerateCmd = &cobra.Command{
	Use:   "generate <dst> <src.tar|->",
	Short: "Builds the header index the tar driver reads from a tar file or stdin",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		dst, src := args[0], args[1]

		var in io.Reader = os.Stdin
		if src != "-" {
			f, err := os.Open(src)
			if err != nil {
				log.WithError(err).WithField("src", src).Fatal("cannot open tar file")
			}
			defer f.Close()
			in = f
		}

		t0 := time.Now()
		drv, err := driver.GenerateTarIndex(dst, in)
		if err != nil {
			log.WithError(err).WithField("dst", dst).Fatal("cannot generate tar index")
		}
		defer drv.Close()

		entries, err := drv.ListContents(context.Background(), "/", true)
		if err != nil {
			log.WithError(err).Fatal("cannot read back tar index")
		}
		log.WithField("dst", dst).WithField("entries", len(entries)).WithField("duration", time.Since(t0)).Info("generated tar index")
	},
}

func init() {
	indexCmd.AddCommand(indexGenerateCmd)
}
