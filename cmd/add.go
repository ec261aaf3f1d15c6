package cmd

import (
	"context"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// addCmd represents the add command
var addCmd = &cobra.Command{
	Use:   "add <path>...",
	Short: "Adds paths and their parent directories to the cached listing",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		sess, err := openSession(ctx)
		if err != nil {
			log.WithError(err).Fatal("cannot open container")
		}
		defer sess.Close()

		for _, p := range args {
			err = sess.Index.Add(ctx, p)
			if err != nil {
				log.WithError(err).WithField("path", p).Fatal("cannot add path")
			}
		}
		err = sess.Index.Save(ctx)
		if err != nil {
			log.WithError(err).Fatal("cannot save listing")
		}
	},
}

// forgetCmd represents the forget command
var forgetCmd = &cobra.Command{
	Use:   "forget <path>...",
	Short: "Removes paths from the cached listing",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		sess, err := openSession(ctx)
		if err != nil {
			log.WithError(err).Fatal("cannot open container")
		}
		defer sess.Close()

		for _, p := range args {
			err = sess.Index.Forget(ctx, p)
			if err != nil {
				log.WithError(err).WithField("path", p).Fatal("cannot forget path")
			}
		}
		err = sess.Index.Save(ctx)
		if err != nil {
			log.WithError(err).Fatal("cannot save listing")
		}
	},
}

func init() {
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(forgetCmd)
}
