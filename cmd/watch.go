package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/csweichel/assetidx/pkg/watch"
	daemon "github.com/sevlyar/go-daemon"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var watchOpts struct {
	Interval time.Duration
	Detach   bool
	PidFile  string
	LogFile  string
}

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Keeps the cached listing of a watched container in sync with its driver",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if watchOpts.Detach {
			dctx := &daemon.Context{
				PidFileName: watchOpts.PidFile,
				PidFilePerm: 0644,
				LogFileName: watchOpts.LogFile,
				LogFilePerm: 0640,
				WorkDir:     "./",
				Umask:       027,
			}
			child, err := dctx.Reborn()
			if err != nil {
				log.WithError(err).Fatal("cannot detach")
			}
			if child != nil {
				log.WithField("pid", child.Pid).Info("watching in the background")
				return
			}
			defer dctx.Release()
		}

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		sess, err := openSession(ctx)
		if err != nil {
			log.WithError(err).Fatal("cannot open container")
		}
		defer sess.Close()
		if !sess.Config.WatcherEnabled() {
			log.WithField("container", sess.Config.Handle()).Fatal("container is not configured for watch mode")
		}

		poller := &watch.Poller{
			Index:    sess.Index,
			Driver:   sess.Driver,
			Interval: watchOpts.Interval,
		}
		log.WithField("container", sess.Config.Handle()).WithField("interval", watchOpts.Interval).Info("watching container")
		err = poller.Run(ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			log.WithError(err).Fatal("watch failed")
		}
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().DurationVar(&watchOpts.Interval, "interval", 10*time.Second, "poll interval")
	watchCmd.Flags().BoolVar(&watchOpts.Detach, "detach", false, "run in the background")
	watchCmd.Flags().StringVar(&watchOpts.PidFile, "pid-file", "assetidx-watch.pid", "pid file when detached")
	watchCmd.Flags().StringVar(&watchOpts.LogFile, "log-file", "assetidx-watch.log", "log file when detached")
}
