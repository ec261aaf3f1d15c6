package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/csweichel/assetidx/pkg/container"
	"github.com/csweichel/assetidx/pkg/driver"
	"github.com/csweichel/assetidx/pkg/index"
	"github.com/csweichel/assetidx/pkg/store"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var rootOpts struct {
	Verbose bool
	Config  string
}

var settings *container.Settings

// memoryStore as store directory keeps listings in memory, e.g. for long running watch processes
const memoryStore = "memory"

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "assetidx",
	Short: "Caches and queries the listing of an asset container",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		var err error
		settings, err = container.LoadSettings()
		if err != nil {
			log.WithError(err).Fatal("cannot load settings")
		}

		lvl, err := log.ParseLevel(settings.LogLevel)
		if err != nil {
			log.WithError(err).WithField("level", settings.LogLevel).Fatal("invalid log level")
		}
		if rootOpts.Verbose {
			lvl = log.DebugLevel
		}
		log.SetLevel(lvl)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&rootOpts.Verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&rootOpts.Config, "config", "c", "assetidx.yaml", "container config file")
}

type session struct {
	Config *container.Config
	Driver driver.Driver
	Index  *index.Index

	closers []func() error
}

func (s *session) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			log.WithError(err).Warn("cannot close")
		}
	}
}

// openSession loads the container config and opens its driver, the store and the index.
func openSession(ctx context.Context) (*session, error) {
	cfg, err := container.LoadConfig(rootOpts.Config)
	if err != nil {
		return nil, err
	}
	res := &session{Config: cfg}

	switch cfg.Driver {
	case container.DriverLocal:
		res.Driver, err = driver.NewLocal(cfg.Root)
	case container.DriverTar:
		var drv *driver.Tar
		drv, err = driver.OpenTarIndex(cfg.Index)
		if err == nil {
			res.closers = append(res.closers, drv.Close)
			res.Driver = drv
		}
	case container.DriverRemote:
		var drv *driver.Tar
		drv, err = driver.OpenRemoteTar(ctx, cfg.Root)
		if err == nil {
			res.closers = append(res.closers, drv.Close)
			res.Driver = drv
		}
	case container.DriverGitHub:
		if settings.GitHubToken == "" {
			return nil, fmt.Errorf("missing $GITHUB_TOKEN environment variable")
		}
		segs := strings.Split(cfg.Root, "/")
		if len(segs) != 2 {
			return nil, fmt.Errorf("invalid repo format %q - must be owner/repo", cfg.Root)
		}
		res.Driver, err = driver.NewGitHub(ctx, settings.GitHubToken, segs[0], segs[1], cfg.Revision)
	}
	if err != nil {
		res.Close()
		return nil, fmt.Errorf("cannot open %s driver: %w", cfg.Driver, err)
	}

	var st store.Store
	if settings.StoreDir == memoryStore {
		mem, err := store.NewMemory(256 << 20)
		if err != nil {
			res.Close()
			return nil, fmt.Errorf("cannot open store: %w", err)
		}
		res.closers = append(res.closers, mem.Close)
		st = mem
	} else {
		bdg, err := store.OpenBadger(settings.StoreDir)
		if err != nil {
			res.Close()
			return nil, fmt.Errorf("cannot open store: %w", err)
		}
		res.closers = append(res.closers, bdg.Close)
		st = bdg
	}

	res.Index = index.New(cfg, res.Driver, st, index.WithTTL(cfg.CacheTTL))
	return res, nil
}
