package container_test

import (
	"errors"
	"testing"
	"time"

	"github.com/csweichel/assetidx/pkg/container"
	"github.com/google/go-cmp/cmp"
)

func TestParseConfig(t *testing.T) {
	type Expectation struct {
		Config *container.Config
		Err    error
	}
	tests := []struct {
		Name        string
		Input       string
		Expectation Expectation
	}{
		{
			Name: "local",
			Input: `handle: main
root: ./assets
watch: true
cache_ttl: 1h
`,
			Expectation: Expectation{
				Config: &container.Config{Name: "main", Driver: "local", Root: "./assets", Watch: true, CacheTTL: time.Hour},
			},
		},
		{
			Name: "github defaults revision",
			Input: `handle: docs
driver: github
root: csweichel/wsfs
`,
			Expectation: Expectation{
				Config: &container.Config{Name: "docs", Driver: "github", Root: "csweichel/wsfs", Revision: "main"},
			},
		},
		{
			Name:        "missing handle",
			Input:       "root: ./assets\n",
			Expectation: Expectation{Err: container.ErrInvalidConfig},
		},
		{
			Name:        "tar without index",
			Input:       "handle: t\ndriver: tar\nroot: x.tar\n",
			Expectation: Expectation{Err: container.ErrInvalidConfig},
		},
		{
			Name:        "unknown driver",
			Input:       "handle: t\ndriver: ftp\nroot: x\n",
			Expectation: Expectation{Err: container.ErrInvalidConfig},
		},
	}
	for _, test := range tests {
		t.Run(test.Name, func(t *testing.T) {
			var act Expectation
			cfg, err := container.ParseConfig([]byte(test.Input))
			act.Config = cfg
			if err != nil {
				if !errors.Is(err, test.Expectation.Err) {
					t.Errorf("ParseConfig() returned %v, expected %v", err, test.Expectation.Err)
				}
				act.Err = test.Expectation.Err
			}

			if diff := cmp.Diff(test.Expectation, act, cmp.Comparer(func(a, b error) bool { return a == b })); diff != "" {
				t.Errorf("ParseConfig() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestConfigImplementsContainer(t *testing.T) {
	var c container.Container = &container.Config{Name: "main", Watch: true}
	if c.Handle() != "main" || !c.WatcherEnabled() {
		t.Errorf("unexpected container: %s %v", c.Handle(), c.WatcherEnabled())
	}
}

func TestLoadSettings(t *testing.T) {
	t.Setenv("ASSETIDX_STORE", "/tmp/idx")
	t.Setenv("ASSETIDX_LOG_LEVEL", "info")
	t.Setenv("GITHUB_TOKEN", "secret")

	act, err := container.LoadSettings()
	if err != nil {
		t.Fatal(err)
	}
	exp := &container.Settings{StoreDir: "/tmp/idx", LogLevel: "info", GitHubToken: "secret"}
	if diff := cmp.Diff(exp, act); diff != "" {
		t.Errorf("LoadSettings() mismatch (-want +got):\n%s", diff)
	}
}
