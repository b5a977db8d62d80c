package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/panoptes/panoptes-data-go/pkg/configutils"
	"github.com/panoptes/panoptes-data-go/pkg/logging"
	"github.com/panoptes/panoptes-data-go/pkg/observations/index"
	"github.com/panoptes/panoptes-data-go/pkg/storage"
)

// envPrefix namespaces the environment variables read by every command,
// e.g. PANDATA_STORAGE_BUCKET.
const envPrefix = "PANDATA"

// DefaultImagesBucket is the public bucket holding observation images.
const DefaultImagesBucket = "panoptes-images"

var configFilePath string
var debug bool

func configProvider(cli *cobra.Command) fx.Option {
	return fx.Provide(func() (*viper.Viper, error) {
		v := viper.GetViper()

		v.SetEnvPrefix(envPrefix)
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.AutomaticEnv()

		// The public PANOPTES buckets work without any configuration;
		// a config file only overrides them.
		v.SetDefault(storage.ConfigKey+".provider", string(storage.ProviderGCS))
		v.SetDefault(storage.ConfigKey+".bucket", DefaultImagesBucket)
		index.SetDefaults(v)

		if err := v.BindPFlag("debug", cli.Flags().Lookup("debug")); err != nil {
			panic(err)
		}
		if debug {
			v.Set(logging.ConfigKey+".debug", true)
		}

		if configFilePath != "" {
			if err := configutils.ResolveAndMergeFile(v, configFilePath); err != nil {
				return nil, fmt.Errorf("cannot read config file: %w", err)
			}
		}

		// Fix the issue where viper.UnmarshalKey only uses read config,
		// neglecting environment variables.
		for _, key := range v.AllKeys() {
			v.Set(key, v.Get(key))
		}
		return v, nil
	})
}

// runCommand wires the shared modules into an fx app, runs action once the
// app has started, and shuts the app down when the action returns.
func runCommand(cli *cobra.Command, action fx.Option, extraModules ...fx.Option) {
	options := []fx.Option{
		configProvider(cli),
		logging.Module,
	}
	options = append(options, extraModules...)
	options = append(options, action)

	app := fx.New(fx.Options(options...))
	app.Run()
	if err := app.Stop(context.Background()); err != nil {
		return
	}
}

// signalContext returns a context cancelled on SIGINT or SIGTERM, so an
// interrupt stops in-flight work instead of only killing the process.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// startAction registers a lifecycle hook that runs fn in the background and
// shuts the app down when it completes. fn receives a signal-cancelled
// context, so Ctrl-C propagates into the action.
func startAction(lc fx.Lifecycle, sh fx.Shutdowner, l *zap.Logger, name string, fn func(ctx context.Context) error) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				ctx, stop := signalContext()
				defer stop()
				if err := fn(ctx); err != nil {
					l.Error(name+" failed", zap.Error(err))
					os.Exit(1)
				}
				if err := sh.Shutdown(); err != nil {
					l.Error("Failed to shutdown "+name, zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return nil
		},
	})
}
