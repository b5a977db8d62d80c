package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/panoptes/panoptes-data-go/pkg/version"

	// Register the object store backends.
	_ "github.com/panoptes/panoptes-data-go/pkg/storage/gcs"
	_ "github.com/panoptes/panoptes-data-go/pkg/storage/local"
)

var rootCmd = &cobra.Command{
	Use:     "panoptes-data",
	Short:   "Access PANOPTES observation data",
	Long:    "panoptes-data searches the PANOPTES observations index and downloads observation images and metadata.",
	Version: fmt.Sprintf("gitVersion=%s, gitCommit=%s", version.GitVersion, version.GitCommit),
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	// Accept underscores in flag names, e.g. --unit_id for --unit-id.
	rootCmd.PersistentFlags().SetNormalizeFunc(func(f *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	rootCmd.PersistentFlags().StringVarP(&configFilePath, "config", "c", "", "path to config file")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug mode")

	rootCmd.AddCommand(newSearchCommand())
	rootCmd.AddCommand(newDownloadCommand())
	rootCmd.AddCommand(newMetadataCommand())
}
