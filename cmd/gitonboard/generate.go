package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"

	"gitonboard/pkg/config"
	"gitonboard/pkg/console"
	"gitonboard/pkg/errors"
	"gitonboard/pkg/genconfig"
	"gitonboard/pkg/git"
	"gitonboard/pkg/inputs"
	"gitonboard/pkg/onboard"
)

// GeneratedFileName is where -w writes the result, inside the destination.
const GeneratedFileName = "gitonboard.generated"

func newGenerateCmd() *cobra.Command {
	var (
		originURL      string
		currentVersion string
		destination    string
		format         string
		write          bool
	)

	cmd := &cobra.Command{
		Use:     "generate",
		Short:   MsgGenerateShort,
		Long:    MsgGenerateLong,
		Example: MsgGenerateExample,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return runGenerate(ctx, originURL, currentVersion, destination, format, write)
		},
	}

	cmd.Flags().StringVar(&originURL, "origin", "", "URL of the origin repository (required)")
	cmd.Flags().StringVar(&currentVersion, "current-version", "", "version of the origin currently synced into the destination (required)")
	cmd.Flags().StringVar(&destination, "destination", ".", "path of the synced destination tree")
	cmd.Flags().StringVar(&format, "format", "", "output format: toml or yaml (default from config)")
	cmd.Flags().BoolVarP(&write, "write", "w", false, "write the config into the destination instead of stdout")
	_ = cmd.MarkFlagRequired("origin")
	_ = cmd.MarkFlagRequired("current-version")

	return cmd
}

func runGenerate(ctx context.Context, originURL, currentVersion, destination, format string, write bool) error {
	cons := console.NewTerminal()

	cfg, err := config.Load(destination)
	if err != nil {
		cons.Warnf("%v", err)
		return err
	}
	if format == "" {
		format = cfg.Generator.OutputFormat
	}

	absDestination, err := filepath.Abs(destination)
	if err != nil {
		return errors.Wrap(err, errors.ErrInvalidInput, "resolving destination path")
	}

	provider := onboard.NewConfigHeuristicsProvider(onboard.Options{
		Backend:              git.NewMirrorCache(cfg.Git.CacheDir),
		Console:              cons,
		DestinationOnlyPaths: cfg.Generator.DestinationOnlyPaths,
		PercentSimilar:       cfg.Generator.PercentSimilar,
		IgnoreCarriageReturn: cfg.Generator.IgnoreCarriageReturn,
		IgnoreWhitespace:     cfg.Generator.IgnoreWhitespace,
	})

	resolver := inputs.NewProviderResolver(
		inputs.Constants(map[*inputs.Input]interface{}{
			inputs.GitOriginURL:    originURL,
			inputs.CurrentVersion:  currentVersion,
			inputs.DestinationPath: absDestination,
		}),
		provider,
	)

	generated, err := genconfig.Collect(ctx, resolver)
	if err != nil {
		cons.Warnf("Could not assemble onboarding config: %v", err)
		return err
	}

	out, err := generated.Render(format)
	if err != nil {
		return err
	}

	if !write {
		fmt.Print(string(out))
		return nil
	}

	path := filepath.Join(absDestination, GeneratedFileName+"."+format)
	if err := os.WriteFile(path, out, 0644); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "writing %s", path)
	}
	cons.Successf("Wrote %s", path)
	return nil
}
