// Command etl builds the wheat-yield datasets: fertilizer prices from the
// price workbook, yields/fertilization/wheat prices from GUS BDL, and
// weather indicators from Open-Meteo.
//
// Usage:
//
//	etl fertilizers [--skip-malformed]
//	etl gus [--strict]
//	etl weather [--strict]
//	etl all [--skip-malformed] [--strict]
//	etl check-env
//	etl validate [--dir data/raw]
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	skipMalformed bool
	strict        bool
	validateDir   string
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "etl",
		Short:         "Build wheat yield, fertilizer and weather datasets",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().BoolVar(&skipMalformed, "skip-malformed", false, "Skip workbook blocks without a year instead of failing")
	rootCmd.PersistentFlags().BoolVar(&strict, "strict", false, "Fail before loading if any API request failed")

	fertilizersCmd := &cobra.Command{
		Use:   "fertilizers",
		Short: "Convert the fertilizer price workbook into nutrient price tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), "fertilizers", withSinks, func(ctx context.Context, a *app) error {
				return a.runFertilizers(ctx)
			})
		},
	}

	gusCmd := &cobra.Command{
		Use:   "gus",
		Short: "Fetch yields, NPK fertilization and wheat prices from GUS BDL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), "gus", withSinks, func(ctx context.Context, a *app) error {
				return a.runGUS(ctx)
			})
		},
	}

	weatherCmd := &cobra.Command{
		Use:   "weather",
		Short: "Fetch daily weather from Open-Meteo and derive indicators",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), "weather", withSinks, func(ctx context.Context, a *app) error {
				return a.runWeather(ctx)
			})
		},
	}

	allCmd := &cobra.Command{
		Use:   "all",
		Short: "Run the fertilizer, GUS and weather pipelines in order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), "all", withSinks, func(ctx context.Context, a *app) error {
				for _, run := range []func(context.Context) error{a.runFertilizers, a.runGUS, a.runWeather} {
					if err := run(ctx); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}

	checkEnvCmd := &cobra.Command{
		Use:   "check-env",
		Short: "Check the GUS API key and connectivity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), "check-env", withoutSinks, func(ctx context.Context, a *app) error {
				fmt.Fprintln(cmd.OutOrStdout(), a.checkEnv(ctx))
				return nil
			})
		},
	}

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Check the integrity of the fertilizer CSV outputs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), "validate", withoutSinks, func(_ context.Context, a *app) error {
				return a.validate(cmd.OutOrStdout(), validateDir)
			})
		},
	}
	validateCmd.Flags().StringVar(&validateDir, "dir", "", "Directory with the CSV outputs (default: DATA_DIR)")

	rootCmd.AddCommand(fertilizersCmd, gusCmd, weatherCmd, allCmd, checkEnvCmd, validateCmd)
	return rootCmd
}
