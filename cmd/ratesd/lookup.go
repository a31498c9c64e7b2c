/*
lookup.go - One-shot lookup commands

Resolves a single rate from the command line and prints the result,
useful for smoke-testing a loaded database without the server.

EXAMPLES:
  ratesd medicare --zip 94110 --code 99213 --year 2025
  ratesd rate --state CA --code 99213
  ratesd rate --state NY --code 99213 --region 1
*/
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/bph/rate-engine/engine"
	"github.com/bph/rate-engine/feeschedule"
	"github.com/bph/rate-engine/logging"
)

var (
	lookupZIP      string
	lookupCode     string
	lookupModifier string
	lookupYear     int
	lookupState    string
	lookupRegion   int64
)

var medicareCmd = &cobra.Command{
	Use:   "medicare",
	Short: "Resolve a Medicare allowed amount",
	RunE:  runMedicare,
}

var rateCmd = &cobra.Command{
	Use:   "rate",
	Short: "Resolve a state fee-schedule rate",
	RunE:  runRate,
}

func init() {
	f := medicareCmd.Flags()
	f.StringVar(&lookupZIP, "zip", "", "5-digit ZIP code (required)")
	f.StringVar(&lookupCode, "code", "", "Procedure code (required)")
	f.StringVar(&lookupModifier, "modifier", "", "Procedure modifier")
	f.IntVar(&lookupYear, "year", time.Now().Year(), "Reference data year")
	_ = medicareCmd.MarkFlagRequired("zip")
	_ = medicareCmd.MarkFlagRequired("code")
	rootCmd.AddCommand(medicareCmd)

	f = rateCmd.Flags()
	f.StringVar(&lookupState, "state", "", "Two-letter state code (required)")
	f.StringVar(&lookupCode, "code", "", "Procedure code (required)")
	f.StringVar(&lookupModifier, "modifier", "", "Procedure modifier")
	f.Int64Var(&lookupRegion, "region", 0, "Region ID for regionalized states")
	_ = rateCmd.MarkFlagRequired("state")
	_ = rateCmd.MarkFlagRequired("code")
	rootCmd.AddCommand(rateCmd)
}

func runMedicare(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat)
	ctx := context.Background()

	st, closeStore, err := openStore(ctx)
	if err != nil {
		log.Error().Err(err).Msg("store initialization failed")
		os.Exit(1)
	}
	defer closeStore()

	resolver := engine.NewResolver(st)
	rate, err := resolver.ResolveMedicareAllowedAmount(ctx, lookupZIP, lookupCode, lookupModifier, lookupYear)
	if err != nil {
		log.Error().Err(err).Msg("resolution failed")
		os.Exit(1)
	}

	fmt.Printf("%s %s (%s, locality %s): allowed amount %s\n",
		lookupCode, lookupZIP, rate.Locality.FeeScheduleArea,
		rate.Locality.LocalityCode, rate.Rounded().String())
	return nil
}

func runRate(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat)
	ctx := context.Background()

	st, closeStore, err := openStore(ctx)
	if err != nil {
		log.Error().Err(err).Msg("store initialization failed")
		os.Exit(1)
	}
	defer closeStore()

	var regionID *int64
	if cmd.Flags().Changed("region") {
		regionID = &lookupRegion
	}

	selector := feeschedule.NewSelector(st, log)
	view, err := selector.Resolve(ctx, lookupState, lookupCode, lookupModifier, regionID)
	if err != nil {
		log.Error().Err(err).Msg("resolution failed")
		os.Exit(1)
	}

	region := view.Region
	if region == "" {
		region = "statewide"
	}
	fmt.Printf("%s %s (%s, %s): %s per %s, effective %s\n",
		view.ProcedureCode, view.StateCode, view.ScheduleType, region,
		view.Rate.Round(2).String(), view.RateUnit,
		view.EffectiveDate.Format("2006-01-02"))
	return nil
}
