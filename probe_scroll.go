package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"vehicle-storefront/probe"
	"vehicle-storefront/services"
)

func runProbeScroll(cmd *cobra.Command, args []string) error {
	pageURL := urlFlag
	if pageURL == "" {
		pageURL = cfg.StorefrontURL
	}

	trigger := services.NewScrollTrigger(nil, cfg.ScrollThresholdPx, logger)
	samples, err := probe.New(pageURL, cfg.ChromeBin, logger).Sample(cmd.Context(), stepsFlag, trigger)
	for _, s := range samples {
		fmt.Fprintf(cmd.OutOrStdout(), "step %d: scrollY=%.0f viewport=%.0f document=%.0f  %.0fpx from bottom  near=%t\n",
			s.Step, s.Viewport.ScrollY, s.Viewport.InnerHeight, s.Viewport.DocumentHeight,
			s.Viewport.DistanceFromBottom(), s.Near)
	}
	if err != nil {
		return err
	}
	if len(samples) > 1 && !samples[len(samples)-1].Near {
		logger.Warn("[probe] Bottom of %s never came within %.0fpx, the next page would not load", pageURL, trigger.Threshold())
	}
	return nil
}
