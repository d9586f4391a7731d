package cmd

import (
	"github.com/huangsam/brewwater/core"
	"github.com/huangsam/brewwater/internal/contract"
	"github.com/spf13/cobra"
)

// recipeCmd computes the drops for one recipe.
var recipeCmd = &cobra.Command{
	Use:   "recipe [preset]",
	Short: "Compute concentrate drops for a preset or a custom GH/KH target.",
	Long: `Convert a target water profile into drop counts for each concentrate.

GH is split between magnesium and calcium by --mg-share, and KH between
potassium and sodium bicarbonate by --k-share. The drops are scaled from the
concentrate profile's reference volume to --volume.

When a preset is given, its values are used unless a flag is set explicitly.
Values outside the accepted ranges (GH/KH 0-200 ppm, shares 0-100%,
volume 100-5000 mL) are clamped with a warning.

Examples:
  # Preset at the default 300 mL
  brewwater recipe bright-juicy

  # Preset with a stronger buffer for a larger batch
  brewwater recipe body-roundness --kh 50 --volume 1000

  # Custom build on the compact dropper kit, keeping the GH drops in sum
  brewwater recipe --gh 90 --mg-share 75 --kh 30 --k-share 25 --volume 250 --profile compact --rounding balanced

  # Show what each mineral does to the cup
  brewwater recipe floral-clarity --effects

  # Try a recipe without recording it in history
  brewwater recipe --gh 120 --kh 40 --no-history

  # Export the dose rows for a notebook
  brewwater recipe bright-juicy --output parquet --output-file bright.parquet`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteRecipe(rootCtx, cfg, historyManager); err != nil {
			contract.LogFatal("Cannot compute recipe", err)
		}
	},
}

// presetsCmd lists the preset catalog.
var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List the preset catalog with the drops each preset needs.",
	Long: `Show every preset from the built-in catalog and the config file.

Drop counts are computed at --volume with the selected --profile and
--rounding, so the catalog doubles as a quick reference card.

Examples:
  # Catalog for a single cup
  brewwater presets --volume 250 --profile compact

  # Machine-readable catalog
  brewwater presets --output json`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecutePresets(rootCtx, cfg, historyManager); err != nil {
			contract.LogFatal("Cannot list presets", err)
		}
	},
}

// profilesCmd lists the concentrate profiles.
var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List concentrate profiles and their potency per drop.",
	Long: `Show the concentrate profiles known to brewwater.

A profile states how many ppm one drop of each concentrate adds to its
reference volume of water. Potencies can be overridden, and new profiles
added, under the 'profiles' key of the config file.

Examples:
  brewwater profiles
  brewwater profiles --output csv`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteProfiles(rootCtx, cfg, historyManager); err != nil {
			contract.LogFatal("Cannot list profiles", err)
		}
	},
}
