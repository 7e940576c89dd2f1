package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wildcare/compliance-engine/internal/compliance"
	"github.com/wildcare/compliance-engine/internal/jurisdiction"
)

func evaluateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Run a compliance rule from the command line",
	}
	cmd.AddCommand(evaluateDistanceCmd())
	return cmd
}

func evaluateDistanceCmd() *cobra.Command {
	var (
		code          string
		rescue        string
		release       string
		overridesPath string
	)

	cmd := &cobra.Command{
		Use:     "distance",
		Short:   "Check a rescue/release pair against a jurisdiction's minimum release distance",
		Example: "  compliance-engine evaluate distance --jurisdiction ACT --rescue -35.2809,149.13 --release -35.45,149.3",
		RunE: func(cmd *cobra.Command, _ []string) error {
			from, err := parseCoordinate(rescue)
			if err != nil {
				return fmt.Errorf("invalid --rescue: %w", err)
			}
			to, err := parseCoordinate(release)
			if err != nil {
				return fmt.Errorf("invalid --release: %w", err)
			}

			registry, err := jurisdiction.LoadRegistry(overridesPath)
			if err != nil {
				return err
			}
			cfg := registry.Get(code)

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(struct {
				Jurisdiction jurisdiction.Code        `json:"jurisdiction"`
				Result       compliance.DistanceCheck `json:"result"`
			}{cfg.Code, compliance.CheckReleaseDistance(from, to, cfg)})
		},
	}

	cmd.Flags().StringVarP(&code, "jurisdiction", "j", "", "jurisdiction code (defaults to ACT)")
	cmd.Flags().StringVar(&rescue, "rescue", "", "rescue site as lat,lng")
	cmd.Flags().StringVar(&release, "release", "", "release site as lat,lng")
	cmd.Flags().StringVar(&overridesPath, "overrides", os.Getenv("WILDCARE_JURISDICTIONS_OVERRIDES_PATH"), "YAML file of jurisdiction overrides")
	_ = cmd.MarkFlagRequired("rescue")
	_ = cmd.MarkFlagRequired("release")
	return cmd
}

// parseCoordinate parses "lat,lng" in decimal degrees
func parseCoordinate(s string) (compliance.Coordinate, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return compliance.Coordinate{}, fmt.Errorf("expected lat,lng, got %q", s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return compliance.Coordinate{}, fmt.Errorf("latitude: %w", err)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return compliance.Coordinate{}, fmt.Errorf("longitude: %w", err)
	}
	return compliance.Coordinate{Lat: lat, Lng: lng}, nil
}
