package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/wildcare/compliance-engine/internal/jurisdiction"
)

func jurisdictionsCmd() *cobra.Command {
	var overridesPath string

	cmd := &cobra.Command{
		Use:   "jurisdictions",
		Short: "Print the jurisdiction rule table",
		RunE: func(cmd *cobra.Command, _ []string) error {
			registry, err := jurisdiction.LoadRegistry(overridesPath)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "CODE\tNAME\tMIN DISTANCE\tVET SIGN-OFF\tRETENTION\tFORMS")
			for _, code := range registry.Codes() {
				cfg := registry.Get(code.String())

				distance := "-"
				if cfg.Distance.Enforced {
					distance = fmt.Sprintf("%g km", cfg.Distance.MinimumKm)
				}

				forms := make([]string, 0, len(cfg.EnabledForms))
				for _, f := range cfg.EnabledForms.Slice() {
					forms = append(forms, string(f))
				}

				fmt.Fprintf(w, "%s\t%s\t%s\t%t\t%d years\t%s\n",
					cfg.Code, cfg.FullName, distance, cfg.VetSignOffRequired, cfg.RetentionYears, strings.Join(forms, ","))
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&overridesPath, "overrides", os.Getenv("WILDCARE_JURISDICTIONS_OVERRIDES_PATH"), "YAML file of jurisdiction overrides")
	return cmd
}
