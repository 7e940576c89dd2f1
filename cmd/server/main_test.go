package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"

	"github.com/wildcare/compliance-engine/internal/config"
)

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestParseCoordinate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		lat     float64
		lng     float64
		wantErr bool
	}{
		{name: "Canberra", input: "-35.2809,149.13", lat: -35.2809, lng: 149.13},
		{name: "Spaces", input: " -35.45 , 149.3 ", lat: -35.45, lng: 149.3},
		{name: "Missing Longitude", input: "-35.45", wantErr: true},
		{name: "Not A Number", input: "north,east", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := parseCoordinate(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.lat, c.Lat)
			assert.Equal(t, tt.lng, c.Lng)
		})
	}
}

func TestEvaluateDistanceCommand(t *testing.T) {
	t.Run("Canberra Scenario", func(t *testing.T) {
		out, err := runCommand(t, "evaluate", "distance", "--jurisdiction", "act", "--rescue", "-35.2809,149.13", "--release", "-35.35,149.2")
		require.NoError(t, err)

		var result struct {
			Jurisdiction string `json:"jurisdiction"`
			Result       struct {
				DistanceKm float64 `json:"distance_km"`
				Compliant  bool    `json:"compliant"`
			} `json:"result"`
		}
		require.NoError(t, json.Unmarshal([]byte(out), &result))
		assert.Equal(t, "ACT", result.Jurisdiction)
		assert.False(t, result.Result.Compliant)
		assert.InDelta(t, 9.97, result.Result.DistanceKm, 0.05)
	})

	t.Run("Requires Coordinates", func(t *testing.T) {
		_, err := runCommand(t, "evaluate", "distance", "--rescue", "-35.2809,149.13")
		assert.Error(t, err)
	})
}

func TestJurisdictionsCommand(t *testing.T) {
	t.Run("Built In Table", func(t *testing.T) {
		out, err := runCommand(t, "jurisdictions", "--overrides", "")
		require.NoError(t, err)

		lines := strings.Split(strings.TrimSpace(out), "\n")
		require.Len(t, lines, 9)
		assert.Contains(t, lines[1], "ACT")
		assert.Contains(t, lines[1], "10 km")
	})

	t.Run("With Overrides", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "overrides.yaml")
		require.NoError(t, os.WriteFile(path, []byte("jurisdictions:\n  NSW:\n    distance:\n      minimum_km: 5\n      enforced: true\n"), 0o600))

		out, err := runCommand(t, "jurisdictions", "--overrides", path)
		require.NoError(t, err)
		assert.Contains(t, out, "5 km")
	})
}

func TestMigrateCommandArgs(t *testing.T) {
	_, err := runCommand(t, "migrate", "sideways")
	assert.Error(t, err)
}

func TestAppGraph(t *testing.T) {
	t.Setenv("WILDCARE_AUTH_TOKEN_SECRET", "test-secret")
	cfg, err := config.LoadConfig("")
	require.NoError(t, err)
	assert.NoError(t, fx.ValidateApp(appOptions(cfg)))
}
