// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the landing-engine CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/landing-engine/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// rootCmd is the base command for the landing-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "landing-engine",
	Short: "pSEO landing page generation for the unpaid-debt calculator site",
	Long: `landing-engine generates Korean pSEO landing pages for the unpaid-debt
calculator. It expands seed phrases into case records via SERP and LLM
calls, runs each case through a writer/reviewer/fixer workflow with a
final publication gate, and publishes approved pages as static HTML with
a catalog and sitemap.

Each stage is a subcommand: cases, run, run-all, cycle, publish-static,
sitemap, history, and diagnose.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./landing-engine.yaml or ~/.config/landing-engine/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("landing-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "landing-engine"))
		}
	}

	viper.SetEnvPrefix("LANDING_ENGINE")
	viper.AutomaticEnv()

	setConfigDefaults()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
