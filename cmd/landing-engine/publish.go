// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/landing-engine/internal/publish"
)

var publishStaticCmd = &cobra.Command{
	Use:   "publish-static",
	Short: "Copy root static files into the public directory",
	Long: `Publish-static copies the root verification and asset files (robots.txt,
search-console HTML files, qr.png) into the public directory, and rewrites
the calculator page as public/calculator.html with corrected links.`,
	RunE: runPublishStatic,
}

func runPublishStatic(cmd *cobra.Command, args []string) error {
	rootDir, _ := cmd.Flags().GetString("root-dir")
	copied, err := publish.CopyStaticFiles(rootDir, publishConfig().PublicDir)
	if err != nil {
		return err
	}
	for _, path := range copied {
		fmt.Println("copied", path)
	}
	fmt.Printf("%d file(s) copied\n", len(copied))
	return nil
}

var sitemapCmd = &cobra.Command{
	Use:   "sitemap",
	Short: "Regenerate sitemap.xml from the page catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := publishConfig()
		path, err := publish.BuildSitemap(cfg.PublicDir, cfg.BaseURL, time.Now())
		if err != nil {
			return err
		}
		fmt.Println("sitemap written to", path)
		return nil
	},
}

func init() {
	publishStaticCmd.Flags().String("root-dir", ".", "site root containing the static files")

	rootCmd.AddCommand(publishStaticCmd)
	rootCmd.AddCommand(sitemapCmd)
}
