package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"wavewall-mockups/app"
	"wavewall-mockups/models"
)

func main() {
	root := &cobra.Command{
		Use:   "wavewall-mockups",
		Short: "Mockup compositing and caching engine",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env in development; in production variables are set
			// directly in the environment.
			if os.Getenv("ENV") != "production" {
				if err := godotenv.Overload(".env"); err == nil {
					logrus.Info("Loaded environment variables from .env")
				}
			}
		},
	}

	root.AddCommand(serveCmd(), extractCmd(), pregenCmd(), cacheCmd(), templatesCmd())

	if err := root.Execute(); err != nil {
		logrus.Fatal(err)
	}
}

func initApp(ctx context.Context) *app.App {
	a, err := app.Initialize(ctx)
	if err != nil {
		logrus.Fatal(err)
	}
	return a
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the mockup generation HTTP service",
		Run: func(cmd *cobra.Command, args []string) {
			a := initApp(cmd.Context())
			defer a.Close()

			port := os.Getenv("PORT")
			if port == "" {
				port = "8080"
			}
			addr := "0.0.0.0:" + port
			logrus.WithField("addr", addr).Info("Server starting")
			if err := http.ListenAndServe(addr, a.Router); err != nil {
				logrus.Fatalf("Server failed to start: %v", err)
			}
		},
	}
}

func extractCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "extract <source.psd> <template-id>",
		Short: "Extract a layered source file into a template library entry",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := initApp(cmd.Context())
			defer a.Close()

			summary, err := a.Extractor.Extract(args[0], args[1])
			if err != nil {
				return err
			}

			fmt.Printf("Template %s extracted to %s\n", summary.TemplateID, summary.OutputDir)
			fmt.Printf("  canvas:      %dx%d px\n", summary.CanvasWidth, summary.CanvasHeight)
			fmt.Printf("  print area:  x=%.3f y=%.3f w=%.3f h=%.3f\n",
				summary.PrintArea.X, summary.PrintArea.Y, summary.PrintArea.Width, summary.PrintArea.Height)
			fmt.Printf("  layers:      %v\n", summary.ExtractedLayers)
			if summary.DisplacementSynthesized {
				fmt.Println("  displacement map synthesized from base luminance")
			}
			return nil
		},
	}
}

func pregenCmd() *cobra.Command {
	var category string
	var outDir string

	cmd := &cobra.Command{
		Use:   "pregen <design-file>",
		Short: "Pre-generate mockups for a design across all matching templates",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := initApp(cmd.Context())
			defer a.Close()

			design, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read design file: %w", err)
			}

			result, err := a.PreGenerator.GenerateAll(cmd.Context(), models.BatchRequest{
				Design:   design,
				Category: models.Category(category),
			})
			if err != nil {
				return err
			}

			if err := os.MkdirAll(outDir, 0755); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
			for _, m := range result.Mockups {
				path := filepath.Join(outDir, m.TemplateID+".png")
				if err := os.WriteFile(path, m.Buffer, 0644); err != nil {
					logrus.WithError(err).WithField("template_id", m.TemplateID).Warn("Failed to write mockup")
					continue
				}
				fmt.Printf("  %-32s %6dms  cached=%v\n", m.TemplateID, m.RenderTime, m.Cached)
			}
			fmt.Printf("Generated %d/%d mockups into %s (run %s)\n",
				result.Succeeded, result.Requested, outDir, result.RunID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&category, "category", "c", "all", "category filter: wall-art, apparel, all")
	cmd.Flags().StringVarP(&outDir, "out", "o", "mockups", "output directory")
	return cmd
}

func cacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and maintain the mockup cache",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Show cache statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := initApp(cmd.Context())
			defer a.Close()

			stats, err := a.Cache.GetStats()
			if err != nil {
				return err
			}
			fmt.Printf("entries: %d\ntotal:   %d bytes\n", stats.Entries, stats.TotalBytes)
			if !stats.Oldest.IsZero() {
				fmt.Printf("oldest:  %s\nnewest:  %s\n",
					stats.Oldest.Format(time.RFC3339), stats.Newest.Format(time.RFC3339))
			}
			return nil
		},
	})

	var maxAgeHours int
	cleanup := &cobra.Command{
		Use:   "cleanup",
		Short: "Remove cache entries older than the threshold",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := initApp(cmd.Context())
			defer a.Close()

			removed, err := a.Cache.Cleanup(time.Duration(maxAgeHours) * time.Hour)
			if err != nil {
				return err
			}
			fmt.Printf("removed %d entries\n", removed)
			return nil
		},
	}
	cleanup.Flags().IntVar(&maxAgeHours, "max-age-hours", 7*24, "delete entries older than this many hours")
	cmd.AddCommand(cleanup)

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove every cache entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := initApp(cmd.Context())
			defer a.Close()
			return a.Cache.Clear()
		},
	})

	return cmd
}

func templatesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "templates",
		Short: "Inspect the template library",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List all templates",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := initApp(cmd.Context())
			defer a.Close()

			for _, t := range a.Templates.FindTemplates(models.TemplateCriteria{}) {
				fmt.Printf("%-32s %-10s %-8s %-8s area=%.2fx%.2f\n",
					t.ID, t.ProductType, t.Color, t.Angle, t.PrintArea.Width, t.PrintArea.Height)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "scan",
		Short: "Rebuild the library index from template directories",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := initApp(cmd.Context())
			defer a.Close()

			lib, err := a.Templates.Rescan()
			if err != nil {
				return err
			}
			fmt.Printf("library rebuilt: %d templates\n", len(lib.Templates))
			return nil
		},
	})

	return cmd
}
