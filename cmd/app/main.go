package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/wikihugo/internal"
	pkgconfig "github.com/starford/wikihugo/pkg/config"
)

var version = "dev"

// loadConfig reads the config file, applies explicitly set flags on top, and
// validates the result.
func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	configPath := cmd.String("config")

	cfg := internal.NewDefaultConfig()
	if cmd.IsSet("config") {
		if err := pkgconfig.Parse(configPath, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	} else if _, err := pkgconfig.ParseIfExists(configPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	strFlags := map[string]*string{
		"source":       &cfg.Convert.Source,
		"dest":         &cfg.Convert.Destination,
		"xml-data":     &cfg.Convert.XMLData,
		"category-tag": &cfg.Wiki.CategoryTag,
		"image-tag":    &cfg.Wiki.ImageTag,
		"report-db":    &cfg.Report.Path,
	}
	for name, target := range strFlags {
		if cmd.IsSet(name) {
			*target = cmd.String(name)
		}
	}
	boolFlags := map[string]*bool{
		"dry-run":         &cfg.Convert.DryRun,
		"watch":           &cfg.Convert.Watch,
		"prune-redirects": &cfg.Convert.PruneRedirects,
	}
	for name, target := range boolFlags {
		if cmd.IsSet(name) {
			*target = cmd.Bool(name)
		}
	}

	if err := pkgconfig.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runMode(mode internal.Mode) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		opts := []internal.Option{
			internal.WithConfig(cfg),
			internal.WithMode(mode),
			internal.WithVersion(version),
		}

		if err := internal.Run(ctx, opts...); err != nil {
			return fmt.Errorf("app run error: %w", err)
		}
		return nil
	}
}

func main() {
	cmd := &cli.Command{
		Name:    "wikihugo",
		Usage:   "Convert a MediaWiki export in Markdown into a Hugo content tree",
		Version: version,
		Action:  runMode(internal.ModeConvert),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
			&cli.StringFlag{Name: "source", Aliases: []string{"s"}, Usage: "Directory with the exported Markdown pages"},
			&cli.StringFlag{Name: "dest", Aliases: []string{"d"}, Usage: "Hugo content directory to write into"},
			&cli.StringFlag{Name: "category-tag", Usage: "Namespace keyword of category links, e.g. Kategoria"},
			&cli.StringFlag{Name: "image-tag", Usage: "Namespace keyword of image links, e.g. Grafika"},
			&cli.StringFlag{Name: "xml-data", Usage: "MediaWiki XML export with page dates and contributors"},
			&cli.StringFlag{Name: "report-db", Usage: "SQLite file to record the conversion report in"},
			&cli.BoolFlag{Name: "dry-run", Usage: "Log intended writes without touching the destination"},
			&cli.BoolFlag{Name: "watch", Usage: "Keep running and convert again when source pages change"},
			&cli.BoolFlag{Name: "prune-redirects", Usage: "Delete destination files of redirect pages"},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Convert, watch the source tree and serve the conversion report over HTTP",
				Action: runMode(internal.ModeServe),
			},
			{
				Name:   "mcp",
				Usage:  "Serve the conversion report to LLM clients over MCP stdio",
				Action: runMode(internal.ModeMCP),
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
