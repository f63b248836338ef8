package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/standardbeagle/lsi/internal/config"
	"github.com/standardbeagle/lsi/internal/index"
	"github.com/standardbeagle/lsi/internal/indexing"
	"github.com/standardbeagle/lsi/internal/mcp"
	"github.com/standardbeagle/lsi/internal/types"
	"github.com/standardbeagle/lsi/internal/version"
	"github.com/standardbeagle/lsi/internal/yamlcodec"
)

// loadConfigWithOverrides loads the project config and applies CLI flag
// overrides on top.
func loadConfigWithOverrides(c *cli.Context) (*config.Config, error) {
	root := c.String("root")
	if root == "" {
		root = "."
	}
	cfg, err := config.Load(root)
	if err != nil {
		return nil, err
	}
	if include := c.StringSlice("include"); len(include) > 0 {
		cfg.Index.Include = include
	}
	if exclude := c.StringSlice("exclude"); len(exclude) > 0 {
		cfg.Index.Exclude = append(cfg.Index.Exclude, exclude...)
	}
	if scheme := c.String("uri-scheme"); scheme != "" {
		cfg.Index.URIScheme = scheme
	}
	return cfg, nil
}

// buildIndex scans the project tree into a fresh index.
func buildIndex(ctx context.Context, cfg *config.Config) (*index.FileIndex, *indexing.Scanner, error) {
	fi := index.NewFileIndexWithScheme(cfg.Index.URIScheme)
	scanner := indexing.NewScanner(cfg, fi)
	count, err := scanner.Scan(ctx)
	if err != nil {
		return nil, nil, err
	}
	log.Printf("indexed %d files under %s", count, cfg.Project.Root)
	return fi, scanner, nil
}

func main() {
	app := &cli.App{
		Name:                   "lsi",
		Usage:                  "File-granularity symbol index with incremental updates",
		Version:                version.Version,
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "root",
				Aliases: []string{"r"},
				Usage:   "Project root directory (default: current directory)",
			},
			&cli.StringSliceFlag{
				Name:  "include",
				Usage: "Only index files matching these glob patterns",
			},
			&cli.StringSliceFlag{
				Name:  "exclude",
				Usage: "Skip files matching these glob patterns",
			},
			&cli.StringFlag{
				Name:  "uri-scheme",
				Usage: "URI scheme for reported locations",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "index",
				Usage:  "Scan the project and print index statistics",
				Action: runIndex,
			},
			{
				Name:      "search",
				Usage:     "Fuzzy-search indexed symbols",
				ArgsUsage: "[query]",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Usage:   "Maximum results (0 uses the configured default)",
					},
					&cli.StringSliceFlag{
						Name:  "scope",
						Usage: "Restrict to exact scopes, e.g. 'ns::'",
					},
				},
				Action: runSearch,
			},
			{
				Name:   "serve",
				Usage:  "Serve the index over MCP on stdio, keeping it fresh with a file watcher",
				Action: runServe,
			},
			{
				Name:   "dump",
				Usage:  "Write every indexed symbol to stdout as YAML",
				Action: runDump,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "lsi:", err)
		os.Exit(1)
	}
}

func runIndex(c *cli.Context) error {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}
	fi, _, err := buildIndex(c.Context, cfg)
	if err != nil {
		return err
	}
	stats := fi.Stats()
	fmt.Printf("files:   %d\nsymbols: %d\nmemory:  %d bytes\n",
		stats.Files, stats.Symbols, stats.MemoryBytes)
	return nil
}

func runSearch(c *cli.Context) error {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}
	fi, _, err := buildIndex(c.Context, cfg)
	if err != nil {
		return err
	}

	limit := c.Int("limit")
	if limit <= 0 {
		limit = cfg.Search.MaxResults
	}
	req := &index.FuzzyFindRequest{
		Query:  c.Args().First(),
		Scopes: c.StringSlice("scope"),
		Limit:  limit,
	}
	complete := fi.FuzzyFind(req, func(sym *types.Symbol) {
		loc := sym.Definition
		if loc.IsZero() {
			loc = sym.CanonicalDeclaration
		}
		fmt.Printf("%s\t%s\t%s:%d:%d\n",
			sym.QualifiedName(), sym.SymInfo.Kind,
			loc.FileURI, loc.Start.Line+1, loc.Start.Column+1)
	})
	if !complete {
		fmt.Fprintln(os.Stderr, "(truncated; raise --limit for more)")
	}
	return nil
}

func runServe(c *cli.Context) error {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	fi, scanner, err := buildIndex(ctx, cfg)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)

	debounce := time.Duration(cfg.Watch.DebounceMs) * time.Millisecond
	watcher, err := indexing.NewWatcher(scanner, debounce)
	if err != nil {
		return err
	}
	g.Go(func() error {
		return watcher.Run(ctx)
	})
	g.Go(func() error {
		return mcp.NewServer(fi, cfg).Run(ctx)
	})

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func runDump(c *cli.Context) error {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}
	fi, _, err := buildIndex(c.Context, cfg)
	if err != nil {
		return err
	}

	var symbols []*types.Symbol
	fi.FuzzyFind(&index.FuzzyFindRequest{}, func(sym *types.Symbol) {
		symbols = append(symbols, sym)
	})
	return yamlcodec.WriteSymbols(os.Stdout, symbols)
}
