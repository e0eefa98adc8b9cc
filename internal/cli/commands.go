package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rohmanhakim/seraphim/internal/build"
	"github.com/rohmanhakim/seraphim/internal/catalog"
	"github.com/rohmanhakim/seraphim/internal/namecodec"
	"github.com/rohmanhakim/seraphim/internal/render"
	"github.com/rohmanhakim/seraphim/internal/search"
	"github.com/rohmanhakim/seraphim/pkg/fileutil"
	"github.com/spf13/cobra"
)

// suggestionLimit caps "did you mean" output.
const suggestionLimit = 3

var (
	modelsFilter string
	renderFormat string
	renderOutput string
)

var brandsCmd = &cobra.Command{
	Use:   "brands",
	Short: "List every brand in the catalog",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, appOptions{}, func(ctx context.Context, a *app) error {
			brands, err := a.service.Brands(ctx, catalog.FetchOptions{ForceRefresh: forceRefresh})
			if err != nil {
				return err
			}
			summaries, _ := a.service.Summaries()
			if jsonOutput {
				if len(summaries) > 0 {
					return writeJSON(cmd.OutOrStdout(), summaries)
				}
				return writeJSON(cmd.OutOrStdout(), brands)
			}
			return printBrands(cmd.OutOrStdout(), brands, summaries)
		})
	},
}

var modelsCmd = &cobra.Command{
	Use:   "models <slug>",
	Short: "Show the models of one brand",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		slug := args[0]
		return withApp(cmd, appOptions{}, func(ctx context.Context, a *app) error {
			records, err := a.service.Models(ctx, slug, catalog.FetchOptions{ForceRefresh: forceRefresh})
			if err != nil {
				if catalog.IsNotFound(err) {
					suggestBrands(ctx, cmd.ErrOrStderr(), a, slug)
				}
				return err
			}
			records = search.Filter(records, modelsFilter)
			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), records)
			}
			return printRecords(cmd.OutOrStdout(), records)
		})
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search models across all cached brands",
	Long: `Search matches the query against model names, codenames, model numbers and
variant names of every cached brand. When no model matches, brand names are
searched instead. Results come from the cache; run "seraphim load" first for
complete coverage.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")
		return withApp(cmd, appOptions{}, func(ctx context.Context, a *app) error {
			result, err := a.service.Search(ctx, query)
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), result)
			}
			out := cmd.OutOrStdout()
			switch result.Kind {
			case search.KindModels:
				return printModelHits(out, result.Models)
			case search.KindBrands:
				return printBrands(out, result.Brands, nil)
			default:
				fmt.Fprintf(out, "No matches for %q\n", query)
				suggestBrands(ctx, out, a, query)
				return nil
			}
		})
	},
}

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Fetch and cache every brand",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, appOptions{}, func(ctx context.Context, a *app) error {
			report, err := a.service.LoadAll(ctx, catalog.LoadOptions{
				Concurrency:  a.cfg.Concurrency(),
				ForceRefresh: forceRefresh,
			})
			if err != nil {
				return err
			}
			printLoadReport(cmd.OutOrStdout(), cmd.ErrOrStderr(), report)
			if report.Total > 0 && report.Loaded == 0 {
				return fmt.Errorf("no brand could be loaded (%d failed)", report.Failed)
			}
			return nil
		})
	},
}

var renderCmd = &cobra.Command{
	Use:   "render <slug>",
	Short: "Render one brand as canonical markdown or HTML",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		slug := args[0]
		format := render.FormatMarkdown
		if renderFormat != "" {
			f, ok := render.ParseFormat(renderFormat)
			if !ok {
				return fmt.Errorf("unknown format %q (want md or html)", renderFormat)
			}
			format = f
		}
		return withApp(cmd, appOptions{}, func(ctx context.Context, a *app) error {
			records, err := a.service.Models(ctx, slug, catalog.FetchOptions{ForceRefresh: forceRefresh})
			if err != nil {
				if catalog.IsNotFound(err) {
					suggestBrands(ctx, cmd.ErrOrStderr(), a, slug)
				}
				return err
			}
			brand := identityFor(ctx, a, slug)
			doc := render.Render(format, brand, records)
			if renderOutput == "" {
				_, err := io.WriteString(cmd.OutOrStdout(), doc)
				return err
			}
			if err := fileutil.WriteFileAtomic(renderOutput, []byte(doc), 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", renderOutput)
			return nil
		})
	},
}

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and manage the local cache",
}

var cacheInfoCmd = &cobra.Command{
	Use:   "info <key>",
	Short: "Show age and expiry of one cache entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, appOptions{}, func(ctx context.Context, a *app) error {
			info := a.tiered.Info(args[0])
			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), info)
			}
			printCacheInfo(cmd.OutOrStdout(), args[0], info)
			return nil
		})
	},
}

var cacheKeysCmd = &cobra.Command{
	Use:   "keys [prefix]",
	Short: "List cached keys, optionally under a prefix",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		prefix := ""
		if len(args) == 1 {
			prefix = args[0]
		}
		return withApp(cmd, appOptions{strict: true}, func(ctx context.Context, a *app) error {
			keys, err := a.tiered.ListKeysWithPrefix(prefix)
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), keys)
			}
			for _, k := range keys {
				fmt.Fprintln(cmd.OutOrStdout(), prefix+k)
			}
			return nil
		})
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every cache entry from both tiers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, appOptions{strict: true}, func(ctx context.Context, a *app) error {
			if err := a.tiered.Clear(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Cache cleared")
			return nil
		})
	},
}

var cacheDeleteCmd = &cobra.Command{
	Use:   "delete <key>",
	Short: "Remove one cache entry from both tiers",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, appOptions{strict: true}, func(ctx context.Context, a *app) error {
			if err := a.tiered.Delete(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		})
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "seraphim %s (built %s)\n", build.FullVersion(), build.BuildTime)
	},
}

func init() {
	modelsCmd.Flags().StringVar(&modelsFilter, "filter", "", "only show models matching this query")
	renderCmd.Flags().StringVar(&renderFormat, "format", "", "output format: md (default) or html")
	renderCmd.Flags().StringVarP(&renderOutput, "output", "o", "", "write to this file instead of stdout")

	cacheCmd.AddCommand(cacheInfoCmd, cacheKeysCmd, cacheClearCmd, cacheDeleteCmd)
}

// withApp builds the config and app for one command, runs fn and releases
// everything afterwards. Metrics are printed even when fn fails.
func withApp(cmd *cobra.Command, opts appOptions, fn func(ctx context.Context, a *app) error) error {
	cfg, err := InitConfigWithError()
	if err != nil {
		return err
	}
	opts.quiet = quiet
	a, err := newApp(cfg, opts)
	if err != nil {
		return err
	}
	defer a.close()

	runErr := fn(cmd.Context(), a)
	if printMetrics {
		if err := writeMetrics(cmd.ErrOrStderr(), a.registry); err != nil {
			return errors.Join(runErr, err)
		}
	}
	return runErr
}

// suggestBrands prints close brand names for a query that matched nothing.
// It only consults the directory; failures are silently ignored.
func suggestBrands(ctx context.Context, w io.Writer, a *app, query string) {
	brands, err := a.service.Brands(ctx, catalog.FetchOptions{})
	if err != nil {
		return
	}
	suggestions := search.Suggest(brands, query, suggestionLimit)
	if len(suggestions) == 0 {
		return
	}
	names := make([]string, 0, len(suggestions))
	for _, s := range suggestions {
		names = append(names, fmt.Sprintf("%s (%s)", s.Brand.DisplayName, s.Brand.Slug))
	}
	fmt.Fprintf(w, "Did you mean: %s?\n", strings.Join(names, ", "))
}

// identityFor finds slug in the directory, falling back to decoding the
// document name when the directory is unavailable.
func identityFor(ctx context.Context, a *app, slug string) namecodec.BrandIdentity {
	if brands, err := a.service.Brands(ctx, catalog.FetchOptions{}); err == nil {
		for _, b := range brands {
			if b.Slug == slug {
				return b
			}
		}
	}
	return namecodec.Classify(namecodec.DocumentName(slug))
}
