package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"text/tabwriter"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/anime-shed/vegindex-go/internal/analyzer"
	"github.com/anime-shed/vegindex-go/internal/logger"
	"github.com/anime-shed/vegindex-go/internal/storage"
	"github.com/anime-shed/vegindex-go/internal/strategy"
	"github.com/anime-shed/vegindex-go/internal/visual"
	"github.com/anime-shed/vegindex-go/pkg/rgbvi"
)

func newRootCommand() *cobra.Command {
	var logLevel string

	root := &cobra.Command{
		Use:          "rgbvi",
		Short:        "Compute RGB vegetation indices for image files",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.SetLevel(logLevel)
			logger.Logger.SetOutput(cmd.ErrOrStderr())
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level: debug, info, warn or error")

	root.AddCommand(newListCommand(), newComputeCommand())
	return root
}

func newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the available indices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tKIND\tRANGE\tTITLE")
			for _, f := range rgbvi.All() {
				bounds := "per image"
				if f.Kind == rgbvi.KindFixed {
					bounds = fmt.Sprintf("[%g, %g]", f.Lower, f.Upper)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", f.Name, f.Kind, bounds, f.Title)
			}
			return w.Flush()
		},
	}
}

// computeFlags holds the compute command's options.
type computeFlags struct {
	formulas   []string
	collection string
	colormap   string
	outDir     string
	clahe      bool
	threshold  float64
	jobs       int
}

// fileSummary is the per-file outcome printed once all files finished.
type fileSummary struct {
	path    string
	indices []analyzer.IndexStatistics
	outputs []string
}

func newComputeCommand() *cobra.Command {
	flags := computeFlags{}

	cmd := &cobra.Command{
		Use:   "compute [flags] FILE...",
		Short: "Compute indices and write one colourized PNG per index",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			summaries, err := runCompute(cmd.Context(), flags, args)
			if err != nil {
				return err
			}
			return printSummaries(cmd.OutOrStdout(), summaries)
		},
	}

	cmd.Flags().StringSliceVarP(&flags.formulas, "formula", "f", nil, "indices to compute (repeatable); overrides --collection")
	cmd.Flags().StringVar(&flags.collection, "collection", strategy.CollectionAll, "all, linear or normalized")
	cmd.Flags().StringVarP(&flags.colormap, "colormap", "c", visual.Vegetation, "colormap: "+strings.Join(visual.ColormapNames(), ", "))
	cmd.Flags().StringVarP(&flags.outDir, "out", "o", ".", "output directory")
	cmd.Flags().BoolVar(&flags.clahe, "clahe", false, "equalize lightness before computing")
	cmd.Flags().Float64Var(&flags.threshold, "vegetation-threshold", analyzer.DefaultVegetationThreshold, "normalized value counted as vegetation")
	cmd.Flags().IntVarP(&flags.jobs, "jobs", "j", runtime.NumCPU(), "files processed concurrently")
	return cmd
}

func runCompute(ctx context.Context, flags computeFlags, paths []string) ([]fileSummary, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if flags.threshold < 0 || flags.threshold > 1 {
		return nil, fmt.Errorf("vegetation threshold must be within [0, 1] (got %g)", flags.threshold)
	}
	selection, err := strategy.ForRequest(flags.collection, flags.formulas)
	if err != nil {
		return nil, err
	}
	formulas := selection.Formulas()
	cm, err := visual.ColormapByName(strings.ToLower(flags.colormap))
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(flags.outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	fetcher := storage.NewFileImageFetcher("", storage.DefaultLimits())
	calc := analyzer.NewStatisticsCalculator()
	summaries := make([]fileSummary, len(paths))
	stems := outputStems(paths)

	g, ctx := errgroup.WithContext(ctx)
	if flags.jobs > 0 {
		g.SetLimit(flags.jobs)
	}
	for i, path := range paths {
		g.Go(func() error {
			src, err := fetcher.FetchImage(ctx, path)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			if flags.clahe {
				src = visual.CLAHE(src, visual.DefaultCLAHEOptions())
			}
			img := rgbvi.FromImage(src)
			hook := logger.DiagnosticsHook(logger.WithField("file", path))
			base := stems[i]

			summary := fileSummary{path: path}
			for _, name := range formulas {
				if err := ctx.Err(); err != nil {
					return err
				}
				formula := rgbvi.MustLookup(name)
				res, err := formula.Func(img, rgbvi.WithHook(hook))
				if err != nil {
					return fmt.Errorf("%s: compute %s: %w", path, name, err)
				}
				data, err := visual.RenderPNG(res, cm)
				if err != nil {
					return fmt.Errorf("%s: render %s: %w", path, name, err)
				}
				out := filepath.Join(flags.outDir, base+"_"+name+".png")
				if err := os.WriteFile(out, data, 0o644); err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				summary.indices = append(summary.indices, calc.Summarize(formula, res, flags.threshold, analyzer.DefaultHistogramBins))
				summary.outputs = append(summary.outputs, out)
			}

			logger.WithFields(logrus.Fields{
				"file":    path,
				"indices": len(summary.indices),
			}).Info("File processed")
			summaries[i] = summary
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return summaries, nil
}

// outputStems names the outputs of each input after its base name without
// extension. Inputs sharing a stem, such as a/DJI_0001.png and b/DJI_0001.png
// or x.png and x.jpg, keep it for the first occurrence and get a -2, -3, ...
// suffix after that. Stems are compared case-insensitively and a suffix never
// reuses another input's stem.
func outputStems(paths []string) []string {
	stem := func(path string) string {
		return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	reserved := make(map[string]bool, len(paths))
	for _, path := range paths {
		reserved[strings.ToLower(stem(path))] = true
	}

	used := make(map[string]bool, len(paths))
	stems := make([]string, len(paths))
	for i, path := range paths {
		name := stem(path)
		if !used[strings.ToLower(name)] {
			used[strings.ToLower(name)] = true
			stems[i] = name
			continue
		}
		for n := 2; ; n++ {
			candidate := fmt.Sprintf("%s-%d", name, n)
			key := strings.ToLower(candidate)
			if !used[key] && !reserved[key] {
				used[key] = true
				stems[i] = candidate
				break
			}
		}
	}
	return stems
}

func printSummaries(out io.Writer, summaries []fileSummary) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "FILE\tINDEX\tMEAN\tSTDDEV\tVEGETATION\tOUTPUT")
	for _, s := range summaries {
		for i, stats := range s.indices {
			fmt.Fprintf(w, "%s\t%s\t%.3f\t%.3f\t%.1f%%\t%s\n",
				s.path, stats.Formula, stats.Mean, stats.StdDev, stats.VegetationFraction*100, s.outputs[i])
		}
	}
	return w.Flush()
}
