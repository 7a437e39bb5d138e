package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"purchase-explorer/config"
	"purchase-explorer/models"
	"purchase-explorer/render"
	"purchase-explorer/server"
	"purchase-explorer/services"
	"purchase-explorer/snapshot"
	"purchase-explorer/storage"
	"purchase-explorer/utils"
	"purchase-explorer/viewer"
)

var (
	cfg    *config.Config
	logger *utils.Logger

	dataFlag   string
	sourceFlag string
	regionFlag string
	levelFlag  string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "purchase-explorer",
		Short: "Explore retail purchase amounts by gender and age for one region",
		Long: `purchase-explorer loads the shopping-behaviour dataset, keeps one region,
and shows total purchase amount per gender next to a histogram of individual
purchase amounts. An age slider narrows both charts to customers up to a
chosen age; clicking a bar focuses the histogram on that gender.`,
		SilenceUsage:      true,
		PersistentPreRunE: setup,
	}

	rootCmd.PersistentFlags().StringVar(&dataFlag, "data", "", "Dataset file: .csv, .csv.gz, .csv.xz or .xlsx (default $DATA_FILE)")
	rootCmd.PersistentFlags().StringVar(&sourceFlag, "source", "", "Data source: file or postgres (default $DATA_SOURCE)")
	rootCmd.PersistentFlags().StringVar(&regionFlag, "region", "", "Region to explore (default $REGION)")
	rootCmd.PersistentFlags().StringVar(&levelFlag, "log-level", "", "debug, info, warn or error (default $LOG_LEVEL)")

	rootCmd.AddCommand(
		serveCmd(),
		summaryCmd(),
		renderCmd(),
		exportCmd(),
		importCmd(),
		screenshotCmd(),
	)

	err := rootCmd.Execute()
	if logger != nil {
		if err != nil {
			logger.Error("%v", err)
		}
		logger.Sync()
	}
	if err != nil {
		os.Exit(1)
	}
}

func setup(cmd *cobra.Command, args []string) error {
	cfg = config.Load()
	if dataFlag != "" {
		cfg.DataFile = dataFlag
	}
	if sourceFlag != "" {
		cfg.DataSource = sourceFlag
	}
	if regionFlag != "" {
		cfg.Region = regionFlag
	}
	if levelFlag != "" {
		cfg.LogLevel = levelFlag
	}
	if cfg.DataSource != config.SourceFile && cfg.DataSource != config.SourcePostgres {
		return fmt.Errorf("unknown data source %q (want %s or %s)", cfg.DataSource, config.SourceFile, config.SourcePostgres)
	}
	logger = utils.NewLogger(cfg.LogLevel)
	return nil
}

func retryConfig() *utils.RetryConfig {
	return &utils.RetryConfig{
		MaxAttempts: cfg.MaxRetries,
		BaseDelay:   time.Second,
		Logger:      logger,
	}
}

// openSource returns the configured purchase source.
func openSource(ctx context.Context) (storage.PurchaseSource, error) {
	if cfg.DataSource == config.SourcePostgres {
		store, err := storage.NewPostgresStore(ctx, cfg.DSN(), retryConfig())
		if err != nil {
			return nil, err
		}
		return store, nil
	}
	return storage.NewFileSource(cfg.DataFile), nil
}

// loadDataset reads the active source and keeps the configured region.
func loadDataset(ctx context.Context) ([]models.Purchase, error) {
	src, err := openSource(ctx)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	logger.Info("Loading purchases from %s source", cfg.DataSource)
	raw, err := src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load purchases: %w", err)
	}

	dataset, _ := services.NewCleaner(logger).Clean(raw, cfg.Region)
	if len(dataset) == 0 {
		return nil, fmt.Errorf("region %q: %w", cfg.Region, services.ErrEmptyDataset)
	}
	return dataset, nil
}

func newController(ctx context.Context) (*viewer.Controller, error) {
	dataset, err := loadDataset(ctx)
	if err != nil {
		return nil, err
	}
	return viewer.New(cfg.Region, dataset, logger)
}

func newServer(ctrl *viewer.Controller) (*server.Server, error) {
	w, err := render.NewWriter(render.DefaultLayout)
	if err != nil {
		return nil, err
	}
	return server.New(ctrl, w, logger), nil
}

func serveCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the interactive viewer",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			ctrl, err := newController(ctx)
			if err != nil {
				return err
			}
			srv, err := newServer(ctrl)
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.ListenAddr
			}
			return srv.Serve(ctx, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default $LISTEN_ADDR)")
	return cmd
}

func summaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Print totals, per-gender rows and an amount histogram",
		RunE: func(cmd *cobra.Command, args []string) error {
			dataset, err := loadDataset(cmd.Context())
			if err != nil {
				return err
			}
			svc := services.NewInsightService(logger)
			svc.Print(os.Stdout, svc.Generate(cfg.Region, dataset))
			return nil
		},
	}
}

// applyView moves ctrl to the requested bound and selection.
func applyView(ctrl *viewer.Controller, age int, category string) viewer.View {
	v := ctrl.View()
	if age > 0 {
		v = ctrl.SetAgeBound(age)
	}
	if category != "" {
		v = ctrl.Dispatch(viewer.CategoryClicked{Category: category})
	}
	return v
}

func renderCmd() *cobra.Command {
	var (
		age      int
		category string
		out      string
	)
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Write a self-contained HTML snapshot of the charts",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, err := newController(cmd.Context())
			if err != nil {
				return err
			}
			v := applyView(ctrl, age, category)

			w, err := render.NewWriter(render.DefaultLayout)
			if err != nil {
				return err
			}
			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("create %s: %w", out, err)
			}
			defer f.Close()

			if err := w.Page(f, v, render.PageOptions{Static: true}); err != nil {
				return err
			}
			logger.Info("Wrote %s (%s, selection %s)", out, v.BoundLabel, v.SelectionName)
			return nil
		},
	}
	cmd.Flags().IntVar(&age, "age", 0, "Age upper bound (default: the oldest customer)")
	cmd.Flags().StringVar(&category, "select", "", "Gender to focus the histogram on")
	cmd.Flags().StringVarP(&out, "output", "o", "purchases.html", "Output HTML file")
	return cmd
}

func exportCmd() *cobra.Command {
	var (
		dir      string
		format   string
		age      int
		category string
		sweep    bool
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the charts as PNG or SVG images",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := render.ParseFormat(format)
			if err != nil {
				return err
			}
			if dir == "" {
				dir = cfg.ExportDir
			}
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create %s: %w", dir, err)
			}

			dataset, err := loadDataset(cmd.Context())
			if err != nil {
				return err
			}
			probe, err := viewer.New(cfg.Region, dataset, logger)
			if err != nil {
				return err
			}

			bounds := []int{age}
			if sweep {
				if bounds, err = sweepBounds(probe.Bounds()); err != nil {
					return err
				}
			}

			pool := utils.NewWorkerPool(cfg.MaxConcurrency, 0)
			var errs utils.ErrorGroup
			for _, b := range bounds {
				pool.Submit(func() {
					ctrl, err := viewer.New(cfg.Region, dataset, logger)
					if err != nil {
						errs.Report(err)
						return
					}
					errs.Report(exportView(dir, f, applyView(ctrl, b, category)))
				})
			}
			pool.Wait()

			if err := errs.Err(); err != nil {
				return err
			}
			logger.Info("Exported %d view(s) to %s", len(bounds), dir)
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "Output directory (default $EXPORT_DIR)")
	cmd.Flags().StringVar(&format, "format", "png", "Image format: png or svg")
	cmd.Flags().IntVar(&age, "age", 0, "Age upper bound (default: the oldest customer)")
	cmd.Flags().StringVar(&category, "select", "", "Gender to focus the histogram on")
	cmd.Flags().BoolVar(&sweep, "sweep", false, "Export one pair of charts per age bound from youngest to oldest")
	return cmd
}

// maxSweep caps how many age bounds one export run may render.
const maxSweep = 1000

func sweepBounds(b viewer.Bounds) ([]int, error) {
	if b.Min < 0 || b.Max < b.Min || b.Max-b.Min >= maxSweep {
		return nil, fmt.Errorf("cannot sweep ages %d-%d", b.Min, b.Max)
	}
	out := make([]int, 0, b.Max-b.Min+1)
	for v := b.Min; v <= b.Max; v++ {
		out = append(out, v)
	}
	return out, nil
}

func exportName(region, chartName string, bound int, f render.Format) string {
	slug := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(region)), " ", "-")
	return fmt.Sprintf("%s-%s-age-%d.%s", slug, chartName, bound, f)
}

func exportView(dir string, f render.Format, v viewer.View) error {
	if v.Empty {
		logger.Warn("Skipping export for %s: %s", v.BoundLabel, v.Message)
		return nil
	}
	charts := []struct {
		name string
		draw func(*os.File) error
	}{
		{"bars", func(out *os.File) error { return render.ExportBarChart(out, v, f) }},
		{"histogram", func(out *os.File) error { return render.ExportHistogram(out, v, f) }},
	}
	for _, c := range charts {
		path := filepath.Join(dir, exportName(v.Region, c.name, v.Bound, f))
		out, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create %s: %w", path, err)
		}
		err = c.draw(out)
		if cerr := out.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return fmt.Errorf("export %s: %w", path, err)
		}
		logger.Debug("Wrote %s", path)
	}
	return nil
}

func importCmd() *cobra.Command {
	var input string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load a dataset file and store the region's purchases in PostgreSQL",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if input != "" {
				cfg.DataFile = input
			}
			cfg.DataSource = config.SourceFile

			dataset, err := loadDataset(ctx)
			if err != nil {
				return err
			}

			store, err := storage.NewPostgresStore(ctx, cfg.DSN(), retryConfig())
			if err != nil {
				logger.Error("Make sure PostgreSQL is running: docker compose up -d")
				return err
			}
			defer store.Close()

			if err := store.Write(ctx, dataset); err != nil {
				return err
			}
			logger.Info("Stored %d purchases for %s in PostgreSQL (table: purchases)", len(dataset), cfg.Region)
			return nil
		},
	}
	cmd.Flags().StringVar(&input, "input", "", "Dataset file to import (default $DATA_FILE)")
	return cmd
}

func screenshotCmd() *cobra.Command {
	var (
		pageURL string
		dir     string
		ages    string
	)
	cmd := &cobra.Command{
		Use:   "screenshot",
		Short: "Capture PNG screenshots of the viewer with headless Chrome",
		Long: `screenshot opens the viewer in headless Chrome, moves the age slider to
each requested bound and saves the chart area as PNG. Without --url it
starts a private viewer on a loopback port for the duration of the run.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			bounds, err := parseBounds(ages)
			if err != nil {
				return err
			}
			if dir == "" {
				dir = cfg.ExportDir
			}

			if pageURL == "" {
				ctrl, err := newController(ctx)
				if err != nil {
					return err
				}
				srv, err := newServer(ctrl)
				if err != nil {
					return err
				}
				ln, err := net.Listen("tcp", "127.0.0.1:0")
				if err != nil {
					return fmt.Errorf("listen: %w", err)
				}
				hs := &http.Server{Handler: srv.Routes(), ReadHeaderTimeout: 5 * time.Second}
				go func() {
					if err := hs.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
						logger.Error("private viewer: %v", err)
					}
				}()
				defer hs.Close()
				pageURL = "http://" + ln.Addr().String() + "/"
			}

			shots, err := snapshot.New(cfg, logger).Capture(ctx, pageURL, dir, cfg.Region, bounds)
			if err != nil {
				return err
			}
			logger.Info("Captured %d screenshot(s) in %s", len(shots), dir)
			return nil
		},
	}
	cmd.Flags().StringVar(&pageURL, "url", "", "Viewer URL (default: start one in-process)")
	cmd.Flags().StringVar(&dir, "dir", "", "Output directory (default $EXPORT_DIR)")
	cmd.Flags().StringVar(&ages, "ages", "0", "Comma-separated age bounds; 0 keeps the page as loaded")
	return cmd
}

// parseBounds reads a comma-separated list of non-negative ages.
func parseBounds(s string) ([]int, error) {
	var out []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid age bound %q", part)
		}
		out = append(out, n)
	}
	if len(out) == 0 {
		return nil, errors.New("no age bounds given")
	}
	return out, nil
}
