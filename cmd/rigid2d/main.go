package main

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gocarina/gocsv"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/rigid2d/internal/config"
	"github.com/san-kum/rigid2d/internal/engine"
	"github.com/san-kum/rigid2d/internal/metrics"
	"github.com/san-kum/rigid2d/internal/optim"
	"github.com/san-kum/rigid2d/internal/sim"
	"github.com/san-kum/rigid2d/internal/storage"
	"github.com/san-kum/rigid2d/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	logLevel   string
	logFormat  string
	configFile string
	dt         float64
	duration   float64
	seed       int64
	workers    int
	record     int
	progress   int
	pace       time.Duration
	jsonOut    string
	// Live view
	stepsPerFrame int
	// SVG output
	svgOut    string
	svgWidth  int
	svgHeight int
	trails    bool
	// Stability threshold for the standard metrics
	restSpeed  float64
	benchSteps int
	// Grid search
	tuneParams []string
	tuneMetric string
)

var log = slog.New(slog.NewTextHandler(os.Stderr, nil))

func main() {
	rootCmd := &cobra.Command{
		Use:   "rigid2d",
		Short: "2D rigid-body penalty collision simulator",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			l, err := newLogger(logLevel, logFormat)
			if err != nil {
				return err
			}
			log = l
			return nil
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".rigid2d", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format (text, json)")

	runCmd := &cobra.Command{
		Use:   "run [preset]",
		Short: "run a scene and store its trace",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runScene,
	}
	sceneFlags(runCmd)
	runCmd.Flags().IntVar(&record, "record", 10, "record body frames every n steps")
	runCmd.Flags().IntVar(&progress, "progress", 100, "log progress every n steps")
	runCmd.Flags().DurationVar(&pace, "pace", 0, "wall-clock delay between steps")
	runCmd.Flags().StringVar(&jsonOut, "json", "", "also export the run as JSON to this path (- for stdout)")
	runCmd.Flags().Float64Var(&restSpeed, "rest-speed", 1.0, "speed below which a step counts as stable")

	liveCmd := &cobra.Command{
		Use:   "live [preset]",
		Short: "run a scene with live terminal visualization",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	sceneFlags(liveCmd)
	liveCmd.Flags().IntVar(&stepsPerFrame, "steps-per-frame", 1, "physics steps per rendered frame")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot energy and body heights of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export a run's trace to CSV on stdout",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id] [path]",
		Short: "export a run to JSON (stdout when path is omitted)",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  exportJSON,
	}

	svgCmd := &cobra.Command{
		Use:   "svg [preset]",
		Short: "run a scene and draw its final state as SVG",
		Args:  cobra.MaximumNArgs(1),
		RunE:  renderSVG,
	}
	sceneFlags(svgCmd)
	svgCmd.Flags().StringVarP(&svgOut, "output", "o", "scene.svg", "output file (- for stdout)")
	svgCmd.Flags().IntVar(&svgWidth, "width", 800, "image width")
	svgCmd.Flags().IntVar(&svgHeight, "height", 500, "image height")
	svgCmd.Flags().BoolVar(&trails, "trails", false, "draw body trajectories instead of the final state")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list built-in scenes",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tBODIES\tRANDOM\tDT\tDURATION")
			for _, name := range config.ListPresets() {
				cfg := config.GetPreset(name)
				fmt.Fprintf(w, "%s\t%d\t%d\t%.3f\t%.1fs\n",
					name, len(cfg.Bodies), cfg.RandomCircles.Count, cfg.Dt, cfg.Duration)
			}
			return w.Flush()
		},
	}

	benchCmd := &cobra.Command{
		Use:   "bench [preset]",
		Short: "benchmark the tick of a scene",
		Args:  cobra.MaximumNArgs(1),
		RunE:  benchScene,
	}
	sceneFlags(benchCmd)
	benchCmd.Flags().IntVar(&benchSteps, "steps", 1000, "steps per measurement")

	tuneCmd := &cobra.Command{
		Use:   "tune [preset]",
		Short: "grid search scene parameters for the smallest metric value",
		Args:  cobra.MaximumNArgs(1),
		RunE:  tuneScene,
	}
	sceneFlags(tuneCmd)
	tuneCmd.Flags().StringArrayVar(&tuneParams, "param", nil, "parameter grid, e.g. stiffness=20000,50000 (repeatable)")
	tuneCmd.Flags().StringVar(&tuneMetric, "metric", "energy_spread", "metric to minimise")
	tuneCmd.Flags().Float64Var(&restSpeed, "rest-speed", 1.0, "speed below which a step counts as stable")

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, plotCmd, exportCSVCmd, exportJSONCmd, svgCmd, presetsCmd, benchCmd, tuneCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func sceneFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "scene file path (yaml)")
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration")
	cmd.Flags().Int64Var(&seed, "seed", 1, "random seed for random_circles")
	cmd.Flags().IntVar(&workers, "workers", 0, "collision workers (0 or 1 runs sequentially)")
}

func newLogger(level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	opts := &slog.HandlerOptions{Level: lvl}

	switch format {
	case "text":
		return slog.New(slog.NewTextHandler(os.Stderr, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(os.Stderr, opts)), nil
	default:
		return nil, fmt.Errorf("invalid log format %q (text, json)", format)
	}
}

// loadScene resolves the scene from --config or a preset name (default
// "drop"); flags that were set explicitly override the scene file.
func loadScene(cmd *cobra.Command, args []string) (*config.Config, error) {
	var cfg *config.Config
	if configFile != "" {
		c, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = c
	} else {
		name := "drop"
		if len(args) > 0 {
			name = args[0]
		}
		cfg = config.GetPreset(name)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", name, config.ListPresets())
		}
	}

	flags := cmd.Flags()
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("time") {
		cfg.Duration = duration
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	return cfg, cfg.Validate()
}

func bounds(v config.View) viz.Bounds {
	return viz.Bounds{MinX: v.MinX, MinY: v.MinY, MaxX: v.MaxX, MaxY: v.MaxY}
}

func runScene(cmd *cobra.Command, args []string) error {
	cfg, err := loadScene(cmd, args)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	sys, err := cfg.Build(engine.WithLogger(log))
	if err != nil {
		return err
	}

	driver := sim.New(sys)
	driver.SetLogger(log)
	for _, m := range metrics.Standard(restSpeed) {
		driver.AddMetric(m)
	}

	runCfg := cfg.RunConfig()
	runCfg.RecordEvery = record
	runCfg.ProgressEvery = progress
	runCfg.Pace = pace

	fmt.Printf("running %s (%d bodies)...\n", cfg.Name, sys.Len())
	result, err := driver.Run(cmd.Context(), runCfg)
	if err != nil && result == nil {
		return err
	}
	if err != nil {
		log.Warn("run incomplete, saving partial trace", "err", err)
	}

	meta := storage.RunMetadata{
		Scene:    cfg.Name,
		Seed:     cfg.Seed,
		Dt:       cfg.Dt,
		Duration: cfg.Duration,
		Gravity:  cfg.Gravity,
		Bodies:   sys.Len(),
	}
	runID, saveErr := st.Save(meta, result)
	if saveErr != nil {
		return saveErr
	}

	fmt.Printf("completed in %v\n", result.Elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", result.StepsTaken)
	fmt.Printf("energy drift: %.6f\n", result.EnergyDrift)
	fmt.Println("\nmetrics:")
	for _, m := range metrics.Standard(restSpeed) {
		fmt.Printf("  %s: %.6f\n", m.Name(), result.Metrics[m.Name()])
	}

	if jsonOut != "" {
		stored, loadErr := st.Load(runID)
		if loadErr != nil {
			return loadErr
		}
		if exportErr := storage.ExportJSON(jsonOut, *stored, result); exportErr != nil {
			return exportErr
		}
	}
	return err
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadScene(cmd, args)
	if err != nil {
		return err
	}

	build := func() (*engine.System, error) { return cfg.Build(engine.WithLogger(log)) }
	m, err := viz.NewModel(cfg.Name, build, cfg.Dt, stepsPerFrame, bounds(cfg.View))
	if err != nil {
		return err
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	return err
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCENE\tTIME\tBODIES\tSTEPS\tDT\tDRIFT")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%.4fs\t%.4f\n",
			run.ID,
			run.Scene,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Bodies,
			run.Steps,
			run.Dt,
			run.Metrics["energy_drift"],
		)
	}

	return w.Flush()
}

const maxPlottedBodies = 4

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, result, err := st.LoadResult(runID)
	if err != nil {
		return err
	}
	if len(result.Energy) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("scene: %s\n", meta.Scene)
	fmt.Printf("samples: %d\n\n", len(result.Energy))

	fmt.Println(asciigraph.Plot(result.Energy,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("total energy"),
	))
	fmt.Println()

	heights := make(map[uint64][]float64)
	order := make([]uint64, 0)
	for _, f := range result.Frames {
		for _, b := range f.Bodies {
			if !b.Movable() {
				continue
			}
			if _, ok := heights[b.ID]; !ok {
				if len(order) == maxPlottedBodies {
					continue
				}
				order = append(order, b.ID)
			}
			heights[b.ID] = append(heights[b.ID], b.Y)
		}
	}

	for _, id := range order {
		if len(heights[id]) < 2 {
			continue
		}
		fmt.Println(asciigraph.Plot(heights[id],
			asciigraph.Height(8),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("body %d height", id)),
		))
		fmt.Println()
	}

	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	rows, err := st.LoadTrace(args[0])
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("no data to export")
	}
	return gocsv.Marshal(rows, os.Stdout)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, result, err := st.LoadResult(args[0])
	if err != nil {
		return err
	}

	path := "-"
	if len(args) == 2 {
		path = args[1]
	}
	return storage.ExportJSON(path, *meta, result)
}

func renderSVG(cmd *cobra.Command, args []string) error {
	cfg, err := loadScene(cmd, args)
	if err != nil {
		return err
	}

	sys, err := cfg.Build(engine.WithLogger(log))
	if err != nil {
		return err
	}

	driver := sim.New(sys)
	driver.SetLogger(log)
	runCfg := cfg.RunConfig()
	if trails {
		runCfg.RecordEvery = 1
	}
	result, err := driver.Run(cmd.Context(), runCfg)
	if err != nil {
		return err
	}

	final := sys.Snapshot()
	view := bounds(cfg.View)
	if view.Empty() {
		view = viz.Fit(final, 5)
	}

	var doc string
	if trails {
		paths := make(map[uint64][][2]float64)
		for _, f := range result.Frames {
			for _, b := range f.Bodies {
				if b.Movable() {
					paths[b.ID] = append(paths[b.ID], [2]float64{b.X, b.Y})
				}
			}
		}
		doc = viz.TrajectorySVG(paths, view, svgWidth, svgHeight, "#00ff88")
	} else {
		doc = viz.SnapshotSVG(final, view, svgWidth, svgHeight)
	}

	if svgOut == "-" {
		_, err = fmt.Print(doc)
		return err
	}
	if err := os.WriteFile(svgOut, []byte(doc), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s (%d bodies, t=%.2fs)\n", svgOut, len(final), result.Times[len(result.Times)-1])
	return nil
}

func benchScene(cmd *cobra.Command, args []string) error {
	cfg, err := loadScene(cmd, args)
	if err != nil {
		return err
	}

	fmt.Printf("benchmarking %s\n\n", cfg.Name)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "WORKERS\tBODIES\tSTEPS\tTIME\tSTEPS/SEC\tCONTACTS")

	for _, n := range []int{1, 2, 4, 8} {
		c := cfg.Clone()
		c.Workers = n
		sys, err := c.Build()
		if err != nil {
			return err
		}

		start := time.Now()
		contacts := 0
		for i := 0; i < benchSteps; i++ {
			sys.Step(c.Dt)
			contacts += sys.Stats().Contacts
		}
		elapsed := time.Since(start)
		if !sys.Finite() {
			return fmt.Errorf("%s diverged with %d workers", cfg.Name, n)
		}

		fmt.Fprintf(w, "%d\t%d\t%d\t%v\t%.0f\t%.1f\n",
			n, sys.Len(), benchSteps, elapsed.Round(time.Microsecond),
			float64(benchSteps)/math.Max(elapsed.Seconds(), 1e-9),
			float64(contacts)/float64(benchSteps))
	}

	return w.Flush()
}

// parseGrid turns "name=v1,v2,..." flags into grid search ranges.
func parseGrid(specs []string) ([]string, [][]float64, error) {
	names := make([]string, 0, len(specs))
	ranges := make([][]float64, 0, len(specs))
	for _, spec := range specs {
		name, list, ok := strings.Cut(spec, "=")
		if !ok || name == "" {
			return nil, nil, fmt.Errorf("invalid --param %q (want name=v1,v2)", spec)
		}
		values := make([]float64, 0)
		for _, field := range strings.Split(list, ",") {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, nil, fmt.Errorf("--param %s: %w", name, err)
			}
			values = append(values, v)
		}
		names = append(names, name)
		ranges = append(ranges, values)
	}
	return names, ranges, nil
}

func tuneScene(cmd *cobra.Command, args []string) error {
	cfg, err := loadScene(cmd, args)
	if err != nil {
		return err
	}
	if len(tuneParams) == 0 {
		return fmt.Errorf("at least one --param is required")
	}

	names, ranges, err := parseGrid(tuneParams)
	if err != nil {
		return err
	}
	search, err := optim.NewGridSearch(names, ranges)
	if err != nil {
		return err
	}

	build := func(params map[string]float64) (*sim.Driver, sim.Config, error) {
		c := cfg.Clone()
		for name, v := range params {
			if err := c.SetParam(name, v); err != nil {
				return nil, sim.Config{}, err
			}
		}
		sys, err := c.Build(engine.WithLogger(log))
		if err != nil {
			return nil, sim.Config{}, err
		}
		d := sim.New(sys)
		for _, m := range metrics.Standard(restSpeed) {
			d.AddMetric(m)
		}
		return d, c.RunConfig(), nil
	}

	fmt.Printf("tuning %s over %d points...\n", cfg.Name, search.Size())
	best, val, trials, err := search.Search(cmd.Context(), build, tuneMetric)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PARAMS\t"+strings.ToUpper(tuneMetric))
	for _, tr := range trials {
		keys := make([]string, 0, len(tr.Params))
		for k := range tr.Params {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = fmt.Sprintf("%s=%g", k, tr.Params[k])
		}
		if tr.Err != nil {
			fmt.Fprintf(w, "%s\terror: %v\n", strings.Join(parts, " "), tr.Err)
			continue
		}
		fmt.Fprintf(w, "%s\t%.6g\n", strings.Join(parts, " "), tr.Value)
	}
	if flushErr := w.Flush(); flushErr != nil {
		return flushErr
	}
	if err != nil {
		return err
	}

	fmt.Printf("\nbest %s = %.6g at %v\n", tuneMetric, val, best)
	return nil
}
