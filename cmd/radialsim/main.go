package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/log"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/san-kum/radialsim/internal/config"
	"github.com/san-kum/radialsim/internal/dynamo"
	"github.com/san-kum/radialsim/internal/experiment"
	"github.com/san-kum/radialsim/internal/export"
	"github.com/san-kum/radialsim/internal/gui"
	"github.com/san-kum/radialsim/internal/metrics"
	"github.com/san-kum/radialsim/internal/optim"
	"github.com/san-kum/radialsim/internal/serve"
	"github.com/san-kum/radialsim/internal/sim"
	"github.com/san-kum/radialsim/internal/storage"
	"github.com/san-kum/radialsim/internal/tui"
	"github.com/san-kum/radialsim/internal/viz"
)

var (
	dataDir  string
	logLevel string

	configFile  string
	preset      string
	policy      string
	order       string
	seed        int64
	dt          float64
	duration    float64
	recordEvery int
	watch       bool
	frameRate   int

	outFile    string
	runs       int
	frameIndex int
	svgScale   float64
	particleID uint64
	metricName string
	sweepAxes  []string

	theme string
	scale float64

	sshHost    string
	sshPort    string
	sshHostKey string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "radialsim",
		Short:         "2d particle movement and collision lab",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogger()
		},
		RunE: runLive,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".radialsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run [preset|-]",
		Short: "run a scene headless and save it",
		Long:  "run a scene headless and save it. The argument names a preset, or - to read a yaml scene from stdin.",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addSceneFlags(runCmd)
	runCmd.Flags().StringVar(&policy, "policy", "", "collision policy (swap, redirect)")
	runCmd.Flags().StringVar(&order, "order", "", "iteration order (insertion, reverse, shuffle)")
	runCmd.Flags().Int64Var(&seed, "seed", 1, "random seed")
	runCmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	runCmd.Flags().Float64Var(&duration, "duration", config.DefaultDuration, "duration in seconds")
	runCmd.Flags().IntVar(&recordEvery, "record-every", config.DefaultRecordEvery, "record a frame every n steps")
	runCmd.Flags().BoolVar(&watch, "watch", false, "draw frames while running")
	runCmd.Flags().IntVar(&frameRate, "fps", 30, "frame rate for --watch")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot energy and population of a run (latest by default)",
		Args:  cobra.MaximumNArgs(1),
		RunE:  plotRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON (latest by default)",
		Args:  cobra.MaximumNArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outFile, "output", "o", "", "output file (stdout if empty)")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "render a frame or a particle trajectory as SVG (latest by default)",
		Args:  cobra.MaximumNArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&outFile, "output", "o", "", "output file (stdout if empty)")
	exportSVGCmd.Flags().IntVar(&frameIndex, "frame", -1, "frame index, negative counts from the end")
	exportSVGCmd.Flags().Float64Var(&svgScale, "scale", 1, "pixels per world unit")
	exportSVGCmd.Flags().Uint64Var(&particleID, "particle", 0, "draw this particle's trajectory instead of a frame")

	sweepCmd := &cobra.Command{
		Use:   "sweep [preset]",
		Short: "run a preset over every policy and order and rank them by a metric",
		Args:  cobra.MaximumNArgs(1),
		RunE:  sweepScene,
	}
	sweepCmd.Flags().StringVar(&metricName, "metric", "max_penetration", "metric to minimize")
	sweepCmd.Flags().StringSliceVar(&sweepAxes, "axes", []string{"policy", "order"}, "settings to sweep (policy, order, pattern)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list scene presets, policies and spawn patterns",
		RunE:  listPresets,
	}

	benchCmd := &cobra.Command{
		Use:   "bench [preset]",
		Short: "run a preset under consecutive seeds in parallel",
		Args:  cobra.MaximumNArgs(1),
		RunE:  benchScene,
	}
	benchCmd.Flags().IntVar(&runs, "runs", 8, "number of seeds")
	benchCmd.Flags().Int64Var(&seed, "seed", 1, "first seed")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "interactive terminal view",
		RunE:  runLive,
	}
	addSceneFlags(liveCmd)
	liveCmd.Flags().StringVar(&theme, "theme", viz.ThemeNames()[0], "color theme")
	liveCmd.Flags().Float64Var(&scale, "scale", viz.DefaultScale, "world units per braille dot")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "serve the live view over ssh",
		RunE:  serveSSH,
	}
	addSceneFlags(serveCmd)
	serveCmd.Flags().StringVar(&sshHost, "host", "", "listen host (RADIALSIM_SSH_HOST)")
	serveCmd.Flags().StringVar(&sshPort, "port", "", "listen port (RADIALSIM_SSH_PORT)")
	serveCmd.Flags().StringVar(&sshHostKey, "host-key", "", "host key path (RADIALSIM_SSH_HOST_KEY)")

	guiCmd := &cobra.Command{
		Use:   "gui",
		Short: "open the simulation in a window",
		RunE:  runGUI,
	}
	addSceneFlags(guiCmd)

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, exportJSONCmd, exportSVGCmd, sweepCmd, presetsCmd, benchCmd, liveCmd, serveCmd, guiCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func addSceneFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "scene file (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "scene preset")
}

func setupLogger() error {
	level, err := log.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	logger := log.NewWithOptions(os.Stderr, log.Options{
		Level:           level,
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
		Prefix:          "radialsim",
	})
	log.SetDefault(logger)
	return nil
}

// loadScene resolves the scene from, in order: a positional preset name or
// "-" for stdin, --preset, --config, and finally the default scene.
func loadScene(args []string, stdin io.Reader) (*config.Config, error) {
	name := preset
	if len(args) > 0 {
		name = args[0]
	}

	switch {
	case name == "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return config.Parse(data, "stdin")
	case name != "":
		cfg := config.GetPreset(name)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", name, config.ListPresets())
		}
		return cfg, nil
	case configFile != "":
		cfg, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		return cfg, nil
	}
	return config.DefaultConfig(), nil
}

// applyRunFlags lets explicitly set flags override the scene.
func applyRunFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("policy") {
		cfg.Policy = policy
	}
	if flags.Changed("order") {
		cfg.Order = order
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("duration") {
		cfg.Duration = duration
	}
	if flags.Changed("record-every") {
		cfg.RecordEvery = recordEvery
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadScene(args, cmd.InOrStdin())
	if err != nil {
		return err
	}
	applyRunFlags(cmd, cfg)

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	registry := experiment.NewRegistry()
	exp := experiment.New(cfg)
	exp.SetLogger(log.Default())
	if err := exp.Setup(registry, registry.DefaultMetrics()); err != nil {
		return err
	}

	if watch {
		r := tui.NewLiveRenderer(os.Stdout, cfg.Name, cfg.Bounds, frameRate)
		exp.GetSimulator().AddObserver(r)
		r.Start()
		defer r.Stop()
	}

	ctx, stop := signalContext()
	defer stop()

	start := time.Now()
	result, err := exp.Run(ctx)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	runID, err := st.Save(storage.RunInfo{
		Name:     cfg.Name,
		Seed:     cfg.Seed,
		Dt:       cfg.Dt,
		Duration: cfg.Duration,
		Policy:   exp.GetSimulator().Policy().String(),
		Order:    exp.GetSimulator().Order().String(),
		Bounds:   cfg.Bounds,
	}, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d  frames: %d  particles: %d\n", result.StepsTaken, len(result.Frames), len(result.Final))
	fmt.Printf("contacts: %d  degenerate: %d  wall hits: %d\n", result.Totals.Contacts, result.Totals.Degenerate, result.Totals.WallHits)
	fmt.Println("\nmetrics:")
	for _, name := range sortedNames(result.Metrics) {
		fmt.Printf("  %s: %.6f\n", name, result.Metrics[name])
	}
	return nil
}

func sortedNames(m map[string]float64) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
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
	fmt.Fprintln(w, "ID\tNAME\tTIME\tDURATION\tDT\tPOLICY\tORDER\tPARTICLES\tCONTACTS")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%.4fs\t%s\t%s\t%d\t%d\n",
			run.ID,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			run.Policy,
			run.Order,
			run.Particles,
			run.Contacts,
		)
	}

	return w.Flush()
}

func resolveRun(st *storage.Store, args []string) (*storage.RunMetadata, error) {
	if len(args) > 0 {
		return st.Load(args[0])
	}
	return st.Latest()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := resolveRun(st, args)
	if err != nil {
		return err
	}

	frames, err := st.LoadFrames(meta.ID)
	if err != nil {
		return err
	}
	if len(frames) == 0 {
		return fmt.Errorf("no data to plot")
	}

	energy := make([]float64, len(frames))
	population := make([]float64, len(frames))
	for i, f := range frames {
		energy[i] = metrics.KineticEnergy(particlePointers(f.Particles))
		population[i] = float64(len(f.Particles))
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("policy: %s  order: %s\n", meta.Policy, meta.Order)
	fmt.Printf("frames: %d\n\n", len(frames))

	width := plotWidth()
	fmt.Println(asciigraph.Plot(energy,
		asciigraph.Height(10),
		asciigraph.Width(width),
		asciigraph.Caption("kinetic energy"),
	))
	fmt.Println()
	fmt.Println(asciigraph.Plot(population,
		asciigraph.Height(6),
		asciigraph.Width(width),
		asciigraph.Caption("particles"),
	))
	return nil
}

func particlePointers(ps []dynamo.Particle) []*dynamo.Particle {
	out := make([]*dynamo.Particle, len(ps))
	for i := range ps {
		out[i] = &ps[i]
	}
	return out
}

// plotWidth leaves room for the axis labels; 80 when stdout is not a
// terminal.
func plotWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w < 30 {
		return 80
	}
	return w - 12
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := resolveRun(st, args)
	if err != nil {
		return err
	}
	if outFile != "" {
		if err := st.ExportJSONFile(meta.ID, outFile); err != nil {
			return err
		}
		log.Info("exported", "run", meta.ID, "path", outFile)
		return nil
	}
	return st.ExportJSON(meta.ID, os.Stdout)
}

func exportSVG(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := resolveRun(st, args)
	if err != nil {
		return err
	}
	frames, err := st.LoadFrames(meta.ID)
	if err != nil {
		return err
	}
	if len(frames) == 0 {
		return fmt.Errorf("run %s has no frames", meta.ID)
	}

	var svg string
	if cmd.Flags().Changed("particle") {
		points := export.Trajectory(frames, dynamo.ID(particleID))
		if len(points) < 2 {
			return fmt.Errorf("particle %d appears in %d frames, need at least 2", particleID, len(points))
		}
		svg = export.TrajectoryToSVG(points, 800, 600, "#00ff00")
	} else {
		idx := frameIndex
		if idx < 0 {
			idx += len(frames)
		}
		if idx < 0 || idx >= len(frames) {
			return fmt.Errorf("frame %d out of range [0, %d)", frameIndex, len(frames))
		}
		svg = export.FrameToSVG(frames[idx], meta.Bounds, svgScale)
	}

	if outFile == "" {
		_, err := fmt.Fprintln(os.Stdout, svg)
		return err
	}
	if err := os.WriteFile(outFile, []byte(svg), 0644); err != nil {
		return err
	}
	log.Info("exported", "run", meta.ID, "path", outFile)
	return nil
}

func sweepScene(cmd *cobra.Command, args []string) error {
	name := "crowd"
	if len(args) > 0 {
		name = args[0]
	}
	cfg := config.GetPreset(name)
	if cfg == nil {
		return fmt.Errorf("unknown preset: %s (available: %v)", name, config.ListPresets())
	}

	registry := experiment.NewRegistry()
	axes := make([]optim.Axis, 0, len(sweepAxes))
	for _, a := range sweepAxes {
		var values []string
		switch a {
		case "policy":
			values = registry.ListPolicies()
		case "order":
			values = registry.ListOrders()
		case "pattern":
			values = registry.ListPatterns()
		default:
			return fmt.Errorf("unknown sweep axis: %s", a)
		}
		axes = append(axes, optim.Axis{Name: a, Values: values})
	}

	ctx, stop := signalContext()
	defer stop()

	g := optim.NewGridSearch(axes, nil)
	g.SetLogger(log.Default())
	trials, err := g.Search(ctx, cfg, metricName)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	header := ""
	for _, a := range sweepAxes {
		header += strings.ToUpper(a) + "\t"
	}
	fmt.Fprintln(w, header+strings.ToUpper(metricName))
	for _, tr := range trials {
		for _, a := range sweepAxes {
			fmt.Fprintf(w, "%s\t", tr.Params[a])
		}
		fmt.Fprintf(w, "%.6f\n", tr.Value)
	}
	return w.Flush()
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tPOLICY\tORDER\tPATTERN\tCOUNT\tPARTICLES\tEMITTER\tLIFETIME")
	for _, name := range config.ListPresets() {
		cfg := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%t\t%t\n",
			name,
			cfg.Policy,
			cfg.Order,
			cfg.Spawn.Pattern,
			cfg.Spawn.Count,
			len(cfg.Particles),
			cfg.Emitter.Enabled,
			cfg.Lifetime.Enabled,
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	registry := experiment.NewRegistry()
	fmt.Printf("\npolicies: %v\n", registry.ListPolicies())
	fmt.Printf("orders:   %v\n", registry.ListOrders())
	fmt.Printf("patterns: %v\n", registry.ListPatterns())
	fmt.Printf("metrics:  %v\n", registry.ListMetrics())
	return nil
}

func benchScene(cmd *cobra.Command, args []string) error {
	name := "crowd"
	if len(args) > 0 {
		name = args[0]
	}
	cfg := config.GetPreset(name)
	if cfg == nil {
		return fmt.Errorf("unknown preset: %s (available: %v)", name, config.ListPresets())
	}

	registry := experiment.NewRegistry()
	build := func(s int64) (*sim.Simulator, *sim.World, error) {
		c := cfg.Clone()
		c.Seed = s
		exp := experiment.New(c)
		exp.SetLogger(log.Default())
		if err := exp.Setup(registry, nil); err != nil {
			return nil, nil, err
		}
		return exp.GetSimulator(), exp.World(), nil
	}

	simCfg := cfg.SimConfig()
	simCfg.RecordEvery = 0

	ctx, stop := signalContext()
	defer stop()

	log.Info("benchmarking", "preset", name, "runs", runs, "seed", seed)
	start := time.Now()
	results, err := sim.NewEnsemble(build, runs, seed).Run(ctx, simCfg)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SEED\tSTEPS\tPARTICLES\tCONTACTS\tDEGENERATE\tWALL HITS")
	var steps int
	for i, res := range results {
		steps += res.StepsTaken
		fmt.Fprintf(w, "%d\t%d\t%d\t%d\t%d\t%d\n",
			seed+int64(i),
			res.StepsTaken,
			len(res.Final),
			res.Totals.Contacts,
			res.Totals.Degenerate,
			res.Totals.WallHits,
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\n%d runs in %v (%.0f steps/sec)\n", len(results), elapsed, float64(steps)/elapsed.Seconds())
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadScene(nil, cmd.InOrStdin())
	if err != nil {
		return err
	}
	return viz.Run(viz.Options{
		Config: cfg,
		Scale:  scale,
		Theme:  theme,
		Logger: log.Default(),
	})
}

func serveSSH(cmd *cobra.Command, args []string) error {
	cfg, err := loadScene(nil, cmd.InOrStdin())
	if err != nil {
		return err
	}

	opts := serve.DefaultOptions()
	if sshHost != "" {
		opts.Host = sshHost
	}
	if sshPort != "" {
		opts.Port = sshPort
	}
	if sshHostKey != "" {
		opts.HostKeyPath = sshHostKey
	}
	opts.Config = cfg
	opts.Logger = log.Default()

	srv, err := serve.New(opts)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()
	return srv.ListenAndServe(ctx)
}

func runGUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadScene(nil, cmd.InOrStdin())
	if err != nil {
		return err
	}
	return gui.Run(cfg, log.Default())
}
