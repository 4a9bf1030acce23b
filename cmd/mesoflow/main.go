package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/mesoflow/internal/config"
	"github.com/san-kum/mesoflow/internal/experiment"
	"github.com/san-kum/mesoflow/internal/storage"
	"github.com/san-kum/mesoflow/internal/viz"
)

var (
	dataDir    string
	configFile string
	save       bool

	dt            float64
	steps         int
	seed          int64
	boxEdge       float64
	cellSize      float64
	particles     int
	streamPeriod  int
	collidePeriod int
	rule          string
	angle         float64
	kT            float64
	soluteN       int
	conserveAM    bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "mesoflow",
		Short: "multi-particle collision dynamics lab",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".mesoflow", "data directory")

	runCmd := &cobra.Command{
		Use:   "run [preset]",
		Short: "run a simulation and summarize its observables",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addSetupFlags(runCmd)
	runCmd.Flags().BoolVar(&save, "save", false, "store the run under the data directory")

	liveCmd := &cobra.Command{
		Use:   "live [preset]",
		Short: "watch a simulation in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addSetupFlags(liveCmd)

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Run: func(cmd *cobra.Command, args []string) {
			names := config.ListPresets()
			sort.Strings(names)
			for _, name := range names {
				fmt.Println(name)
			}
		},
	}

	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	rootCmd.AddCommand(runCmd, liveCmd, presetsCmd, runsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addSetupFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "yaml config file")
	cmd.Flags().Float64Var(&dt, "dt", 0, "base timestep")
	cmd.Flags().IntVar(&steps, "steps", 0, "number of base steps")
	cmd.Flags().Int64Var(&seed, "seed", -1, "random seed")
	cmd.Flags().Float64Var(&boxEdge, "box", 0, "cubic box edge")
	cmd.Flags().Float64Var(&cellSize, "cell", 0, "collision cell size")
	cmd.Flags().IntVar(&particles, "n", 0, "solvent particle count")
	cmd.Flags().IntVar(&streamPeriod, "stream-period", 0, "streaming period in base steps")
	cmd.Flags().IntVar(&collidePeriod, "collide-period", 0, "collision period in base steps")
	cmd.Flags().StringVar(&rule, "rule", "", "collision rule: srd, at, none")
	cmd.Flags().Float64Var(&angle, "angle", 0, "SRD rotation angle in degrees")
	cmd.Flags().Float64Var(&kT, "kt", 0, "temperature in reduced units")
	cmd.Flags().IntVar(&soluteN, "solute", -1, "embedded solute particle count")
	cmd.Flags().BoolVar(&conserveAM, "angular-momentum", false, "conserve cell angular momentum")
}

// buildConfig layers preset, config file, and flags, in that order.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, string, error) {
	name := "bulk-srd"
	if len(args) > 0 {
		name = args[0]
	}

	var cfg *config.Config
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, "", err
		}
		cfg = loaded
	} else {
		cfg = config.GetPreset(name)
		if cfg == nil {
			return nil, "", fmt.Errorf("unknown preset: %s", name)
		}
	}

	if dt > 0 {
		cfg.Dt = dt
	}
	if steps > 0 {
		cfg.Steps = steps
	}
	if seed >= 0 {
		cfg.Seed = seed
	}
	if boxEdge > 0 {
		cfg.Box = boxEdge
	}
	if cellSize > 0 {
		cfg.CellSize = cellSize
	}
	if particles > 0 {
		cfg.N = particles
	}
	if streamPeriod > 0 {
		cfg.Stream.Period = streamPeriod
	}
	if collidePeriod > 0 {
		cfg.Collide.Period = collidePeriod
	}
	if rule != "" {
		cfg.Collide.Method = rule
	}
	if angle > 0 {
		cfg.Collide.Angle = angle
	}
	if kT > 0 {
		cfg.KT = kT
		cfg.Collide.KT = kT
	}
	if soluteN >= 0 {
		cfg.Solute.N = soluteN
	}
	if cmd.Flags().Changed("angular-momentum") {
		cfg.Collide.AngularMomentum = conserveAM
	}

	return cfg, name, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, name, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	run, err := experiment.Build(cfg)
	if err != nil {
		return err
	}
	for _, w := range run.Scheduler.Warnings() {
		fmt.Fprintln(os.Stderr, "warning:", w)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	start := time.Now()
	if err := run.Scheduler.Run(ctx, cfg.Steps); err != nil {
		return err
	}
	elapsed := time.Since(start)

	snap := run.Scheduler.Snapshot()

	fmt.Printf("completed %d steps in %s (%.0f steps/s)\n\n",
		cfg.Steps, elapsed.Round(time.Millisecond), float64(cfg.Steps)/elapsed.Seconds())

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "particles\t%d\n", snap.Solvent.N())
	fmt.Fprintf(w, "solvent step\t%d\n", snap.SolventStep)
	for _, m := range run.Metrics {
		fmt.Fprintf(w, "%s\t%.6g\n", m.Name(), m.Value())
	}
	w.Flush()

	for _, m := range run.Metrics {
		series := m.Series()
		if len(series) < 2 {
			continue
		}
		fmt.Println()
		fmt.Println(asciigraph.Plot(series,
			asciigraph.Height(8),
			asciigraph.Width(72),
			asciigraph.Caption(m.Name())))
	}

	if save {
		store := storage.New(dataDir)
		if err := store.Init(); err != nil {
			return err
		}
		runID, err := store.Save(name, cfg.Seed, cfg.Dt, cfg.Steps, snap.Solvent, run.Metrics)
		if err != nil {
			return err
		}
		fmt.Printf("\nsaved run %s\n", runID)
	}
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, name, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	run, err := experiment.Build(cfg)
	if err != nil {
		return err
	}
	return viz.RunLive(name, run.Scheduler, run.Metrics)
}

func listRuns(cmd *cobra.Command, args []string) error {
	store := storage.New(dataDir)
	runs, err := store.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no stored runs")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPRESET\tSTEPS\tPARTICLES\tSEED\tWHEN")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%s\n",
			r.ID, r.Preset, r.Steps, r.Particles, r.Seed, r.Timestamp.Format("2006-01-02 15:04"))
	}
	return w.Flush()
}
