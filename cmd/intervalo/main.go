package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/san-kum/intervalo/internal/config"
	"github.com/san-kum/intervalo/internal/gui"
	"github.com/san-kum/intervalo/internal/motion"
	"github.com/san-kum/intervalo/internal/narrative"
	"github.com/san-kum/intervalo/internal/session"
	"github.com/san-kum/intervalo/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	configFile string
	preset     string
	seed       int64
	theme      string
	// live and gui hosts
	snapshotDir string
	// scenario runs
	trials  int
	runName string
	// headless snapshot
	frames      int
	snapshotOut string
	svgOut      string
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("[intervalo] ")

	rootCmd := &cobra.Command{
		Use:          "intervalo",
		Short:        "interactive light-field poem",
		SilenceUsage: true,
		RunE:         runLive,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&dataDir, "data", "data", "data directory")
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&preset, "preset", "", "use preset configuration")
	pf.Int64Var(&seed, "seed", 0, "random seed (0 = time based)")
	pf.StringVar(&theme, "theme", "", "colour theme")
	pf.StringVar(&snapshotDir, "snapshots", ".", "directory for PNG and GIF captures")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run the field in the terminal",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}

	guiCmd := &cobra.Command{
		Use:   "gui",
		Short: "run the field in a window",
		Args:  cobra.NoArgs,
		RunE:  runGUI,
	}

	runCmd := &cobra.Command{
		Use:   "run [scenario.yaml]",
		Short: "play a pointer scenario headlessly and save the trace",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}
	runCmd.Flags().IntVar(&trials, "trials", 1, "replay with consecutive seeds and compare")
	runCmd.Flags().StringVar(&runName, "name", "", "run name (defaults to the scenario name)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot pointer speed and path",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "band dwell and speed spectrum",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run samples to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export the pointer path to SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&svgOut, "out", "o", "", "output file (default stdout)")

	snapshotCmd := &cobra.Command{
		Use:   "snapshot",
		Short: "render the idle field headlessly to PNG or SVG",
		Args:  cobra.NoArgs,
		RunE:  snapshot,
	}
	snapshotCmd.Flags().IntVar(&frames, "frames", 120, "frames to step before capturing")
	snapshotCmd.Flags().StringVarP(&snapshotOut, "out", "o", "intervalo.png", "output file (.png or .svg)")

	classifyCmd := &cobra.Command{
		Use:   "classify [speed...]",
		Short: "show the motion band for speeds",
		Args:  cobra.MinimumNArgs(1),
		RunE:  classify,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("presets:")
			for _, p := range config.ListPresets() {
				fmt.Printf("  %s\n", p)
			}
			fmt.Println("themes:")
			for _, t := range viz.ThemeNames() {
				fmt.Printf("  %s\n", t)
			}
		},
	}

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "manage config files",
	}
	configInitCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "write the effective config to a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := config.Save(args[0], cfg); err != nil {
				return err
			}
			fmt.Printf("config written: %s\n", args[0])
			return nil
		},
	}
	configCmd.AddCommand(configInitCmd)

	rootCmd.AddCommand(liveCmd, guiCmd, runCmd, listCmd, plotCmd, analyzeCmd,
		exportCSVCmd, exportJSONCmd, exportSVGCmd, snapshotCmd, classifyCmd, presetsCmd, configCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig resolves defaults, then the preset, then the config file, then
// any flags set on the command line.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		if cfg = config.GetPreset(preset); cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s", preset)
		}
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("data") {
		cfg.Render.Data = dataDir
	}
	if flags.Changed("theme") {
		cfg.Render.Theme = theme
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	return cfg, cfg.Validate()
}

func loadCatalog(cfg *config.Config) (*narrative.Catalog, error) {
	if cfg.Session.Narrative == "" {
		return narrative.Default(), nil
	}
	return narrative.Load(cfg.Session.Narrative)
}

func newSession(cmd *cobra.Command) (*session.Session, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	cat, err := loadCatalog(cfg)
	if err != nil {
		return nil, err
	}
	return session.New(cfg, cat, nil)
}

func runLive(cmd *cobra.Command, args []string) error {
	sess, err := newSession(cmd)
	if err != nil {
		return err
	}
	return viz.Run(sess, viz.Options{SnapshotDir: snapshotDir})
}

func runGUI(cmd *cobra.Command, args []string) error {
	sess, err := newSession(cmd)
	if err != nil {
		return err
	}
	gui.Run(sess, snapshotDir)
	return nil
}

func classify(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	th := cfg.Motion.Thresholds
	fmt.Printf("thresholds: %.2f / %.2f / %.2f\n", th.T1, th.T2, th.T3)
	for _, a := range args {
		v, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return fmt.Errorf("invalid speed %q: %w", a, err)
		}
		fmt.Printf("%10.3f  %s\n", v, motion.Classify(v, th).Label())
	}
	return nil
}
