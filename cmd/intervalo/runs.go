package main

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/intervalo/internal/analysis"
	"github.com/san-kum/intervalo/internal/automation"
	"github.com/san-kum/intervalo/internal/config"
	"github.com/san-kum/intervalo/internal/export"
	"github.com/san-kum/intervalo/internal/field"
	"github.com/san-kum/intervalo/internal/motion"
	"github.com/san-kum/intervalo/internal/narrative"
	"github.com/san-kum/intervalo/internal/raster"
	"github.com/san-kum/intervalo/internal/session"
	"github.com/san-kum/intervalo/internal/trace"
	"github.com/spf13/cobra"
)

const analysisRate = 30.0

func openStore(cmd *cobra.Command) (*trace.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return trace.New(cfg.Render.Data), nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	cat, err := loadCatalog(cfg)
	if err != nil {
		return err
	}
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if trials > 1 {
		return runTrials(ctx, sc, cfg, cat)
	}

	runCfg := sc.Apply(cfg)
	sess, err := session.New(runCfg, cat, rand.New(rand.NewSource(runCfg.Seed)))
	if err != nil {
		return err
	}
	start := time.Now()
	rec := trace.NewRecorder(start)
	sess.Observe(rec)

	fmt.Printf("playing %s (%d steps, seed %d)\n", sc.Name, len(sc.Steps), runCfg.Seed)
	res, err := automation.Run(ctx, sc, sess, start)
	if err != nil {
		return err
	}

	name := runName
	if name == "" {
		name = sc.Name
	}
	w, h := sess.Bounds()
	st := trace.New(runCfg.Render.Data)
	runID, err := st.Save(trace.RunMetadata{
		Name:      name,
		Timestamp: start,
		Seed:      runCfg.Seed,
		Width:     w,
		Height:    h,
		FPS:       runCfg.Render.FPS,
		Frames:    res.Frames,
		Path:      sess.Path(),
		Metrics:   rec.Metrics(),
		Hints:     rec.Hints,
		Memory:    sess.Memory(),
	}, rec.Samples)
	if err != nil {
		return err
	}

	fmt.Printf("run saved: %s\n", runID)
	fmt.Printf("frames: %d (%s simulated)\n", res.Frames, res.Elapsed)
	fmt.Printf("samples: %d  hints: %d  particles: %d\n", len(rec.Samples), len(rec.Hints), res.Stats.Population)
	if len(res.Discoveries) > 0 {
		fmt.Printf("secrets: %v\n", res.Discoveries)
	}
	return nil
}

func runTrials(ctx context.Context, sc *automation.Scenario, cfg *config.Config, cat *narrative.Catalog) error {
	fmt.Printf("playing %s x%d\n", sc.Name, trials)
	results, err := automation.RunTrials(ctx, sc, cfg, cat, trials)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SEED\tPARTICLES\tHINTS\tSAMPLES\tMEAN SPEED")
	for _, r := range results {
		fmt.Fprintf(w, "%d\t%d\t%d\t%d\t%.3f\n", r.Seed, r.Population, r.Hints, r.Samples, r.MeanSpeed)
	}
	return w.Flush()
}

func listRuns(cmd *cobra.Command, args []string) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tSEED\tFRAMES\tSAMPLES\tPATH\tMEAN SPEED")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%.0f\t%s\t%.3f\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Seed,
			run.Frames,
			run.Metrics["samples"],
			run.Path,
			run.Metrics["mean_speed"],
		)
	}
	return w.Flush()
}

func loadRun(cmd *cobra.Command, runID string) (*trace.RunMetadata, []trace.Sample, error) {
	st, err := openStore(cmd)
	if err != nil {
		return nil, nil, err
	}
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	samples, err := st.LoadSamples(runID)
	if err != nil {
		return nil, nil, err
	}
	return meta, samples, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, samples, err := loadRun(cmd, args[0])
	if err != nil {
		return err
	}
	if len(samples) < 2 {
		return fmt.Errorf("run %s has too few samples to plot", meta.ID)
	}

	fmt.Printf("run: %s  seed: %d  path: %s\n\n", meta.ID, meta.Seed, meta.Path)

	speeds := make([]float64, len(samples))
	gauges := make([]float64, len(samples))
	for i, s := range samples {
		speeds[i] = s.Speed
		gauges[i] = s.Gauge
	}

	for _, series := range []struct {
		data    []float64
		caption string
	}{
		{speeds, "pointer speed"},
		{gauges, "gauge"},
	} {
		graph := asciigraph.Plot(series.data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(series.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	fmt.Println("path (· pausa  ∙ lento  • medio  ● rapido):")
	fmt.Print(analysis.PathToASCII(samples, meta.Width, meta.Height, 80, 24))
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, samples, err := loadRun(cmd, args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("samples: %d  transitions: %d\n\n", len(samples), analysis.Transitions(samples))

	dwell := analysis.BandDwell(samples)
	fmt.Println("band dwell:")
	for _, b := range motion.Bands {
		fmt.Printf("  %-8s %6.2fs\n", b.Label(), dwell[b])
	}
	fmt.Println()

	series := analysis.Resample(samples, analysisRate)
	if len(series) < 8 {
		fmt.Println("too few samples for a spectrum")
		return nil
	}

	ps := analysis.PowerSpectrum(series)
	graph := asciigraph.Plot(ps[:len(ps)/2],
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption("speed power spectrum"),
	)
	fmt.Println(graph)
	fmt.Println()

	freq, power := analysis.DominantFrequency(series, analysisRate)
	fmt.Printf("dominant frequency: %.3f Hz (power %.3g)\n", freq, power)
	if freq > 0 {
		fmt.Printf("gesture period: %.2fs\n", 1/freq)
	}

	keys := make([]string, 0, len(meta.Metrics))
	for k := range meta.Metrics {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	fmt.Println("\nmetrics:")
	for _, k := range keys {
		fmt.Printf("  %-14s %.4f\n", k, meta.Metrics[k])
	}
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	_, samples, err := loadRun(cmd, args[0])
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		return fmt.Errorf("no data to export")
	}
	return trace.WriteCSV(os.Stdout, samples)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	return st.ExportJSON(args[0], os.Stdout)
}

func exportSVG(cmd *cobra.Command, args []string) error {
	meta, samples, err := loadRun(cmd, args[0])
	if err != nil {
		return err
	}
	svg := export.PointerPathToSVG(samples, meta.Width, meta.Height, int(meta.Width), int(meta.Height))
	if svg == "" {
		return fmt.Errorf("run %s has no path to draw", meta.ID)
	}
	return writeOut(svgOut, svg)
}

func writeOut(path, content string) error {
	var w io.Writer = os.Stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	_, err := io.WriteString(w, content)
	return err
}

func snapshot(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	cat, err := loadCatalog(cfg)
	if err != nil {
		return err
	}
	sess, err := session.New(cfg, cat, nil)
	if err != nil {
		return err
	}

	bg, err := field.ParseColor(cfg.Field.TrailColor)
	if err != nil {
		return err
	}
	w, h := cfg.Render.Width, cfg.Render.Height
	im := raster.New(w, h, bg)
	sess.Attach(im)

	now := time.Now()
	sess.Start(float64(w), float64(h), now)
	for i := 0; i < frames; i++ {
		now = now.Add(cfg.FrameTime())
		sess.Frame(now)
	}

	if filepath.Ext(snapshotOut) == ".svg" {
		svg := export.FieldToSVG(sess.Field().Particles(), w, h, bg, cfg.Field.HaloScale)
		if err := writeOut(snapshotOut, svg); err != nil {
			return err
		}
	} else if err := export.WritePNG(snapshotOut, im); err != nil {
		return err
	}

	st := sess.Field().Stats()
	fmt.Printf("snapshot: %s (%dx%d, %d frames, %d particles)\n", snapshotOut, w, h, frames, st.Population)
	return nil
}
