package trace

import (
	"bytes"
	"encoding/json"
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/san-kum/intervalo/internal/config"
	"github.com/san-kum/intervalo/internal/motion"
	"github.com/san-kum/intervalo/internal/session"
)

func testSamples() []Sample {
	return []Sample{
		{Time: 0.1, X: 10, Y: 20, Speed: 0.02, Band: motion.Lento, Gauge: 10, Population: 100},
		{Time: 0.2, X: 40, Y: 60, Speed: 0.2, Band: motion.Rapido, Gauge: 100, Population: 115},
	}
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	ts := time.Unix(1_700_000_000, 0)
	runID, err := st.Save(RunMetadata{Name: "drift", Timestamp: ts, Seed: 42, FPS: 60}, testSamples())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if runID != "drift_1700000000" {
		t.Errorf("unexpected run id %q", runID)
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Seed != 42 || meta.ID != runID {
		t.Errorf("metadata = %+v", meta)
	}
	if meta.Metrics["samples"] != 2 || meta.Metrics["share_rapido"] != 0.5 {
		t.Errorf("metrics = %v", meta.Metrics)
	}

	samples, err := st.LoadSamples(runID)
	if err != nil {
		t.Fatalf("load samples failed: %v", err)
	}
	if len(samples) != 2 {
		t.Fatalf("expected 2 samples, got %d", len(samples))
	}
	if samples[1].Band != motion.Rapido || samples[1].Population != 115 || samples[1].X != 40 {
		t.Errorf("sample = %+v", samples[1])
	}
}

func TestStoreIDCollision(t *testing.T) {
	st := New(t.TempDir())
	ts := time.Unix(5, 0)

	a, err := st.Save(RunMetadata{Name: "x", Timestamp: ts}, nil)
	if err != nil {
		t.Fatal(err)
	}
	b, err := st.Save(RunMetadata{Name: "x", Timestamp: ts}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if a == b || b != "x_5_2" {
		t.Errorf("ids = %q, %q", a, b)
	}
}

func TestStoreRejectsPathNames(t *testing.T) {
	root := t.TempDir()
	st := New(filepath.Join(root, "data"))

	for _, name := range []string{"../x", "a/b", `..\x`, "..", "."} {
		if _, err := st.Save(RunMetadata{Name: name, Timestamp: time.Unix(5, 0)}, nil); !errors.Is(err, ErrInvalidName) {
			t.Errorf("Save(%q): expected ErrInvalidName, got %v", name, err)
		}
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("entries outside the store: %v", entries)
	}

	if _, err := st.Load("../data"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load: expected ErrNotFound, got %v", err)
	}
	if _, err := st.LoadSamples("../../etc"); !errors.Is(err, ErrNotFound) {
		t.Errorf("LoadSamples: expected ErrNotFound, got %v", err)
	}
}

func TestStoreList(t *testing.T) {
	st := New(t.TempDir())

	runs, err := st.List()
	if err != nil || len(runs) != 0 {
		t.Fatalf("empty list = %v, %v", runs, err)
	}

	st.Save(RunMetadata{Name: "b", Timestamp: time.Unix(20, 0)}, nil)
	st.Save(RunMetadata{Name: "a", Timestamp: time.Unix(10, 0)}, nil)

	runs, err = st.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 || runs[0].Name != "a" {
		t.Errorf("runs = %+v", runs)
	}
}

func TestStoreNotFound(t *testing.T) {
	st := New(t.TempDir())
	if _, err := st.Load("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load: expected ErrNotFound, got %v", err)
	}
	if _, err := st.LoadSamples("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("LoadSamples: expected ErrNotFound, got %v", err)
	}
}

func TestExportJSON(t *testing.T) {
	st := New(t.TempDir())
	runID, err := st.Save(RunMetadata{Name: "j", Timestamp: time.Unix(1, 0)}, testSamples())
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := st.ExportJSON(runID, &buf); err != nil {
		t.Fatal(err)
	}
	var doc struct {
		ID      string `json:"id"`
		Samples []struct {
			Band string `json:"band"`
		} `json:"samples"`
	}
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatal(err)
	}
	if doc.ID != runID || len(doc.Samples) != 2 || doc.Samples[0].Band != "lento" {
		t.Errorf("export = %+v", doc)
	}
}

func TestReadCSVSkipsMalformed(t *testing.T) {
	in := "time,x,y,speed,band,gauge,population\n" +
		"0.1,1,2,0.05,medio,25,10\n" +
		"oops,1,2,0.05,medio,25,10\n" +
		"0.2,1,2,0.05,veloz,25,10\n" +
		"0.3,1,2\n"
	samples, err := ReadCSV(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	if len(samples) != 1 || samples[0].Band != motion.Medio {
		t.Errorf("samples = %+v", samples)
	}
}

func TestRecorderObservesSession(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Motion.HintChance = 1
	s, err := session.New(cfg, nil, rand.New(rand.NewSource(2)))
	if err != nil {
		t.Fatal(err)
	}
	t0 := time.Unix(100, 0)
	rec := NewRecorder(t0)
	s.Observe(rec)

	s.Start(800, 600, t0)
	s.Frame(t0)
	s.Pointer(0, 0, t0)
	s.Pointer(30, 40, t0.Add(500*time.Millisecond))

	if len(rec.Samples) != 1 {
		t.Fatalf("samples = %d", len(rec.Samples))
	}
	sm := rec.Samples[0]
	if sm.Time != 0.5 || sm.Speed != 0.1 || sm.Population == 0 {
		t.Errorf("sample = %+v", sm)
	}
	// welcome plus one motion hint
	if len(rec.Hints) != 2 {
		t.Errorf("hints = %+v", rec.Hints)
	}
	if rec.Frames() != 1 {
		t.Errorf("frames = %d", rec.Frames())
	}
}
