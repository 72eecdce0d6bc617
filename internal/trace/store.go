package trace

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/san-kum/intervalo/internal/motion"
	"github.com/san-kum/intervalo/internal/session"
)

var (
	ErrNotFound    = errors.New("run not found")
	ErrInvalidName = errors.New("invalid run name")
)

const (
	metaFile    = "metadata.json"
	samplesFile = "samples.csv"
)

var header = []string{"time", "x", "y", "speed", "band", "gauge", "population"}

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Timestamp time.Time          `json:"timestamp"`
	Seed      int64              `json:"seed"`
	Width     float64            `json:"width"`
	Height    float64            `json:"height"`
	FPS       int                `json:"fps"`
	Frames    uint64             `json:"frames"`
	Path      string             `json:"path"`
	Metrics   map[string]float64 `json:"metrics"`
	Hints     []HintRecord       `json:"hints,omitempty"`
	Memory    []session.Entry    `json:"memory,omitempty"`
}

// Save writes a run and returns its id. Ids are name_unix, suffixed when a
// run with the same id already exists.
func (s *Store) Save(meta RunMetadata, samples []Sample) (string, error) {
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}
	if meta.Name == "" {
		meta.Name = "run"
	}
	if !validID(meta.Name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, meta.Name)
	}
	if meta.Metrics == nil {
		meta.Metrics = Summarize(samples, len(meta.Hints))
	}

	runID, runDir, err := s.allocate(meta.Name, meta.Timestamp)
	if err != nil {
		return "", err
	}
	meta.ID = runID

	if err := writeJSON(filepath.Join(runDir, metaFile), meta); err != nil {
		return "", err
	}

	f, err := os.Create(filepath.Join(runDir, samplesFile))
	if err != nil {
		return "", err
	}
	defer f.Close()
	if err := WriteCSV(f, samples); err != nil {
		return "", err
	}
	return runID, f.Close()
}

func (s *Store) allocate(name string, ts time.Time) (string, string, error) {
	if err := s.Init(); err != nil {
		return "", "", err
	}
	base := fmt.Sprintf("%s_%d", name, ts.Unix())
	id := base
	for i := 2; ; i++ {
		dir := filepath.Join(s.baseDir, id)
		err := os.Mkdir(dir, 0755)
		if err == nil {
			return id, dir, nil
		}
		if !os.IsExist(err) {
			return "", "", err
		}
		id = fmt.Sprintf("%s_%d", base, i)
	}
}

// validID reports whether name stays a single entry inside the data dir.
func validID(name string) bool {
	return name != "" && name != "." && !strings.Contains(name, "..") &&
		!strings.ContainsAny(name, `/\`+"\x00") && filepath.Base(name) == name
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return err
	}
	return f.Close()
}

// List returns every readable run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}
	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	if !validID(runID) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, runID)
	}
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metaFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return &meta, nil
}

func (s *Store) LoadSamples(runID string) ([]Sample, error) {
	if !validID(runID) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, runID)
	}
	f, err := os.Open(filepath.Join(s.baseDir, runID, samplesFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, runID)
		}
		return nil, err
	}
	defer f.Close()
	return ReadCSV(f)
}

// ExportJSON writes the run's metadata and samples as one document.
func (s *Store) ExportJSON(runID string, w io.Writer) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	samples, err := s.LoadSamples(runID)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		*RunMetadata
		Samples []Sample `json:"samples"`
	}{meta, samples})
}

func WriteCSV(w io.Writer, samples []Sample) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, s := range samples {
		row := []string{
			strconv.FormatFloat(s.Time, 'f', 6, 64),
			strconv.FormatFloat(s.X, 'f', 2, 64),
			strconv.FormatFloat(s.Y, 'f', 2, 64),
			strconv.FormatFloat(s.Speed, 'f', 6, 64),
			s.Band.String(),
			strconv.FormatFloat(s.Gauge, 'f', 2, 64),
			strconv.Itoa(s.Population),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV parses samples written by WriteCSV. Malformed rows are skipped.
func ReadCSV(r io.Reader) ([]Sample, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []Sample{}, nil
	}

	samples := make([]Sample, 0, len(records)-1)
	for _, rec := range records[1:] {
		if len(rec) < len(header) {
			continue
		}
		var vals [4]float64
		ok := true
		for i := range vals {
			v, err := strconv.ParseFloat(rec[i], 64)
			if err != nil {
				ok = false
				break
			}
			vals[i] = v
		}
		band, bErr := motion.ParseBand(rec[4])
		gauge, gErr := strconv.ParseFloat(rec[5], 64)
		pop, pErr := strconv.Atoi(rec[6])
		if !ok || bErr != nil || gErr != nil || pErr != nil {
			continue
		}
		samples = append(samples, Sample{
			Time:       vals[0],
			X:          vals[1],
			Y:          vals[2],
			Speed:      vals[3],
			Band:       band,
			Gauge:      gauge,
			Population: pop,
		})
	}
	return samples, nil
}
