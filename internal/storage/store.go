package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/san-kum/mesoflow/internal/meso"
	"github.com/san-kum/mesoflow/internal/metrics"
)

// Store persists finished runs under a base directory, one directory
// per run: metadata.json, series.csv with the per-step metric series,
// and snapshot.csv with the final particle state.
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
	Preset    string             `json:"preset"`
	Timestamp time.Time          `json:"timestamp"`
	Seed      int64              `json:"seed"`
	Dt        float64            `json:"dt"`
	Steps     int                `json:"steps"`
	Particles int                `json:"particles"`
	Metrics   map[string]float64 `json:"metrics"`
}

func (s *Store) Save(preset string, seed int64, dt float64, steps int, solvent *meso.Particles, ms []metrics.Metric) (string, error) {
	runID := fmt.Sprintf("%s_%d", preset, time.Now().Unix())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        runID,
		Preset:    preset,
		Timestamp: time.Now(),
		Seed:      seed,
		Dt:        dt,
		Steps:     steps,
		Particles: solvent.N(),
		Metrics:   make(map[string]float64, len(ms)),
	}
	for _, m := range ms {
		meta.Metrics[m.Name()] = m.Value()
	}

	if err := writeJSON(filepath.Join(runDir, "metadata.json"), meta); err != nil {
		return "", err
	}
	if err := writeSeries(filepath.Join(runDir, "series.csv"), dt, ms); err != nil {
		return "", err
	}
	if err := writeSnapshot(filepath.Join(runDir, "snapshot.csv"), solvent); err != nil {
		return "", err
	}
	return runID, nil
}

func writeJSON(path string, meta RunMetadata) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func writeSeries(path string, dt float64, ms []metrics.Metric) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{"step", "time"}
	rows := 0
	for _, m := range ms {
		header = append(header, m.Name())
		if n := len(m.Series()); n > rows {
			rows = n
		}
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for i := 0; i < rows; i++ {
		row := []string{
			strconv.Itoa(i + 1),
			strconv.FormatFloat(float64(i+1)*dt, 'f', 6, 64),
		}
		for _, m := range ms {
			series := m.Series()
			if i < len(series) {
				row = append(row, strconv.FormatFloat(series[i], 'g', -1, 64))
			} else {
				row = append(row, "")
			}
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func writeSnapshot(path string, p *meso.Particles) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"x", "y", "z", "vx", "vy", "vz"}); err != nil {
		return err
	}
	row := make([]string, 6)
	for i := range p.Pos {
		for k := 0; k < 3; k++ {
			row[k] = strconv.FormatFloat(p.Pos[i][k], 'g', -1, 64)
			row[k+3] = strconv.FormatFloat(p.Vel[i][k], 'g', -1, 64)
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

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
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}
	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}
