// Package storage persists runs and benchmark sweeps under a base directory,
// one subdirectory per record.
package storage

import (
	"bufio"
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

	"github.com/google/uuid"
	"github.com/san-kum/potsim/internal/bench"
	"github.com/san-kum/potsim/internal/particle"
	"gonum.org/v1/gonum/spatial/r2"
)

const (
	KindRun   = "run"
	KindBench = "bench"

	metadataFile  = "metadata.json"
	particlesFile = "particles.csv"
	benchFile     = "bench.dat"
)

var ErrNotFound = errors.New("storage: record not found")

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type Metadata struct {
	ID        string             `json:"id"`
	Kind      string             `json:"kind"`
	Timestamp time.Time          `json:"timestamp"`
	Scenario  string             `json:"scenario"`
	Particles int                `json:"particles"`
	Seed      int64              `json:"seed"`
	Width     int                `json:"width"`
	Height    int                `json:"height"`
	MaxIter   int                `json:"max_iter"`
	Dt        float64            `json:"dt"`
	Substeps  int                `json:"substeps"`
	Engine    string             `json:"engine,omitempty"`
	Workers   int                `json:"workers,omitempty"`
	Colormap  string             `json:"colormap,omitempty"`
	Elapsed   float64            `json:"elapsed_seconds"`
	Lo        float64            `json:"lo"`
	Hi        float64            `json:"hi"`
	Metrics   map[string]float64 `json:"metrics,omitempty"`
}

func newID(kind string) string {
	return fmt.Sprintf("%s_%s", kind, strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

func (s *Store) create(meta *Metadata, kind string) (string, error) {
	meta.ID = newID(kind)
	meta.Kind = kind
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}

	dir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	if err := writeFile(filepath.Join(dir, metadataFile), func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(meta)
	}); err != nil {
		return "", err
	}
	return dir, nil
}

// SaveRun records a finished run and the final state of its ensemble.
func (s *Store) SaveRun(meta Metadata, ps []particle.Particle) (string, error) {
	dir, err := s.create(&meta, KindRun)
	if err != nil {
		return "", err
	}

	err = writeFile(filepath.Join(dir, particlesFile), func(w io.Writer) error {
		cw := csv.NewWriter(w)
		if err := cw.Write([]string{"x", "y", "vx", "vy", "q"}); err != nil {
			return err
		}
		for _, p := range ps {
			row := []string{
				formatFloat(p.X.X), formatFloat(p.X.Y),
				formatFloat(p.V.X), formatFloat(p.V.Y),
				formatFloat(p.Q),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	})
	if err != nil {
		return "", err
	}
	return meta.ID, nil
}

func (s *Store) SaveBench(meta Metadata, report *bench.Report) (string, error) {
	dir, err := s.create(&meta, KindBench)
	if err != nil {
		return "", err
	}
	if err := writeFile(filepath.Join(dir, benchFile), report.WriteDat); err != nil {
		return "", err
	}
	return meta.ID, nil
}

// List returns every readable record, newest first. Directories without
// valid metadata are skipped.
func (s *Store) List() ([]Metadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Metadata{}, nil
		}
		return nil, err
	}

	records := make([]Metadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		records = append(records, *meta)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].Timestamp.After(records[j].Timestamp)
	})
	return records, nil
}

func (s *Store) Load(id string) (*Metadata, error) {
	data, err := os.ReadFile(s.path(id, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, err
	}

	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("storage: %s: %w", id, err)
	}
	return &meta, nil
}

func (s *Store) LoadParticles(id string) ([]particle.Particle, error) {
	file, err := s.open(id, particlesFile)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []particle.Particle{}, nil
	}

	ps := make([]particle.Particle, 0, len(records)-1)
	for i, record := range records[1:] {
		vals, err := parseFloats(record, 5)
		if err != nil {
			return nil, fmt.Errorf("storage: %s line %d: %w", particlesFile, i+2, err)
		}
		p := particle.New(vals[0], vals[1], vals[4])
		p.V = r2.Vec{X: vals[2], Y: vals[3]}
		ps = append(ps, p)
	}
	return ps, nil
}

// LoadBench parses a sweep written by SaveBench. The serial baseline is
// recovered from the single-worker row.
func (s *Store) LoadBench(id string) (*bench.Report, error) {
	file, err := s.open(id, benchFile)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	report := &bench.Report{Rows: make([]bench.Row, 0)}
	scanner := bufio.NewScanner(file)
	for line := 1; scanner.Scan(); line++ {
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) != 3 {
			return nil, fmt.Errorf("storage: %s line %d: expected 3 columns, got %d", benchFile, line, len(fields))
		}
		workers, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, fmt.Errorf("storage: %s line %d: %w", benchFile, line, err)
		}
		vals, err := parseFloats(fields[1:], 2)
		if err != nil {
			return nil, fmt.Errorf("storage: %s line %d: %w", benchFile, line, err)
		}
		report.Rows = append(report.Rows, bench.Row{
			Workers: workers,
			Mean:    time.Duration(vals[0]),
			Speedup: vals[1],
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	for _, row := range report.Rows {
		if row.Workers == 1 && row.Speedup > 0 {
			report.Serial = time.Duration(float64(row.Mean) * row.Speedup)
		}
	}
	return report, nil
}

func (s *Store) path(id, name string) string {
	return filepath.Join(s.baseDir, id, name)
}

func (s *Store) open(id, name string) (*os.File, error) {
	file, err := os.Open(s.path(id, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, id, name)
		}
		return nil, err
	}
	return file, nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func parseFloats(fields []string, n int) ([]float64, error) {
	if len(fields) != n {
		return nil, fmt.Errorf("expected %d columns, got %d", n, len(fields))
	}
	vals := make([]float64, n)
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	return vals, nil
}
