package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/san-kum/potsim/internal/bench"
	"github.com/san-kum/potsim/internal/particle"
	"gonum.org/v1/gonum/spatial/r2"
)

func sampleParticles() []particle.Particle {
	a := particle.New(0.25, 0.5, 1)
	a.V = r2.Vec{X: 0.125, Y: -2}
	b := particle.New(0.75, 0.5, -1)
	return []particle.Particle{a, b}
}

func TestStoreSaveLoadRun(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	meta := Metadata{
		Scenario: "basic",
		Seed:     42,
		Engine:   "parallel",
		Metrics:  map[string]float64{"energy": 1.5},
	}
	id, err := st.SaveRun(meta, sampleParticles())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if !strings.HasPrefix(id, "run_") || len(id) != len("run_")+8 {
		t.Errorf("unexpected run id %q", id)
	}

	loaded, err := st.Load(id)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Kind != KindRun {
		t.Errorf("expected kind %q, got %q", KindRun, loaded.Kind)
	}
	if loaded.Scenario != "basic" || loaded.Seed != 42 {
		t.Errorf("metadata mismatch: %+v", loaded)
	}
	if loaded.Metrics["energy"] != 1.5 {
		t.Errorf("expected energy 1.5, got %f", loaded.Metrics["energy"])
	}

	ps, err := st.LoadParticles(id)
	if err != nil {
		t.Fatalf("load particles failed: %v", err)
	}
	want := sampleParticles()
	if len(ps) != len(want) {
		t.Fatalf("expected %d particles, got %d", len(want), len(ps))
	}
	for i := range want {
		if ps[i].X != want[i].X || ps[i].V != want[i].V || ps[i].Q != want[i].Q {
			t.Errorf("particle %d: got %+v, want %+v", i, ps[i], want[i])
		}
	}
}

func TestStoreSaveLoadBench(t *testing.T) {
	st := New(t.TempDir())
	report := &bench.Report{
		Serial: 8 * time.Millisecond,
		Rows: []bench.Row{
			{Workers: 1, Mean: 10 * time.Millisecond, Speedup: 0.8},
			{Workers: 2, Mean: 5 * time.Millisecond, Speedup: 1.6},
		},
	}

	id, err := st.SaveBench(Metadata{Scenario: "crystal"}, report)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if !strings.HasPrefix(id, "bench_") {
		t.Errorf("unexpected bench id %q", id)
	}

	loaded, err := st.LoadBench(id)
	if err != nil {
		t.Fatalf("load bench failed: %v", err)
	}
	if len(loaded.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(loaded.Rows))
	}
	if loaded.Rows[1] != report.Rows[1] {
		t.Errorf("row mismatch: got %+v, want %+v", loaded.Rows[1], report.Rows[1])
	}
	if loaded.Serial != report.Serial {
		t.Errorf("expected serial %v, got %v", report.Serial, loaded.Serial)
	}
}

func TestStoreList(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)

	old := Metadata{Scenario: "old", Timestamp: time.Now().Add(-time.Hour)}
	if _, err := st.SaveRun(old, sampleParticles()); err != nil {
		t.Fatal(err)
	}
	if _, err := st.SaveBench(Metadata{Scenario: "new"}, &bench.Report{}); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(dir, "junk"), 0755); err != nil {
		t.Fatal(err)
	}

	records, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Scenario != "new" {
		t.Errorf("expected newest first, got %q", records[0].Scenario)
	}
}

func TestStoreListMissingDir(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "absent"))
	records, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected no records, got %d", len(records))
	}
}

func TestStoreNotFound(t *testing.T) {
	st := New(t.TempDir())
	if _, err := st.Load("run_missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := st.LoadParticles("run_missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestExport(t *testing.T) {
	st := New(t.TempDir())
	id, err := st.SaveRun(Metadata{Scenario: "basic"}, sampleParticles())
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := st.Export(&buf, id); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	var data ExportData
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if data.ID != id {
		t.Errorf("expected id %q, got %q", id, data.ID)
	}
	if len(data.Charges) != 2 || data.Charges[1] != -1 {
		t.Errorf("unexpected charges %v", data.Charges)
	}
	if data.Positions[0] != [2]float64{0.25, 0.5} {
		t.Errorf("unexpected position %v", data.Positions[0])
	}
}

func TestSaveRunKeepsZeroExtent(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)
	id, err := st.SaveRun(Metadata{Scenario: "basic", Lo: 0, Hi: 0}, sampleParticles())
	if err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(dir, id, metadataFile))
	if err != nil {
		t.Fatal(err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"lo", "hi"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("metadata.json is missing %q: %s", key, data)
		}
	}
}
