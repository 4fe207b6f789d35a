package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/potsim/internal/bench"
	"github.com/san-kum/potsim/internal/particle"
)

type ExportData struct {
	Metadata
	Positions [][2]float64  `json:"positions,omitempty"`
	Charges   []float64     `json:"charges,omitempty"`
	Bench     *bench.Report `json:"bench,omitempty"`
}

// Export writes a record and whatever payload it carries as indented JSON.
func (s *Store) Export(w io.Writer, id string) error {
	meta, err := s.Load(id)
	if err != nil {
		return err
	}

	data := ExportData{Metadata: *meta}
	switch meta.Kind {
	case KindRun:
		ps, err := s.LoadParticles(id)
		if err != nil {
			return err
		}
		data.Positions, data.Charges = flatten(ps)
	case KindBench:
		report, err := s.LoadBench(id)
		if err != nil {
			return err
		}
		data.Bench = report
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func flatten(ps []particle.Particle) ([][2]float64, []float64) {
	pos := make([][2]float64, len(ps))
	qs := make([]float64, len(ps))
	for i, p := range ps {
		pos[i] = [2]float64{p.X.X, p.X.Y}
		qs[i] = p.Q
	}
	return pos, qs
}
