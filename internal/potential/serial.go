package potential

import (
	"fmt"
	"io"

	"github.com/san-kum/potsim/internal/field"
	"github.com/san-kum/potsim/internal/particle"
	"go.uber.org/zap"
)

// Serial is the single-goroutine reference engine.
type Serial struct {
	grid *field.Grid
	opts options
}

func NewSerial(width, height int, opts ...Option) (*Serial, error) {
	g, err := field.New(width, height)
	if err != nil {
		return nil, err
	}
	return &Serial{grid: g, opts: buildOptions(opts)}, nil
}

func (s *Serial) Name() string      { return KindSerial }
func (s *Serial) Grid() *field.Grid { return s.grid }

func (s *Serial) ComputeField(ps []particle.Particle) (field.Extent, error) {
	if err := checkParticles(ps); err != nil {
		return field.Extent{}, opErr(KindSerial, "compute_field", err)
	}

	s.grid.Reset()
	ext := sampleRows(s.grid, ps, 0, s.grid.Height)
	s.grid.MarkReady()

	s.opts.logger.Debug("field computed",
		zap.String("engine", KindSerial),
		zap.Int("particles", len(ps)),
		zap.Float64("lo", ext.Lo),
		zap.Float64("hi", ext.Hi))
	return ext, nil
}

func (s *Serial) MoveParticles(ps []particle.Particle, dt float64, substeps int) error {
	if err := checkStep(ps, dt, substeps); err != nil {
		return opErr(KindSerial, "move_particles", err)
	}

	ssdt := dt / float64(substeps)
	for ss := 0; ss < substeps; ss++ {
		for i := range ps {
			ps[i].F = netForce(ps, i)
		}
		for i := range ps {
			integrate(&ps[i], ssdt)
		}
	}
	return nil
}

func (s *Serial) SaveSolution(w io.Writer, cmap ColorMap) error {
	if !s.grid.Ready() {
		return opErr(KindSerial, "save_solution", ErrFieldNotComputed)
	}
	if err := shadeRows(s.grid, cmap, 0, s.grid.Height); err != nil {
		return opErr(KindSerial, "save_solution", fmt.Errorf("colormap: %w", err))
	}
	if err := s.opts.encoder.Encode(w, s.grid.Pixels); err != nil {
		return opErr(KindSerial, "save_solution", err)
	}
	return nil
}
