package potential

import (
	"bytes"
	"errors"
	"math"

	g "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/san-kum/potsim/internal/field"
	"github.com/san-kum/potsim/internal/particle"
	"github.com/san-kum/potsim/internal/render"
	"gonum.org/v1/gonum/spatial/r2"
)

func mustEngines(w, h, workers int, opts ...Option) (*Serial, *Parallel) {
	s, err := NewSerial(w, h, opts...)
	Expect(err).NotTo(HaveOccurred())
	p, err := NewParallel(w, h, append(opts, WithWorkers(workers))...)
	Expect(err).NotTo(HaveOccurred())
	return s, p
}

var _ = g.Describe("Engine construction", func() {
	g.It("selects engines by kind", func() {
		for _, kind := range Kinds() {
			eng, err := New(kind, 4, 4)
			Expect(err).NotTo(HaveOccurred())
			Expect(eng.Name()).To(Equal(kind))
		}
	})

	g.It("rejects unknown kinds", func() {
		_, err := New("gpu", 4, 4)
		Expect(err).To(MatchError(ErrUnknownEngine))
	})

	g.It("rejects empty grids", func() {
		_, err := NewSerial(0, 4)
		Expect(err).To(HaveOccurred())
		_, err = NewParallel(4, -1)
		Expect(err).To(HaveOccurred())
	})
})

var _ = g.Describe("ComputeField", func() {
	g.DescribeTable("matches the serial reference",
		func(w, h, n, workers int, seed int64) {
			serial, par := mustEngines(w, h, workers)
			ps := randomEnsemble(n, seed)
			before := particle.Clone(ps)

			es, err := serial.ComputeField(ps)
			Expect(err).NotTo(HaveOccurred())
			ep, err := par.ComputeField(ps)
			Expect(err).NotTo(HaveOccurred())

			Expect(ep.Lo).To(BeNumerically("~", es.Lo, abstol))
			Expect(ep.Hi).To(BeNumerically("~", es.Hi, abstol))
			for i, v := range serial.Grid().Values {
				Expect(par.Grid().Values[i]).To(BeNumerically("~", v, abstol), "cell %d", i)
			}
			Expect(ps).To(Equal(before), "compute must not modify particles")
		},
		g.Entry("square grid, one worker", 32, 32, 5, 1, int64(1)),
		g.Entry("square grid, many workers", 64, 64, 12, 8, int64(2)),
		g.Entry("wide grid", 50, 7, 9, 3, int64(3)),
		g.Entry("tall grid", 7, 50, 9, 4, int64(4)),
		g.Entry("more workers than rows", 16, 3, 4, 16, int64(5)),
		g.Entry("single particle", 20, 20, 1, 6, int64(6)),
	)

	g.It("returns the same extent for any partition shape", func() {
		ps := randomEnsemble(10, 42)
		serial, _ := mustEngines(40, 37, 1)
		want, err := serial.ComputeField(ps)
		Expect(err).NotTo(HaveOccurred())
		Expect(want).To(Equal(serial.Grid().Extent()))

		for workers := 1; workers <= 9; workers++ {
			for _, minChunk := range []int{1, 2, 5, 13} {
				par, err := NewParallel(40, 37, WithWorkers(workers), WithMinChunk(minChunk))
				Expect(err).NotTo(HaveOccurred())
				got, err := par.ComputeField(ps)
				Expect(err).NotTo(HaveOccurred())
				Expect(got).To(Equal(want), "workers=%d minChunk=%d", workers, minChunk)
			}
		}
	})

	g.It("tracks extents of entirely negative fields", func() {
		ps := []particle.Particle{particle.New(0.3, 0.3, -1), particle.New(0.6, 0.7, -2)}
		_, par := mustEngines(16, 16, 4)
		ext, err := par.ComputeField(ps)
		Expect(err).NotTo(HaveOccurred())
		Expect(ext.Hi).To(BeNumerically("<", 0))
		Expect(ext).To(Equal(par.Grid().Extent()))
	})

	g.It("overwrites the previous field completely", func() {
		serial, par := mustEngines(24, 24, 3)
		first := randomEnsemble(6, 7)
		second := randomEnsemble(3, 8)
		for _, eng := range []Engine{serial, par} {
			_, err := eng.ComputeField(first)
			Expect(err).NotTo(HaveOccurred())
			ext, err := eng.ComputeField(second)
			Expect(err).NotTo(HaveOccurred())

			fresh, _ := NewSerial(24, 24)
			want, _ := fresh.ComputeField(second)
			Expect(ext).To(Equal(want))
			Expect(eng.Grid().Values).To(Equal(fresh.Grid().Values))
		}
	})

	g.It("is zero at the midpoint of a symmetric dipole", func() {
		ps := []particle.Particle{particle.New(0.25, 0.5, 1), particle.New(0.75, 0.5, -1)}
		serial, par := mustEngines(8, 8, 4)
		for _, eng := range []Engine{serial, par} {
			_, err := eng.ComputeField(ps)
			Expect(err).NotTo(HaveOccurred())
			Expect(eng.Grid().Point(4, 4)).To(Equal(r2.Vec{X: 0.5, Y: 0.5}))
			Expect(eng.Grid().At(4, 4)).To(BeNumerically("~", 0, abstol))
		}
	})

	g.It("peaks at the nearest sample and bottoms at the farthest corner", func() {
		p := particle.New(0.5, 0.5, 1)
		ps := []particle.Particle{p}
		serial, par := mustEngines(8, 8, 3)
		for _, eng := range []Engine{serial, par} {
			ext, err := eng.ComputeField(ps)
			Expect(err).NotTo(HaveOccurred())
			g := eng.Grid()
			Expect(ext.Hi).To(Equal(p.PotentialAt(g.Point(4, 4))))
			Expect(ext.Hi).To(Equal(particle.K / particle.MinDistance))
			Expect(ext.Lo).To(Equal(p.PotentialAt(g.Point(0, 0))))
			Expect(ext.Lo).To(BeNumerically("~", 1/math.Sqrt(0.5), 1e-12))
		}
	})

	g.It("rejects an empty ensemble", func() {
		serial, par := mustEngines(4, 4, 2)
		for _, eng := range []Engine{serial, par} {
			_, err := eng.ComputeField(nil)
			Expect(err).To(MatchError(ErrNoParticles))
			Expect(eng.Grid().Ready()).To(BeFalse())

			var opErr *OpError
			Expect(errors.As(err, &opErr)).To(BeTrue())
			Expect(opErr.Op).To(Equal("compute_field"))
			Expect(opErr.Engine).To(Equal(eng.Name()))
		}
	})

	g.It("rejects non-finite particles", func() {
		ps := []particle.Particle{particle.New(0.5, 0.5, math.NaN())}
		serial, par := mustEngines(4, 4, 2)
		for _, eng := range []Engine{serial, par} {
			_, err := eng.ComputeField(ps)
			Expect(err).To(MatchError(ErrInvalidParticle))
		}
	})
})

var _ = g.Describe("MoveParticles", func() {
	g.DescribeTable("matches the serial reference",
		func(n, workers, substeps, calls int, dt float64) {
			serial, par := mustEngines(4, 4, workers)
			ps := randomEnsemble(n, int64(n*31+workers))
			pp := particle.Clone(ps)

			for c := 0; c < calls; c++ {
				Expect(serial.MoveParticles(ps, dt, substeps)).To(Succeed())
				Expect(par.MoveParticles(pp, dt, substeps)).To(Succeed())
			}

			for i := range ps {
				Expect(r2.Norm(r2.Sub(ps[i].X, pp[i].X))).To(BeNumerically("<", abstol), "position %d", i)
				Expect(r2.Norm(r2.Sub(ps[i].P, pp[i].P))).To(BeNumerically("<", abstol), "previous %d", i)
				Expect(r2.Norm(r2.Sub(ps[i].V, pp[i].V))).To(BeNumerically("<", abstol), "velocity %d", i)
				Expect(r2.Norm(r2.Sub(ps[i].F, pp[i].F))).To(BeNumerically("<", abstol), "force %d", i)
			}
		},
		g.Entry("pair", 2, 2, 10, 5, 1e-5),
		g.Entry("small ensemble", 9, 4, 10, 10, 1e-5),
		g.Entry("workers exceed particles", 5, 16, 3, 4, 1e-5),
		g.Entry("larger ensemble", 64, 8, 10, 3, 1e-6),
		g.Entry("single substep", 16, 3, 1, 20, 1e-5),
	)

	g.It("applies the semi-implicit Euler update", func() {
		ps := []particle.Particle{particle.New(0.4, 0.5, 1), particle.New(0.6, 0.5, 1)}
		x0 := ps[0].X
		f0 := ps[0].Force(&ps[1])

		serial, _ := mustEngines(4, 4, 1)
		Expect(serial.MoveParticles(ps, 1e-3, 1)).To(Succeed())

		Expect(ps[0].F).To(Equal(f0))
		Expect(ps[0].V).To(Equal(r2.Scale(1e-3, f0)))
		Expect(ps[0].P).To(Equal(x0))
		Expect(ps[0].X).To(Equal(r2.Add(x0, r2.Scale(1e-3, ps[0].V))))
		Expect(ps[0].X.X).To(BeNumerically("<", x0.X), "like charges repel")
	})

	g.It("isolates the force phase from the integration phase", func() {
		const substeps = 10
		dt := 1e-5
		ps := randomEnsemble(12, 99)
		reordered := particle.Clone(ps)
		leaky := particle.Clone(ps)

		serial, _ := mustEngines(4, 4, 1)
		Expect(serial.MoveParticles(ps, dt, substeps)).To(Succeed())

		// same phases, particles visited last to first
		ssdt := dt / substeps
		for ss := 0; ss < substeps; ss++ {
			for i := len(reordered) - 1; i >= 0; i-- {
				reordered[i].F = netForce(reordered, i)
			}
			for i := len(reordered) - 1; i >= 0; i-- {
				integrate(&reordered[i], ssdt)
			}
		}
		Expect(reordered).To(Equal(ps))

		// fusing the phases lets later particles see moved neighbours
		for ss := 0; ss < substeps; ss++ {
			for i := range leaky {
				leaky[i].F = netForce(leaky, i)
				integrate(&leaky[i], ssdt)
			}
		}
		Expect(leaky).NotTo(Equal(ps))
	})

	g.It("rejects invalid arguments", func() {
		serial, par := mustEngines(4, 4, 2)
		ps := basicEnsemble()
		for _, eng := range []Engine{serial, par} {
			Expect(eng.MoveParticles(ps, 1e-5, 0)).To(MatchError(ErrInvalidSubsteps))
			Expect(eng.MoveParticles(ps, 1e-5, -3)).To(MatchError(ErrInvalidSubsteps))
			Expect(eng.MoveParticles(ps, 0, 10)).To(MatchError(ErrInvalidTimestep))
			Expect(eng.MoveParticles(ps, math.NaN(), 10)).To(MatchError(ErrInvalidTimestep))
			Expect(eng.MoveParticles(ps, math.Inf(1), 10)).To(MatchError(ErrInvalidTimestep))
			Expect(eng.MoveParticles(nil, 1e-5, 10)).To(MatchError(ErrNoParticles))
		}
		Expect(ps).To(Equal(basicEnsemble()), "rejected calls must not move particles")
	})
})

var _ = g.Describe("SaveSolution", func() {
	var ps []particle.Particle

	g.BeforeEach(func() {
		ps = basicEnsemble()
	})

	g.DescribeTable("produces identical bytes",
		func(w, h, workers int, enc render.Encoder) {
			serial, par := mustEngines(w, h, workers, WithEncoder(enc))
			es, err := serial.ComputeField(ps)
			Expect(err).NotTo(HaveOccurred())
			_, err = par.ComputeField(ps)
			Expect(err).NotTo(HaveOccurred())

			cmap := bandMap{lo: es.Lo / 10, hi: es.Hi / 10}
			var bs, bp bytes.Buffer
			Expect(serial.SaveSolution(&bs, cmap)).To(Succeed())
			Expect(par.SaveSolution(&bp, cmap)).To(Succeed())
			Expect(bs.Len()).To(BeNumerically(">", 0))
			Expect(bp.Bytes()).To(Equal(bs.Bytes()))
		},
		g.Entry("png", 64, 64, 8, render.PNG{}),
		g.Entry("png, odd grid", 33, 17, 5, render.PNG{}),
		g.Entry("ppm", 40, 30, 3, render.PPM{}),
	)

	g.It("flips rows so grid row 0 is the bottom of the image", func() {
		serial, par := mustEngines(6, 5, 2)
		for _, eng := range []Engine{serial, par} {
			ext, err := eng.ComputeField(ps)
			Expect(err).NotTo(HaveOccurred())
			cmap := bandMap{lo: ext.Lo, hi: ext.Hi}
			Expect(eng.SaveSolution(&bytes.Buffer{}, cmap)).To(Succeed())

			grid := eng.Grid()
			for row := 0; row < grid.Height; row++ {
				for col := 0; col < grid.Width; col++ {
					want, _ := cmap.Lookup(grid.At(row, col))
					Expect(grid.Pixels.RGBAAt(col, grid.Height-1-row)).To(Equal(want))
				}
			}
		}
	})

	g.It("requires a computed field", func() {
		serial, par := mustEngines(4, 4, 2)
		for _, eng := range []Engine{serial, par} {
			w := &countingWriter{}
			Expect(eng.SaveSolution(w, bandMap{lo: 0, hi: 1})).To(MatchError(ErrFieldNotComputed))
			Expect(w.n).To(BeZero())
		}
	})

	g.It("surfaces colormap failures without writing", func() {
		boom := errors.New("lookup table unloaded")
		serial, par := mustEngines(8, 8, 4)
		for _, eng := range []Engine{serial, par} {
			_, err := eng.ComputeField(ps)
			Expect(err).NotTo(HaveOccurred())

			w := &countingWriter{}
			err = eng.SaveSolution(w, failingMap{err: boom})
			Expect(err).To(MatchError(boom))
			Expect(w.n).To(BeZero())
		}
	})

	g.It("surfaces stream failures", func() {
		serial, par := mustEngines(8, 8, 4)
		for _, eng := range []Engine{serial, par} {
			_, err := eng.ComputeField(ps)
			Expect(err).NotTo(HaveOccurred())
			Expect(eng.SaveSolution(failWriter{}, bandMap{lo: -1, hi: 1})).To(HaveOccurred())
		}
	})

	g.It("does not depend on the previous extent of the grid", func() {
		_, par := mustEngines(16, 16, 4)
		_, err := par.ComputeField(randomEnsemble(5, 1))
		Expect(err).NotTo(HaveOccurred())
		ext, err := par.ComputeField(ps)
		Expect(err).NotTo(HaveOccurred())
		Expect(ext).To(Equal(field.ExtentOf(par.Grid().Values)))
	})
})
