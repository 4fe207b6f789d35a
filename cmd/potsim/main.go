package main

import (
	"fmt"
	"os"

	"github.com/san-kum/potsim/internal/colormap"
	"github.com/san-kum/potsim/internal/config"
	"github.com/san-kum/potsim/internal/render"
	"github.com/san-kum/potsim/internal/scenario"
	"github.com/spf13/cobra"
)

var (
	configFile  string
	dataDir     string
	preset      string
	particles   int
	seed        int64
	resolution  int
	maxIter     int
	dt          float64
	substeps    int
	updateScale bool
	engineKind  string
	workers     int
	cmapName    string
	encoderName string
	output      string
	repetitions int
	maxWorkers  int
	datFile     string
	exportOut   string
	logLevel    string
)

// main registers the potsim commands and exits with status 1 on error.
func main() {
	rootCmd := &cobra.Command{
		Use:           "potsim",
		Short:         "2D electrostatic potential simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", "", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run [scenario]",
		Short: "run a simulation and write one image per iteration",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addSimFlags(runCmd)
	runCmd.Flags().StringVar(&engineKind, "engine", "", "engine (serial, parallel)")
	runCmd.Flags().IntVar(&workers, "workers", 0, "parallel workers (0 = all cpus)")
	runCmd.Flags().StringVar(&encoderName, "encoder", "", "image encoder (png, ppm)")
	runCmd.Flags().StringVar(&output, "output", "", "frame path pattern, empty to discard frames")
	runCmd.Flags().BoolVar(&updateScale, "update-scale", false, "rescale the colormap every frame")

	benchCmd := &cobra.Command{
		Use:   "bench [scenario]",
		Short: "measure parallel speedup against the serial engine",
		Args:  cobra.MaximumNArgs(1),
		RunE:  benchScenario,
	}
	addSimFlags(benchCmd)
	benchCmd.Flags().IntVar(&repetitions, "reps", 0, "repetitions per measurement")
	benchCmd.Flags().IntVar(&maxWorkers, "max-workers", 0, "largest worker count (0 = all cpus)")
	benchCmd.Flags().StringVar(&datFile, "dat", "", "also write the sweep to this file")

	liveCmd := &cobra.Command{
		Use:   "live [scenario]",
		Short: "watch the field evolve in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addSimFlags(liveCmd)
	liveCmd.Flags().IntVar(&workers, "workers", 0, "parallel workers (0 = all cpus)")
	liveCmd.Flags().BoolVar(&updateScale, "update-scale", false, "rescale the colormap every frame")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs and benchmarks",
		RunE:  listRecords,
	}

	showCmd := &cobra.Command{
		Use:   "show [id]",
		Short: "show a stored run or plot a benchmark",
		Args:  cobra.ExactArgs(1),
		RunE:  showRecord,
	}

	exportCmd := &cobra.Command{
		Use:   "export [id]",
		Short: "export a record as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRecord,
	}
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (default stdout)")

	presetsCmd := &cobra.Command{
		Use:   "presets [scenario]",
		Short: "list available presets for a scenario",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			presets := config.ListPresets(args[0])
			if len(presets) == 0 {
				fmt.Printf("no presets for scenario: %s\n", args[0])
				return nil
			}
			fmt.Printf("presets for %s:\n", args[0])
			for _, p := range presets {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	scenariosCmd := &cobra.Command{
		Use:   "scenarios",
		Short: "list scenarios, colormaps and encoders",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("scenarios:")
			for _, name := range scenario.NewRegistry().Names() {
				fmt.Printf("  %s\n", name)
			}
			fmt.Println("colormaps:")
			for _, name := range colormap.Names() {
				fmt.Printf("  %s\n", name)
			}
			fmt.Println("encoders:")
			for _, name := range render.Names() {
				fmt.Printf("  %s\n", name)
			}
		},
	}

	initCmd := &cobra.Command{
		Use:   "init-config [path]",
		Short: "write the default configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Save(args[0], config.DefaultConfig()); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", args[0])
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, benchCmd, liveCmd, listCmd, showCmd, exportCmd, presetsCmd, scenariosCmd, initCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addSimFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().IntVarP(&particles, "particles", "n", 0, "number of particles")
	cmd.Flags().Int64Var(&seed, "seed", 1, "random seed")
	cmd.Flags().IntVar(&resolution, "res", 0, "grid resolution (square)")
	cmd.Flags().IntVar(&maxIter, "iter", 0, "iterations")
	cmd.Flags().Float64Var(&dt, "dt", 0, "time step per iteration")
	cmd.Flags().IntVar(&substeps, "substeps", 0, "sub-steps per iteration")
	cmd.Flags().StringVar(&cmapName, "colormap", "", "builtin colormap name or image path")
}
