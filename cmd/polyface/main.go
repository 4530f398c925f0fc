// polyface is a CLI for faceting YAML scene files into indexed meshes.
package main

import (
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"go.uber.org/zap"

	"github.com/Faultbox/polyface/internal/config"
	"github.com/Faultbox/polyface/internal/logger"
	"github.com/Faultbox/polyface/internal/scene"
	"github.com/Faultbox/polyface/pkg/polyface"
)

func main() {
	flag.Usage = printUsage
	config.ParseFlags()
	os.Exit(run(flag.Args()))
}

func run(args []string) int {
	if len(args) < 1 {
		printUsage()
		return 1
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		return 1
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		return 1
	}
	defer logger.Sync()
	logConfig(cfg)

	command := args[0]
	args = args[1:]

	switch command {
	case "build", "b":
		return cmdBuild(cfg, args)
	case "options", "opts":
		return cmdOptions(cfg)
	case "save-config":
		return cmdSaveConfig(cfg, args)
	case "help", "-h", "--help":
		printUsage()
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		return 1
	}
}

func printUsage() {
	fmt.Println(`polyface - facet curves and surfaces into indexed meshes

Usage:
  polyface [flags] <command> [args]

Commands:
  build <scene.yaml>          Build a scene and print mesh statistics
  options                     Print the effective configuration as YAML
  save-config [path]          Write the effective configuration
  help                        Show this help

Flags:
  -config <path>              Config file (default ./polyface.yaml or user config dir)
  -debug                      Enable debug logging
  -max-edge <len>             Maximum edge length, 0 disables
  -angle-tol <degrees>        Angle tolerance, 0 disables
  -param-mode <mode>          distance, 01both or 01larger
  -normals=false              Skip normals
  -params=false               Skip params
  -edge-chains                Emit edge chains

Examples:
  polyface build internal/scene/testdata/demo.yaml
  polyface -max-edge 0.25 -edge-chains build part.yaml
  polyface -angle-tol 5 options`)
}

func cmdBuild(cfg *config.Config, args []string) int {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: polyface build <scene.yaml>")
		return 1
	}

	s, err := scene.Load(args[0], cfg.Facet)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	logger.Info("building scene", zap.String("file", args[0]), zap.Int("shapes", len(s.Shapes)))

	mesh := &polyface.Mesh{}
	report, err := s.Build(mesh, logger.Named("scene"))
	if report == nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	printReport(report)
	logFailedShapes(report)

	if verr := mesh.Validate(); verr != nil {
		logger.Error("mesh failed validation", zap.Error(verr))
		return 1
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func logConfig(cfg *config.Config) {
	o := cfg.Facet
	logger.Sugar.Debugf("facet options: max edge %g, angle tolerance %g rad, %d..%d per ellipse, param mode %s",
		o.MaxEdgeLength, o.AngleTolerance.Radians(), o.MinPerEllipse, o.MaxPerEllipse, o.ParamMode)
	logger.Debug("streams",
		zap.Bool("normals", o.NormalsRequired),
		zap.Bool("params", o.ParamsRequired),
		zap.Bool("edge_chains", o.EdgeChainsRequired))
}

// logFailedShapes warns once per shape that emitted nothing and returns
// how many failed.
func logFailedShapes(r *scene.Report) int {
	failed := 0
	for _, sh := range r.Shapes {
		if sh.Err != nil {
			logger.Warn("shape failed", zap.String("shape", sh.Label), zap.Error(sh.Err))
			failed++
		}
	}
	return failed
}

func printReport(r *scene.Report) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SHAPE\tFACETS\tSTATUS")
	for _, sh := range r.Shapes {
		status := "ok"
		if sh.Err != nil {
			status = "failed"
		}
		fmt.Fprintf(w, "%s\t%d\t%s\n", sh.Label, sh.Facets, status)
	}
	w.Flush()

	fmt.Println()
	fmt.Printf("Points:      %d\n", r.Points)
	fmt.Printf("Normals:     %d\n", r.Normals)
	fmt.Printf("Params:      %d\n", r.Params)
	fmt.Printf("Facets:      %d\n", r.Facets)
	fmt.Printf("Faces:       %d\n", r.Faces)
	fmt.Printf("Edge chains: %d\n", r.EdgeChains)
	if r.HasBounds {
		fmt.Printf("Range:       (%g, %g, %g) - (%g, %g, %g)\n",
			r.Bounds.Min.X, r.Bounds.Min.Y, r.Bounds.Min.Z,
			r.Bounds.Max.X, r.Bounds.Max.Y, r.Bounds.Max.Z)
	}
}

func cmdOptions(cfg *config.Config) int {
	data, err := cfg.Marshal()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	os.Stdout.Write(data)
	return 0
}

func cmdSaveConfig(cfg *config.Config, args []string) int {
	var err error
	if len(args) > 0 {
		err = cfg.SaveTo(args[0])
	} else {
		err = cfg.Save()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	logger.Info("config saved")
	return 0
}
