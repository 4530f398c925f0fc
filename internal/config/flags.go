package config

import (
	"flag"
	"strconv"

	"github.com/golang/geo/s1"

	"github.com/Faultbox/polyface/pkg/facet"
)

// optionalBool is a boolean flag that remembers whether it was given, so
// that an explicit false can override a true default.
type optionalBool struct {
	set   bool
	value bool
}

func (b *optionalBool) String() string {
	if b == nil || !b.set {
		return ""
	}
	return strconv.FormatBool(b.value)
}

func (b *optionalBool) Set(s string) error {
	v, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	b.set, b.value = true, v
	return nil
}

func (b *optionalBool) IsBoolFlag() bool { return true }

var (
	flagConfig     = flag.String("config", "", "Path to config file")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging")
	flagMaxEdge    = flag.Float64("max-edge", -1, "Maximum edge length (0 disables)")
	flagAngleTol   = flag.Float64("angle-tol", -1, "Angle tolerance in degrees (0 disables)")
	flagParamMode  = flag.String("param-mode", "", "Param mode: distance, 01both or 01larger")
	flagNormals    optionalBool
	flagParams     optionalBool
	flagEdgeChains optionalBool
)

func init() {
	flag.Var(&flagNormals, "normals", "Emit normals")
	flag.Var(&flagParams, "params", "Emit params")
	flag.Var(&flagEdgeChains, "edge-chains", "Emit edge chains")
}

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) error {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagMaxEdge >= 0 {
		cfg.Facet.MaxEdgeLength = *flagMaxEdge
	}
	if *flagAngleTol >= 0 {
		cfg.Facet.AngleTolerance = s1.Angle(*flagAngleTol) * s1.Degree
	}
	if *flagParamMode != "" {
		mode, err := facet.ParseParamMode(*flagParamMode)
		if err != nil {
			return err
		}
		cfg.Facet.ParamMode = mode
	}
	if flagNormals.set {
		cfg.Facet.NormalsRequired = flagNormals.value
	}
	if flagParams.set {
		cfg.Facet.ParamsRequired = flagParams.value
	}
	if flagEdgeChains.set {
		cfg.Facet.EdgeChainsRequired = flagEdgeChains.value
	}
	return nil
}
