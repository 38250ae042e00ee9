package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/macebridge/mace-bridge/calc"
	"github.com/macebridge/mace-bridge/engine"
)

func main() {
	var (
		configFile  = flag.String("config", "", "YAML config file with model settings")
		modelPath   = flag.String("model", "", "Path to model file (empty for pretrained)")
		modelType   = flag.String("type", calc.DefaultModelType, "Pretrained model type: small, medium, large")
		device      = flag.String("device", calc.DefaultDevice, "Compute device: cuda or cpu")
		accel       = flag.Bool("accel", false, "Enable acceleration kernels")
		positions   = flag.String("positions", "", "Atom positions: x,y,z;x,y,z;... (Angstrom)")
		numbers     = flag.String("numbers", "", "Atomic numbers: Z0,Z1,...")
		cell        = flag.String("cell", "", "Row-major 3x3 cell, 9 comma-separated values (periodic)")
		pbc         = flag.String("pbc", "1,1,1", "Periodic boundary flags, used with -cell")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
		verbose     = flag.Bool("v", false, "Verbose engine logging")
	)
	flag.Parse()

	if *verbose {
		l, err := zap.NewDevelopment()
		if err == nil {
			engine.SetLogger(l)
		}
	}

	opts, err := buildOptions(*configFile, *modelPath, *modelType, *device, *accel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *interactive {
		if err := runInteractive(opts); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if *positions == "" || *numbers == "" {
		fmt.Fprintln(os.Stderr, "Usage: macecalc -positions x,y,z;... -numbers Z0,Z1,... [-cell ... -pbc ...]")
		fmt.Fprintln(os.Stderr, "       macecalc -i  (interactive mode)")
		os.Exit(1)
	}

	if err := run(opts, *positions, *numbers, *cell, *pbc); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// fileConfig mirrors the optional YAML config file.
type fileConfig struct {
	ModelPath          string `yaml:"model_path"`
	ModelType          string `yaml:"model_type"`
	Device             string `yaml:"device"`
	EnableAcceleration bool   `yaml:"enable_acceleration"`
}

// buildOptions merges the config file with flags; flags win where both set a
// value.
func buildOptions(configFile, modelPath, modelType, device string, accel bool) (calc.Options, error) {
	opts := calc.Options{
		ModelType:          modelType,
		Device:             device,
		EnableAcceleration: accel,
	}

	if configFile != "" {
		data, err := os.ReadFile(configFile)
		if err != nil {
			return opts, fmt.Errorf("read config: %w", err)
		}
		var fc fileConfig
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return opts, fmt.Errorf("parse config: %w", err)
		}
		if fc.ModelPath != "" && modelPath == "" {
			modelPath = fc.ModelPath
		}
		if fc.ModelType != "" && modelType == calc.DefaultModelType {
			opts.ModelType = fc.ModelType
		}
		if fc.Device != "" && device == calc.DefaultDevice {
			opts.Device = fc.Device
		}
		if fc.EnableAcceleration {
			opts.EnableAcceleration = true
		}
	}

	if modelPath != "" {
		opts.ModelPath = &modelPath
	}
	return opts, nil
}

func run(opts calc.Options, posStr, numStr, cellStr, pbcStr string) error {
	ctx := context.Background()

	pos, err := parseFloats(strings.ReplaceAll(posStr, ";", ","))
	if err != nil {
		return fmt.Errorf("parse positions: %w", err)
	}
	nums, err := parseInts(numStr)
	if err != nil {
		return fmt.Errorf("parse numbers: %w", err)
	}
	n := len(nums)

	c, err := calc.New(ctx, opts)
	if err != nil {
		return fmt.Errorf("initialize calculator: %w", err)
	}
	defer c.Close(ctx)

	var res calc.Result
	if cellStr != "" {
		cellVals, err := parseFloats(cellStr)
		if err != nil {
			return fmt.Errorf("parse cell: %w", err)
		}
		flags, err := parseInts(pbcStr)
		if err != nil || len(flags) != 3 {
			return fmt.Errorf("parse pbc: want 3 flags")
		}
		c.CalculatePeriodic(ctx, pos, nums, n, cellVals,
			[3]bool{flags[0] != 0, flags[1] != 0, flags[2] != 0}, &res)
	} else {
		c.Calculate(ctx, pos, nums, n, &res)
	}

	if !res.Success {
		return fmt.Errorf("calculate: %s", res.ErrMsg)
	}

	fmt.Printf("Energy: %.6f eV\n", res.Energy)
	fmt.Printf("Forces (eV/A):\n")
	for i := 0; i < res.NumAtoms; i++ {
		fmt.Printf("  %3d  %12.6f %12.6f %12.6f\n",
			i, res.Forces[i*3], res.Forces[i*3+1], res.Forces[i*3+2])
	}
	return nil
}

func parseFloats(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func parseInts(s string) ([]int32, error) {
	parts := strings.Split(s, ",")
	out := make([]int32, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := strconv.ParseInt(p, 10, 32)
		if err != nil {
			return nil, err
		}
		out = append(out, int32(v))
	}
	return out, nil
}
