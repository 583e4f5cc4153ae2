// Package solve implements `solvecurve solve`: calibrate the job nodes to its swap basket.
package solve

import (
	"flag"
	"fmt"
	"io"

	"github.com/meenmo/swapcurve/cmd/solvecurve/internal/job"
	"github.com/meenmo/swapcurve/cmd/solvecurve/internal/report"
	"github.com/meenmo/swapcurve/curve"
	"github.com/meenmo/swapcurve/logger"
	"github.com/meenmo/swapcurve/utils"
)

func Run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("solve", flag.ContinueOnError)
	fs.SetOutput(stderr)
	path := fs.String("config", "", "job file (yaml, json or toml); reads YAML from stdin when empty")
	help := fs.Bool("h", false, "Show help")
	fs.BoolVar(help, "help", false, "Show help")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *help {
		usage(stderr)
		return 0
	}

	j, err := job.Open(*path, stdin)
	if err != nil {
		return report.WriteError(stdout, err.Error())
	}
	logger.Init(j.Config.Log, stderr)

	out, err := calibrate(j)
	if err != nil {
		return report.WriteError(stdout, err.Error())
	}
	if err := report.Write(stdout, out); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  solvecurve solve -config job.yaml")
	fmt.Fprintln(w, "  solvecurve solve < job.yaml")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Calibrate the job nodes so every swap reprices to its rate; output JSON to stdout.")
}

func calibrate(j *job.Job) (*report.Solve, error) {
	nodes, err := j.CurveNodes()
	if err != nil {
		return nil, err
	}
	interp, err := j.InterpolationType()
	if err != nil {
		return nil, err
	}
	swaps, err := j.BuildSwaps()
	if err != nil {
		return nil, err
	}
	rates, err := j.ObjRates()
	if err != nil {
		return nil, err
	}

	instruments := make([]curve.Instrument, len(swaps))
	for i, sw := range swaps {
		instruments[i] = sw
	}
	sc, err := curve.NewSolved(curve.SolvedParams{
		Nodes:         nodes,
		Interpolation: interp,
		Swaps:         instruments,
		ObjRates:      rates,
		Algorithm:     j.Algorithm,
		Config:        &j.Config.Solver,
	})
	if err != nil {
		return nil, err
	}

	status, err := sc.Iterate()
	if err != nil {
		return nil, fmt.Errorf("calibration failed after %d iterations: %w", sc.Iterations(), err)
	}
	logger.L().Info("calibration finished", "status", status, "objective", sc.F().Real())

	out := &report.Solve{
		Status:     status,
		State:      sc.State().String(),
		Iterations: sc.Iterations(),
		Objective:  sc.F().Real(),
		Nodes:      report.Nodes(sc.Curve),
		Swaps:      make([]report.CalibratedSwap, len(swaps)),
	}
	residuals := sc.Residuals()
	for i, sw := range swaps {
		out.Swaps[i] = report.CalibratedSwap{
			Effective:   sw.EffectiveDate().Format(utils.DateLayout),
			Maturity:    sw.Maturity().Format(utils.DateLayout),
			TenorMonths: sw.TenorMonths(),
			Objective:   report.Round(rates[i], report.RatePlaces),
			Rate:        report.Round(rates[i]+residuals[i].Real(), report.RatePlaces),
			Residual:    report.Round(residuals[i].Real(), report.RatePlaces),
		}
	}
	return out, nil
}
