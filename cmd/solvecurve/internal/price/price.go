// Package price implements `solvecurve price`: value the job swaps off the job nodes as given.
package price

import (
	"flag"
	"fmt"
	"io"

	"github.com/meenmo/swapcurve/cmd/solvecurve/internal/job"
	"github.com/meenmo/swapcurve/cmd/solvecurve/internal/report"
	"github.com/meenmo/swapcurve/curve"
	"github.com/meenmo/swapcurve/dual"
	"github.com/meenmo/swapcurve/logger"
	"github.com/meenmo/swapcurve/utils"
)

func Run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("price", flag.ContinueOnError)
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

	out, err := value(j)
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
	fmt.Fprintln(w, "  solvecurve price -config job.yaml")
	fmt.Fprintln(w, "  solvecurve price < job.yaml")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Price every job swap off the job nodes: analytic delta, par rate, NPV and")
	fmt.Fprintln(w, "NPV sensitivity to each node discount factor. Output JSON to stdout.")
}

func value(j *job.Job) (*report.Price, error) {
	nodes, err := j.CurveNodes()
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = fmt.Sprintf("v%d", i)
		nodes[i].Value = dual.Variable(ids[i], n.Value.Real())
	}
	interp, err := j.InterpolationType()
	if err != nil {
		return nil, err
	}
	c, err := curve.New(nodes, interp)
	if err != nil {
		return nil, err
	}
	swaps, err := j.BuildSwaps()
	if err != nil {
		return nil, err
	}

	out := &report.Price{Swaps: make([]report.PricedSwap, len(swaps))}
	for i, sw := range swaps {
		rate, err := sw.Rate(c)
		if err != nil {
			return nil, fmt.Errorf("swap %d: %w", i, err)
		}
		npv, err := sw.NPV(c)
		if err != nil {
			return nil, fmt.Errorf("swap %d: %w", i, err)
		}

		ps := report.PricedSwap{
			Effective:     sw.EffectiveDate().Format(utils.DateLayout),
			Maturity:      sw.Maturity().Format(utils.DateLayout),
			TenorMonths:   sw.TenorMonths(),
			Notional:      report.Round(sw.Notional(), report.AmountPlaces),
			AnalyticDelta: report.Round(sw.AnalyticDelta(c).Real(), report.AmountPlaces),
			Rate:          report.Round(rate.Real(), report.RatePlaces),
			NPV:           report.Round(npv.Real(), report.AmountPlaces),
			NodeDeltas:    make([]report.NodeDelta, len(ids)),
		}
		if fixed, ok := sw.FixedRate(); ok {
			r := report.Round(fixed, report.RatePlaces)
			ps.FixedRate = &r
		}
		for k, id := range ids {
			ps.NodeDeltas[k] = report.NodeDelta{
				Date:  nodes[k].Date.Format(utils.DateLayout),
				Delta: report.Round(npv.Sens(id), report.AmountPlaces),
			}
		}
		out.Swaps[i] = ps
	}
	return out, nil
}
