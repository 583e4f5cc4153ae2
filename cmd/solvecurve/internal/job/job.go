// Package job reads calibration and pricing jobs for the solvecurve tool.
//
// A job file carries the curve nodes, the swap basket and optional solver and log
// sections, e.g.
//
//	valuation_date: "2022-01-01"
//	interpolation: log_linear
//	nodes:
//	  - {date: "2022-01-01", df: 1.0}
//	  - {date: "2023-01-01"}
//	swaps:
//	  - {tenor_months: 12, fixed_frequency_months: 12, float_frequency_months: 12, rate: 1.0}
//	solver:
//	  max_iterations: 500
package job

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/meenmo/swapcurve/calendar"
	"github.com/meenmo/swapcurve/config"
	"github.com/meenmo/swapcurve/curve"
	"github.com/meenmo/swapcurve/dual"
	"github.com/meenmo/swapcurve/swap"
	"github.com/meenmo/swapcurve/utils"
)

// ErrInvalidJob is returned for jobs that cannot be turned into curves and swaps.
var ErrInvalidJob = errors.New("invalid job")

// NodeInput is one curve node. A zero DF seeds the node at 1.0.
type NodeInput struct {
	Date string  `mapstructure:"date"`
	DF   float64 `mapstructure:"df"`
}

// SwapInput describes one swap. Rates are in percent.
type SwapInput struct {
	// Effective defaults to the valuation date.
	Effective            string   `mapstructure:"effective"`
	TenorMonths          int      `mapstructure:"tenor_months"`
	FixedFrequencyMonths int      `mapstructure:"fixed_frequency_months"`
	FloatFrequencyMonths int      `mapstructure:"float_frequency_months"`
	FixedRate            *float64 `mapstructure:"fixed_rate"`
	Notional             float64  `mapstructure:"notional"`
	// Rate is the calibration target.
	Rate *float64 `mapstructure:"rate"`
}

// Job is a decoded job file.
type Job struct {
	ValuationDate string `mapstructure:"valuation_date"`
	Interpolation string `mapstructure:"interpolation"`
	Algorithm     string `mapstructure:"algorithm"`
	Calendar      string `mapstructure:"calendar"`

	// Holidays are added to Calendar before schedules are built.
	Holidays []string    `mapstructure:"holidays"`
	Nodes    []NodeInput `mapstructure:"nodes"`
	Swaps    []SwapInput `mapstructure:"swaps"`

	Config config.Config `mapstructure:"-"`
}

// Load reads a job file; the format follows the file extension.
func Load(path string) (*Job, error) {
	v, err := config.NewViper(path)
	if err != nil {
		return nil, err
	}
	return decode(v)
}

// Read parses a job in the given format (yaml, json or toml) from r.
func Read(r io.Reader, format string) (*Job, error) {
	v, err := config.NewViper("")
	if err != nil {
		return nil, err
	}
	v.SetConfigType(format)
	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("read %s job: %w", format, err)
	}
	return decode(v)
}

// Open loads the job at path, or reads YAML from stdin when path is empty.
func Open(path string, stdin io.Reader) (*Job, error) {
	if strings.TrimSpace(path) != "" {
		return Load(path)
	}
	return Read(stdin, "yaml")
}

func decode(v *viper.Viper) (*Job, error) {
	v.SetDefault("interpolation", string(curve.LogLinear))
	v.SetDefault("algorithm", curve.AlgorithmLevenbergMarquardt)

	cfg, err := config.FromViper(v)
	if err != nil {
		return nil, err
	}
	var j Job
	if err := v.Unmarshal(&j); err != nil {
		return nil, fmt.Errorf("decode job: %w", err)
	}
	j.Config = cfg
	if len(j.Nodes) == 0 {
		return nil, fmt.Errorf("%w: no nodes", ErrInvalidJob)
	}
	if len(j.Swaps) == 0 {
		return nil, fmt.Errorf("%w: no swaps", ErrInvalidJob)
	}
	return &j, nil
}

// InterpolationType parses the interpolation tag.
func (j *Job) InterpolationType() (curve.Interpolation, error) {
	return curve.ParseInterpolation(j.Interpolation)
}

// CalendarID returns the calendar applied to swap schedules.
func (j *Job) CalendarID() calendar.CalendarID {
	return calendar.CalendarID(strings.ToUpper(strings.TrimSpace(j.Calendar)))
}

// CurveNodes converts the node list. Node values are constants; callers that want
// sensitivities reseed them.
func (j *Job) CurveNodes() ([]curve.Node, error) {
	nodes := make([]curve.Node, len(j.Nodes))
	for i, n := range j.Nodes {
		d, err := utils.ParseDate(n.Date)
		if err != nil {
			return nil, fmt.Errorf("%w: node %d: %w", ErrInvalidJob, i, err)
		}
		df := n.DF
		if df == 0 {
			df = 1
		}
		nodes[i] = curve.Node{Date: d, Value: dual.Const(df)}
	}

	if strings.TrimSpace(j.ValuationDate) != "" {
		vd, err := utils.ParseDate(j.ValuationDate)
		if err != nil {
			return nil, fmt.Errorf("%w: valuation_date: %w", ErrInvalidJob, err)
		}
		if !vd.Equal(nodes[0].Date) {
			return nil, fmt.Errorf("%w: first node %s is not the valuation date %s",
				ErrInvalidJob, nodes[0].Date.Format(utils.DateLayout), j.ValuationDate)
		}
	}
	return nodes, nil
}

// BuildSwaps constructs the swap basket. Swaps without an effective date start on the
// first node date.
func (j *Job) BuildSwaps() ([]*swap.Swap, error) {
	nodes, err := j.CurveNodes()
	if err != nil {
		return nil, err
	}
	cal := j.CalendarID()
	if len(j.Holidays) > 0 {
		if cal == calendar.None {
			return nil, fmt.Errorf("%w: holidays given without a calendar", ErrInvalidJob)
		}
		days := make([]time.Time, len(j.Holidays))
		for i, h := range j.Holidays {
			if days[i], err = utils.ParseDate(h); err != nil {
				return nil, fmt.Errorf("%w: holiday %d: %w", ErrInvalidJob, i, err)
			}
		}
		calendar.RegisterHolidays(cal, days...)
	}

	swaps := make([]*swap.Swap, len(j.Swaps))
	for i, s := range j.Swaps {
		effective := nodes[0].Date
		if strings.TrimSpace(s.Effective) != "" {
			if effective, err = utils.ParseDate(s.Effective); err != nil {
				return nil, fmt.Errorf("%w: swap %d: %w", ErrInvalidJob, i, err)
			}
		}
		sw, err := swap.New(swap.Params{
			EffectiveDate:        effective,
			TenorMonths:          s.TenorMonths,
			FixedFrequencyMonths: s.FixedFrequencyMonths,
			FloatFrequencyMonths: s.FloatFrequencyMonths,
			FixedRate:            s.FixedRate,
			Notional:             s.Notional,
			Calendar:             cal,
		})
		if err != nil {
			return nil, fmt.Errorf("swap %d: %w", i, err)
		}
		swaps[i] = sw
	}
	return swaps, nil
}

// ObjRates returns the calibration targets. Every swap needs one.
func (j *Job) ObjRates() ([]float64, error) {
	rates := make([]float64, len(j.Swaps))
	for i, s := range j.Swaps {
		if s.Rate == nil {
			return nil, fmt.Errorf("%w: swap %d has no rate to calibrate to", ErrInvalidJob, i)
		}
		rates[i] = *s.Rate
	}
	return rates, nil
}
