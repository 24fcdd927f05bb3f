package main

import (
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"

	"github.com/montanaflynn/stats"
	"github.com/olekukonko/tablewriter"
	"gonum.org/v1/gonum/stat/distuv"
)

type cdf interface {
	CDF(x float64) float64
}

type summary struct {
	Count  int
	Mean   float64
	StdDev float64
	Min    float64
	// quartiles use the nearest rank, so they are always one of the values
	P25    float64
	Median float64
	P75    float64
	Max    float64
	// KS is the Kolmogorov-Smirnov distance to the distribution the values were drawn from
	KS float64
}

func summarize(values []float64, dist string) (summary, error) {
	if len(values) == 0 {
		return summary{}, errors.New("no values to describe")
	}

	var reference cdf
	switch dist {
	case "normal":
		reference = distuv.UnitNormal
	case "uniform":
		reference = distuv.Uniform{Min: 0, Max: 1}
	default:
		return summary{}, fmt.Errorf("unknown distribution: %q", dist)
	}

	s := summary{Count: len(values)}

	var err error
	for _, calc := range []struct {
		dst *float64
		fn  func() (float64, error)
	}{
		{&s.Mean, func() (float64, error) { return stats.Mean(values) }},
		{&s.StdDev, func() (float64, error) { return stats.StandardDeviation(values) }},
		{&s.Min, func() (float64, error) { return stats.Min(values) }},
		{&s.P25, func() (float64, error) { return stats.PercentileNearestRank(values, 25) }},
		{&s.Median, func() (float64, error) { return stats.Median(values) }},
		{&s.P75, func() (float64, error) { return stats.PercentileNearestRank(values, 75) }},
		{&s.Max, func() (float64, error) { return stats.Max(values) }},
	} {
		if *calc.dst, err = calc.fn(); err != nil {
			return summary{}, err
		}
	}

	s.KS = ksDistance(values, reference)
	return s, nil
}

func ksDistance(values []float64, reference cdf) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	n := float64(len(sorted))
	var d float64
	for i, x := range sorted {
		c := reference.CDF(x)
		d = math.Max(d, math.Max(float64(i+1)/n-c, c-float64(i)/n))
	}

	return d
}

func (s summary) rows() [][]string {
	f := func(v float64) string {
		return strconv.FormatFloat(v, 'f', 6, 64)
	}

	return [][]string{
		{"count", strconv.Itoa(s.Count)},
		{"mean", f(s.Mean)},
		{"stddev", f(s.StdDev)},
		{"min", f(s.Min)},
		{"p25", f(s.P25)},
		{"median", f(s.Median)},
		{"p75", f(s.P75)},
		{"max", f(s.Max)},
		{"ks", f(s.KS)},
	}
}

// write renders a table for terminals and tab separated lines otherwise
func (s summary) write(w io.Writer, pretty bool) {
	if !pretty {
		for _, row := range s.rows() {
			fmt.Fprintf(w, "%s\t%s\n", row[0], row[1])
		}

		return
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Statistic", "Value"})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	table.AppendBulk(s.rows())
	table.Render()
}
