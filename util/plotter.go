package util

import (
	"fmt"
	"io"

	"opening-hours/models/openinghours"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// WEEKDAY_LABELS are the x axis labels, ISO order.
var WEEKDAY_LABELS = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// WeeklyOpenHours sums the open hours of every bucket. Buckets are indexed by
// their ISO weekday id; unknown ids are ignored.
func WeeklyOpenHours(days []openinghours.Day) []float64 {
	hours := make([]float64, len(WEEKDAY_LABELS))
	for _, day := range days {
		if day.ID < 1 || day.ID > len(hours) {
			continue
		}
		for _, slot := range day.Slots {
			hours[day.ID-1] += slot.End.Sub(slot.Start).Hours()
		}
	}
	return hours
}

// RenderWeeklyOpeningHoursChart writes an HTML bar chart of the open hours per weekday.
func RenderWeeklyOpeningHoursChart(w io.Writer, days []openinghours.Day) error {
	hours := WeeklyOpenHours(days)

	items := make([]opts.BarData, 0, len(hours))
	for _, h := range hours {
		items = append(items, opts.BarData{Value: h})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: "Opening Hours",
			Width:     "800px",
			Height:    "400px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Opening hours",
			Subtitle: "Open hours per weekday",
		}),
		charts.WithYAxisOpts(opts.YAxis{Name: "hours"}),
	)

	bar.SetXAxis(WEEKDAY_LABELS).
		AddSeries("Open hours", items,
			charts.WithLabelOpts(opts.Label{
				Show:     opts.Bool(true),
				Position: "top",
			}),
		)

	if err := bar.Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}
