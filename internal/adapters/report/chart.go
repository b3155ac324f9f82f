package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/notecompacter/compacter/internal/core/services"
)

// maxLabel keeps x-axis labels readable
const maxLabel = 24

// RenderComponentChart writes an HTML bar chart of component sizes,
// oldest component first so the chart reads in ingestion order
func RenderComponentChart(w io.Writer, stats *services.ProjectStats) error {
	n := len(stats.Components)
	labels := make([]string, 0, n)
	data := make([]opts.BarData, 0, n)
	for i := n - 1; i >= 0; i-- {
		c := stats.Components[i]
		labels = append(labels, shorten(c.OriginalName))
		data = append(data, opts.BarData{Name: c.InternalName, Value: c.Bytes})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: stats.Name}),
		charts.WithTitleOpts(opts.Title{
			Title:    stats.Name,
			Subtitle: fmt.Sprintf("%d components, %d bytes archived, master %d bytes", n, stats.ComponentBytes, stats.MasterBytes),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(labels).AddSeries("bytes", data)

	return bar.Render(w)
}

// WriteComponentChart renders the chart to a file, creating its directory
func WriteComponentChart(path string, stats *services.ProjectStats) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	if err := RenderComponentChart(f, stats); err != nil {
		f.Close()
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return f.Close()
}

func shorten(s string) string {
	r := []rune(s)
	if len(r) <= maxLabel {
		return s
	}
	return string(r[:maxLabel-1]) + "…"
}
