package app

import (
	"context"
	"encoding/csv"
	"errors"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"

	"price-tracker/internal/storage"
)

// Export renders stored price history as CSV and/or a PNG chart.
func (a *App) Export(ctx context.Context, opts ExportOptions) error {
	if opts.CSVPath == "" && opts.PNGPath == "" {
		return errors.New("at least one of --csv or --png must be provided")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	opts.MaxPoints = a.Config.ResolveMaxPoints(opts.MaxPoints)

	table, err := a.newStore().Load()
	if err != nil {
		return err
	}

	rows := filterWindow(table.Rows(), opts.From, opts.To)
	if len(rows) == 0 {
		a.Logger.Info().Msg("no observations found for export window")
		return nil
	}

	downsampled := downsampleRows(rows, opts.MaxPoints)
	a.Logger.Info().Int("total", len(rows)).Int("exported", len(downsampled)).Msg("exporting observations")

	if opts.CSVPath != "" {
		if err := writeRowsCSV(opts.CSVPath, downsampled); err != nil {
			return err
		}
	}

	if opts.PNGPath != "" {
		if err := writeRowsPNG(opts.PNGPath, downsampled); err != nil {
			return err
		}
	}

	return nil
}

func filterWindow(rows []storage.Observation, from, to *time.Time) []storage.Observation {
	out := make([]storage.Observation, 0, len(rows))
	for _, obs := range rows {
		if from != nil && obs.Date.Before(*from) {
			continue
		}
		if to != nil && !obs.Date.Before(*to) {
			continue
		}
		out = append(out, obs)
	}
	return out
}

func downsampleRows(rows []storage.Observation, max int) []storage.Observation {
	if max <= 0 || len(rows) <= max {
		return rows
	}

	result := make([]storage.Observation, 0, max)
	step := float64(len(rows)-1) / float64(max-1)
	for i := 0; i < max; i++ {
		idx := int(math.Round(step * float64(i)))
		if idx >= len(rows) {
			idx = len(rows) - 1
		}
		result = append(result, rows[idx])
	}
	return result
}

func writeRowsCSV(path string, rows []storage.Observation) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{"product_id", "product_name", "site", "date", "price"}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, obs := range rows {
		record := []string{
			obs.ProductID,
			obs.ProductName,
			obs.Site,
			obs.Date.Format(storage.DateLayout),
			obs.Price.String(),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	return writer.Error()
}

func writeRowsPNG(path string, rows []storage.Observation) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	byProduct := make(map[string][]storage.Observation)
	order := make([]string, 0)
	for _, obs := range rows {
		if _, seen := byProduct[obs.ProductID]; !seen {
			order = append(order, obs.ProductID)
		}
		byProduct[obs.ProductID] = append(byProduct[obs.ProductID], obs)
	}

	series := make([]chart.Series, 0, len(order))
	for _, id := range order {
		product := byProduct[id]
		sort.SliceStable(product, func(i, j int) bool {
			return product[i].Date.Before(product[j].Date)
		})

		x := make([]time.Time, len(product))
		y := make([]float64, len(product))
		for i, obs := range product {
			x[i] = obs.Date
			y[i] = obs.Price.InexactFloat64()
		}

		series = append(series, chart.TimeSeries{
			Name:    product[0].ProductName,
			XValues: x,
			YValues: y,
		})
	}

	graph := chart.Chart{
		Width:  1280,
		Height: 720,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatter,
		},
		YAxis: chart.YAxis{
			Name: "Price",
			ValueFormatter: func(v interface{}) string {
				return chart.FloatValueFormatterWithFormat(v, "%.2f")
			},
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return graph.Render(chart.PNG, file)
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
