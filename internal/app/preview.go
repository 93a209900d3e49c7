package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"price-tracker/internal/report"
	"price-tracker/internal/storage"
	"price-tracker/internal/tracker"
)

// Preview renders the report for the most recent stored day without
// scraping or sending anything. Drops are recomputed against the history
// that preceded that day, matching what a live run would have reported.
func (a *App) Preview(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	table, err := a.newStore().Load()
	if err != nil {
		return err
	}
	rows := table.Rows()
	if len(rows) == 0 {
		return fmt.Errorf("history is empty, nothing to preview")
	}

	var lastDay time.Time
	for _, obs := range rows {
		if obs.Date.After(lastDay) {
			lastDay = obs.Date
		}
	}

	baseline := storage.NewTable()
	var summary []storage.Observation
	for _, obs := range rows {
		if obs.Date.Equal(lastDay) {
			summary = append(summary, obs)
		} else {
			baseline = baseline.Append(obs)
		}
	}

	var drops []tracker.Drop
	for _, obs := range summary {
		prior, ok := baseline.LatestPrior(obs.ProductID)
		if ok && obs.Price.LessThan(prior) {
			drops = append(drops, tracker.Drop{
				ProductName: obs.ProductName,
				Site:        obs.Site,
				OldPrice:    prior,
				NewPrice:    obs.Price,
			})
		}
	}

	rpt := report.Build(a.Config.Report.Title, summary, drops)
	fmt.Fprintln(os.Stdout, rpt.HTML)
	return nil
}
