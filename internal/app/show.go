package app

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"price-tracker/internal/storage"
)

// Show prints the most recent observations.
func (a *App) Show(ctx context.Context, opts ShowOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	table, err := a.newStore().Load()
	if err != nil {
		return err
	}

	rows := table.Rows()
	if len(rows) == 0 {
		fmt.Fprintln(os.Stdout, "no observations found")
		return nil
	}
	if opts.Limit > 0 && len(rows) > opts.Limit {
		rows = rows[len(rows)-opts.Limit:]
	}

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "ID\tProduct\tSite\tDate\tPrice")
	for _, obs := range rows {
		fmt.Fprintf(
			writer,
			"%s\t%s\t%s\t%s\t%s\n",
			obs.ProductID,
			obs.ProductName,
			obs.Site,
			obs.Date.Format(storage.DateLayout),
			obs.Price.String(),
		)
	}

	return writer.Flush()
}
