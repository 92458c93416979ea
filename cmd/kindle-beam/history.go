package main

import (
	"fmt"

	kindlebeam "github.com/etanshaul/kindle-beam"
)

// Run executes the history command.
func (c *HistoryCmd) Run(deps *Dependencies) error {
	filter := kindlebeam.DeliveryFilter{Limit: c.Limit}
	if c.Status != "" {
		if c.Status != kindlebeam.DeliverySent && c.Status != kindlebeam.DeliveryFailed {
			return fmt.Errorf("unknown status %q (available: sent, failed)", c.Status)
		}
		filter.Status = &c.Status
	}

	deliveries, err := deps.History.FindDeliveries(deps.Ctx, filter)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", kindlebeam.ErrorMessage(err))
		return err
	}

	if len(deliveries) == 0 {
		fmt.Fprintln(deps.Stdout, "No deliveries yet. Use 'kindle-beam send' to send an article.")
		return nil
	}

	for _, d := range deliveries {
		line := fmt.Sprintf("%s  %-6s  %s  %s",
			d.DeliveredAt.Format("2006-01-02 15:04"), d.Status, d.Title, d.URL)
		if d.Status == kindlebeam.DeliveryFailed && d.Error != "" {
			line += fmt.Sprintf("  (%s)", d.Error)
		}
		fmt.Fprintln(deps.Stdout, line)
	}

	return nil
}
