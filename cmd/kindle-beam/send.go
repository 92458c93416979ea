package main

import (
	"fmt"

	kindlebeam "github.com/etanshaul/kindle-beam"
	"github.com/etanshaul/kindle-beam/pipeline"
)

// Run executes the send command.
func (c *SendCmd) Run(deps *Dependencies) error {
	d, err := deps.Pipeline.Send(deps.Ctx, c.URL, pipeline.SendOptions{Force: c.Force})
	if err != nil {
		if kindlebeam.ErrorCode(err) == kindlebeam.ECONFLICT && d != nil {
			fmt.Fprintf(deps.Stdout, "Already sent on %s. Use --force to send again.\n",
				d.DeliveredAt.Format("2006-01-02 15:04"))
			return nil
		}
		fmt.Fprintf(deps.Stderr, "error: %s\n", kindlebeam.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Sent %q to your Kindle.\n", d.Title)
	return nil
}
