package main

import (
	"fmt"

	kindlebeam "github.com/etanshaul/kindle-beam"
)

// Run executes the config command.
func (c *ConfigCmd) Run(deps *Dependencies) error {
	fmt.Fprintf(deps.Stdout, "Config file: %s\n", deps.ConfigPath)

	cfg, err := kindlebeam.LoadConfig(deps.ConfigPath)
	if err != nil {
		fmt.Fprintf(deps.Stdout, "Status: %s\n", kindlebeam.ErrorMessage(err))
		return nil
	}

	fmt.Fprintln(deps.Stdout, "Status: OK")
	fmt.Fprintf(deps.Stdout, "SMTP: %s@%s:%d\n", cfg.SMTPUser, cfg.Host(), cfg.Port())
	fmt.Fprintf(deps.Stdout, "Kindle address: %s\n", cfg.KindleEmail)
	return nil
}
