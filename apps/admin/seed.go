package main

import (
	"context"
)

func (cli *commandLine) seed(dryRun bool) error {
	ctx := context.Background()
	run := cli.seeder.Run
	if dryRun {
		run = cli.seeder.DryRun
	}
	report, err := run(ctx)
	if err != nil {
		return err
	}
	report.Print(cli.out)
	return nil
}
