package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/kbukum/pipekit/util"
)

func validateCommand() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "load a pipeline definition and report definition errors",
		ArgsUsage: "PIPELINE",
		Action: func(_ context.Context, cmd *cli.Command) error {
			name := util.NormalizeName(cmd.Args().First())
			if name == "" {
				return cli.Exit("usage: pipekit validate PIPELINE", 1)
			}

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			log := newLogger(cfg)

			runner, cleanup, err := newRunner(cfg, log)
			if err != nil {
				return err
			}
			defer cleanup()

			p, err := runner.Loader.Load(name)
			if err != nil {
				return cli.Exit(fmt.Sprintf("pipeline %q: %v", name, err), 1)
			}
			if err := runner.Validate(p); err != nil {
				return cli.Exit(fmt.Sprintf("pipeline %q is invalid: %v", name, err), 1)
			}

			fmt.Printf("pipeline %q is valid (%d stages)\n", name, len(p.Stages))
			return nil
		},
	}
}
