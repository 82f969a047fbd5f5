package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/kbukum/pipekit/run"
	"github.com/kbukum/pipekit/util"
)

func runCommand() *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "execute a pipeline and print its report",
		ArgsUsage: "PIPELINE",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:    "param",
				Aliases: []string{"p"},
				Usage:   "parameter override as KEY=VALUE, repeatable",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "print the full run report as JSON",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			name := util.NormalizeName(cmd.Args().First())
			if name == "" {
				return cli.Exit("usage: pipekit run PIPELINE [-p KEY=VALUE]...", 1)
			}
			overrides, err := parseParams(cmd.StringSlice("param"))
			if err != nil {
				return cli.Exit(err.Error(), 1)
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

			// First signal cancels the run; stages drain cooperatively.
			ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			report, err := runner.RunByName(ctx, name, overrides)
			if err != nil {
				return cli.Exit(err.Error(), run.ExitFailed)
			}

			if cmd.Bool("json") {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				if err := enc.Encode(report); err != nil {
					return err
				}
			} else {
				printReport(report)
			}

			if code := report.ExitCode(); code != run.ExitSucceeded {
				return cli.Exit("", code)
			}
			return nil
		},
	}
}

func printReport(report *run.Report) {
	fmt.Printf("run %s: pipeline %q %s in %s\n",
		report.RunID, report.Pipeline, report.Status, report.Duration.Round(time.Millisecond))
	for _, sr := range report.Stages {
		line := fmt.Sprintf("  %-24s %s", sr.Name, sr.Status)
		if !sr.StartedAt.IsZero() {
			line += fmt.Sprintf(" (%s)", sr.Duration.Round(time.Millisecond))
		}
		if sr.Error != "" {
			line += ": " + sr.Error
		}
		fmt.Println(line)
	}
}
