// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run the cycle on a cron schedule",
	Long: `Schedule keeps the pipeline running on the cron expression from
schedule.cron (default "0 7 * * *", daily at 07:00). The process stays in
the foreground until SIGINT or SIGTERM, letting an in-flight cycle finish
before exiting.

A failed cycle is logged and the schedule keeps going; use run for a
single cycle whose failure sets the exit code.`,
	RunE: runSchedule,
}

func init() {
	scheduleCmd.Flags().Bool("once", false, "run one cycle immediately and exit")
	scheduleCmd.Flags().Bool("run-on-start", false, "run one cycle immediately, then keep the schedule")

	rootCmd.AddCommand(scheduleCmd)
}

func runSchedule(cmd *cobra.Command, args []string) error {
	log, err := newLogger(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()

	p, err := buildPipeline(cmd, log)
	if err != nil {
		return err
	}

	if once, _ := cmd.Flags().GetBool("once"); once {
		result, err := p.Run(cmd.Context())
		if err != nil {
			return err
		}
		printSummary(os.Stdout, result)
		return nil
	}

	spec := viper.GetString("schedule.cron")
	c := cron.New()
	_, err = c.AddFunc(spec, func() {
		if _, err := p.Run(context.Background()); err != nil {
			log.Error("scheduled run failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", spec, err)
	}

	if runOnStart, _ := cmd.Flags().GetBool("run-on-start"); runOnStart {
		if _, err := p.Run(cmd.Context()); err != nil {
			log.Error("initial run failed", zap.Error(err))
		}
	}

	c.Start()
	log.Info("schedule started", zap.String("cron", spec))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Info("shutting down", zap.String("signal", sig.String()))

	// Stop returns a context that closes once in-flight jobs finish.
	<-c.Stop().Done()
	return nil
}
