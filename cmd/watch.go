package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"orgrepos/internal/config"
	"orgrepos/internal/notifier"
	"orgrepos/internal/scheduler"
	"orgrepos/tasks"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Report repositories appearing or disappearing in watched organizations",
	Long: `watch lists the public repositories of every organization under watch.orgs
(or github.org when that list is empty) on a fixed interval, and notifies
through Apprise, or the log when no Apprise endpoint is configured, whenever
the set of repositories changes. The first listing only records a baseline.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runWatch(ctx)
	},
}

func watchedOrgs(cfg config.Config) []config.WatchedOrg {
	if len(cfg.Watch.Orgs) > 0 {
		return cfg.Watch.Orgs
	}
	if cfg.GitHub.Org != "" {
		return []config.WatchedOrg{{Org: cfg.GitHub.Org, License: cfg.GitHub.License}}
	}
	return nil
}

func newNotifier(cfg config.NotifierConfig) notifier.Notifier {
	if cfg.AppriseAPIURL == "" {
		return notifier.NewLogNotifier(log.Logger)
	}
	return notifier.NewWebhookNotifier(cfg.AppriseAPIURL, cfg.GetServiceURLs())
}

func runWatch(ctx context.Context) error {
	orgs := watchedOrgs(appConfig)
	if len(orgs) == 0 {
		return fmt.Errorf("nothing to watch: set watch.orgs or github.org")
	}

	interval := appConfig.Watch.GetInterval(appConfig.Scheduler.GetInterval())
	notif := newNotifier(appConfig.Notifier)
	sched := scheduler.NewScheduler()

	for _, watched := range orgs {
		task := tasks.NewLicenseWatchTask(watched, newOrgClient, notif)
		// Record the baseline now rather than one interval later.
		if err := task.Run(ctx); err != nil {
			log.Warn().Err(err).Str("task", task.Name()).Msg("Initial listing failed")
		}
		sched.ScheduleTask(task, interval)
		log.Info().Str("org", watched.Org).Str("license", watched.License).Dur("interval", interval).Msg("Watching organization")
	}

	sched.Start(ctx)
	<-ctx.Done()
	log.Info().Msg("Shutting down")
	sched.Stop()
	return nil
}
