package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"

	"btevta-wasl-backend/internal/app"
	"btevta-wasl-backend/internal/config"
	"btevta-wasl-backend/internal/jobs"
	"btevta-wasl-backend/internal/logger"
	"btevta-wasl-backend/internal/scheduler"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	runOnce := flag.String("run-once", "", "Run a specific job once and exit (a job name or 'all')")
	flag.Parse()

	config.LoadDotEnv()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting WASL cronjob runner...", "log_level", cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		logger.Error("Failed to initialize application", "error", err)
		log.Fatalf("Failed to initialize application: %v", err)
	}

	// Initialize Job Runner
	jobRunner := a.JobRunner()

	// Check if running a single job
	if *runOnce != "" {
		logger.Info("Running job once", "job", *runOnce)
		ok := runJobOnce(ctx, jobRunner, *runOnce)
		a.Close()
		if !ok {
			os.Exit(1)
		}
		return
	}
	defer a.Close()

	// Initialize Scheduler
	cronScheduler := scheduler.NewScheduler(jobRunner)

	// Start scheduler
	cronScheduler.Start()
	logger.Info("Cronjob scheduler is running. Press Ctrl+C to stop.", "jobs", cronScheduler.Registered())

	<-ctx.Done()

	// Graceful shutdown
	logger.Info("Shutting down cronjob scheduler...")
	cronScheduler.Stop()
	logger.Info("Cronjob scheduler stopped. Goodbye!")
}

// runJobOnce runs one job, or every job for "all", prints the reports and reports success.
func runJobOnce(ctx context.Context, jobRunner *jobs.JobRunner, jobName string) bool {
	var reports []*jobs.SweepReport
	if jobName == "all" {
		reports = jobRunner.RunAll(ctx)
	} else {
		report, err := jobRunner.Run(ctx, jobName)
		if err != nil {
			logger.Error("Unknown job name", "job", jobName)
			color.Red("Unknown job %q", jobName)
			fmt.Println("Available jobs:")
			for _, name := range jobRunner.Names() {
				fmt.Printf("  - %s\n", name)
			}
			fmt.Println("  - all")
			return false
		}
		reports = []*jobs.SweepReport{report}
	}

	jobs.RenderReports(os.Stdout, reports)
	for _, r := range reports {
		if !r.Succeeded() {
			return false
		}
	}
	return true
}
