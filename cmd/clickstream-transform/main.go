// Package main implements the clickstream-transform batch binary.
// It runs one transform pass over the raw event landing zone and writes
// the date-partitioned analytics dataset plus a run summary.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/bhargavirodda1278-pixel/clickstream-pipeline1/internal/config"
	"github.com/bhargavirodda1278-pixel/clickstream-pipeline1/internal/job"
)

func main() {
	// Optional .env for local runs; silence is fine when absent.
	_ = godotenv.Load()

	cfg := parseFlags()

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("Failed to create working directories: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	j, err := job.New(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize job: %v", err)
	}

	rep, err := j.Run(ctx)
	if err != nil {
		log.Fatalf("Transformation failed: %v", err)
	}

	fmt.Println(rep.String())
	os.Exit(0)
}

func parseFlags() *config.Config {
	var (
		configPath   string
		jobName      string
		sourceBucket string
		targetBucket string
		databaseName string
		workDir      string
	)

	flag.StringVar(&configPath, "config", "", "Path to YAML or JSON config file")
	flag.StringVar(&jobName, "job-name", "", "Job name used in the run summary")
	flag.StringVar(&sourceBucket, "source-bucket", "", "Bucket holding raw clickstream objects")
	flag.StringVar(&targetBucket, "target-bucket", "", "Bucket receiving the transformed dataset")
	flag.StringVar(&databaseName, "database", "", "Catalog database name")
	flag.StringVar(&workDir, "work-dir", "", "Local scratch directory")
	flag.Parse()

	cfg := config.DefaultConfig()
	if configPath != "" {
		loaded, err := config.LoadFromFile(configPath)
		if err != nil {
			log.Fatalf("Failed to load config file: %v", err)
		}
		cfg = loaded
	}
	config.LoadFromEnv(cfg)

	// Flags win over file and environment.
	if jobName != "" {
		cfg.JobName = jobName
	}
	if sourceBucket != "" {
		cfg.SourceBucket = sourceBucket
	}
	if targetBucket != "" {
		cfg.TargetBucket = targetBucket
	}
	if databaseName != "" {
		cfg.DatabaseName = databaseName
	}
	if workDir != "" {
		cfg.WorkDir = workDir
	}
	cfg.Resolve()

	return cfg
}
