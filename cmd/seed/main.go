package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/FreakyLetsFail/uni-swipe/internal/config"
	"github.com/FreakyLetsFail/uni-swipe/internal/database"
	"github.com/FreakyLetsFail/uni-swipe/internal/logger"
	"github.com/FreakyLetsFail/uni-swipe/internal/seed"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
)

func main() {
	if err := run(); err != nil {
		color.Red("Seed error: %v", err)
		os.Exit(1)
	}
}

func run() error {
	file := flag.String("file", "./seed/catalog.json", "Path to the JSON catalog")
	truncate := flag.Bool("truncate", false, "Remove the existing catalog (and matches/favorites on it) first")
	flag.Parse()

	f, err := os.Open(*file)
	if err != nil {
		return fmt.Errorf("failed to open catalog: %w", err)
	}
	defer f.Close()

	cat, err := seed.Decode(f)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	log, err := logger.NewLogger(&cfg.Logging, &cfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	db, err := database.NewDatabase(ctx, &cfg.Database, log)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if *truncate {
		color.Yellow("Truncating existing catalog")
	}
	summary, err := seed.Import(ctx, db, cat, *truncate)
	if err != nil {
		return err
	}

	printSummary(summary)
	return nil
}

func printSummary(s *seed.Summary) {
	color.Cyan("\n=== Catalog seeded ===")

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"University", "Location", "Subjects", "Status"})
	for _, u := range s.Universities {
		status := "updated"
		if u.Created {
			status = "created"
		}
		table.Append([]string{u.Name, u.Location, strconv.Itoa(u.Offerings), status})
	}
	table.Render()

	color.Green("Subjects: %d created, %d updated", s.SubjectsCreated, s.SubjectsUpdated)
	color.Green("Universities: %d", len(s.Universities))
}
