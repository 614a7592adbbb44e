package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"cascade-router/internal/analysis"
	"cascade-router/internal/config"
	"cascade-router/internal/log"
	"cascade-router/internal/pipeline"
	"cascade-router/internal/topology"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "route":
		cmdRoute(os.Args[2:])
	case "rank":
		cmdRank(os.Args[2:])
	case "validate":
		cmdValidate(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Println("usage:")
	fmt.Println("  cli route --config examples/demo.yaml [--out results]")
	fmt.Println("  cli rank --config examples/demo.yaml [--n 10]")
	fmt.Println("  cli validate --config examples/demo.yaml")
	fmt.Println("")
	fmt.Println("notes:")
	fmt.Println("  - route writes scaled/<year>.csv, plus combined.csv and ledger/<station>.csv when enabled")
	fmt.Println("  - a failed cascade does not stop the others; route exits 1 after writing the rest")
}

func loadConfig(fs *flag.FlagSet, args []string) *config.Config {
	cfgPath := fs.String("config", "", "Path to YAML run config")
	_ = fs.Parse(args)
	if *cfgPath == "" {
		fmt.Println("--config is required")
		os.Exit(2)
	}
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}
	if err := log.Init(cfg.Log.Debug); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	return cfg
}

func cmdRoute(args []string) {
	fs := flag.NewFlagSet("route", flag.ExitOnError)
	outDir := fs.String("out", "", "Output directory (overrides output.dir)")
	cfg := loadConfig(fs, args)
	defer log.Sync()

	if *outDir != "" {
		cfg.Output.Dir = *outDir
	}

	out, err := pipeline.RunConfig(cfg)
	if err != nil {
		log.Fatalf("route: %v", err)
	}
	if err := pipeline.Write(context.Background(), out, cfg.Output); err != nil {
		log.Fatalf("write: %v", err)
	}

	fmt.Printf("Routed %d stations in %d cascades, wrote %s\n", len(out.Scaled), len(out.Routed.Cascades), cfg.Output.Dir)
	for _, id := range sortedKeys(out.Failures) {
		fmt.Printf("FAILED cascade %s: %v\n", id, out.Failures[id])
	}
	for _, id := range sortedKeys(out.ScaleErrors) {
		fmt.Printf("FAILED station %s: %v\n", id, out.ScaleErrors[id])
	}
	if out.Failed() {
		log.Sync()
		os.Exit(1)
	}
}

func cmdRank(args []string) {
	fs := flag.NewFlagSet("rank", flag.ExitOnError)
	n := fs.Int("n", 0, "Optional: show only the top N stations (0=all)")
	cfg := loadConfig(fs, args)
	defer log.Sync()

	out, err := pipeline.RunConfig(cfg)
	if err != nil {
		log.Fatalf("route: %v", err)
	}

	ranked := analysis.RankByMean(out.Scaled, out.Routed.Stations)
	if *n > 0 && *n < len(ranked) {
		ranked = ranked[:*n]
	}
	fmt.Printf("%-4s %-10s %-8s %-8s %-8s %-8s %-8s %-14s %-14s\n", "rank", "station", "count", "mean", "p05", "p95", ">rated", "spilled_m3", "unrouted_m3")
	for _, r := range ranked {
		fmt.Printf(
			"%-4d %-10s %-8d %-8.3f %-8.3f %-8.3f %-8d %-14.0f %-14.0f\n",
			r.Rank,
			r.Station,
			r.Count,
			r.Mean,
			r.P05,
			r.P95,
			r.HoursAboveRated,
			r.SpilledVolume,
			r.UnroutedVolume,
		)
	}
}

func cmdValidate(args []string) {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	cfg := loadConfig(fs, args)
	defer log.Sync()

	in, err := pipeline.LoadInputs(cfg)
	if err != nil {
		log.Fatalf("load: %v", err)
	}
	forest, err := topology.Build(in.Stations, in.Links, topology.Options{StrictOverflow: cfg.Routing.StrictOverflow})
	if err != nil {
		log.Fatalf("topology: %v", err)
	}

	fmt.Printf("%d stations, %d links, %d weekly records\n", len(in.Stations), len(in.Links), len(in.Inflows))
	fmt.Printf("order: %s\n", strings.Join(forest.Order(), " "))
	for _, c := range forest.Cascades() {
		fmt.Printf("cascade %-10s %s\n", c.ID, strings.Join(c.Order, " -> "))
	}
	for _, u := range forest.Unrouted() {
		fmt.Printf("unrouted clip excess: %s\n", u.Link)
	}
	errs := forest.Errors()
	for _, id := range sortedKeys(errs) {
		fmt.Printf("station %-10s %v\n", id, errs[id])
	}
	if len(errs) > 0 {
		os.Exit(1)
	}
}

func sortedKeys(m map[string]error) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
