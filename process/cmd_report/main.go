package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"arcvalue/process/report"
)

func main() {
	limit := flag.Int("limit", 500, "number of newest lookups to summarize")
	recent := flag.Int("recent", 10, "number of lookups to list")
	flag.Parse()

	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		fmt.Fprintln(os.Stderr, "DB_DSN not set; export DB_DSN and retry")
		os.Exit(2)
	}
	if err := report.Run(context.Background(), dsn, *limit, *recent, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "report:", err)
		os.Exit(1)
	}
}
