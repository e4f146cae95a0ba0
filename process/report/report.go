// Package report summarizes the lookup history kept by the postgres store.
package report

import (
	"context"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"
	"time"

	"arcvalue/models"
	"arcvalue/pkg/lookup"
	"arcvalue/pkg/store"
)

// SourceCount is the number of lookups answered by one source.
type SourceCount struct {
	Source string
	Count  int
}

// Summary aggregates a slice of history records, newest first.
type Summary struct {
	Total    int
	Found    int
	BySource []SourceCount
	Recent   []models.LookupRecord
}

// Summarize counts records per source and keeps the first recent entries.
func Summarize(records []models.LookupRecord, recent int) Summary {
	s := Summary{Total: len(records)}
	counts := map[string]int{}
	for _, r := range records {
		counts[r.Source]++
		if r.Value != nil {
			s.Found++
		}
	}
	for src, n := range counts {
		s.BySource = append(s.BySource, SourceCount{Source: src, Count: n})
	}
	sort.Slice(s.BySource, func(i, j int) bool {
		if s.BySource[i].Count != s.BySource[j].Count {
			return s.BySource[i].Count > s.BySource[j].Count
		}
		return s.BySource[i].Source < s.BySource[j].Source
	})
	if recent > len(records) {
		recent = len(records)
	}
	if recent > 0 {
		s.Recent = records[:recent]
	}
	return s
}

// HitRate is the share of lookups that produced a value.
func (s Summary) HitRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Found) / float64(s.Total)
}

// Write prints the summary as aligned text.
func (s Summary) Write(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "lookups\t%d\n", s.Total)
	fmt.Fprintf(tw, "with value\t%d (%.0f%%)\n", s.Found, s.HitRate()*100)
	for _, c := range s.BySource {
		fmt.Fprintf(tw, "  %s\t%d\n", c.Source, c.Count)
	}
	if len(s.Recent) > 0 {
		fmt.Fprintln(tw, "\nrecent")
		for _, r := range s.Recent {
			value := "-"
			if r.Value != nil {
				value = lookup.FormatValue(*r.Value)
			}
			fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n", r.CheckedAt.Local().Format(time.DateTime), r.Item, value, r.Source)
		}
	}
	return tw.Flush()
}

// Run loads the newest limit records from dsn and writes the summary.
func Run(ctx context.Context, dsn string, limit, recent int, w io.Writer) error {
	st, err := store.OpenPostgres(dsn, false)
	if err != nil {
		return err
	}
	defer st.Close()
	records, err := st.History(ctx, limit)
	if err != nil {
		return err
	}
	return Summarize(records, recent).Write(w)
}
