// sigview prints the most recent rows of the signal history database.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"fxsentry/internal/store"
)

func main() {
	dbPath := flag.String("db", "data/signals.db", "path to the signal history database")
	limit := flag.Int("limit", 20, "number of rows to print, newest first")
	flag.Parse()

	if _, err := os.Stat(*dbPath); err != nil {
		log.Fatalf("database not found: %v", err)
	}
	st, err := store.New(*dbPath)
	if err != nil {
		log.Fatalf("open failed: %v", err)
	}
	defer st.Close()

	rows, err := st.Recent(context.Background(), *limit)
	if err != nil {
		log.Fatalf("query failed: %v", err)
	}
	if len(rows) == 0 {
		fmt.Println("no signals recorded yet")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TIME (UTC)\tPAIR\tACTION\tENTRY\tLIVE\tDIST\tCONF\tRR\tTRACE")
	for _, r := range rows {
		rr := "-"
		if r.RiskReward != nil {
			rr = fmt.Sprintf("%.2f", *r.RiskReward)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%.5f\t%.5f\t%.5f\t%.0f\t%s\t%s\n",
			r.Timestamp.UTC().Format("2006-01-02 15:04:05"),
			r.Pair, r.Action, r.EntryPrice, r.LivePrice, r.DistanceToEntry,
			r.Confidence, rr, r.TraceID)
	}
	w.Flush()
}
