package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// LogStats summarizes one day of structured logs.
type LogStats struct {
	Levels               map[string]int
	OrdersPlaced         map[string]int
	PaidOrdersNotSaved   int
	OrdersNotSaved       int
	NotificationFailures int
	PaymentsAbandoned    int
	StatusChanges        int
	UserActivities       map[string]int
	ErrorPatterns        map[string]int
}

func newLogStats() *LogStats {
	return &LogStats{
		Levels:         make(map[string]int),
		OrdersPlaced:   make(map[string]int),
		UserActivities: make(map[string]int),
		ErrorPatterns:  make(map[string]int),
	}
}

var (
	logsDir  string
	logsDate string
	logsTop  int

	placedPattern = regexp.MustCompile(`^Order \S+ placed by user (\S+) \((\w+),`)
	userPattern   = regexp.MustCompile(`user (\S+)`)
	idPattern     = regexp.MustCompile(`\b[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}\b|\border_\w+|\bpay_\w+`)
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Summarize a day of checkout logs",
	RunE: func(cmd *cobra.Command, args []string) error {
		name := fmt.Sprintf("clomora-%s.log", logsDate)
		file, err := os.Open(filepath.Join(logsDir, name))
		if err != nil {
			return fmt.Errorf("error opening log file %s: %w", name, err)
		}
		defer file.Close()

		stats, err := analyzeLogs(file)
		if err != nil {
			return err
		}
		printReport(cmd.OutOrStdout(), stats, logsTop)
		return nil
	},
}

func init() {
	logsCmd.Flags().StringVar(&logsDir, "dir", "./logs", "directory holding the dated log files")
	logsCmd.Flags().StringVar(&logsDate, "date", time.Now().Format("2006-01-02"), "day to analyze (YYYY-MM-DD)")
	logsCmd.Flags().IntVar(&logsTop, "top", 5, "entries to show in the ranked sections")
	rootCmd.AddCommand(logsCmd)
}

type logEntry struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// analyzeLogs reads zerolog JSON lines. Lines that are not JSON are skipped.
func analyzeLogs(r io.Reader) (*LogStats, error) {
	stats := newLogStats()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		var e logEntry
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			continue
		}
		stats.Levels[e.Level]++
		msg := e.Message

		switch {
		case placedPattern.MatchString(msg):
			m := placedPattern.FindStringSubmatch(msg)
			stats.OrdersPlaced[m[2]]++
			stats.UserActivities[m[1]]++
		case strings.HasPrefix(msg, "Paid order not saved"):
			stats.PaidOrdersNotSaved++
		case strings.HasPrefix(msg, "Order not saved"):
			stats.OrdersNotSaved++
		case strings.Contains(msg, "notification failed"):
			stats.NotificationFailures++
		case strings.HasPrefix(msg, "Payment for gateway order") && strings.Contains(msg, "abandoned"):
			stats.PaymentsAbandoned++
			extractUserActivity(msg, stats)
		case strings.Contains(msg, "status changed from"):
			stats.StatusChanges++
		}

		if e.Level == "error" {
			extractErrorPattern(msg, stats)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading log file: %w", err)
	}
	return stats, nil
}

func extractUserActivity(msg string, stats *LogStats) {
	if m := userPattern.FindStringSubmatch(msg); m != nil {
		stats.UserActivities[m[1]]++
	}
}

// extractErrorPattern groups errors by message with identifiers masked.
func extractErrorPattern(msg string, stats *LogStats) {
	head := msg
	if i := strings.Index(head, ": "); i > 0 {
		head = head[:i]
	}
	stats.ErrorPatterns[idPattern.ReplaceAllString(head, "<id>")]++
}

func printReport(w io.Writer, stats *LogStats, top int) {
	fmt.Fprintln(w, "\n=== Checkout Log Report ===")
	fmt.Fprintln(w, "Generated:", time.Now().Format("2006-01-02 15:04:05"))

	fmt.Fprintln(w, "\n1. Orders:")
	fmt.Fprintf(w, "   Online orders placed: %d\n", stats.OrdersPlaced["razorpay"])
	fmt.Fprintf(w, "   COD orders placed: %d\n", stats.OrdersPlaced["cod"])
	fmt.Fprintf(w, "   Payments abandoned: %d\n", stats.PaymentsAbandoned)
	fmt.Fprintf(w, "   Status changes: %d\n", stats.StatusChanges)

	fmt.Fprintln(w, "\n2. Failures:")
	fmt.Fprintf(w, "   Paid orders not saved: %d\n", stats.PaidOrdersNotSaved)
	fmt.Fprintf(w, "   Orders not saved: %d\n", stats.OrdersNotSaved)
	fmt.Fprintf(w, "   Notification failures: %d\n", stats.NotificationFailures)

	fmt.Fprintln(w, "\n3. Entries by level:")
	for _, level := range []string{"debug", "info", "warn", "error"} {
		fmt.Fprintf(w, "   %s: %d\n", level, stats.Levels[level])
	}

	fmt.Fprintln(w, "\n4. Most active users:")
	for _, e := range ranked(stats.UserActivities, top) {
		fmt.Fprintf(w, "   %s: %d activities\n", e.key, e.count)
	}

	fmt.Fprintln(w, "\n5. Most common errors:")
	for _, e := range ranked(stats.ErrorPatterns, top) {
		fmt.Fprintf(w, "   %s: %d occurrences\n", e.key, e.count)
	}
}

type rankedEntry struct {
	key   string
	count int
}

func ranked(counts map[string]int, limit int) []rankedEntry {
	list := make([]rankedEntry, 0, len(counts))
	for k, c := range counts {
		list = append(list, rankedEntry{k, c})
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].count != list[j].count {
			return list[i].count > list[j].count
		}
		return list[i].key < list[j].key
	})
	if len(list) > limit {
		list = list[:limit]
	}
	return list
}
