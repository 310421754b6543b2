package seeder

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/xshopai/seeder/internal/identity"
)

type ServiceResult struct {
	Service  string
	Success  bool
	Stats    Stats
	Err      error
	Duration time.Duration
}

type Summary struct {
	Results       []ServiceResult
	Succeeded     []string
	Failed        []string
	Duration      time.Duration
	Records       map[string]int // inserted per service
	Errors        int
	IdentityStats identity.Stats
}

func (s Summary) OK() bool { return len(s.Failed) == 0 }

func Summarize(results []ServiceResult, ids *identity.Mapper) Summary {
	s := Summary{Results: results, Records: make(map[string]int, len(results))}
	for _, r := range results {
		if r.Success {
			s.Succeeded = append(s.Succeeded, r.Service)
		} else {
			s.Failed = append(s.Failed, r.Service)
		}
		s.Records[r.Service] = r.Stats.Inserted
		s.Errors += r.Stats.Errors
		s.Duration += r.Duration
	}
	if ids != nil {
		s.IdentityStats = ids.Stats()
	}
	return s
}

// PrintSummary renders one row per service followed by the totals.
func PrintSummary(w io.Writer, s Summary) {
	fmt.Fprintf(w, "\n📊 Seeding summary\n")
	fmt.Fprintf(w, "%-20s  %-8s  %-8s  %-8s  %-8s  %-6s  %-10s  %s\n", "SERVICE", "STATUS", "TOTAL", "INSERTED", "SKIPPED", "ERRORS", "DURATION", "ERROR")
	fmt.Fprintf(w, "%-20s  %-8s  %-8s  %-8s  %-8s  %-6s  %-10s  %s\n",
		strings.Repeat("─", 20), strings.Repeat("─", 8), strings.Repeat("─", 8), strings.Repeat("─", 8),
		strings.Repeat("─", 8), strings.Repeat("─", 6), strings.Repeat("─", 10), strings.Repeat("─", 20))

	cyan := color.New(color.FgCyan)
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)

	for _, r := range s.Results {
		cyan.Fprintf(w, "%-20s", r.Service)
		fmt.Fprint(w, "  ")
		if r.Success {
			green.Fprintf(w, "%-8s", "ok")
		} else {
			red.Fprintf(w, "%-8s", "failed")
		}
		fmt.Fprintf(w, "  %-8d  %-8d  %-8d  %-6d  %-10s", r.Stats.Total, r.Stats.Inserted, r.Stats.Skipped, r.Stats.Errors, r.Duration.Round(time.Millisecond))
		if r.Err != nil {
			fmt.Fprintf(w, "  %v", r.Err)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "\n%d succeeded, %d failed, %d errors in %s\n", len(s.Succeeded), len(s.Failed), s.Errors, s.Duration.Round(time.Millisecond))
	fmt.Fprintf(w, "🔑 Identities: %d object ids, %d uuids, %d relationships\n",
		s.IdentityStats.ObjectIDCount, s.IdentityStats.UUIDCount, s.IdentityStats.RelationshipCount)
}

// PrintCredentials lists the demo accounts created by the user fixture.
func PrintCredentials(w io.Writer) {
	fmt.Fprintln(w, "\n🔐 Demo credentials:")
	fmt.Fprintln(w, "   👤 Customer: guest@xshopai.com / guest")
	fmt.Fprintln(w, "   👑 Admin:    admin@xshopai.com / admin")
}
