package conversation

import (
	"github.com/spigell/college-counselor/internal/session"
)

// Analytics aggregates in-memory sessions.
type Analytics struct {
	TotalSessions       int            `json:"total_sessions"`
	ReadySessions       int            `json:"ready_sessions"`
	TotalTurns          int            `json:"total_turns"`
	TotalMerges         int            `json:"total_merges"`
	AverageFieldsFilled float64        `json:"average_fields_filled"`
	FieldCounts         map[string]int `json:"field_counts"`
}

// Analytics computes totals over the sessions currently held, as of each session's last finished turn.
func (d *Driver) Analytics() Analytics {
	stats := Analytics{FieldCounts: make(map[string]int)}
	filled := 0

	d.sessions.Range(func(_ session.Info, sess *Session) bool {
		st := sess.stats.Load()

		stats.TotalSessions++
		stats.TotalTurns += st.summary.Turns
		stats.TotalMerges += st.merges
		if st.summary.Ready {
			stats.ReadySessions++
		}
		for _, name := range st.filled {
			stats.FieldCounts[name]++
		}
		filled += len(st.filled)
		return true
	})

	if stats.TotalSessions > 0 {
		stats.AverageFieldsFilled = float64(filled) / float64(stats.TotalSessions)
	}
	return stats
}
