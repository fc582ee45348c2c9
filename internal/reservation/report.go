package reservation

import (
	"sort"
	"time"
)

// ReportParams filter the reservation set a report is built from.
type ReportParams struct {
	Start    *time.Time
	End      *time.Time
	SpaceID  int64
	Statuses []Status
}

// Report is the aggregated reservation data consumed by the PDF
// rendering collaborator. Rendering itself is out of scope here; this
// package only extracts grouping and counts.
type Report struct {
	GeneratedAt time.Time      `json:"generated_at"`
	Start       *time.Time     `json:"start,omitempty"`
	End         *time.Time     `json:"end,omitempty"`
	Total       int            `json:"total"`
	StatusCount map[Status]int `json:"status_count"`
	Spaces      []SpaceGroup   `json:"spaces"`
}

// SpaceGroup aggregates the reservations of one space.
type SpaceGroup struct {
	SpaceID     int64          `json:"space_id"`
	SpaceName   string         `json:"space_name"`
	Total       int            `json:"total"`
	StatusCount map[Status]int `json:"status_count"`
	Items       []ReportItem   `json:"items"`
}

// ReportItem is one reservation row of the report.
type ReportItem struct {
	ID           int64      `json:"id"`
	Title        string     `json:"title"`
	CreatedBy    string     `json:"created_by"`
	StartAt      time.Time  `json:"start_at"`
	EndAt        time.Time  `json:"end_at"`
	Status       Status     `json:"status"`
	DecisionAt   *time.Time `json:"decision_at,omitempty"`
	DecisionNote string     `json:"decision_note,omitempty"`
}

func emptyStatusCount() map[Status]int {
	return map[Status]int{
		StatusPending:   0,
		StatusApproved:  0,
		StatusRejected:  0,
		StatusCancelled: 0,
	}
}

// BuildReport groups reservations by space and tallies per-status counts.
// It is pure; the input ordering inside each group is preserved.
func BuildReport(reservations []*Reservation, generatedAt time.Time, p ReportParams) *Report {
	report := &Report{
		GeneratedAt: generatedAt,
		Start:       p.Start,
		End:         p.End,
		Total:       len(reservations),
		StatusCount: emptyStatusCount(),
	}

	groups := make(map[int64]*SpaceGroup)
	for _, res := range reservations {
		report.StatusCount[res.Status]++

		g, ok := groups[res.Space.ID]
		if !ok {
			g = &SpaceGroup{
				SpaceID:     res.Space.ID,
				SpaceName:   res.Space.Name,
				StatusCount: emptyStatusCount(),
			}
			groups[res.Space.ID] = g
		}

		g.Total++
		g.StatusCount[res.Status]++
		g.Items = append(g.Items, ReportItem{
			ID:           res.ID,
			Title:        res.Title,
			CreatedBy:    res.CreatedBy.Email,
			StartAt:      res.StartAt,
			EndAt:        res.EndAt,
			Status:       res.Status,
			DecisionAt:   res.DecisionAt,
			DecisionNote: res.DecisionNote,
		})
	}

	report.Spaces = make([]SpaceGroup, 0, len(groups))
	for _, g := range groups {
		report.Spaces = append(report.Spaces, *g)
	}
	sort.Slice(report.Spaces, func(i, j int) bool {
		return report.Spaces[i].SpaceName < report.Spaces[j].SpaceName
	})

	return report
}
