package t212

import "time"

// Include selects the kinds of activity an export contains.
type Include struct {
	Dividends    bool `json:"includeDividends"`
	Interest     bool `json:"includeInterest"`
	Orders       bool `json:"includeOrders"`
	Transactions bool `json:"includeTransactions"`
}

// IncludeAll selects every kind of activity.
func IncludeAll() Include {
	return Include{Dividends: true, Interest: true, Orders: true, Transactions: true}
}

// ExportRequest asks for a CSV report of the activity in [From, To).
type ExportRequest struct {
	From, To time.Time
	Include  Include
}

// State is the progress of an export job, as inferred by the client.
type State string

const (
	Pending State = "pending"
	Ready   State = "ready"
	Failed  State = "failed"
)

// ExportJob is an export report known by the broker.
type ExportJob struct {
	ReportID     int64     `json:"reportId"`
	Status       string    `json:"status,omitempty"` // as reported by the broker: Queued, Processing, Running, Finished, Canceled, Failed.
	DownloadLink string    `json:"downloadLink,omitempty"`
	TimeFrom     time.Time `json:"timeFrom,omitzero"`
	TimeTo       time.Time `json:"timeTo,omitzero"`
}

// State returns the job state: ready as soon as a download link is available, failed
// when the broker gave up on it, pending otherwise.
func (j ExportJob) State() State {
	switch {
	case j.DownloadLink != "":
		return Ready
	case j.Status == "Failed" || j.Status == "Canceled":
		return Failed
	default:
		return Pending
	}
}

// Find returns the job with the given report id.
func Find(jobs []ExportJob, reportID int64) (ExportJob, bool) {
	for _, j := range jobs {
		if j.ReportID == reportID {
			return j, true
		}
	}
	return ExportJob{}, false
}
