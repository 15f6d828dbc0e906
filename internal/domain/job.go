package domain

// JobSummary is one entry of the scoring service's recent-jobs listing:
// the external job identifier and its applied flag, normalized to 0/1.
type JobSummary struct {
	JobID      string
	JobApplied int
}
