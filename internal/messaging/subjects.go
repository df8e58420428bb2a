package messaging

// Subject constants for the report job bus.
// Follow the pattern: {domain}.{action}.{resource}
const (
	// SubjectReportJobsGenerate carries report generation requests.
	SubjectReportJobsGenerate = "timereport.jobs.generate"

	// SubjectReportJobsCompleted carries completion events for observers
	// (append .{job_id} for a specific job).
	SubjectReportJobsCompleted = "timereport.jobs.completed"
)

// Queue group names for load-balanced consumers.
// Workers in the same queue group share messages (each message processed once).
const (
	QueueReportWorkers = "timereport-workers"
)

// ReportCompletedSubject returns the subject for a specific job's completion.
// Example: timereport.jobs.completed.abc123
func ReportCompletedSubject(jobID string) string {
	return SubjectReportJobsCompleted + "." + jobID
}
