package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var HttpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "prompt_repo_http_requests_total",
}, []string{"action", "method"})
var HttpResponses = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "prompt_repo_http_responses_total",
}, []string{"action", "method", "statusCode"})
var MediaPuts = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "prompt_repo_media_puts_total",
}, []string{"outcome"}) // created, deduplicated, overwritten, rejected
var MediaSynced = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "prompt_repo_media_synced_total",
}, []string{"outcome"}) // added, cleaned
var SharesOffered = prometheus.NewCounter(prometheus.CounterOpts{
	Name: "prompt_repo_shares_offered_total",
})
var SharesResolved = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "prompt_repo_shares_resolved_total",
}, []string{"state"})
var ArchiveEntries = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "prompt_repo_archive_entries_total",
}, []string{"action"}) // exported, export_skipped, restored, skipped
var S3Operations = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "prompt_repo_s3_operations_total",
}, []string{"operation"})

func init() {
	prometheus.MustRegister(HttpRequests)
	prometheus.MustRegister(HttpResponses)
	prometheus.MustRegister(MediaPuts)
	prometheus.MustRegister(MediaSynced)
	prometheus.MustRegister(SharesOffered)
	prometheus.MustRegister(SharesResolved)
	prometheus.MustRegister(ArchiveEntries)
	prometheus.MustRegister(S3Operations)
}
