package metrics

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Simple Prometheus-style metrics for HTTP requests and conversions.
// This is intentionally minimal and in-memory only.

var (
	mu             sync.RWMutex
	requestsTotal  = make(map[reqKey]int64)
	latencyMsSum   = make(map[latKey]int64)
	latencyMsCount = make(map[latKey]int64)

	conversionsTotal = make(map[convKey]int64)
	uploadsTotal     = make(map[string]int64)
	uploadBytesTotal int64

	retentionJobsDeleted int64
)

type reqKey struct {
	Method string
	Path   string
	Status int
}

type latKey struct {
	Method string
	Path   string
}

type convKey struct {
	Input   string
	Output  string
	Success string
}

// RecordRequest increments request counter and records latency.
func RecordRequest(method, path string, status int, latencyMs int64) {
	mu.Lock()
	defer mu.Unlock()

	rk := reqKey{Method: method, Path: path, Status: status}
	requestsTotal[rk]++

	lk := latKey{Method: method, Path: path}
	latencyMsSum[lk] += latencyMs
	latencyMsCount[lk]++
}

// RecordUpload counts an accepted upload by input format and size.
func RecordUpload(inputFormat string, size int64) {
	mu.Lock()
	defer mu.Unlock()
	uploadsTotal[inputFormat]++
	uploadBytesTotal += size
}

// RecordConversion counts a finished conversion attempt by format pair
// and outcome.
func RecordConversion(inputFormat, outputFormat string, success bool) {
	mu.Lock()
	defer mu.Unlock()

	s := "false"
	if success {
		s = "true"
	}
	conversionsTotal[convKey{Input: inputFormat, Output: outputFormat, Success: s}]++
}

// RecordRetentionJobs increments the counter of jobs deleted by TTL
// cleanup.
func RecordRetentionJobs(deleted int64) {
	if deleted <= 0 {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	retentionJobsDeleted += deleted
}

// Export returns Prometheus-style metrics text.
func Export() string {
	mu.RLock()
	defer mu.RUnlock()

	var b strings.Builder

	b.WriteString("# HELP fileforge_http_requests_total Total HTTP requests\n")
	b.WriteString("# TYPE fileforge_http_requests_total counter\n")

	// Sort keys for stable output
	var reqKeys []reqKey
	for k := range requestsTotal {
		reqKeys = append(reqKeys, k)
	}
	sort.Slice(reqKeys, func(i, j int) bool {
		if reqKeys[i].Method != reqKeys[j].Method {
			return reqKeys[i].Method < reqKeys[j].Method
		}
		if reqKeys[i].Path != reqKeys[j].Path {
			return reqKeys[i].Path < reqKeys[j].Path
		}
		return reqKeys[i].Status < reqKeys[j].Status
	})

	for _, k := range reqKeys {
		v := requestsTotal[k]
		fmt.Fprintf(&b, "fileforge_http_requests_total{method=\"%s\",path=\"%s\",status=\"%d\"} %d\n",
			k.Method, k.Path, k.Status, v)
	}

	b.WriteString("# HELP fileforge_http_request_duration_ms_sum Total request duration in milliseconds\n")
	b.WriteString("# TYPE fileforge_http_request_duration_ms_sum counter\n")
	b.WriteString("# HELP fileforge_http_request_duration_ms_count Request count for latency metric\n")
	b.WriteString("# TYPE fileforge_http_request_duration_ms_count counter\n")

	var latKeys []latKey
	for k := range latencyMsSum {
		latKeys = append(latKeys, k)
	}
	sort.Slice(latKeys, func(i, j int) bool {
		if latKeys[i].Method != latKeys[j].Method {
			return latKeys[i].Method < latKeys[j].Method
		}
		return latKeys[i].Path < latKeys[j].Path
	})

	for _, k := range latKeys {
		sum := latencyMsSum[k]
		cnt := latencyMsCount[k]
		fmt.Fprintf(&b, "fileforge_http_request_duration_ms_sum{method=\"%s\",path=\"%s\"} %d\n",
			k.Method, k.Path, sum)
		fmt.Fprintf(&b, "fileforge_http_request_duration_ms_count{method=\"%s\",path=\"%s\"} %d\n",
			k.Method, k.Path, cnt)
	}

	b.WriteString("# HELP fileforge_uploads_total Accepted uploads by input format\n")
	b.WriteString("# TYPE fileforge_uploads_total counter\n")

	var upKeys []string
	for k := range uploadsTotal {
		upKeys = append(upKeys, k)
	}
	sort.Strings(upKeys)
	for _, k := range upKeys {
		fmt.Fprintf(&b, "fileforge_uploads_total{format=\"%s\"} %d\n", k, uploadsTotal[k])
	}

	b.WriteString("# HELP fileforge_upload_bytes_total Total accepted upload bytes\n")
	b.WriteString("# TYPE fileforge_upload_bytes_total counter\n")
	fmt.Fprintf(&b, "fileforge_upload_bytes_total %d\n", uploadBytesTotal)

	b.WriteString("# HELP fileforge_conversions_total Finished conversion attempts by pair and outcome\n")
	b.WriteString("# TYPE fileforge_conversions_total counter\n")

	var convKeys []convKey
	for k := range conversionsTotal {
		convKeys = append(convKeys, k)
	}
	sort.Slice(convKeys, func(i, j int) bool {
		if convKeys[i].Input != convKeys[j].Input {
			return convKeys[i].Input < convKeys[j].Input
		}
		if convKeys[i].Output != convKeys[j].Output {
			return convKeys[i].Output < convKeys[j].Output
		}
		return convKeys[i].Success < convKeys[j].Success
	})

	for _, k := range convKeys {
		v := conversionsTotal[k]
		fmt.Fprintf(&b, "fileforge_conversions_total{input=\"%s\",output=\"%s\",success=\"%s\"} %d\n",
			k.Input, k.Output, k.Success, v)
	}

	b.WriteString("# HELP fileforge_retention_jobs_deleted_total Jobs deleted by TTL cleanup\n")
	b.WriteString("# TYPE fileforge_retention_jobs_deleted_total counter\n")
	fmt.Fprintf(&b, "fileforge_retention_jobs_deleted_total %d\n", retentionJobsDeleted)

	return b.String()
}
