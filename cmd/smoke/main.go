// Command smoke probes a running portal: Redis reachability, the public
// endpoints, the gate redirects and the flow snapshots currently stored.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"authportal/internal/shared/config"
	"authportal/internal/shared/constants"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

type ProbeResult struct {
	Name         string        `json:"name"`
	Method       string        `json:"method"`
	Path         string        `json:"path"`
	Status       int           `json:"status"`
	WantStatus   int           `json:"want_status"`
	Location     string        `json:"location,omitempty"`
	ResponseTime time.Duration `json:"response_time"`
	Success      bool          `json:"success"`
	Error        string        `json:"error,omitempty"`
}

type FlowKey struct {
	Key string        `json:"key"`
	TTL time.Duration `json:"ttl"`
}

type SmokeSuite struct {
	BaseURL string
	APIBase string
	Results []ProbeResult
	Flows   []FlowKey
	client  *http.Client
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	baseURL := flag.String("url", "http://localhost:"+cfg.Port, "portal base URL")
	reportPath := flag.String("report", "", "write a JSON report to this file")
	flag.Parse()

	suite := &SmokeSuite{
		BaseURL: strings.TrimRight(*baseURL, "/"),
		APIBase: cfg.GetAPIBasePath(),
		client: &http.Client{
			Timeout: 10 * time.Second,
			// the gate answers with redirects; record them instead of following
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}

	fmt.Println("🧪 Starting portal smoke check...")
	fmt.Println("================================")

	rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	defer rdb.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("❌ Redis connection failed: %v", err)
	}
	fmt.Println("✅ Redis connection: OK")

	testCases := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"Health", http.MethodGet, "/health", "", http.StatusOK},
		{"Ping", http.MethodGet, "/ping", "", http.StatusOK},
		{"Status", http.MethodGet, "/status", "", http.StatusOK},
		{"Home page", http.MethodGet, "/", "", http.StatusOK},
		{"Sign-in page", http.MethodGet, "/auth/sign-in", "", http.StatusOK},
		{"Dashboard without session", http.MethodGet, "/dashboard", "", http.StatusFound},
		{"Session without cookie", http.MethodGet, suite.APIBase + "/session", "", http.StatusUnauthorized},
		{"Sign-in validation", http.MethodPost, suite.APIBase + "/auth/sign-in", `{"email":"","password":""}`, http.StatusBadRequest},
	}

	for _, tc := range testCases {
		fmt.Printf("\n🔍 Probing: %s\n", tc.name)
		suite.Results = append(suite.Results, suite.probe(tc.name, tc.method, tc.path, tc.body, tc.want))
	}

	if err := suite.scanFlows(ctx, rdb); err != nil {
		fmt.Printf("\n⚠️  Could not list flow snapshots: %v\n", err)
	}

	suite.generateReport(*reportPath)

	for _, r := range suite.Results {
		if !r.Success {
			os.Exit(1)
		}
	}
	fmt.Println("\n🎉 Smoke check complete!")
}

func (s *SmokeSuite) probe(name, method, path, body string, want int) ProbeResult {
	result := ProbeResult{Name: name, Method: method, Path: path, WantStatus: want}

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, s.BaseURL+path, reader)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := s.client.Do(req)
	result.ResponseTime = time.Since(start)
	if err != nil {
		result.Error = err.Error()
		fmt.Printf("   ❌ %v\n", err)
		return result
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	result.Status = resp.StatusCode
	result.Location = resp.Header.Get("Location")
	result.Success = resp.StatusCode == want
	if !result.Success {
		result.Error = fmt.Sprintf("HTTP %d, want %d", resp.StatusCode, want)
	}

	statusIcon := "✅"
	if !result.Success {
		statusIcon = "❌"
	}
	fmt.Printf("   %s %d %v", statusIcon, resp.StatusCode, result.ResponseTime)
	if result.Location != "" {
		fmt.Printf(" -> %s", result.Location)
	}
	fmt.Println()

	return result
}

// scanFlows lists the flow snapshots and busy locks held in Redis
func (s *SmokeSuite) scanFlows(ctx context.Context, rdb *redis.Client) error {
	iter := rdb.Scan(ctx, 0, constants.CACHE_KEY_FLOW+"*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		ttl, err := rdb.TTL(ctx, key).Result()
		if err != nil {
			return err
		}
		s.Flows = append(s.Flows, FlowKey{Key: key, TTL: ttl})
	}
	return iter.Err()
}

func (s *SmokeSuite) generateReport(path string) {
	fmt.Println("\n📊 SMOKE REPORT")
	fmt.Println("===============")

	passed := 0
	var total time.Duration
	for _, r := range s.Results {
		if r.Success {
			passed++
		}
		total += r.ResponseTime
	}

	fmt.Printf("Probes: %d\n", len(s.Results))
	if len(s.Results) > 0 {
		fmt.Printf("Passed: %d (%.1f%%)\n", passed, float64(passed)/float64(len(s.Results))*100)
		fmt.Printf("Average response time: %v\n", total/time.Duration(len(s.Results)))
	}

	busy := 0
	for _, f := range s.Flows {
		if strings.HasSuffix(f.Key, constants.CACHE_SUFFIX_BUSY) {
			busy++
		}
	}
	fmt.Printf("Flow snapshots: %d (busy locks: %d)\n", len(s.Flows)-busy, busy)

	if path == "" {
		return
	}
	reportData, err := json.MarshalIndent(map[string]interface{}{
		"summary": map[string]interface{}{
			"probes": len(s.Results),
			"passed": passed,
			"flows":  len(s.Flows) - busy,
			"busy":   busy,
		},
		"results": s.Results,
		"flows":   s.Flows,
	}, "", "  ")
	if err != nil {
		fmt.Printf("⚠️  Could not encode report: %v\n", err)
		return
	}
	if err := os.WriteFile(path, reportData, 0o644); err != nil {
		fmt.Printf("⚠️  Could not write report: %v\n", err)
		return
	}
	fmt.Printf("\n💾 Detailed results saved to %s\n", path)
}
