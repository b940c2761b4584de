// Command smoke exercises a running server's read endpoints end to end:
// health, locations, then a search. Useful after a deploy to confirm the
// stored session still resolves against the admin API.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"
)

func main() {
	baseURL := flag.String("base-url", "http://localhost:8080", "server base URL")
	token := flag.String("token", "", "POS session token (required)")
	shop := flag.String("shop", "", "shop domain, e.g. example.myshopify.com")
	query := flag.String("q", "", "search query to run")
	flag.Parse()

	if *token == "" {
		log.Fatal("-token is required")
	}

	client := &http.Client{Timeout: 10 * time.Second}

	get := func(path string, authed bool) {
		u := *baseURL + path
		req, err := http.NewRequest(http.MethodGet, u, nil)
		if err != nil {
			log.Fatalf("build request %s: %v", path, err)
		}
		if authed {
			req.Header.Set("Authorization", "Bearer "+*token)
			if *shop != "" {
				q := req.URL.Query()
				q.Set("shop", *shop)
				req.URL.RawQuery = q.Encode()
			}
		}

		start := time.Now()
		resp, err := client.Do(req)
		if err != nil {
			log.Fatalf("GET %s: %v", path, err)
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		elapsed := time.Since(start)

		var pretty map[string]any
		summary := string(body)
		if err := json.Unmarshal(body, &pretty); err == nil && len(summary) > 200 {
			summary = fmt.Sprintf("(%d bytes, keys %v)", len(body), keys(pretty))
		}
		fmt.Printf("GET %-30s %d  %8s  %s\n", path, resp.StatusCode, elapsed.Round(time.Millisecond), summary)
	}

	get("/health", false)
	get("/locations", true)
	get("/search?q="+url.QueryEscape(*query), true)
}

func keys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
