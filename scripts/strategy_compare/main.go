// Command strategy_compare runs the same scheduling payload through both
// engines on a live API and reports where their results diverge. Useful when
// tuning the optimizer objective against the backtracking baseline.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"sort"
	"time"
)

type runResult struct {
	Data struct {
		RunID  string `json:"run_id"`
		Result struct {
			Filled []struct {
				ID        string `json:"id"`
				StartTime string `json:"start_time"`
			} `json:"filled_appointments"`
			Unfilled []struct {
				ID string `json:"id"`
			} `json:"unfilled_appointments"`
			Validation struct {
				Valid  bool     `json:"valid"`
				Issues []string `json:"issues"`
			} `json:"validation"`
		} `json:"result"`
	} `json:"data"`
}

func main() {
	var (
		base        string
		payloadPath string
		timeout     time.Duration
	)
	flag.StringVar(&base, "base", "http://localhost:8080", "API base URL")
	flag.StringVar(&payloadPath, "payload", "", "path to a scheduling payload JSON file")
	flag.DurationVar(&timeout, "timeout", 90*time.Second, "HTTP client timeout")
	flag.Parse()

	if payloadPath == "" {
		log.Fatal("-payload is required")
	}
	payload, err := os.ReadFile(payloadPath)
	if err != nil {
		log.Fatalf("read payload: %v", err)
	}

	client := &http.Client{Timeout: timeout}
	backtracking, err := run(client, base, payload, "backtracking")
	if err != nil {
		log.Fatalf("backtracking run: %v", err)
	}
	optimizer, err := run(client, base, payload, "optimizer")
	if err != nil {
		log.Fatalf("optimizer run: %v", err)
	}

	report(backtracking, optimizer)
}

func run(client *http.Client, base string, payload []byte, strategy string) (*runResult, error) {
	var body map[string]any
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, fmt.Errorf("parse payload: %w", err)
	}
	body["strategy"] = strategy

	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	resp, err := client.Post(base+"/api/v1/schedule", "application/json", bytes.NewReader(encoded))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusUnprocessableEntity {
		return nil, fmt.Errorf("%s returned %d: %s", strategy, resp.StatusCode, raw)
	}

	var result runResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", strategy, err)
	}
	return &result, nil
}

func report(backtracking, optimizer *runResult) {
	btFilled := filledIDs(backtracking)
	opFilled := filledIDs(optimizer)

	fmt.Printf("backtracking: %d filled, %d unfilled, valid=%v\n",
		len(btFilled), len(backtracking.Data.Result.Unfilled), backtracking.Data.Result.Validation.Valid)
	fmt.Printf("optimizer:    %d filled, %d unfilled, valid=%v\n",
		len(opFilled), len(optimizer.Data.Result.Unfilled), optimizer.Data.Result.Validation.Valid)

	onlyBT := difference(btFilled, opFilled)
	onlyOp := difference(opFilled, btFilled)
	if len(onlyBT) == 0 && len(onlyOp) == 0 {
		fmt.Println("both strategies placed the same request set")
		return
	}
	if len(onlyBT) > 0 {
		fmt.Printf("placed only by backtracking: %v\n", onlyBT)
	}
	if len(onlyOp) > 0 {
		fmt.Printf("placed only by optimizer:    %v\n", onlyOp)
	}
}

func filledIDs(r *runResult) map[string]bool {
	ids := make(map[string]bool, len(r.Data.Result.Filled))
	for _, f := range r.Data.Result.Filled {
		ids[f.ID] = true
	}
	return ids
}

func difference(a, b map[string]bool) []string {
	var out []string
	for id := range a {
		if !b[id] {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}
