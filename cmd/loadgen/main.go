package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/pflag"
	vegeta "github.com/tsenart/vegeta/v12/lib"
)

type options struct {
	baseURL  string
	rps      int
	duration time.Duration
	token    string
	email    string
	lcsToken string
}

type createTicketRequest struct {
	OwnerEmail string `json:"owner_email"`
	Title      string `json:"title"`
	Comment    string `json:"comment"`
	Location   string `json:"location"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var opts options

	flagSet := pflag.NewFlagSet("loadgen", pflag.ContinueOnError)
	flagSet.StringVar(&opts.baseURL, "url", "http://localhost:8080", "base URL of the service")
	flagSet.IntVar(&opts.rps, "rps", 5, "requests per second")
	flagSet.DurationVar(&opts.duration, "duration", 2*time.Minute, "attack duration")
	flagSet.StringVar(&opts.token, "token", "", "access token (skips the /auth/token exchange)")
	flagSet.StringVar(&opts.email, "email", "", "hacker email used for the token exchange and created tickets")
	flagSet.StringVar(&opts.lcsToken, "lcs-token", "", "LCS token used for the token exchange")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	args := flagSet.Args()
	if len(args) != 1 {
		fmt.Println("Usage: loadgen [flags] <scenario>")
		fmt.Println("Scenarios: health, tickets, stats, all")
		flagSet.PrintDefaults()
		os.Exit(1)
	}
	scenario := args[0]

	if scenario != "health" && opts.token == "" {
		token, err := exchangeToken(opts)
		if err != nil {
			return err
		}
		opts.token = token
	}

	var targets []vegeta.Target
	switch scenario {
	case "health":
		targets = healthTargets(opts)
	case "tickets":
		targets = ticketTargets(opts)
	case "stats":
		targets = statsTargets(opts)
	case "all":
		targets = append(healthTargets(opts), ticketTargets(opts)...)
		targets = append(targets, statsTargets(opts)...)
	default:
		return fmt.Errorf("unknown scenario: %s", scenario)
	}

	metrics := runAttack(vegeta.NewStaticTargeter(targets...), opts, scenario)
	printMetrics(metrics)
	return nil
}

// exchangeToken получает access токен через /auth/token
func exchangeToken(opts options) (string, error) {
	if opts.email == "" || opts.lcsToken == "" {
		return "", errors.New("either --token or both --email and --lcs-token are required")
	}

	body, _ := json.Marshal(map[string]string{"email": opts.email, "lcs_token": opts.lcsToken})
	resp, err := http.Post(opts.baseURL+"/auth/token", "application/json", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("token exchange: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token exchange: unexpected status %d", resp.StatusCode)
	}

	var pair struct {
		Access string `json:"access"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&pair); err != nil {
		return "", fmt.Errorf("token exchange: %w", err)
	}
	return pair.Access, nil
}

func authHeader(opts options) http.Header {
	return http.Header{
		"Authorization": []string{"Bearer " + opts.token},
		"Content-Type":  []string{"application/json"},
	}
}

func healthTargets(opts options) []vegeta.Target {
	return []vegeta.Target{{
		Method: "GET",
		URL:    opts.baseURL + "/health",
	}}
}

func ticketTargets(opts options) []vegeta.Target {
	body, _ := json.Marshal(createTicketRequest{
		OwnerEmail: opts.email,
		Title:      "load test ticket",
		Comment:    "generated by loadgen",
		Location:   "load table",
	})

	return []vegeta.Target{
		{
			Method: "POST",
			URL:    opts.baseURL + "/tickets",
			Body:   body,
			Header: authHeader(opts),
		},
		{
			Method: "GET",
			URL:    opts.baseURL + "/tickets",
			Header: authHeader(opts),
		},
		{
			Method: "GET",
			URL:    opts.baseURL + "/tickets?status=OPEN",
			Header: authHeader(opts),
		},
	}
}

func statsTargets(opts options) []vegeta.Target {
	return []vegeta.Target{
		{
			Method: "GET",
			URL:    opts.baseURL + "/tickets/stats",
			Header: authHeader(opts),
		},
		{
			Method: "GET",
			URL:    opts.baseURL + "/feedback/leaderboard?limit=5",
			Header: authHeader(opts),
		},
	}
}

func runAttack(targeter vegeta.Targeter, opts options, name string) vegeta.Metrics {
	rate := vegeta.Rate{Freq: opts.rps, Per: time.Second}
	attacker := vegeta.NewAttacker()

	var metrics vegeta.Metrics
	for res := range attacker.Attack(targeter, rate, opts.duration, name) {
		metrics.Add(res)
	}
	metrics.Close()

	return metrics
}

func printMetrics(metrics vegeta.Metrics) {
	fmt.Printf("\n=== Load Test Results ===\n\n")
	fmt.Printf("Requests Total:     %d\n", metrics.Requests)
	fmt.Printf("Success Rate:       %.2f%%\n", metrics.Success*100)
	fmt.Printf("Duration:           %v\n", metrics.Duration)

	if metrics.Requests == 0 {
		return
	}

	fmt.Printf("\nLatency:\n")
	fmt.Printf("  Mean:             %v\n", metrics.Latencies.Mean)
	fmt.Printf("  P50:              %v\n", metrics.Latencies.P50)
	fmt.Printf("  P95:              %v\n", metrics.Latencies.P95)
	fmt.Printf("  P99:              %v\n", metrics.Latencies.P99)
	fmt.Printf("  Max:              %v\n", metrics.Latencies.Max)

	fmt.Printf("\nThroughput:\n")
	fmt.Printf("  Requests/sec:     %.2f\n", metrics.Rate)

	fmt.Printf("\nStatus Codes:\n")
	for code, count := range metrics.StatusCodes {
		fmt.Printf("  %s: %d\n", code, count)
	}

	fmt.Printf("\nErrors:\n")
	if len(metrics.Errors) == 0 {
		fmt.Printf("  None\n")
	}
	for _, err := range metrics.Errors {
		fmt.Printf("  %s\n", err)
	}
	fmt.Printf("\n")
}
