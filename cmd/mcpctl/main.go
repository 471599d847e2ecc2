// mcpctl is a command line client for the MCP agent server: it
// dispatches actions, fetches state snapshots and reads the action log.
//
// Exit codes: 0 on success, 1 on server/transport errors, 2 on bad
// command line input.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/fatih/color"
)

const requestTimeout = 30 * time.Second

var (
	successLabel = color.New(color.FgGreen, color.Bold)
	errorLabel   = color.New(color.FgRed, color.Bold)
)

// commonFlags are shared by every subcommand
type commonFlags struct {
	baseURL string
	apiKey  string
}

func (c *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&c.baseURL, "base-url", "http://localhost:8000", "server URL")
	fs.StringVar(&c.apiKey, "api-key", os.Getenv("MCP_API_KEY"), "X-API-Key value")
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) < 1 {
		usage()
		return 2
	}

	switch args[0] {
	case "query":
		return cmdQuery(args[1:])
	case "state":
		return cmdState(args[1:])
	case "logs":
		return cmdLogs(args[1:])
	case "reset":
		return cmdReset(args[1:])
	case "help", "-h", "--help":
		usage()
		return 0
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", args[0])
		usage()
		return 2
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: mcpctl <command> [flags]

Commands:
  query <action> [--params JSON]   execute an action
  state [--entity --limit --offset --status]
                                   fetch the state snapshot
  logs [--limit --offset]          fetch recent action logs
  reset                            reset all server data

Common flags:
  --base-url URL   server URL (default http://localhost:8000)
  --api-key KEY    X-API-Key value (default $MCP_API_KEY)`)
}

func cmdQuery(args []string) int {
	fs := flag.NewFlagSet("query", flag.ContinueOnError)
	var common commonFlags
	common.register(fs)
	params := fs.String("params", "", "JSON object for params")

	if len(args) < 1 || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprintln(os.Stderr, "usage: mcpctl query <action> [--params JSON]")
		return 2
	}
	action := args[0]
	if err := fs.Parse(args[1:]); err != nil {
		return 2
	}

	paramsMap := map[string]interface{}{}
	if *params != "" {
		if err := json.Unmarshal([]byte(*params), &paramsMap); err != nil {
			fmt.Fprintf(os.Stderr, "invalid --params JSON: %v\n", err)
			return 2
		}
	}

	body, err := json.Marshal(map[string]interface{}{
		"action": action,
		"params": paramsMap,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to encode request: %v\n", err)
		return 2
	}

	return request(common, http.MethodPost, "/api/v1/query", nil, body)
}

func cmdState(args []string) int {
	fs := flag.NewFlagSet("state", flag.ContinueOnError)
	var common commonFlags
	common.register(fs)
	entity := fs.String("entity", "", "users | tasks | config | logs")
	limit := fs.Int("limit", -1, "limit results")
	offset := fs.Int("offset", -1, "offset results")
	status := fs.String("status", "", "task status filter")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	query := url.Values{}
	if *entity != "" {
		query.Set("entity", *entity)
	}
	if *limit >= 0 {
		query.Set("limit", strconv.Itoa(*limit))
	}
	if *offset >= 0 {
		query.Set("offset", strconv.Itoa(*offset))
	}
	if *status != "" {
		query.Set("status", *status)
	}

	return request(common, http.MethodGet, "/api/v1/state", query, nil)
}

func cmdLogs(args []string) int {
	fs := flag.NewFlagSet("logs", flag.ContinueOnError)
	var common commonFlags
	common.register(fs)
	limit := fs.Int("limit", 10, "number of logs")
	offset := fs.Int("offset", -1, "offset logs")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	query := url.Values{}
	query.Set("limit", strconv.Itoa(*limit))
	if *offset >= 0 {
		query.Set("offset", strconv.Itoa(*offset))
	}

	return request(common, http.MethodGet, "/api/v1/logs", query, nil)
}

func cmdReset(args []string) int {
	fs := flag.NewFlagSet("reset", flag.ContinueOnError)
	var common commonFlags
	common.register(fs)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	return request(common, http.MethodPost, "/api/v1/reset", nil, nil)
}

// request performs one API call and pretty-prints the JSON response
func request(common commonFlags, method, path string, query url.Values, body []byte) int {
	target := common.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequest(method, target, bytes.NewReader(body))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build request: %v\n", err)
		return 1
	}
	req.Header.Set("Content-Type", "application/json")
	if common.apiKey != "" {
		req.Header.Set("X-API-Key", common.apiKey)
	}

	client := &http.Client{Timeout: requestTimeout}
	resp, err := client.Do(req)
	if err != nil {
		_, _ = errorLabel.Fprint(os.Stderr, "request failed: ")
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read response: %v\n", err)
		return 1
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = errorLabel.Fprintf(os.Stderr, "HTTP %d: ", resp.StatusCode)
		fmt.Fprintln(os.Stderr, string(data))
		return 1
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, data, "", "  "); err != nil {
		fmt.Println(string(data))
	} else {
		fmt.Println(pretty.String())
	}

	_, _ = successLabel.Fprintln(os.Stderr, "ok")
	return 0
}
