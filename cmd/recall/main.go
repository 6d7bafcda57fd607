package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
)

// Version is set at build time via ldflags
var Version = "dev"

const (
	daemonAddr = "http://127.0.0.1:7532"
	pidFile    = "recalld.pid"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "start":
		err = cmdStart()
	case "stop":
		err = cmdStop()
	case "status":
		err = cmdStatus()
	case "logs":
		err = cmdLogs()
	case "due":
		err = cmdDue()
	case "review":
		err = cmdReview(os.Args[2:])
	case "history":
		err = cmdHistory(os.Args[2:])
	case "stats":
		err = cmdStats()
	case "modules":
		err = cmdModules()
	case "achievements":
		err = cmdAchievements()
	case "reset":
		err = cmdReset(os.Args[2:])
	case "events":
		err = cmdEvents(os.Args[2:])
	case "mcp":
		err = cmdMCP()
	case "help", "-h", "--help":
		printUsage()
	case "version", "-v", "--version":
		fmt.Printf("recall %s\n", Version)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Recall - Learning progress and spaced repetition

Usage:
  recall <command> [arguments]

Daemon Commands:
  start           Start the recall daemon
  stop            Stop the recall daemon
  status          Show daemon status
  logs            View daemon logs

Review Commands:
  due                              List lessons and exercises due for review
  review <lesson|exercise> <id> <0-5>
                                   Record how well you recalled a unit
  history <lesson|exercise> <id>   Show past reviews of a unit

Progress Commands:
  stats           Show learning statistics
  modules         Show progress per module
  achievements    List achievements
  reset --yes     Erase all progress

Integration Commands:
  events [type...]
                  Tail progress events from RabbitMQ (e.g. review.due)
  mcp             Start MCP server on stdio

Other:
  help            Show this help message
  version         Show version information

Examples:
  recall start                    # Start daemon
  recall due                      # What should I review today?
  recall review lesson l1 4       # Recalled lesson l1 with some hesitation
  recall mcp                      # Start MCP server for an editor`)
}

// renderProgressBar creates a visual progress bar for a value in [0, 1]
func renderProgressBar(value float64, width int) string {
	filled := int(value * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	empty := width - filled

	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", empty) + "]"
}

// daemonRequest sends a request to the daemon and decodes the JSON reply
// into out. Non-2xx replies are returned as errors carrying the daemon's
// error message.
func daemonRequest(method, path string, body, out any) error {
	if !isRunning() {
		return fmt.Errorf("daemon not running (run 'recall start' first)")
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, daemonAddr+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var apiErr struct {
			Error   string `json:"error"`
			Details string `json:"details"`
		}
		if json.NewDecoder(resp.Body).Decode(&apiErr) == nil && apiErr.Error != "" {
			if apiErr.Details != "" {
				return fmt.Errorf("%s: %s", apiErr.Error, apiErr.Details)
			}
			return fmt.Errorf("%s (HTTP %d)", apiErr.Error, resp.StatusCode)
		}
		return fmt.Errorf("daemon returned HTTP %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}
