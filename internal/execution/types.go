package execution

import "math"

// TestCase is one input/expected pair for the submitted function.
type TestCase struct {
	Input    any `json:"input"`
	Expected any `json:"expected"`
}

// Request asks the execution service to run code against test cases.
type Request struct {
	Code           string     `json:"code"`
	FunctionName   string     `json:"functionName"`
	TestCases      []TestCase `json:"testCases"`
	TimeoutSeconds int        `json:"timeoutSeconds"`
}

// TestResult is the outcome of one test case.
type TestResult struct {
	Passed   bool   `json:"passed"`
	Input    any    `json:"input"`
	Expected any    `json:"expected"`
	Actual   any    `json:"actual"`
	Error    string `json:"error,omitempty"`
}

// Result is the execution service's response.
type Result struct {
	Success         bool         `json:"success"`
	TestResults     []TestResult `json:"testResults"`
	ExecutionTimeMs int64        `json:"executionTimeMs"`
	Error           string       `json:"error,omitempty"`
}

// Passed counts passing test cases.
func (r Result) Passed() int {
	n := 0
	for _, tr := range r.TestResults {
		if tr.Passed {
			n++
		}
	}
	return n
}

// Score is the rounded percentage of passing test cases, 0 with no cases.
func (r Result) Score() int {
	if len(r.TestResults) == 0 {
		return 0
	}
	return int(math.Round(100 * float64(r.Passed()) / float64(len(r.TestResults))))
}
