package output

import (
	"encoding/json"
	"fmt"
	"os"
)

// JSONMode controls whether output is JSON or human-readable.
var JSONMode bool

// Result mirrors the gateway's response envelope so scripted callers see the
// same shape from the CLI as from the REST API.
type Result struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// Print outputs data. In JSON mode, marshals to JSON. Otherwise calls textFn.
func Print(data interface{}, textFn func()) {
	if JSONMode {
		out, err := json.MarshalIndent(Result{Success: true, Data: data}, "", "  ")
		if err != nil {
			PrintError(err)
			return
		}
		fmt.Println(string(out))
		return
	}
	textFn()
}

// Notice outputs an informational message that is not an error, e.g. an
// optional backend feature being absent.
func Notice(msg string) {
	if JSONMode {
		out, _ := json.MarshalIndent(Result{Success: true, Message: msg}, "", "  ")
		fmt.Println(string(out))
		return
	}
	fmt.Println(msg)
}

// PrintError outputs an error and exits with a non-zero status.
func PrintError(err error) {
	if JSONMode {
		out, _ := json.MarshalIndent(Result{Success: false, Message: err.Error()}, "", "  ")
		fmt.Println(string(out))
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
