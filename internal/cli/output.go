package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/mcoot/quickchess/internal/model"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case IdentityResult:
		o.printIdentity(v)
	case model.UsersPayload:
		o.printUsers(v)
	case model.MatchResultPayload:
		o.printMatchResult(v)
	case model.MovePayload:
		o.printMove(v)
	case model.MoveRejectedPayload:
		o.printMoveRejected(v)
	case model.GameAbortedPayload:
		fmt.Printf("Game %s aborted: opponent disconnected\n", v.GameID)
	case HealthResult:
		fmt.Printf("Status: %s\n", v.Status)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// IdentityResult reports the locally held identity
type IdentityResult struct {
	ID   string `json:"id"`
	File string `json:"file"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printIdentity(r IdentityResult) {
	fmt.Printf("Identity: %s\n", r.ID)
	fmt.Printf("File: %s\n", r.File)
}

func (o *Output) printUsers(u model.UsersPayload) {
	fmt.Printf("Online (%d):\n", len(u.Players))
	for _, id := range u.Players {
		fmt.Printf("  - %s\n", id)
	}
}

func (o *Output) printMatchResult(m model.MatchResultPayload) {
	if m.Reason != "" {
		fmt.Printf("No match: %s\n", m.Reason)
		return
	}
	fmt.Printf("Matched against %s\n", m.Opponent)
	fmt.Printf("You play %s\n", m.Color)
}

func (o *Output) printMove(m model.MovePayload) {
	fmt.Printf("Opponent played %s\n", m.Move)
	fmt.Printf("Position: %s\n", m.FEN)
	if m.Result != model.ResultInProgress {
		fmt.Printf("Game over: %s\n", m.Result)
	}
}

func (o *Output) printMoveRejected(m model.MoveRejectedPayload) {
	fmt.Println("Move rejected")
	fmt.Printf("Position: %s\n", m.FEN)
}
