package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mcoot/quickchess/internal/model"
)

func newMatchCmd() *cobra.Command {
	var nick string
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "match",
		Short: "Request a quick match and play interactively",
		Long: `Request a quick match against another online player.

Once matched, moves are read from stdin in UCI notation (e.g. e2e4) and
the opponent's moves are printed as they arrive. Type "quit" to resign
the connection. An accepted move produces no reply; a rejected move is
reported and can be retried.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMatch(nick, timeout)
		},
	}

	cmd.Flags().StringVar(&nick, "nick", "", "Profile nickname sent with the request")
	cmd.Flags().DurationVar(&timeout, "timeout", 130*time.Second, "How long to wait for a pairing")

	return cmd
}

func runMatch(nick string, timeout time.Duration) error {
	client, err := Connect(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	out := NewOutput(cfg.Output)

	var payload model.QuickMatchPayload
	if nick != "" {
		payload.Info = map[string]any{"nick": nick}
	}
	if err := client.Send(model.EventRequestQuickMatch, payload); err != nil {
		return err
	}

	out.PrintMessage("Waiting for an opponent...")
	ev, err := client.WaitFor(model.EventMatchResult, timeout)
	if err != nil {
		_ = client.Send(model.EventCancelQuickMatch, nil)
		return fmt.Errorf("gave up waiting for a match: %w", err)
	}

	result, err := Decode[model.MatchResultPayload](ev)
	if err != nil {
		return err
	}
	out.Print(result)
	if result.Reason != "" {
		return nil
	}

	return playGame(client, out, result.Color)
}

func playGame(client *Client, out *Output, color model.Color) error {
	// One goroutine per input source; the loop below is the only
	// writer to the connection
	events := make(chan model.Event)
	readErr := make(chan error, 1)
	go func() {
		for {
			ev, err := client.ReadEvent(0)
			if err != nil {
				readErr <- err
				return
			}
			events <- ev
		}
	}()

	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- strings.TrimSpace(scanner.Text())
		}
		close(lines)
	}()

	if color == model.ColorWhite {
		out.PrintMessage("You open. Enter a move (uci):")
	} else {
		out.PrintMessage("Opponent opens. Waiting...")
	}

	for {
		select {
		case line, ok := <-lines:
			if !ok || line == "quit" {
				out.PrintMessage("Leaving the game")
				return nil
			}
			if line == "" {
				continue
			}
			if err := client.Send(model.EventSubmitMove, model.SubmitMovePayload{Move: line}); err != nil {
				return err
			}

		case ev := <-events:
			switch ev.Type {
			case model.EventMove:
				move, err := Decode[model.MovePayload](ev)
				if err != nil {
					return err
				}
				out.Print(move)
				if move.Result != model.ResultInProgress {
					return nil
				}
			case model.EventMoveRejected:
				rejected, err := Decode[model.MoveRejectedPayload](ev)
				if err != nil {
					return err
				}
				out.Print(rejected)
			case model.EventGameAborted:
				aborted, err := Decode[model.GameAbortedPayload](ev)
				if err != nil {
					return err
				}
				out.Print(aborted)
				return nil
			}

		case err := <-readErr:
			return fmt.Errorf("connection lost: %w", err)
		}
	}
}
