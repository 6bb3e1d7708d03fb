// runtool triggers hellorun catalog tools from a terminal and mirrors the
// tool's exit code, which makes it usable from scripts. It talks to a
// running hellorun instance over NATS; the run itself happens server side.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"hellorun/internal/messages"
	"hellorun/internal/runner"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/xid"
	"github.com/spf13/cobra"
)

var (
	natsURL  string
	waitFor  time.Duration
	exitCode int
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	os.Exit(exitCode)
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runtool",
		Short: "Run hellorun catalog tools from the command line",
		Long: `runtool publishes run commands to a running hellorun instance and
streams the outcome back. Only tools from the fixed catalog can run;
arbitrary command lines are rejected server side.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&natsURL, "nats", defaultNATSURL(), "NATS server URL")

	cmd.AddCommand(newLsCommand())
	cmd.AddCommand(newRunCommand())
	return cmd
}

func defaultNATSURL() string {
	if u := os.Getenv("NATS_URL"); u != "" {
		return u
	}
	return nats.DefaultURL
}

func newLsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ls",
		Short: "List the tool catalog",
		Run: func(cmd *cobra.Command, args []string) {
			heading := color.New(color.Bold)
			id := color.New(color.FgCyan)
			if !isatty.IsTerminal(os.Stdout.Fd()) {
				heading.DisableColor()
				id.DisableColor()
			}
			heading.Println("TOOL         COMMAND")
			for _, t := range runner.Catalog {
				id.Printf("%-12s ", t.ID)
				fmt.Println(strings.Join(t.Argv(), " "))
			}
		},
	}
}

func newRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <tool>",
		Short: "Run one catalog tool and wait for its result",
		Long: `Run publishes a run command for the named tool, waits for the terminal
event, prints the combined output, and exits with the tool's exit code.
A launch failure or a rejected run exits 1 with a diagnostic.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTool(cmd.Context(), args[0])
		},
	}
	cmd.Flags().DurationVar(&waitFor, "timeout", 60*time.Second, "how long to wait for the run to finish")
	return cmd
}

func runTool(ctx context.Context, toolID string) error {
	nc, err := nats.Connect(natsURL)
	if err != nil {
		return fmt.Errorf("connect to %s: %w", natsURL, err)
	}
	defer nc.Drain()

	js, err := jetstream.New(nc)
	if err != nil {
		return err
	}

	// The CLI gets its own surface so its events never land on a browser.
	sid := "cli-" + xid.New().String()

	// Subscribe before publishing so the started event cannot be missed.
	sub, err := nc.SubscribeSync(messages.RunEventsSubject(sid))
	if err != nil {
		return err
	}
	defer func() { _ = sub.Unsubscribe() }()

	publisher := messages.NewPublisher(js)
	if err := publisher.PublishCommand(ctx, messages.NewToolRunCommand(toolID, sid)); err != nil {
		return fmt.Errorf("publish run command: %w", err)
	}

	tty := isatty.IsTerminal(os.Stdout.Fd())
	dim := color.New(color.Faint)
	red := color.New(color.FgRed)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)
	if !tty {
		for _, c := range []*color.Color{dim, red, green, yellow} {
			c.DisableColor()
		}
	}

	deadline := time.Now().Add(waitFor)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return fmt.Errorf("timed out after %s waiting for run events", waitFor)
		}
		msg, err := sub.NextMsg(remaining)
		if err == nats.ErrTimeout {
			return fmt.Errorf("timed out after %s waiting for run events", waitFor)
		}
		if err != nil {
			return err
		}

		switch {
		case strings.HasSuffix(msg.Subject, ".started"):
			var evt messages.RunStartedEvent
			if err := json.Unmarshal(msg.Data, &evt); err != nil {
				return err
			}
			dim.Fprintf(os.Stderr, "run %s started (%s)\n", evt.RunID, evt.ToolID)

		case strings.HasSuffix(msg.Subject, ".exit"):
			var evt messages.RunExitEvent
			if err := json.Unmarshal(msg.Data, &evt); err != nil {
				return err
			}
			fmt.Print(evt.Text)
			if !strings.HasSuffix(evt.Text, "\n") {
				fmt.Println()
			}
			if evt.Truncated {
				yellow.Fprintln(os.Stderr, "(output truncated)")
			}
			if evt.ExitCode == 0 {
				green.Fprintln(os.Stderr, "exit code 0")
			} else {
				red.Fprintf(os.Stderr, "exit code %d\n", evt.ExitCode)
			}
			exitCode = evt.ExitCode
			return nil

		case strings.HasSuffix(msg.Subject, ".error"):
			var evt messages.RunErrorEvent
			if err := json.Unmarshal(msg.Data, &evt); err != nil {
				return err
			}
			return fmt.Errorf("launch failed: %s", evt.Error)

		case strings.HasSuffix(msg.Subject, ".rejected"):
			var evt messages.RunRejectedEvent
			if err := json.Unmarshal(msg.Data, &evt); err != nil {
				return err
			}
			return fmt.Errorf("run rejected: %s", evt.Reason)
		}
	}
}
