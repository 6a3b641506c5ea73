package tui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// what line mode needs from a transport; ChatClient and WSClient both fit
type Sender interface {
	Send(ctx context.Context, text string) (*Reply, error)
	Reset(ctx context.Context) (*Reply, error)
}

// runs the conversation over plain lines, for pipes and dumb terminals.
// "/exit" or EOF ends it.
func RunLine(ctx context.Context, in io.Reader, out io.Writer, sender Sender) error {
	reply, err := withTimeout(ctx, func(ctx context.Context) (*Reply, error) {
		return sender.Reset(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to start conversation: %w", err)
	}

	printReply(out, reply)

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 64*1024)

	for {
		fmt.Fprint(out, "> ") //nolint:errcheck

		if !scanner.Scan() {
			break
		}

		text := strings.TrimSpace(scanner.Text())

		switch text {
		case "":
			continue
		case "/exit", "/quit":
			return nil
		}

		reply, err := withTimeout(ctx, func(ctx context.Context) (*Reply, error) {
			return sender.Send(ctx, text)
		})
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}

			fmt.Fprintf(out, "Ошибка: %v\n", err) //nolint:errcheck
			continue
		}

		printReply(out, reply)
	}

	fmt.Fprintln(out) //nolint:errcheck

	return scanner.Err()
}

func withTimeout(ctx context.Context, fn func(context.Context) (*Reply, error)) (*Reply, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	return fn(ctx)
}

func printReply(out io.Writer, reply *Reply) {
	for _, text := range reply.Messages {
		fmt.Fprintln(out, text) //nolint:errcheck
		fmt.Fprintln(out)       //nolint:errcheck
	}

	for _, option := range reply.Options {
		fmt.Fprintf(out, "  * %s\n", option) //nolint:errcheck
	}
}
