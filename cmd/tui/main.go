package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/term"

	"github.com/AndreySuncov/bot-exam/internal/config"
	"github.com/AndreySuncov/bot-exam/internal/tui"
)

func main() {
	config.LoadDotEnv()

	flags, err := config.ParseClientFlags(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}

	if flags.Line || !term.IsTerminal(os.Stdin.Fd()) {
		if err := runLine(flags); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}

		return
	}

	app := tui.NewApp(flags.Endpoint)
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		fmt.Printf("error running chat: %v\n", err)
		os.Exit(1)
	}
}

func runLine(flags config.ClientFlags) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !flags.WebSocket {
		return tui.RunLine(ctx, os.Stdin, os.Stdout, tui.NewChatClient(flags.Endpoint))
	}

	client, err := tui.NewWSClient(flags.Endpoint)
	if err != nil {
		return err
	}

	if err := client.Connect(ctx, ""); err != nil {
		return err
	}
	defer client.Close()

	return tui.RunLine(ctx, os.Stdin, os.Stdout, client)
}
