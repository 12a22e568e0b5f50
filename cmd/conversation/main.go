package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/ai-chat-agent/conversation/client"
	"github.com/ai-chat-agent/conversation/config"
	"github.com/ai-chat-agent/conversation/conversation"
	"github.com/ai-chat-agent/conversation/tui"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	_ = godotenv.Load()
	cfg, err := config.LoadClient()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	baseURL := flag.String("url", cfg.BaseURL, "Conversation API base URL")
	logFile := flag.String("log-file", cfg.LogFile, "File that receives diagnostic logs")
	list := flag.Bool("list", false, "Print the conversation and exit")
	add := flag.String("add", "", "Add a message, print the conversation and exit")
	flag.Parse()

	f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: could not open log file: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()
	logger := slog.New(slog.NewTextHandler(f, nil))

	conv := conversation.New(client.New(*baseURL, nil), logger)

	// plain text modes for scripting
	if *add != "" || *list {
		if err := printConversation(ctx, conv, *add); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	p := tea.NewProgram(tui.NewModel(ctx, conv), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printConversation(ctx context.Context, conv *conversation.List, add string) error {
	var err error
	if add != "" {
		err = conv.Append(ctx, add)
	} else {
		err = conv.Load(ctx)
	}
	if err != nil {
		return err
	}
	for _, msg := range conv.Messages() {
		fmt.Println(msg.Name)
	}
	return nil
}
