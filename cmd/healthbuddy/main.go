package main

import (
	"flag"
	"fmt"
	"os"

	"HealthBuddy/internal/chatbot"
	"HealthBuddy/internal/config"
)

func main() {
	var cfg config.Config

	flag.StringVar(&cfg.Model, "model", config.DefaultModel, "Chat completion model")
	flag.StringVar(&cfg.SessionID, "session-id", "", "Load existing session by ID")
	flag.BoolVar(&cfg.Debug, "debug", false, "Enable debug logging")
	flag.StringVar(&cfg.DirectoryPath, "directory", "", "YAML seed file for the specialist directory")
	flag.StringVar(&cfg.LogPath, "log", config.DefaultLogPath, "Conversation log file")
	flag.Parse()

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		fmt.Fprintln(os.Stderr, "Error: Please set the OPENAI_API_KEY environment variable.")
		os.Exit(1)
	}

	bot, err := chatbot.NewChatBot(cfg, apiKey)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize chatbot: %v\n", err)
		os.Exit(1)
	}

	if err := bot.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
