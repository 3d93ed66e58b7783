package main

import (
	"context"
	"fmt"
	"log"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/emotionpoll/internal/api"
	"github.com/jask/emotionpoll/internal/config"
	"github.com/jask/emotionpoll/internal/logging"
	"github.com/jask/emotionpoll/internal/poll"
	"github.com/jask/emotionpoll/internal/prefs"
	"github.com/jask/emotionpoll/internal/tui"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, closer, err := logging.New(cfg.Log.Path, cfg.Log.Level)
	if err != nil {
		log.Fatalf("logging: %v", err)
	}
	defer closer.Close()

	client, err := api.New(cfg.Server.BaseURL,
		api.WithTimeout(cfg.Server.Timeout),
		api.WithLogger(logger),
	)
	if err != nil {
		log.Fatalf("client: %v", err)
	}

	opts := []poll.Option{
		poll.WithLogger(logger),
		poll.WithSessionStore(prefs.Keeper{Server: client.BaseURL(), Jar: client}),
	}
	// pick up where the last run left off
	if s, ok := prefs.Restore(client.BaseURL()); ok {
		client.SetCookies(s.Cookies)
		opts = append(opts, poll.WithLoginEmail(s.Email))
	}

	app, err := tui.New(ctx, cfg, client, opts...)
	if err != nil {
		log.Fatalf("ui: %v", err)
	}

	logger.Info("starting", "server", client.BaseURL())
	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("error: %v\n", err)
	}
}
