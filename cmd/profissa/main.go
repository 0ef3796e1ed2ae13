package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/profissa/profissa/internal/agenda"
	"github.com/profissa/profissa/internal/backend"
	"github.com/profissa/profissa/internal/booking"
	"github.com/profissa/profissa/internal/config"
	"github.com/profissa/profissa/internal/directory"
	"github.com/profissa/profissa/internal/session"
	"github.com/profissa/profissa/internal/tui"
)

func main() {
	_ = godotenv.Load()
	cfg := config.LoadClient()

	logFile, err := tea.LogToFile(cfg.LogFile, "profissa")
	if err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
	defer logFile.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	slot, closeSlot, err := openSlot(ctx, cfg)
	if err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
	defer closeSlot()

	client := backend.New(cfg.APIURL)
	store := session.NewStore(slot, client)
	snap := store.Restore(ctx)
	client.SetToken(snap.Token)
	log.Printf("session restored: %s", snap.State)

	go followToken(ctx, store, client)
	go store.Watch(ctx, cfg.PollInterval)

	m := tui.New(ctx, tui.Deps{
		Session:   store,
		Accounts:  client,
		Directory: directory.NewService(client),
		Agenda:    agenda.NewService(client, nil),
		Booking:   booking.NewSubmitter(client, store),
		Stream:    client,
	})
	defer m.Close()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
}

// openSlot picks Redis when PROFISSA_SESSION_REDIS_URL is set, otherwise
// the session file.
func openSlot(ctx context.Context, cfg config.ClientConfig) (session.Slot, func(), error) {
	if cfg.SessionRedis != "" {
		slot, err := session.NewRedisSlot(ctx, cfg.SessionRedis, session.DefaultKey)
		if err != nil {
			return nil, nil, err
		}
		return slot, func() { _ = slot.Close() }, nil
	}
	return session.NewFileSlot(cfg.SessionFile), func() {}, nil
}

// followToken keeps the client's bearer token in step with the session,
// including sessions picked up from the slot by Watch.
func followToken(ctx context.Context, store *session.Store, client *backend.Client) {
	updates, cancel := store.Subscribe()
	defer cancel()
	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-updates:
			if !ok {
				return
			}
			if snap.State != session.SigningIn {
				client.SetToken(snap.Token)
			}
		}
	}
}
