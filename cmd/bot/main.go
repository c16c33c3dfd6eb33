// Command bot is a headless player. It joins the room, wanders between
// random stars, harvests at each one and feeds the hub.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"os/signal"
	"strings"
	"time"

	"cosmic/client"
	"cosmic/game"
)

func main() {
	url := flag.String("url", "ws://localhost:3000/ws", "server websocket url")
	name := flag.String("name", "", "pilot name (random when empty)")
	rocket := flag.String("rocket", "red", "rocket type: red, blue, green or yellow")
	duration := flag.Duration("duration", time.Minute, "how long to play, 0 for forever")
	start := flag.Bool("start", true, "start the game when this bot is host")
	flag.Parse()

	if !strings.HasPrefix(*url, "ws://") && !strings.HasPrefix(*url, "wss://") {
		fmt.Fprintf(os.Stderr, "invalid ws url: %s\n", *url)
		os.Exit(2)
	}
	if *name == "" {
		*name = fmt.Sprintf("Bot %03d", rand.IntN(1000))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if *duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *duration)
		defer cancel()
	}

	logger := log.New(os.Stderr, *name+" ", log.LstdFlags)
	tr := client.NewTransport(*url, logger)
	go func() {
		if err := tr.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Printf("transport: %v", err)
		}
	}()

	b := &bot{ctrl: client.New(tr, logger), logger: logger, name: *name, rocket: *rocket, autoStart: *start}
	b.ctrl.SetStars(galaxy())
	b.ctrl.RegisterShard("vega", game.Water)
	b.ctrl.RegisterShard("rigel", game.Mineral)
	b.run(ctx, tr)

	s := b.ctrl.State()
	logger.Printf("done: inventory=%v contributed=%v hub=%v shards=%d/%d",
		s.Self.Inventory, s.Self.Contributions, s.Ledger(), len(s.Shards.Activated()), s.Shards.Len())
}

type bot struct {
	ctrl      *client.Controller
	logger    *log.Logger
	name      string
	rocket    string
	autoStart bool
	joinSent  bool
}

func (b *bot) run(ctx context.Context, tr *client.Transport) {
	frame := time.NewTicker(time.Second / 60)
	defer frame.Stop()
	think := time.NewTicker(500 * time.Millisecond)
	defer think.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-tr.Events():
			b.ctrl.Apply(ev)
		case <-frame.C:
			b.ctrl.Step()
		case <-think.C:
			b.think()
		}
	}
}

// think makes one decision. The controller rejects anything that does not
// fit the current state, so errors here are only logged.
func (b *bot) think() {
	s := b.ctrl.State()
	switch {
	case !s.Connected || s.Self.ID == "":
		return
	case !s.Joined && !b.joinSent:
		if err := b.ctrl.Join(b.name, b.rocket); err != nil {
			b.logger.Fatalf("join: %v", err)
		}
		b.joinSent = true
		return
	case !s.Joined:
		return
	}

	if b.autoStart && s.CanStart() {
		if err := b.ctrl.StartGame(); err != nil {
			b.logger.Printf("start: %v", err)
		}
		return
	}
	if s.Self.Moving {
		return
	}

	if s.Self.DockedAt != "" {
		res := game.Resources[rand.IntN(len(game.Resources))]
		if n, err := b.ctrl.Harvest(s.Self.DockedAt, res, 10+rand.IntN(20)); err == nil {
			b.logger.Printf("harvested %d %s at %s", n, res, s.Self.DockedAt)
		}
		if err := b.ctrl.ActivateShard(s.Self.DockedAt, s.Self.DockedAt); err == nil {
			b.logger.Printf("shard at %s activated", s.Self.DockedAt)
		}
		for _, res := range game.Resources {
			if s.LedgerComplete() {
				break
			}
			if have := s.Self.Inventory[res]; have >= 20 {
				if err := b.ctrl.Contribute(res, have/2); err != nil {
					b.logger.Printf("contribute: %v", err)
				}
			}
		}
	}

	stars := s.Stars
	if len(stars) == 0 {
		return
	}
	dest := stars[rand.IntN(len(stars))]
	if err := b.ctrl.MoveTo(dest.Pos); err != nil {
		b.logger.Printf("move: %v", err)
	}
	if rand.IntN(10) == 0 {
		_ = b.ctrl.PlacePing(dest.Pos, "heading to "+dest.ID)
	}
}

func galaxy() []game.Star {
	return []game.Star{
		{ID: "sol", Pos: game.Vec2{X: 120, Y: 80}, Radius: 30},
		{ID: "vega", Pos: game.Vec2{X: 400, Y: -250}, Radius: 25},
		{ID: "rigel", Pos: game.Vec2{X: -350, Y: 300}, Radius: 35},
		{ID: "altair", Pos: game.Vec2{X: 600, Y: 420}, Radius: 20},
		{ID: "deneb", Pos: game.Vec2{X: -520, Y: -380}, Radius: 28},
	}
}
