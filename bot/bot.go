package bot

import (
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"gitlab.com/ghwlabs/gotradebot/core"
	"gitlab.com/ghwlabs/gotradebot/database"
	"gitlab.com/ghwlabs/gotradebot/helpers"
	"gitlab.com/ghwlabs/gotradebot/interfaces"
	"gitlab.com/ghwlabs/gotradebot/metrics"
	"gitlab.com/ghwlabs/gotradebot/services"
	"gitlab.com/ghwlabs/gotradebot/strategies"
)

// Bot owns the shared context and runs every component as an
// independent polling loop.
type Bot struct {
	ctx     *core.Context
	runners []interfaces.Runner
	wg      sync.WaitGroup
}

func NewBot(ctx *core.Context) *Bot {
	walletService := services.NewWalletService(ctx)
	allocationService := services.NewAllocationService(ctx, walletService)

	var recorder services.TradeRecorder
	if ctx.Settings.DatabaseEnabled {
		dbService, err := database.NewDBService(ctx.Settings.DbHost, ctx.Settings.DbPort,
			ctx.Settings.DbName, ctx.Settings.DbUser, ctx.Settings.DbPass)
		if err != nil {
			helpers.Logger.Errorln(fmt.Sprintf("Database recording disabled: %v", err))
		} else {
			recorder = dbService
		}
	}

	timeSeriesService := services.NewTimeSeriesService(ctx)

	return &Bot{
		ctx: ctx,
		runners: []interfaces.Runner{
			// Deliver alerts
			services.NewNotificationService(ctx),
			// Keep current market conditions updated
			services.NewMarketService(ctx),
			// Drive wager legs against the broker
			services.NewOrderProcessorService(ctx, allocationService, recorder),
			// Continuously classify whether we're going up or down
			services.NewTrendService(ctx),
			// Candle aggregation for momentum confirmation
			timeSeriesService,
			// Pick buy and sell points around the current market
			strategies.NewSpreadTrader(ctx, timeSeriesService),
			// Periodically buy and hold
			strategies.NewDiamondHands(ctx),
			// One big bet at a time
			strategies.NewAllInTrader(ctx),
		},
	}
}

// Start initializes filesystem state and launches every loop. Runner
// init failures are fatal; nothing has been traded yet.
func (b *Bot) Start() error {
	if err := b.ctx.OrderBook.ReadFs(); err != nil {
		return err
	}
	if err := b.ctx.History.ReadFs(); err != nil {
		return err
	}

	b.ctx.SetRunning(true)
	metrics.Serve(b.ctx.Settings.MetricsAddr)

	for _, runner := range b.runners {
		if err := runner.Init(); err != nil {
			b.ctx.SetRunning(false)
			return fmt.Errorf("init %s: %w", runner.Name(), err)
		}
	}

	for _, runner := range b.runners {
		b.wg.Add(1)
		go b.loop(runner)
	}
	return nil
}

// loop ticks a runner until shutdown. There is no mid-tick
// cancellation; an in-flight broker call runs to completion.
func (b *Bot) loop(runner interfaces.Runner) {
	defer b.wg.Done()
	for b.ctx.Running() {
		runner.Tick()
		b.sleep(runner.Interval())
	}
}

// sleep waits out a tick interval without delaying shutdown for the
// slow loops.
func (b *Bot) sleep(interval time.Duration) {
	const slice = 250 * time.Millisecond
	for interval > 0 && b.ctx.Running() {
		d := interval
		if d > slice {
			d = slice
		}
		time.Sleep(d)
		interval -= d
	}
}

func (b *Bot) Stop() {
	b.ctx.SetRunning(false)
}

func (b *Bot) Join() {
	b.wg.Wait()
}

// Run starts the bot and blocks until SIGINT/SIGTERM.
func (b *Bot) Run() error {
	if err := b.Start(); err != nil {
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	helpers.Logger.Infoln("Shutting down")
	b.Stop()
	b.Join()
	helpers.Logger.Infoln("Exiting")
	return nil
}
