package main

import (
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"gitlab.com/ghwlabs/gotradebot/bot"
	"gitlab.com/ghwlabs/gotradebot/config"
	"gitlab.com/ghwlabs/gotradebot/core"
	"gitlab.com/ghwlabs/gotradebot/helpers"
	"gitlab.com/ghwlabs/gotradebot/models"
	"gitlab.com/ghwlabs/gotradebot/providers/coinbase"
)

func main() {
	app := &cli.App{
		Name:  "gotradebot",
		Usage: "automated BTC/USD spot-trading engine",
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "run the trading engine",
				Action: runBot,
			},
			{
				Name:  "prune-history",
				Usage: "drop settled wagers older than a cutoff from the history file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "before",
						Usage:    "cutoff date (2006-01-02)",
						Required: true,
					},
				},
				Action: pruneHistory,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		helpers.Logger.Fatalln(err.Error())
	}
}

func runBot(c *cli.Context) error {
	settings := config.Load()
	broker := coinbase.NewCoinbaseService(settings.BrokerBaseUrl, settings.BrokerApiKey)
	ctx := core.NewContext(settings, broker)

	helpers.Logger.Infoln("Starting gotradebot")
	return bot.NewBot(ctx).Run()
}

func pruneHistory(c *cli.Context) error {
	cutoff, err := time.ParseInLocation("2006-01-02", c.String("before"), time.Local)
	if err != nil {
		return fmt.Errorf("bad cutoff date: %w", err)
	}

	settings := config.Load()
	history := models.NewOrderHistory(settings.HistoryFile)
	if err := history.ReadFs(); err != nil {
		return err
	}

	removed := history.PruneBefore(cutoff)
	helpers.Logger.Infoln(fmt.Sprintf("Pruned %d historical pairs.", removed))
	return nil
}
