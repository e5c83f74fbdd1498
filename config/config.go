package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	str2duration "github.com/xhit/go-str2duration/v2"

	"gitlab.com/ghwlabs/gotradebot/helpers"
)

// SpreadTier is one configured paired-wager size/width bucket.
type SpreadTier struct {
	Name   string
	Usd    float64
	Spread float64
}

// TrendWindow is one lookback the trend tracker classifies independently.
// MinDelta is the absolute USD move below which the window reads Plateau.
type TrendWindow struct {
	Name     string
	Lookback time.Duration
	MinDelta float64
}

// Settings is loaded once at startup and treated as immutable afterwards.
type Settings struct {
	Product string

	DataDir       string
	OrderBookFile string
	HistoryFile   string
	TrendFile     string
	MarketLogFile string

	MarketInterval    time.Duration
	ProcessorInterval time.Duration
	TrendInterval     time.Duration
	StrategyInterval  time.Duration
	NotifyInterval    time.Duration
	MarketLogEvery    time.Duration

	MaxChangePerMinute float64

	TrendWindows []TrendWindow

	MinBidAskSpread float64
	MakerBufferUsd  float64
	StaleAfter      time.Duration
	StaleDriftUsd   float64

	Allocations map[string]float64
	SpreadTiers []SpreadTier

	MoodConfirmTicks     int
	MoodDwell            time.Duration
	BadPositionLeewayUsd float64
	BadPositionDecay     time.Duration
	ReleaseBandUsd       float64
	SellRequeueGrace     time.Duration

	HodlFrequency time.Duration
	HodlBtc       float64

	AllInWagerUsd        float64
	AllInMarkupPct       float64
	AllInArmPct          float64
	AllInBetGap          time.Duration
	AllInGrace           time.Duration
	AllInRequeueEvery    time.Duration
	AllInRetraceFraction float64
	AllInUnderwaterUsd   float64

	NotificationCap int
	TelegramOutput  bool
	TelegramToken   string
	TelegramChatId  string

	MetricsAddr string

	DatabaseEnabled bool
	DbHost          string
	DbPort          string
	DbName          string
	DbUser          string
	DbPass          string

	BrokerBaseUrl string
	BrokerApiKey  string
}

// Load reads conf.env (when present) and materializes the settings.
func Load() *Settings {
	cwd, _ := os.Getwd()
	_ = godotenv.Load(cwd + "/conf.env")

	dataDir := envString("dataDir", "data")
	s := &Settings{
		Product: envString("product", "BTC-USD"),

		DataDir:       dataDir,
		OrderBookFile: dataDir + "/orderbook.json",
		HistoryFile:   dataDir + "/history.json",
		TrendFile:     dataDir + "/trend.json",
		MarketLogFile: dataDir + "/market.csv",

		MarketInterval:    envDuration("marketInterval", 200*time.Millisecond),
		ProcessorInterval: envDuration("processorInterval", 200*time.Millisecond),
		TrendInterval:     envDuration("trendInterval", time.Second),
		StrategyInterval:  envDuration("strategyInterval", time.Second),
		NotifyInterval:    envDuration("notifyInterval", time.Second),
		MarketLogEvery:    envDuration("marketLogEvery", time.Minute),

		MaxChangePerMinute: envFloat("maxChangePerMinute", 0.001),

		MinBidAskSpread: envFloat("minBidAskSpread", 1.0),
		MakerBufferUsd:  envFloat("makerBufferUsd", 20.0),
		StaleAfter:      envDuration("staleAfter", 2*time.Minute),
		StaleDriftUsd:   envFloat("staleDriftUsd", 100.0),

		MoodConfirmTicks:     envInt("moodConfirmTicks", 3),
		MoodDwell:            envDuration("moodDwell", 90*time.Second),
		BadPositionLeewayUsd: envFloat("badPositionLeewayUsd", 200.0),
		BadPositionDecay:     envDuration("badPositionDecay", time.Minute),
		ReleaseBandUsd:       envFloat("releaseBandUsd", 50.0),
		SellRequeueGrace:     envDuration("sellRequeueGrace", 2*time.Minute),

		HodlFrequency: envDuration("hodlFrequency", 4*time.Hour),
		HodlBtc:       envFloat("hodlBtc", 0.00002),

		AllInWagerUsd:        envFloat("allInWagerUsd", 100.0),
		AllInMarkupPct:       envFloat("allInMarkupPct", 0.0014),
		AllInArmPct:          envFloat("allInArmPct", 0.001),
		AllInBetGap:          envDuration("allInBetGap", 2*time.Minute),
		AllInGrace:           envDuration("allInGrace", 20*time.Minute),
		AllInRequeueEvery:    envDuration("allInRequeueEvery", 15*time.Second),
		AllInRetraceFraction: envFloat("allInRetraceFraction", 0.85),
		AllInUnderwaterUsd:   envFloat("allInUnderwaterUsd", 50.0),

		NotificationCap: envInt("notificationCap", 100),
		TelegramOutput:  envBool("telegramOutput", false),
		TelegramToken:   os.Getenv("telegramToken"),
		TelegramChatId:  os.Getenv("telegramChatId"),

		MetricsAddr: envString("metricsAddr", ""),

		DatabaseEnabled: envBool("enableDatabaseRecording", false),
		DbHost:          envString("dbHost", "127.0.0.1"),
		DbPort:          envString("dbPort", "3306"),
		DbName:          envString("dbName", "gotradebot"),
		DbUser:          os.Getenv("dbUser"),
		DbPass:          os.Getenv("dbPass"),

		BrokerBaseUrl: envString("brokerBaseUrl", "https://api.coinbase.com/api/v3/brokerage"),
		BrokerApiKey:  os.Getenv("brokerApiKey"),
	}

	s.TrendWindows = parseTrendWindows(envString("trendWindows",
		"acute:1m:20,short:5m:30,mid:10m:50,long:30m:100,extended:3h:800"))
	s.SpreadTiers = parseSpreadTiers(envString("spreadTiers",
		"Low:500:0.003,Mid:500:0.0045,High:200:0.006"))
	s.Allocations = parseAllocations(envString("allocations",
		"HODL:1.0,Spread:0.9,AllIn:0.005"))

	if s.TelegramOutput && (s.TelegramToken == "" || s.TelegramChatId == "") {
		helpers.Logger.Fatalln("telegramOutput set but telegramToken/telegramChatId missing")
	}

	return s
}

// Window returns the named trend window, or false when not configured.
func (s *Settings) Window(name string) (TrendWindow, bool) {
	for _, w := range s.TrendWindows {
		if w.Name == name {
			return w, true
		}
	}
	return TrendWindow{}, false
}

// LargestWindow is the retention horizon of the trend sample history.
func (s *Settings) LargestWindow() time.Duration {
	var max time.Duration
	for _, w := range s.TrendWindows {
		if w.Lookback > max {
			max = w.Lookback
		}
	}
	return max
}

func parseSpreadTiers(raw string) []SpreadTier {
	var tiers []SpreadTier
	for _, part := range strings.Split(raw, ",") {
		fields := strings.Split(strings.TrimSpace(part), ":")
		if len(fields) != 3 {
			helpers.Logger.Fatalln(fmt.Sprintf("bad spread tier %q", part))
		}
		usd, err1 := strconv.ParseFloat(fields[1], 64)
		spread, err2 := strconv.ParseFloat(fields[2], 64)
		if err1 != nil || err2 != nil {
			helpers.Logger.Fatalln(fmt.Sprintf("bad spread tier %q", part))
		}
		tiers = append(tiers, SpreadTier{Name: fields[0], Usd: usd, Spread: spread})
	}
	return tiers
}

func parseTrendWindows(raw string) []TrendWindow {
	var windows []TrendWindow
	for _, part := range strings.Split(raw, ",") {
		fields := strings.Split(strings.TrimSpace(part), ":")
		if len(fields) != 3 {
			helpers.Logger.Fatalln(fmt.Sprintf("bad trend window %q", part))
		}
		lookback, err1 := str2duration.ParseDuration(fields[1])
		minDelta, err2 := strconv.ParseFloat(fields[2], 64)
		if err1 != nil || err2 != nil {
			helpers.Logger.Fatalln(fmt.Sprintf("bad trend window %q", part))
		}
		windows = append(windows, TrendWindow{Name: fields[0], Lookback: lookback, MinDelta: minDelta})
	}
	return windows
}

func parseAllocations(raw string) map[string]float64 {
	allocations := map[string]float64{}
	for _, part := range strings.Split(raw, ",") {
		fields := strings.Split(strings.TrimSpace(part), ":")
		if len(fields) != 2 {
			helpers.Logger.Fatalln(fmt.Sprintf("bad allocation %q", part))
		}
		fraction, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			helpers.Logger.Fatalln(fmt.Sprintf("bad allocation %q", part))
		}
		allocations[fields[0]] = fraction
	}
	return allocations
}

func envString(key string, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err == nil {
			return f
		}
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := str2duration.ParseDuration(v)
		if err == nil {
			return d
		}
	}
	return fallback
}
