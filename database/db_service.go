package database

import (
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	database "gitlab.com/ghwlabs/gotradebot/database/models"
	"gitlab.com/ghwlabs/gotradebot/helpers"
	"gitlab.com/ghwlabs/gotradebot/models"
)

// DBService records settled wagers to MySQL for offline analysis. The
// engine runs fine without it; recording failures are logged and
// dropped.
type DBService struct {
	DB *gorm.DB
}

func NewDBService(dbHost string, dbPort string, dbName string, dbUser string, dbPass string) (*DBService, error) {
	dsn := dbUser + ":" + dbPass + "@tcp(" + dbHost + ":" + dbPort + ")/" + dbName + "?charset=utf8mb4&parseTime=True&loc=Local"
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	dbs := &DBService{DB: db}
	if err := dbs.DB.AutoMigrate(&database.Trade{}, &database.TradeOrder{}); err != nil {
		return nil, err
	}
	return dbs, nil
}

// AddTrade persists a settled pair. Takes the pair lock itself; the
// reconciler hands pairs over after retiring them from the book.
func (dbs *DBService) AddTrade(pair *models.OrderPair) {
	pair.Mtx.Lock()
	trade := database.Trade{
		Algorithm:  pair.Algorithm,
		Status:     string(pair.Status),
		EventTime:  pair.EventTime.Unix(),
		EventPrice: pair.EventPrice,
		BuyOnly:    pair.BuyOnly,
		Orders:     []database.TradeOrder{legRecord(pair.Buy)},
	}
	if pair.Sell != nil {
		trade.Orders = append(trade.Orders, legRecord(pair.Sell))
	}
	pair.Mtx.Unlock()

	if err := dbs.DB.Create(&trade).Error; err != nil {
		helpers.Logger.Errorln(fmt.Sprintf("Failed to record %s trade: %v", trade.Algorithm, err))
	}
}

func legRecord(order *models.Order) database.TradeOrder {
	record := database.TradeOrder{
		Side:   string(order.Side),
		Status: string(order.Status),
		Btc:    order.Btc,
		Usd:    order.Usd,
	}
	if order.Info != nil {
		record.OrderID = order.Info.OrderID
		record.ClientOrderID = order.Info.ClientOrderID
		record.FinalMarket = order.Info.FinalMarket
		record.FinalFees = order.Info.FinalFees
		record.FinalUsd = order.Info.FinalUsd
		record.CancelReason = order.Info.CancelReason
	}
	return record
}
