// Package storage 按配置选择账本与用户存储后端
package storage

import (
	"fmt"

	"budget/config"
	"budget/csvstore"
	"budget/database"
	"budget/identity"
	"budget/ledger"

	"go.uber.org/zap"
)

// Backend 已打开的存储后端
type Backend struct {
	Ledger ledger.Store
	// Users csv 后端为 nil（仅单用户）
	Users identity.UserStore
	close func() error
}

// Close 释放底层连接
func (b *Backend) Close() error {
	if b.close == nil {
		return nil
	}
	return b.close()
}

// Open 根据 storage.backend 打开存储
func Open(cfg *config.Config, log *zap.Logger) (*Backend, error) {
	switch cfg.Storage.Backend {
	case "database":
		db, err := database.Open(cfg)
		if err != nil {
			return nil, err
		}
		log.Info("database opened", zap.String("driver", cfg.Database.Driver))
		return &Backend{
			Ledger: database.NewLedgerStore(db),
			Users:  database.NewUserStore(db),
			close:  func() error { return database.Close(db) },
		}, nil
	case "csv":
		csvCfg := cfg.Storage.CSV
		store, err := csvstore.Open(csvCfg.ExpenseFile, csvCfg.IncomeFile, csvstore.Format(csvCfg.Format), cfg.App.SingleUserID)
		if err != nil {
			return nil, err
		}
		log.Info("csv store opened",
			zap.String("expenses", csvCfg.ExpenseFile),
			zap.String("incomes", csvCfg.IncomeFile),
			zap.String("format", csvCfg.Format))
		return &Backend{Ledger: store}, nil
	case "memory":
		log.Warn("using in-memory storage, data is lost on exit")
		return &Backend{
			Ledger: ledger.NewMemoryStore(),
			Users:  identity.NewMemoryUserStore(),
		}, nil
	default:
		return nil, fmt.Errorf("未知的存储后端: %s", cfg.Storage.Backend)
	}
}
