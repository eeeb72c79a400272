// budgetcli 单用户命令行记账工具，与服务端共用配置和存储
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"budget/config"
	"budget/ledger"
	"budget/logger"
	"budget/storage"
)

func main() {
	var configFile string
	flag.StringVar(&configFile, "c", "", "外部配置文件路径（可选）")
	flag.Usage = func() { fmt.Fprintln(os.Stderr, usage) }
	flag.Parse()

	if err := run(configFile, flag.Args()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configFile string, args []string) error {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Log.Env)
	if err != nil {
		return err
	}
	defer log.Sync()

	backend, err := storage.Open(cfg, log)
	if err != nil {
		return err
	}
	defer backend.Close()

	c := &cli{
		svc: ledger.NewService(backend.Ledger, ledger.Options{
			Categories:       cfg.Ledger.Categories,
			StrictCategories: cfg.Ledger.StrictCategories,
		}, ledger.WithLogger(log.Named("ledger"))),
		owner: cfg.App.SingleUserID,
		out:   os.Stdout,
	}

	ctx := context.Background()
	if len(args) == 0 {
		return c.interactive(ctx, os.Stdin)
	}
	return c.run(ctx, args)
}
