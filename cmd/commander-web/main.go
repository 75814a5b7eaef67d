package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/zuckel/ImperialCommander2/internal/config"
	"github.com/zuckel/ImperialCommander2/internal/deploy"
	"github.com/zuckel/ImperialCommander2/internal/logger"
	"github.com/zuckel/ImperialCommander2/internal/session"
	"github.com/zuckel/ImperialCommander2/internal/store"
	"github.com/zuckel/ImperialCommander2/internal/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fatal(err)
	}
	addr := flag.String("addr", cfg.Addr, "HTTP listen address")
	catalog := flag.String("catalog", cfg.CatalogPath, "path to card catalog YAML file")
	resume := flag.String("resume", "", "session id to restore on startup")
	flag.Parse()
	cfg.CatalogPath = *catalog

	logger.Init(cfg.LogLevel, cfg.Dev)
	log := logger.Get()

	cat, err := deploy.LoadCatalog(cfg.CatalogPath)
	if err != nil {
		fatal(err)
	}
	setup, err := cfg.Setup()
	if err != nil {
		fatal(err)
	}
	st, err := store.Open(cfg)
	if err != nil {
		fatal(err)
	}
	defer st.Close()

	sess, err := session.New(session.Options{
		Catalog: cat,
		Setup:   setup,
		Seed:    cfg.Seed,
		Economy: deploy.Economy{Threat: cfg.Threat},
		Store:   st,
		Logger:  log,
	})
	if err != nil {
		fatal(err)
	}
	if *resume != "" {
		if err := sess.Load(context.Background(), *resume); err != nil {
			fatal(err)
		}
	}

	srv := web.NewServer(sess, log)
	if err := srv.ListenAndServe(*addr); err != nil {
		fatal(err)
	}
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
