package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/zuckel/ImperialCommander2/internal/config"
	"github.com/zuckel/ImperialCommander2/internal/deploy"
	"github.com/zuckel/ImperialCommander2/internal/logger"
	commandermcp "github.com/zuckel/ImperialCommander2/internal/mcp"
	"github.com/zuckel/ImperialCommander2/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fatal(err)
	}
	catalog := flag.String("catalog", cfg.CatalogPath, "path to card catalog YAML file")
	storeKind := flag.String("store", cfg.Store, "session store: file, sqlite or redis")
	flag.Parse()
	cfg.CatalogPath = *catalog
	cfg.Store = *storeKind

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

	srv := commandermcp.NewServer(commandermcp.Config{
		Catalog: cat,
		Setup:   setup,
		Threat:  cfg.Threat,
		Seed:    cfg.Seed,
		Store:   st,
		Logger:  log,
	})
	s := server.NewMCPServer("imperial-commander", "1.0.0")
	srv.Register(s)

	log.Info().Str("catalog", cfg.CatalogPath).Str("store", cfg.Store).Msg("serving MCP on stdio")
	if err := server.ServeStdio(s); err != nil {
		fatal(err)
	}
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
