package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/zuckel/ImperialCommander2/internal/config"
	"github.com/zuckel/ImperialCommander2/internal/deploy"
	"github.com/zuckel/ImperialCommander2/internal/log"
	"github.com/zuckel/ImperialCommander2/internal/logger"
	"github.com/zuckel/ImperialCommander2/internal/store"
	"github.com/zuckel/ImperialCommander2/internal/store/sqlite"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fatal(err)
	}
	logger.Init(cfg.LogLevel, cfg.Dev)

	cmd := os.Args[1]
	switch cmd {
	case "hand":
		runHand(cfg, os.Args[2:])
	case "simulate":
		runSimulate(cfg, os.Args[2:])
	case "sessions":
		runSessions(cfg, os.Args[2:])
	case "show":
		runShow(cfg, os.Args[2:])
	case "delete":
		runDelete(cfg, os.Args[2:])
	default:
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  commander hand [--catalog FILE] [--level N] [--seed S] [--earned 'DG072 DG090']")
	fmt.Println("  commander simulate [--catalog FILE] [--level N] [--rounds R] [--losses L] [--threat T] [--seed S]")
	fmt.Println("  commander sessions [--db FILE]")
	fmt.Println("  commander show ID")
	fmt.Println("  commander delete ID")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  hand      Build one deployment hand and print it")
	fmt.Println("  simulate  Play seeded rounds of deployment and print the event log")
	fmt.Println("  sessions  List sessions saved in the sqlite store")
	fmt.Println("  show      Print the saved threat of a session in the configured store")
	fmt.Println("  delete    Remove a session from the configured store")
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

// engineFlags are shared by hand and simulate.
type engineFlags struct {
	catalog *string
	level   *int
	seed    *int64
	earned  *string
	threat  *int
}

func addEngineFlags(fs *flag.FlagSet, cfg config.Config) engineFlags {
	return engineFlags{
		catalog: fs.String("catalog", cfg.CatalogPath, "path to card catalog YAML file"),
		level:   fs.Int("level", cfg.ThreatLevel, "mission threat level"),
		seed:    fs.Int64("seed", cfg.Seed, "random seed (0 for random)"),
		earned:  fs.String("earned", "", "space-separated earned villain ids"),
		threat:  fs.Int("threat", cfg.Threat, "starting threat"),
	}
}

func (f engineFlags) newEngine(cfg config.Config) (*deploy.Engine, []deploy.GroupID) {
	cat, err := deploy.LoadCatalog(*f.catalog)
	if err != nil {
		fatal(err)
	}
	setup, err := cfg.Setup()
	if err != nil {
		fatal(err)
	}
	earned, err := deploy.ParseGroupIDs(strings.Fields(*f.earned))
	if err != nil {
		fatal(err)
	}
	diag := logger.Get()
	engine, err := deploy.NewEngine(deploy.Config{
		Catalog: cat,
		Setup:   setup,
		Seed:    *f.seed,
		Economy: deploy.Economy{Threat: *f.threat},
		Events:  log.NewTextLogger(os.Stdout),
		Logger:  &diag,
	})
	if err != nil {
		fatal(err)
	}
	return engine, earned
}

func runHand(cfg config.Config, args []string) {
	fs := flag.NewFlagSet("hand", flag.ExitOnError)
	ef := addEngineFlags(fs, cfg)
	fs.Parse(args)

	engine, earned := ef.newEngine(cfg)
	engine.BuildDeploymentHand(earned, *ef.level)

	fmt.Println()
	fmt.Printf("Deployment hand (threat level %d):\n", *ef.level)
	printPool(engine.Hand())
	if deferred := engine.DeferredVillains(); len(deferred) > 0 {
		fmt.Println("Deferred to manual deployment:")
		printPool(deferred)
	}
}

func runSimulate(cfg config.Config, args []string) {
	fs := flag.NewFlagSet("simulate", flag.ExitOnError)
	ef := addEngineFlags(fs, cfg)
	rounds := fs.Int("rounds", 6, "number of rounds to play")
	losses := fs.Int("losses", 1, "figures each deployed group loses per round")
	onslaught := fs.Bool("onslaught", false, "apply the onslaught cost discount")
	fs.Parse(args)

	engine, earned := ef.newEngine(cfg)
	engine.BuildDeploymentHand(earned, *ef.level)
	engine.BuildManualDeploymentList()

	for round := 1; round <= *rounds; round++ {
		fmt.Printf("\n=== Round %d ===\n", round)
		engine.ModifyThreat(*ef.level, fmt.Sprintf("round %d", round))

		for {
			ci, ok := engine.PickFuzzyDeployable(engine.Economy().Threat, *onslaught)
			if !ok {
				break
			}
			if _, err := engine.DeployFromHand(ci.ID(), *onslaught); err != nil {
				fatal(err)
			}
		}
		applyLosses(engine, *losses)
		if ci, ok := engine.PickReinforcement(engine.Economy().Threat, *onslaught); ok {
			if _, err := engine.ResolveReinforce(ci.ID(), *onslaught); err != nil {
				fatal(err)
			}
		}
		engine.ReadyAll()
	}

	eco := engine.Economy()
	fmt.Printf("\nFinal threat %d, fame %d, %d groups deployed, %d in hand\n",
		eco.Threat, eco.Fame, len(engine.DeployedEnemies()), len(engine.Hand()))
}

// applyLosses takes n figures from every deployed group and defeats the
// groups left empty.
func applyLosses(engine *deploy.Engine, n int) {
	if n <= 0 {
		return
	}
	var ids []deploy.GroupID
	for _, ci := range engine.DeployedEnemies() {
		ids = append(ids, ci.ID())
	}
	for _, id := range ids {
		ci, err := engine.FindDeployed(id)
		if err != nil {
			fatal(err)
		}
		if _, err := engine.SetGroupSize(id, ci.CurrentSize-n); err != nil {
			fatal(err)
		}
		if ci.CurrentSize > 0 {
			continue
		}
		if _, err := engine.ResolveDefeat(id); err != nil {
			fatal(err)
		}
	}
}

func runSessions(cfg config.Config, args []string) {
	fs := flag.NewFlagSet("sessions", flag.ExitOnError)
	db := fs.String("db", cfg.SQLitePath, "path to the sqlite session database")
	fs.Parse(args)

	st, err := sqlite.Open(*db)
	if err != nil {
		fatal(err)
	}
	defer st.Close()

	sessions, err := st.List(context.Background())
	if err != nil {
		fatal(err)
	}
	if len(sessions) == 0 {
		fmt.Println("No saved sessions.")
		return
	}
	for _, s := range sessions {
		fmt.Printf("  %s  threat %-3d  %s\n", s.ID, s.Threat, s.UpdatedAt.Format("2006-01-02 15:04"))
	}
}

func printPool(pool []*deploy.CardInstance) {
	if len(pool) == 0 {
		fmt.Println("  (empty)")
		return
	}
	for _, ci := range pool {
		c := ci.Card
		fmt.Printf("  %-6s %-28s tier %d  cost %2d  size %d\n", c.ID, c.Name, c.Tier, c.Cost, c.Size)
	}
}

// openStore opens the backend named by COMMANDER_STORE and returns the
// session id argument.
func openStore(cfg config.Config, name string, args []string) (store.Store, string) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() != 1 {
		fatal(fmt.Errorf("usage: commander %s ID", name))
	}
	id := fs.Arg(0)
	if err := store.ValidateID(id); err != nil {
		fatal(err)
	}
	st, err := store.Open(cfg)
	if err != nil {
		fatal(err)
	}
	return st, id
}

func runShow(cfg config.Config, args []string) {
	st, id := openStore(cfg, "show", args)
	defer st.Close()

	threat, found, err := store.SavedThreat(context.Background(), st, id)
	if err != nil {
		fatal(err)
	}
	if !found {
		fatal(fmt.Errorf("no saved session %s in the %s store", id, cfg.Store))
	}
	fmt.Printf("  %s  threat %d\n", id, threat)
}

func runDelete(cfg config.Config, args []string) {
	st, id := openStore(cfg, "delete", args)
	defer st.Close()

	if err := st.Delete(context.Background(), id); err != nil {
		fatal(err)
	}
	fmt.Printf("Deleted session %s.\n", id)
}
