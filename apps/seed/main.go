// Command seed replaces the database content with the demo dataset and prints the login credentials.
package main

import (
	"context"
	"log"
	"os"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/schoolsaas/apps/shared"
	"github.com/trezcool/schoolsaas/core"
	"github.com/trezcool/schoolsaas/core/seed"
	"github.com/trezcool/schoolsaas/storage/database"
	"github.com/trezcool/schoolsaas/storage/database/gormdb"
)

func main() {
	logger := log.New(os.Stdout, "SEED : ", log.LstdFlags|log.Lmicroseconds)
	if err := run(logger); err != nil {
		logger.Printf("error seeding database: %v", err)
		os.Exit(1)
	}
}

func run(logger *log.Logger) error {
	conf := core.NewConfig()

	if err := database.CreateIfNotExist(conf); err != nil {
		return err
	}
	db, err := database.Open(conf)
	if err != nil {
		return err
	}
	defer db.Close()

	if err = database.Migrate(db, conf.Database.Engine); err != nil {
		return err
	}
	gdb, err := database.OpenGorm(db, conf.Database.Engine, conf)
	if err != nil {
		return err
	}

	validate, _ := shared.NewValidator()
	seeder := seed.NewSeeder(
		seed.Demo(),
		gormdb.SeedTargets(gdb),
		validate,
		gormdb.NewPurger(gdb),
		gormdb.NewCounter(sqlx.NewDb(db, conf.Database.Engine)),
		logger,
	)

	logger.Println("starting database seed...")
	report, err := seeder.Run(context.Background())
	if err != nil {
		return err
	}
	report.Print(os.Stdout)
	return nil
}
