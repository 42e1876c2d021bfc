package main

import (
	"log"
	"os"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/schoolsaas/apps/shared"
	"github.com/trezcool/schoolsaas/core"
	"github.com/trezcool/schoolsaas/core/seed"
	"github.com/trezcool/schoolsaas/storage/database"
	"github.com/trezcool/schoolsaas/storage/database/gormdb"
)

var logger *log.Logger

func main() {
	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	conf := core.NewConfig()

	// set up DB
	errAndDie(database.CreateIfNotExist(conf))
	db, err := database.Open(conf)
	errAndDie(err)
	defer db.Close()
	errAndDie(db.Ping())
	gdb, err := database.OpenGorm(db, conf.Database.Engine, conf)
	errAndDie(err)

	validate, _ := shared.NewValidator()

	// start CLI
	cli := commandLine{
		conf:     conf,
		db:       db,
		usrRepo:  gormdb.NewUserRepository(gdb),
		validate: validate,
		seeder: seed.NewSeeder(
			seed.Demo(),
			gormdb.SeedTargets(gdb),
			validate,
			gormdb.NewPurger(gdb),
			gormdb.NewCounter(sqlx.NewDb(db, conf.Database.Engine)),
			logger,
		),
		out: os.Stdout,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		_ = db.Close()
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
