package main

import (
	"log"
	"os"

	"github.com/facexem/backend/core"
	"github.com/facexem/backend/core/admin"
	"github.com/facexem/backend/core/user"
	emailsvc "github.com/facexem/backend/services/email"
	"github.com/facexem/backend/storage/database"
	sqlxrepos "github.com/facexem/backend/storage/database/sqlx"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()

	// set up DB
	db, err := database.Open(conf)
	errAndDie(err)
	defer db.Close()
	errAndDie(db.Ping())

	// start CLI
	cli := commandLine{
		db:       db.DB,
		adminSvc: admin.NewService(sqlxrepos.NewAdminRepository(db), conf),
		usrSvc:   user.NewService(sqlxrepos.NewUserRepository(db), emailsvc.NewConsoleService(conf), conf),
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
