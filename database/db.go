package database

import (
	"database/sql"
	"errors"
	"sync"

	"github.com/DavidHuie/gomigrate"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/promptvault/prompt-media-repo/common/config"
	"github.com/promptvault/prompt-media-repo/common/logging"
)

type Database struct {
	conn *sql.DB

	Media       *MediaRecordsTable
	PromptSets  *PromptSetsTable
	ShareOffers *ShareOffersTable
	Accounts    *AccountsTable
}

var instance *Database
var singleton = &sync.Once{}

func GetInstance() *Database {
	if instance == nil {
		singleton.Do(func() {
			if err := openDatabase(
				config.Get().Database.Postgres,
				config.Get().Database.Pool.MaxConnections,
				config.Get().Database.Pool.MaxIdle,
			); err != nil {
				logrus.Fatal("Failed to set up database: ", err)
			}
		})
	}
	return instance
}

func openDatabase(connectionString string, maxConns int, maxIdleConns int) error {
	d := &Database{}
	var err error

	if d.conn, err = sql.Open("postgres", connectionString); err != nil {
		return errors.New("error connecting to db: " + err.Error())
	}
	d.conn.SetMaxOpenConns(maxConns)
	d.conn.SetMaxIdleConns(maxIdleConns)

	// Run migrations
	var migrator *gomigrate.Migrator
	if migrator, err = gomigrate.NewMigratorWithLogger(d.conn, gomigrate.Postgres{}, config.Runtime.MigrationsPath, &logging.SendToDebugLogger{}); err != nil {
		return errors.New("error setting up migrator: " + err.Error())
	}
	if err = migrator.Migrate(); err != nil {
		return errors.New("error running migrations: " + err.Error())
	}

	// Prepare the table accessors
	if d.Media, err = prepareMediaRecordsTable(d.conn); err != nil {
		return errors.New("failed to create media records table accessor: " + err.Error())
	}
	if d.PromptSets, err = preparePromptSetsTable(d.conn); err != nil {
		return errors.New("failed to create prompt sets table accessor: " + err.Error())
	}
	if d.ShareOffers, err = prepareShareOffersTable(d.conn); err != nil {
		return errors.New("failed to create share offers table accessor: " + err.Error())
	}
	if d.Accounts, err = prepareAccountsTable(d.conn); err != nil {
		return errors.New("failed to create accounts table accessor: " + err.Error())
	}

	instance = d
	return nil
}
