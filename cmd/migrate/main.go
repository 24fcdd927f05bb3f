package main

import (
	"database/sql"
	"time"

	"github.com/sirupsen/logrus"

	"variate-server/internal/config"
	"variate-server/pkg/db"
)

func main() {
	waitForDB()
	db.Migrate()
	logrus.WithField("migrationsPath", config.Instance().MigrationsPath).Info("checkpoints schema is up to date")
}

// waitForDB retries until postgres accepts connections, the server container usually starts first
func waitForDB() {
	timeout := time.NewTimer(time.Second * 10)
	for {
		select {
		case <-timeout.C:
			logrus.Fatal("could not connect to database")
		default:
			dbh := func() *sql.DB {
				defer func() { _ = recover() }()
				return db.Instance()
			}()

			if dbh != nil {
				return
			}

			logrus.Debug("waiting for database")
			time.Sleep(time.Millisecond * 500)
		}
	}
}
