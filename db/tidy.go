package db

import (
	"database/sql"
	"time"

	sb "github.com/huandu/go-sqlbuilder"
	log "github.com/sirupsen/logrus"
)

// retention is how long scored posts are kept before tidying removes them.
const retention = 90 * 24 * time.Hour

// Tidy removes posts older than the retention window from the database
func Tidy(database string) error {
	db, err := connection(database)
	if err != nil {
		return err
	}
	defer db.Close()

	return tidy(db)
}

func tidy(db *sql.DB) error {
	cutoff := time.Now().Add(-retention).Unix()
	deletePosts := sb.NewDeleteBuilder()
	query, args := deletePosts.DeleteFrom("posts").Where(deletePosts.LessEqualThan("created_at", cutoff)).Build()

	result, err := db.Exec(query, args...)
	if err != nil {
		return err
	}

	deleted, _ := result.RowsAffected()
	log.WithFields(log.Fields{
		"deleted": deleted,
	}).Info("Tidied database")

	return nil
}
