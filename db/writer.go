package db

import (
	"time"

	"brandpulse/models"

	"database/sql"

	sqlbuilder "github.com/huandu/go-sqlbuilder"
	log "github.com/sirupsen/logrus"
)

type Writer struct {
	db       *sql.DB
	postChan chan interface{}
	tidyChan *time.Ticker
}

func NewWriter(database string, postChan chan interface{}) *Writer {
	db, err := connection(database)
	if err != nil {
		panic("failed to connect database")
	}
	return &Writer{
		db:       db,
		postChan: postChan,
		// Create new tidy channel that is pinged every 5 minutes
		tidyChan: time.NewTicker(5 * time.Minute),
	}
}

// Subscribe consumes scored post events from the collector until the
// channel is closed, tidying old rows in between.
func (writer *Writer) Subscribe() {
	if err := tidy(writer.db); err != nil {
		log.Error("Error tidying database", err)
	}

	for {
		select {
		case <-writer.tidyChan.C:
			log.Info("Tidying database")
			if err := tidy(writer.db); err != nil {
				log.Error("Error tidying database", err)
			}

		case post, ok := <-writer.postChan:
			if !ok {
				return
			}
			switch event := post.(type) {
			case models.ScoredPostEvent:
				if err := insertPost(writer.db, event.Brand, event.Post); err != nil {
					log.Error("Error inserting post", err)
				}
			default:
				log.Info("Unknown post event type")
			}
		}
	}
}

// SavePosts inserts a batch of scored posts for a brand in one statement.
// Used by the one-shot analyze path; the collector goes through Subscribe.
func (writer *Writer) SavePosts(brand string, posts []models.ScoredPost) error {
	if len(posts) == 0 {
		return nil
	}

	insert := sqlbuilder.NewInsertBuilder()
	insert.InsertInto("posts").Cols("brand", "author", "text", "created_at", "likes", "reposts", "score", "label")
	for _, post := range posts {
		insert.Values(brand, post.Author, post.Text, post.CreatedAt.Unix(), post.Likes, post.Reposts, post.Score, string(post.Label))
	}
	sql, args := insert.Build()

	_, err := writer.db.Exec(sql, args...)
	return err
}

func (writer *Writer) Close() error {
	writer.tidyChan.Stop()
	return writer.db.Close()
}

func insertPost(db *sql.DB, brand string, post models.ScoredPost) error {
	log.WithFields(log.Fields{
		"brand":  brand,
		"author": post.Author,
		"label":  post.Label,
	}).Debug("Inserting post")

	insert := sqlbuilder.NewInsertBuilder()
	sql, args := insert.InsertInto("posts").
		Cols("brand", "author", "text", "created_at", "likes", "reposts", "score", "label").
		Values(brand, post.Author, post.Text, post.CreatedAt.Unix(), post.Likes, post.Reposts, post.Score, string(post.Label)).
		Build()

	_, err := db.Exec(sql, args...)
	return err
}
