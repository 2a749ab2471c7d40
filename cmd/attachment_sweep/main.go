package main

import (
	"context"
	"log"
	"time"

	"masterboxer.com/project-newsfeed/config"
	"masterboxer.com/project-newsfeed/database"
	"masterboxer.com/project-newsfeed/services"
	"masterboxer.com/project-newsfeed/storage"
	"masterboxer.com/project-newsfeed/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("AttachmentSweep: config error: ", err)
	}

	db, err := database.ConnectDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("AttachmentSweep: DB connection failed: ", err)
	}
	defer db.Close()

	attachments, err := storage.NewAttachmentStore(cfg.UploadDir)
	if err != nil {
		log.Fatal("AttachmentSweep: attachment store init failed: ", err)
	}

	log.Printf("Running attachment sweep in %s (grace %s)", attachments.Root(), cfg.SweepGrace)
	removed, err := services.SweepOrphanAttachments(context.Background(), store.NewPostStore(db), attachments, cfg.SweepGrace, time.Now())
	if err != nil {
		log.Fatal("AttachmentSweep: ", err)
	}
	log.Printf("Attachment sweep finished, %d orphan(s) removed", removed)
}
