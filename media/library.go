package media

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"time"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

// Attachment row of an ingested file
type Attachment struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ObjectName string    `gorm:"uniqueIndex" json:"objectName"`
	FileName   string    `json:"fileName"`
	MimeType   string    `json:"mimeType"`
	Size       int64     `json:"size"`
	URL        string    `json:"url"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Library is an Ingester storing bytes in a Storage and attachment rows in a
// database
type Library struct {
	db      *gorm.DB
	storage Storage
	logger  *slog.Logger
}

// NewLibrary migrates the attachment table
func NewLibrary(db *gorm.DB, storage Storage, logger *slog.Logger) (*Library, error) {
	if err := db.AutoMigrate(&Attachment{}); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Library{db: db, storage: storage, logger: logger}, nil
}

// Ingest stores the file and creates an attachment. A failed row insert
// leaves the stored object in place.
func (l *Library) Ingest(ctx context.Context, file File) (Media, error) {
	if len(file.Data) == 0 {
		return Media{}, fmt.Errorf("%w: %q", ErrEmptyFile, file.Name)
	}
	contentType := file.Type
	if contentType == "" {
		contentType = http.DetectContentType(file.Data)
	}
	id, err := uuid.NewV4()
	if err != nil {
		return Media{}, err
	}
	objectName := id.String()
	if exts, _ := mime.ExtensionsByType(contentType); len(exts) > 0 {
		objectName += exts[0]
	}
	if err := l.storage.Put(ctx, objectName, contentType, file.Data); err != nil {
		l.logger.Error("could not store file", "name", file.Name, "object", objectName, "err", err)
		return Media{}, err
	}
	attachment := Attachment{
		ObjectName: objectName,
		FileName:   file.Name,
		MimeType:   contentType,
		Size:       int64(len(file.Data)),
		URL:        l.storage.URL(objectName),
	}
	if err := l.db.WithContext(ctx).Create(&attachment).Error; err != nil {
		return Media{}, err
	}
	l.logger.Info("ingested file", "name", file.Name, "id", attachment.ID, "url", attachment.URL)
	return Media{ID: attachment.ID, SourceURL: attachment.URL}, nil
}

// Get an attachment by id
func (l *Library) Get(ctx context.Context, id int64) (Attachment, error) {
	var attachment Attachment
	err := l.db.WithContext(ctx).First(&attachment, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Attachment{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return attachment, err
}
