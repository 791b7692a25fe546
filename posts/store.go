package posts

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// Entry is the stored post
type Entry struct {
	ID         int64 `gorm:"primaryKey;autoIncrement"`
	Title      string
	Link       string
	DateGMT    time.Time  `gorm:"column:date_gmt;index"`
	Categories []Category `gorm:"many2many:post_categories;joinForeignKey:PostID;joinReferences:CategoryID"`
}

func (Entry) TableName() string {
	return "posts"
}

// Category of posts
type Category struct {
	ID   int64 `gorm:"primaryKey;autoIncrement"`
	Name string
}

// Store is a Source backed by a database
type Store struct {
	db *gorm.DB
}

// NewStore migrates the post tables
func NewStore(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&Category{}, &Entry{}); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// CreateCategory creates a category and returns its id
func (s *Store) CreateCategory(ctx context.Context, name string) (int64, error) {
	c := Category{Name: name}
	if err := s.db.WithContext(ctx).Create(&c).Error; err != nil {
		return 0, err
	}
	return c.ID, nil
}

// Create a post in the given categories, the assigned id is returned
func (s *Store) Create(ctx context.Context, p Post, categoryIDs ...int64) (int64, error) {
	e := Entry{
		ID:      p.ID,
		Title:   p.Title,
		Link:    p.Link,
		DateGMT: p.DateGMT.UTC(),
	}
	for _, id := range categoryIDs {
		e.Categories = append(e.Categories, Category{ID: id})
	}
	if err := s.db.WithContext(ctx).Omit("Categories.*").Create(&e).Error; err != nil {
		return 0, err
	}
	return e.ID, nil
}

// Latest posts matching q
func (s *Store) Latest(ctx context.Context, q Query) ([]Post, error) {
	if err := q.validate(); err != nil {
		return nil, err
	}
	categoryIDs, err := q.CategoryIDs()
	if err != nil {
		return nil, err
	}
	column := "date_gmt"
	if q.OrderBy == "title" {
		column = "title"
	}
	tx := s.db.WithContext(ctx).Model(&Entry{})
	if len(categoryIDs) > 0 {
		tx = tx.Where("id IN (?)", s.db.Table("post_categories").Select("post_id").Where("category_id IN ?", categoryIDs))
	}
	var entries []Entry
	err = tx.
		Order(column + " " + q.Order).
		Order("id " + q.Order).
		Limit(q.PostsToShow).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	result := make([]Post, 0, len(entries))
	for _, e := range entries {
		result = append(result, Post{
			ID:      e.ID,
			Title:   e.Title,
			Link:    e.Link,
			DateGMT: e.DateGMT.UTC(),
		})
	}
	return result, nil
}
