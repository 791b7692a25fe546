package posts

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestStore(t *testing.T) *Store {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	s, err := NewStore(db)
	require.NoError(t, err)
	return s
}

func seed(t *testing.T, s *Store) (news int64, sports int64) {
	ctx := context.Background()
	news, err := s.CreateCategory(ctx, "news")
	require.NoError(t, err)
	sports, err = s.CreateCategory(ctx, "sports")
	require.NoError(t, err)
	day := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, p := range []struct {
		title      string
		categories []int64
	}{
		{"Alpha", []int64{news}},
		{"Charlie", []int64{sports}},
		{"Bravo", []int64{news, sports}},
	} {
		_, err := s.Create(ctx, Post{
			Title:   p.title,
			Link:    "https://example.com/" + p.title,
			DateGMT: day.AddDate(0, 0, i),
		}, p.categories...)
		require.NoError(t, err)
	}
	return news, sports
}

func titles(posts []Post) []string {
	result := []string{}
	for _, p := range posts {
		result = append(result, p.Title)
	}
	return result
}

func TestStoreLatest(t *testing.T) {
	s := setupTestStore(t)
	news, _ := seed(t, s)
	ctx := context.Background()

	latest, err := s.Latest(ctx, Query{PostsToShow: 5, Order: "desc", OrderBy: "date"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Bravo", "Charlie", "Alpha"}, titles(latest))
	assert.True(t, time.Date(2024, 3, 3, 12, 0, 0, 0, time.UTC).Equal(latest[0].DateGMT), latest[0].DateGMT)
	assert.Equal(t, "https://example.com/Bravo", latest[0].Link)

	latest, err = s.Latest(ctx, Query{PostsToShow: 2, Order: "asc", OrderBy: "title"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Alpha", "Bravo"}, titles(latest))

	latest, err = s.Latest(ctx, Query{PostsToShow: 5, Order: "desc", OrderBy: "date", Categories: " 1 ," + " "})
	require.NoError(t, err)
	assert.Equal(t, []string{"Bravo", "Alpha"}, titles(latest))
	assert.Equal(t, int64(1), news)
}

func TestStoreLatestInvalid(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	for _, q := range []Query{
		{PostsToShow: 0, Order: "desc", OrderBy: "date"},
		{PostsToShow: 5, Order: "random", OrderBy: "date"},
		{PostsToShow: 5, Order: "desc", OrderBy: "author"},
		{PostsToShow: 5, Order: "desc", OrderBy: "date", Categories: "news"},
	} {
		_, err := s.Latest(ctx, q)
		assert.ErrorIs(t, err, ErrInvalidQuery, q)
	}
}

func TestCategoryIDs(t *testing.T) {
	ids, err := Query{Categories: "3,4"}.CategoryIDs()
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 4}, ids)
	ids, err = Query{}.CategoryIDs()
	require.NoError(t, err)
	assert.Empty(t, ids)
}
