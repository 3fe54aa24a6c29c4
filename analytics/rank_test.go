package analytics_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"perch/analytics"
	"perch/models"
)

func post(id string, age time.Duration, metrics models.PublicMetrics) models.Post {
	return models.Post{
		ID:            id,
		Text:          "post " + id,
		CreatedAt:     time.Now().Add(-age),
		PublicMetrics: metrics,
	}
}

func ids(posts []models.Post) []string {
	out := make([]string, 0, len(posts))
	for _, p := range posts {
		out = append(out, p.ID)
	}
	return out
}

func TestRankFiltersToWindow(t *testing.T) {
	posts := []models.Post{
		post("recent", 5*24*time.Hour, models.PublicMetrics{LikeCount: 1}),
		post("old", 40*24*time.Hour, models.PublicMetrics{LikeCount: 100}),
		post("ancient", 400*24*time.Hour, models.PublicMetrics{LikeCount: 1000}),
	}

	ranked := analytics.Rank(posts, analytics.MetricLikes, 30, 10)

	assert.Equal(t, []string{"recent"}, ids(ranked))
}

func TestRankOrdersByMetricDescending(t *testing.T) {
	tests := []struct {
		name     string
		metric   string
		expected []string
	}{
		{
			name:     "likes",
			metric:   "likes",
			expected: []string{"b", "a", "c"},
		},
		{
			name:     "retweets",
			metric:   "retweets",
			expected: []string{"c", "b", "a"},
		},
		{
			name:     "replies",
			metric:   "replies",
			expected: []string{"a", "c", "b"},
		},
		{
			name:     "quotes",
			metric:   "quotes",
			expected: []string{"b", "c", "a"},
		},
		{
			name:     "impressions",
			metric:   "impressions",
			expected: []string{"a", "b", "c"},
		},
	}

	posts := []models.Post{
		post("a", time.Hour, models.PublicMetrics{LikeCount: 2, RetweetCount: 1, ReplyCount: 9, QuoteCount: 1, ImpressionCount: 30}),
		post("b", 2*time.Hour, models.PublicMetrics{LikeCount: 5, RetweetCount: 2, ReplyCount: 1, QuoteCount: 8, ImpressionCount: 20}),
		post("c", 3*time.Hour, models.PublicMetrics{LikeCount: 1, RetweetCount: 7, ReplyCount: 3, QuoteCount: 4, ImpressionCount: 10}),
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ranked := analytics.Rank(posts, tt.metric, 30, 10)
			assert.Equal(t, tt.expected, ids(ranked))
		})
	}
}

func TestRankUnknownMetricDefaultsToLikes(t *testing.T) {
	posts := []models.Post{
		post("a", time.Hour, models.PublicMetrics{LikeCount: 2, RetweetCount: 9}),
		post("b", 2*time.Hour, models.PublicMetrics{LikeCount: 5, RetweetCount: 1}),
	}

	unknown := analytics.Rank(posts, "unknownmetric", 30, 10)
	likes := analytics.Rank(posts, analytics.MetricLikes, 30, 10)

	assert.Equal(t, likes, unknown)
	assert.Equal(t, []string{"b", "a"}, ids(unknown))
}

func TestRankTruncatesToLimit(t *testing.T) {
	var posts []models.Post
	for i := 0; i < 25; i++ {
		posts = append(posts, post(string(rune('a'+i)), time.Hour, models.PublicMetrics{LikeCount: i}))
	}

	ranked := analytics.Rank(posts, analytics.MetricLikes, 30, 10)

	assert.Len(t, ranked, 10)
	for i := 1; i < len(ranked); i++ {
		assert.GreaterOrEqual(t,
			ranked[i-1].PublicMetrics.LikeCount,
			ranked[i].PublicMetrics.LikeCount,
		)
	}
}

func TestRankDefaultLimit(t *testing.T) {
	var posts []models.Post
	for i := 0; i < 15; i++ {
		posts = append(posts, post(string(rune('a'+i)), time.Hour, models.PublicMetrics{LikeCount: i}))
	}

	ranked := analytics.Rank(posts, analytics.MetricLikes, 30, 0)

	assert.Len(t, ranked, analytics.DefaultLimit)
}

func TestRankStableForEqualValues(t *testing.T) {
	posts := []models.Post{
		post("first", time.Hour, models.PublicMetrics{LikeCount: 3}),
		post("second", 2*time.Hour, models.PublicMetrics{LikeCount: 3}),
		post("third", 3*time.Hour, models.PublicMetrics{LikeCount: 3}),
	}

	ranked := analytics.Rank(posts, analytics.MetricLikes, 30, 10)

	assert.Equal(t, []string{"first", "second", "third"}, ids(ranked))
}

func TestRankDoesNotMutateInput(t *testing.T) {
	posts := []models.Post{
		post("a", time.Hour, models.PublicMetrics{LikeCount: 1}),
		post("b", 2*time.Hour, models.PublicMetrics{LikeCount: 9}),
	}

	analytics.Rank(posts, analytics.MetricLikes, 30, 10)

	assert.Equal(t, []string{"a", "b"}, ids(posts))
}
