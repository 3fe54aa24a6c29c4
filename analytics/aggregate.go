package analytics

import (
	"math"
	"sort"

	"github.com/samber/lo"

	"perch/models"
)

// AggregateMonthly buckets posts by calendar month and sums the five
// engagement counters into an ascending time series. Months without posts do
// not appear; the dashboard handles sparse series.
func AggregateMonthly(posts []models.Post) []models.EngagementBucket {
	buckets := make(map[string]*models.EngagementBucket)
	for _, post := range posts {
		key := post.CreatedAt.UTC().Format("2006-01")
		bucket, ok := buckets[key]
		if !ok {
			bucket = &models.EngagementBucket{Date: key}
			buckets[key] = bucket
		}
		bucket.Likes += post.PublicMetrics.LikeCount
		bucket.Retweets += post.PublicMetrics.RetweetCount
		bucket.Replies += post.PublicMetrics.ReplyCount
		bucket.Quotes += post.PublicMetrics.QuoteCount
		bucket.Impressions += post.PublicMetrics.ImpressionCount
	}

	keys := lo.Keys(buckets)
	sort.Strings(keys)

	series := make([]models.EngagementBucket, 0, len(keys))
	for _, key := range keys {
		series = append(series, *buckets[key])
	}
	return series
}

// PerformanceScore normalizes the most recent month's impressions against the
// best month in the series, expressed 0-100. An empty series or a series with
// no impressions scores zero.
func PerformanceScore(series []models.EngagementBucket) int {
	if len(series) == 0 {
		return 0
	}

	best := lo.MaxBy(series, func(a models.EngagementBucket, b models.EngagementBucket) bool {
		return a.Impressions > b.Impressions
	})
	if best.Impressions == 0 {
		return 0
	}

	latest := series[len(series)-1].Impressions
	return int(math.Round(float64(latest) / float64(best.Impressions) * 100))
}
