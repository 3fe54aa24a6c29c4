package analytics

import (
	"sort"
	"time"

	"github.com/samber/lo"

	"perch/models"
)

// Metric names accepted by Rank. Unknown names fall back to likes so a typo
// in a dashboard query never breaks the endpoint.
const (
	MetricLikes       = "likes"
	MetricRetweets    = "retweets"
	MetricReplies     = "replies"
	MetricQuotes      = "quotes"
	MetricImpressions = "impressions"
)

// DefaultLimit is the number of ranked posts returned when no count is given.
const DefaultLimit = 10

func metricValue(post models.Post, metric string) int {
	switch metric {
	case MetricRetweets:
		return post.PublicMetrics.RetweetCount
	case MetricReplies:
		return post.PublicMetrics.ReplyCount
	case MetricQuotes:
		return post.PublicMetrics.QuoteCount
	case MetricImpressions:
		return post.PublicMetrics.ImpressionCount
	default:
		return post.PublicMetrics.LikeCount
	}
}

// Rank filters posts to the trailing window and orders them by the selected
// engagement metric, highest first. Equal values keep their source order.
func Rank(posts []models.Post, metric string, windowDays int, limit int) []models.Post {
	if limit <= 0 {
		limit = DefaultLimit
	}
	cutoff := time.Now().Add(-time.Duration(windowDays) * 24 * time.Hour)

	ranked := lo.Filter(posts, func(post models.Post, _ int) bool {
		return post.CreatedAt.After(cutoff)
	})

	sort.SliceStable(ranked, func(i, j int) bool {
		return metricValue(ranked[i], metric) > metricValue(ranked[j], metric)
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
