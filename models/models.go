package models

import "time"

// PublicMetrics holds the engagement counters the X API attaches to a tweet.
type PublicMetrics struct {
	LikeCount       int `json:"like_count"`
	RetweetCount    int `json:"retweet_count"`
	ReplyCount      int `json:"reply_count"`
	QuoteCount      int `json:"quote_count"`
	ImpressionCount int `json:"impression_count"`
}

// Post model with key fields from the tweet
type Post struct {
	ID            string        `json:"id"`
	Text          string        `json:"text"`
	CreatedAt     time.Time     `json:"created_at"`
	PublicMetrics PublicMetrics `json:"public_metrics"`
}

// UserMetrics holds the profile-level counters from the users endpoint.
type UserMetrics struct {
	FollowersCount int `json:"followers_count"`
	FollowingCount int `json:"following_count"`
	TweetCount     int `json:"tweet_count"`
	ListedCount    int `json:"listed_count"`
}

// User is the authenticated user's profile with public metrics.
type User struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	Username      string      `json:"username"`
	PublicMetrics UserMetrics `json:"public_metrics"`
}

// EngagementBucket is one calendar month of summed engagement counters.
// Date is formatted YYYY-MM so lexicographic order is chronological.
type EngagementBucket struct {
	Date        string `json:"date"`
	Likes       int    `json:"likes"`
	Retweets    int    `json:"retweets"`
	Replies     int    `json:"replies"`
	Quotes      int    `json:"quotes"`
	Impressions int    `json:"impressions"`
}

// CreatedTweet is the provider's acknowledgement of a published tweet.
type CreatedTweet struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}
