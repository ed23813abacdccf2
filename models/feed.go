package models

// Model for the feeds table
type Feed struct {
	ID        int64     `db:"id"`
	Name      string    `db:"name"`
	Url       string    `db:"url"`
	CreatedAt Timestamp `db:"created_at"`
}

// FeedSource is a configured feed: a display name and the URL to fetch
type FeedSource struct {
	Name string `mapstructure:"name"`
	Url  string `mapstructure:"url"`
}
