package models

// Model for the items table
type Item struct {
	ID        int64     `db:"id"`
	FeedID    int64     `db:"feed_id"`
	Title     string    `db:"title"`
	Link      string    `db:"link"`
	Published Timestamp `db:"published"`
	Summary   string    `db:"summary"`
	FetchedAt Timestamp `db:"fetched_at"`
}

// Candidate is a normalized entry that is ready to be stored, but that is not yet bound to a feed ID
type Candidate struct {
	FeedName  string
	FeedUrl   string
	Title     string
	Link      string
	Published Timestamp
	Summary   string
	FetchedAt Timestamp
}

// Entry is a raw entry as returned by the feed parser
// Every field is optional; nil means the parser did not find it
type Entry struct {
	Title   *string
	Link    *string
	Summary *string

	// Times already decoded by the parser
	Published *Timestamp
	Updated   *Timestamp

	// Raw time strings, used when the parser could not decode them
	PublishedRaw string
	UpdatedRaw   string
}

// ExportRow is a row of the CSV snapshot
type ExportRow struct {
	Feed      string    `db:"feed"`
	Title     string    `db:"title"`
	Link      string    `db:"link"`
	Published Timestamp `db:"published"`
	Summary   string    `db:"summary"`
	FetchedAt Timestamp `db:"fetched_at"`
}

// SearchHit is a result of a search over the stored items
type SearchHit struct {
	ID    int64  `db:"id"`
	Feed  string `db:"feed"`
	Title string `db:"title"`
	Link  string `db:"link"`
}
