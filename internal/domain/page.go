package domain

// RawPageSize is the number of raw records shown per page.
const RawPageSize = 5

// Page is one window of raw records.
// Next is always Cursor+RawPageSize, whether or not a full page was returned;
// the caller owns the cursor and decides when to stop asking.
type Page struct {
	Records []TripRecord `json:"records"`
	Cursor  int          `json:"cursor"`
	Next    int          `json:"next_cursor"`
	Total   int          `json:"total"`
	// Done reports whether Next is at or past the end of the set.
	Done bool `json:"done"`
}
