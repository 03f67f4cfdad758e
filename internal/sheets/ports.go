package sheets

import "context"

// Ports for outbound adapters.
type (
	// ActivityWriter appends one exported spend-log row to an activity sheet.
	ActivityWriter interface {
		Append(ctx context.Context, row ActivityRow) (rowRef string, err error)
	}
)

// ActivityRow is a single exported row: one mutation of a user's spend log.
type ActivityRow struct {
	Timestamp string
	Action    string
	UID       string
	LogID     string
	Amount    float64
	Category  string
	Note      string
}
