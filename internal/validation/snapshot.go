package validation

import (
	"time"

	"github.com/arniesaha/portfolio-tracker/internal/api/request"
)

// ValidateSnapshotBackfillRange validates a snapshot backfill request's
// date range. The end date is required; an empty start date yields a zero
// start time, which the snapshot service resolves to the date of the first
// recorded transaction.
func ValidateSnapshotBackfillRange(req request.BackfillRequest) (start, end time.Time, err error) {
	errors := make(map[string]string)

	if req.StartDate != "" {
		var serr error
		if start, serr = time.Parse("2006-01-02", req.StartDate); serr != nil {
			errors["startDate"] = serr.Error()
		}
	}
	end, eerr := time.Parse("2006-01-02", req.EndDate)
	if eerr != nil {
		errors["endDate"] = eerr.Error()
	}
	if len(errors) == 0 && !start.IsZero() && start.After(end) {
		errors["startDate"] = ErrInvalidDateRange.Error()
	}

	if len(errors) > 0 {
		return time.Time{}, time.Time{}, &Error{Fields: errors}
	}
	return start, end, nil
}
