package httpx

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/taskdog/taskdog/internal/domain/model"
	apperrors "github.com/taskdog/taskdog/internal/errors"
)

// ParseTaskListOptions builds the task listing filter from the request query.
// Recognized parameters:
//   - all:        "true" widens the listing to archived tasks
//   - status:     one of pending/in_progress/completed/canceled
//   - tags:       comma-separated tag names; every named tag must be present
//   - start_date: YYYY-MM-DD window lower bound
//   - end_date:   YYYY-MM-DD window upper bound
//   - sort:       id/name/priority/deadline/status/created_at, with an
//     optional :asc or :desc direction suffix
//   - reverse:    "true" flips the sort order, after any :asc/:desc suffix
func ParseTaskListOptions(r *http.Request) (model.TasksListOptions, error) {
	q := r.URL.Query()
	opts := model.TasksListOptions{
		IncludeArchived: q.Get("all") == "true",
		Reverse:         q.Get("reverse") == "true",
	}

	if raw := q.Get("status"); raw != "" {
		status, ok := model.ParseTaskStatus(raw)
		if !ok {
			return opts, apperrors.ValidationField("status", fmt.Sprintf("unknown status %q", raw))
		}
		opts.Status = &status
	}

	if raw := q.Get("tags"); raw != "" {
		for _, tag := range strings.Split(raw, ",") {
			if trimmed := strings.TrimSpace(tag); trimmed != "" {
				opts.Tags = append(opts.Tags, trimmed)
			}
		}
	}

	var err error
	if opts.StartDate, err = parseDateParam(q.Get("start_date"), "start_date"); err != nil {
		return opts, err
	}
	if opts.EndDate, err = parseDateParam(q.Get("end_date"), "end_date"); err != nil {
		return opts, err
	}
	if !opts.StartDate.IsZero() && !opts.EndDate.IsZero() && opts.EndDate.Before(opts.StartDate) {
		return opts, apperrors.ValidationField("end_date", "end_date is before start_date")
	}

	if raw := q.Get("sort"); raw != "" {
		field, desc := splitSortDirection(raw)
		if field == "" || !model.ValidTaskSort(field) {
			return opts, apperrors.ValidationField("sort", fmt.Sprintf("unknown sort field %q", raw))
		}
		opts.Sort = field
		if desc {
			opts.Reverse = !opts.Reverse
		}
	}

	return opts, nil
}

// splitSortDirection strips an optional :asc/:desc suffix from a sort
// value. An unknown suffix invalidates the whole value.
func splitSortDirection(raw string) (field string, desc bool) {
	field, dir, found := strings.Cut(raw, ":")
	if !found {
		return field, false
	}
	switch dir {
	case "asc":
		return field, false
	case "desc":
		return field, true
	default:
		return "", false
	}
}

func parseDateParam(raw, field string) (model.Date, error) {
	if raw == "" {
		return "", nil
	}
	date, err := model.ParseDate(raw)
	if err != nil {
		return "", apperrors.ValidationField(field, fmt.Sprintf("invalid date %q, want YYYY-MM-DD", raw))
	}
	return date, nil
}
