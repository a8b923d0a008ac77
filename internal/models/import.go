package models

// ImportReport aggregates the outcome of one bulk principal import.
type ImportReport struct {
	Created int      `json:"created"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors"`
}

// Success reports whether the import as a whole is considered successful.
// An all-skip run (nothing created, nothing rejected) is not a failure:
// re-importing a file that was already loaded is an idempotent no-op.
func (r *ImportReport) Success() bool {
	return r.Created > 0 || (r.Created == 0 && len(r.Errors) == 0)
}
