package models

// PromotionReport summarises one end-of-year promotion run.
type PromotionReport struct {
	Promoted  int64 `json:"promoted"`
	Graduated int64 `json:"graduated"`
}

// PromotionRequest scopes a promotion run. When MajorID is nil the run
// covers every major.
type PromotionRequest struct {
	MajorID *string `json:"major_id,omitempty"`
}
