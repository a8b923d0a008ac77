package models

import "time"

// LectureFile is an uploaded resource owned by exactly one course.
// IsDeleted is monotonic: once a file is soft-deleted it never comes back.
type LectureFile struct {
	ID            string    `db:"id" json:"id"`
	CourseID      string    `db:"course_id" json:"course_id"`
	Title         string    `db:"title" json:"title"`
	StoragePath   string    `db:"storage_path" json:"-"`
	ContentType   string    `db:"content_type" json:"content_type"`
	SizeBytes     int64     `db:"size_bytes" json:"size_bytes"`
	IsVisible     bool      `db:"is_visible" json:"is_visible"`
	IsDeleted     bool      `db:"is_deleted" json:"-"`
	DownloadCount int       `db:"download_count" json:"download_count"`
	UploadedBy    string    `db:"uploaded_by" json:"uploaded_by"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// FileFilter captures filtering criteria for listing a course's files.
type FileFilter struct {
	CourseID    string
	VisibleOnly bool
	Page        int
	PageSize    int
}
