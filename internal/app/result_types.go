package app

import "invoizo/internal/core"

// File is a rendered download.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

const (
	ContentTypeCSV  = "text/csv"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypePDF  = "application/pdf"
	ContentTypeText = "text/plain; charset=utf-8"
)

// NotificationListResult is returned by ListNotifications.
type NotificationListResult struct {
	Notifications []core.Notification `json:"notifications"`
	Unread        int                 `json:"unread"`
}
