package models

import "time"

type DownloadRecord struct {
	ID           string    `json:"id"`
	Filename     string    `json:"filename"`
	Title        string    `json:"title,omitempty"`
	Size         int64     `json:"size"`
	SHA256       string    `json:"sha256"`
	Location     string    `json:"location"`
	DownloadedAt time.Time `json:"downloaded_at"`
	// Missing: файла больше нет в хранилище, заполняется при чтении истории
	Missing bool `json:"missing,omitempty"`
}
