package models

// FileListEntry is one row of the catalog sent to clients.
// Entries are ordered most-recently-modified first.
type FileListEntry struct {
	Name string `json:"name"`
}

// ContentMessage carries the full decoded text of one log file at one
// observation instant. Each message supersedes any prior message for
// the same name; there is no partial or delta delivery.
type ContentMessage struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// ErrorMessage is sent as the file_content_error payload.
type ErrorMessage struct {
	Message string `json:"message"`
}
