package models

import "time"

// FolderStatus mirrors AssetStatus; Removed is terminal here as well.
type FolderStatus string

const (
	FolderHidden  FolderStatus = "HIDDEN"
	FolderVisible FolderStatus = "VISIBLE"
	FolderRemoved FolderStatus = "REMOVED"
)

var NonRemovedFolderStatuses = []FolderStatus{FolderHidden, FolderVisible}

// Folder groups assets of one type. Folders are not tenant-scoped rows
// themselves; tenancy is carried by the assets inside them.
type Folder struct {
	ID          int64        `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	DateCreated time.Time    `json:"dateCreated"`
	DateUpdated time.Time    `json:"dateUpdated"`
	Status      FolderStatus `json:"status"`
	Type        AssetType    `json:"type"`
	AuthorID    int64        `json:"authorId"`

	Assets []Asset `json:"-"`
}
