package domain

import "time"

// Caption is a travel story entry owned by a single user.
type Caption struct {
	ID              string
	UserID          string
	Title           string
	Story           string
	VisitedLocation string
	ImageURL        string
	VisitedDate     time.Time
	// IsFavourite is only used as a sort key when listing.
	IsFavourite bool
	CreatedAt   time.Time
}

// Upload records an image written to the storage backend.
type Upload struct {
	ID           string
	StorageKey   string
	URL          string
	OriginalName string
	ContentType  string
	Size         int64
	CreatedAt    time.Time
}
