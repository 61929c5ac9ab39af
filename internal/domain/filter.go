package domain

// VideoFilter narrows repository listings.
type VideoFilter struct {
	Status *VideoStatus
	Search string
	Limit  int
	Offset int
}
