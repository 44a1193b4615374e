package services

import "errors"

// Core error kinds. Controllers match these with errors.Is and map them to
// HTTP statuses; the services never retry or swallow them.
var (
	ErrBookNotFound     = errors.New("book not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrReviewNotFound   = errors.New("review not found")
	ErrDuplicateReview  = errors.New("user already reviewed this book")
	ErrInvalidSelection = errors.New("selection contains invalid or already purchased books")
	ErrInvalidRating    = errors.New("rating must be between 0 and 5")
	ErrUnknownFlag      = errors.New("unknown storefront flag")
	ErrConflict         = errors.New("concurrent update, please retry")
)
