package repository

import "errors"

var (
	ErrNotFound          = errors.New("document not found")
	ErrDuplicateCategory = errors.New("category already exists")
	ErrDuplicateEmail    = errors.New("email already registered")
)
