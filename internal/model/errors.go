package model

import "errors"

var (
	// ErrNotFound indicates a bookmark was not found.
	ErrNotFound = errors.New("bookmark not found")

	// ErrInvalidURL indicates an empty or unusable URL was provided.
	ErrInvalidURL = errors.New("invalid URL")

	// ErrDuplicate indicates a bookmark with the same URL already exists.
	ErrDuplicate = errors.New("duplicate URL")

	// ErrEmptyTag indicates a tag name was empty.
	ErrEmptyTag = errors.New("empty tag name")

	// ErrTagAmbiguous indicates more than one tag row shares a name.
	ErrTagAmbiguous = errors.New("tag name matches more than one tag")
)
