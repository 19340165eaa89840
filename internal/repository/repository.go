package repository

import "errors"

// Package repository contains data access layer abstractions.
// Implementations live in subpackages (e.g., postgres) inside this directory.

var (
	// ErrNotFound is returned when no record matches the requested ID.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateID is returned when a record with the same ID already exists.
	ErrDuplicateID = errors.New("record id already exists")
)
