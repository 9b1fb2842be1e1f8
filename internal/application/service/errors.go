package service

import "errors"

// Sentinel errors surfaced to the API layer for status mapping
var (
	ErrEmailTaken          = errors.New("email already registered")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrFileTooLarge        = errors.New("file exceeds maximum size")
	ErrEmptyFile           = errors.New("file is empty")
	ErrUnsupportedFileType = errors.New("unsupported file type, expected csv or excel")
	ErrNotPending          = errors.New("item is no longer pending")
	ErrInvalidAction       = errors.New("invalid resolution action")
	ErrInvalidMapping      = errors.New("invalid column mapping")
	ErrSessionActive       = errors.New("a processing session is already running for this file")
)
