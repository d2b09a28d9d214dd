package domain

import "errors"

var (
	ErrNoText              = errors.New("no text extracted - document may require OCR")
	ErrEmptyText           = errors.New("text is required")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file exceeds maximum allowed size")
	ErrInvalidDocumentType = errors.New("invalid document type")
	ErrSourceNotFound      = errors.New("document source not found")
)
