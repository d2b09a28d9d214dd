package handler

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"roofio/internal/domain"
	"roofio/internal/middleware"
	"roofio/internal/service"
	"roofio/internal/textextract"
)

// sniffLen is how much of an upload is inspected before it is accepted.
const sniffLen = 3072

// DocumentHandler handles document parsing endpoints.
type DocumentHandler struct {
	parser   service.ParseService
	archive  *service.ArchiveService
	maxBytes int64
}

// NewDocumentHandler creates a new DocumentHandler. maxFileSizeMB <= 0 disables
// the upload size check; archive may be nil.
func NewDocumentHandler(parser service.ParseService, archive *service.ArchiveService, maxFileSizeMB int64) *DocumentHandler {
	var maxBytes int64
	if maxFileSizeMB > 0 {
		maxBytes = maxFileSizeMB << 20
	}
	return &DocumentHandler{parser: parser, archive: archive, maxBytes: maxBytes}
}

// Parse handles POST /api/v1/documents/parse
// @Summary Parse a document
// @Description Extract construction fields from an uploaded PDF or text file. The paid tier runs only for required fields the pattern tier missed.
// @Tags documents
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Document to parse (PDF or TXT)"
// @Param document_type formData string true "Document type (contract, scope, change_order, pay_application, drawing, submittal)"
// @Param document_id formData string false "Caller-supplied document ID; a UUID is generated when omitted"
// @Success 200 {object} Response{data=domain.ParseResult} "Parse result"
// @Failure 400 {object} ErrorResponseBody "Missing file or invalid document type"
// @Failure 413 {object} ErrorResponseBody "File too large"
// @Failure 415 {object} ErrorResponseBody "Unsupported file type"
// @Router /documents/parse [post]
func (h *DocumentHandler) Parse(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "file field is required")
		return
	}
	defer func() { _ = file.Close() }()

	docType, err := knownType(c.PostForm("document_type"))
	if err != nil {
		HandleError(c, err)
		return
	}
	if h.maxBytes > 0 && header.Size > h.maxBytes {
		HandleError(c, domain.ErrFileTooLarge)
		return
	}

	path, err := h.spool(file, filepath.Ext(header.Filename))
	if err != nil {
		HandleError(c, err)
		return
	}
	defer func() { _ = os.Remove(path) }()

	documentID := c.PostForm("document_id")
	if documentID == "" {
		documentID = uuid.New().String()
	}

	result := h.parser.Parse(c.Request.Context(), service.ParseInput{
		Path:         path,
		DocumentType: docType,
		DocumentID:   documentID,
	})
	h.archiveResult(c, result)
	RespondOK(c, result)
}

// ParseText handles POST /api/v1/documents/parse-text
// @Summary Parse raw text
// @Description Run tiered extraction over already-extracted document text
// @Tags documents
// @Accept json
// @Produce json
// @Param request body ParseTextRequest true "Text and document type"
// @Success 200 {object} Response{data=domain.ParseResult} "Parse result"
// @Failure 400 {object} ErrorResponseBody "Invalid request"
// @Router /documents/parse-text [post]
func (h *DocumentHandler) ParseText(c *gin.Context) {
	var req ParseTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "text and document_type are required")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		HandleError(c, domain.ErrEmptyText)
		return
	}
	docType, err := knownType(req.DocumentType)
	if err != nil {
		HandleError(c, err)
		return
	}
	if req.DocumentID == "" {
		req.DocumentID = uuid.New().String()
	}

	result := h.parser.ParseText(c.Request.Context(), req.Text, docType, req.DocumentID)
	h.archiveResult(c, result)
	RespondOK(c, result)
}

// DocumentTypes handles GET /api/v1/document-types
// @Summary List document types
// @Description List supported document types with their required fields and the fields the pattern tier covers
// @Tags documents
// @Produce json
// @Success 200 {object} Response{data=[]DocumentTypeInfo} "Document types"
// @Router /document-types [get]
func (h *DocumentHandler) DocumentTypes(c *gin.Context) {
	required := h.parser.RequiredFields()
	types := required.Types()
	out := make([]DocumentTypeInfo, 0, len(types))
	for _, t := range types {
		out = append(out, DocumentTypeInfo{
			Type:           string(t),
			RequiredFields: required.For(t),
			CheapFields:    h.parser.CheapFields(t),
		})
	}
	RespondOK(c, out)
}

func knownType(raw string) (domain.DocumentType, error) {
	docType := domain.ParseDocumentType(raw)
	if !docType.IsKnown() {
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidDocumentType, raw)
	}
	return docType, nil
}

// spool sniffs the upload and writes it to a temp file, enforcing the size limit
// on the bytes actually received.
func (h *DocumentHandler) spool(src io.Reader, ext string) (string, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(src, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading upload: %w", err)
	}
	head = head[:n]
	if mtype, ok := textextract.Sniff(head); !ok {
		return "", fmt.Errorf("%w: %s", domain.ErrUnsupportedFileType, mtype)
	}

	tmp, err := os.CreateTemp("", "roofio-upload-*"+strings.ToLower(ext))
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	body := io.MultiReader(bytes.NewReader(head), src)
	if h.maxBytes > 0 {
		body = io.LimitReader(body, h.maxBytes+1)
	}
	written, err := io.Copy(tmp, body)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err == nil && h.maxBytes > 0 && written > h.maxBytes {
		err = domain.ErrFileTooLarge
	}
	if err != nil {
		_ = os.Remove(tmp.Name())
		if errors.Is(err, domain.ErrFileTooLarge) {
			return "", err
		}
		return "", fmt.Errorf("writing temp file: %w", err)
	}
	return tmp.Name(), nil
}

func (h *DocumentHandler) archiveResult(c *gin.Context, result *domain.ParseResult) {
	if h.archive == nil || result == nil {
		return
	}
	if err := h.archive.Archive(c.Request.Context(), result); err != nil {
		log.Warn().Err(err).
			Str("request_id", c.GetString(middleware.ContextKeyRequestID)).
			Str("document_id", result.DocumentID).
			Msg("archiving parse result failed")
	}
}
