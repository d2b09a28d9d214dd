package handler_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"roofio/internal/domain"
	"roofio/internal/handler"
	"roofio/internal/port"
	"roofio/internal/schema"
	"roofio/internal/service"
	"roofio/mocks"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func multipartRequest(t *testing.T, filename string, content []byte, fields map[string]string) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if filename != "" {
		part, err := writer.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	require.NoError(t, writer.Close())

	req, err := http.NewRequest(http.MethodPost, "/api/v1/documents/parse", body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func decode(t *testing.T, w *httptest.ResponseRecorder) handler.APIResponse {
	t.Helper()
	var resp handler.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestDocumentHandler_Parse_Success(t *testing.T) {
	svc := new(mocks.MockParseService)
	h := handler.NewDocumentHandler(svc, nil, 10)

	var spooled string
	svc.On("Parse", mock.Anything, mock.MatchedBy(func(in service.ParseInput) bool {
		spooled = in.Path
		return in.DocumentType == domain.DocTypeChangeOrder && in.DocumentID == "co-7"
	})).Run(func(args mock.Arguments) {
		in := args.Get(1).(service.ParseInput)
		data, err := os.ReadFile(in.Path)
		assert.NoError(t, err)
		assert.Equal(t, "Change Order #7", string(data))
	}).Return(&domain.ParseResult{DocumentID: "co-7", DocumentType: domain.DocTypeChangeOrder, Success: true})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = multipartRequest(t, "co.txt", []byte("Change Order #7"), map[string]string{
		"document_type": "Change Order",
		"document_id":   "co-7",
	})

	h.Parse(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode(t, w).Success)
	svc.AssertExpectations(t)

	_, err := os.Stat(spooled)
	assert.True(t, os.IsNotExist(err), "temp upload should be removed")
}

func TestDocumentHandler_Parse_GeneratesDocumentID(t *testing.T) {
	svc := new(mocks.MockParseService)
	h := handler.NewDocumentHandler(svc, nil, 10)

	svc.On("Parse", mock.Anything, mock.MatchedBy(func(in service.ParseInput) bool {
		return len(in.DocumentID) == 36
	})).Return(&domain.ParseResult{Success: true})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = multipartRequest(t, "scope.pdf", []byte("%PDF-1.4 test content"), map[string]string{
		"document_type": "scope",
	})

	h.Parse(c)

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestDocumentHandler_Parse_NoFile(t *testing.T) {
	svc := new(mocks.MockParseService)
	h := handler.NewDocumentHandler(svc, nil, 10)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = multipartRequest(t, "", nil, map[string]string{"document_type": "scope"})

	h.Parse(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "MISSING_FILE", decode(t, w).Error.Code)
	svc.AssertNotCalled(t, "Parse", mock.Anything, mock.Anything)
}

func TestDocumentHandler_Parse_InvalidType(t *testing.T) {
	svc := new(mocks.MockParseService)
	h := handler.NewDocumentHandler(svc, nil, 10)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = multipartRequest(t, "a.txt", []byte("hello"), map[string]string{"document_type": "invoice"})

	h.Parse(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_DOCUMENT_TYPE", decode(t, w).Error.Code)
	svc.AssertNotCalled(t, "Parse", mock.Anything, mock.Anything)
}

func TestDocumentHandler_Parse_TooLarge(t *testing.T) {
	svc := new(mocks.MockParseService)
	h := handler.NewDocumentHandler(svc, nil, 1)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = multipartRequest(t, "big.txt", bytes.Repeat([]byte("a"), 1<<20+10), map[string]string{
		"document_type": "scope",
	})

	h.Parse(c)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, "FILE_TOO_LARGE", decode(t, w).Error.Code)
	svc.AssertNotCalled(t, "Parse", mock.Anything, mock.Anything)
}

func TestDocumentHandler_Parse_UnsupportedType(t *testing.T) {
	svc := new(mocks.MockParseService)
	h := handler.NewDocumentHandler(svc, nil, 10)

	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = multipartRequest(t, "photo.png", png, map[string]string{"document_type": "drawing"})

	h.Parse(c)

	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
	assert.Equal(t, "UNSUPPORTED_FILE_TYPE", decode(t, w).Error.Code)
	svc.AssertNotCalled(t, "Parse", mock.Anything, mock.Anything)
}

func TestDocumentHandler_Parse_ArchivesResult(t *testing.T) {
	svc := new(mocks.MockParseService)
	store := new(mocks.MockObjectStorage)
	h := handler.NewDocumentHandler(svc, service.NewArchiveService(store, "results-bucket", ""), 10)

	svc.On("Parse", mock.Anything, mock.Anything).
		Return(&domain.ParseResult{DocumentID: "d1", DocumentType: domain.DocTypeScope, Success: true})
	store.On("Upload", mock.Anything, mock.MatchedBy(func(in port.UploadInput) bool {
		return in.Bucket == "results-bucket" && in.Key == "results/scope/d1.json"
	})).Return(nil, errors.New("s3 down"))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = multipartRequest(t, "s.txt", []byte("Roof type: TPO"), map[string]string{
		"document_type": "scope",
		"document_id":   "d1",
	})

	h.Parse(c)

	assert.Equal(t, http.StatusOK, w.Code)
	store.AssertExpectations(t)
}

func TestDocumentHandler_ParseText(t *testing.T) {
	svc := new(mocks.MockParseService)
	h := handler.NewDocumentHandler(svc, nil, 10)

	svc.On("ParseText", mock.Anything, "Roof type: TPO", domain.DocTypeScope, "s-1").
		Return(&domain.ParseResult{DocumentID: "s-1", Success: true})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/documents/parse-text",
		strings.NewReader(`{"text":"Roof type: TPO","document_type":"scope","document_id":"s-1"}`))
	c.Request.Header.Set("Content-Type", "application/json")

	h.ParseText(c)

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestDocumentHandler_ParseText_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
		code string
	}{
		{"malformed json", `{`, "INVALID_REQUEST"},
		{"missing type", `{"text":"x"}`, "INVALID_REQUEST"},
		{"blank text", `{"text":"   ","document_type":"scope"}`, "EMPTY_TEXT"},
		{"unknown type", `{"text":"x","document_type":"invoice"}`, "INVALID_DOCUMENT_TYPE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mocks.MockParseService)
			h := handler.NewDocumentHandler(svc, nil, 10)

			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/documents/parse-text", strings.NewReader(tt.body))
			c.Request.Header.Set("Content-Type", "application/json")

			h.ParseText(c)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.code, decode(t, w).Error.Code)
			svc.AssertNotCalled(t, "ParseText", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestDocumentHandler_DocumentTypes(t *testing.T) {
	svc := new(mocks.MockParseService)
	h := handler.NewDocumentHandler(svc, nil, 10)
	svc.On("RequiredFields").Return(schema.Default())
	svc.On("CheapFields", domain.DocTypeContract).Return([]string{"contract_sum", "roof_type"})
	svc.On("CheapFields", mock.Anything).Return(nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/document-types", nil)

	h.DocumentTypes(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Success bool                       `json:"success"`
		Data    []handler.DocumentTypeInfo `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, len(domain.KnownDocumentTypes))
	assert.Equal(t, "contract", resp.Data[0].Type)
	assert.NotEmpty(t, resp.Data[0].RequiredFields)
	assert.Equal(t, []string{"contract_sum", "roof_type"}, resp.Data[0].CheapFields)
	assert.Empty(t, resp.Data[1].CheapFields)
}
