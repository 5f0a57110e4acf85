package integration

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bookResponse struct {
	ID            int64   `json:"id"`
	Title         string  `json:"title"`
	Author        string  `json:"author"`
	Price         float64 `json:"price"`
	IsPremium     bool    `json:"is_premium"`
	CoverImageURL string  `json:"cover_image_url"`
	FileURL       *string `json:"file_url"`
}

// createBookMultipart issues an admin book-create request with the given
// premium flag and optional PDF part.
func createBookMultipart(t *testing.T, ts *TestServer, token, title string, premium, withPDF bool) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fields := map[string]string{
		"title":       title,
		"author":      "Test Author",
		"description": "A description long enough to pass validation.",
		"category":    "Fiction",
		"pages":       "200",
		"price":       "12.50",
	}
	if premium {
		fields["is_premium"] = "true"
	} else {
		fields["is_premium"] = "false"
	}
	for key, value := range fields {
		require.NoError(t, mw.WriteField(key, value))
	}

	cover, err := mw.CreateFormFile("coverImage", "cover.png")
	require.NoError(t, err)
	cover.Write([]byte("png-bytes"))

	if withPDF {
		pdf, err := mw.CreateFormFile("bookFile", "book.pdf")
		require.NoError(t, err)
		pdf.Write([]byte("%PDF-1.4 test"))
	}
	require.NoError(t, mw.Close())

	req, err := http.NewRequest("POST", ts.Server.URL+"/api/books", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func TestBookCatalogFlow(t *testing.T) {
	ts := newServer(t)

	_, admin := register(t, ts, "Admin", "admin@example.com", "password123", "")
	_, reader := register(t, ts, "Reader", "reader@example.com", "password123", "")

	// Create a free book with cover and PDF.
	resp := createBookMultipart(t, ts, admin.Token, "Free Book", false, true)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var freeBook bookResponse
	require.NoError(t, ParseJSONResponse(resp, &freeBook))
	assert.NotEmpty(t, freeBook.CoverImageURL)
	require.NotNil(t, freeBook.FileURL)

	// And a premium book without a PDF.
	resp = createBookMultipart(t, ts, admin.Token, "Premium Book", true, true)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var premiumBook bookResponse
	require.NoError(t, ParseJSONResponse(resp, &premiumBook))

	// The catalog is public.
	listResp, err := ts.Request("GET", "/api/books", nil, nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, listResp.StatusCode)
	var catalog []bookResponse
	require.NoError(t, ParseJSONResponse(listResp, &catalog))
	assert.Len(t, catalog, 2)

	// Free book downloads for any authenticated user.
	dlResp, err := ts.RequestWithAuth("GET", "/api/books/download/"+int64Str(freeBook.ID), reader.Token, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, dlResp.StatusCode)
	assert.Contains(t, dlResp.Header.Get("Content-Disposition"), "Free Book")
	dlResp.Body.Close()

	// Premium downloads are refused until purchased.
	dlResp, err = ts.RequestWithAuth("GET", "/api/books/download/"+int64Str(premiumBook.ID), reader.Token, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, dlResp.StatusCode)
	dlResp.Body.Close()

	// Anonymous downloads are refused outright.
	anonResp, err := ts.Request("GET", "/api/books/download/"+int64Str(freeBook.ID), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, anonResp.StatusCode)
	anonResp.Body.Close()
}

func TestBookCreateRequiresAdmin(t *testing.T) {
	ts := newServer(t)

	_, _ = register(t, ts, "Admin", "admin@example.com", "password123", "")
	_, reader := register(t, ts, "Reader", "reader@example.com", "password123", "")

	resp := createBookMultipart(t, ts, reader.Token, "Forbidden Book", false, true)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()
}

func TestBookCreateRejectsFreeBookWithoutPDF(t *testing.T) {
	ts := newServer(t)

	_, admin := register(t, ts, "Admin", "admin@example.com", "password123", "")

	resp := createBookMultipart(t, ts, admin.Token, "Incomplete Book", false, false)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestBookDeleteRemovesFromCatalog(t *testing.T) {
	ts := newServer(t)

	_, admin := register(t, ts, "Admin", "admin@example.com", "password123", "")

	resp := createBookMultipart(t, ts, admin.Token, "Ephemeral Book", false, true)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var book bookResponse
	require.NoError(t, ParseJSONResponse(resp, &book))

	delResp, err := ts.RequestWithAuth("DELETE", "/api/books/"+int64Str(book.ID), admin.Token, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, delResp.StatusCode)
	delResp.Body.Close()

	getResp, err := ts.Request("GET", "/api/books/"+int64Str(book.ID), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, getResp.StatusCode)
	getResp.Body.Close()
}
