package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rfujimura/koden-tracker/internal/backup"
	"github.com/rfujimura/koden-tracker/internal/export"
	"github.com/rfujimura/koden-tracker/internal/pipeline"
	"github.com/rfujimura/koden-tracker/internal/repository"
	"github.com/rfujimura/koden-tracker/internal/vision"
)

// fakeRecognizer returns one canned recognition for any image.
type fakeRecognizer struct {
	rec *vision.Recognition
}

func (f *fakeRecognizer) Recognize(context.Context, []byte) (*vision.Recognition, error) {
	if f.rec == nil {
		return &vision.Recognition{}, nil
	}
	return f.rec, nil
}

func newTestServer(t *testing.T, rec vision.Recognizer) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := slog.Default()

	db, err := repository.Open(context.Background(), repository.Config{Driver: "sqlite", DSN: ":memory:"}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close(logger) })
	require.NoError(t, db.Migrate(context.Background(), logger))

	funerals := repository.NewFuneralRepository(db, logger)
	donations := repository.NewDonationRepository(db, logger)
	backups, err := backup.NewService(db, funerals, donations, logger)
	require.NoError(t, err)

	srv := New(Deps{
		Logger:    logger,
		Funerals:  funerals,
		Donations: donations,
		Capture:   pipeline.NewCapture(logger, rec, funerals, donations),
		Exports:   export.NewService(funerals, donations, logger),
		Backups:   backups,
		DB:        db,
	})
	return srv.Router()
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func createTestFuneral(t *testing.T, router *gin.Engine) string {
	t.Helper()
	w := doJSON(t, router, http.MethodPost, "/api/v1/funerals", gin.H{
		"family_name":   "山田",
		"deceased_name": "山田一郎",
		"funeral_date":  "2024-03-15",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var resp struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.ID)
	return resp.ID
}

func TestHealthz(t *testing.T) {
	router := newTestServer(t, &fakeRecognizer{})
	w := doJSON(t, router, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestFuneralLifecycle(t *testing.T) {
	router := newTestServer(t, &fakeRecognizer{})
	id := createTestFuneral(t, router)

	w := doJSON(t, router, http.MethodGet, "/api/v1/funerals/"+id, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "山田一郎")

	w = doJSON(t, router, http.MethodPut, "/api/v1/funerals/"+id, gin.H{
		"family_name":   "山田",
		"deceased_name": "山田一郎",
		"funeral_date":  "2024-03-15",
		"status":        "ACTIVE",
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ACTIVE")

	w = doJSON(t, router, http.MethodGet, "/api/v1/funerals", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodDelete, "/api/v1/funerals/"+id, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/v1/funerals/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFuneralValidation(t *testing.T) {
	router := newTestServer(t, &fakeRecognizer{})

	w := doJSON(t, router, http.MethodPost, "/api/v1/funerals", gin.H{"family_name": "山田"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/v1/funerals", gin.H{
		"family_name":   "山田",
		"deceased_name": "山田一郎",
		"funeral_date":  "15/03/2024",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/v1/funerals/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDonationLifecycle(t *testing.T) {
	router := newTestServer(t, &fakeRecognizer{})
	funeralID := createTestFuneral(t, router)

	w := doJSON(t, router, http.MethodPost, "/api/v1/funerals/"+funeralID+"/donations", gin.H{
		"full_name":     "佐藤花子",
		"amount":        10000,
		"donation_type": "ご霊前",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var d struct {
		ID               string `json:"id"`
		DonationType     string `json:"donation_type"`
		DonationCategory string `json:"donation_category"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &d))
	// the hiragana variant is canonicalized and the category filled in
	assert.Equal(t, "御霊前", d.DonationType)
	assert.Equal(t, "仏式・神式・キリスト教式", d.DonationCategory)

	w = doJSON(t, router, http.MethodGet, "/api/v1/funerals/"+funeralID+"/donations", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "佐藤花子")

	w = doJSON(t, router, http.MethodPut, "/api/v1/donations/"+d.ID, gin.H{
		"full_name": "佐藤花子",
		"amount":    30000,
	})
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodDelete, "/api/v1/donations/"+d.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestDonationSearch(t *testing.T) {
	router := newTestServer(t, &fakeRecognizer{})
	funeralID := createTestFuneral(t, router)

	for _, body := range []gin.H{
		{"full_name": "佐藤花子", "company_name": "株式会社山田商事"},
		{"full_name": "鈴木次郎", "address": "大阪府大阪市北区1-1"},
	} {
		w := doJSON(t, router, http.MethodPost, "/api/v1/funerals/"+funeralID+"/donations", body)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := doJSON(t, router, http.MethodGet, "/api/v1/funerals/"+funeralID+"/donations?q=山田商事", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "佐藤花子")
	assert.NotContains(t, w.Body.String(), "鈴木次郎")
}

func TestDonationNegativeAmount(t *testing.T) {
	router := newTestServer(t, &fakeRecognizer{})
	funeralID := createTestFuneral(t, router)

	w := doJSON(t, router, http.MethodPost, "/api/v1/funerals/"+funeralID+"/donations", gin.H{
		"full_name": "佐藤花子",
		"amount":    -100,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExtractEndpoint(t *testing.T) {
	router := newTestServer(t, &fakeRecognizer{})

	w := doJSON(t, router, http.MethodPost, "/api/v1/extract", gin.H{
		"faces": gin.H{
			"front":       "御霊前\n株式会社山田商事 代表取締役 田中一郎",
			"back":        "東京都港区芝公園4-2-8\n佐藤花子",
			"inner_front": "金壱万円也",
		},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Extraction struct {
			PersonalName     string `json:"personal_name"`
			OrganizationName string `json:"organization_name"`
			Title            string `json:"title"`
			Address          string `json:"address"`
			Amount           string `json:"amount"`
			EnclosedAmount   string `json:"enclosed_amount"`
		} `json:"extraction"`
		DonationType struct {
			Type       string  `json:"type"`
			Confidence float64 `json:"confidence"`
		} `json:"donation_type"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "佐藤花子", resp.Extraction.PersonalName)
	assert.Contains(t, resp.Extraction.OrganizationName, "山田商事")
	assert.Equal(t, "代表取締役", resp.Extraction.Title)
	assert.Equal(t, "東京都港区芝公園4-2-8", resp.Extraction.Address)
	assert.Equal(t, "10000", resp.Extraction.Amount)
	assert.Equal(t, "10000", resp.Extraction.EnclosedAmount)
	assert.Equal(t, "御霊前", resp.DonationType.Type)
	assert.Equal(t, 0.9, resp.DonationType.Confidence)
}

func TestExtractEndpointUnknownFace(t *testing.T) {
	router := newTestServer(t, &fakeRecognizer{})
	w := doJSON(t, router, http.MethodPost, "/api/v1/extract", gin.H{
		"faces": gin.H{"sideways": "text"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCaptureEndpoint(t *testing.T) {
	rec := &fakeRecognizer{rec: &vision.Recognition{
		Text:       "御香典\n金五千円\n山田太郎",
		Confidence: 0.95,
	}}
	router := newTestServer(t, rec)
	funeralID := createTestFuneral(t, router)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("front", "front.jpg")
	require.NoError(t, err)
	_, err = fw.Write([]byte("fake-image-bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/funerals/"+funeralID+"/capture", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Donation struct {
			FullName     string `json:"full_name"`
			Amount       int64  `json:"amount"`
			DonationType string `json:"donation_type"`
		} `json:"donation"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "山田太郎", resp.Donation.FullName)
	assert.Equal(t, int64(5000), resp.Donation.Amount)
	assert.Equal(t, "御香典", resp.Donation.DonationType)
}

func TestCaptureDryRun(t *testing.T) {
	rec := &fakeRecognizer{rec: &vision.Recognition{
		Text:       "御香典\n金五千円\n山田太郎",
		Confidence: 0.95,
	}}
	router := newTestServer(t, rec)
	funeralID := createTestFuneral(t, router)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("front", "front.jpg")
	require.NoError(t, err)
	_, err = fw.Write([]byte("fake-image-bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/funerals/"+funeralID+"/capture?save=false", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// nothing was persisted
	w2 := doJSON(t, router, http.MethodGet, "/api/v1/funerals/"+funeralID+"/donations", nil)
	require.Equal(t, http.StatusOK, w2.Code)
	assert.NotContains(t, w2.Body.String(), "山田太郎")
}

func TestCaptureRejectsBadExtension(t *testing.T) {
	router := newTestServer(t, &fakeRecognizer{})
	funeralID := createTestFuneral(t, router)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("front", "front.exe")
	require.NoError(t, err)
	_, err = fw.Write([]byte("not-an-image"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/funerals/"+funeralID+"/capture", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExportSummaryEndpoint(t *testing.T) {
	router := newTestServer(t, &fakeRecognizer{})
	funeralID := createTestFuneral(t, router)

	for _, amount := range []int64{5000, 30000} {
		w := doJSON(t, router, http.MethodPost, "/api/v1/funerals/"+funeralID+"/donations", gin.H{
			"full_name": "佐藤花子",
			"amount":    amount,
		})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/v1/funerals/%s/export?format=summary", funeralID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var sum export.Summary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sum))
	assert.Equal(t, 2, sum.Count)
	assert.Equal(t, int64(35000), sum.TotalAmount)

	w = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/v1/funerals/%s/export?format=nope", funeralID), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBackupEndpoints(t *testing.T) {
	router := newTestServer(t, &fakeRecognizer{})
	funeralID := createTestFuneral(t, router)
	w := doJSON(t, router, http.MethodPost, "/api/v1/funerals/"+funeralID+"/donations", gin.H{
		"full_name": "佐藤花子",
		"amount":    10000,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/v1/backup", nil)
	require.Equal(t, http.StatusOK, w.Code)
	exported := w.Body.Bytes()

	// import into a fresh server
	other := newTestServer(t, &fakeRecognizer{})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/backup", bytes.NewReader(exported))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	other.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"funerals_imported":1`)
	assert.Contains(t, rec.Body.String(), `"donations_imported":1`)
}
