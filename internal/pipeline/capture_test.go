package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rfujimura/koden-tracker/constants"
	"github.com/rfujimura/koden-tracker/internal/common"
	"github.com/rfujimura/koden-tracker/internal/entity"
	"github.com/rfujimura/koden-tracker/internal/extract"
	"github.com/rfujimura/koden-tracker/internal/repository"
	"github.com/rfujimura/koden-tracker/internal/vision"
)

// fakeRecognizer maps the image bytes (as a string key) to a canned
// recognition, standing in for the external service.
type fakeRecognizer struct {
	byImage map[string]*vision.Recognition
	failOn  map[string]bool
}

func (f *fakeRecognizer) Recognize(_ context.Context, image []byte) (*vision.Recognition, error) {
	if f.failOn[string(image)] {
		return nil, common.NewAppError("VISION_ERROR", "boom", common.ErrRecognition)
	}
	if rec, ok := f.byImage[string(image)]; ok {
		return rec, nil
	}
	return &vision.Recognition{}, nil
}

func newCaptureHarness(t *testing.T, rec vision.Recognizer) (*Capture, *entity.Funeral, repository.DonationRepository) {
	t.Helper()
	logger := slog.Default()
	db, err := repository.Open(context.Background(), repository.Config{Driver: "sqlite", DSN: ":memory:"}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close(logger) })
	require.NoError(t, db.Migrate(context.Background(), logger))

	funerals := repository.NewFuneralRepository(db, logger)
	donations := repository.NewDonationRepository(db, logger)
	f, err := funerals.Create(context.Background(), &entity.Funeral{
		FamilyName:   "山田",
		DeceasedName: "山田一郎",
		FuneralDate:  time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	return NewCapture(logger, rec, funerals, donations), f, donations
}

func TestCaptureRun(t *testing.T) {
	rec := &fakeRecognizer{byImage: map[string]*vision.Recognition{
		"front": {
			Text:       "御霊前\n株式会社山田商事 代表取締役 田中一郎",
			Confidence: 0.95,
			Fragments: []extract.PositionedFragment{
				{Text: "御霊前", Y: 10},
				{Text: "田中一郎", Y: 400},
			},
		},
		"back":        {Text: "東京都港区芝公園4-2-8\n佐藤花子", Confidence: 0.85},
		"inner_front": {Text: "金壱万円也", Confidence: 0.85},
	}}
	capture, funeral, _ := newCaptureHarness(t, rec)

	got, err := capture.Run(context.Background(), &CaptureRequest{
		FuneralID: funeral.ID,
		Images: map[constants.Face][]byte{
			constants.FaceFront:      []byte("front"),
			constants.FaceBack:       []byte("back"),
			constants.FaceInnerFront: []byte("inner_front"),
		},
	})
	require.NoError(t, err)

	d := got.Donation
	assert.NotEqual(t, uuid.Nil, d.ID)
	assert.Equal(t, "御霊前", d.DonationType)
	assert.Equal(t, "仏式・神式・キリスト教式", d.DonationCategory)
	assert.Equal(t, int64(10000), d.Amount)
	assert.Equal(t, int64(10000), d.EnclosedAmount)
	assert.Contains(t, d.CompanyName, "山田商事")
	assert.Equal(t, "代表取締役", d.Position)
	assert.Equal(t, "佐藤花子", d.FullName)
	assert.Equal(t, "東京都港区芝公園4-2-8", d.Address)
	assert.Equal(t, vision.Provider, d.OCRProvider)
	assert.Equal(t, "御霊前\n株式会社山田商事 代表取締役 田中一郎", d.OCRResults[constants.FaceFront])
	assert.Contains(t, d.Notes, "【香典袋 表面】")
}

func TestCaptureToleratesFaceFailure(t *testing.T) {
	rec := &fakeRecognizer{
		byImage: map[string]*vision.Recognition{
			"front": {Text: "御香典\n金五千円\n山田太郎", Confidence: 0.85},
		},
		failOn: map[string]bool{"back": true},
	}
	capture, funeral, _ := newCaptureHarness(t, rec)

	got, err := capture.Run(context.Background(), &CaptureRequest{
		FuneralID: funeral.ID,
		Images: map[constants.Face][]byte{
			constants.FaceFront: []byte("front"),
			constants.FaceBack:  []byte("back"),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5000), got.Donation.Amount)
	assert.Equal(t, "御香典", got.Donation.DonationType)
	// the failed face is simply absent from the stored texts
	_, ok := got.Donation.OCRResults[constants.FaceBack]
	assert.False(t, ok)
}

func TestCaptureFailsWithoutText(t *testing.T) {
	rec := &fakeRecognizer{failOn: map[string]bool{"front": true, "back": true}}
	capture, funeral, donations := newCaptureHarness(t, rec)

	_, err := capture.Run(context.Background(), &CaptureRequest{
		FuneralID: funeral.ID,
		Images: map[constants.Face][]byte{
			constants.FaceFront: []byte("front"),
			constants.FaceBack:  []byte("back"),
		},
	})
	assert.True(t, errors.Is(err, common.ErrRecognition))

	list, err := donations.ListByFuneral(context.Background(), funeral.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCaptureDryRun(t *testing.T) {
	rec := &fakeRecognizer{byImage: map[string]*vision.Recognition{
		"front": {Text: "御香典\n金五千円\n山田太郎", Confidence: 0.85},
	}}
	capture, funeral, donations := newCaptureHarness(t, rec)

	got, err := capture.Run(context.Background(), &CaptureRequest{
		FuneralID: funeral.ID,
		Images:    map[constants.Face][]byte{constants.FaceFront: []byte("front")},
		DryRun:    true,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5000), got.Donation.Amount)
	assert.Equal(t, uuid.Nil, got.Donation.ID)

	list, err := donations.ListByFuneral(context.Background(), funeral.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCaptureUnknownFuneral(t *testing.T) {
	capture, _, _ := newCaptureHarness(t, &fakeRecognizer{})
	_, err := capture.Run(context.Background(), &CaptureRequest{
		FuneralID: uuid.New(),
		Images:    map[constants.Face][]byte{constants.FaceFront: []byte("front")},
	})
	assert.True(t, errors.Is(err, common.ErrNotFound))
}

func TestCaptureSplitsName(t *testing.T) {
	rec := &fakeRecognizer{byImage: map[string]*vision.Recognition{
		"front": {Text: "御香典\n山田 太郎", Confidence: 0.85},
	}}
	capture, funeral, _ := newCaptureHarness(t, rec)

	got, err := capture.Run(context.Background(), &CaptureRequest{
		FuneralID: funeral.ID,
		Images:    map[constants.Face][]byte{constants.FaceFront: []byte("front")},
	})
	require.NoError(t, err)
	assert.Equal(t, "山田 太郎", got.Donation.FullName)
	require.NotNil(t, got.Donation.LastName)
	require.NotNil(t, got.Donation.FirstName)
	assert.Equal(t, "山田", *got.Donation.LastName)
	assert.Equal(t, "太郎", *got.Donation.FirstName)
}
