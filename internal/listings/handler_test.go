package listings

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sealabid/sealabid/internal/errs"
	"github.com/sealabid/sealabid/internal/model"
	"github.com/sealabid/sealabid/internal/repository"
	"github.com/sealabid/sealabid/internal/service"
)

type fakeListingService struct {
	created *model.Listing
	mine    []model.Listing
	err     error
}

func (f *fakeListingService) Create(_ context.Context, in service.CreateListingInput, verified bool) (*model.Listing, error) {
	if f.err != nil {
		return nil, f.err
	}
	l := &model.Listing{
		ID:           uuid.New(),
		SellerID:     in.SellerID,
		Title:        in.Title,
		Description:  in.Description,
		Category:     in.Category,
		DurationDays: in.DurationDays,
		MakeMeHappy:  in.MakeMeHappy,
		ClosesAt:     time.Now().Add(7 * 24 * time.Hour),
		Status:       model.ListingActive,
	}
	f.created = l
	return l, nil
}

func (f *fakeListingService) Get(context.Context, uuid.UUID) (*model.Listing, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.created, nil
}

func (f *fakeListingService) ListPublic(context.Context, repository.ListingFilter) ([]model.Listing, error) {
	if f.created == nil {
		return []model.Listing{}, nil
	}
	return []model.Listing{*f.created}, nil
}

func (f *fakeListingService) ListBySeller(context.Context, uuid.UUID) ([]model.Listing, error) {
	if f.mine != nil {
		return f.mine, nil
	}
	if f.created == nil {
		return []model.Listing{}, nil
	}
	return []model.Listing{*f.created}, nil
}

func newContext(t *testing.T, method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestCreate_OK(t *testing.T) {
	svc := &fakeListingService{}
	h := NewHandler(svc, zap.NewNop())

	c, rec := newContext(t, http.MethodPost, "/listings",
		`{"title":"Vintage camera","description":"Working Leica","category":"collectibles","duration_days":7}`)
	c.Set("user_id", uuid.New().String())
	c.Set("email_verified", true)

	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	var got model.Listing
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Vintage camera", got.Title)
	assert.Equal(t, model.ListingActive, got.Status)
}

func TestCreate_UnverifiedEmail(t *testing.T) {
	svc := &fakeListingService{err: errs.ErrEmailNotVerified}
	h := NewHandler(svc, zap.NewNop())

	c, rec := newContext(t, http.MethodPost, "/listings",
		`{"title":"x","description":"y","category":"art","duration_days":7}`)
	c.Set("user_id", uuid.New().String())
	c.Set("email_verified", false)

	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCreate_Unauthenticated(t *testing.T) {
	h := NewHandler(&fakeListingService{}, zap.NewNop())

	c, rec := newContext(t, http.MethodPost, "/listings", `{}`)
	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGet_RedactsPrivateTargetForOtherViewers(t *testing.T) {
	target := int64(50000)
	sellerID := uuid.New()
	svc := &fakeListingService{created: &model.Listing{
		ID:          uuid.New(),
		SellerID:    sellerID,
		Title:       "Painting",
		MakeMeHappy: &target,
		Status:      model.ListingActive,
	}}
	h := NewHandler(svc, zap.NewNop())

	c, rec := newContext(t, http.MethodGet, "/listings/"+svc.created.ID.String(), "")
	c.SetParamNames("id")
	c.SetParamValues(svc.created.ID.String())

	require.NoError(t, h.Get(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "make_me_happy")
}

func TestGet_SellerSeesPrivateTarget(t *testing.T) {
	target := int64(50000)
	sellerID := uuid.New()
	svc := &fakeListingService{created: &model.Listing{
		ID:          uuid.New(),
		SellerID:    sellerID,
		Title:       "Painting",
		MakeMeHappy: &target,
		Status:      model.ListingActive,
	}}
	h := NewHandler(svc, zap.NewNop())

	c, rec := newContext(t, http.MethodGet, "/listings/"+svc.created.ID.String(), "")
	c.SetParamNames("id")
	c.SetParamValues(svc.created.ID.String())
	c.Set("user_id", sellerID.String())

	require.NoError(t, h.Get(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "make_me_happy")
}

func TestGet_NotFound(t *testing.T) {
	svc := &fakeListingService{err: errs.ErrNotFound}
	h := NewHandler(svc, zap.NewNop())

	id := uuid.New().String()
	c, rec := newContext(t, http.MethodGet, "/listings/"+id, "")
	c.SetParamNames("id")
	c.SetParamValues(id)

	require.NoError(t, h.Get(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMine_SplitsActiveAndEnded(t *testing.T) {
	sellerID := uuid.New()
	svc := &fakeListingService{mine: []model.Listing{
		{ID: uuid.New(), SellerID: sellerID, Title: "still open", ClosesAt: time.Now().Add(time.Hour), Status: model.ListingActive},
		{ID: uuid.New(), SellerID: sellerID, Title: "past deadline", ClosesAt: time.Now().Add(-time.Hour), Status: model.ListingActive},
	}}
	h := NewHandler(svc, zap.NewNop())

	c, rec := newContext(t, http.MethodGet, "/my/listings", "")
	c.Set("user_id", sellerID.String())

	require.NoError(t, h.Mine(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var got struct {
		Active []model.Listing `json:"active"`
		Ended  []model.Listing `json:"ended"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got.Active, 1)
	require.Len(t, got.Ended, 1)
	assert.Equal(t, "still open", got.Active[0].Title)
	assert.Equal(t, "past deadline", got.Ended[0].Title)
}

func TestList_RedactsPrivateTarget(t *testing.T) {
	target := int64(1200)
	svc := &fakeListingService{created: &model.Listing{
		ID:          uuid.New(),
		SellerID:    uuid.New(),
		Title:       "Bike",
		MakeMeHappy: &target,
		Status:      model.ListingActive,
	}}
	h := NewHandler(svc, zap.NewNop())

	c, rec := newContext(t, http.MethodGet, "/listings", "")
	require.NoError(t, h.List(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "make_me_happy")
}
