package utm

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/storefront-backend/pkg/db/dbtest"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
)

func TestUTMLifecycle(t *testing.T) {
	ctx := context.Background()
	conn := dbtest.NewSQLite(t)
	svc, err := NewService(NewRepository(conn))
	require.NoError(t, err)

	coupon := " SPRING10 "
	link, err := svc.Create(ctx, CreateInput{
		BaseURL:    "https://shop.example.com",
		Source:     "facebook",
		Medium:     "social",
		Campaign:   "spring",
		CouponCode: &coupon,
	})
	require.NoError(t, err)
	assert.Equal(t, "https://shop.example.com?utm_campaign=spring&utm_medium=social&utm_source=facebook", link.UTMURL)
	require.NotNil(t, link.CouponCode)
	assert.Equal(t, "SPRING10", *link.CouponCode)
	assert.Equal(t, enums.ActiveStatusActive, link.Status)

	require.NoError(t, svc.Track(ctx, "social", "spring"))
	require.NoError(t, svc.Track(ctx, "social", "spring"))
	assert.True(t, pkgerrors.IsCode(svc.Track(ctx, "social", "autumn"), pkgerrors.CodeNotFound))
	assert.True(t, pkgerrors.IsCode(svc.Track(ctx, "", "spring"), pkgerrors.CodeValidation))

	var stored models.UTMLink
	require.NoError(t, conn.First(&stored, "id = ?", link.ID).Error)
	assert.Equal(t, int64(2), stored.Traffic)

	updated, err := svc.UpdateStatus(ctx, link.ID, enums.ActiveStatusInactive)
	require.NoError(t, err)
	assert.Equal(t, enums.ActiveStatusInactive, updated.Status)
	assert.True(t, pkgerrors.IsCode(svc.Track(ctx, "social", "spring"), pkgerrors.CodeNotFound))

	_, err = svc.UpdateStatus(ctx, uuid.New(), enums.ActiveStatusActive)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	list, err := svc.List(ctx, nil, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, list.Links, 1)
	assert.Equal(t, int64(2), list.Links[0].Traffic)

	active := enums.ActiveStatusActive
	activeOnly, err := svc.List(ctx, &active, pagination.Params{})
	require.NoError(t, err)
	assert.Empty(t, activeOnly.Links)
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	svc, err := NewService(NewRepository(dbtest.NewSQLite(t)))
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), CreateInput{BaseURL: "not a url", Source: "a", Medium: "b", Campaign: "c"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	_, err = svc.Create(context.Background(), CreateInput{BaseURL: "https://x.example", Source: "a", Medium: " ", Campaign: "c"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}
