package controllers

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	utmsvc "github.com/angelmondragon/storefront-backend/internal/utm"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

type stubUTMService struct {
	utmsvc.Service
	tracked [][2]string
}

func (s *stubUTMService) Track(_ context.Context, medium, campaign string) error {
	if campaign == "gone" {
		return pkgerrors.New(pkgerrors.CodeNotFound, "utm link not found")
	}
	s.tracked = append(s.tracked, [2]string{medium, campaign})
	return nil
}

func TestTrackUTM(t *testing.T) {
	svc := &stubUTMService{}
	handler := TrackUTM(svc, testLogger())

	rec := serve(handler, newRequest(http.MethodGet, "/utm/track?utm_medium=email&utm_campaign=spring", "", requestOpts{}))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "traffic recorded")

	rec = serve(handler, newRequest(http.MethodGet, "/utm/track?utm_medium=email", "", requestOpts{}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(handler, newRequest(http.MethodGet, "/utm/track?utm_medium=email&utm_campaign=gone", "", requestOpts{}))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	assert.Equal(t, [][2]string{{"email", "spring"}}, svc.tracked)
}

func TestCreateUTMLinkValidatesBaseURL(t *testing.T) {
	body := `{"baseUrl":"not a url","source":"news","medium":"email","campaign":"spring"}`
	rec := serve(CreateUTMLink(&stubUTMService{}, testLogger()), newRequest(http.MethodPost, "/utm", body, requestOpts{}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
