package handler

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/taskhub/task-service/internal/core/domain"
)

var (
	pngBytes  = append([]byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, bytes.Repeat([]byte{0x01}, 32)...)
	jpegBytes = append([]byte{0xFF, 0xD8, 0xFF, 0xE0}, bytes.Repeat([]byte{0x02}, 32)...)
)

func multipartAvatar(t *testing.T, payload []byte) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	fw, err := w.CreateFormFile("avatar", "avatar.bin")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write(payload); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return buf, w.FormDataContentType()
}

func uploadContext(e *echo.Echo, payload []byte, t *testing.T) (echo.Context, *httptest.ResponseRecorder) {
	body, contentType := multipartAvatar(t, payload)
	req := httptest.NewRequest(http.MethodPost, "/users/me/avatar", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user", &domain.User{ID: "user_1"})
	c.Set("token", "current-token")
	return c, rec
}

func TestAvatarHandler_Upload_PNG(t *testing.T) {
	e := newEcho()
	var gotID string
	var gotData []byte
	stub := &stubUserService{
		setAvatarFn: func(_ context.Context, userID string, avatar []byte) error {
			gotID = userID
			gotData = avatar
			return nil
		},
	}
	h := NewAvatarHandler(stub)

	c, rec := uploadContext(e, pngBytes, t)
	if err := h.Upload(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotID != "user_1" || !bytes.Equal(gotData, pngBytes) {
		t.Fatalf("stored payload mismatch: id=%q len=%d", gotID, len(gotData))
	}
}

func TestAvatarHandler_Upload_JPEG(t *testing.T) {
	e := newEcho()
	stub := &stubUserService{
		setAvatarFn: func(context.Context, string, []byte) error { return nil },
	}
	h := NewAvatarHandler(stub)

	c, rec := uploadContext(e, jpegBytes, t)
	if err := h.Upload(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAvatarHandler_Upload_RejectsNonImage(t *testing.T) {
	e := newEcho()
	stub := &stubUserService{
		setAvatarFn: func(context.Context, string, []byte) error {
			t.Fatal("should not be called")
			return nil
		},
	}
	h := NewAvatarHandler(stub)

	c, _ := uploadContext(e, []byte("definitely not an image, just text"), t)
	err := h.Upload(c)
	if he := httpError(t, err); he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", he.Code)
	}
}

func TestAvatarHandler_Upload_RejectsOversize(t *testing.T) {
	e := newEcho()
	stub := &stubUserService{
		setAvatarFn: func(context.Context, string, []byte) error {
			t.Fatal("should not be called")
			return nil
		},
	}
	h := NewAvatarHandler(stub)

	big := append(append([]byte{}, pngBytes...), bytes.Repeat([]byte{0x00}, maxAvatarBytes)...)
	c, _ := uploadContext(e, big, t)
	err := h.Upload(c)
	if he := httpError(t, err); he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", he.Code)
	}
}

func TestAvatarHandler_Upload_MissingFile(t *testing.T) {
	e := newEcho()
	h := NewAvatarHandler(&stubUserService{})

	// Multipart form without the "avatar" field.
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	if err := w.WriteField("note", "no file here"); err != nil {
		t.Fatalf("write field: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/users/me/avatar", buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user", &domain.User{ID: "user_1"})

	err := h.Upload(c)
	if he := httpError(t, err); he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", he.Code)
	}
}

func TestAvatarHandler_Delete(t *testing.T) {
	e := newEcho()
	var gotID string
	stub := &stubUserService{
		deleteAvatarFn: func(_ context.Context, userID string) error {
			gotID = userID
			return nil
		},
	}
	h := NewAvatarHandler(stub)

	req := httptest.NewRequest(http.MethodDelete, "/users/me/avatar", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user", &domain.User{ID: "user_1"})

	if err := h.Delete(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK || gotID != "user_1" {
		t.Fatalf("expected 200 for user_1, got code=%d id=%q", rec.Code, gotID)
	}
}

func TestAvatarHandler_Get_Public(t *testing.T) {
	e := newEcho()
	stub := &stubUserService{
		avatarFn: func(_ context.Context, userID string) ([]byte, error) {
			if userID != "user_2" {
				t.Fatalf("unexpected id %q", userID)
			}
			return jpegBytes, nil
		},
	}
	h := NewAvatarHandler(stub)

	req := httptest.NewRequest(http.MethodGet, "/users/user_2/avatar", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/users/:id/avatar")
	c.SetParamNames("id")
	c.SetParamValues("user_2")

	if err := h.Get(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := rec.Header().Get(echo.HeaderContentType); got != "image/jpeg" {
		t.Errorf("expected image/jpeg content type, got %q", got)
	}
	if !bytes.Equal(rec.Body.Bytes(), jpegBytes) {
		t.Error("response body must be the raw image bytes")
	}
}

func TestAvatarHandler_Get_NotFound(t *testing.T) {
	e := newEcho()
	stub := &stubUserService{
		avatarFn: func(context.Context, string) ([]byte, error) {
			return nil, domain.ErrUserNotFound
		},
	}
	h := NewAvatarHandler(stub)

	req := httptest.NewRequest(http.MethodGet, "/users/user_9/avatar", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/users/:id/avatar")
	c.SetParamNames("id")
	c.SetParamValues("user_9")

	err := h.Get(c)
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound to propagate, got %v", err)
	}
}
