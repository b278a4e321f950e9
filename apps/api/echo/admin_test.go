package echoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/thaimooc/platform/core/user"
)

func createUser(t *testing.T, name, username, pwd string, roles []string) user.User {
	t.Helper()
	usr, err := usrSvc.Create(context.Background(), user.NewUser{
		Name:     name,
		Username: username,
		Email:    username + "@test.local",
		Password: pwd,
		Roles:    roles,
	})
	if err != nil {
		t.Fatalf("createUser(): %v", err)
	}
	return usr
}

func TestLogin(t *testing.T) {
	createUser(t, "Login User", "login_user", "G0od#Pass", nil)

	t.Run("valid credentials", func(t *testing.T) {
		data := []byte(`{"username": "login_user", "password": "G0od#Pass"}`)
		req, rec := newRequest(http.MethodPost, "/v1/users/login", data)
		app.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		var body LoginResponse
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.NotEmpty(t, body.Token)
	})

	t.Run("wrong password", func(t *testing.T) {
		data := []byte(`{"username": "login_user", "password": "nope"}`)
		req, rec := newRequest(http.MethodPost, "/v1/users/login", data)
		app.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("deactivated account", func(t *testing.T) {
		usr := createUser(t, "Gone User", "gone_user", "G0od#Pass", nil)
		inactive := false
		_, err := usrSvc.Update(context.Background(), usr.ID, user.UpdateUser{IsActive: &inactive})
		assert.NoError(t, err)

		data := []byte(`{"username": "gone_user", "password": "G0od#Pass"}`)
		req, rec := newRequest(http.MethodPost, "/v1/users/login", data)
		app.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestTokenRefresh(t *testing.T) {
	usr := createUser(t, "Refresh User", "refresh_user", "G0od#Pass", []string{user.RoleAdmin})

	req, rec := newAuthRequest(http.MethodPost, "/v1/users/token-refresh", getToken(t, usr))
	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body LoginResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body.Token)
}

func TestAdminPermissions(t *testing.T) {
	admin := createUser(t, "Admin User", "admin_user", "G0od#Pass", []string{user.RoleAdmin})
	editor := createUser(t, "Editor User", "editor_user", "G0od#Pass", []string{user.RoleEditor})

	instData := []byte(`{"name": "มหาวิทยาลัยใหม่", "microsite_enabled": true}`)

	t.Run("unauthenticated is 401", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/v1/admin/institutions")
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("editor can list institutions", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/admin/institutions", getToken(t, editor))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("editor cannot create institutions", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/admin/institutions", getToken(t, editor), instData)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("admin creates institution", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/admin/institutions", getToken(t, admin), instData)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("editor manages content", func(t *testing.T) {
		data := []byte(`{"title": "คู่มือการลงทะเบียน", "slug": "register", "body": "ขั้นตอน"}`)
		req, rec := newAuthRequest(http.MethodPost, "/v1/admin/guides", getToken(t, editor), data)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("editor cannot manage users", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/users", getToken(t, editor))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestUploadRoundTrip(t *testing.T) {
	admin := createUser(t, "Upload Admin", "upload_admin", "G0od#Pass", []string{user.RoleAdmin})

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("file", "logo.png")
	assert.NoError(t, err)
	_, err = fw.Write([]byte("png-bytes"))
	assert.NoError(t, err)
	assert.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/admin/uploads", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+getToken(t, admin))
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)

	var body UploadResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body.Ref)
	assert.NotEqual(t, "logo.png", body.Ref)

	req, rec = newRequest(http.MethodGet, "/v1/uploads/"+body.Ref)
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, "png-bytes", rec.Body.String())
}
