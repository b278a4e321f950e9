package echoapi

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/thaimooc/platform/core/content"
	"github.com/thaimooc/platform/core/institution"
)

func newsForm(institutionID, title string, published bool) content.NewNews {
	return content.NewNews{
		InstitutionID: institutionID,
		Title:         title,
		Body:          "เนื้อหา",
		IsPublished:   published,
	}
}

func createInstitution(t *testing.T, name string, enabled bool) institution.Institution {
	t.Helper()
	inst, err := instSvc.Create(context.Background(), institution.NewInstitution{
		Name:             name,
		MicrositeEnabled: enabled,
	})
	if err != nil {
		t.Fatalf("createInstitution(): %v", err)
	}
	return inst
}

func TestPortalHome(t *testing.T) {
	req, rec := newRequest(http.MethodGet, "/v1")
	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var view struct {
		Site struct {
			Institution  institution.Institution `json:"institution"`
			PrimaryColor string                  `json:"primary_color"`
			Menus        institution.Menus       `json:"menus"`
		} `json:"site"`
		NewCourses []interface{} `json:"new_courses"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	// portal chrome, not an institution's
	assert.Empty(t, view.Site.Institution.ID)
	assert.Equal(t, institution.DefaultPrimaryColor, view.Site.PrimaryColor)
	assert.Len(t, view.Site.Menus.Header, 4)
	assert.NotNil(t, view.NewCourses)
}

func TestPortalCourseList(t *testing.T) {
	req, rec := newRequest(http.MethodGet, "/v1/courses")
	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var view struct {
		Courses []interface{} `json:"courses"`
		Page    int           `json:"page"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.NotNil(t, view.Courses)
	assert.Equal(t, 1, view.Page)
}

func TestMicrositeHome(t *testing.T) {
	active := createInstitution(t, "มหาวิทยาลัยทดสอบ", true)
	disabled := createInstitution(t, "มหาวิทยาลัยปิดปรับปรุง", false)

	t.Run("active site renders", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/v1/institutions/"+active.ID)
		app.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		var view struct {
			Site struct {
				Institution  institution.Institution `json:"institution"`
				PrimaryColor string                  `json:"primary_color"`
				Menus        institution.Menus       `json:"menus"`
			} `json:"site"`
			Banners        []interface{} `json:"banners"`
			NewCourses     []interface{} `json:"new_courses"`
			PopularCourses []interface{} `json:"popular_courses"`
			News           []interface{} `json:"news"`
		}
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
		assert.Equal(t, active.ID, view.Site.Institution.ID)
		assert.Equal(t, institution.DefaultPrimaryColor, view.Site.PrimaryColor)
		assert.Len(t, view.Site.Menus.Header, 4)

		// empty sections are arrays, never null
		assert.NotNil(t, view.Banners)
		assert.NotNil(t, view.NewCourses)
		assert.NotNil(t, view.PopularCourses)
		assert.NotNil(t, view.News)
	})

	t.Run("unknown institution is 404", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/v1/institutions/deadbeef")
		app.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("disabled microsite is 503 maintenance", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/v1/institutions/"+disabled.ID)
		app.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

		var body map[string]interface{}
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, true, body["maintenance"])
	})
}

func TestMicrositeCourseList(t *testing.T) {
	inst := createInstitution(t, "สถาบันรายวิชา", true)

	req, rec := newRequest(http.MethodGet, "/v1/institutions/"+inst.ID+"/courses?page=5")
	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var view struct {
		Courses    []interface{} `json:"courses"`
		Page       int           `json:"page"`
		TotalPages int           `json:"total_pages"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.NotNil(t, view.Courses)
	// page clamps to the last available page
	assert.Equal(t, 1, view.Page)
	assert.Equal(t, 1, view.TotalPages)
}

func TestMicrositeContact(t *testing.T) {
	inst := createInstitution(t, "สถาบันติดต่อ", true)

	t.Run("valid submission", func(t *testing.T) {
		data := []byte(`{"name": "Somchai", "email": "somchai@example.com", "subject": "ถามเรื่องใบประกาศ", "message": "ขอรายละเอียดเพิ่มเติม"}`)
		req, rec := newRequest(http.MethodPost, "/v1/institutions/"+inst.ID+"/contact", data)
		app.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)

		var body map[string]interface{}
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "open", body["status"])
		assert.Equal(t, inst.ID, body["institution_id"])
	})

	t.Run("missing email rejected", func(t *testing.T) {
		data := []byte(`{"name": "Somchai", "subject": "x", "message": "y"}`)
		req, rec := newRequest(http.MethodPost, "/v1/institutions/"+inst.ID+"/contact", data)
		app.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)

		var fldErrs map[string]string
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fldErrs))
		assert.Contains(t, fldErrs, "email")
	})
}

func TestMicrositeNewsDetailHidesDrafts(t *testing.T) {
	inst := createInstitution(t, "สถาบันข่าว", true)

	draft, err := contentSvc.CreateNews(context.Background(), newsForm(inst.ID, "ร่างข่าว", false))
	assert.NoError(t, err)
	published, err := contentSvc.CreateNews(context.Background(), newsForm(inst.ID, "ข่าวเผยแพร่", true))
	assert.NoError(t, err)

	req, rec := newRequest(http.MethodGet, "/v1/institutions/"+inst.ID+"/news/"+published.ID)
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req, rec = newRequest(http.MethodGet, "/v1/institutions/"+inst.ID+"/news/"+draft.ID)
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
