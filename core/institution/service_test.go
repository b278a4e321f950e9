package institution

import (
	"context"
	"log"
	"reflect"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/volatiletech/null/v8"

	"github.com/thaimooc/platform/core"
)

type fakeRepo struct {
	Repository

	institutions map[string]Institution
	menus        map[string][]MenuItem // key: id + ":" + position
	menuErr      error
}

func (r *fakeRepo) GetInstitution(_ context.Context, id string) (Institution, error) {
	if inst, ok := r.institutions[id]; ok {
		return inst, nil
	}
	return Institution{}, ErrNotFound
}

func (r *fakeRepo) QueryMenuItems(_ context.Context, id, position string) ([]MenuItem, error) {
	if r.menuErr != nil {
		return nil, r.menuErr
	}
	return r.menus[id+":"+position], nil
}

type nopLogger struct{}

func (nopLogger) Enable(bool)                      {}
func (nopLogger) Debug(string, ...interface{})     {}
func (nopLogger) Info(string, ...interface{})      {}
func (nopLogger) Warn(string, ...interface{})      {}
func (nopLogger) Error(string, ...interface{})     {}
func (l nopLogger) Fatal(msg string, _ ...interface{}) { log.Fatal(msg) }

func newTestService(repo Repository) *Service {
	return NewService(repo, nopLogger{}, &core.Config{})
}

func TestResolveSiteOutcomes(t *testing.T) {
	repo := &fakeRepo{
		institutions: map[string]Institution{
			"off": {ID: "off", Name: "ปิดปรับปรุง", MicrositeEnabled: false},
			"on":  {ID: "on", Name: "มจธ.", MicrositeEnabled: true},
		},
	}
	svc := newTestService(repo)

	tests := []struct {
		name    string
		id      string
		wantErr error
	}{
		{name: "missing institution", id: "nope", wantErr: ErrNotFound},
		{name: "disabled microsite", id: "off", wantErr: ErrSiteDisabled},
		{name: "enabled microsite", id: "on"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ResolveSite(context.Background(), tt.id)
			if errors.Cause(err) != tt.wantErr {
				t.Errorf("ResolveSite() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestResolveSiteBrandingDefaults(t *testing.T) {
	repo := &fakeRepo{
		institutions: map[string]Institution{
			"plain": {ID: "plain", MicrositeEnabled: true},
			"branded": {
				ID:               "branded",
				MicrositeEnabled: true,
				PrimaryColor:     null.StringFrom("#123456"),
				SecondaryColor:   null.StringFrom("#abcdef"),
			},
		},
	}
	svc := newTestService(repo)

	sc, err := svc.ResolveSite(context.Background(), "plain")
	assert.NoError(t, err)
	assert.Equal(t, DefaultPrimaryColor, sc.PrimaryColor)
	assert.Equal(t, DefaultSecondaryColor, sc.SecondaryColor)

	sc, err = svc.ResolveSite(context.Background(), "branded")
	assert.NoError(t, err)
	assert.Equal(t, "#123456", sc.PrimaryColor)
	assert.Equal(t, "#abcdef", sc.SecondaryColor)
}

func TestResolveSiteMenuFallbackChain(t *testing.T) {
	header := []MenuItem{
		{Label: "หลักสูตร", LabelEn: "Programs", Target: "/institutions/uni/programs", Order: 1},
	}
	footer := []MenuItem{
		{Label: "เกี่ยวกับเรา", LabelEn: "About", Target: "/institutions/uni/about", Order: 1},
	}

	t.Run("nothing configured: fixed default menu", func(t *testing.T) {
		repo := &fakeRepo{institutions: map[string]Institution{"uni": {ID: "uni", MicrositeEnabled: true}}}
		sc, err := newTestService(repo).ResolveSite(context.Background(), "uni")
		assert.NoError(t, err)
		assert.Equal(t, DefaultMenuItems("/institutions/uni"), sc.Menus.Header)
		assert.Len(t, sc.Menus.Header, 4)
		assert.Equal(t, sc.Menus.Header, sc.Menus.Footer)
	})

	t.Run("header only: footer inherits header", func(t *testing.T) {
		repo := &fakeRepo{
			institutions: map[string]Institution{"uni": {ID: "uni", MicrositeEnabled: true}},
			menus:        map[string][]MenuItem{"uni:header": header},
		}
		sc, err := newTestService(repo).ResolveSite(context.Background(), "uni")
		assert.NoError(t, err)
		assert.Equal(t, header, sc.Menus.Header)
		assert.Equal(t, header, sc.Menus.Footer)
	})

	t.Run("both configured: returned verbatim", func(t *testing.T) {
		repo := &fakeRepo{
			institutions: map[string]Institution{"uni": {ID: "uni", MicrositeEnabled: true}},
			menus:        map[string][]MenuItem{"uni:header": header, "uni:footer": footer},
		}
		sc, err := newTestService(repo).ResolveSite(context.Background(), "uni")
		assert.NoError(t, err)
		assert.Equal(t, header, sc.Menus.Header)
		assert.Equal(t, footer, sc.Menus.Footer)
	})

	t.Run("menu fetch failure counts as not configured", func(t *testing.T) {
		repo := &fakeRepo{
			institutions: map[string]Institution{"uni": {ID: "uni", MicrositeEnabled: true}},
			menuErr:      errors.New("connection refused"),
		}
		sc, err := newTestService(repo).ResolveSite(context.Background(), "uni")
		assert.NoError(t, err)
		assert.Equal(t, DefaultMenuItems("/institutions/uni"), sc.Menus.Header)
	})
}

func TestResolveSiteIdempotent(t *testing.T) {
	repo := &fakeRepo{
		institutions: map[string]Institution{
			"uni": {ID: "uni", MicrositeEnabled: true, PrimaryColor: null.StringFrom("#101010")},
		},
		menus: map[string][]MenuItem{
			"uni:header": {{Label: "หน้าแรก", Target: "/institutions/uni", Order: 1}},
		},
	}
	svc := newTestService(repo)

	first, err := svc.ResolveSite(context.Background(), "uni")
	assert.NoError(t, err)
	second, err := svc.ResolveSite(context.Background(), "uni")
	assert.NoError(t, err)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("ResolveSite() not idempotent:\nfirst  = %+v\nsecond = %+v", first, second)
	}
}
