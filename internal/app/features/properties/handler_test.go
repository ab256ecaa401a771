package properties_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/vitrine/internal/app/catalog"
	uierrors "github.com/dalemusser/vitrine/internal/app/features/errors"
	"github.com/dalemusser/vitrine/internal/app/features/properties"
	"github.com/dalemusser/vitrine/internal/app/store/memory"
	"github.com/dalemusser/vitrine/internal/app/system/auth"
	"github.com/dalemusser/vitrine/internal/app/system/notify"
	"github.com/dalemusser/vitrine/internal/app/system/paging"
	"github.com/dalemusser/vitrine/internal/app/system/ratelimit"
	"github.com/dalemusser/vitrine/internal/domain/models"
	"github.com/dalemusser/vitrine/internal/testutil"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const adminToken = "segredo-do-admin"

type fixture struct {
	store   *memory.Store
	sync    *catalog.Synchronizer
	handler *properties.Handler
	router  http.Handler
	session http.Handler
	seed    models.Property
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := zap.NewNop()

	store := memory.New(testutil.Property("Apartamento em Pinheiros"))
	sync := catalog.NewSynchronizer(store, catalog.New(), notify.Discard, logger)
	if _, err := sync.Reload(t.Context()); err != nil {
		t.Fatalf("Reload: %v", err)
	}

	sm, err := auth.NewSessionManager("test-session-key-must-be-32-chars-long", "test-session", "", time.Hour, false, logger)
	if err != nil {
		t.Fatalf("NewSessionManager: %v", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(adminToken), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	if err := sm.SetAdminTokenHash(string(hash)); err != nil {
		t.Fatalf("SetAdminTokenHash: %v", err)
	}

	h, err := properties.NewHandler(sync, sm, uierrors.NewErrorLogger(logger), logger)
	if err != nil {
		t.Fatalf("NewHandler: %v", err)
	}
	return &fixture{
		store:   store,
		sync:    sync,
		handler: h,
		router:  sm.Load(properties.Routes(h)),
		session: sm.Load(properties.SessionRoutes(h)),
		seed:    sync.Catalog().All()[0],
	}
}

func (f *fixture) do(req *http.Request) *testutil.ResponseRecorder {
	rec := testutil.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func admin(req *http.Request) *http.Request {
	req.Header.Set("Authorization", "Bearer "+adminToken)
	return req
}

type propertyBody struct {
	Property      models.Property       `json:"property"`
	Notifications []notify.Notification `json:"notifications"`
}

func TestRoutes_RequirePrivileged(t *testing.T) {
	f := newFixture(t)
	rec := f.do(testutil.NewRequest(http.MethodGet, "/"))
	rec.AssertStatus(t, http.StatusUnauthorized)

	rec = f.do(admin(testutil.NewRequest(http.MethodGet, "/")))
	rec.AssertStatus(t, http.StatusOK)
}

func TestServeList_Filters(t *testing.T) {
	f := newFixture(t)
	if _, err := f.sync.Create(t.Context(), testutil.RentalDraft("Kitnet Butantã", 1500)); err != nil {
		t.Fatalf("Create: %v", err)
	}

	tests := []struct {
		target string
		want   int
	}{
		{"/", 2},
		{"/?kind=rent", 1},
		{"/?q=pinheiros", 1},
		{"/?min_price=2000&max_price=1000", 0},
		{"/?page_size=1&page=2", 1},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rec := f.do(admin(testutil.NewRequest(http.MethodGet, tt.target)))
			rec.AssertStatus(t, http.StatusOK)
			var page paging.Page[models.Property]
			rec.DecodeJSON(t, &page)
			if len(page.Items) != tt.want {
				t.Errorf("items = %d, want %d", len(page.Items), tt.want)
			}
		})
	}
}

func TestHandleCreate(t *testing.T) {
	f := newFixture(t)
	d := testutil.Draft("Casa na Granja Viana")

	rec := f.do(admin(testutil.NewJSONRequest(http.MethodPost, "/", d)))
	rec.AssertStatus(t, http.StatusCreated)

	var body propertyBody
	rec.DecodeJSON(t, &body)
	if body.Property.ID == "" || body.Property.Version != 1 {
		t.Errorf("created = %+v", body.Property)
	}
	if len(body.Notifications) != 1 || body.Notifications[0].Kind != notify.Success {
		t.Errorf("notifications = %+v", body.Notifications)
	}
	if f.store.Len() != 2 || f.sync.Catalog().Len() != 2 {
		t.Errorf("store=%d catalog=%d, want 2 and 2", f.store.Len(), f.sync.Catalog().Len())
	}
}

func TestHandleCreate_Rejected(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"unknown field", `{"title":"x","color":"blue"}`, "body"},
		{"wrong type", `{"title":"x","price":"cara"}`, "price"},
		{"bad kind", `{"title":"x","kind":"leasing"}`, "kind"},
		{"domain validation", `{"title":"","price":0}`, "title"},
		{"not json", `{`, "body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			rec := f.do(admin(req))
			rec.AssertStatus(t, http.StatusUnprocessableEntity)

			var body uierrors.Body
			rec.DecodeJSON(t, &body)
			found := false
			for _, fe := range body.Fields {
				if fe.Field == tt.field {
					found = true
				}
			}
			if !found {
				t.Errorf("fields = %+v, want one on %q", body.Fields, tt.field)
			}
			if f.store.Len() != 1 {
				t.Errorf("store changed to %d rows", f.store.Len())
			}
		})
	}
}

func TestHandleUpdate_IfMatch(t *testing.T) {
	f := newFixture(t)
	d := models.DraftOf(f.seed)
	d.Title = "Apartamento reformado"

	req := admin(testutil.NewJSONRequest(http.MethodPut, "/"+f.seed.ID, d))
	req.Header.Set("If-Match", `"99"`)
	rec := f.do(req)
	rec.AssertStatus(t, http.StatusConflict)

	req = admin(testutil.NewJSONRequest(http.MethodPut, "/"+f.seed.ID, d))
	req.Header.Set("If-Match", `"1"`)
	rec = f.do(req)
	rec.AssertStatus(t, http.StatusOK)

	var body propertyBody
	rec.DecodeJSON(t, &body)
	if body.Property.Title != "Apartamento reformado" || body.Property.Version != 2 {
		t.Errorf("updated = %+v", body.Property)
	}
}

func TestETag_RoundTripsThroughIfMatch(t *testing.T) {
	f := newFixture(t)

	rec := f.do(admin(testutil.NewRequest(http.MethodGet, "/"+f.seed.ID)))
	rec.AssertStatus(t, http.StatusOK)
	etag := rec.Header().Get("ETag")
	if etag != `"1"` {
		t.Fatalf("detail ETag = %q, want %q", etag, `"1"`)
	}

	d := models.DraftOf(f.seed)
	d.Title = "Apartamento com varanda"
	req := admin(testutil.NewJSONRequest(http.MethodPut, "/"+f.seed.ID, d))
	req.Header.Set("If-Match", etag)
	rec = f.do(req)
	rec.AssertStatus(t, http.StatusOK)
	if got := rec.Header().Get("ETag"); got != `"2"` {
		t.Errorf("update ETag = %q, want %q", got, `"2"`)
	}

	req = admin(testutil.NewJSONRequest(http.MethodPut, "/"+f.seed.ID, d))
	req.Header.Set("If-Match", etag)
	f.do(req).AssertStatus(t, http.StatusConflict)
}

func TestHandleUpdate_Missing(t *testing.T) {
	f := newFixture(t)
	rec := f.do(admin(testutil.NewJSONRequest(http.MethodPut, "/missing", testutil.Draft("x"))))
	rec.AssertStatus(t, http.StatusNotFound)
}

func TestTransitions(t *testing.T) {
	f := newFixture(t)
	id := f.seed.ID

	rec := f.do(admin(testutil.NewRequest(http.MethodPost, "/"+id+"/visibility")))
	rec.AssertStatus(t, http.StatusOK)
	var body propertyBody
	rec.DecodeJSON(t, &body)
	if body.Property.IsPublic {
		t.Error("visibility toggle should hide the listing")
	}

	rec = f.do(admin(testutil.NewRequest(http.MethodPost, "/"+id+"/featured")))
	rec.AssertStatus(t, http.StatusOK)
	rec.DecodeJSON(t, &body)
	if !body.Property.Featured {
		t.Error("featured toggle should feature the listing")
	}

	rec = f.do(admin(testutil.NewJSONRequest(http.MethodPost, "/"+id+"/status", map[string]string{"status": "archived"})))
	rec.AssertStatus(t, http.StatusOK)
	rec.DecodeJSON(t, &body)
	if body.Property.Status != models.StatusArchived {
		t.Errorf("status = %q, want archived", body.Property.Status)
	}

	rec = f.do(admin(testutil.NewJSONRequest(http.MethodPost, "/"+id+"/status", map[string]string{"status": "sold"})))
	rec.AssertStatus(t, http.StatusUnprocessableEntity)

	stored, _ := f.store.Get(id)
	if stored.IsPublic || !stored.Featured || stored.Status != models.StatusArchived {
		t.Errorf("store = %+v", stored)
	}
}

func TestTransition_StoreFailureRollsBack(t *testing.T) {
	f := newFixture(t)
	f.store.FailNext("update", memory.ErrUnavailable)

	rec := f.do(admin(testutil.NewRequest(http.MethodPost, "/"+f.seed.ID+"/visibility")))
	rec.AssertStatus(t, http.StatusBadGateway)

	p, _ := f.sync.Catalog().Get(f.seed.ID)
	if p.IsPublic != f.seed.IsPublic {
		t.Error("failed toggle should leave the catalog unchanged")
	}
}

func TestHandleDelete(t *testing.T) {
	f := newFixture(t)
	rec := f.do(admin(testutil.NewRequest(http.MethodDelete, "/"+f.seed.ID)))
	rec.AssertStatus(t, http.StatusOK)
	if f.sync.Catalog().Len() != 0 {
		t.Error("deleted property still in catalog")
	}

	rec = f.do(admin(testutil.NewRequest(http.MethodDelete, "/"+f.seed.ID)))
	rec.AssertStatus(t, http.StatusNotFound)
}

func uploadRequest(t *testing.T, filename, content string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	if _, err := fw.Write([]byte(content)); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/import", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return admin(req)
}

type importBody struct {
	SuccessCount  int                   `json:"success_count"`
	ErrorCount    int                   `json:"error_count"`
	Failures      []catalog.RowFailure  `json:"failures"`
	Notifications []notify.Notification `json:"notifications"`
	Error         string                `json:"error"`
}

func TestHandleImport(t *testing.T) {
	f := newFixture(t)
	csv := "Título,Endereço,Tipo,Preço,Quartos,Banheiros,Área,Imagem\n" +
		"Casa Jardins,Rua Oscar Freire 10,Venda,1200000,4,3,250,https://img.example.com/a.jpg\n" +
		"Studio Centro,Rua Augusta 5,Aluguel,,1,1,32,https://img.example.com/b.jpg\n"

	rec := f.do(uploadRequest(t, "imoveis.csv", csv))
	rec.AssertStatus(t, http.StatusOK)

	var body importBody
	rec.DecodeJSON(t, &body)
	if body.SuccessCount != 1 || body.ErrorCount != 1 {
		t.Fatalf("summary = %+v, want {1, 1}", body)
	}
	if len(body.Failures) != 1 || body.Failures[0].Line != 3 {
		t.Errorf("failures = %+v", body.Failures)
	}
	if len(body.Notifications) != 2 {
		t.Errorf("notifications = %+v, want success and error", body.Notifications)
	}
	if f.sync.Catalog().Len() != 2 {
		t.Errorf("catalog = %d, want 2", f.sync.Catalog().Len())
	}
}

func TestHandleImport_Unreadable(t *testing.T) {
	f := newFixture(t)
	rec := f.do(uploadRequest(t, "imoveis.pdf", "%PDF-1.4"))
	rec.AssertStatus(t, http.StatusBadRequest)
	if f.store.Len() != 1 {
		t.Error("nothing should be submitted for an unreadable workbook")
	}
}

func TestHandleImport_MissingFile(t *testing.T) {
	f := newFixture(t)
	req := admin(httptest.NewRequest(http.MethodPost, "/import", strings.NewReader("")))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=x")
	rec := f.do(req)
	rec.AssertStatus(t, http.StatusBadRequest)
}

func TestHandleExport(t *testing.T) {
	f := newFixture(t)

	rec := f.do(admin(testutil.NewRequest(http.MethodGet, "/export?format=csv&filename=lista")))
	rec.AssertStatus(t, http.StatusOK)
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("Content-Type = %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, `filename="lista.csv"`) {
		t.Errorf("Content-Disposition = %q", cd)
	}
	rec.AssertContains(t, "Apartamento em Pinheiros")

	rec = f.do(admin(testutil.NewRequest(http.MethodGet, "/export")))
	rec.AssertStatus(t, http.StatusOK)
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, catalog.DefaultExportFilename) {
		t.Errorf("Content-Disposition = %q", cd)
	}

	rec = f.do(admin(testutil.NewRequest(http.MethodGet, "/export?format=pdf")))
	rec.AssertStatus(t, http.StatusBadRequest)
}

func TestHandleReload(t *testing.T) {
	f := newFixture(t)
	if _, err := f.store.Insert(t.Context(), testutil.Property("Inserido por fora")); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	rec := f.do(admin(testutil.NewRequest(http.MethodPost, "/reload")))
	rec.AssertStatus(t, http.StatusOK)
	if f.sync.Catalog().Len() != 2 {
		t.Errorf("catalog = %d after reload, want 2", f.sync.Catalog().Len())
	}

	f.store.SetDown(true)
	rec = f.do(admin(testutil.NewRequest(http.MethodPost, "/reload")))
	rec.AssertStatus(t, http.StatusBadGateway)
}

func TestSession(t *testing.T) {
	f := newFixture(t)

	rec := testutil.NewRecorder()
	f.session.ServeHTTP(rec, testutil.NewJSONRequest(http.MethodPost, "/", map[string]string{"token": "errado"}))
	rec.AssertStatus(t, http.StatusUnauthorized)

	rec = testutil.NewRecorder()
	f.session.ServeHTTP(rec, testutil.NewJSONRequest(http.MethodPost, "/", map[string]string{"token": adminToken}))
	rec.AssertStatus(t, http.StatusOK)
	cookies := rec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("sign-in should set a session cookie")
	}

	req := testutil.NewRequest(http.MethodGet, "/")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	out := f.do(req)
	out.AssertStatus(t, http.StatusOK)
}

func TestSession_RateLimited(t *testing.T) {
	f := newFixture(t)
	f.handler.SignIns = ratelimit.New(2, time.Hour)

	for i, want := range []int{http.StatusUnauthorized, http.StatusUnauthorized, http.StatusTooManyRequests} {
		rec := testutil.NewRecorder()
		f.session.ServeHTTP(rec, testutil.NewJSONRequest(http.MethodPost, "/", map[string]string{"token": "errado"}))
		if rec.Code != want {
			t.Errorf("attempt %d: status = %d, want %d", i+1, rec.Code, want)
		}
	}

	// The right token is still refused until the window passes.
	rec := testutil.NewRecorder()
	f.session.ServeHTTP(rec, testutil.NewJSONRequest(http.MethodPost, "/", map[string]string{"token": adminToken}))
	rec.AssertStatus(t, http.StatusTooManyRequests)
}
