package v1

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	testcontainers "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"golang.org/x/crypto/bcrypt"

	"github.com/Soufiane-Tahiri/faculty-management-portal/internal/api/middleware"
	"github.com/Soufiane-Tahiri/faculty-management-portal/internal/repository/postgres"
	"github.com/Soufiane-Tahiri/faculty-management-portal/internal/service"
	"github.com/Soufiane-Tahiri/faculty-management-portal/internal/storage"
)

type envelopeBody struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type announcementBody struct {
	ID          uuid.UUID `json:"ida"`
	Title       string    `json:"titre"`
	Content     string    `json:"contenu"`
	PublishedAt time.Time `json:"date_pub"`
	Importance  int       `json:"deg_imp"`
	Authors     []struct {
		PersonID uuid.UUID `json:"idp"`
	} `json:"personne_annonce"`
	Document *struct {
		ID    uuid.UUID `json:"idd"`
		Title string    `json:"titre"`
		Path  string    `json:"chemin"`
	} `json:"document"`
}

func TestCreateAnnouncement_WithAttachment(t *testing.T) {
	env := setupPortalTestServer(t)
	cookie := loginAs(t, env.router, "prof@faculty.test", "password123")

	resp := performMultipartRequest(t, env.router, "/api/announcements", map[string]string{
		"title":      "Exam Schedule",
		"content":    "Final exams begin June 10th.",
		"importance": "3",
	}, &multipartFile{
		FieldName:   "file",
		FileName:    "schedule.pdf",
		ContentType: "application/pdf",
		Content:     []byte("%PDF-1.4 fake"),
	}, []*http.Cookie{cookie})

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var body envelopeBody
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Message != "Annonce créée avec succès" {
		t.Fatalf("unexpected message %q", body.Message)
	}

	var created announcementBody
	if err := json.Unmarshal(body.Data, &created); err != nil {
		t.Fatalf("decode announcement: %v", err)
	}
	if created.Title != "Exam Schedule" || created.Importance != 3 {
		t.Fatalf("unexpected announcement %+v", created)
	}
	if len(created.Authors) != 1 {
		t.Fatalf("expected one authorship link, got %d", len(created.Authors))
	}
	if created.Document == nil {
		t.Fatal("expected attached document")
	}
	if created.Document.Title != "Exam Schedule" {
		t.Fatalf("expected document title to mirror the announcement, got %q", created.Document.Title)
	}
	if !strings.HasPrefix(created.Document.Path, "uploads/") {
		t.Fatalf("expected a public uploads path, got %q", created.Document.Path)
	}

	promoted := filepath.Join(env.publicDir, filepath.FromSlash(created.Document.Path))
	if _, err := os.Stat(promoted); err != nil {
		t.Fatalf("expected promoted file at %s: %v", promoted, err)
	}
}

func TestCreateAnnouncement_NoAttachment(t *testing.T) {
	env := setupPortalTestServer(t)
	cookie := loginAs(t, env.router, "prof@faculty.test", "password123")

	resp := performMultipartRequest(t, env.router, "/api/announcements", map[string]string{
		"title":   "Library hours",
		"content": "Open until 22:00 during exams.",
	}, nil, []*http.Cookie{cookie})

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var body envelopeBody
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	var created announcementBody
	if err := json.Unmarshal(body.Data, &created); err != nil {
		t.Fatalf("decode announcement: %v", err)
	}
	if created.Importance != 1 {
		t.Fatalf("expected default importance 1, got %d", created.Importance)
	}
	if created.Document != nil {
		t.Fatal("expected no document")
	}
}

func TestCreateAnnouncement_UnsupportedFileType_Returns400(t *testing.T) {
	env := setupPortalTestServer(t)
	cookie := loginAs(t, env.router, "prof@faculty.test", "password123")

	resp := performMultipartRequest(t, env.router, "/api/announcements", map[string]string{
		"title":   "Bad upload",
		"content": "Should never reach the database.",
	}, &multipartFile{
		FieldName:   "file",
		FileName:    "script.sh",
		ContentType: "application/x-sh",
		Content:     []byte("#!/bin/sh"),
	}, []*http.Cookie{cookie})

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d: %s", resp.Code, resp.Body.String())
	}

	listResp := performJSONRequest(t, env.router, http.MethodGet, "/api/announcements", nil, nil)
	var items []announcementBody
	if err := json.Unmarshal(listResp.Body.Bytes(), &items); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	for _, item := range items {
		if item.Title == "Bad upload" {
			t.Fatal("rejected announcement must not be persisted")
		}
	}
}

func TestCreateAnnouncement_RequiresAuth(t *testing.T) {
	env := setupPortalTestServer(t)

	resp := performMultipartRequest(t, env.router, "/api/announcements", map[string]string{
		"title":   "Anonymous",
		"content": "No cookie attached.",
	}, nil, nil)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", resp.Code)
	}
}

func TestListAnnouncements_BareArraySortedByDate(t *testing.T) {
	env := setupPortalTestServer(t)
	cookie := loginAs(t, env.router, "prof@faculty.test", "password123")

	for _, title := range []string{"First", "Second", "Third"} {
		resp := performMultipartRequest(t, env.router, "/api/announcements", map[string]string{
			"title":   title,
			"content": "body of " + title,
		}, nil, []*http.Cookie{cookie})
		if resp.Code != http.StatusOK {
			t.Fatalf("seed announcement %s: status %d", title, resp.Code)
		}
		// date_pub has full timestamp precision; keep insert order observable.
		time.Sleep(10 * time.Millisecond)
	}

	resp := performJSONRequest(t, env.router, http.MethodGet, "/api/announcements?limit=2", nil, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}

	var items []announcementBody
	if err := json.Unmarshal(resp.Body.Bytes(), &items); err != nil {
		t.Fatalf("expected a bare JSON array: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].Title != "Third" || items[1].Title != "Second" {
		t.Fatalf("expected newest first, got %q then %q", items[0].Title, items[1].Title)
	}
}

// Updating an announcement may touch titre, contenu and deg_imp only;
// date_pub and the authorship links are set once at creation.
func TestUpdateAnnouncement_KeepsPublishedAtAndAuthors(t *testing.T) {
	env := setupPortalTestServer(t)
	cookie := loginAs(t, env.router, "prof@faculty.test", "password123")

	createResp := performMultipartRequest(t, env.router, "/api/announcements", map[string]string{
		"title":      "Course change",
		"content":    "Room moved to B204.",
		"importance": "1",
	}, nil, []*http.Cookie{cookie})
	if createResp.Code != http.StatusOK {
		t.Fatalf("create: expected status 200, got %d: %s", createResp.Code, createResp.Body.String())
	}

	var createBody envelopeBody
	if err := json.Unmarshal(createResp.Body.Bytes(), &createBody); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	var created announcementBody
	if err := json.Unmarshal(createBody.Data, &created); err != nil {
		t.Fatalf("decode created announcement: %v", err)
	}

	updateResp := performJSONRequest(t, env.router, http.MethodPut, "/api/announcements/"+created.ID.String(), map[string]any{
		"titre":   "Course change (updated)",
		"contenu": "Room moved to C310.",
		"deg_imp": 2,
	}, []*http.Cookie{cookie})
	if updateResp.Code != http.StatusOK {
		t.Fatalf("update: expected status 200, got %d: %s", updateResp.Code, updateResp.Body.String())
	}

	getResp := performJSONRequest(t, env.router, http.MethodGet, "/api/announcements/"+created.ID.String(), nil, nil)
	if getResp.Code != http.StatusOK {
		t.Fatalf("get: expected status 200, got %d", getResp.Code)
	}
	var after announcementBody
	if err := json.Unmarshal(getResp.Body.Bytes(), &after); err != nil {
		t.Fatalf("decode announcement: %v", err)
	}

	if after.Title != "Course change (updated)" || after.Importance != 2 {
		t.Fatalf("expected updated fields, got %+v", after)
	}
	if !after.PublishedAt.Equal(created.PublishedAt) {
		t.Fatalf("date_pub changed on update: %s -> %s", created.PublishedAt, after.PublishedAt)
	}
	if len(after.Authors) != 1 || after.Authors[0].PersonID != env.personID {
		t.Fatalf("authorship changed on update: %+v", after.Authors)
	}
}

func TestDeleteAnnouncement_RemovesDocumentAndFile(t *testing.T) {
	env := setupPortalTestServer(t)
	cookie := loginAs(t, env.router, "prof@faculty.test", "password123")

	createResp := performMultipartRequest(t, env.router, "/api/announcements", map[string]string{
		"title":   "Scholarship forms",
		"content": "Attached form due Friday.",
	}, &multipartFile{
		FieldName:   "file",
		FileName:    "form.pdf",
		ContentType: "application/pdf",
		Content:     []byte("%PDF-1.4 form"),
	}, []*http.Cookie{cookie})
	if createResp.Code != http.StatusOK {
		t.Fatalf("create: expected status 200, got %d: %s", createResp.Code, createResp.Body.String())
	}

	var createBody envelopeBody
	if err := json.Unmarshal(createResp.Body.Bytes(), &createBody); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	var created announcementBody
	if err := json.Unmarshal(createBody.Data, &created); err != nil {
		t.Fatalf("decode created announcement: %v", err)
	}
	if created.Document == nil {
		t.Fatal("expected attached document")
	}
	promoted := filepath.Join(env.publicDir, filepath.FromSlash(created.Document.Path))
	if _, err := os.Stat(promoted); err != nil {
		t.Fatalf("expected promoted file before delete: %v", err)
	}

	deleteResp := performJSONRequest(t, env.router, http.MethodDelete, "/api/announcements/"+created.ID.String(), nil, []*http.Cookie{cookie})
	if deleteResp.Code != http.StatusOK {
		t.Fatalf("delete: expected status 200, got %d: %s", deleteResp.Code, deleteResp.Body.String())
	}

	getResp := performJSONRequest(t, env.router, http.MethodGet, "/api/announcements/"+created.ID.String(), nil, nil)
	if getResp.Code != http.StatusNotFound {
		t.Fatalf("expected status 404 after delete, got %d", getResp.Code)
	}

	var docCount int
	if err := env.pool.QueryRow(
		context.Background(),
		`SELECT COUNT(*) FROM documents WHERE ida = $1`,
		created.ID,
	).Scan(&docCount); err != nil {
		t.Fatalf("count documents: %v", err)
	}
	if docCount != 0 {
		t.Fatalf("expected document rows to cascade, found %d", docCount)
	}

	if _, err := os.Stat(promoted); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected promoted file to be removed, stat err = %v", err)
	}
}

type portalTestEnv struct {
	router    *gin.Engine
	pool      *pgxpool.Pool
	publicDir string
	userID    uuid.UUID
	personID  uuid.UUID
}

type multipartFile struct {
	FieldName   string
	FileName    string
	ContentType string
	Content     []byte
}

func setupPortalTestServer(t *testing.T) *portalTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	pool := startPostgresForPortalTest(t)
	publicDir := t.TempDir()

	fileStore, err := storage.NewLocalStore(publicDir)
	if err != nil {
		t.Fatalf("init local store: %v", err)
	}

	personRepo := postgres.NewPersonRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	announcementRepo := postgres.NewAnnouncementRepository(pool)
	documentRepo := postgres.NewDocumentRepository(pool)
	alertRepo := postgres.NewAlertRepository(pool)
	resetTokenRepo := postgres.NewResetTokenRepository(pool)
	auditRepo := postgres.NewAuditRepository(pool)
	departmentRepo := postgres.NewDepartmentRepository(pool)
	programRepo := postgres.NewProgramRepository(pool)
	moduleRepo := postgres.NewCourseModuleRepository(pool)

	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate rsa key: %v", err)
	}
	middleware.SetJWTPublicKey(&privateKey.PublicKey)

	authSvc := service.NewAuthService(pool, userRepo, personRepo, resetTokenRepo, auditRepo, privateKey, nil)
	userSvc := service.NewUserService(userRepo, auditRepo, nil)
	announcementSvc := service.NewAnnouncementService(pool, announcementRepo, documentRepo, userRepo, auditRepo, fileStore, nil)
	alertSvc := service.NewAlertService(alertRepo, auditRepo, nil)
	academicSvc := service.NewAcademicService(departmentRepo, programRepo, moduleRepo, nil)

	router := gin.New()
	group := router.Group("/api")
	RegisterAuthRoutes(group, authSvc, userSvc)
	RegisterUserRoutes(group, userSvc)
	RegisterAnnouncementRoutes(group, announcementSvc)
	RegisterAlertRoutes(group, alertSvc)
	RegisterAcademicRoutes(group, academicSvc)

	personID, userID := seedProfessorAccount(t, pool)

	return &portalTestEnv{
		router:    router,
		pool:      pool,
		publicDir: publicDir,
		userID:    userID,
		personID:  personID,
	}
}

func seedProfessorAccount(t *testing.T, pool *pgxpool.Pool) (uuid.UUID, uuid.UUID) {
	t.Helper()
	ctx := context.Background()

	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	personID := uuid.New()
	if _, err := pool.Exec(
		ctx,
		`INSERT INTO personnes (idp, nom, prenom, email) VALUES ($1, 'Dupont', 'Jean', 'prof@faculty.test')`,
		personID,
	); err != nil {
		t.Fatalf("seed person: %v", err)
	}

	userID := uuid.New()
	if _, err := pool.Exec(
		ctx,
		`INSERT INTO users (id, email, name, password_hash, role, status, personne_id)
		 VALUES ($1, 'prof@faculty.test', 'Jean Dupont', $2, 'professor', 'ACTIVE', $3)`,
		userID,
		string(hashed),
		personID,
	); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	return personID, userID
}

func loginAs(t *testing.T, router http.Handler, email, password string) *http.Cookie {
	t.Helper()

	resp := performJSONRequest(t, router, http.MethodPost, "/api/auth/login", map[string]any{
		"email":    email,
		"password": password,
	}, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("login failed with status %d: %s", resp.Code, resp.Body.String())
	}

	cookie := findCookieByName(resp.Result().Cookies(), middleware.AccessTokenCookie)
	if cookie == nil || cookie.Value == "" {
		t.Fatal("expected access_token cookie to be set")
	}
	return cookie
}

func performJSONRequest(
	t *testing.T,
	router http.Handler,
	method string,
	path string,
	payload map[string]any,
	cookies []*http.Cookie,
) *httptest.ResponseRecorder {
	t.Helper()

	var bodyBytes []byte
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		bodyBytes = raw
	}

	req := httptest.NewRequest(method, path, bytes.NewReader(bodyBytes))
	req.Header.Set("Content-Type", "application/json")
	for _, cookie := range cookies {
		if cookie != nil {
			req.AddCookie(cookie)
		}
	}

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func performMultipartRequest(
	t *testing.T,
	router http.Handler,
	path string,
	fields map[string]string,
	file *multipartFile,
	cookies []*http.Cookie,
) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			t.Fatalf("write field %s: %v", name, err)
		}
	}

	if file != nil {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, file.FieldName, file.FileName))
		header.Set("Content-Type", file.ContentType)
		part, err := writer.CreatePart(header)
		if err != nil {
			t.Fatalf("create file part: %v", err)
		}
		if _, err := part.Write(file.Content); err != nil {
			t.Fatalf("write file content: %v", err)
		}
	}

	if err := writer.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	for _, cookie := range cookies {
		if cookie != nil {
			req.AddCookie(cookie)
		}
	}

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func findCookieByName(cookies []*http.Cookie, name string) *http.Cookie {
	for _, cookie := range cookies {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}

func startPostgresForPortalTest(t *testing.T) *pgxpool.Pool {
	t.Helper()
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "postgres",
				"POSTGRES_PASSWORD": "postgres",
				"POSTGRES_DB":       "faculty_test",
			},
			WaitingFor: wait.ForListeningPort("5432/tcp").WithStartupTimeout(90 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Skipf("skipping test because docker/testcontainers is unavailable: %v", err)
	}

	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("container mapped port: %v", err)
	}

	dsn := fmt.Sprintf("postgres://postgres:postgres@%s:%s/faculty_test?sslmode=disable", host, port.Port())
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("create pgx pool: %v", err)
	}
	t.Cleanup(pool.Close)

	deadline := time.Now().Add(30 * time.Second)
	for {
		err = pool.Ping(ctx)
		if err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("postgres did not become ready: %v", err)
		}
		time.Sleep(500 * time.Millisecond)
	}

	applyMigrationsForPortalTest(t, ctx, pool)
	return pool
}

func applyMigrationsForPortalTest(t *testing.T, ctx context.Context, pool *pgxpool.Pool) {
	t.Helper()

	migrationsDir := filepath.Join(findRepoRootForPortalTest(t), "migrations")
	entries, err := os.ReadDir(migrationsDir)
	if err != nil {
		t.Fatalf("read migrations dir: %v", err)
	}

	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".up.sql") {
			continue
		}
		files = append(files, entry.Name())
	}
	sort.Strings(files)

	for _, file := range files {
		raw, err := os.ReadFile(filepath.Join(migrationsDir, file))
		if err != nil {
			t.Fatalf("read migration %s: %v", file, err)
		}
		if strings.TrimSpace(string(raw)) == "" {
			continue
		}
		if _, err := pool.Exec(ctx, string(raw)); err != nil {
			t.Fatalf("apply migration %s: %v", file, err)
		}
	}
}

func findRepoRootForPortalTest(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}

	for {
		_, statErr := os.Stat(filepath.Join(dir, "go.mod"))
		if statErr == nil {
			return dir
		}
		if !errors.Is(statErr, os.ErrNotExist) {
			t.Fatalf("stat go.mod: %v", statErr)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not locate repository root")
		}
		dir = parent
	}
}
