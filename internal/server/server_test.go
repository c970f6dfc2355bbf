package server

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	apihandlers "github.com/bigkaa/eduportal/internal/api/handlers"
	"github.com/bigkaa/eduportal/internal/repository"
	"github.com/bigkaa/eduportal/internal/service"
	"github.com/bigkaa/eduportal/internal/storage/filestore"
	"github.com/bigkaa/eduportal/internal/storage/recordlog"
	"github.com/bigkaa/eduportal/internal/storage/recordstore"
	"github.com/bigkaa/eduportal/internal/ui/auth"
	"github.com/bigkaa/eduportal/internal/ui/handlers"
	"github.com/bigkaa/eduportal/internal/ui/i18n"
	"github.com/bigkaa/eduportal/internal/ui/markdown"
	uimiddleware "github.com/bigkaa/eduportal/internal/ui/middleware"
)

// testApp — приложение целиком поверх in-memory журналов.
type testApp struct {
	srv       *httptest.Server
	mem       *recordlog.Memory
	uploadDir string
}

func newTestApp(t *testing.T, policy service.DownloadPolicy) *testApp {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mem := recordlog.NewMemory()
	repos := repository.New(mem, recordstore.PolicyLenient, logger)

	uploadDir := filepath.Join(t.TempDir(), "resources")
	files, err := filestore.New(uploadDir)
	if err != nil {
		t.Fatalf("filestore.New: %v", err)
	}

	const maxSize = 1 << 20
	accounts := service.NewAccountService(repos.Users, logger)
	learning := service.NewLearningService(repos.Enrollments, repos.Courses, repos.Webinars, logger)
	resources := service.NewResourceService(repos.Resources, files, policy, maxSize, logger)

	sessions, err := auth.NewSessionManager("test-secret", time.Hour, false)
	if err != nil {
		t.Fatalf("NewSessionManager: %v", err)
	}
	bundle, err := i18n.Load(logger)
	if err != nil {
		t.Fatalf("i18n.Load: %v", err)
	}

	router := NewRouter(logger, Handlers{
		Health:    apihandlers.NewHealthHandler(apihandlers.Check{Name: "uploads", Checker: files}),
		Auth:      handlers.NewAuthHandler(accounts, sessions, logger),
		Dashboard: handlers.NewDashboardHandler(learning, resources, logger),
		Learning:  handlers.NewLearningHandler(learning, markdown.NewRenderer(16, time.Minute, logger), logger),
		Resources: handlers.NewResourceHandler(resources, maxSize, logger),
		UIAuth:    uimiddleware.NewUIAuth(sessions, accounts, logger),
		I18n:      bundle,
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &testApp{srv: srv, mem: mem, uploadDir: uploadDir}
}

// client — браузер без автоматического перехода по redirect.
type client struct {
	t    *testing.T
	app  *testApp
	http *http.Client
}

func (app *testApp) newClient(t *testing.T) *client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatal(err)
	}
	return &client{
		t:   t,
		app: app,
		http: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func (c *client) do(req *http.Request) (*http.Response, string) {
	c.t.Helper()
	req.Header.Set("Accept-Language", "en")
	resp, err := c.http.Do(req)
	if err != nil {
		c.t.Fatalf("%s %s: %v", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.t.Fatalf("Ошибка чтения ответа: %v", err)
	}
	return resp, string(body)
}

func (c *client) get(path string) (*http.Response, string) {
	c.t.Helper()
	req, err := http.NewRequest(http.MethodGet, c.app.srv.URL+path, nil)
	if err != nil {
		c.t.Fatal(err)
	}
	return c.do(req)
}

func (c *client) post(path string, form url.Values) (*http.Response, string) {
	c.t.Helper()
	req, err := http.NewRequest(http.MethodPost, c.app.srv.URL+path, strings.NewReader(form.Encode()))
	if err != nil {
		c.t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

// upload отправляет multipart-форму; fieldName пустой — форма без файла.
func (c *client) upload(fieldName, filename string, content []byte) (*http.Response, string) {
	c.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if fieldName != "" {
		part, err := mw.CreateFormFile(fieldName, filename)
		if err != nil {
			c.t.Fatal(err)
		}
		if _, err := part.Write(content); err != nil {
			c.t.Fatal(err)
		}
	} else {
		_ = mw.WriteField("comment", "без файла")
	}
	if err := mw.Close(); err != nil {
		c.t.Fatal(err)
	}

	req, err := http.NewRequest(http.MethodPost, c.app.srv.URL+"/resources", &buf)
	if err != nil {
		c.t.Fatal(err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.do(req)
}

// follow выполняет GET по Location ответа-redirect.
func (c *client) follow(resp *http.Response) (*http.Response, string) {
	c.t.Helper()
	loc := resp.Header.Get("Location")
	if loc == "" {
		c.t.Fatalf("Ожидался redirect, статус %d", resp.StatusCode)
	}
	return c.get(loc)
}

func (c *client) hasSession() bool {
	u, _ := url.Parse(c.app.srv.URL)
	for _, ck := range c.http.Jar.Cookies(u) {
		if ck.Name == auth.SessionCookieName && ck.Value != "" {
			return true
		}
	}
	return false
}

func (c *client) registerAndLogin(username, password string) {
	c.t.Helper()
	c.post("/register", url.Values{"username": {username}, "password": {password}})
	resp, _ := c.post("/login", url.Values{"username": {username}, "password": {password}})
	if resp.Header.Get("Location") != "/dashboard" {
		c.t.Fatalf("Вход %s не удался: %d %s", username, resp.StatusCode, resp.Header.Get("Location"))
	}
}

func expectRedirect(t *testing.T, resp *http.Response, location string) {
	t.Helper()
	if resp.StatusCode != http.StatusFound && resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("Ожидался redirect на %s, статус %d", location, resp.StatusCode)
	}
	if got := resp.Header.Get("Location"); got != location {
		t.Fatalf("Location: want %s, got %s", location, got)
	}
}

func lines(t *testing.T, mem *recordlog.Memory, name string) []string {
	t.Helper()
	out, err := mem.ReadLines(context.Background(), name)
	if err != nil {
		t.Fatalf("ReadLines(%s): %v", name, err)
	}
	return out
}

func TestProtectedPagesRequireSession(t *testing.T) {
	app := newTestApp(t, service.DownloadShared)
	c := app.newClient(t)

	for _, path := range []string{"/dashboard", "/courses", "/webinars", "/create_course", "/resources", "/download/notes.pdf"} {
		resp, _ := c.get(path)
		expectRedirect(t, resp, "/login")
	}
}

// TestRegisterLogin — сценарий alice: регистрация, неверный и верный вход.
func TestRegisterLogin(t *testing.T) {
	app := newTestApp(t, service.DownloadShared)
	c := app.newClient(t)

	resp, _ := c.post("/register", url.Values{"username": {"alice"}, "password": {"s3cret"}})
	expectRedirect(t, resp, "/login")
	_, body := c.follow(resp)
	if !strings.Contains(body, "Registration successful. Please log in.") {
		t.Error("Нет сообщения об успешной регистрации")
	}

	users := lines(t, app.mem, repository.UsersLog)
	if len(users) != 1 || !strings.HasPrefix(users[0], "alice:") || strings.Contains(users[0], "s3cret") {
		t.Fatalf("Журнал пользователей: %v", users)
	}

	resp, _ = c.post("/login", url.Values{"username": {"alice"}, "password": {"wrong"}})
	expectRedirect(t, resp, "/login")
	if c.hasSession() {
		t.Fatal("Неверный пароль не должен создавать сессию")
	}
	_, body = c.follow(resp)
	if !strings.Contains(body, "Invalid credentials, please try again.") {
		t.Error("Нет сообщения о неверных учётных данных")
	}

	resp, _ = c.post("/login", url.Values{"username": {"alice"}, "password": {"s3cret"}})
	expectRedirect(t, resp, "/dashboard")
	if !c.hasSession() {
		t.Fatal("Сессия не создана")
	}
	resp, body = c.follow(resp)
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, "Welcome, alice") {
		t.Errorf("Кабинет: статус %d", resp.StatusCode)
	}

	resp, _ = c.post("/logout", nil)
	expectRedirect(t, resp, "/")
	resp, _ = c.get("/dashboard")
	expectRedirect(t, resp, "/login")
}

func TestRegister_Duplicate(t *testing.T) {
	app := newTestApp(t, service.DownloadShared)
	c := app.newClient(t)

	c.post("/register", url.Values{"username": {"alice"}, "password": {"one"}})
	resp, _ := c.post("/register", url.Values{"username": {"alice"}, "password": {"two"}})
	expectRedirect(t, resp, "/register")
	_, body := c.follow(resp)
	if !strings.Contains(body, "Username already exists. Please choose another.") {
		t.Error("Нет сообщения о занятом имени")
	}
	if users := lines(t, app.mem, repository.UsersLog); len(users) != 1 {
		t.Errorf("Журнал пользователей изменился: %v", users)
	}

	resp, _ = c.post("/register", url.Values{"username": {"a:b"}, "password": {"x"}})
	expectRedirect(t, resp, "/register")
}

// TestEnrollCourse — запись на курс отражается в журнале и на странице.
func TestEnrollCourse(t *testing.T) {
	app := newTestApp(t, service.DownloadShared)
	c := app.newClient(t)
	c.registerAndLogin("alice", "pw")

	resp, _ := c.post("/courses", url.Values{"course": {"Advanced Teaching Techniques"}})
	expectRedirect(t, resp, "/courses")
	_, body := c.follow(resp)
	if !strings.Contains(body, "You have successfully registered for the course: Advanced Teaching Techniques") {
		t.Error("Нет сообщения о записи")
	}

	got := lines(t, app.mem, repository.EnrollmentsLog)
	if len(got) != 1 || got[0] != "alice:Advanced Teaching Techniques" {
		t.Errorf("Журнал записей: %v", got)
	}

	resp, _ = c.post("/webinars", url.Values{"webinar": {"AI in Education"}})
	expectRedirect(t, resp, "/webinars")
	_, body = c.follow(resp)
	if !strings.Contains(body, "You have successfully registered for the webinar: AI in Education") {
		t.Error("Нет сообщения о записи на вебинар")
	}

	_, body = c.get("/dashboard")
	for _, title := range []string{"Advanced Teaching Techniques", "AI in Education"} {
		if !strings.Contains(body, title) {
			t.Errorf("Кабинет не содержит %q", title)
		}
	}

	resp, _ = c.post("/courses", url.Values{"course": {""}})
	expectRedirect(t, resp, "/courses")
	if got := lines(t, app.mem, repository.EnrollmentsLog); len(got) != 2 {
		t.Errorf("Пустое название не должно записываться: %v", got)
	}
}

func TestCreateCourse(t *testing.T) {
	app := newTestApp(t, service.DownloadShared)
	c := app.newClient(t)
	c.registerAndLogin("alice", "pw")

	resp, _ := c.post("/create_course", url.Values{
		"title":       {"Go for Students"},
		"description": {"Learn **Go** basics"},
		"schedule":    {"2024-10-01 18:00"},
	})
	expectRedirect(t, resp, "/courses")
	_, body := c.follow(resp)
	for _, want := range []string{"Course created successfully!", "Go for Students", "<strong>Go</strong>"} {
		if !strings.Contains(body, want) {
			t.Errorf("Страница курсов не содержит %q", want)
		}
	}

	got := lines(t, app.mem, repository.UserCoursesLog)
	if len(got) != 1 || got[0] != "alice:Go for Students:Learn **Go** basics:2024-10-01 18:00" {
		t.Errorf("Журнал курсов: %v", got)
	}

	resp, _ = c.post("/create_webinar", url.Values{"title": {"Bad: title"}, "description": {"d"}, "schedule": {"s"}})
	expectRedirect(t, resp, "/create_webinar")
	if got := lines(t, app.mem, repository.UserWebinarsLog); len(got) != 0 {
		t.Errorf("Некорректный вебинар записан: %v", got)
	}
}

// TestUploadDownload — сценарий bob: загрузка notes.pdf и скачивание.
func TestUploadDownload(t *testing.T) {
	app := newTestApp(t, service.DownloadShared)
	bob := app.newClient(t)
	bob.registerAndLogin("bob", "pw")

	content := []byte("%PDF-1.4 lecture notes")
	resp, _ := bob.upload("file", "notes.pdf", content)
	expectRedirect(t, resp, "/resources")
	_, body := bob.follow(resp)
	if !strings.Contains(body, "File successfully uploaded") || !strings.Contains(body, "notes.pdf") {
		t.Error("Страница материалов не отражает загрузку")
	}

	onDisk, err := os.ReadFile(filepath.Join(app.uploadDir, "notes.pdf"))
	if err != nil || !bytes.Equal(onDisk, content) {
		t.Fatalf("Файл на диске: %q, %v", onDisk, err)
	}
	logged := lines(t, app.mem, repository.ResourceLog)
	if len(logged) != 1 || !strings.HasPrefix(logged[0], "bob:notes.pdf:") {
		t.Fatalf("Журнал ресурсов: %v", logged)
	}

	alice := app.newClient(t)
	alice.registerAndLogin("alice", "pw")
	resp, body = alice.get("/download/notes.pdf")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Скачивание: статус %d", resp.StatusCode)
	}
	if body != string(content) {
		t.Errorf("Содержимое: %q", body)
	}
	if cd := resp.Header.Get("Content-Disposition"); !strings.HasPrefix(cd, "attachment") || !strings.Contains(cd, "notes.pdf") {
		t.Errorf("Content-Disposition: %q", cd)
	}

	resp, _ = alice.upload("file", "notes.pdf", []byte("чужой"))
	expectRedirect(t, resp, "/resources")
	_, body = alice.follow(resp)
	if !strings.Contains(body, "A file with this name was uploaded by another user.") {
		t.Error("Перезапись чужого файла должна отклоняться")
	}

	resp, _ = alice.get("/download/missing.pdf")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Незарегистрированный файл: want 404, got %d", resp.StatusCode)
	}
}

func TestUpload_MissingFile(t *testing.T) {
	app := newTestApp(t, service.DownloadShared)
	c := app.newClient(t)
	c.registerAndLogin("bob", "pw")

	resp, _ := c.upload("", "", nil)
	expectRedirect(t, resp, "/resources")
	_, body := c.follow(resp)
	if !strings.Contains(body, "No file part") {
		t.Error("Ожидалось сообщение No file part")
	}

	resp, _ = c.upload("file", "", nil)
	expectRedirect(t, resp, "/resources")
	_, body = c.follow(resp)
	if !strings.Contains(body, "No selected file") {
		t.Error("Ожидалось сообщение No selected file")
	}

	if got := lines(t, app.mem, repository.ResourceLog); len(got) != 0 {
		t.Errorf("Журнал ресурсов должен быть пуст: %v", got)
	}
}

func TestDownload_OwnerPolicy(t *testing.T) {
	app := newTestApp(t, service.DownloadOwner)
	bob := app.newClient(t)
	bob.registerAndLogin("bob", "pw")
	bob.upload("file", "notes.pdf", []byte("notes"))

	resp, _ := bob.get("/download/notes.pdf")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Автор: want 200, got %d", resp.StatusCode)
	}

	alice := app.newClient(t)
	alice.registerAndLogin("alice", "pw")
	resp, _ = alice.get("/download/notes.pdf")
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("Другой пользователь: want 403, got %d", resp.StatusCode)
	}
}

func TestSetLanguage(t *testing.T) {
	app := newTestApp(t, service.DownloadShared)
	c := app.newClient(t)

	req, _ := http.NewRequest(http.MethodPost, app.srv.URL+"/set-language", strings.NewReader("lang=ru"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Referer", app.srv.URL+"/login")
	resp, _ := c.do(req)
	expectRedirect(t, resp, "/login")

	_, body := c.get("/login")
	if !strings.Contains(body, `<html lang="ru">`) || !strings.Contains(body, "Вход") {
		t.Error("Страница должна отображаться на русском")
	}
}

func TestHealthAndStatic(t *testing.T) {
	app := newTestApp(t, service.DownloadShared)
	c := app.newClient(t)

	for _, path := range []string{"/health/live", "/health/ready", "/metrics", "/static/css/style.css"} {
		resp, _ := c.get(path)
		if resp.StatusCode != http.StatusOK {
			t.Errorf("%s: want 200, got %d", path, resp.StatusCode)
		}
	}
}
