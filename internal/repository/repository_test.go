package repository

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bigkaa/eduportal/internal/domain/credential"
	"github.com/bigkaa/eduportal/internal/domain/model"
	"github.com/bigkaa/eduportal/internal/storage/flatfile"
	"github.com/bigkaa/eduportal/internal/storage/recordlog"
	"github.com/bigkaa/eduportal/internal/storage/recordstore"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func fixedClock() time.Time {
	return time.Date(2024, 9, 1, 10, 15, 0, 0, time.Local)
}

// TestUserRepository_AddAndGet проверяет регистрацию и чтение учётных данных.
func TestUserRepository_AddAndGet(t *testing.T) {
	repo := NewUserRepository(recordlog.NewMemory(), recordstore.PolicyLenient, testLogger())
	ctx := context.Background()

	digest := credential.Digest("pw1")
	if err := repo.Add(ctx, model.User{Username: "alice", PasswordDigest: digest}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	u, err := repo.Get(ctx, "alice")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if u.PasswordDigest != digest {
		t.Errorf("дайджест = %s, ожидается %s", u.PasswordDigest, digest)
	}

	if _, err := repo.Get(ctx, "bob"); !errors.Is(err, ErrNotFound) {
		t.Errorf("ожидалась ErrNotFound, получено %v", err)
	}

	ok, err := repo.Exists(ctx, "alice")
	if err != nil || !ok {
		t.Errorf("Exists(alice) = %v, %v", ok, err)
	}
}

// TestUserRepository_DuplicateLeavesLogUnchanged проверяет отказ при повторной регистрации.
func TestUserRepository_DuplicateLeavesLogUnchanged(t *testing.T) {
	mem := recordlog.NewMemory()
	repo := NewUserRepository(mem, recordstore.PolicyLenient, testLogger())
	ctx := context.Background()

	first := model.User{Username: "alice", PasswordDigest: credential.Digest("pw1")}
	if err := repo.Add(ctx, first); err != nil {
		t.Fatalf("Add: %v", err)
	}

	err := repo.Add(ctx, model.User{Username: "alice", PasswordDigest: credential.Digest("other")})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("ожидалась ErrConflict, получено %v", err)
	}

	lines, _ := mem.ReadLines(ctx, UsersLog)
	if len(lines) != 1 || lines[0] != "alice:"+first.PasswordDigest {
		t.Errorf("журнал изменился: %v", lines)
	}
}

func TestUserRepository_RejectsBadDigest(t *testing.T) {
	mem := recordlog.NewMemory()
	mem.Seed(UsersLog, "alice:plaintext", "bob:"+credential.Digest("pw"))
	repo := NewUserRepository(mem, recordstore.PolicyLenient, testLogger())

	all, err := repo.All(context.Background())
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if _, ok := all["alice"]; ok {
		t.Error("строка с открытым паролем должна быть пропущена")
	}
	if _, ok := all["bob"]; !ok {
		t.Error("bob должен присутствовать")
	}
}

// TestEnrollmentRepository_Order проверяет порядок и дубликаты записей.
func TestEnrollmentRepository_Order(t *testing.T) {
	repo := NewEnrollmentRepository(recordlog.NewMemory(), recordstore.PolicyLenient, testLogger())
	ctx := context.Background()

	for _, e := range []model.Enrollment{
		{Username: "alice", Title: "Advanced Teaching Techniques"},
		{Username: "bob", Title: "Effective Online Teaching"},
		{Username: "alice", Title: "Classroom Management"},
		{Username: "alice", Title: "Advanced Teaching Techniques"},
	} {
		if err := repo.Add(ctx, e); err != nil {
			t.Fatalf("Add(%v): %v", e, err)
		}
	}

	titles, err := repo.ByUser(ctx, "alice")
	if err != nil {
		t.Fatalf("ByUser: %v", err)
	}
	want := []string{"Advanced Teaching Techniques", "Classroom Management", "Advanced Teaching Techniques"}
	if strings.Join(titles, "|") != strings.Join(want, "|") {
		t.Errorf("записи alice = %v, ожидается %v", titles, want)
	}

	none, err := repo.ByUser(ctx, "carol")
	if err != nil || len(none) != 0 {
		t.Errorf("ByUser(carol) = %v, %v", none, err)
	}
}

// TestContentRepository_ScheduleWithTime проверяет дату с временем в последнем поле.
func TestContentRepository_ScheduleWithTime(t *testing.T) {
	mem := recordlog.NewMemory()
	repo := NewContentRepository(mem, UserWebinarsLog, recordstore.PolicyStrict, testLogger())
	ctx := context.Background()

	in := model.AuthoredContent{
		Owner: "alice", Title: "Flipped Classroom",
		Description: "Hands-on session", Schedule: "2024-10-01 18:00",
	}
	if err := repo.Add(ctx, in); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := repo.Add(ctx, model.AuthoredContent{Owner: "bob", Title: "Other", Schedule: "2024-11-01"}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	lines, _ := mem.ReadLines(ctx, UserWebinarsLog)
	if lines[0] != "alice:Flipped Classroom:Hands-on session:2024-10-01 18:00" {
		t.Errorf("строка журнала = %q", lines[0])
	}

	own, err := repo.ByOwner(ctx, "alice")
	if err != nil {
		t.Fatalf("ByOwner: %v", err)
	}
	if len(own) != 1 || own[0] != in {
		t.Errorf("ByOwner(alice) = %v", own)
	}

	all, _ := repo.List(ctx)
	if len(all) != 2 {
		t.Errorf("записей = %d, ожидается 2", len(all))
	}
}

func TestContentRepository_RejectsDelimiterInTitle(t *testing.T) {
	repo := NewContentRepository(recordlog.NewMemory(), UserCoursesLog, recordstore.PolicyLenient, testLogger())

	err := repo.Add(context.Background(), model.AuthoredContent{Owner: "alice", Title: "Part 1: Intro"})
	if !errors.Is(err, recordstore.ErrInvalidField) {
		t.Errorf("ожидалась ErrInvalidField, получено %v", err)
	}
}

// TestResourceLogRepository_Add проверяет формат строки и разбор времени.
func TestResourceLogRepository_Add(t *testing.T) {
	mem := recordlog.NewMemory()
	repo := NewResourceLogRepository(mem, recordstore.PolicyStrict, fixedClock, testLogger())
	ctx := context.Background()

	entry, err := repo.Add(ctx, "bob", "notes.pdf")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	lines, _ := mem.ReadLines(ctx, ResourceLog)
	if len(lines) != 1 || lines[0] != "bob:notes.pdf:2024-09-01 10:15:00" {
		t.Fatalf("журнал = %v", lines)
	}

	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("записей = %d, ожидается 1", len(list))
	}
	if !list[0].UploadedAt.Equal(entry.UploadedAt) || list[0].Filename != "notes.pdf" {
		t.Errorf("запись = %+v, ожидается %+v", list[0], entry)
	}
}

func TestResourceLogRepository_Latest(t *testing.T) {
	repo := NewResourceLogRepository(recordlog.NewMemory(), recordstore.PolicyLenient, fixedClock, testLogger())
	ctx := context.Background()

	_, _ = repo.Add(ctx, "bob", "notes.pdf")
	_, _ = repo.Add(ctx, "alice", "slides.pdf")
	_, _ = repo.Add(ctx, "bob", "slides.pdf")

	latest, err := repo.Latest(ctx, "slides.pdf")
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if latest.Username != "bob" {
		t.Errorf("последний владелец = %s, ожидается bob", latest.Username)
	}

	if _, err := repo.Latest(ctx, "missing.pdf"); !errors.Is(err, ErrNotFound) {
		t.Errorf("ожидалась ErrNotFound, получено %v", err)
	}
}

// TestMalformedLine_UnifiedPolicy проверяет одинаковую обработку повреждённой
// строки в журнале ресурсов и в журнале записей.
func TestMalformedLine_UnifiedPolicy(t *testing.T) {
	ctx := context.Background()
	seed := func() *recordlog.Memory {
		mem := recordlog.NewMemory()
		mem.Seed(ResourceLog, "bob:notes.pdf:2024-09-01 10:15:00", "carol:broken")
		mem.Seed(EnrollmentsLog, "alice:Classroom Management", "garbage")
		return mem
	}

	t.Run("lenient", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		repos := New(seed(), recordstore.PolicyLenient, logger)

		entries, err := repos.Resources.List(ctx)
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(entries) != 1 || entries[0].Username != "bob" {
			t.Errorf("записи журнала ресурсов = %+v", entries)
		}

		enrollments, err := repos.Enrollments.All(ctx)
		if err != nil {
			t.Fatalf("All: %v", err)
		}
		if len(enrollments) != 1 || len(enrollments["alice"]) != 1 {
			t.Errorf("записи = %v", enrollments)
		}

		out := buf.String()
		if !strings.Contains(out, ResourceLog) || !strings.Contains(out, EnrollmentsLog) {
			t.Errorf("в логе нет диагностики по обоим журналам:\n%s", out)
		}
	})

	t.Run("strict", func(t *testing.T) {
		repos := New(seed(), recordstore.PolicyStrict, testLogger())

		if _, err := repos.Resources.List(ctx); !errors.Is(err, recordstore.ErrMalformedRecord) {
			t.Errorf("журнал ресурсов: ожидалась ErrMalformedRecord, получено %v", err)
		}
		if _, err := repos.Enrollments.All(ctx); !errors.Is(err, recordstore.ErrMalformedRecord) {
			t.Errorf("журнал записей: ожидалась ErrMalformedRecord, получено %v", err)
		}
	})
}

// TestRepositories_FlatFileFormat проверяет формат файлов на диске.
func TestRepositories_FlatFileFormat(t *testing.T) {
	dir := t.TempDir()
	store, err := flatfile.New(dir, testLogger())
	if err != nil {
		t.Fatalf("flatfile.New: %v", err)
	}
	repos := New(store, recordstore.PolicyStrict, testLogger())
	ctx := context.Background()

	if err := repos.Users.Add(ctx, model.User{Username: "alice", PasswordDigest: credential.Digest("pw1")}); err != nil {
		t.Fatal(err)
	}
	if err := repos.Enrollments.Add(ctx, model.Enrollment{Username: "alice", Title: "Advanced Teaching Techniques"}); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(dir, EnrollmentsLog))
	if err != nil {
		t.Fatalf("файл журнала не создан: %v", err)
	}
	if string(data) != "alice:Advanced Teaching Techniques\n" {
		t.Errorf("содержимое = %q", data)
	}

	users, err := os.ReadFile(filepath.Join(dir, UsersLog))
	if err != nil {
		t.Fatal(err)
	}
	if string(users) != "alice:"+credential.Digest("pw1")+"\n" {
		t.Errorf("users.txt = %q", users)
	}
}
