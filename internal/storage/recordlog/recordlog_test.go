package recordlog

import (
	"context"
	"testing"
)

func TestMemory_AbsentLogIsEmpty(t *testing.T) {
	m := NewMemory()

	lines, err := m.ReadLines(context.Background(), "users.txt")
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}
	if len(lines) != 0 {
		t.Errorf("ожидался пустой журнал, получено %d строк", len(lines))
	}
}

func TestMemory_AppendAndRead(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	for _, l := range []string{"a:1", "b:2"} {
		if err := m.AppendLine(ctx, "log", l); err != nil {
			t.Fatalf("AppendLine: %v", err)
		}
	}

	lines, err := m.ReadLines(ctx, "log")
	if err != nil {
		t.Fatalf("ReadLines: %v", err)
	}
	if len(lines) != 2 || lines[0] != "a:1" || lines[1] != "b:2" {
		t.Errorf("получено %v", lines)
	}

	// Журналы изолированы по имени
	other, _ := m.ReadLines(ctx, "other")
	if len(other) != 0 {
		t.Errorf("журнал other должен быть пуст: %v", other)
	}
}

// TestMemory_ReturnsCopy проверяет, что вызывающий код не может изменить журнал.
func TestMemory_ReturnsCopy(t *testing.T) {
	m := NewMemory()
	m.Seed("log", "x")

	lines, _ := m.ReadLines(context.Background(), "log")
	lines[0] = "changed"

	again, _ := m.ReadLines(context.Background(), "log")
	if again[0] != "x" {
		t.Fatalf("журнал изменён через возвращённый срез: %v", again)
	}
}

func TestMemory_CancelledContext(t *testing.T) {
	m := NewMemory()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := m.AppendLine(ctx, "log", "x"); err == nil {
		t.Error("ожидалась ошибка отменённого контекста")
	}
}
