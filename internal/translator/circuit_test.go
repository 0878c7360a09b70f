package translator

import (
	"testing"
	"time"
)

func TestCircuitBreakerOpensAtThreshold(t *testing.T) {
	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	cb := NewCircuitBreaker(3, 90*time.Second)
	cb.now = func() time.Time { return base }

	cb.RecordFailure()
	cb.RecordFailure()
	if cb.IsOpen() {
		t.Fatal("circuito não deveria abrir antes do limiar")
	}

	cb.RecordFailure()
	if !cb.IsOpen() {
		t.Fatal("circuito deveria abrir ao atingir o limiar")
	}
	if cb.FailureCount() != 3 {
		t.Errorf("FailureCount = %d, want 3", cb.FailureCount())
	}
}

func TestCircuitBreakerClosesAfterCooldown(t *testing.T) {
	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	current := base
	cb := NewCircuitBreaker(1, 90*time.Second)
	cb.now = func() time.Time { return current }

	cb.RecordFailure()
	if !cb.IsOpen() {
		t.Fatal("circuito deveria estar aberto")
	}

	current = base.Add(89 * time.Second)
	if !cb.IsOpen() {
		t.Error("circuito deveria continuar aberto antes do fim do cooldown")
	}

	current = base.Add(91 * time.Second)
	if cb.IsOpen() {
		t.Error("circuito deveria permitir chamadas após o cooldown")
	}
}

func TestCircuitBreakerSuccessResets(t *testing.T) {
	cb := NewCircuitBreaker(2, 90*time.Second)

	cb.RecordFailure()
	cb.RecordFailure()
	if !cb.IsOpen() {
		t.Fatal("circuito deveria estar aberto")
	}

	cb.RecordSuccess()
	if cb.IsOpen() {
		t.Error("sucesso deveria fechar o circuito")
	}
	if cb.FailureCount() != 0 {
		t.Errorf("FailureCount = %d, want 0", cb.FailureCount())
	}
}

func TestCircuitBreakerDefaults(t *testing.T) {
	cb := NewCircuitBreaker(0, 0)
	if cb.threshold != 5 {
		t.Errorf("threshold = %d, want 5", cb.threshold)
	}
	if cb.cooldown != 90*time.Second {
		t.Errorf("cooldown = %s, want 90s", cb.cooldown)
	}
}
