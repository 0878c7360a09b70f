package translator

import (
	"log"
	"sync"
	"time"
)

// CircuitBreaker suspende chamadas ao serviço de tradução após falhas
// consecutivas, evitando retentativas inúteis durante indisponibilidades
// prolongadas. Após threshold falhas o circuito abre por cooldown; passado
// o prazo, a próxima chamada é permitida (half-open por permissão, sem
// estado dedicado). Qualquer sucesso zera o contador e fecha o circuito.
type CircuitBreaker struct {
	mu           sync.Mutex
	failureCount int
	openUntil    time.Time
	threshold    int
	cooldown     time.Duration
	now          func() time.Time
}

// NewCircuitBreaker cria um circuit breaker com os limites informados
func NewCircuitBreaker(threshold int, cooldown time.Duration) *CircuitBreaker {
	if threshold <= 0 {
		threshold = 5
	}
	if cooldown <= 0 {
		cooldown = 90 * time.Second
	}
	return &CircuitBreaker{
		threshold: threshold,
		cooldown:  cooldown,
		now:       time.Now,
	}
}

// IsOpen informa se o circuito está aberto (chamadas devem falhar imediatamente)
func (cb *CircuitBreaker) IsOpen() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.now().Before(cb.openUntil)
}

// RecordFailure registra uma falha; ao atingir o limiar, abre o circuito
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failureCount++
	if cb.failureCount >= cb.threshold {
		cb.openUntil = cb.now().Add(cb.cooldown)
		log.Printf("[Gateway] Circuito aberto após %d falhas consecutivas; suspenso por %s",
			cb.failureCount, cb.cooldown)
	}
}

// RecordSuccess zera o contador de falhas e fecha o circuito
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failureCount = 0
	cb.openUntil = time.Time{}
}

// FailureCount retorna o número atual de falhas consecutivas
func (cb *CircuitBreaker) FailureCount() int {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.failureCount
}
