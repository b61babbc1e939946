package game

import (
	"crypto/rand"
	"math/big"
	mrand "math/rand"
	"sync"
)

// источник случайности для всех вероятностных решений игры:
// расстановка бомб, шанс попадания бота, разброс очков соперника
type Rand interface {
	Intn(n int) int
	Float64() float64
}

// криптографически безопасный источник (используется в проде)
type secureRand struct{}

// SecureRand возвращает источник на crypto/rand
func SecureRand() Rand { return secureRand{} }

func (secureRand) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		// запасной вариант - никогда не должно происходить
		return 0
	}
	return int(v.Int64())
}

func (secureRand) Float64() float64 {
	v, err := rand.Int(rand.Reader, big.NewInt(1<<53))
	if err != nil {
		return 0
	}
	return float64(v.Int64()) / float64(1<<53)
}

// детерминированный источник с сидом, потокобезопасный
type seededRand struct {
	mu sync.Mutex
	r  *mrand.Rand
}

// SeededRand возвращает воспроизводимый источник (тесты, реплеи)
func SeededRand(seed int64) Rand {
	return &seededRand{r: mrand.New(mrand.NewSource(seed))}
}

func (s *seededRand) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.Intn(n)
}

func (s *seededRand) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.Float64()
}
