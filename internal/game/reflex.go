package game

import (
	"errors"
	"time"
)

const (
	ReflexTurnDuration  = 10 * time.Second
	ReflexSpawnEvery    = 600 * time.Millisecond
	ReflexCheckEvery    = 100 * time.Millisecond
	ReflexIdealDelay    = 1000 * time.Millisecond // кольцо сходится через секунду после появления
	ReflexPerfectWindow = 250 * time.Millisecond
	ReflexGoodWindow    = 550 * time.Millisecond

	ReflexPerfectPoints = 3
	ReflexGoodPoints    = 1
)

var (
	ErrTurnOver      = errors.New("ход уже завершен")
	ErrNotYourTurn   = errors.New("сейчас ходит соперник")
	ErrTargetUnknown = errors.New("мишень не найдена")
	ErrTargetHit     = errors.New("по мишени уже попали")
)

type HitGrade string

const (
	HitPerfect HitGrade = "perfect"
	HitGood    HitGrade = "good"
	HitMiss    HitGrade = "miss"
)

// ScoreTap оценивает нажатие по времени жизни мишени в момент тапа
func ScoreTap(age time.Duration) (HitGrade, int) {
	diff := age - ReflexIdealDelay
	if diff < 0 {
		diff = -diff
	}
	switch {
	case diff < ReflexPerfectWindow:
		return HitPerfect, ReflexPerfectPoints
	case diff < ReflexGoodWindow:
		return HitGood, ReflexGoodPoints
	default:
		return HitMiss, 0
	}
}

// ReflexTarget - мишень, живет до попадания или до конца хода
type ReflexTarget struct {
	ID             int        `json:"id"`
	X              int        `json:"x"` // проценты от ширины игрового поля
	Y              int        `json:"y"`
	SpawnedAt      time.Time  `json:"spawned_at"`
	Hit            bool       `json:"hit"`
	SimulatedHitAt *time.Time `json:"-"`

	planned bool // бот уже решил, попадет ли он по этой мишени
}

// TapResult - результат нажатия игрока
type TapResult struct {
	TargetID int      `json:"target_id"`
	Grade    HitGrade `json:"grade"`
	Points   int      `json:"points"`
	Shake    bool     `json:"shake"` // промах - трясем экран
	Score    int      `json:"score"`
}

// ReflexTurn - один ход одной стороны в игре "Рефлекс"
type ReflexTurn struct {
	side    Side
	round   int
	targets []*ReflexTarget
	nextID  int
	score   int
	over    bool
}

// NewReflexTurn создает пустой ход
func NewReflexTurn(side Side, round int) *ReflexTurn {
	return &ReflexTurn{side: side, round: round}
}

// Spawn создает новую мишень в случайной точке игрового поля
func (t *ReflexTurn) Spawn(now time.Time, rng Rand) *ReflexTarget {
	if t.over {
		return nil
	}
	t.nextID++
	target := &ReflexTarget{
		ID:        t.nextID,
		X:         rng.Intn(70) + 15,
		Y:         rng.Intn(60) + 20,
		SpawnedAt: now,
	}
	t.targets = append(t.targets, target)
	return target
}

// Tap обрабатывает нажатие игрока по мишени
func (t *ReflexTurn) Tap(id int, now time.Time) (TapResult, error) {
	if t.over {
		return TapResult{}, ErrTurnOver
	}
	if t.side != SideHuman {
		return TapResult{}, ErrNotYourTurn
	}
	target := t.find(id)
	if target == nil {
		return TapResult{}, ErrTargetUnknown
	}
	if target.Hit {
		return TapResult{}, ErrTargetHit
	}

	grade, points := ScoreTap(now.Sub(target.SpawnedAt))
	target.Hit = true
	t.score += points

	return TapResult{
		TargetID: id,
		Grade:    grade,
		Points:   points,
		Shake:    grade == HitMiss,
		Score:    t.score,
	}, nil
}

// Credit засчитывает попадание соперника, не больше одного раза на мишень
func (t *ReflexTurn) Credit(id, points int) bool {
	if t.over {
		return false
	}
	target := t.find(id)
	if target == nil || target.Hit {
		return false
	}
	target.Hit = true
	t.score += points
	return true
}

// Open возвращает мишени, по которым еще не попали
func (t *ReflexTurn) Open() []*ReflexTarget {
	open := make([]*ReflexTarget, 0, len(t.targets))
	for _, target := range t.targets {
		if !target.Hit {
			open = append(open, target)
		}
	}
	return open
}

// End закрывает ход: недобитые мишени выбрасываются без очков
func (t *ReflexTurn) End() (score, discarded int) {
	if !t.over {
		t.over = true
		discarded = len(t.Open())
		t.targets = nil
	}
	return t.score, discarded
}

func (t *ReflexTurn) Side() Side   { return t.side }
func (t *ReflexTurn) Round() int   { return t.round }
func (t *ReflexTurn) Score() int   { return t.score }
func (t *ReflexTurn) Over() bool   { return t.over }
func (t *ReflexTurn) Spawned() int { return t.nextID }

func (t *ReflexTurn) find(id int) *ReflexTarget {
	for _, target := range t.targets {
		if target.ID == id {
			return target
		}
	}
	return nil
}

// ReflexView - состояние хода для клиента
type ReflexView struct {
	Side    Side           `json:"side"`
	Score   int            `json:"score"`
	Targets []ReflexTarget `json:"targets"`
}

func (t *ReflexTurn) View() ReflexView {
	v := ReflexView{Side: t.side, Score: t.score, Targets: []ReflexTarget{}}
	for _, target := range t.Open() {
		v.Targets = append(v.Targets, *target)
	}
	return v
}
