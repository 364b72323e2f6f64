package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/yusufkecer/fitcoach-backend/internal/domain"
)

// MockStores is an in-memory stand-in for the MySQL repositories, shared by
// service and handler tests.
type MockStores struct {
	Accounts    *accountsMock
	Profiles    *profilesMock
	History     *historyMock
	Meals       *mealsMock
	ResetTokens *resetTokensMock
}

type memoryDB struct {
	mu       sync.Mutex
	accounts map[string]*domain.Account // by uid
	profiles map[string]*domain.Profile
	history  []domain.HistoryRecord
	meals    []domain.Meal
	tokens   []domain.PasswordResetToken
	nextID   int64
}

func (m *memoryDB) id() int64 {
	m.nextID++
	return m.nextID
}

func NewMockStores() *MockStores {
	db := &memoryDB{
		accounts: make(map[string]*domain.Account),
		profiles: make(map[string]*domain.Profile),
	}
	return &MockStores{
		Accounts:    &accountsMock{db},
		Profiles:    &profilesMock{db},
		History:     &historyMock{db},
		Meals:       &mealsMock{db},
		ResetTokens: &resetTokensMock{db: db},
	}
}

type accountsMock struct{ db *memoryDB }

func (r *accountsMock) GetByEmail(_ context.Context, email string) (*domain.Account, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, a := range r.db.accounts {
		if a.Email == email {
			acc := *a
			return &acc, nil
		}
	}
	return nil, nil
}

type profilesMock struct{ db *memoryDB }

func (r *profilesMock) Register(_ context.Context, account *domain.Account, p *domain.Profile, rec *domain.HistoryRecord) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, a := range r.db.accounts {
		if a.Email == account.Email {
			return ErrDuplicateEmail
		}
	}

	account.ID = r.db.id()
	acc := *account
	r.db.accounts[account.UID] = &acc

	stored := *p
	stored.CreatedAt = p.CurrentData.UpdatedAt
	stored.UpdatedAt = p.CurrentData.UpdatedAt
	r.db.profiles[p.UID] = &stored

	rec.ID = r.db.id()
	r.db.history = append(r.db.history, *rec)
	return nil
}

func (r *profilesMock) GetByUID(_ context.Context, uid string) (*domain.Profile, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	p, ok := r.db.profiles[uid]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *profilesMock) Update(_ context.Context, p *domain.Profile, rec *domain.HistoryRecord) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	stored := *p
	stored.UpdatedAt = p.CurrentData.UpdatedAt
	r.db.profiles[p.UID] = &stored

	rec.ID = r.db.id()
	r.db.history = append(r.db.history, *rec)
	return nil
}

func (r *profilesMock) SetCoachValue(_ context.Context, uid, column string, value float64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	p, ok := r.db.profiles[uid]
	if !ok {
		return nil
	}
	v := value
	switch column {
	case "ideal_bmi":
		p.CurrentData.IdealBMI = &v
	case "ideal_bmr":
		p.CurrentData.IdealBMR = &v
	case "req_cal_intake":
		p.CurrentData.ReqCalIntake = &v
	}
	return nil
}

type historyMock struct{ db *memoryDB }

func (r *historyMock) ListByUID(_ context.Context, uid string) ([]domain.HistoryRecord, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var records []domain.HistoryRecord
	for _, h := range r.db.history {
		if h.UID == uid {
			records = append(records, h)
		}
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp.Before(records[j].Timestamp)
	})
	return records, nil
}

type mealsMock struct{ db *memoryDB }

func (r *mealsMock) Create(_ context.Context, m *domain.Meal) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	m.ID = r.db.id()
	r.db.meals = append(r.db.meals, *m)
	return m.ID, nil
}

func (r *mealsMock) ListBetween(_ context.Context, uid string, from, to time.Time) ([]domain.Meal, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var meals []domain.Meal
	for _, m := range r.db.meals {
		if m.UID == uid && !m.Timestamp.Before(from) && m.Timestamp.Before(to) {
			meals = append(meals, m)
		}
	}
	sort.SliceStable(meals, func(i, j int) bool {
		return meals[i].Timestamp.Before(meals[j].Timestamp)
	})
	return meals, nil
}

func (r *mealsMock) ListRecent(_ context.Context, uid string, limit int) ([]domain.Meal, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var meals []domain.Meal
	for _, m := range r.db.meals {
		if m.UID == uid {
			meals = append(meals, m)
		}
	}
	sort.SliceStable(meals, func(i, j int) bool {
		return meals[i].Timestamp.After(meals[j].Timestamp)
	})
	if len(meals) > limit {
		meals = meals[:limit]
	}
	return meals, nil
}

type resetTokensMock struct {
	db  *memoryDB
	now func() time.Time
}

func (r *resetTokensMock) SetClock(now func() time.Time) {
	r.now = now
}

func (r *resetTokensMock) Create(_ context.Context, accountUID string, token string, expiresAt time.Time) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.tokens = append(r.db.tokens, domain.PasswordResetToken{
		ID:         r.db.id(),
		AccountUID: accountUID,
		Token:      token,
		ExpiresAt:  expiresAt,
	})
	return nil
}

func (r *resetTokensMock) GetValidByEmailAndToken(_ context.Context, email, token string) (*domain.PasswordResetToken, error) {
	now := time.Now()
	if r.now != nil {
		now = r.now()
	}

	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for i := len(r.db.tokens) - 1; i >= 0; i-- {
		t := r.db.tokens[i]
		acc, ok := r.db.accounts[t.AccountUID]
		if !ok || acc.Email != email || t.Token != token || t.UsedAt != nil || !t.ExpiresAt.After(now) {
			continue
		}
		return &t, nil
	}
	return nil, nil
}

func (r *resetTokensMock) Redeem(_ context.Context, id int64, accountUID, passwordHash string, at time.Time) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	account, ok := r.db.accounts[accountUID]
	if !ok {
		return false, fmt.Errorf("failed to update password: account %s not found", accountUID)
	}
	for i := range r.db.tokens {
		if r.db.tokens[i].ID == id && r.db.tokens[i].UsedAt == nil {
			r.db.tokens[i].UsedAt = &at
			account.PasswordHash = passwordHash
			return true, nil
		}
	}
	return false, nil
}

func (r *resetTokensMock) DeleteByAccountUID(_ context.Context, accountUID string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	kept := r.db.tokens[:0]
	for _, t := range r.db.tokens {
		if t.AccountUID != accountUID {
			kept = append(kept, t)
		}
	}
	r.db.tokens = kept
	return nil
}

// Tokens returns a copy of the stored reset tokens.
func (r *resetTokensMock) Tokens() []domain.PasswordResetToken {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return append([]domain.PasswordResetToken(nil), r.db.tokens...)
}
