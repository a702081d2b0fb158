package services

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/notesauth/internal/common"
	"github.com/dmitrijs2005/notesauth/internal/dbx"
	"github.com/dmitrijs2005/notesauth/internal/server/models"
	"github.com/dmitrijs2005/notesauth/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/notesauth/internal/server/repositories/resettokens"
	"github.com/dmitrijs2005/notesauth/internal/server/repositories/roles"
	"github.com/jackc/pgx/v5/pgconn"
)

// --- in-memory repositories with the same constraint behaviour as the schema ---

type memAccounts struct {
	mu      sync.Mutex
	seq     int
	byID    map[string]*models.Account
	creates int

	// missBarrier, when set, holds the first missBarrierN lookups that find
	// nothing until all of them have missed.
	missBarrier  *sync.WaitGroup
	missBarrierN int64
	misses       atomic.Int64

	createErr error
}

func newMemAccounts() *memAccounts {
	return &memAccounts{byID: map[string]*models.Account{}}
}

func (m *memAccounts) add(a models.Account) *models.Account {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a.ID == "" {
		m.seq++
		a.ID = "u-" + strconv.Itoa(m.seq)
	}
	cp := a
	m.byID[a.ID] = &cp
	return &cp
}

func (m *memAccounts) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byID)
}

func (m *memAccounts) Create(ctx context.Context, a *models.Account) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creates++

	if m.createErr != nil {
		return nil, fmt.Errorf("db error: %w", m.createErr)
	}
	for _, existing := range m.byID {
		if existing.Email == a.Email {
			return nil, fmt.Errorf("db error: %w", &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})
		}
		if existing.UserName == a.UserName {
			return nil, fmt.Errorf("db error: %w", &pgconn.PgError{Code: "23505", ConstraintName: "users_username_key"})
		}
	}

	m.seq++
	a.ID = "u-" + strconv.Itoa(m.seq)
	a.AccountNonLocked, a.AccountNonExpired, a.CredentialsNonExpired, a.Enabled = true, true, true, true
	cp := *a
	m.byID[a.ID] = &cp
	out := cp
	return &out, nil
}

func (m *memAccounts) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	a, err := m.find(func(a *models.Account) bool { return a.Email == email })
	if err == common.ErrorNotFound && m.missBarrier != nil && m.misses.Add(1) <= m.missBarrierN {
		m.missBarrier.Done()
		m.missBarrier.Wait()
	}
	return a, err
}

func (m *memAccounts) GetByUserName(ctx context.Context, userName string) (*models.Account, error) {
	return m.find(func(a *models.Account) bool { return a.UserName == userName })
}

func (m *memAccounts) GetByID(ctx context.Context, id string) (*models.Account, error) {
	return m.find(func(a *models.Account) bool { return a.ID == id })
}

func (m *memAccounts) UpdatePassword(ctx context.Context, id string, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	h := passwordHash
	a.PasswordHash = &h
	return nil
}

func (m *memAccounts) find(match func(a *models.Account) bool) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.byID {
		if match(a) {
			cp := *a
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

type memRoles struct {
	roles map[models.RoleName]models.Role
}

func newMemRoles() *memRoles {
	return &memRoles{roles: map[models.RoleName]models.Role{
		models.RoleUser:  {ID: 1, Name: models.RoleUser},
		models.RoleAdmin: {ID: 2, Name: models.RoleAdmin},
	}}
}

func (m *memRoles) GetByName(ctx context.Context, name models.RoleName) (*models.Role, error) {
	r, ok := m.roles[name]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &r, nil
}

type memTokens struct {
	mu     sync.Mutex
	seq    int64
	tokens map[string]*models.ResetToken
}

func newMemTokens() *memTokens {
	return &memTokens{tokens: map[string]*models.ResetToken{}}
}

func (m *memTokens) put(t models.ResetToken) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	t.ID = m.seq
	m.tokens[t.Token] = &t
}

func (m *memTokens) Create(ctx context.Context, userID string, token string, expiry time.Time) (*models.ResetToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tokens[token]; ok {
		return nil, fmt.Errorf("db error: %w", &pgconn.PgError{Code: "23505"})
	}
	m.seq++
	t := &models.ResetToken{ID: m.seq, Token: token, UserID: userID, ExpiryDate: expiry}
	m.tokens[token] = t
	cp := *t
	return &cp, nil
}

func (m *memTokens) Find(ctx context.Context, token string) (*models.ResetToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tokens[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *memTokens) MarkUsed(ctx context.Context, token string, now time.Time) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tokens[token]
	if !ok || t.Used || !t.ExpiryDate.After(now) {
		return "", common.ErrorNotFound
	}
	t.Used = true
	return t.UserID, nil
}

func (m *memTokens) deleteWhere(match func(t *models.ResetToken) bool) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for k, t := range m.tokens {
		if match(t) {
			delete(m.tokens, k)
			n++
		}
	}
	return n
}

func (m *memTokens) countWhere(match func(t *models.ResetToken) bool) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, t := range m.tokens {
		if match(t) {
			n++
		}
	}
	return n
}

func (m *memTokens) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	return m.deleteWhere(func(t *models.ResetToken) bool { return t.ExpiryDate.Before(now) }), nil
}

func (m *memTokens) DeleteUsed(ctx context.Context) (int64, error) {
	return m.deleteWhere(func(t *models.ResetToken) bool { return t.Used }), nil
}

func (m *memTokens) DeleteExpiredOrUsed(ctx context.Context, now time.Time) (int64, error) {
	return m.deleteWhere(func(t *models.ResetToken) bool { return t.ExpiryDate.Before(now) || t.Used }), nil
}

func (m *memTokens) CountExpired(ctx context.Context, now time.Time) (int64, error) {
	return m.countWhere(func(t *models.ResetToken) bool { return t.ExpiryDate.Before(now) }), nil
}

func (m *memTokens) CountUsed(ctx context.Context) (int64, error) {
	return m.countWhere(func(t *models.ResetToken) bool { return t.Used }), nil
}

func (m *memTokens) CountTotal(ctx context.Context) (int64, error) {
	return m.countWhere(func(t *models.ResetToken) bool { return true }), nil
}

// stallingTokens blocks every MarkUsed until the caller's deadline passes.
type stallingTokens struct {
	*memTokens
}

func (s stallingTokens) MarkUsed(ctx context.Context, token string, now time.Time) (string, error) {
	<-ctx.Done()
	return "", fmt.Errorf("db error: %w", ctx.Err())
}

type fakeRepoManager struct {
	accounts *memAccounts
	roles    *memRoles
	tokens   resettokens.Repository
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{accounts: newMemAccounts(), roles: newMemRoles(), tokens: newMemTokens()}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error   { return nil }
func (m *fakeRepoManager) Accounts(db dbx.DBTX) accounts.Repository       { return m.accounts }
func (m *fakeRepoManager) Roles(db dbx.DBTX) roles.Repository             { return m.roles }
func (m *fakeRepoManager) ResetTokens(db dbx.DBTX) resettokens.Repository { return m.tokens }
func (m *fakeRepoManager) mem() *memTokens                                { return m.tokens.(*memTokens) }

// --- other collaborators ---

type recordingMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

type sentMail struct{ to, url string }

func (r *recordingMailer) SendPasswordReset(ctx context.Context, to string, resetURL string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, sentMail{to: to, url: resetURL})
	return nil
}

type errBoom struct{}

func (errBoom) Error() string { return "boom" }
