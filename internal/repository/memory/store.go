// Path: internal/repository/memory/store.go

// Package memory is an in-process repository.Store used by tests and local tooling.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"bank-backend/internal/models"
	"bank-backend/internal/repository"

	"github.com/shopspring/decimal"
)

var _ repository.Store = (*Store)(nil)

const (
	tableUsers        = "users"
	tableAccounts     = "accounts"
	tableTransactions = "transactions"
	tableTokens       = "tokens"
)

type state struct {
	mu           sync.RWMutex
	released     *sync.Cond
	users        map[uint]models.User
	accounts     map[uint]models.Account
	transactions map[uint]models.Transaction
	tokens       map[uint]models.Token
	nextID       uint

	// locked holds the tables written by the open transaction.
	locked map[string]bool
}

func (s *state) id() uint {
	s.nextID++
	return s.nextID
}

// write runs fn under the state lock. Inside a transaction the touched tables stay
// locked until it ends; outside one, fn waits until none of its tables is locked.
func (s *state) write(log *undoLog, tables []string, fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if log != nil {
		for _, t := range tables {
			s.locked[t] = true
		}
		return fn()
	}
	for s.anyLocked(tables) {
		s.released.Wait()
	}
	return fn()
}

func (s *state) anyLocked(tables []string) bool {
	for _, t := range tables {
		if s.locked[t] {
			return true
		}
	}
	return false
}

// undoLog collects the inverse of every write made by one transaction.
type undoLog struct {
	ops []func()
}

func (l *undoLog) record(op func()) {
	if l != nil {
		l.ops = append(l.ops, op)
	}
}

func (l *undoLog) rollback() {
	for i := len(l.ops) - 1; i >= 0; i-- {
		l.ops[i]()
	}
}

func put[V any](log *undoLog, m map[uint]V, id uint, v V) {
	prev, had := m[id]
	log.record(func() {
		if had {
			m[id] = prev
		} else {
			delete(m, id)
		}
	})
	m[id] = v
}

func remove[V any](log *undoLog, m map[uint]V, id uint) {
	prev, had := m[id]
	if !had {
		return
	}
	log.record(func() { m[id] = prev })
	delete(m, id)
}

// Store keeps every entity in maps guarded by a single lock.
// Transactions are serialized and roll back through an undo log, so writes
// committed outside a failed transaction survive it. IDs are never reused.
type Store struct {
	st   *state
	txMu *sync.Mutex
	log  *undoLog
}

func NewStore() *Store {
	st := &state{
		users:        map[uint]models.User{},
		accounts:     map[uint]models.Account{},
		transactions: map[uint]models.Transaction{},
		tokens:       map[uint]models.Token{},
		locked:       map[string]bool{},
	}
	st.released = sync.NewCond(&st.mu)
	return &Store{st: st, txMu: &sync.Mutex{}}
}

func (s *Store) Users() repository.UserStore { return userStore{st: s.st, log: s.log} }

func (s *Store) Accounts() repository.AccountStore { return accountStore{st: s.st, log: s.log} }

func (s *Store) Transactions() repository.TransactionStore {
	return transactionStore{st: s.st, log: s.log}
}

func (s *Store) Tokens() repository.TokenStore { return tokenStore{st: s.st, log: s.log} }

func (s *Store) WithinTransaction(ctx context.Context, fn func(repository.Store) error) error {
	if s.log != nil {
		return fn(s)
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	log := &undoLog{}
	committed := false
	defer func() {
		s.st.mu.Lock()
		defer s.st.mu.Unlock()
		if !committed {
			log.rollback()
		}
		clear(s.st.locked)
		s.st.released.Broadcast()
	}()

	err := fn(&Store{st: s.st, txMu: s.txMu, log: log})
	committed = err == nil
	return err
}

type userStore struct {
	st  *state
	log *undoLog
}

func (r userStore) Create(_ context.Context, user *models.User) error {
	return r.st.write(r.log, []string{tableUsers}, func() error {
		for _, u := range r.st.users {
			if u.Username == user.Username {
				return repository.ErrAlreadyExists
			}
		}
		now := time.Now()
		user.ID = r.st.id()
		user.CreatedAt, user.UpdatedAt = now, now
		stored := *user
		stored.Accounts, stored.Tokens = nil, nil
		put(r.log, r.st.users, user.ID, stored)
		return nil
	})
}

func (r userStore) FindByID(_ context.Context, id uint) (*models.User, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()
	u, ok := r.st.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r userStore) FindByUsername(_ context.Context, username string) (*models.User, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()
	for _, u := range r.st.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

// LockByUsername relies on WithinTransaction serializing writers.
func (r userStore) LockByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.FindByUsername(ctx, username)
}

func (r userStore) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	_, err := r.FindByUsername(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (r userStore) FindAll(_ context.Context) ([]models.User, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()
	users := make([]models.User, 0, len(r.st.users))
	for _, u := range r.st.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (r userStore) Update(_ context.Context, user *models.User) error {
	return r.st.write(r.log, []string{tableUsers}, func() error {
		existing, ok := r.st.users[user.ID]
		if !ok {
			return repository.ErrNotFound
		}
		for id, u := range r.st.users {
			if id != user.ID && u.Username == user.Username {
				return repository.ErrAlreadyExists
			}
		}
		user.CreatedAt = existing.CreatedAt
		user.UpdatedAt = time.Now()
		stored := *user
		stored.Accounts, stored.Tokens = nil, nil
		put(r.log, r.st.users, user.ID, stored)
		return nil
	})
}

func (r userStore) Delete(_ context.Context, id uint) error {
	tables := []string{tableUsers, tableAccounts, tableTransactions, tableTokens}
	return r.st.write(r.log, tables, func() error {
		if _, ok := r.st.users[id]; !ok {
			return repository.ErrNotFound
		}
		remove(r.log, r.st.users, id)
		for accID, a := range r.st.accounts {
			if a.UserID == id {
				r.st.deleteAccountLocked(r.log, accID)
			}
		}
		for tokID, t := range r.st.tokens {
			if t.UserID == id {
				remove(r.log, r.st.tokens, tokID)
			}
		}
		return nil
	})
}

func (s *state) deleteAccountLocked(log *undoLog, id uint) {
	remove(log, s.accounts, id)
	for txID, tx := range s.transactions {
		if tx.AccountID == id {
			remove(log, s.transactions, txID)
		}
	}
}

type accountStore struct {
	st  *state
	log *undoLog
}

func (r accountStore) Create(_ context.Context, account *models.Account) error {
	return r.st.write(r.log, []string{tableAccounts}, func() error {
		if _, ok := r.st.users[account.UserID]; !ok {
			return repository.ErrNotFound
		}
		for _, a := range r.st.accounts {
			if a.AccountNumber == account.AccountNumber {
				return repository.ErrAlreadyExists
			}
		}
		account.ID = r.st.id()
		account.CreatedAt = time.Now()
		stored := *account
		stored.Transactions = nil
		put(r.log, r.st.accounts, account.ID, stored)
		return nil
	})
}

func (r accountStore) FindByID(_ context.Context, id uint) (*models.Account, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()
	a, ok := r.st.accounts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &a, nil
}

func (r accountStore) LockByID(ctx context.Context, id uint) (*models.Account, error) {
	return r.FindByID(ctx, id)
}

func (r accountStore) FindByUserID(_ context.Context, userID uint) ([]models.Account, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()
	var accounts []models.Account
	for _, a := range r.st.accounts {
		if a.UserID == userID {
			accounts = append(accounts, a)
		}
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].ID < accounts[j].ID })
	return accounts, nil
}

func (r accountStore) FindAll(_ context.Context) ([]models.Account, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()
	accounts := make([]models.Account, 0, len(r.st.accounts))
	for _, a := range r.st.accounts {
		accounts = append(accounts, a)
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].ID < accounts[j].ID })
	return accounts, nil
}

func (r accountStore) ExistsByAccountNumber(_ context.Context, accountNumber string) (bool, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()
	for _, a := range r.st.accounts {
		if a.AccountNumber == accountNumber {
			return true, nil
		}
	}
	return false, nil
}

func (r accountStore) UpdateBalance(_ context.Context, id uint, balance decimal.Decimal, balanceHash string) error {
	return r.st.write(r.log, []string{tableAccounts}, func() error {
		a, ok := r.st.accounts[id]
		if !ok {
			return repository.ErrNotFound
		}
		a.Balance = balance
		a.BalanceHash = balanceHash
		put(r.log, r.st.accounts, id, a)
		return nil
	})
}

func (r accountStore) Delete(_ context.Context, id uint) error {
	return r.st.write(r.log, []string{tableAccounts, tableTransactions}, func() error {
		if _, ok := r.st.accounts[id]; !ok {
			return repository.ErrNotFound
		}
		r.st.deleteAccountLocked(r.log, id)
		return nil
	})
}

type transactionStore struct {
	st  *state
	log *undoLog
}

func (r transactionStore) Create(_ context.Context, tx *models.Transaction) error {
	return r.st.write(r.log, []string{tableTransactions}, func() error {
		if _, ok := r.st.accounts[tx.AccountID]; !ok {
			return repository.ErrNotFound
		}
		tx.ID = r.st.id()
		tx.CreatedAt = time.Now()
		put(r.log, r.st.transactions, tx.ID, *tx)
		return nil
	})
}

func (r transactionStore) FindByAccountID(_ context.Context, accountID uint) ([]models.Transaction, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()
	var txs []models.Transaction
	for _, tx := range r.st.transactions {
		if tx.AccountID == accountID {
			txs = append(txs, tx)
		}
	}
	sort.Slice(txs, func(i, j int) bool { return txs[i].ID < txs[j].ID })
	return txs, nil
}

type tokenStore struct {
	st  *state
	log *undoLog
}

func (r tokenStore) FindByAccessToken(_ context.Context, accessToken string) (*models.Token, error) {
	return r.find(func(t models.Token) bool { return t.AccessToken == accessToken })
}

func (r tokenStore) FindByRefreshToken(_ context.Context, refreshToken string) (*models.Token, error) {
	return r.find(func(t models.Token) bool { return t.RefreshToken == refreshToken })
}

func (r tokenStore) find(match func(models.Token) bool) (*models.Token, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()
	for _, t := range r.st.tokens {
		if match(t) {
			return &t, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r tokenStore) FindActiveTokensForUser(_ context.Context, userID uint) ([]models.Token, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()
	var tokens []models.Token
	for _, t := range r.st.tokens {
		if t.UserID == userID && !t.LoggedOut {
			tokens = append(tokens, t)
		}
	}
	sort.Slice(tokens, func(i, j int) bool { return tokens[i].ID < tokens[j].ID })
	return tokens, nil
}

func (r tokenStore) Save(_ context.Context, token *models.Token) error {
	return r.st.write(r.log, []string{tableTokens}, func() error {
		return r.saveLocked(token)
	})
}

func (r tokenStore) saveLocked(token *models.Token) error {
	for id, t := range r.st.tokens {
		if id == token.ID {
			continue
		}
		if t.AccessToken == token.AccessToken || t.RefreshToken == token.RefreshToken {
			return repository.ErrAlreadyExists
		}
	}
	if _, ok := r.st.users[token.UserID]; !ok {
		return repository.ErrNotFound
	}
	if token.ID == 0 {
		token.ID = r.st.id()
		token.CreatedAt = time.Now()
	}
	put(r.log, r.st.tokens, token.ID, *token)
	return nil
}

func (r tokenStore) SaveAll(_ context.Context, tokens []models.Token) error {
	return r.st.write(r.log, []string{tableTokens}, func() error {
		for i := range tokens {
			if err := r.saveLocked(&tokens[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r tokenStore) Revoke(_ context.Context, token *models.Token) error {
	err := r.st.write(r.log, []string{tableTokens}, func() error {
		if t, ok := r.st.tokens[token.ID]; ok {
			t.LoggedOut = true
			put(r.log, r.st.tokens, token.ID, t)
		}
		return nil
	})
	token.LoggedOut = true
	return err
}

func (r tokenStore) RevokeAllForUser(_ context.Context, userID uint) (int64, error) {
	var n int64
	err := r.st.write(r.log, []string{tableTokens}, func() error {
		for id, t := range r.st.tokens {
			if t.UserID == userID && !t.LoggedOut {
				t.LoggedOut = true
				put(r.log, r.st.tokens, id, t)
				n++
			}
		}
		return nil
	})
	return n, err
}
