// Path: internal/models/models.go
package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/shopspring/decimal"
)

// UserRole is the coarse permission level of a user.
type UserRole string

const (
	RoleAdmin UserRole = "ADMIN"
	RoleUser  UserRole = "USER"
)

// Valid reports whether r is one of the known roles.
func (r UserRole) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

type AccountType string

const (
	AccountCurrent AccountType = "CURRENT"
	AccountSavings AccountType = "SAVINGS"
)

type TransactionType string

const (
	TransactionWithdrawal TransactionType = "WITHDRAWAL"
	TransactionLodgement  TransactionType = "LODGEMENT"
)

// User is a registered identity. Accounts and tokens are removed with it.
type User struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	FirstName   string    `gorm:"not null" json:"first_name"`
	LastName    string    `gorm:"not null" json:"last_name"`
	Email       string    `gorm:"not null" json:"email"`
	PhoneNumber string    `gorm:"not null" json:"phone_number"`
	Username    string    `gorm:"uniqueIndex;not null" json:"username"`
	Password    string    `gorm:"not null" json:"-"`
	Role        UserRole  `gorm:"type:varchar(16);not null" json:"role"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Accounts []Account `gorm:"constraint:OnDelete:CASCADE;" json:"accounts,omitempty"`
	Tokens   []Token   `gorm:"constraint:OnDelete:CASCADE;" json:"-"`
}

// Token is one issued access/refresh pair. LoggedOut only ever goes from false to true.
type Token struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	AccessToken  string    `gorm:"uniqueIndex;not null" json:"-"`
	RefreshToken string    `gorm:"uniqueIndex;not null" json:"-"`
	LoggedOut    bool      `gorm:"not null;default:false;index:idx_tokens_user_active,priority:2" json:"logged_out"`
	UserID       uint      `gorm:"not null;index:idx_tokens_user_active,priority:1" json:"user_id"`
	CreatedAt    time.Time `json:"created_at"`
}

// Account holds a balance owned by a single user.
type Account struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	AccountNumber string          `gorm:"uniqueIndex;size:6;not null" json:"account_number"`
	Balance       decimal.Decimal `gorm:"type:numeric(19,2);not null;default:0" json:"balance"`
	BalanceHash   string          `gorm:"not null" json:"-"`
	AccountType   AccountType     `gorm:"type:varchar(16);not null" json:"account_type"`
	UserID        uint            `gorm:"not null;index" json:"user_id"`
	CreatedAt     time.Time       `json:"created_at"`

	Transactions []Transaction `gorm:"constraint:OnDelete:CASCADE;" json:"-"`
}

type Transaction struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	Amount          decimal.Decimal `gorm:"type:numeric(19,2);not null" json:"amount"`
	Description     string          `gorm:"not null" json:"description"`
	TransactionType TransactionType `gorm:"type:varchar(16);not null" json:"transaction_type"`
	AccountID       uint            `gorm:"not null;index" json:"account_id"`
	CreatedAt       time.Time       `json:"created_at"`
}

// UserRequest is the body of registration and profile updates.
type UserRequest struct {
	FirstName   string   `json:"first_name" validate:"required"`
	LastName    string   `json:"last_name" validate:"required"`
	Email       string   `json:"email" validate:"required"`
	PhoneNumber string   `json:"phone_number" validate:"required"`
	Username    string   `json:"username" validate:"required"`
	Password    string   `json:"password" validate:"required,max=72"`
	Role        UserRole `json:"role" validate:"required,oneof=ADMIN USER"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type AccountRequest struct {
	UserID      uint        `json:"user_id" validate:"required"`
	AccountType AccountType `json:"account_type" validate:"required,oneof=CURRENT SAVINGS"`
}

// TransactionRequest moves Amount into (LODGEMENT) or out of (WITHDRAWAL) an account.
type TransactionRequest struct {
	AccountID       uint            `json:"account_id" validate:"required"`
	Amount          decimal.Decimal `json:"amount"`
	Description     string          `json:"description" validate:"required"`
	TransactionType TransactionType `json:"transaction_type" validate:"required,oneof=WITHDRAWAL LODGEMENT"`
}

// AuthenticationResponse is returned by register, login and refresh.
type AuthenticationResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	Message      string `json:"message"`
}

// Claims is the payload of both access and refresh tokens. Subject carries the username.
type Claims struct {
	jwt.RegisteredClaims
}
