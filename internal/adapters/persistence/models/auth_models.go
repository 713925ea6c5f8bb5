package models

import "time"

// ============================================================
// Mobile Auth Tables
// ============================================================

// RefreshToken represents refresh_tokens table.
// Only the SHA-256 hash of the opaque token is stored; the raw value is
// returned to the client once and never persisted.
type RefreshToken struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	MemberID   uint       `gorm:"not null;index" json:"member_id"`
	TokenHash  string     `gorm:"size:64;not null;uniqueIndex" json:"-"`
	DeviceID   *string    `gorm:"size:100" json:"device_id"`
	UserAgent  *string    `gorm:"size:255" json:"user_agent"`
	ExpiresAt  time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
	RevokedAt  *time.Time `gorm:"index" json:"revoked_at"`
	ReplacedBy *uint      `json:"replaced_by"`

	Member Member `gorm:"foreignKey:MemberID" json:"-"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// LoginCode represents login_codes table.
// A short-lived single-use secret letting an authenticated mobile session
// bootstrap a browser session without re-entering credentials.
type LoginCode struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Code      string     `gorm:"size:64;not null;uniqueIndex" json:"code"`
	MemberID  uint       `gorm:"not null;index" json:"member_id"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	UsedAt    *time.Time `json:"used_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`

	Member Member `gorm:"foreignKey:MemberID" json:"-"`
}

func (LoginCode) TableName() string {
	return "login_codes"
}

func (lc *LoginCode) IsUsed() bool {
	return lc.UsedAt != nil
}

func (lc *LoginCode) IsExpired() bool {
	return time.Now().After(lc.ExpiresAt)
}
