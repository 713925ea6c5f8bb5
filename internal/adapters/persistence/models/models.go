package models

import (
	"time"

	"gorm.io/gorm"
)

// ============================================================
// Membership Tables
// ============================================================

// Member represents members table
type Member struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	LoginID   string         `gorm:"column:login_id;uniqueIndex;size:50;not null" json:"login_id"`
	Name      string         `gorm:"size:100;not null" json:"name"`
	Phone     string         `gorm:"uniqueIndex;size:20;not null" json:"phone"`
	Password  string         `gorm:"size:255;not null" json:"-"`
	Company   *string        `gorm:"size:100" json:"company"`
	Job       *string        `gorm:"size:100" json:"job"`
	Address   *string        `gorm:"size:200" json:"address"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Affiliations []Affiliation `gorm:"foreignKey:MemberID" json:"affiliations,omitempty"`
}

func (Member) TableName() string {
	return "members"
}

// MemberResponse DTO
type MemberResponse struct {
	ID        uint      `json:"id"`
	LoginID   string    `json:"login_id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Company   *string   `json:"company,omitempty"`
	Job       *string   `json:"job,omitempty"`
	Address   *string   `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (m *Member) ToResponse() *MemberResponse {
	return &MemberResponse{
		ID:        m.ID,
		LoginID:   m.LoginID,
		Name:      m.Name,
		Phone:     m.Phone,
		Company:   m.Company,
		Job:       m.Job,
		Address:   m.Address,
		CreatedAt: m.CreatedAt,
	}
}

// Organization represents organizations table
type Organization struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"uniqueIndex;size:100;not null" json:"name"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Generations []Generation `gorm:"foreignKey:OrganizationID" json:"generations,omitempty"`
}

func (Organization) TableName() string {
	return "organizations"
}

// Generation represents generations table.
// A generation is one time-scoped cohort of an organization (e.g. a yearly
// class), each carrying its own independent position tree.
type Generation struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	OrganizationID uint           `gorm:"not null;index" json:"organization_id"`
	Name           string         `gorm:"size:50;not null" json:"name"`
	IsPrimary      bool           `gorm:"default:false" json:"is_primary"`
	CreatedAt      time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`

	Organization *Organization `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
}

func (Generation) TableName() string {
	return "generations"
}

// Affiliation Roles
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// Affiliation Status
const (
	AffiliationPending  = "PENDING"
	AffiliationActive   = "ACTIVE"
	AffiliationRejected = "REJECTED"
)

// Affiliation links a member to one organization+generation,
// carrying approval status and an optional position.
type Affiliation struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	MemberID       uint      `gorm:"not null;index" json:"member_id"`
	OrganizationID uint      `gorm:"not null;index" json:"organization_id"`
	GenerationID   uint      `gorm:"not null;index" json:"generation_id"`
	PositionID     *uint     `json:"position_id"`
	Role           string    `gorm:"size:20;not null;default:'USER'" json:"role"`
	Status         string    `gorm:"size:20;not null;default:'PENDING'" json:"status"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Member       *Member       `gorm:"foreignKey:MemberID" json:"member,omitempty"`
	Organization *Organization `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
	Generation   *Generation   `gorm:"foreignKey:GenerationID" json:"generation,omitempty"`
	Position     *Position     `gorm:"foreignKey:PositionID" json:"position,omitempty"`
}

func (Affiliation) TableName() string {
	return "affiliations"
}

func (a *Affiliation) IsActive() bool {
	return a.Status == AffiliationActive
}

// Dues Cycles
const (
	DuesCycleNone      = "NONE"
	DuesCycleMonthly   = "MONTHLY"
	DuesCycleQuarterly = "QUARTERLY"
	DuesCycleYearly    = "YEARLY"
)

// ValidDuesCycle reports whether cycle is a known dues cycle
func ValidDuesCycle(cycle string) bool {
	switch cycle {
	case DuesCycleNone, DuesCycleMonthly, DuesCycleQuarterly, DuesCycleYearly:
		return true
	}
	return false
}

// Position represents positions table.
// Positions form a forest per generation: ParentID is nil for roots and a
// child's GenerationID must equal its parent's. Rank orders siblings.
type Position struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	GenerationID uint      `gorm:"not null;index" json:"generation_id"`
	Name         string    `gorm:"size:100;not null" json:"name"`
	Rank         int       `gorm:"not null" json:"rank"`
	ParentID     *uint     `gorm:"index" json:"parent_id"`
	IsExecutive  bool      `gorm:"default:false" json:"is_executive"`
	DuesAmount   int       `gorm:"not null;default:0" json:"dues_amount"`
	DuesCycle    string    `gorm:"size:20;not null;default:'NONE'" json:"dues_cycle"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Generation *Generation `gorm:"foreignKey:GenerationID" json:"generation,omitempty"`
	Parent     *Position   `gorm:"foreignKey:ParentID" json:"parent,omitempty"`
}

func (Position) TableName() string {
	return "positions"
}

func (p *Position) IsRoot() bool {
	return p.ParentID == nil
}

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate runs auto migration for all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Member{},
		&Organization{},
		&Generation{},
		&Affiliation{},
		&Position{},
		&RefreshToken{},
		&LoginCode{},
	)
}
