package entities

import (
	"strings"
	"time"
)

const (
	// MaintenanceOverhead is the fixed part of a company's daily upkeep
	MaintenanceOverhead int64 = 300000
	// PayoutInterval is the minimum time between two payroll runs of a company
	PayoutInterval = 24 * time.Hour
	// ScheduleTolerance absorbs jitter between two runs of the same schedule
	// slot, so a record reached a little earlier than last time is still due
	ScheduleTolerance = time.Minute
)

// CompanyMember is an entry in a company's ordered member list
type CompanyMember struct {
	ID       int64  `json:"id,string"`
	Username string `json:"username"`
}

// Company is a player-run company within a guild
type Company struct {
	GuildID int64  `json:"-"`
	ID      string `json:"-"`

	Name           string          `json:"name"`
	OwnerID        int64           `json:"owner_id,string"`
	DailySalary    int64           `json:"daily_salary"`
	Budget         int64           `json:"budget"`
	AutoDeposit    bool            `json:"auto_deposit"`
	Members        []CompanyMember `json:"members"`
	LastPayoutTime time.Time       `json:"last_payout_time"`
	Password       string          `json:"password"`

	SchemaVersion int `json:"-"`
}

// NewCompany returns a company owned by ownerID with the owner as its only member
func NewCompany(guildID int64, id, name string, ownerID int64, ownerName string, dailySalary int64, password string, now time.Time) *Company {
	return &Company{
		GuildID:        guildID,
		ID:             id,
		Name:           name,
		OwnerID:        ownerID,
		DailySalary:    dailySalary,
		Members:        []CompanyMember{{ID: ownerID, Username: ownerName}},
		LastPayoutTime: now,
		Password:       password,
		SchemaVersion:  CurrentSchemaVersion,
	}
}

// IsOwner reports whether userID owns the company
func (c *Company) IsOwner(userID int64) bool {
	return c.OwnerID == userID
}

// HasMember reports whether userID is in the member list
func (c *Company) HasMember(userID int64) bool {
	for _, m := range c.Members {
		if m.ID == userID {
			return true
		}
	}
	return false
}

// AddMember appends a member unless already present
func (c *Company) AddMember(userID int64, username string) bool {
	if c.HasMember(userID) {
		return false
	}
	c.Members = append(c.Members, CompanyMember{ID: userID, Username: username})
	return true
}

// RemoveMember drops userID from the member list
func (c *Company) RemoveMember(userID int64) bool {
	for i, m := range c.Members {
		if m.ID == userID {
			c.Members = append(c.Members[:i], c.Members[i+1:]...)
			return true
		}
	}
	return false
}

// MemberIDs returns the ids of every member in order
func (c *Company) MemberIDs() []int64 {
	ids := make([]int64, 0, len(c.Members))
	for _, m := range c.Members {
		ids = append(ids, m.ID)
	}
	return ids
}

// IsPasswordProtected reports whether joining requires a password
func (c *Company) IsPasswordProtected() bool {
	return c.Password != ""
}

// NameEquals compares company names case-insensitively
func (c *Company) NameEquals(name string) bool {
	return strings.EqualFold(c.Name, name)
}

// PayrollTotal is the salary paid out to all members in one run
func (c *Company) PayrollTotal() int64 {
	return c.DailySalary * int64(len(c.Members))
}

// MaintenanceFee is the daily upkeep charged to the budget
func (c *Company) MaintenanceFee() int64 {
	return c.PayrollTotal() + MaintenanceOverhead
}

// IsPayoutDue reports whether a payout interval has passed since the last run
func (c *Company) IsPayoutDue(now time.Time) bool {
	return now.Sub(c.LastPayoutTime) >= PayoutInterval-ScheduleTolerance
}

// Clone returns a deep copy
func (c *Company) Clone() *Company {
	if c == nil {
		return nil
	}
	cp := *c
	cp.Members = append([]CompanyMember(nil), c.Members...)
	return &cp
}
