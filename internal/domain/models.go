// Package domain defines the persistence models for users, restrooms,
// check-ins, ratings, and named lists. These types are mapped with GORM
// and form the core data layer of the restroom directory.
package domain

import (
	"time"

	"gorm.io/gorm"
)

// User represents a registered account. Users own lists, check-ins, and
// ratings; accounts are never deleted once created.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - FullName: display name shown alongside ratings.
//   - Email: login identifier; unique in practice (index, not enforced).
//   - PasswordHash: bcrypt digest of the credential secret, never serialized.
//   - IsPremium: reserved for a future paid tier; currently unused.
//   - CreatedAt / UpdatedAt: timestamps managed by GORM.
type User struct {
	ID           string    `json:"id"         gorm:"type:char(36);primaryKey"`
	FullName     string    `json:"full_name"  gorm:"type:varchar(70);not null"`
	Email        string    `json:"email"      gorm:"type:varchar(256);not null;index:idx_user_email"`
	PasswordHash string    `json:"-"          gorm:"type:varchar(64);not null"`
	IsPremium    bool      `json:"is_premium" gorm:"not null;default:false"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// Restroom is a geographically anchored point of interest. The coordinate
// pair (latitude, longitude) is its natural key: the ingestion pipeline
// checks it before every insert, and ux_restroom_coords backstops the
// check against concurrent batches. Rows are immutable once stored.
//
// Descriptive attributes use pointers so that "unknown" survives the round
// trip from the external API: a nil Name is a record the API never named,
// not a restroom named "".
type Restroom struct {
	ID        string  `json:"id"        gorm:"type:char(36);primaryKey"`
	Latitude  float64 `json:"latitude"  gorm:"not null;uniqueIndex:ux_restroom_coords,priority:1"`
	Longitude float64 `json:"longitude" gorm:"not null;uniqueIndex:ux_restroom_coords,priority:2"`

	Name          *string `json:"name,omitempty"           gorm:"type:varchar(255)"`
	Directions    *string `json:"directions,omitempty"     gorm:"type:text"`
	Notes         *string `json:"notes,omitempty"          gorm:"type:text"`
	City          *string `json:"city,omitempty"           gorm:"type:varchar(100)"`
	State         *string `json:"state,omitempty"          gorm:"type:varchar(100)"`
	Country       *string `json:"country,omitempty"        gorm:"type:varchar(100)"`
	Unisex        *bool   `json:"unisex,omitempty"`
	Accessible    *bool   `json:"accessible,omitempty"`
	ChangingTable *bool   `json:"changing_table,omitempty"`
	Approved      *bool   `json:"approved,omitempty"`

	IsPremium bool      `json:"is_premium" gorm:"not null;default:false"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for Restroom.
func (Restroom) TableName() string { return "restrooms" }

// List is a named grouping of restrooms. OwnerID is empty for shared
// default lists created at bootstrap ("Favorites", "Least Favorites");
// otherwise the list belongs to exactly one user.
type List struct {
	ID        string         `json:"id"       gorm:"type:char(36);primaryKey"`
	Name      string         `json:"name"     gorm:"type:varchar(32);not null"`
	OwnerID   string         `json:"owner_id" gorm:"type:char(36);index:idx_list_owner"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-"        gorm:"index"`
}

// TableName returns the database table name for List.
func (List) TableName() string { return "lists" }

// ListItem joins (list, user, restroom) with the time the restroom was
// added. The same restroom may appear on many lists and, depending on
// configuration, more than once on the same list.
type ListItem struct {
	ID         string    `json:"id"          gorm:"type:char(36);primaryKey"`
	ListID     string    `json:"list_id"     gorm:"type:char(36);not null;index:idx_item_list"`
	UserID     string    `json:"user_id"     gorm:"type:char(36);not null;index:idx_item_user"`
	RestroomID string    `json:"restroom_id" gorm:"type:char(36);not null"`
	AddedAt    time.Time `json:"added_at"    gorm:"not null"`

	List     List     `json:"-" gorm:"foreignKey:ListID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Restroom Restroom `json:"-" gorm:"foreignKey:RestroomID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}

// TableName returns the database table name for ListItem.
func (ListItem) TableName() string { return "list_items" }

// CheckIn records one visit by a user to a restroom. A visit is created
// the moment the user initiates a check-in and is immutable afterwards,
// except for the RatingID back-link set when the visit is rated. A user
// may check in to the same restroom any number of times.
//
// State is derived, not stored: RatingID == nil means CheckedIn, a
// non-nil RatingID means Rated (terminal).
type CheckIn struct {
	ID         string    `json:"id"          gorm:"type:char(36);primaryKey"`
	UserID     string    `json:"user_id"     gorm:"type:char(36);not null;index:idx_checkin_user"`
	RestroomID string    `json:"restroom_id" gorm:"type:char(36);not null;index:idx_checkin_restroom"`
	RatingID   *string   `json:"rating_id,omitempty" gorm:"type:char(36)"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	Restroom Restroom `json:"-" gorm:"foreignKey:RestroomID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}

// TableName returns the database table name for CheckIn.
func (CheckIn) TableName() string { return "checkins" }

// Rated reports whether this visit has reached its terminal state.
func (c *CheckIn) Rated() bool { return c.RatingID != nil }

// Rating is a scored, optionally reviewed opinion tied to exactly one
// prior check-in. The unique index on CheckinID enforces the
// at-most-one-rating-per-visit invariant at the storage level; ratings
// are immutable once created.
type Rating struct {
	ID         string    `json:"id"          gorm:"type:char(36);primaryKey"`
	UserID     string    `json:"user_id"     gorm:"type:char(36);not null;index:idx_rating_user"`
	RestroomID string    `json:"restroom_id" gorm:"type:char(36);not null;index:idx_rating_restroom"`
	CheckinID  string    `json:"checkin_id"  gorm:"type:char(36);not null;uniqueIndex:ux_rating_checkin"`
	Score      int       `json:"score"       gorm:"not null"`
	ReviewText *string   `json:"review_text,omitempty" gorm:"type:varchar(200)"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	CheckIn CheckIn `json:"-" gorm:"foreignKey:CheckinID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Rating.
func (Rating) TableName() string { return "ratings" }
