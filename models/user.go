package models

import "time"

// User owns a set of positions. Positions point back through Position.UserID;
// there is no ORM association, deletes cascade in the service layer.
type User struct {
	UserID    string    `gorm:"primaryKey;column:user_id;size:64" json:"userId"`
	Username  string    `gorm:"size:120" json:"username"`
	Email     string    `gorm:"size:320" json:"email"`
	Password  string    `gorm:"size:255;not null" json:"-"`
	CreatedAt time.Time `json:"-"`
}

func (User) TableName() string {
	return "user_details"
}
