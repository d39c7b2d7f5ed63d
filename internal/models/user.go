package models

import (
	"database/sql"
	"time"
)

// User represents a bot user
type User struct {
	ID             int64          `gorm:"primaryKey;autoIncrement:false;column:user_id"`
	Username       sql.NullString `gorm:"type:varchar(64);column:username"`
	FirstName      sql.NullString `gorm:"type:varchar(128);column:first_name"`
	LastName       sql.NullString `gorm:"type:varchar(128);column:last_name"`
	JoinDate       time.Time      `gorm:"not null;column:join_date"`
	QuestionsAsked int64          `gorm:"not null;default:0;column:questions_asked"`
	CommentsPosted int64          `gorm:"not null;default:0;column:comments_posted"`
	Blocked        bool           `gorm:"not null;default:false;column:blocked"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "users"
}
