package models

import "time"

// Report represents an abuse report against a post or comment. The unique
// index enforces at most one report per (reporter, target) pair.
type Report struct {
	ID         int64     `gorm:"primaryKey;autoIncrement;column:report_id"`
	UserID     int64     `gorm:"not null;uniqueIndex:reports_ux_reporter_target;column:user_id"`
	TargetType string    `gorm:"type:varchar(16);not null;uniqueIndex:reports_ux_reporter_target;column:target_type"`
	TargetID   int64     `gorm:"not null;uniqueIndex:reports_ux_reporter_target;column:target_id"`
	Reason     string    `gorm:"type:text;column:reason"`
	CreatedAt  time.Time `gorm:"not null;column:created_at"`
}

// TableName specifies the table name for Report
func (Report) TableName() string {
	return "reports"
}

// ReportReason describes a selectable report reason category.
type ReportReason struct {
	ID          string
	Title       string
	Description string
}

// ReportReasons lists the selectable report reason categories.
var ReportReasons = []ReportReason{
	{"spam", "Spam", "Unwanted repetitive content or advertisements"},
	{"harassment", "Harassment", "Bullying, threats, or abusive language"},
	{"inappropriate", "Inappropriate Content", "Sexual, violent, or disturbing content"},
	{"hate_speech", "Hate Speech", "Discriminatory or hateful language"},
	{"misinformation", "Misinformation", "False or misleading information"},
	{"personal_info", "Personal Information", "Sharing private information"},
	{"off_topic", "Off Topic", "Content not relevant to the community"},
	{"other", "Other", "Other reason not listed above"},
}

// ReasonByID returns the report reason for the given id, falling back to
// the catch-all "other" reason.
func ReasonByID(id string) ReportReason {
	for _, r := range ReportReasons {
		if r.ID == id {
			return r
		}
	}
	return ReportReason{"other", "Other", "Other reason"}
}
