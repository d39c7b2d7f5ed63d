package db

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/confessly/confessly/internal/models"
)

// Repository provides database access methods
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new repository
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// DB returns the underlying gorm handle for transaction scoping.
func (r *Repository) DB() *gorm.DB {
	return r.db
}

// UserRepository provides user-related database operations
type UserRepository struct {
	*Repository
}

// NewUserRepository creates a new user repository
func NewUserRepository(repo *Repository) *UserRepository {
	return &UserRepository{Repository: repo}
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// SetBlocked updates a user's blocked flag
func (r *UserRepository) SetBlocked(ctx context.Context, id int64, blocked bool) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("user_id = ?", id).
		Update("blocked", blocked).Error
}

// PostRepository provides post-related database operations
type PostRepository struct {
	*Repository
}

// NewPostRepository creates a new post repository
func NewPostRepository(repo *Repository) *PostRepository {
	return &PostRepository{Repository: repo}
}

// GetByID retrieves a post by ID
func (r *PostRepository) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &post, nil
}

// Create creates a new post
func (r *PostRepository) Create(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

// Update updates a post
func (r *PostRepository) Update(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Save(post).Error
}

// MaxPostNumber returns the highest assigned public post number, or 0 if no
// post has been numbered yet.
func (r *PostRepository) MaxPostNumber(ctx context.Context) (int64, error) {
	var max *int64
	err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Select("MAX(post_number)").
		Where("post_number IS NOT NULL").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	if max == nil {
		return 0, nil
	}
	return *max, nil
}

// ListFlagged retrieves all flagged posts
func (r *PostRepository) ListFlagged(ctx context.Context) ([]*models.Post, error) {
	var posts []*models.Post
	if err := r.db.WithContext(ctx).Where("flagged = ?", true).Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// CommentRepository provides comment-related database operations
type CommentRepository struct {
	*Repository
}

// NewCommentRepository creates a new comment repository
func NewCommentRepository(repo *Repository) *CommentRepository {
	return &CommentRepository{Repository: repo}
}

// GetByID retrieves a comment by ID
func (r *CommentRepository) GetByID(ctx context.Context, id int64) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).First(&comment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &comment, nil
}

// Create creates a new comment
func (r *CommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

// IDsByPost returns all comment IDs belonging to a post, including replies.
func (r *CommentRepository) IDsByPost(ctx context.Context, postID int64) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).
		Model(&models.Comment{}).
		Where("post_id = ?", postID).
		Pluck("comment_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// ReplyIDs returns the IDs of the direct replies to a comment.
func (r *CommentRepository) ReplyIDs(ctx context.Context, commentID int64) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).
		Model(&models.Comment{}).
		Where("parent_comment_id = ?", commentID).
		Pluck("comment_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// CountByPost returns the number of comments on a post
func (r *CommentRepository) CountByPost(ctx context.Context, postID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Comment{}).
		Where("post_id = ?", postID).
		Count(&count).Error
	return count, err
}

// ListFlagged retrieves all flagged comments
func (r *CommentRepository) ListFlagged(ctx context.Context) ([]*models.Comment, error) {
	var comments []*models.Comment
	if err := r.db.WithContext(ctx).Where("flagged = ?", true).Find(&comments).Error; err != nil {
		return nil, err
	}
	return comments, nil
}

// ReportRepository provides report-related database operations
type ReportRepository struct {
	*Repository
}

// NewReportRepository creates a new report repository
func NewReportRepository(repo *Repository) *ReportRepository {
	return &ReportRepository{Repository: repo}
}

// CountByTarget returns the number of reports against a target
func (r *ReportRepository) CountByTarget(ctx context.Context, targetType string, targetID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Report{}).
		Where("target_type = ? AND target_id = ?", targetType, targetID).
		Count(&count).Error
	return count, err
}

// ExistsByReporter reports whether the reporter already reported the target
func (r *ReportRepository) ExistsByReporter(ctx context.Context, reporterID int64, targetType string, targetID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Report{}).
		Where("user_id = ? AND target_type = ? AND target_id = ?", reporterID, targetType, targetID).
		Count(&count).Error
	return count > 0, err
}

// Create creates a new report
func (r *ReportRepository) Create(ctx context.Context, report *models.Report) error {
	return r.db.WithContext(ctx).Create(report).Error
}

// ListAll retrieves all reports, newest first
func (r *ReportRepository) ListAll(ctx context.Context) ([]*models.Report, error) {
	var reports []*models.Report
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&reports).Error; err != nil {
		return nil, err
	}
	return reports, nil
}

// AuditRepository provides audit-log database operations
type AuditRepository struct {
	*Repository
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(repo *Repository) *AuditRepository {
	return &AuditRepository{Repository: repo}
}

// Create appends an audit entry
func (r *AuditRepository) Create(ctx context.Context, action *models.AdminAction) error {
	return r.db.WithContext(ctx).Create(action).Error
}

// List retrieves audit entries, newest first, up to limit
func (r *AuditRepository) List(ctx context.Context, limit int) ([]*models.AdminAction, error) {
	var actions []*models.AdminAction
	if err := r.db.WithContext(ctx).Order("id DESC").Limit(limit).Find(&actions).Error; err != nil {
		return nil, err
	}
	return actions, nil
}
