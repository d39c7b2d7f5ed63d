package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/confessly/confessly/internal/models"
	"github.com/confessly/confessly/internal/moderation"
)

// Rejection reasons must be meaningful to the submitter.
const (
	minReasonLength = 10
	maxReasonLength = 500
)

// quickRejectReasons maps the one-tap rejection codes to their canned text.
var quickRejectReasons = map[string]string{
	"inappropriate": "Your confession contains inappropriate content that violates the community guidelines.",
	"spam":          "Your confession appears to be spam or promotional content.",
	"off_topic":     "Your confession is not relevant to this community.",
	"low_quality":   "Your confession is too short or unclear to be published.",
	"duplicate":     "A very similar confession has already been published.",
}

func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}

type adminRequest struct {
	AdminID int64 `json:"admin_id" binding:"required"`
}

func (r *Router) approvePost(c *gin.Context) {
	postID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req adminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	result, err := r.services.Approval.Approve(c.Request.Context(), postID, req.AdminID)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := gin.H{
		"status":      result.Status,
		"post_number": result.PostNumber,
		"published":   result.Published,
	}
	if result.Status == moderation.StatusAlreadyRejected {
		resp["rejection_reason"] = result.RejectionReason
	}
	if result.ChannelMessageID != nil {
		resp["channel_message_id"] = *result.ChannelMessageID
	}
	c.JSON(http.StatusOK, resp)
}

type rejectRequest struct {
	AdminID    int64  `json:"admin_id" binding:"required"`
	Reason     string `json:"reason"`
	ReasonCode string `json:"reason_code"`
}

func (r *Router) rejectPost(c *gin.Context) {
	postID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req rejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	reason := req.Reason
	if req.ReasonCode != "" {
		canned, ok := quickRejectReasons[req.ReasonCode]
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown reason_code"})
			return
		}
		reason = canned
	}
	if len(reason) < minReasonLength || len(reason) > maxReasonLength {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "reason must be between 10 and 500 characters",
		})
		return
	}

	result, err := r.services.Approval.Reject(c.Request.Context(), postID, req.AdminID, reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":           result.Status,
		"rejection_reason": result.RejectionReason,
	})
}

func (r *Router) flagPost(c *gin.Context) {
	postID, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := r.services.Approval.Flag(c.Request.Context(), postID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "flagged"})
}

func (r *Router) deletePost(c *gin.Context) {
	postID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req adminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	stats, err := r.services.Deletion.DeletePost(c.Request.Context(), postID, req.AdminID)
	if err != nil {
		respondError(c, err)
		return
	}

	// Removing the channel copy is best-effort; the deletion has committed.
	if stats.ChannelMessageID != nil {
		if err := r.client.DeleteMessage(c.Request.Context(), r.cfg.ChannelID, *stats.ChannelMessageID); err != nil {
			r.logger.Warn("Failed to delete channel message",
				zap.Int64("post_id", postID),
				zap.Int64("message_id", *stats.ChannelMessageID),
				zap.Error(err))
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"comments_deleted":  stats.CommentsDeleted,
		"reactions_deleted": stats.ReactionsDeleted,
		"reports_deleted":   stats.ReportsDeleted,
	})
}

type deleteCommentRequest struct {
	AdminID         int64  `json:"admin_id" binding:"required"`
	Replace         bool   `json:"replace"`
	ReplacementText string `json:"replacement_text"`
}

func (r *Router) deleteComment(c *gin.Context) {
	commentID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req deleteCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	if req.Replace {
		stats, err := r.services.Deletion.ReplaceComment(c.Request.Context(), commentID, req.AdminID, req.ReplacementText)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"mode":              "replaced",
			"comments_replaced": stats.CommentsReplaced,
			"replies_replaced":  stats.RepliesReplaced,
			"reports_cleared":   stats.ReportsCleared,
		})
		return
	}

	stats, err := r.services.Deletion.DeleteComment(c.Request.Context(), commentID, req.AdminID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"mode":              "deleted",
		"comments_deleted":  stats.CommentsDeleted,
		"replies_deleted":   stats.RepliesDeleted,
		"reactions_deleted": stats.ReactionsDeleted,
		"reports_deleted":   stats.ReportsDeleted,
		"was_reply":         stats.WasReply,
	})
}

type replaceCommentRequest struct {
	AdminID         int64  `json:"admin_id" binding:"required"`
	ReplacementText string `json:"replacement_text"`
}

func (r *Router) replaceComment(c *gin.Context) {
	commentID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req replaceCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	stats, err := r.services.Deletion.ReplaceComment(c.Request.Context(), commentID, req.AdminID, req.ReplacementText)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"comments_replaced": stats.CommentsReplaced,
		"replies_replaced":  stats.RepliesReplaced,
		"reports_cleared":   stats.ReportsCleared,
	})
}

type submitReportRequest struct {
	ReporterID int64  `json:"reporter_id" binding:"required"`
	TargetType string `json:"target_type" binding:"required"`
	TargetID   int64  `json:"target_id" binding:"required"`
	Reason     string `json:"reason"`
}

func (r *Router) submitReport(c *gin.Context) {
	var req submitReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	reason := models.ReasonByID(req.Reason).ID
	result, err := r.services.Reports.Submit(c.Request.Context(), req.ReporterID, req.TargetType, req.TargetID, reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"duplicate": result.Duplicate,
		"total":     result.Total,
		"escalated": result.Escalated,
	})
}

func (r *Router) reportCount(c *gin.Context) {
	targetID, ok := paramID(c, "id")
	if !ok {
		return
	}
	count, err := r.services.Reports.Count(c.Request.Context(), c.Param("target_type"), targetID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

func (r *Router) reportReasons(c *gin.Context) {
	reasons := make([]gin.H, 0, len(models.ReportReasons))
	for _, reason := range models.ReportReasons {
		reasons = append(reasons, gin.H{
			"id":          reason.ID,
			"title":       reason.Title,
			"description": reason.Description,
		})
	}
	c.JSON(http.StatusOK, gin.H{"reasons": reasons})
}

func (r *Router) dismissReports(c *gin.Context) {
	targetID, ok := paramID(c, "id")
	if !ok {
		return
	}
	adminID, err := strconv.ParseInt(c.Query("admin_id"), 10, 64)
	if err != nil || adminID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid admin_id"})
		return
	}

	cleared, err := r.services.Deletion.ClearReports(c.Request.Context(), c.Param("target_type"), targetID, adminID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reports_cleared": cleared})
}

func (r *Router) listReports(c *gin.Context) {
	reports, err := r.services.Reports.ListAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reports": reports})
}

func (r *Router) listFlagged(c *gin.Context) {
	flagged, err := r.services.Approval.Flagged(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"posts":    flagged.Posts,
		"comments": flagged.Comments,
	})
}

func (r *Router) listAudit(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 500 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = parsed
	}

	entries, err := r.services.Deletion.AuditLog(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

type reactRequest struct {
	UserID     int64  `json:"user_id" binding:"required"`
	TargetType string `json:"target_type" binding:"required"`
	TargetID   int64  `json:"target_id" binding:"required"`
	Type       string `json:"type" binding:"required"`
}

func (r *Router) react(c *gin.Context) {
	var req reactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	result, err := r.services.Reactions.React(c.Request.Context(), req.UserID, req.TargetType, req.TargetID, req.Type)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"action":   result.Action,
		"likes":    result.Likes,
		"dislikes": result.Dislikes,
	})
}

func (r *Router) blockUser(c *gin.Context) {
	r.setBlocked(c, true)
}

func (r *Router) unblockUser(c *gin.Context) {
	r.setBlocked(c, false)
}

func (r *Router) setBlocked(c *gin.Context, blocked bool) {
	userID, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := r.services.Users.SetBlocked(c.Request.Context(), userID, blocked); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user_id": userID, "blocked": blocked})
}

type bulkRequest struct {
	AdminID int64   `json:"admin_id" binding:"required"`
	IDs     []int64 `json:"ids" binding:"required,min=1"`
	Reason  string  `json:"reason"`
}

func (r *Router) bulkApprove(c *gin.Context) {
	var req bulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	result, err := r.services.Bulk.BulkApprove(c.Request.Context(), req.IDs, req.AdminID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondBulk(c, result.Succeeded, result.Skipped, result.Failed)
}

func (r *Router) bulkReject(c *gin.Context) {
	var req bulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	if len(req.Reason) < minReasonLength || len(req.Reason) > maxReasonLength {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "reason must be between 10 and 500 characters",
		})
		return
	}
	result, err := r.services.Bulk.BulkReject(c.Request.Context(), req.IDs, req.AdminID, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	respondBulk(c, result.Succeeded, result.Skipped, result.Failed)
}

func (r *Router) bulkDeleteComments(c *gin.Context) {
	var req bulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	result, err := r.services.Bulk.BulkDeleteComments(c.Request.Context(), req.IDs, req.AdminID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondBulk(c, result.Succeeded, result.Skipped, result.Failed)
}

func (r *Router) bulkBlockUsers(c *gin.Context) {
	var req bulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	result, err := r.services.Bulk.BulkBlockUsers(c.Request.Context(), req.IDs, req.AdminID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondBulk(c, result.Succeeded, result.Skipped, result.Failed)
}

func respondBulk(c *gin.Context, succeeded, skipped, failed []int64) {
	if succeeded == nil {
		succeeded = []int64{}
	}
	if skipped == nil {
		skipped = []int64{}
	}
	if failed == nil {
		failed = []int64{}
	}
	c.JSON(http.StatusOK, gin.H{
		"succeeded": succeeded,
		"skipped":   skipped,
		"failed":    failed,
	})
}
