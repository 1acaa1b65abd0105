package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/softdesk/softdesk-api/internal/models"
	"github.com/softdesk/softdesk-api/pkg/response"
)

// ProjectChoices lists the accepted project types
// GET /api/choices/projects
func ProjectChoices(c *gin.Context) {
	response.Success(c, gin.H{"type": models.ProjectTypes})
}

// IssueChoices lists the accepted issue statuses, priorities and tags
// GET /api/choices/issues
func IssueChoices(c *gin.Context) {
	response.Success(c, gin.H{
		"status":   models.IssueStatuses,
		"priority": models.IssuePriorities,
		"tag":      models.IssueTags,
	})
}
