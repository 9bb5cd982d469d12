package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/painel-admin-api/internal/middleware"
	"github.com/noah-isme/painel-admin-api/internal/models"
)

func viewerID(c *gin.Context) string {
	claims, ok := middleware.CurrentUser(c)
	if !ok {
		return ""
	}
	return claims.UserID
}

func enrollmentFromPath(c *gin.Context) models.EnrollmentRef {
	return models.EnrollmentRef{
		CourseID:  strings.TrimSpace(c.Param("cursoId")),
		ClassID:   strings.TrimSpace(c.Param("turmaId")),
		StudentID: strings.TrimSpace(c.Param("alunoId")),
	}
}

// studentIDsFromQuery accepts both ?alunoIds=a,b and repeated ?alunoIds=a&alunoIds=b.
func studentIDsFromQuery(c *gin.Context) []string {
	var ids []string
	for _, raw := range c.QueryArray("alunoIds") {
		for _, part := range strings.Split(raw, ",") {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				ids = append(ids, trimmed)
			}
		}
	}
	return ids
}

func queryBool(c *gin.Context, key string) bool {
	switch strings.ToLower(strings.TrimSpace(c.Query(key))) {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}
