package logs

import (
	"net/http"

	"safety-forms-api/internal/util"

	"github.com/gin-gonic/gin"
)

type LogServiceAPI interface {
	GetLogs(input LogFilterInput) ([]SystemLog, LogAggregates, int64, int, error)
}

type LogController struct {
	LogService LogServiceAPI
}

// GET /api/logs?action=...&form_id=...&roles=a,b&page=1&page_size=20
func (lc *LogController) GetLogs(c *gin.Context) {
	var input LogFilterInput
	if err := c.ShouldBindQuery(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	input.Roles = util.SplitCSVParam(c.QueryArray("roles"))

	rows, aggs, total, totalPages, err := lc.LogService.GetLogs(input)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":        rows,
		"page":        input.Page,
		"page_size":   input.PageSize,
		"total":       total,
		"total_pages": totalPages,
		"aggregates":  aggs,
	})
}
