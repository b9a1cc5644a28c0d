package handler

import (
	"encoding/csv"
	"fmt"

	"github.com/as0628/expense-tracker-project/internal/service"
	"github.com/as0628/expense-tracker-project/internal/util"

	"github.com/gin-gonic/gin"
)

// ExportCSV 导出当前用户全部账目为 CSV，新的在前
func (h *ExpenseHandler) ExportCSV(c *gin.Context) {
	account, ok := currentAccount(c)
	if !ok {
		return
	}

	rows, err := h.Ledger.List(c.Request.Context(), account.ID)
	if err != nil {
		util.Fail(c, err)
		return
	}

	// 设置响应头
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"expenses_%d.csv\"", account.ID))

	// UTF-8 BOM（让 Excel 正确识别编码）
	_, _ = c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})

	writer := csv.NewWriter(c.Writer)
	_ = writer.Write([]string{"Date", "Type", "Category", "Description", "Amount", "Note"})
	for _, r := range rows {
		_ = writer.Write([]string{
			r.CreatedAt.Local().Format("2006-01-02"),
			r.Type,
			r.Category,
			r.Description,
			service.FormatCents(r.AmountCents),
			r.Note,
		})
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		_ = c.Error(err)
	}
}
