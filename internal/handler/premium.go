package handler

import (
	"github.com/as0628/expense-tracker-project/internal/service"
	"github.com/as0628/expense-tracker-project/internal/util"

	"github.com/gin-gonic/gin"
)

// PremiumHandler 负责会员功能：分页列表、报表、导出、排行榜
type PremiumHandler struct {
	Ledger  *service.LedgerService
	Reports *service.ReportEngine
	Exports *service.ExportEngine
	Board   *service.Leaderboard
}

func (h *PremiumHandler) ListExpenses(c *gin.Context) {
	account, ok := currentAccount(c)
	if !ok {
		return
	}

	page, err := h.Ledger.ListPage(c.Request.Context(), account.ID, queryInt(c, "page"), queryInt(c, "limit"))
	if err != nil {
		util.Fail(c, err)
		return
	}

	util.Success(c, util.Response{
		"expenses":    toExpenseList(page.Items),
		"page":        page.Page,
		"limit":       page.Limit,
		"total":       page.Total,
		"total_pages": page.TotalPages,
	})
}

func (h *PremiumHandler) Report(c *gin.Context) {
	account, ok := currentAccount(c)
	if !ok {
		return
	}

	report, err := h.Reports.Compute(c.Request.Context(), account.ID, c.Query("period"))
	if err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, reportResponse(report))
}

// Download 生成 Excel 报表并返回带签名的下载地址
func (h *PremiumHandler) Download(c *gin.Context) {
	account, ok := currentAccount(c)
	if !ok {
		return
	}

	url, err := h.Exports.Generate(c.Request.Context(), service.Owner{
		ID:        account.ID,
		IsPremium: account.IsPremium,
	})
	if err != nil {
		util.Fail(c, err)
		return
	}

	util.Success(c, util.Response{
		"message":  "Report generated",
		"file_url": url,
	})
}

func (h *PremiumHandler) History(c *gin.Context) {
	account, ok := currentAccount(c)
	if !ok {
		return
	}

	page, err := h.Exports.History(c.Request.Context(), account.ID, queryInt(c, "page"), queryInt(c, "limit"))
	if err != nil {
		util.Fail(c, err)
		return
	}

	items := make([]gin.H, 0, len(page.Records))
	for _, r := range page.Records {
		items = append(items, gin.H{
			"id":         r.ID,
			"file_url":   r.URL,
			"created_at": r.CreatedAt,
		})
	}

	util.Success(c, util.Response{
		"history":     items,
		"page":        page.Page,
		"limit":       page.Limit,
		"total":       page.Total,
		"total_pages": page.TotalPages,
	})
}

func (h *PremiumHandler) Leaderboard(c *gin.Context) {
	page, err := h.Board.Get(c.Request.Context(), queryInt(c, "page"), queryInt(c, "limit"))
	if err != nil {
		util.Fail(c, err)
		return
	}

	rows := make([]gin.H, 0, len(page.Entries))
	for _, e := range page.Entries {
		rows = append(rows, gin.H{
			"id":            e.ID,
			"name":          e.Name,
			"total_expense": service.FormatCents(e.TotalExpense),
		})
	}

	util.Success(c, util.Response{
		"leaderboard": rows,
		"page":        page.Page,
		"limit":       page.Limit,
		"total":       page.Total,
		"total_pages": page.TotalPages,
	})
}
