package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/as0628/expense-tracker-project/internal/models"
	"github.com/as0628/expense-tracker-project/internal/service"
	"github.com/as0628/expense-tracker-project/internal/util"

	"github.com/gin-gonic/gin"
)

// ExpenseHandler 负责账目相关接口
type ExpenseHandler struct {
	Ledger  *service.LedgerService
	Reports *service.ReportEngine
}

func NewExpenseHandler(ledger *service.LedgerService, reports *service.ReportEngine) *ExpenseHandler {
	return &ExpenseHandler{Ledger: ledger, Reports: reports}
}

// ---------- 请求/响应结构 ----------

// amount 既可以是 JSON 数字也可以是数字字符串
type expenseReq struct {
	Amount      json.Number `json:"amount"`
	Description string      `json:"description"`
	Category    string      `json:"category"`
	Type        string      `json:"type"`
	Note        string      `json:"note"`
}

func (r expenseReq) input() service.TransactionInput {
	return service.TransactionInput{
		Amount:      r.Amount.String(),
		Description: r.Description,
		Category:    r.Category,
		Type:        r.Type,
		Note:        r.Note,
	}
}

type expenseResp struct {
	ID          uint      `json:"id"`
	Amount      string    `json:"amount"` // 元，两位小数
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Type        string    `json:"type"`
	Note        string    `json:"note"`
	CreatedAt   time.Time `json:"created_at"`
}

func toExpenseResp(t *models.Transaction) expenseResp {
	return expenseResp{
		ID:          t.ID,
		Amount:      service.FormatCents(t.AmountCents),
		Description: t.Description,
		Category:    t.Category,
		Type:        t.Type,
		Note:        t.Note,
		CreatedAt:   t.CreatedAt,
	}
}

func toExpenseList(rows []models.Transaction) []expenseResp {
	out := make([]expenseResp, 0, len(rows))
	for i := range rows {
		out = append(out, toExpenseResp(&rows[i]))
	}
	return out
}

func bindExpense(c *gin.Context) (expenseReq, bool) {
	var req expenseReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid request body")
		return req, false
	}
	return req, true
}

// ---------- 记一笔 ----------

func (h *ExpenseHandler) Create(c *gin.Context) {
	account, ok := currentAccount(c)
	if !ok {
		return
	}
	req, ok := bindExpense(c)
	if !ok {
		return
	}

	id, err := h.Ledger.Add(c.Request.Context(), account.ID, req.input())
	if err != nil {
		util.Fail(c, err)
		return
	}

	util.Created(c, util.Response{
		"message": "Expense added",
		"id":      id,
	})
}

// ---------- 列表 ----------

func (h *ExpenseHandler) List(c *gin.Context) {
	account, ok := currentAccount(c)
	if !ok {
		return
	}

	rows, err := h.Ledger.List(c.Request.Context(), account.ID)
	if err != nil {
		util.Fail(c, err)
		return
	}

	util.Success(c, util.Response{
		"expenses": toExpenseList(rows),
	})
}

// ---------- 修改 ----------

func (h *ExpenseHandler) Update(c *gin.Context) {
	account, ok := currentAccount(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	req, ok := bindExpense(c)
	if !ok {
		return
	}

	if err := h.Ledger.Update(c.Request.Context(), account.ID, id, req.input()); err != nil {
		util.Fail(c, err)
		return
	}

	util.Success(c, util.Response{
		"message": "Expense updated",
		"id":      id,
	})
}

// ---------- 删除 ----------

func (h *ExpenseHandler) Delete(c *gin.Context) {
	account, ok := currentAccount(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.Ledger.Delete(c.Request.Context(), account.ID, id); err != nil {
		util.Fail(c, err)
		return
	}

	util.Success(c, util.Response{
		"message": "Expense deleted",
	})
}

// ---------- 统计 ----------

func (h *ExpenseHandler) Report(c *gin.Context) {
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

func reportResponse(r *service.Report) util.Response {
	return util.Response{
		"period":        r.Period,
		"start":         r.Start,
		"end":           r.End,
		"total_income":  service.FormatCents(r.TotalIncome),
		"total_expense": service.FormatCents(r.TotalExpense),
		"balance":       service.FormatCents(r.Balance),
	}
}
