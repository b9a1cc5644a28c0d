package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/as0628/expense-tracker-project/internal/apperr"
	"github.com/as0628/expense-tracker-project/internal/config"
	"github.com/as0628/expense-tracker-project/internal/models"
	"github.com/as0628/expense-tracker-project/internal/notify"
	"github.com/as0628/expense-tracker-project/internal/payment"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Gateway is the part of the payment provider the service consumes.
type Gateway interface {
	CreateOrder(ctx context.Context, req payment.OrderRequest) (*payment.OrderSession, error)
	PaymentStatus(ctx context.Context, orderID string) (string, error)
}

// Notifier is told about confirmed payments.
type Notifier interface {
	PaymentSucceeded(ctx context.Context, msg notify.PaymentSucceeded) error
}

// Checkout is what the client needs to start the gateway checkout.
type Checkout struct {
	OrderID          string
	PaymentSessionID string
	Amount           string
}

// Confirmation is the outcome of verifying an order with the gateway.
type Confirmation struct {
	OrderID string
	Status  string
	Success bool
}

type PaymentService struct {
	db       *gorm.DB
	log      *logrus.Logger
	gateway  Gateway
	notifier Notifier
	cfg      config.PaymentConfig
	price    decimal.Decimal
	now      func() time.Time
}

func NewPaymentService(db *gorm.DB, log *logrus.Logger, gateway Gateway, notifier Notifier, cfg config.PaymentConfig) (*PaymentService, error) {
	price, err := decimal.NewFromString(cfg.PremiumPrice)
	if err != nil || !price.IsPositive() {
		return nil, fmt.Errorf("invalid payment.premium_price %q", cfg.PremiumPrice)
	}
	return &PaymentService{
		db:       db,
		log:      log,
		gateway:  gateway,
		notifier: notifier,
		cfg:      cfg,
		price:    price,
		now:      time.Now,
	}, nil
}

func (s *PaymentService) newOrderID() string {
	return fmt.Sprintf("order_%d_%s", s.now().UnixMilli(), strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

// CreatePendingOrder opens a premium order at the gateway and records it as
// PENDING.
func (s *PaymentService) CreatePendingOrder(ctx context.Context, account *models.Account) (*Checkout, error) {
	const op = "payment.CreatePendingOrder"

	orderID := s.newOrderID()
	session, err := s.gateway.CreateOrder(ctx, payment.OrderRequest{
		OrderID:       orderID,
		Amount:        s.price,
		Currency:      s.cfg.Currency,
		CustomerID:    strconv.FormatUint(uint64(account.ID), 10),
		CustomerEmail: account.Email,
		CustomerPhone: s.cfg.CustomerPhone,
		ReturnURL:     strings.ReplaceAll(s.cfg.ReturnURL, "{order_id}", orderID),
	})
	if err != nil {
		return nil, s.gatewayFailure(op, account.ID, err)
	}
	if session == nil || session.PaymentSessionID == "" {
		return nil, s.gatewayFailure(op, account.ID, errors.New("no payment session in response"))
	}

	order := models.PaymentOrder{
		OrderID:     orderID,
		AmountCents: s.price.Shift(2).IntPart(),
		Status:      models.OrderPending,
		UserID:      account.ID,
	}
	if err := s.db.WithContext(ctx).Create(&order).Error; err != nil {
		return nil, failWith(s.log, op, account.ID, fmt.Errorf("insert order: %w", err))
	}

	s.log.WithFields(logrus.Fields{
		"owner_id": account.ID,
		"order_id": orderID,
	}).Info("payment order created")

	return &Checkout{
		OrderID:          orderID,
		PaymentSessionID: session.PaymentSessionID,
		Amount:           s.price.StringFixed(2),
	}, nil
}

// ConfirmOrder asks the gateway for the order's payment status. SUCCESS marks
// the order and upgrades the account in one transaction; anything else marks
// the order FAILED. An order that already succeeded is reported as such
// without asking the gateway again.
func (s *PaymentService) ConfirmOrder(ctx context.Context, ownerID uint, orderID string) (*Confirmation, error) {
	const op = "payment.ConfirmOrder"

	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return nil, apperr.Validation(op, "orderId is required")
	}

	order, err := s.findOrder(ctx, op, ownerID, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status == models.OrderSuccess {
		return &Confirmation{OrderID: orderID, Status: models.OrderSuccess, Success: true}, nil
	}

	status, err := s.gateway.PaymentStatus(ctx, orderID)
	if err != nil {
		return nil, s.gatewayFailure(op, ownerID, err)
	}

	if status != payment.StatusSuccess {
		err := s.db.WithContext(ctx).Model(&models.PaymentOrder{}).
			Where("id = ? AND status <> ?", order.ID, models.OrderSuccess).
			Update("status", models.OrderFailed).Error
		if err != nil {
			return nil, failWith(s.log, op, ownerID, fmt.Errorf("mark order failed: %w", err))
		}
		s.log.WithFields(logrus.Fields{
			"owner_id":       ownerID,
			"order_id":       orderID,
			"gateway_status": status,
		}).Info("payment not successful")
		return &Confirmation{OrderID: orderID, Status: models.OrderFailed}, nil
	}

	var upgraded bool
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.PaymentOrder{}).
			Where("id = ? AND status <> ?", order.ID, models.OrderSuccess).
			Update("status", models.OrderSuccess)
		if res.Error != nil {
			return fmt.Errorf("mark order success: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			// confirmed concurrently
			return nil
		}
		if err := tx.Model(&models.Account{}).
			Where("id = ?", ownerID).
			Update("is_premium", true).Error; err != nil {
			return fmt.Errorf("set premium: %w", err)
		}
		upgraded = true
		return nil
	})
	if err != nil {
		return nil, failWith(s.log, op, ownerID, err)
	}

	if upgraded {
		s.log.WithFields(logrus.Fields{
			"owner_id": ownerID,
			"order_id": orderID,
		}).Info("premium activated")
		s.notify(ctx, ownerID, order)
	}
	return &Confirmation{OrderID: orderID, Status: models.OrderSuccess, Success: true}, nil
}

// OrderStatus returns the caller's order as stored.
func (s *PaymentService) OrderStatus(ctx context.Context, ownerID uint, orderID string) (*models.PaymentOrder, error) {
	return s.findOrder(ctx, "payment.OrderStatus", ownerID, orderID)
}

func (s *PaymentService) findOrder(ctx context.Context, op string, ownerID uint, orderID string) (*models.PaymentOrder, error) {
	var order models.PaymentOrder
	err := s.db.WithContext(ctx).
		Where("order_id = ? AND user_id = ?", orderID, ownerID).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound(op, "Order not found")
		}
		return nil, failWith(s.log, op, ownerID, fmt.Errorf("load order: %w", err))
	}
	return &order, nil
}

// notify failures are logged only; the upgrade has already been committed.
func (s *PaymentService) notify(ctx context.Context, ownerID uint, order *models.PaymentOrder) {
	if s.notifier == nil {
		return
	}
	var account models.Account
	if err := s.db.WithContext(ctx).First(&account, ownerID).Error; err != nil {
		s.log.WithError(err).WithField("owner_id", ownerID).Warn("payment notification skipped")
		return
	}
	msg := notify.PaymentSucceeded{
		OrderID:   order.OrderID,
		UserID:    account.ID,
		Name:      account.Name,
		Email:     account.Email,
		Amount:    FormatCents(order.AmountCents),
		Timestamp: s.now().UTC(),
	}
	if err := s.notifier.PaymentSucceeded(ctx, msg); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"owner_id": ownerID,
			"order_id": order.OrderID,
		}).Warn("payment notification failed")
	}
}

func (s *PaymentService) gatewayFailure(op string, ownerID uint, err error) error {
	s.log.WithFields(logrus.Fields{
		"op":       op,
		"owner_id": ownerID,
	}).WithError(err).Error("payment gateway call failed")
	return apperr.Payment(op, err)
}
