package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/aptechmall/ordercore/internal/config"
	"github.com/aptechmall/ordercore/internal/constants"
	"github.com/aptechmall/ordercore/internal/i18n"
	"github.com/aptechmall/ordercore/internal/queue"
	"github.com/aptechmall/ordercore/internal/repository"

	gomail "github.com/wneessen/go-mail"
)

type notifyOrderRepoStub struct {
	repository.OrderRepository
	receiverEmail string
	lookupErr     error
}

func (s notifyOrderRepoStub) ResolveReceiverEmailByOrderID(orderID uint) (string, error) {
	return s.receiverEmail, s.lookupErr
}

func TestEnqueueOrderStatusNotifyIfEligible(t *testing.T) {
	payload := queue.OrderStatusNotifyPayload{OrderID: 1, Status: constants.OrderStatusConfirmed}

	skipped, err := enqueueOrderStatusNotifyIfEligible(notifyOrderRepoStub{receiverEmail: "a@example.com"}, nil, payload)
	if err != nil || !skipped {
		t.Fatalf("nil queue should skip: %v %v", skipped, err)
	}

	disabled, err := queue.NewClient(&config.QueueConfig{Enabled: false})
	if err != nil {
		t.Fatalf("new disabled client failed: %v", err)
	}
	skipped, err = enqueueOrderStatusNotifyIfEligible(notifyOrderRepoStub{receiverEmail: "  "}, disabled, payload)
	if err != nil || !skipped {
		t.Fatalf("empty receiver should skip: %v %v", skipped, err)
	}
	skipped, err = enqueueOrderStatusNotifyIfEligible(notifyOrderRepoStub{receiverEmail: "a@example.com"}, disabled, payload)
	if err != nil || skipped {
		t.Fatalf("receiver present should enqueue: %v %v", skipped, err)
	}
	skipped, err = enqueueOrderStatusNotifyIfEligible(notifyOrderRepoStub{lookupErr: errors.New("boom")}, disabled, payload)
	if err != nil || skipped {
		t.Fatalf("lookup failure should still enqueue: %v %v", skipped, err)
	}
}

func TestOrderNotificationServiceSendsStatusEmail(t *testing.T) {
	db := setupServiceTestDB(t)
	owner := createTestUser(t, db, "notify_owner", constants.RoleCustomer)
	order := seedOrder(t, db, owner.ID, "AM-NOTIFY-1", constants.OrderStatusShipped, time.Now())

	emailSvc := NewEmailService(&config.EmailConfig{Enabled: true, Host: "smtp.example.com", Port: 25, From: "noreply@example.com"})
	var sent []*gomail.Msg
	emailSvc.send = func(_ context.Context, msg *gomail.Msg) error {
		sent = append(sent, msg)
		return nil
	}
	svc := NewOrderNotificationService(repository.NewOrderRepository(db), emailSvc, nil, i18n.LocaleEN)

	err := svc.HandleStatusNotify(context.Background(), queue.OrderStatusNotifyPayload{
		OrderID:    order.ID,
		OrderNo:    order.OrderNo,
		FromStatus: constants.OrderStatusConfirmed,
		Status:     constants.OrderStatusShipped,
	})
	if err != nil {
		t.Fatalf("handle notify failed: %v", err)
	}
	if len(sent) != 1 {
		t.Fatalf("want 1 email got %d", len(sent))
	}
	subject := sent[0].GetGenHeader(gomail.HeaderSubject)
	if len(subject) == 0 || !strings.Contains(subject[0], "Shipped") {
		t.Fatalf("unexpected subject: %v", subject)
	}

	// 订单不存在时跳过
	if err := svc.HandleStatusNotify(context.Background(), queue.OrderStatusNotifyPayload{OrderID: 9999}); err != nil {
		t.Fatalf("missing order should be skipped, got %v", err)
	}
}

func TestOrderNotificationServiceRetriesTransientFailures(t *testing.T) {
	db := setupServiceTestDB(t)
	owner := createTestUser(t, db, "notify_retry", constants.RoleCustomer)
	order := seedOrder(t, db, owner.ID, "AM-NOTIFY-2", constants.OrderStatusConfirmed, time.Now())

	emailSvc := NewEmailService(&config.EmailConfig{Enabled: true, Host: "smtp.example.com", Port: 25, From: "noreply@example.com"})
	transient := errors.New("dial tcp: i/o timeout")
	emailSvc.send = func(context.Context, *gomail.Msg) error { return transient }
	svc := NewOrderNotificationService(repository.NewOrderRepository(db), emailSvc, nil, "")

	payload := queue.OrderStatusNotifyPayload{OrderID: order.ID, Status: constants.OrderStatusConfirmed}
	if err := svc.HandleStatusNotify(context.Background(), payload); !errors.Is(err, transient) {
		t.Fatalf("transient failure should be returned for retry, got %v", err)
	}

	emailSvc.send = func(context.Context, *gomail.Msg) error { return errors.New("550 recipient address rejected") }
	if err := svc.HandleStatusNotify(context.Background(), payload); err != nil {
		t.Fatalf("permanent failure should be dropped, got %v", err)
	}
}
