package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"safarpay/internal/domain/entities"
	mock_interfaces "safarpay/internal/usecase/interfaces/mocks"

	"go.uber.org/mock/gomock"
)

func TestNotificationUseCase_NotifyCompletion_NoOps(t *testing.T) {
	t.Run("payment not found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := mock_interfaces.NewMockIPaymentRepository(ctrl)
		sender := mock_interfaces.NewMockIEmailSender(ctrl)
		uc := NewNotificationUseCase(repo, sender)

		repo.EXPECT().GetByID(gomock.Any(), "missing").Return(entities.Payment{}, nil)

		sent, err := uc.NotifyCompletion(context.Background(), "missing")
		if err != nil || sent {
			t.Fatalf("expected no-op, got sent=%t err=%v", sent, err)
		}
	})

	for _, status := range []entities.PaymentStatus{entities.PaymentStatusPending, entities.PaymentStatusFailed} {
		t.Run("status "+string(status), func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()
			repo := mock_interfaces.NewMockIPaymentRepository(ctrl)
			sender := mock_interfaces.NewMockIEmailSender(ctrl)
			uc := NewNotificationUseCase(repo, sender)

			repo.EXPECT().GetByID(gomock.Any(), "p1").Return(entities.Payment{ID: "p1", TxRef: "tx-1", Status: status, CustomerEmail: "a@x.com"}, nil)

			sent, err := uc.NotifyCompletion(context.Background(), "p1")
			if err != nil || sent {
				t.Fatalf("expected no-op for %s, got sent=%t err=%v", status, sent, err)
			}
		})
	}

	t.Run("no recipient email", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := mock_interfaces.NewMockIPaymentRepository(ctrl)
		sender := mock_interfaces.NewMockIEmailSender(ctrl)
		uc := NewNotificationUseCase(repo, sender)

		repo.EXPECT().GetByID(gomock.Any(), "p1").Return(entities.Payment{ID: "p1", TxRef: "tx-1", Status: entities.PaymentStatusCompleted}, nil)

		sent, err := uc.NotifyCompletion(context.Background(), "p1")
		if err != nil || sent {
			t.Fatalf("expected no-op, got sent=%t err=%v", sent, err)
		}
	})

	t.Run("already notified", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := mock_interfaces.NewMockIPaymentRepository(ctrl)
		sender := mock_interfaces.NewMockIEmailSender(ctrl)
		uc := NewNotificationUseCase(repo, sender)

		repo.EXPECT().GetByID(gomock.Any(), "p1").Return(entities.Payment{ID: "p1", TxRef: "tx-1", Status: entities.PaymentStatusCompleted, CustomerEmail: "a@x.com"}, nil)
		repo.EXPECT().MarkNotified(gomock.Any(), "tx-1", gomock.Any()).Return(false, nil)
		// No Send expectation: duplicate deliveries send nothing.

		sent, err := uc.NotifyCompletion(context.Background(), "p1")
		if err != nil || sent {
			t.Fatalf("expected no-op, got sent=%t err=%v", sent, err)
		}
	})
}

func TestNotificationUseCase_NotifyCompletion_Sends(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	repo := mock_interfaces.NewMockIPaymentRepository(ctrl)
	sender := mock_interfaces.NewMockIEmailSender(ctrl)
	uc := NewNotificationUseCase(repo, sender)

	payment := entities.Payment{
		ID:                "p1",
		TxRef:             "booking-abc123",
		Amount:            500,
		Currency:          "ETB",
		Status:            entities.PaymentStatusCompleted,
		BookingReference:  "BK-9",
		CustomerEmail:     "a@x.com",
		CustomerFirstName: "Alem",
	}
	repo.EXPECT().GetByID(gomock.Any(), "p1").Return(payment, nil)
	repo.EXPECT().MarkNotified(gomock.Any(), "booking-abc123", gomock.Any()).Return(true, nil)
	sender.EXPECT().Send(gomock.Any(), "a@x.com", "Payment confirmation - booking-abc123", gomock.Any()).DoAndReturn(
		func(_ context.Context, _, _, body string) error {
			for _, want := range []string{"Alem", "booking-abc123", "500 ETB", "BK-9"} {
				if !strings.Contains(body, want) {
					t.Fatalf("body missing %q:\n%s", want, body)
				}
			}
			return nil
		})

	sent, err := uc.NotifyCompletion(context.Background(), "p1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !sent {
		t.Fatal("expected sent=true")
	}
}

func TestNotificationUseCase_NotifyCompletion_DeliveryFailurePropagates(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	repo := mock_interfaces.NewMockIPaymentRepository(ctrl)
	sender := mock_interfaces.NewMockIEmailSender(ctrl)
	uc := NewNotificationUseCase(repo, sender)

	repo.EXPECT().GetByID(gomock.Any(), "p1").Return(entities.Payment{ID: "p1", TxRef: "tx-1", Status: entities.PaymentStatusCompleted, CustomerEmail: "a@x.com"}, nil)
	repo.EXPECT().MarkNotified(gomock.Any(), "tx-1", gomock.Any()).Return(true, nil)
	sender.EXPECT().Send(gomock.Any(), "a@x.com", gomock.Any(), gomock.Any()).Return(errors.New("smtp down"))

	sent, err := uc.NotifyCompletion(context.Background(), "p1")
	if err == nil || err.Error() != "smtp down" {
		t.Fatalf("expected delivery error, got %v", err)
	}
	if sent {
		t.Fatal("expected sent=false on delivery failure")
	}
}
