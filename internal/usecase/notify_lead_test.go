package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/xavierca1/dsx-leads/internal/entity"
	"github.com/xavierca1/dsx-leads/internal/infra/queue"
)

// MockCRM - Mock para CRM
type MockCRM struct {
	mock.Mock
}

func (m *MockCRM) UpsertContact(ctx context.Context, lead *entity.Lead) (int, error) {
	args := m.Called(lead.ID)
	return args.Int(0), args.Error(1)
}

func (m *MockCRM) CreateLead(ctx context.Context, contactID int, lead *entity.Lead) error {
	return m.Called(contactID, lead.ID).Error(0)
}

// MockSalesNotifier - Mock para SalesNotifier
type MockSalesNotifier struct {
	mock.Mock
}

func (m *MockSalesNotifier) SendNewLead(lead *entity.Lead) error {
	return m.Called(lead.ID).Error(0)
}

// MockWelcomeMessenger - Mock para WelcomeMessenger
type MockWelcomeMessenger struct {
	mock.Mock
}

func (m *MockWelcomeMessenger) SendWelcome(ctx context.Context, lead *entity.Lead) error {
	return m.Called(lead.ID).Error(0)
}

type recordingMetrics struct {
	nopMetrics
	services []string
}

func (r *recordingMetrics) IntegrationError(service string) {
	r.services = append(r.services, service)
}

func TestNotifyLead(t *testing.T) {
	ctx := context.Background()
	created := queue.LeadEvent{Type: queue.RoutingLeadCreated, LeadID: "l1", Name: "Ana Silva"}
	completed := queue.LeadEvent{Type: queue.RoutingLeadCompleted, LeadID: "l1", Name: "Ana Silva", ProfileCategory: "Outros"}

	t.Run("Created only upserts the contact", func(t *testing.T) {
		crm := new(MockCRM)
		mail := new(MockSalesNotifier)
		crm.On("UpsertContact", "l1").Return(7, nil).Once()

		uc := &NotifyLeadUseCase{CRM: crm, Mail: mail}
		assert.NoError(t, uc.Dispatch(ctx, created))

		crm.AssertExpectations(t)
		crm.AssertNotCalled(t, "CreateLead", mock.Anything, mock.Anything)
		mail.AssertNotCalled(t, "SendNewLead", mock.Anything)
	})

	t.Run("Completed reaches every sink", func(t *testing.T) {
		crm := new(MockCRM)
		mail := new(MockSalesNotifier)
		wa := new(MockWelcomeMessenger)
		crm.On("UpsertContact", "l1").Return(7, nil).Once()
		crm.On("CreateLead", 7, "l1").Return(nil).Once()
		mail.On("SendNewLead", "l1").Return(nil).Once()
		wa.On("SendWelcome", "l1").Return(nil).Once()

		uc := &NotifyLeadUseCase{CRM: crm, Mail: mail, WhatsApp: wa}
		assert.NoError(t, uc.Dispatch(ctx, completed))

		crm.AssertExpectations(t)
		mail.AssertExpectations(t)
		wa.AssertExpectations(t)
	})

	t.Run("Partial failure is acked and counted", func(t *testing.T) {
		crm := new(MockCRM)
		mail := new(MockSalesNotifier)
		m := &recordingMetrics{}
		crm.On("UpsertContact", "l1").Return(0, errors.New("401")).Once()
		mail.On("SendNewLead", "l1").Return(nil).Once()

		uc := &NotifyLeadUseCase{CRM: crm, Mail: mail, Metrics: m}
		assert.NoError(t, uc.Dispatch(ctx, completed))
		assert.Equal(t, []string{"kommo"}, m.services)
	})

	t.Run("Every sink failing is reported", func(t *testing.T) {
		crm := new(MockCRM)
		mail := new(MockSalesNotifier)
		crm.On("UpsertContact", "l1").Return(7, nil).Once()
		crm.On("CreateLead", 7, "l1").Return(errors.New("500")).Once()
		mail.On("SendNewLead", "l1").Return(errors.New("smtp down")).Once()

		uc := &NotifyLeadUseCase{CRM: crm, Mail: mail}
		err := uc.Dispatch(ctx, completed)
		assert.ErrorContains(t, err, "kommo: 500")
		assert.ErrorContains(t, err, "mail: smtp down")
	})

	t.Run("Nothing configured", func(t *testing.T) {
		uc := &NotifyLeadUseCase{}
		assert.NoError(t, uc.Dispatch(ctx, completed))
	})
}
