package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"order-timeline/internal/domain"
	"order-timeline/internal/infra/mailer"
	"order-timeline/internal/mocks"
)

func TestRender(t *testing.T) {
	vars := TemplateVars{OrderID: "1001", CustomerName: "Sam", CustomText: "Shipped today"}

	tests := []struct {
		name string
		tpl  string
		want string
	}{
		{
			name: "all placeholders",
			tpl:  "<p>Order [OrderId] for [CustomerName]: [CustomText]</p>",
			want: "<p>Order 1001 for Sam: Shipped today</p>",
		},
		{
			name: "only first occurrence is replaced",
			tpl:  "Hi [CustomerName], [CustomerName] again",
			want: "Hi Sam, [CustomerName] again",
		},
		{
			name: "no placeholders",
			tpl:  "static body",
			want: "static body",
		},
		{
			name: "unknown tokens untouched",
			tpl:  "[OrderID] [orderid] [OrderId]",
			want: "[OrderID] [orderid] 1001",
		},
		{
			name: "empty template",
			tpl:  "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Render(tt.tpl, vars))
		})
	}
}

func TestRender_ValuesAreLiteral(t *testing.T) {
	tests := []struct {
		name string
		tpl  string
		vars TemplateVars
		want string
	}{
		{
			name: "custom text with earlier placeholder",
			tpl:  "[CustomText]",
			vars: TemplateVars{CustomText: "$1 & <b>[OrderId]</b>"},
			want: "$1 & <b>[OrderId]</b>",
		},
		{
			name: "order id carrying a later placeholder",
			tpl:  "[OrderId] / [CustomerName]",
			vars: TemplateVars{OrderID: "[CustomerName]", CustomerName: "Sam"},
			want: "[CustomerName] / Sam",
		},
		{
			name: "customer name carrying custom text placeholder",
			tpl:  "Hi [CustomerName]: [CustomText]",
			vars: TemplateVars{CustomerName: "[CustomText]", CustomText: "note"},
			want: "Hi [CustomText]: note",
		},
		{
			name: "placeholders out of order",
			tpl:  "[CustomText] [CustomerName] [OrderId]",
			vars: TemplateVars{OrderID: "1001", CustomerName: "[OrderId]", CustomText: "x"},
			want: "x [OrderId] 1001",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Render(tt.tpl, tt.vars))
		})
	}
}

func TestNotificationService_Notify(t *testing.T) {
	attachments := []domain.Attachment{
		{FileName: "1700000000000_box.png", ContentType: "image/png", Content: []byte("png")},
	}

	tests := []struct {
		name          string
		setupMocks    func(*mocks.MockTemplateRepository, *mocks.MockMailer)
		attachments   []domain.Attachment
		expectedError []error
	}{
		{
			name: "sends rendered template",
			setupMocks: func(tr *mocks.MockTemplateRepository, m *mocks.MockMailer) {
				tr.On("Active", mock.Anything).Return(CreateMockTemplate("<p>[OrderId] [CustomerName] [CustomText]</p>"), nil)
				m.On("Send", mock.Anything, mock.MatchedBy(func(e mailer.Email) bool {
					return e.From == TestFromAddress &&
						len(e.To) == 1 && e.To[0] == TestRecipient &&
						e.Subject == TestSubject &&
						e.HTML == "<p>1001 Sam hello</p>" &&
						len(e.Attachments) == 0
				})).Return(nil)
			},
		},
		{
			name:        "includes attachments",
			attachments: attachments,
			setupMocks: func(tr *mocks.MockTemplateRepository, m *mocks.MockMailer) {
				tr.On("Active", mock.Anything).Return(CreateMockTemplate("x"), nil)
				m.On("Send", mock.Anything, mock.MatchedBy(func(e mailer.Email) bool {
					return len(e.Attachments) == 1 &&
						e.Attachments[0].Filename == "1700000000000_box.png" &&
						e.Attachments[0].ContentType == "image/png" &&
						string(e.Attachments[0].Content) == "png"
				})).Return(nil)
			},
		},
		{
			name: "no template",
			setupMocks: func(tr *mocks.MockTemplateRepository, m *mocks.MockMailer) {
				tr.On("Active", mock.Anything).Return(nil, nil)
			},
			expectedError: []error{ErrNotificationFailed, ErrNoActiveTemplate},
		},
		{
			name: "template lookup fails",
			setupMocks: func(tr *mocks.MockTemplateRepository, m *mocks.MockMailer) {
				tr.On("Active", mock.Anything).Return(nil, errors.New("database error"))
			},
			expectedError: []error{ErrNotificationFailed},
		},
		{
			name: "smtp failure",
			setupMocks: func(tr *mocks.MockTemplateRepository, m *mocks.MockMailer) {
				tr.On("Active", mock.Anything).Return(CreateMockTemplate("x"), nil)
				m.On("Send", mock.Anything, mock.Anything).Return(errors.New("535 authentication failed")).Once()
			},
			expectedError: []error{ErrNotificationFailed},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := new(mocks.MockTemplateRepository)
			m := new(mocks.MockMailer)
			tt.setupMocks(tr, m)

			service := NewNotificationService(tr, m, TestRecipient, zap.NewNop())
			err := service.Notify(context.Background(), NotifyInput{
				OrderID:      "1001",
				CustomerName: "Sam",
				CustomText:   "hello",
				Attachments:  tt.attachments,
			})

			if len(tt.expectedError) > 0 {
				require.Error(t, err)
				for _, want := range tt.expectedError {
					assert.ErrorIs(t, err, want)
				}
			} else {
				assert.NoError(t, err)
			}
			tr.AssertExpectations(t)
			m.AssertExpectations(t)
		})
	}
}

func TestNotificationService_NoTemplateSkipsMailer(t *testing.T) {
	tr := new(mocks.MockTemplateRepository)
	m := new(mocks.MockMailer)
	tr.On("Active", mock.Anything).Return(nil, nil)

	service := NewNotificationService(tr, m, TestRecipient, zap.NewNop())
	_ = service.Notify(context.Background(), NotifyInput{OrderID: "1"})

	m.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}
