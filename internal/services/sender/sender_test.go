package sender

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/mystery-message/internal/lib/smtp"
)

type MockTransport struct {
	mock.Mock
}

func (m *MockTransport) Connect(ctx context.Context) (smtp.Client, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(smtp.Client), args.Error(1)
}

func (m *MockTransport) GetSMTPUser() string {
	args := m.Called()
	return args.String(0)
}

type MockSMTPClient struct {
	mock.Mock
}

func (m *MockSMTPClient) Mail(from string) error {
	args := m.Called(from)
	return args.Error(0)
}

func (m *MockSMTPClient) Rcpt(to string) error {
	args := m.Called(to)
	return args.Error(0)
}

func (m *MockSMTPClient) Data() (io.WriteCloser, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.WriteCloser), args.Error(1)
}

func (m *MockSMTPClient) Close() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockSMTPClient) Quit() error {
	args := m.Called()
	return args.Error(0)
}

// bufferWriter собирает тело письма для проверки.
type bufferWriter struct {
	bytes.Buffer
	closed bool
}

func (w *bufferWriter) Close() error {
	w.closed = true
	return nil
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

const validJob = `{"email":"alice@x.io","username":"alice","code":"123456","expires_at":"2026-01-01T12:00:00Z"}`

func TestService_SendVerificationEmail(t *testing.T) {
	tests := []struct {
		name          string
		body          []byte
		setupMocks    func(*MockTransport, *MockSMTPClient, *bufferWriter)
		expectedError bool
		errorMessage  string
	}{
		{
			name: "success",
			body: []byte(validJob),
			setupMocks: func(tr *MockTransport, c *MockSMTPClient, w *bufferWriter) {
				tr.On("GetSMTPUser").Return("noreply@example.com")
				tr.On("Connect", mock.Anything).Return(c, nil).Once()
				c.On("Mail", "noreply@example.com").Return(nil).Once()
				c.On("Rcpt", "alice@x.io").Return(nil).Once()
				c.On("Data").Return(w, nil).Once()
				c.On("Quit").Return(nil).Once()
				c.On("Close").Return(nil).Once()
			},
		},
		{
			name:          "invalid JSON",
			body:          []byte(`invalid json`),
			setupMocks:    func(_ *MockTransport, _ *MockSMTPClient, _ *bufferWriter) {},
			expectedError: true,
			errorMessage:  ErrInvalidJob.Error(),
		},
		{
			name:          "missing code",
			body:          []byte(`{"email":"alice@x.io","username":"alice"}`),
			setupMocks:    func(_ *MockTransport, _ *MockSMTPClient, _ *bufferWriter) {},
			expectedError: true,
			errorMessage:  ErrInvalidJob.Error(),
		},
		{
			name: "SMTP connection error",
			body: []byte(validJob),
			setupMocks: func(tr *MockTransport, _ *MockSMTPClient, _ *bufferWriter) {
				tr.On("GetSMTPUser").Return("noreply@example.com")
				tr.On("Connect", mock.Anything).Return(nil, errors.New("connection error")).Once()
			},
			expectedError: true,
			errorMessage:  "connection error",
		},
		{
			name: "recipient rejected",
			body: []byte(validJob),
			setupMocks: func(tr *MockTransport, c *MockSMTPClient, _ *bufferWriter) {
				tr.On("GetSMTPUser").Return("noreply@example.com")
				tr.On("Connect", mock.Anything).Return(c, nil).Once()
				c.On("Mail", "noreply@example.com").Return(nil).Once()
				c.On("Rcpt", "alice@x.io").Return(errors.New("550 mailbox unavailable")).Once()
				c.On("Close").Return(nil).Once()
			},
			expectedError: true,
			errorMessage:  "550 mailbox unavailable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport := new(MockTransport)
			client := new(MockSMTPClient)
			writer := &bufferWriter{}
			tt.setupMocks(transport, client, writer)

			service := New(newNoopLogger(), transport)
			err := service.SendVerificationEmail(context.Background(), tt.body)

			if tt.expectedError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorMessage)
			} else {
				require.NoError(t, err)
				assert.True(t, writer.closed)
				body := writer.String()
				assert.Contains(t, body, "To: alice@x.io")
				assert.Contains(t, body, "Subject: "+verificationSubject)
				assert.Contains(t, body, "Hello alice")
				assert.Contains(t, body, "123456")
			}

			transport.AssertExpectations(t)
			client.AssertExpectations(t)
		})
	}
}
