package notification

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

func sampleNotice() OrderNotice {
	return OrderNotice{
		OrderID: "ord_123",
		UserID:  "u1",
		Name:    "Asha",
		Phone:   "919876543210",
		Email:   "asha@example.com",
		Total:   decimal.RequireFromString("1098"),
	}
}

func TestMessage(t *testing.T) {
	msg := Message(sampleNotice())
	assert.Contains(t, msg, "Hi Asha")
	assert.Contains(t, msg, "Order ID: ord_123")
	assert.Contains(t, msg, "Amount: ₹1098")
}

func TestWhatsApp_PostsGraphMessage(t *testing.T) {
	var got whatsAppMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/PHONE_ID/messages", r.URL.Path)
		assert.Equal(t, "Bearer token-1", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &got))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"messages":[{"id":"wamid.1"}]}`))
	}))
	defer srv.Close()

	wa := NewWhatsApp(srv.URL, "PHONE_ID", "token-1")
	require.NoError(t, wa.NotifyOrderPlaced(context.Background(), sampleNotice()))

	assert.Equal(t, "whatsapp", got.MessagingProduct)
	assert.Equal(t, "919876543210", got.To)
	assert.Equal(t, "text", got.Type)
	assert.Contains(t, got.Text.Body, "ord_123")
}

func TestWhatsApp_Failures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Invalid OAuth access token"}}`))
	}))
	defer srv.Close()

	wa := NewWhatsApp(srv.URL, "PHONE_ID", "bad")
	err := wa.NotifyOrderPlaced(context.Background(), sampleNotice())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")

	n := sampleNotice()
	n.Phone = " "
	assert.Error(t, wa.NotifyOrderPlaced(context.Background(), n))
}

type mockMailSender struct {
	mock.Mock
}

func (m *mockMailSender) DialAndSend(msgs ...*gomail.Message) error {
	args := m.Called(len(msgs))
	return args.Error(0)
}

func TestEmail_SendsAndSkips(t *testing.T) {
	sender := &mockMailSender{}
	sender.On("DialAndSend", 1).Return(nil).Once()
	e := &Email{sender: sender, from: "orders@clomora.in", brand: "Clomora"}

	require.NoError(t, e.NotifyOrderPlaced(context.Background(), sampleNotice()))

	n := sampleNotice()
	n.Email = ""
	require.NoError(t, e.NotifyOrderPlaced(context.Background(), n))
	sender.AssertNumberOfCalls(t, "DialAndSend", 1)
}

func TestEmail_WrapsSendError(t *testing.T) {
	sender := &mockMailSender{}
	sender.On("DialAndSend", 1).Return(errors.New("connection refused"))
	e := &Email{sender: sender, from: "orders@clomora.in", brand: "Clomora"}

	err := e.NotifyOrderPlaced(context.Background(), sampleNotice())
	assert.ErrorContains(t, err, "connection refused")
}

type mockWriter struct {
	mock.Mock
	written []kafka.Message
}

func (m *mockWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	m.written = append(m.written, msgs...)
	return m.Called(len(msgs)).Error(0)
}

func (m *mockWriter) Close() error { return m.Called().Error(0) }

func TestKafka_PublishesOrderEvent(t *testing.T) {
	w := &mockWriter{}
	w.On("WriteMessages", 1).Return(nil).Once()
	k := &Kafka{writer: w}

	require.NoError(t, k.NotifyOrderPlaced(context.Background(), sampleNotice()))
	require.Len(t, w.written, 1)
	assert.Equal(t, "ord_123", string(w.written[0].Key))

	var ev OrderEvent
	require.NoError(t, json.Unmarshal(w.written[0].Value, &ev))
	assert.Equal(t, EventOrderPlaced, ev.Type)
	assert.Equal(t, "u1", ev.Order.UserID)
	assert.True(t, ev.Order.Total.Equal(decimal.NewFromInt(1098)))
}

type stubNotifier struct {
	err   error
	calls int
}

func (s *stubNotifier) NotifyOrderPlaced(context.Context, OrderNotice) error {
	s.calls++
	return s.err
}

func TestMulti_CallsEveryChannelAndJoinsErrors(t *testing.T) {
	errA := errors.New("whatsapp down")
	a := &stubNotifier{err: errA}
	b := &stubNotifier{}
	c := &stubNotifier{}

	err := Multi{a, b, c, Nop{}}.NotifyOrderPlaced(context.Background(), sampleNotice())
	assert.ErrorIs(t, err, errA)
	assert.Equal(t, 1, a.calls)
	assert.Equal(t, 1, b.calls)
	assert.Equal(t, 1, c.calls)

	assert.NoError(t, Multi{b}.NotifyOrderPlaced(context.Background(), sampleNotice()))
}
