package easyws

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

type mockTransport struct {
	mock.Mock

	tapOpen func()
}

func (m *mockTransport) Open(
	ctx context.Context,
	endpoint string,
	timeout time.Duration,
	recv chan<- Event,
) (Connection, error) {
	if m.tapOpen != nil {
		m.tapOpen()
	}
	args := m.Called(ctx, endpoint, timeout, recv)
	if conn := args.Get(0); conn != nil {
		return conn.(Connection), args.Error(1)
	}
	return nil, args.Error(1)
}

type fakeTransport struct {
	OpenFunc func(
		ctx context.Context,
		endpoint string,
		timeout time.Duration,
		recv chan<- Event,
	) (Connection, error)
}

func (f *fakeTransport) Open(
	ctx context.Context,
	endpoint string,
	timeout time.Duration,
	recv chan<- Event,
) (Connection, error) {
	return f.OpenFunc(ctx, endpoint, timeout, recv)
}

type fakeConn struct {
	SendFunc  func(text string) error
	PingFunc  func() error
	CloseFunc func()
}

func (f *fakeConn) Send(text string) error {
	if f.SendFunc != nil {
		return f.SendFunc(text)
	}
	return nil
}

func (f *fakeConn) Ping() error {
	if f.PingFunc != nil {
		return f.PingFunc()
	}
	return nil
}

func (f *fakeConn) Close() {
	if f.CloseFunc != nil {
		f.CloseFunc()
	}
}
