package restclient

import (
	"context"

	"github.com/stretchr/testify/mock"
)

var _ Interface = &MockRestClient{}

type MockRestClient struct {
	mock.Mock
}

func (m *MockRestClient) Post(_ context.Context, endpoint string, body any, headers map[string]string) ([]byte, int, error) {
	args := m.Called(endpoint, body, headers)
	return bytesArg(args, 0), args.Int(1), args.Error(2)
}

func bytesArg(args mock.Arguments, i int) []byte {
	if b, ok := args.Get(i).([]byte); ok {
		return b
	}
	return nil
}
