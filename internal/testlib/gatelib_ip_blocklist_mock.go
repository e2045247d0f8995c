package testlib

import (
	"net"

	"github.com/stretchr/testify/mock"
)

type GatelibIPBlocklistMock struct {
	mock.Mock
}

func (m *GatelibIPBlocklistMock) Contains(ip net.IP) bool {
	return m.Called(ip).Bool(0)
}

func (m *GatelibIPBlocklistMock) Shutdown() {
	m.Called()
}
