package ipblocklist_test

import (
	"net"
	"testing"

	"github.com/influxgate/influxgate/gatelib"
	"github.com/influxgate/influxgate/ipblocklist"
	"github.com/stretchr/testify/suite"
)

type CIDRTestSuite struct {
	suite.Suite
}

func (suite *CIDRTestSuite) TestContains() {
	list, err := ipblocklist.NewCIDR([]string{
		"10.0.0.0/8",
		" 192.168.1.1 ",
		"2001:db8::/32",
		"::1",
	})
	suite.NoError(err)
	suite.Equal(4, list.Size())

	testData := map[string]bool{
		"10.1.2.3":     true,
		"11.0.0.1":     false,
		"192.168.1.1":  true,
		"192.168.1.2":  false,
		"2001:db8::42": true,
		"2001:db9::1":  false,
		"::1":          true,
	}

	for ip, expected := range testData {
		suite.Equal(expected, list.Contains(net.ParseIP(ip)), ip)
	}

	suite.False(list.Contains(nil))
}

func (suite *CIDRTestSuite) TestEmpty() {
	list, err := ipblocklist.NewCIDR(nil)
	suite.NoError(err)
	suite.False(list.Contains(net.ParseIP("10.0.0.1")))
}

func (suite *CIDRTestSuite) TestIncorrect() {
	for _, value := range []string{"10.0.0.0/33", "hello", "10.0.0/8", ""} {
		_, err := ipblocklist.NewCIDR([]string{value})
		suite.Error(err, value)
	}
}

func (suite *CIDRTestSuite) TestAllowAll() {
	list := ipblocklist.NewAllowAll()

	suite.True(list.Contains(net.ParseIP("1.2.3.4")))
	suite.True(list.Contains(net.ParseIP("2a00::1")))
	list.Shutdown()
}

func (suite *CIDRTestSuite) TestNoop() {
	var list gatelib.IPBlocklist = ipblocklist.NewNoop()

	suite.False(list.Contains(net.ParseIP("1.2.3.4")))
	list.Shutdown()
}

func TestCIDR(t *testing.T) {
	t.Parallel()
	suite.Run(t, &CIDRTestSuite{})
}
