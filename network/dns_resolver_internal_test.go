package network

import (
	"encoding/base64"
	"net"
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/miekg/dns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type DOHResolverTestSuite struct {
	suite.Suite

	transport *httpmock.MockTransport
	resolver  *dohDNSResolver
}

func (suite *DOHResolverTestSuite) SetupTest() {
	suite.transport = httpmock.NewMockTransport()
	suite.resolver = newDOHDNSResolver("9.9.9.9", &http.Client{Transport: suite.transport})
}

func (suite *DOHResolverTestSuite) TearDownTest() {
	suite.resolver.Stop()
}

func (suite *DOHResolverTestSuite) answer(req *http.Request) (*http.Response, error) {
	suite.Equal("application/dns-message", req.Header.Get("Accept"))

	packed, err := base64.RawURLEncoding.DecodeString(req.URL.Query().Get("dns"))
	suite.Require().NoError(err)

	query := &dns.Msg{}
	suite.Require().NoError(query.Unpack(packed))

	reply := &dns.Msg{}
	reply.SetReply(query)

	question := query.Question[0]
	header := dns.RR_Header{
		Name:   question.Name,
		Rrtype: question.Qtype,
		Class:  dns.ClassINET,
		Ttl:    60,
	}

	switch question.Qtype {
	case dns.TypeA:
		reply.Answer = append(reply.Answer, &dns.A{Hdr: header, A: net.ParseIP("10.0.0.1")})
	case dns.TypeAAAA:
		reply.Answer = append(reply.Answer, &dns.AAAA{Hdr: header, AAAA: net.ParseIP("2001:db8::1")})
	}

	data, err := reply.Pack()
	suite.Require().NoError(err)

	return httpmock.NewBytesResponse(http.StatusOK, data), nil
}

func (suite *DOHResolverTestSuite) TestLookup() {
	suite.transport.RegisterResponder(http.MethodGet, "https://9.9.9.9/dns-query", suite.answer)

	suite.Equal([]string{"10.0.0.1"}, suite.resolver.LookupA("influx.example.com"))
	suite.Equal([]string{"2001:db8::1"}, suite.resolver.LookupAAAA("influx.example.com"))
	suite.Equal(2, suite.transport.GetTotalCallCount())

	// Второй раз ответ берётся из кеша.
	suite.Equal([]string{"10.0.0.1"}, suite.resolver.LookupA("influx.example.com"))
	suite.Equal(2, suite.transport.GetTotalCallCount())
}

func (suite *DOHResolverTestSuite) TestServerError() {
	suite.transport.RegisterResponder(http.MethodGet, "https://9.9.9.9/dns-query",
		httpmock.NewStringResponder(http.StatusBadGateway, ""))

	suite.Empty(suite.resolver.LookupA("influx.example.com"))
	suite.Empty(suite.resolver.LookupA("influx.example.com"))
	suite.Equal(2, suite.transport.GetTotalCallCount())
}

func (suite *DOHResolverTestSuite) TestGarbage() {
	suite.transport.RegisterResponder(http.MethodGet, "https://9.9.9.9/dns-query",
		httpmock.NewStringResponder(http.StatusOK, "garbage"))

	suite.Empty(suite.resolver.LookupA("influx.example.com"))
}

func TestDOHResolver(t *testing.T) {
	t.Parallel()
	suite.Run(t, &DOHResolverTestSuite{})
}

func TestDOHResolverIPv6Server(t *testing.T) {
	t.Parallel()

	resolver := newDOHDNSResolver("2620:fe::fe", http.DefaultClient)
	defer resolver.Stop()

	assert.Equal(t, "[2620:fe::fe]", resolver.dohServer)
}
