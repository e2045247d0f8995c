package stats

import (
	"errors"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/influxgate/influxgate/gatelib"
	statsd "github.com/smira/go-statsd"
)

// requestInfo is a state of a single request which observer keeps
// between RequestStart and RequestFinish.
type requestInfo struct {
	tags      map[string]string
	startTime time.Time
}

func (r requestInfo) T(key string) statsd.Tag {
	return statsd.StringTag(key, r.tags[key])
}

func (r *requestInfo) Reset() {
	r.startTime = time.Time{}

	for k := range r.tags {
		delete(r.tags, k)
	}
}

var requestInfoPool = sync.Pool{
	New: func() interface{} {
		return &requestInfo{
			tags: make(map[string]string),
		}
	},
}

func acquireRequestInfo() *requestInfo {
	return requestInfoPool.Get().(*requestInfo) //nolint: forcetypeassert
}

func releaseRequestInfo(info *requestInfo) {
	info.Reset()
	requestInfoPool.Put(info)
}

func getIPFamily(ip net.IP) string {
	if ip.To4() != nil {
		return TagIPFamilyIPv4
	}

	return TagIPFamilyIPv6
}

func getIPList(isBlockList bool) string {
	if isBlockList {
		return TagIPListBlock
	}

	return TagIPListAllow
}

func getSinkResult(failed bool) string {
	if failed {
		return TagSinkResultFailed
	}

	return TagSinkResultOK
}

func getStatus(status int) string {
	return strconv.Itoa(status)
}

func getReason(reason error) string {
	switch {
	case errors.Is(reason, gatelib.ErrSignatureFormat):
		return TagReasonSignatureFormat
	case errors.Is(reason, gatelib.ErrInvalidSignature):
		return TagReasonInvalidSignature
	case errors.Is(reason, gatelib.ErrInvalidMessage):
		return TagReasonInvalidMessage
	case errors.Is(reason, gatelib.ErrExpired):
		return TagReasonExpired
	case errors.Is(reason, gatelib.ErrLongValidity):
		return TagReasonLongValidity
	case errors.Is(reason, gatelib.ErrNonceReuse):
		return TagReasonNonceReuse
	}

	return TagReasonUnknown
}
