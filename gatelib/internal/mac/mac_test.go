package mac

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type MACTestSuite struct {
	suite.Suite
}

func (suite *MACTestSuite) TestHMACSHA256KnownVector() {
	// RFC 4231, test case 2.
	tag, err := Sum(HMACSHA256, []byte("Jefe"), []byte("what do ya want for nothing?"))
	suite.NoError(err)
	suite.Equal(
		"5bdcc146bf60754e6a042426089575c75a003f089d2739839dec58b964ec3843",
		hex.EncodeToString(tag))
}

func (suite *MACTestSuite) TestTagSize() {
	key := make([]byte, 32)

	for _, alg := range []Algorithm{HMACSHA256, Blake2b256} {
		tag, err := Sum(alg, key, []byte("message"))

		suite.NoError(err)
		suite.Len(tag, TagSize)
	}
}

func (suite *MACTestSuite) TestAlgorithmsDiffer() {
	key := []byte("0123456789abcdef0123456789abcdef")

	tag1, err := Sum(HMACSHA256, key, []byte("message"))
	suite.NoError(err)

	tag2, err := Sum(Blake2b256, key, []byte("message"))
	suite.NoError(err)

	suite.False(Equal(tag1, tag2))
}

func (suite *MACTestSuite) TestUnknownAlgorithm() {
	_, err := New(Algorithm("md5"), []byte("key"))
	suite.Error(err)
	suite.False(Algorithm("md5").Valid())
	suite.True(HMACSHA256.Valid())
}

func (suite *MACTestSuite) TestBlake2bKeyTooLong() {
	_, err := New(Blake2b256, make([]byte, 65))
	suite.Error(err)
}

func TestMAC(t *testing.T) {
	t.Parallel()
	suite.Run(t, &MACTestSuite{})
}

func TestEqualLengthMismatch(t *testing.T) {
	t.Parallel()

	tag, err := Sum(HMACSHA256, []byte("key"), []byte("message"))
	require.NoError(t, err)

	assert.False(t, Equal(tag, tag[:TagSize-1]))
	assert.True(t, Equal(tag, append([]byte{}, tag...)))
}
