package security

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChecksumReaderMatchesDirectChecksum(t *testing.T) {
	content := "receipt scan bytes"

	direct, err := Checksum(strings.NewReader(content))
	require.NoError(t, err)

	want := sha256.Sum256([]byte(content))
	assert.Equal(t, hex.EncodeToString(want[:]), direct)

	cr := NewChecksumReader(strings.NewReader(content))
	_, err = io.ReadAll(cr)
	require.NoError(t, err)
	assert.Equal(t, direct, cr.Checksum())
}

func TestChecksumEmptyInput(t *testing.T) {
	sum, err := Checksum(strings.NewReader(""))
	require.NoError(t, err)

	want := sha256.Sum256(nil)
	assert.Equal(t, hex.EncodeToString(want[:]), sum)
}
