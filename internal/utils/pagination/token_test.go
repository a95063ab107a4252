package pagination

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEncodeDecodeLineToken(t *testing.T) {
	// Test case 1: Standard date/time values
	entryDate := time.Date(2025, 5, 15, 0, 0, 0, 0, time.UTC)
	createdAt := time.Date(2025, 5, 15, 14, 30, 45, 123456789, time.UTC)
	lineID := "9e0b9f66-6a52-4c3b-9a1e-1b7f2a8c0d11"

	token := EncodeLineToken(entryDate, createdAt, lineID)
	assert.NotEmpty(t, token, "Token should not be empty")

	decodedEntryDate, decodedCreatedAt, decodedLineID, err := DecodeLineToken(token)
	assert.NoError(t, err, "Decoding should not return an error")
	assert.Equal(t, entryDate, decodedEntryDate, "Entry date should match after decode")
	assert.Equal(t, createdAt, decodedCreatedAt, "Created at time should match after decode")
	assert.Equal(t, lineID, decodedLineID, "Line ID should match after decode")

	// Test case 2: Zero time values
	zeroTime := time.Time{}
	zeroToken := EncodeLineToken(zeroTime, zeroTime, "")
	decodedZeroDate, decodedZeroTime, decodedZeroID, err := DecodeLineToken(zeroToken)
	assert.NoError(t, err, "Decoding zero time should not return an error")
	assert.Equal(t, zeroTime, decodedZeroDate, "Zero date should match after decode")
	assert.Equal(t, zeroTime, decodedZeroTime, "Zero time should match after decode")
	assert.Empty(t, decodedZeroID, "Zero line ID should decode empty")
}

func TestDecodeLineTokenError(t *testing.T) {
	// Test invalid base64
	_, _, _, err := DecodeLineToken("this is not base64!")
	assert.Error(t, err, "Should return an error for invalid base64")
	assert.Contains(t, err.Error(), "base64 decode", "Error should mention base64 decoding")

	// Test invalid format (missing separators)
	invalidToken := "MjAyMy0wNS0xNVQwMDowMDowMFo=" // Base64 encoded date without separators
	_, _, _, err = DecodeLineToken(invalidToken)
	assert.Error(t, err, "Should return an error for invalid token format")
	assert.Contains(t, err.Error(), "split", "Error should mention splitting issue")
}

func TestMultiFieldToken(t *testing.T) {
	fields := []string{"2025-05-15", "cashier-1", "42"}
	token := EncodeMultiFieldToken(fields...)

	decoded, err := DecodeMultiFieldToken(token)
	assert.NoError(t, err, "Decoding should not return an error")
	assert.Equal(t, fields, decoded, "Fields should round-trip")
}
