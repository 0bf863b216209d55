package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractFromDBURL(t *testing.T) {
	assert.Equal(t, "somehost:5433",
		ExtractFromDBURL("postgresql://user:pw@somehost:5433/db"))
	assert.Equal(t, "somehost:5432",
		ExtractFromDBURL("postgresql://user:pw@somehost/db"))
	assert.Equal(t, "", ExtractFromDBURL("not-a-db-url"))
}

func TestExtractFromNatsURL(t *testing.T) {
	assert.Equal(t, "localhost:4223",
		ExtractFromNatsURL("nats://localhost:4223"))
	assert.Equal(t, "demo.nats.io:4222",
		ExtractFromNatsURL("nats://demo.nats.io"))
	assert.Equal(t, "broker:4222",
		ExtractFromNatsURL("nats://user:pw@broker"))
	assert.Equal(t, "", ExtractFromNatsURL("http://localhost"))
}
