package storage

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMigrationLogger_Printf(t *testing.T) {
	var buf bytes.Buffer
	log := NewMigrationLogger(slog.New(slog.NewTextHandler(&buf, nil)))

	log.Printf("OK   %s (%v)\n", "00001_init.sql", "1.2ms")

	out := buf.String()
	assert.Contains(t, out, "level=INFO")
	assert.Contains(t, out, "component=migrations")
	assert.Contains(t, out, `msg="OK   00001_init.sql (1.2ms)"`)
}
