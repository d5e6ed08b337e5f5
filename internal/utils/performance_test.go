package utils

import (
	"bytes"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestOperationTimer_LogsSlowOperation(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)

	done := OperationTimer("fetch", time.Nanosecond, log)
	time.Sleep(time.Millisecond)
	done()

	assert.Contains(t, buf.String(), `"level":"warn"`)
	assert.Contains(t, buf.String(), `"operation":"fetch"`)
}

func TestOperationTimer_FastOperationIsDebug(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)

	OperationTimer("fetch", time.Hour, log)()

	assert.Contains(t, buf.String(), `"level":"debug"`)
}
