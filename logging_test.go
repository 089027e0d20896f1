package shadowrp

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultLogger_Levels(t *testing.T) {
	var out, errOut bytes.Buffer
	l := NewWriterLogger(&out, &errOut, "rt", false, 0)

	l.Debugf("hidden %d", 1)
	l.Infof("hello %d", 2)
	l.Warnf("careful")
	l.Errorf("broken: %s", "atlas")

	assert.Equal(t, "[rt] INFO: hello 2\n", out.String())
	assert.Equal(t, "[rt] WARN: careful\n[rt] ERROR: broken: atlas\n", errOut.String())

	out.Reset()
	l.SetDebug(true)
	assert.True(t, l.DebugEnabled())
	l.Debugf("shown")
	assert.Equal(t, "[rt] DEBUG: shown\n", out.String())
}

func TestDefaultLogger_NoPrefix(t *testing.T) {
	var out bytes.Buffer
	l := NewWriterLogger(&out, &out, "", true, 0)
	l.Infof("plain")
	assert.Equal(t, "INFO: plain\n", out.String())
}

func TestNopLogger(t *testing.T) {
	l := NewNopLogger()
	l.SetDebug(true)
	assert.False(t, l.DebugEnabled())
	l.Errorf("ignored")
}
