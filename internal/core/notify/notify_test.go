package notify

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWriter_FiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, LevelWarning)

	w.Notify(Notification{Level: LevelInfo, Message: "quiet"})
	w.Notify(Notification{Level: LevelWarning, Message: "careful"})
	w.Notify(Notification{Level: LevelError, Message: "loud"})

	assert.Equal(t, "warning: careful\nerror: loud\n", buf.String())
}

func TestRecorder(t *testing.T) {
	var r Recorder
	r.Notify(Notification{Level: LevelInfo, Message: "a"})

	all := r.All()
	assert.Len(t, all, 1)

	all[0].Message = "changed"
	assert.Equal(t, "a", r.All()[0].Message)
}
