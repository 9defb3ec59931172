package notify

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConsole_WritesMarkedLines(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)

	c.Success(MsgStatusUpdated)
	c.Error(MsgLoadError)

	assert.Equal(t, "✓ Status updated successfully\n✗ Error loading tours\n", buf.String())
}

func TestRecorder_CountsByLevelAndMessage(t *testing.T) {
	r := &Recorder{}

	r.Success(MsgGuideAssigned)
	r.Error(MsgGuideAssignFail)
	r.Error(MsgGuideAssignFail)

	assert.Equal(t, 1, r.Count(LevelSuccess, MsgGuideAssigned))
	assert.Equal(t, 2, r.Count(LevelError, MsgGuideAssignFail))
	assert.Equal(t, 0, r.Count(LevelSuccess, MsgGuideAssignFail))
	assert.Equal(t, 2, r.CountLevel(LevelError))
	assert.Equal(t, []Notification{
		{Level: LevelSuccess, Message: MsgGuideAssigned},
		{Level: LevelError, Message: MsgGuideAssignFail},
		{Level: LevelError, Message: MsgGuideAssignFail},
	}, r.All())
}
