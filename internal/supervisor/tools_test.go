package supervisor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTools_CaptureOnlyShortCommands(t *testing.T) {
	sess := &Session{MountPoint: "/m", LocalPath: "/l", RemotePath: "r:/Emulation/saves/", Cooldown: "watch"}

	assert.True(t, testTools.ensureRemoteDir(sess).Capture)
	assert.True(t, testTools.unmount(sess).Capture)
	assert.False(t, testTools.mount(sess).Capture, "the rclone daemon keeps its stdio")
	assert.False(t, testTools.sync(sess).Capture)
}

func TestTools_OnlyUnmountDetached(t *testing.T) {
	sess := &Session{MountPoint: "/m", LocalPath: "/l", RemotePath: "r:/Emulation/saves/", Cooldown: "watch"}

	assert.True(t, testTools.unmount(sess).Detach)
	assert.False(t, testTools.ensureRemoteDir(sess).Detach)
	assert.False(t, testTools.mount(sess).Detach)
	assert.False(t, testTools.sync(sess).Detach, "unison is stopped through SIGTERM on cancel")
}

func TestTools_ExtraArgsNotShared(t *testing.T) {
	extra := make([]string, 1, 8)
	extra[0] = "--fast-check"

	sess := &Session{MountPoint: "/m", LocalPath: "/l", RemotePath: "r:/", Cooldown: "5", UnisonArgs: extra}

	c := testTools.sync(sess)
	c.Args[len(c.Args)-1] = "changed"

	assert.Equal(t, "--fast-check", sess.UnisonArgs[0])
}

func TestSession_Validate(t *testing.T) {
	valid := Session{MountPoint: "/m", LocalPath: "/l", RemotePath: "r:/", Cooldown: "watch", PollInterval: time.Second}
	assert.NoError(t, valid.Validate())

	noPoll := valid
	noPoll.PollInterval = 0
	assert.Error(t, noPoll.Validate())

	noLocal := valid
	noLocal.LocalPath = ""
	assert.Error(t, noLocal.Validate())
}
