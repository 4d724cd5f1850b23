package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/anthonyraymond/stompauth/internal/testutils"
	"github.com/anthonyraymond/stompauth/pkg/auth"
	"github.com/go-stomp/stomp/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testAppConfig(authFile string) *AppConfig {
	conf := AppConfig{}.Default()
	conf.Auth.AuthFile = authFile
	conf.Broker.Stomp.Addr = "127.0.0.1:0"
	return conf
}

func TestParseConfigOverDefault_ShouldReadYaml(t *testing.T) {
	path := testutils.WriteFile(t, "config.yml", `
log:
  level: debug
auth:
  authFile: /etc/stompauth/auth.ini
broker:
  stomp:
    addr: 127.0.0.1:61000
`)

	conf, err := ParseConfigOverDefault(path)

	require.NoError(t, err)
	assert.Equal(t, "debug", conf.Log.Level)
	assert.Equal(t, []string{"stdout"}, conf.Log.OutputPaths)
	assert.Equal(t, "/etc/stompauth/auth.ini", conf.Auth.AuthFile)
	assert.Equal(t, "127.0.0.1:61000", conf.Broker.Stomp.Addr)
}

func TestParseConfigOverDefault_ShouldNotRequireAuthFile(t *testing.T) {
	path := testutils.WriteFile(t, "config.yml", "log:\n  level: warn\n")

	conf, err := ParseConfigOverDefault(path)

	require.NoError(t, err)
	assert.Empty(t, conf.Auth.AuthFile)
}

func TestParseConfigOverDefault_ShouldRejectInvalidLogLevel(t *testing.T) {
	path := testutils.WriteFile(t, "config.yml", "log:\n  level: chatty\n")

	_, err := ParseConfigOverDefault(path)

	assert.Error(t, err)
}

func TestWriteDefaultConfig_ShouldWriteParsableConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "etc", "config.yml")

	require.NoError(t, WriteDefaultConfig(path, "/etc/stompauth/auth.ini"))

	conf, err := ParseConfigOverDefault(path)
	require.NoError(t, err)
	expected := AppConfig{}.Default()
	expected.Auth.AuthFile = "/etc/stompauth/auth.ini"
	assert.Equal(t, expected, conf)
}

func TestWriteDefaultConfig_ShouldNotOverrideExistingFile(t *testing.T) {
	path := testutils.WriteFile(t, "config.yml", "log:\n  level: warn\n")

	assert.Error(t, WriteDefaultConfig(path, "/etc/stompauth/auth.ini"))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "log:\n  level: warn\n", string(content))
}

func TestStart_ShouldFailWithMissingConfigurationWithoutAuthFile(t *testing.T) {
	a, err := Start(testAppConfig(""), zap.NewNop())

	assert.Nil(t, a)
	assert.True(t, auth.IsMissingConfigurationError(err))
}

func TestStart_ShouldFailIfAuthFileCannotBeLoaded(t *testing.T) {
	a, err := Start(testAppConfig(filepath.Join(t.TempDir(), "nope.ini")), zap.NewNop())

	assert.Nil(t, a)
	assert.True(t, auth.IsUnparsableSourceError(err))
}

func TestStart_ShouldServeCredentialsFromAuthFileAndReloadThem(t *testing.T) {
	authFile := testutils.WriteFile(t, "auth.ini", "[auth]\nguest = guest\n")
	a, err := Start(testAppConfig(authFile), zap.NewNop())
	require.NoError(t, err)
	defer a.Stop()
	addr := a.Broker().Addr().String()

	conn, err := stomp.Dial("tcp", addr, stomp.ConnOpt.Login("guest", "guest"))
	require.NoError(t, err)
	_ = conn.Disconnect()

	require.NoError(t, os.WriteFile(authFile, []byte("[auth]\nadmin = s3cr3t\n"), 0600))
	require.NoError(t, a.Broker().ReloadCredentials())

	_, err = stomp.Dial("tcp", addr, stomp.ConnOpt.Login("guest", "guest"))
	assert.Error(t, err)
	conn, err = stomp.Dial("tcp", addr, stomp.ConnOpt.Login("admin", "s3cr3t"))
	require.NoError(t, err)
	_ = conn.Disconnect()
}

func TestRun_ShouldStopWhenContextIsDone(t *testing.T) {
	authFile := testutils.WriteFile(t, "auth.ini", "[auth]\nguest = guest\n")
	a, err := Start(testAppConfig(authFile), zap.NewNop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		a.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after context cancellation")
	}
	assert.False(t, a.Broker().Status().Started)
}
