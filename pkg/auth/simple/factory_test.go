package simple

import (
	"path/filepath"
	"testing"

	"github.com/anthonyraymond/stompauth/internal/testutils"
	"github.com/anthonyraymond/stompauth/pkg/auth"
	"github.com/anthonyraymond/stompauth/pkg/validationutils"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestConfig_ShouldUnmarshal(t *testing.T) {
	c := Config{}.Default()
	require.NoError(t, yaml.Unmarshal([]byte("authFile: /etc/stompauth/auth.ini\n"), c))

	assert.Equal(t, &Config{AuthFile: "/etc/stompauth/auth.ini"}, c)
}

func TestConfig_ShouldFailValidationWithoutAuthFile(t *testing.T) {
	err := validationutils.New().Struct(Config{}.Default())
	require.Error(t, err)

	testutils.AssertValidateError(t, err.(validator.ValidationErrors), testutils.ErrorDescription{
		ErrorFieldPath: "Config.authFile",
		ErrorTag:       "required",
	})
}

func TestNewFromConfig_ShouldFailWithMissingConfigurationIfConfigIsNil(t *testing.T) {
	a, err := NewFromConfig(nil)

	assert.Nil(t, a)
	assert.True(t, auth.IsMissingConfigurationError(err))
}

func TestNewFromConfig_ShouldFailWithMissingConfigurationIfAuthFileIsEmpty(t *testing.T) {
	a, err := NewFromConfig(Config{}.Default())

	assert.Nil(t, a)
	assert.True(t, auth.IsMissingConfigurationError(err))
	assert.Contains(t, err.Error(), "authFile")
}

func TestNewFromConfig_ShouldPropagateLoadErrors(t *testing.T) {
	a, err := NewFromConfig(&Config{AuthFile: filepath.Join(t.TempDir(), "missing.ini")})
	assert.Nil(t, a)
	assert.True(t, auth.IsUnparsableSourceError(err))

	path := testutils.WriteFile(t, "auth.ini", "[nope]\n")
	a, err = NewFromConfig(&Config{AuthFile: path})
	assert.Nil(t, a)
	assert.True(t, auth.IsMissingSectionError(err))
}

func TestNewFromConfig_ShouldLoadAuthFile(t *testing.T) {
	path := testutils.WriteFile(t, "auth.ini", validAuthFile)

	a, err := NewFromConfig(&Config{AuthFile: path})

	require.NoError(t, err)
	assert.True(t, a.Authenticate("a", "1"))
	assert.False(t, a.Authenticate("a", "2"))
}
