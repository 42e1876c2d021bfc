package logsvc

import (
	"bytes"
	"log"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/trezcool/schoolsaas/core"
	"github.com/trezcool/schoolsaas/core/user"
)

func TestRollbarLogger(t *testing.T) {
	buf := new(bytes.Buffer)
	logger := NewRollbarLogger(log.New(buf, "API : ", 0), &core.Config{Env: "TEST"})
	logger.Enable(true) // no token: stays disabled
	defer logger.Close()

	usr := user.User{Email: "hero@test.in"}
	logger.Info("server started")
	logger.Error("saving school", errors.New("disk full"), usr, map[string]interface{}{"code": "DPS001"})

	out := buf.String()
	assert.Contains(t, out, "API : [info] server started")
	assert.Contains(t, out, "API : [error] saving school")
	assert.Contains(t, out, "disk full")
	assert.NotContains(t, out, "hero@test.in")
}
