package cache

import (
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

var _ fiber.Storage = (*RedisStorage)(nil)

func TestRedisStorage_EmptyKeysAreNoops(t *testing.T) {
	// No server is contacted for empty keys.
	s := NewRedisStorage("127.0.0.1:0", "", 0)
	defer s.Close()

	val, err := s.Get("")
	assert.NoError(t, err)
	assert.Nil(t, val)
	assert.NoError(t, s.Set("", []byte("1"), 0))
	assert.NoError(t, s.Set("k", nil, 0))
	assert.NoError(t, s.Delete(""))
}
