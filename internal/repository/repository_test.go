package repository

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestPageOffset(t *testing.T) {
	assert.Equal(t, 0, Page{Page: 0, Limit: 20}.Offset())
	assert.Equal(t, 0, Page{Page: 1, Limit: 20}.Offset())
	assert.Equal(t, 40, Page{Page: 3, Limit: 20}.Offset())
	assert.Equal(t, 0, Page{Page: 3, Limit: 0}.Offset())
	assert.Equal(t, (MaxPage-1)*100, Page{Page: math.MaxInt, Limit: 100}.Offset())
}

func TestLikePattern(t *testing.T) {
	assert.Equal(t, "%pothole%", likePattern("pothole"))
	assert.Equal(t, `%100\% off%`, likePattern("100% off"))
	assert.Equal(t, `%bob\_smith%`, likePattern("bob_smith"))
	assert.Equal(t, `%a\\b%`, likePattern(`a\b`))
}

func TestTranslate(t *testing.T) {
	other := errors.New("connection reset")

	assert.NoError(t, translate(nil))
	assert.ErrorIs(t, translate(gorm.ErrRecordNotFound), ErrNotFound)
	assert.ErrorIs(t, translate(fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey)), ErrDuplicate)
	assert.Equal(t, other, translate(other))
}

func TestOrderClause(t *testing.T) {
	assert.Equal(t, "created_at DESC", orderClause(""))
	assert.Equal(t, "created_at ASC", orderClause(SortOldest))
	assert.Equal(t, "upvotes DESC, created_at DESC", orderClause(SortTop))
}
