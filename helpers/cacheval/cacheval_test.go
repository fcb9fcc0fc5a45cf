package cacheval

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestInt32Valid(t *testing.T) {
	t.Parallel()

	rand := rand.New(rand.NewSource(time.Now().UnixNano()))
	const valid = 100 * time.Millisecond

	cv := Int32{}
	cv.Init(valid)

	assert.Equal(t, int32(0), cv.Get())
	v, ok := cv.GetFresh()
	assert.Equal(t, int32(0), v)
	assert.Equal(t, false, ok)

	expect := int32(rand.Uint32())
	cv.Set(expect)
	v, ok = cv.GetFresh()
	assert.Equal(t, expect, v)
	assert.Equal(t, true, ok)

	time.Sleep(valid)
	v = cv.GetOrUpdate(func() { cv.Set(expect + 1) })
	assert.Equal(t, expect+1, v)
	assert.Equal(t, expect+1, cv.Get())
}
