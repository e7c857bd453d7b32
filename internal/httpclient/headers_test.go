package httpclient

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseHeaders(t *testing.T) {
	got := ParseHeaders([]string{"X-Token: abc:def", "broken", " Accept :  */* ", ": novalue"})
	assert.Equal(t, map[string]string{"X-Token": "abc:def", "Accept": "*/*"}, got)

	assert.Nil(t, ParseHeaders([]string{"nope"}))
	assert.Nil(t, ParseHeaders(nil))
}

func TestDefaultHeaders_FreshCopy(t *testing.T) {
	h := DefaultHeaders()
	h["User-Agent"] = "changed"
	assert.Equal(t, DefaultUserAgent, DefaultHeaders()["User-Agent"])
	assert.Len(t, DefaultHeaders(), 7)
}

func TestRandomUserAgent(t *testing.T) {
	for i := 0; i < 20; i++ {
		assert.Contains(t, userAgents, RandomUserAgent())
	}
}
