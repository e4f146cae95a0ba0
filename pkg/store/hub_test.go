package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHub_PublishOrderAndCancel(t *testing.T) {
	h := NewHub()
	var got []string
	cancelA := h.Subscribe(func(l LastChecked) { got = append(got, "a:"+l.Item) })
	h.Subscribe(func(l LastChecked) { got = append(got, "b:"+l.Item) })

	h.Publish(LastChecked{Item: "one"})
	cancelA()
	cancelA()
	h.Publish(LastChecked{Item: "two"})

	assert.Equal(t, []string{"a:one", "b:one", "b:two"}, got)
}
