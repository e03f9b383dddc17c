package push

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func messages(n int) []Message {
	result := make([]Message, n)
	for i := range result {
		result[i] = Message{To: fmt.Sprintf("ExponentPushToken[%d]", i), Body: "body"}
	}
	return result
}

func TestChunk(t *testing.T) {
	tests := []struct {
		name      string
		messages  []Message
		size      int
		wantSizes []int
	}{
		{name: "splits into full and partial chunks", messages: messages(250), size: 100, wantSizes: []int{100, 100, 50}},
		{name: "exact multiple", messages: messages(200), size: 100, wantSizes: []int{100, 100}},
		{name: "smaller than size", messages: messages(3), size: 100, wantSizes: []int{3}},
		{name: "no messages", messages: nil, size: 100, wantSizes: nil},
		{name: "non-positive size keeps a single chunk", messages: messages(5), size: 0, wantSizes: []int{5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := Chunk(tt.messages, tt.size)
			var sizes []int
			for _, c := range chunks {
				sizes = append(sizes, len(c))
			}
			assert.Equal(t, tt.wantSizes, sizes)
		})
	}
}

func TestChunk_PreservesOrder(t *testing.T) {
	chunks := Chunk(messages(5), 2)
	var got []string
	for _, c := range chunks {
		for _, m := range c {
			got = append(got, m.To)
		}
	}
	assert.Equal(t, []string{
		"ExponentPushToken[0]", "ExponentPushToken[1]", "ExponentPushToken[2]",
		"ExponentPushToken[3]", "ExponentPushToken[4]",
	}, got)
}
