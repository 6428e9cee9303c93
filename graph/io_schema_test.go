package graph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type questionIn struct {
	Question string `json:"question"`
}

type answerOut struct {
	Answer string `json:"answer"`
}

type overall struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Notes    string `json:"notes"`
}

func TestSchemaRunnable(t *testing.T) {
	g := NewStateGraph[overall]()
	g.SetSchema(NewStructSchema(overall{}, nil))

	var seen string
	g.AddNode("thinking_node", "", func(_ context.Context, s overall) (overall, error) {
		seen = s.Question
		return overall{Answer: "bye", Notes: "... his name is Lance"}, nil
	})
	g.AddNode("answer_node", "", func(_ context.Context, s overall) (overall, error) {
		return overall{Answer: "bye Lance"}, nil
	})
	g.AddEdge(START, "thinking_node")
	g.AddEdge("thinking_node", "answer_node")
	g.AddEdge("answer_node", END)

	r, err := g.Compile()
	require.NoError(t, err)

	out, err := WithIOSchema[questionIn, answerOut](r).Invoke(context.Background(), questionIn{Question: "hi"})
	require.NoError(t, err)
	assert.Equal(t, answerOut{Answer: "bye Lance"}, out)
	assert.Equal(t, "hi", seen)
}
