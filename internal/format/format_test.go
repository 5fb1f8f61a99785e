package format

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xiaot623/gogo/ollama-mcp/internal/domain"
)

func decode(t *testing.T, s string) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		t.Fatalf("bad fixture: %v", err)
	}
	return m
}

func TestModelList(t *testing.T) {
	raw := decode(t, `{"models":[
		{"name":"llama2","size":1073741824,"modified_at":"2024-01-01T00:00:00Z","digest":"sha256:a","details":{}},
		{"name":"partial"}
	]}`)

	got := ModelList(raw)
	assert.Equal(t, 2, got.Count)
	assert.Equal(t, ModelSummary{Name: "llama2", Size: 1073741824, ModifiedAt: "2024-01-01T00:00:00Z", Digest: "sha256:a"}, got.Models[0])
	assert.Equal(t, ModelSummary{Name: "partial"}, got.Models[1])
}

func TestModelListEmpty(t *testing.T) {
	got := ModelList(map[string]any{})
	assert.Equal(t, 0, got.Count)
	assert.NotNil(t, got.Models)

	data, err := json.Marshal(got)
	assert.NoError(t, err)
	assert.JSONEq(t, `{"models":[],"count":0}`, string(data))
}

func TestGenerateDefaults(t *testing.T) {
	data, err := json.Marshal(Generate(map[string]any{}))
	assert.NoError(t, err)
	assert.JSONEq(t, `{
		"response":"","done":false,"context":[],
		"total_duration":0,"load_duration":0,
		"prompt_eval_count":0,"prompt_eval_duration":0,
		"eval_count":0,"eval_duration":0
	}`, string(data))
}

func TestGenerate(t *testing.T) {
	raw := decode(t, `{"model":"m","response":"hi","done":true,"context":[1,2,3],"total_duration":10,"eval_count":4}`)
	got := Generate(raw)
	assert.Equal(t, "hi", got.Response)
	assert.True(t, got.Done)
	assert.Equal(t, []int64{1, 2, 3}, got.Context)
	assert.Equal(t, int64(10), got.TotalDuration)
	assert.Equal(t, int64(4), got.EvalCount)
}

func TestChat(t *testing.T) {
	raw := decode(t, `{"message":{"role":"assistant","content":"yo"},"done":true,"eval_duration":7}`)
	data, err := json.Marshal(Chat(raw))
	assert.NoError(t, err)
	assert.JSONEq(t, `{
		"message":{"role":"assistant","content":"yo"},"done":true,
		"total_duration":0,"load_duration":0,
		"prompt_eval_count":0,"prompt_eval_duration":0,
		"eval_count":0,"eval_duration":7
	}`, string(data))

	assert.Equal(t, map[string]any{}, Chat(map[string]any{}).Message)
}

func TestEmbedding(t *testing.T) {
	got := Embedding(decode(t, `{"embedding":[0.5,-1,2]}`))
	assert.Equal(t, []float64{0.5, -1, 2}, got.Embedding)

	empty := Embedding(map[string]any{})
	assert.NotNil(t, empty.Embedding)
	assert.Empty(t, empty.Embedding)
}

func TestError(t *testing.T) {
	env := Error(domain.NewUnknownToolError("ollama_nope"))
	assert.Equal(t, domain.KindUnknownTool, env.ErrorType)
	assert.Equal(t, "unknown tool: ollama_nope", env.Error)

	env = Error(errors.New("boom"))
	assert.Equal(t, domain.KindInternal, env.ErrorType)
	assert.Equal(t, "boom", env.Error)
}
