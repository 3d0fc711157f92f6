package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"figsiner/internal/schema"
	"figsiner/internal/section"
)

const sectionEnvelope = `{
  "meta": {"schema": "section-1.0-multi"},
  "variants": [{
    "viewport": "desktop",
    "section": {
      "type": "hero",
      "padding": {"top": 64, "right": 32, "bottom": 64, "left": 32},
      "itemSpacing": 24,
      "items": [{"id": "h", "type": "text", "text": {"content": "Hi", "style": "h1"}}]
    }
  }]
}`

// chatServer answers chat completions with reply and records the last request.
func chatServer(t *testing.T, status int, reply string, got *openAIChatRequest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/chat/completions":
			assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
			if got != nil {
				require.NoError(t, json.NewDecoder(r.Body).Decode(got))
			}
			w.WriteHeader(status)
			if status != http.StatusOK {
				_, _ = w.Write([]byte("boom"))
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]any{
				"choices": []any{map[string]any{"message": map[string]string{"role": "assistant", "content": reply}}},
			})
		case "/v1/models":
			_, _ = w.Write([]byte(`{"data":[{"id":"gpt-a"},{"id":"gpt-b"}]}`))
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestStripCodeFence(t *testing.T) {
	cases := map[string]string{
		"{}":                          "{}",
		"  {\"a\":1}  ":               "{\"a\":1}",
		"```json\n{\"a\":1}\n```":     "{\"a\":1}",
		"```\n{\"a\":1}\n```\n":       "{\"a\":1}",
		"```json\n{\"a\":1}":          "{\"a\":1}",
		"```json\n{\"a\":1}\n  ```  ": "{\"a\":1}",
	}
	for in, want := range cases {
		assert.Equal(t, want, StripCodeFence(in), "input %q", in)
	}
}

func TestParseJSON_ErrorCarriesSnippet(t *testing.T) {
	bad := `{"meta": {"schema": "section-1.0-multi"}, "variants": [` + strings.Repeat(" ", 300)
	_, err := ParseJSON(bad, "Generation JSON parse error")

	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Len(t, []rune(pe.Snippet), 200)
	assert.True(t, strings.HasPrefix(bad, pe.Snippet))
	assert.Contains(t, err.Error(), "Generation JSON parse error")
	assert.Contains(t, err.Error(), `{"meta"`)
}

func TestOpenAIClient_Complete(t *testing.T) {
	var got openAIChatRequest
	srv := chatServer(t, http.StatusOK, "hello", &got)
	defer srv.Close()

	c := NewOpenAIClient(Options{Host: srv.URL + "/", APIKey: "key", Model: "gpt-a"})
	out, err := c.Complete(context.Background(), "sys", "user")
	require.NoError(t, err)
	assert.Equal(t, "hello", out)
	assert.Equal(t, "gpt-a", got.Model)
	assert.Equal(t, 0.0, got.Temperature)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "user", got.Messages[1].Content)
}

func TestOpenAIClient_TransportAndEmpty(t *testing.T) {
	failing := chatServer(t, http.StatusUnauthorized, "", nil)
	defer failing.Close()
	_, err := NewOpenAIClient(Options{Host: failing.URL, APIKey: "key", Model: "m"}).Complete(context.Background(), "s", "u")
	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, http.StatusUnauthorized, te.Status)
	assert.Contains(t, err.Error(), "401")

	empty := chatServer(t, http.StatusOK, "  ", nil)
	defer empty.Close()
	_, err = NewOpenAIClient(Options{Host: empty.URL + "/v1", APIKey: "key", Model: "m"}).Complete(context.Background(), "s", "u")
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestVerify(t *testing.T) {
	srv := chatServer(t, http.StatusOK, "", nil)
	defer srv.Close()
	c := NewOpenAIClient(Options{Host: srv.URL, APIKey: "key"})

	models, err := Verify(context.Background(), c, "gpt-b")
	require.NoError(t, err)
	assert.Equal(t, []string{"gpt-a", "gpt-b"}, models)

	models, err = Verify(context.Background(), c, "gpt-z")
	assert.ErrorIs(t, err, ErrModelNotFound)
	assert.Len(t, models, 2)
}

func TestVerify_NoModels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()
	_, err := Verify(context.Background(), NewOpenAIClient(Options{Host: srv.URL}), "m")
	assert.ErrorIs(t, err, ErrNoModels)
}

func TestNewClient_UnknownProvider(t *testing.T) {
	_, err := NewClient(context.Background(), Options{Provider: "carrier-pigeon"})
	assert.Error(t, err)

	c, err := NewClient(context.Background(), Options{Host: "http://localhost:1234"})
	require.NoError(t, err)
	assert.IsType(t, &OpenAIClient{}, c)
}

func TestSubstitute(t *testing.T) {
	out := Substitute("a <<<{X}>>> b <<<{MISSING}>>> c <<<{X}>>>", map[string]string{"X": "1"})
	assert.Equal(t, "a 1 b  c 1", out)
}

func TestPromptBuilder(t *testing.T) {
	pb := NewPromptBuilder([]byte(`{"spacing":[0,4]}`), []byte(`[{"key":"btn"}]`))
	gen := pb.Generate("  a pricing table  ")
	assert.Contains(t, gen, "a pricing table")
	assert.Contains(t, gen, `"spacing": [`)
	assert.Contains(t, gen, `"key": "btn"`)
	assert.NotContains(t, gen, "<<<{")

	edit, err := pb.Edit(&section.Section{Type: section.SectionHero, Items: []*section.Node{}}, "make it dark")
	require.NoError(t, err)
	assert.Contains(t, edit, `"type": "hero"`)
	assert.Contains(t, edit, "make it dark")
	assert.NotContains(t, edit, "<<<{")
}

func TestRequestSection_FencedReply(t *testing.T) {
	srv := chatServer(t, http.StatusOK, "```json\n"+sectionEnvelope+"\n```", nil)
	defer srv.Close()
	c := NewOpenAIClient(Options{Host: srv.URL, APIKey: "key", Model: "m"})

	resp, err := RequestSection(context.Background(), c, NewPromptBuilder([]byte(`{}`), []byte(`[]`)), "hero")
	require.NoError(t, err)
	require.Len(t, resp.Variants, 1)
	assert.Equal(t, section.ViewportDesktop, resp.Variants[0].Viewport)
	assert.Equal(t, "h", resp.Variants[0].Section.Items[0].ID)
}

func TestDecodeSection_Failures(t *testing.T) {
	_, err := DecodeSection(strings.TrimSuffix(sectionEnvelope, "}"))
	var pe *ParseError
	assert.ErrorAs(t, err, &pe)

	_, err = DecodeSection(`{"meta":{"schema":"section-1.0-multi"},"variants":[{"viewport":"desktop"}]}`)
	var ve *schema.ValidationError
	assert.ErrorAs(t, err, &ve)

	dup := strings.Replace(sectionEnvelope, `"items": [{"id": "h"`, `"items": [{"id": "h", "type": "text", "text": {"content": "a", "style": "body"}}, {"id": "h"`, 1)
	_, err = DecodeSection(dup)
	assert.ErrorContains(t, err, "duplicate node id")
}

func TestDecodePatch(t *testing.T) {
	resp, err := DecodePatch("```\n" + `{"meta":{"schema":"section-patch-1.0"},"ops":[
		{"op":"removeItem","targetId":"a"},
		{"op":"insertItem","parentId":"root","position":"end","item":{"id":"n","type":"text","text":{"content":"x","style":"body"}}},
		{"op":"explode"}
	]}` + "\n```")
	require.NoError(t, err)
	require.Len(t, resp.Ops, 3)
	assert.Equal(t, section.OpRemoveItem, resp.Ops[0].Name())
	assert.IsType(t, &section.UnsupportedOp{}, resp.Ops[2])

	_, err = DecodePatch(`{"meta":{"schema":"section-patch-1.0"},"ops":[{"op":"removeItem"}]}`)
	var ve *schema.ValidationError
	assert.ErrorAs(t, err, &ve)
}
