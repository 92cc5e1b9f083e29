package main

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/shoenig/test/must"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// run executes the command line args against a server running handler and
// returns what was printed to stdout.
func run(t *testing.T, srv *httptest.Server, stdin string, args ...string) (string, error) {
	t.Helper()

	resetFlags(rootCmd)

	var stdout, stderr bytes.Buffer

	rootCmd.SetArgs(args)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)

	err := rootCmd.ExecuteContext(t.Context())
	if stderr.Len() > 0 {
		t.Logf("stderr: %s", stderr.String())
	}

	return stdout.String(), err
}

// resetFlags puts every flag of cmd and its subcommands back to its default,
// since cobra keeps parsed values between executions.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			sv.Replace(nil)
		} else {
			f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}

	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)

	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

// testEnv points the command at srv with a fresh history directory.
func testEnv(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	t.Setenv("CHATGPT_CONFIG", "")
	os.Unsetenv("CHATGPT_CONFIG")
	t.Chdir(t.TempDir())

	t.Setenv("OPENAI_API_KEY", "test-key")
	t.Setenv("OPENAI_BASE_URL", srv.URL)
	t.Setenv("CHATGPT_HISTORY_PATH", t.TempDir())
	t.Setenv("CHATGPT_LOG_LEVEL", "error")

	return srv
}

// api is a fake server answering every endpoint the tests touch.
func api(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		switch r.URL.Path {
		case "/v1/models":
			io.WriteString(w, `{"data":[{"id":"gpt-4o"},{"id":"llama3.2:latest"}]}`)
		case "/v1/chat/completions":
			var body struct {
				Messages []map[string]any `json:"messages"`
			}
			must.NoError(t, json.NewDecoder(r.Body).Decode(&body))

			last := body.Messages[len(body.Messages)-1]["content"]
			reply := map[string]any{
				"choices": []any{map[string]any{
					"message": map[string]any{
						"role":    "assistant",
						"content": "turns=" + strconv.Itoa(len(body.Messages)) + " echo=" + last.(string),
					},
				}},
			}
			must.NoError(t, json.NewEncoder(w).Encode(reply))
		case "/v1/embeddings":
			io.WriteString(w, `{"data":[
				{"index":0,"embedding":[1,0]},
				{"index":1,"embedding":[0,1]},
				{"index":2,"embedding":[1,0.1]}
			]}`)
		case "/v1/completions":
			body := decode(t, r)
			writeReply(t, w, map[string]any{"choices": []any{
				map[string]any{"text": fmt.Sprintf("\n\nmax_tokens=%v stop=%v", body["max_tokens"], body["stop"])},
			}})
		case "/v1/edits":
			body := decode(t, r)
			writeReply(t, w, map[string]any{"choices": []any{
				map[string]any{"text": fmt.Sprintf("%v: %v", body["instruction"], body["input"])},
			}})
		case "/v1/images/generations":
			body := decode(t, r)

			var data []any
			for i := range int(body["n"].(float64)) {
				if body["response_format"] == "b64_json" {
					data = append(data, map[string]any{"b64_json": base64.StdEncoding.EncodeToString([]byte("png-" + strconv.Itoa(i+1)))})
				} else {
					data = append(data, map[string]any{"url": "https://example.com/" + strconv.Itoa(i+1) + ".png"})
				}
			}
			writeReply(t, w, map[string]any{"data": data})
		case "/v1/images/edits":
			must.NoError(t, r.ParseMultipartForm(1<<20))

			url := "https://example.com/edit.png?image=" + r.MultipartForm.File["image"][0].Filename
			if masks := r.MultipartForm.File["mask"]; len(masks) > 0 {
				url += "&mask=" + masks[0].Filename
			}
			writeReply(t, w, map[string]any{"data": []any{map[string]any{"url": url}}})
		case "/v1/audio/transcriptions":
			must.NoError(t, r.ParseMultipartForm(1<<20))

			if r.FormValue("response_format") == "text" {
				w.Header().Set("Content-Type", "text/plain")
				io.WriteString(w, "hello from "+r.MultipartForm.File["file"][0].Filename)
				return
			}
			io.WriteString(w, `{"text":"hello"}`)
		case "/v1/moderations":
			body := decode(t, r)

			var results []any
			for _, input := range body["input"].([]any) {
				violent := strings.Contains(input.(string), "kill")
				results = append(results, map[string]any{
					"flagged":    violent,
					"categories": map[string]any{"hate": false, "violence": violent},
				})
			}
			writeReply(t, w, map[string]any{"results": results})
		default:
			w.WriteHeader(http.StatusNotFound)
			io.WriteString(w, `{"error":{"message":"unknown endpoint"}}`)
		}
	}
}

func decode(t *testing.T, r *http.Request) map[string]any {
	var body map[string]any
	must.NoError(t, json.NewDecoder(r.Body).Decode(&body))
	return body
}

func writeReply(t *testing.T, w http.ResponseWriter, v any) {
	must.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestModelsList(t *testing.T) {
	srv := testEnv(t, api(t))

	out, err := run(t, srv, "", "models", "list")
	must.NoError(t, err)
	must.Eq(t, "gpt-4o\nllama3.2:latest\n", out)
}

func TestChat_oneShotAndHistory(t *testing.T) {
	srv := testEnv(t, api(t))

	out, err := run(t, srv, "", "chat", "hello", "there")
	must.NoError(t, err)
	must.Eq(t, "turns=1 echo=hello there\n", out)

	out, err = run(t, srv, "", "history", "list")
	must.NoError(t, err)
	must.StrContains(t, out, "/v1/chat/completions")
	must.StrContains(t, out, "200")
}

func TestChat_noHistory(t *testing.T) {
	srv := testEnv(t, api(t))

	_, err := run(t, srv, "", "--no-history", "models", "list")
	must.NoError(t, err)

	out, err := run(t, srv, "", "history", "list")
	must.NoError(t, err)
	must.Eq(t, "", out)
}

func TestChat_interactive(t *testing.T) {
	srv := testEnv(t, api(t))

	out, err := run(t, srv, "first\n\nsecond\nexit\nnever sent\n", "chat", "-i")
	must.NoError(t, err)

	// The second request carries the first exchange as context.
	must.StrContains(t, out, "turns=1 echo=first")
	must.StrContains(t, out, "turns=3 echo=second")
	must.StrNotContains(t, out, "never sent")
}

func TestEmbed_compare(t *testing.T) {
	srv := testEnv(t, api(t))

	out, err := run(t, srv, "", "embed", "--compare", "pizza", "cyber security", "pasta")
	must.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	must.SliceLen(t, 2, lines)
	must.StrHasSuffix(t, "pasta", lines[0])
	must.StrHasSuffix(t, "cyber security", lines[1])
}

func TestStatusErrorIsReturned(t *testing.T) {
	srv := testEnv(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"error":{"message":"Incorrect API key provided"}}`)
	})

	_, err := run(t, srv, "", "models", "get", "gpt-4o")
	must.Error(t, err)
	must.StrContains(t, err.Error(), "status: 401")
}

func TestComplete(t *testing.T) {
	srv := testEnv(t, api(t))

	out, err := run(t, srv, "", "complete", "--max-tokens", "16", "--stop", "x,y", "Once", "upon")
	must.NoError(t, err)
	must.Eq(t, "max_tokens=16 stop=[x y]\n", out)

	// Flags from the previous run do not leak into this one.
	out, err = run(t, srv, "", "complete", "Once")
	must.NoError(t, err)
	must.Eq(t, "max_tokens=256 stop=<nil>\n", out)
}

func TestEdit(t *testing.T) {
	srv := testEnv(t, api(t))

	out, err := run(t, srv, "What day of the wek is it?\n", "edit", "Fix the spelling mistakes")
	must.NoError(t, err)
	must.Eq(t, "Fix the spelling mistakes: What day of the wek is it?\n", out)

	out, err = run(t, srv, "ignored", "edit", "--input", "teh", "Fix", "it")
	must.NoError(t, err)
	must.Eq(t, "Fix it: teh\n", out)
}

func TestImageGenerate(t *testing.T) {
	srv := testEnv(t, api(t))

	dir := filepath.Join(t.TempDir(), "images")

	out, err := run(t, srv, "", "image", "generate", "-n", "2", "--out", dir, "a", "cat")
	must.NoError(t, err)

	first, second := filepath.Join(dir, "image-1.png"), filepath.Join(dir, "image-2.png")
	must.Eq(t, first+"\n"+second+"\n", out)

	b, err := os.ReadFile(first)
	must.NoError(t, err)
	must.Eq(t, "png-1", string(b))

	b, err = os.ReadFile(second)
	must.NoError(t, err)
	must.Eq(t, "png-2", string(b))

	// Without --out the URLs are printed.
	out, err = run(t, srv, "", "image", "generate", "a", "cat")
	must.NoError(t, err)
	must.Eq(t, "https://example.com/1.png\n", out)
}

func TestImageEdit_mask(t *testing.T) {
	srv := testEnv(t, api(t))

	must.NoError(t, os.WriteFile("otter.png", []byte("otter"), 0o600))
	must.NoError(t, os.WriteFile("mask.png", []byte("mask"), 0o600))

	out, err := run(t, srv, "", "image", "edit", "--mask", "mask.png", "otter.png", "add", "a", "beret")
	must.NoError(t, err)
	must.Eq(t, "https://example.com/edit.png?image=otter.png&mask=mask.png\n", out)

	out, err = run(t, srv, "", "image", "edit", "otter.png", "add", "a", "beret")
	must.NoError(t, err)
	must.Eq(t, "https://example.com/edit.png?image=otter.png\n", out)
}

func TestAudioTranscribe_plainRaw(t *testing.T) {
	srv := testEnv(t, api(t))

	must.NoError(t, os.WriteFile("speech.mp3", []byte("mp3"), 0o600))

	out, err := run(t, srv, "", "--raw", "audio", "transcribe", "--format", "text", "speech.mp3")
	must.NoError(t, err)
	must.Eq(t, "hello from speech.mp3\n", out)

	out, err = run(t, srv, "", "--raw", "audio", "transcribe", "speech.mp3")
	must.NoError(t, err)
	must.Eq(t, "{\n  \"text\": \"hello\"\n}\n", out)
}

func TestModerate(t *testing.T) {
	srv := testEnv(t, api(t))

	out, err := run(t, srv, "", "moderate", "I like pizza", "I want to kill them")
	must.NoError(t, err)
	must.Eq(t, "I like pizza: ok\nI want to kill them: flagged: violence\n", out)
}

func TestHistory_showAndClear(t *testing.T) {
	srv := testEnv(t, api(t))

	_, err := run(t, srv, "", "chat", "hello")
	must.NoError(t, err)

	out, err := run(t, srv, "", "--raw", "history", "list")
	must.NoError(t, err)

	var list struct {
		Entries []struct {
			ID string `json:"id"`
		} `json:"entries"`
	}
	must.NoError(t, json.Unmarshal([]byte(out), &list))
	must.SliceLen(t, 1, list.Entries)

	id := list.Entries[0].ID

	out, err = run(t, srv, "", "history", "show", id)
	must.NoError(t, err)

	var entry struct {
		ID       string         `json:"id"`
		Endpoint string         `json:"endpoint"`
		Status   int            `json:"status"`
		Request  map[string]any `json:"request"`
	}
	must.NoError(t, json.Unmarshal([]byte(out), &entry))
	must.Eq(t, id, entry.ID)
	must.Eq(t, "/v1/chat/completions", entry.Endpoint)
	must.Eq(t, http.StatusOK, entry.Status)
	must.MapContainsKey(t, entry.Request, "messages")

	out, err = run(t, srv, "", "history", "clear")
	must.NoError(t, err)
	must.Eq(t, "removed 1 exchanges\n", out)

	out, err = run(t, srv, "", "history", "list")
	must.NoError(t, err)
	must.Eq(t, "", out)

	_, err = run(t, srv, "", "history", "show", id)
	must.ErrorContains(t, err, "no exchange with id")
}
