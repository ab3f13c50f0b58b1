package main

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/jonathan/page-digest/internal/pipeline"
)

// fakeModelAPI answers chat completions like an OpenAI-compatible API.
func fakeModelAPI(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		content := `{\"overview\":\"o\",\"key_points\":[\"a\",\"b\",\"c\"]}`
		if gjson.GetBytes(body, "max_completion_tokens").Int() == pipeline.HeadlineMaxTokens {
			content = "First headline, Second headline"
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"chatcmpl-1","object":"chat.completion","created":0,"model":"gpt-5-mini",` +
			`"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"` + content + `"}}]}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestSendCommand_DryRunInProcess(t *testing.T) {
	api := fakeModelAPI(t)
	dir := t.TempDir()

	cfgPath := filepath.Join(dir, "config.yaml")
	cfgYAML := "provider: openai\nmodel: gpt-5-mini\nopenai_api_key: sk-test\nbase_url: " + api.URL + "/v1\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfgYAML), 0o600))

	pagePath := filepath.Join(dir, "page.json")
	require.NoError(t, os.WriteFile(pagePath, []byte(`{"title":"A","url":"http://x","content":"hello world"}`), 0o600))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"send", "--config", cfgPath, "--page", pagePath, "--dry-run", "--locale", "en_us"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())

	text := gjson.Get(out.String(), "content.text").String()
	assert.Equal(t, "text", gjson.Get(out.String(), "msg_type").String())
	for _, want := range []string{"Title 1: First headline", "Title 2: Second headline", "Overview: o", "3. c", "Link: http://x"} {
		assert.Contains(t, text, want)
	}
}

func TestSendCommand_MissingInput(t *testing.T) {
	binaryPath := getBinaryPath(t)

	cmd := exec.Command(binaryPath, "send")
	output, err := cmd.CombinedOutput()

	assert.Error(t, err)
	assert.Contains(t, string(output), "either a url argument or --page must be provided")
}

func TestSendCommand_MissingAPIKey(t *testing.T) {
	binaryPath := getBinaryPath(t)

	pagePath := filepath.Join(t.TempDir(), "page.json")
	require.NoError(t, os.WriteFile(pagePath, []byte(`{"title":"A","url":"http://x","content":"hello"}`), 0o600))

	cmd := exec.Command(binaryPath, "send", "--page", pagePath, "--dry-run")
	cmd.Env = []string{"HOME=" + t.TempDir(), "XDG_CONFIG_HOME=" + t.TempDir()}
	output, err := cmd.CombinedOutput()

	assert.Error(t, err)
	assert.Contains(t, string(output), "OPENAI_API_KEY")
}

func TestSendCommand_MissingWebhook(t *testing.T) {
	binaryPath := getBinaryPath(t)

	cmd := exec.Command(binaryPath, "send", "https://example.com")
	cmd.Env = []string{"HOME=" + t.TempDir(), "XDG_CONFIG_HOME=" + t.TempDir(), "OPENAI_API_KEY=sk-test"}
	output, err := cmd.CombinedOutput()

	assert.Error(t, err)
	assert.Contains(t, string(output), "'webhook_url' is required")
}

func TestExtractCommand_RequiresURL(t *testing.T) {
	binaryPath := getBinaryPath(t)

	cmd := exec.Command(binaryPath, "extract")
	output, err := cmd.CombinedOutput()

	assert.Error(t, err)
	assert.True(t, strings.Contains(string(output), "accepts 1 arg"))
}
