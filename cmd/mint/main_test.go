package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type backend struct {
	uploads       []string
	registrations []map[string]any
	uploadStatus  int
}

func newBackend(t *testing.T) (*backend, *httptest.Server) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	b := &backend{uploadStatus: http.StatusCreated}
	router := gin.New()
	api := router.Group("/api/v1")
	api.POST("/create", func(c *gin.Context) {
		b.uploads = append(b.uploads, c.PostForm("project_name"))
		c.JSON(b.uploadStatus, gin.H{})
	})
	api.POST("/object_uri", func(c *gin.Context) {
		var body map[string]any
		_ = c.ShouldBindJSON(&body)
		b.registrations = append(b.registrations, body)
		c.JSON(http.StatusOK, "https://storage.example/signed")
	})
	api.GET("/user_nft_items/:address", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json", []byte(`[{
			"address": "`+c.Param("address")+`",
			"metadata": {"trait_type": {"Strand": "Eyes"}, "value": {"Strand": "grin"}},
			"blocktime": 1700000000,
			"file": "https://storage.example/signed"
		}]`))
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	t.Setenv("FACTORY_API_BASE_URL", srv.URL+"/api/v1")
	t.Setenv("WALLET_ADDRESS", "")
	return b, srv
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

type scriptedPrompter struct {
	answers  map[string]string
	confirms map[string]bool
	asked    []string
}

func (s *scriptedPrompter) Input(message, _ string, validate func(string) error) (string, error) {
	s.asked = append(s.asked, message)
	answer := s.answers[message]
	if validate != nil {
		if err := validate(answer); err != nil {
			return "", err
		}
	}
	return answer, nil
}

func (s *scriptedPrompter) Confirm(message string, def bool) (bool, error) {
	s.asked = append(s.asked, message)
	if answer, ok := s.confirms[message]; ok {
		return answer, nil
	}
	return def, nil
}

func TestRun_Usage(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, 2, run(context.Background(), nil, &stdout, &stderr, noPrompter{}))
	assert.Contains(t, stderr.String(), "usage: mint")

	assert.Equal(t, 2, run(context.Background(), []string{"burn"}, &stdout, &stderr, noPrompter{}))
}

func TestSubmit_Success(t *testing.T) {
	b, _ := newBackend(t)
	image := writeFile(t, "art.png", "pixels")

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{
		"submit", "-no-input", "-seed", "7",
		"-name", "Foo Bar", "-symbol", "FB", "-image", image, "-wallet", "0xabc",
	}, &stdout, &stderr, nil)

	require.Equal(t, 0, code, stderr.String())
	assert.Contains(t, stdout.String(), "Your piece was registered!")
	assert.Contains(t, stdout.String(), "https://storage.example/signed")
	assert.Equal(t, []string{"foo-bar"}, b.uploads)
	require.Len(t, b.registrations, 1)
	assert.Equal(t, "0xabc", b.registrations[0]["address"])
	assert.Equal(t, "art.png", b.registrations[0]["object_name"])
}

func TestSubmit_PromptsForMissingFields(t *testing.T) {
	b, _ := newBackend(t)
	image := writeFile(t, "art.png", "pixels")
	p := &scriptedPrompter{answers: map[string]string{
		"Project name":              "Prompted Project",
		"Project symbol":            "PP",
		"Path to the project image": image,
	}}

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"submit", "-wallet", "0xabc"}, &stdout, &stderr, p)

	require.Equal(t, 0, code, stderr.String())
	assert.Equal(t, []string{"prompted-project"}, b.uploads)
	assert.Len(t, p.asked, 5)
	assert.Contains(t, p.asked, storageQuestion)
}

func TestSubmit_StorageDeclinedAsksForTokenURI(t *testing.T) {
	b, _ := newBackend(t)
	p := &scriptedPrompter{
		answers:  map[string]string{"Token URI": "ipfs://example.com"},
		confirms: map[string]bool{storageQuestion: false},
	}

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{
		"submit", "-name", "Foo Bar", "-symbol", "FB", "-wallet", "0xabc",
	}, &stdout, &stderr, p)

	assert.Equal(t, 1, code)
	assert.Equal(t, []string{storageQuestion, "Token URI"}, p.asked)
	assert.Contains(t, stdout.String(), "Token URI submissions are not available yet.")
	assert.Empty(t, b.uploads)
}

func TestSubmit_ExplicitStoreFlagSkipsStorageQuestion(t *testing.T) {
	newBackend(t)
	image := writeFile(t, "art.png", "pixels")
	p := &scriptedPrompter{answers: map[string]string{}}

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{
		"submit", "-store", "-name", "Foo Bar", "-symbol", "FB", "-image", image, "-wallet", "0xabc",
	}, &stdout, &stderr, p)

	require.Equal(t, 0, code, stderr.String())
	assert.NotContains(t, p.asked, storageQuestion)
}

func TestSubmit_WalletNotConnected(t *testing.T) {
	b, _ := newBackend(t)
	image := writeFile(t, "art.png", "pixels")

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{
		"submit", "-no-input", "-name", "Foo Bar", "-symbol", "FB", "-image", image,
	}, &stdout, &stderr, nil)

	assert.Equal(t, 1, code)
	assert.Contains(t, stdout.String(), "Connect your wallet!")
	assert.Empty(t, b.uploads)
	assert.Empty(t, b.registrations)
}

func TestSubmit_UploadFailure(t *testing.T) {
	b, _ := newBackend(t)
	b.uploadStatus = http.StatusInternalServerError
	image := writeFile(t, "art.png", "pixels")

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{
		"submit", "-no-input", "-name", "Foo Bar", "-symbol", "FB", "-image", image, "-wallet", "0xabc",
	}, &stdout, &stderr, nil)

	assert.Equal(t, 1, code)
	assert.Contains(t, stdout.String(), "Unsuccessful please try again!")
	assert.Empty(t, b.registrations)
}

func TestSubmit_ExternalTokenURI(t *testing.T) {
	b, _ := newBackend(t)

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{
		"submit", "-no-input", "-store=false", "-token-uri", "ipfs://example.com",
		"-name", "Foo Bar", "-symbol", "FB", "-wallet", "0xabc",
	}, &stdout, &stderr, nil)

	assert.Equal(t, 1, code)
	assert.Contains(t, stdout.String(), "Token URI submissions are not available yet.")
	assert.Empty(t, b.uploads)
	assert.Empty(t, b.registrations)
}

func TestCollectForm_TokenURIPromptValidates(t *testing.T) {
	p := &scriptedPrompter{answers: map[string]string{"Token URI": "not a uri"}}

	_, err := collectForm(p, submitFlags{name: "Foo Bar", symbol: "FB", store: false})
	assert.Error(t, err)
}

func TestGallery(t *testing.T) {
	newBackend(t)

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"gallery", "-wallet", "0xabc"}, &stdout, &stderr, nil)

	require.Equal(t, 0, code, stderr.String())
	assert.Contains(t, stdout.String(), "REGISTERED")
	assert.Contains(t, stdout.String(), "2023-11-14T22:13:20Z")
	assert.Contains(t, stdout.String(), "https://storage.example/signed")
	assert.Contains(t, stdout.String(), `"Strand": "Eyes"`)
}

func TestGallery_NoWallet(t *testing.T) {
	newBackend(t)

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"gallery"}, &stdout, &stderr, nil)

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "Connect your wallet!")
}
