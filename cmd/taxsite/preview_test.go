package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func TestPreviewContactHTML(t *testing.T) {
	out, err := runCmd(t, "preview", "contact")
	require.NoError(t, err)

	assert.Contains(t, out, "<h2>New Contact Form Submission</h2>")
	assert.Contains(t, out, "Jane Doe")
	assert.Contains(t, out, "<br />")
}

func TestPreviewContactText(t *testing.T) {
	out, err := runCmd(t, "preview", "contact", "--mode", "text")
	require.NoError(t, err)

	assert.Contains(t, out, "From: Jane Doe")
	assert.NotContains(t, out, "<p>")
}

func TestPreviewContactJSON(t *testing.T) {
	out, err := runCmd(t, "preview", "contact", "--mode", "json")
	require.NoError(t, err)

	var req map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &req))
	assert.Equal(t, "Triangle Tax & Advisory Website <noreply@resend.dev>", req["from"])
	assert.Equal(t, "jane@example.com", req["reply_to"])
	assert.Equal(t, "New Contact Form Submission from Jane Doe", req["subject"])
}

func TestPreviewContactUnknownMode(t *testing.T) {
	_, err := runCmd(t, "preview", "contact", "--mode", "pdf")
	assert.Error(t, err)
}
