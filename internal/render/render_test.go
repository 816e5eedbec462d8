package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_Markdown(t *testing.T) {
	r := New()
	out, err := r.Render("# Heading\n\nHello **world**")
	require.NoError(t, err)
	assert.Contains(t, out, "Heading</h1>")
	assert.Contains(t, out, "<strong>world</strong>")
}

func TestRender_StripsScript(t *testing.T) {
	r := New()
	out, err := r.Render("before <script>alert(1)</script> after\n\n<script>alert(2)</script>\n\ntail")
	require.NoError(t, err)
	assert.NotContains(t, strings.ToLower(out), "<script")
	assert.NotContains(t, out, "alert(")
	assert.Contains(t, out, "before")
	assert.Contains(t, out, "after")
	assert.Contains(t, out, "tail")
}

func TestRender_StripsIframeStyleAndHandlers(t *testing.T) {
	r := New()
	src := "<iframe src=\"https://evil.example\"></iframe>\n\n" +
		"<style>body{display:none}</style>\n\n" +
		"<p onclick=\"steal()\">click</p>\n\n" +
		"[link](javascript:alert(1))"
	out, err := r.Render(src)
	require.NoError(t, err)
	lower := strings.ToLower(out)
	assert.NotContains(t, lower, "<iframe")
	assert.NotContains(t, lower, "<style")
	assert.NotContains(t, lower, "onclick")
	assert.NotContains(t, lower, "javascript:")
	assert.Contains(t, out, "click")
}

func TestRender_PreservesStructure(t *testing.T) {
	r := New()
	src := "| a | b |\n|---|---|\n| 1 | 2 |\n\n- item\n\n```go\nfmt.Println()\n```\n\n[ok](https://example.com)"
	out, err := r.Render(src)
	require.NoError(t, err)
	assert.Contains(t, out, "<table>")
	assert.Contains(t, out, "<li>item</li>")
	assert.Contains(t, out, `class="language-go"`)
	assert.Contains(t, out, `href="https://example.com"`)
}

func TestPlainText(t *testing.T) {
	r := New()
	html, err := r.Render("# Title\n\nFish &amp; chips,\n   *tasty*.")
	require.NoError(t, err)
	assert.Equal(t, "Title Fish & chips, tasty.", r.PlainText(html))
}

func TestPlainText_SeparatesBlocks(t *testing.T) {
	r := New()
	cases := map[string]string{
		"line<br>next":                        "line next",
		"<div>x</div><div>y</div>":            "x y",
		"<ul><li>one</li><li>two</li></ul>":   "one two",
		"<td>a</td><td>b</td>":                "a b",
		"<p>in<em>line</em><b>!</b></p>":      "inline!",
		"<h1>Head</h1><p>body &lt;ok&gt;</p>": "Head body <ok>",
	}
	for in, want := range cases {
		assert.Equal(t, want, r.PlainText(in), in)
	}
}

func TestExcerpt(t *testing.T) {
	assert.Equal(t, "short", Excerpt("short", 200))
	assert.Equal(t, "abc...", Excerpt("abcdef", 3))
	assert.Equal(t, "héé...", Excerpt("héééé", 3))

	exact := strings.Repeat("x", 200)
	assert.Equal(t, exact, Excerpt(exact, 200))
}
