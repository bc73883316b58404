package blocks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/livetemplate/blockkit/internal/dom"
)

func TestVideoEmbeds(t *testing.T) {
	t.Run("youtube autoplay", func(t *testing.T) {
		res := decorate(t, `<div class="block video autoplay"><div><div><a href="https://youtu.be/abc123">v</a></div></div></div>`, testEnv(nil, nil))
		assert.Nil(t, res.Instance)
		frame := dom.Find(res.Node, dom.ByTag("iframe"))
		require.NotNil(t, frame)
		assert.Equal(t, "https://www.youtube.com/embed/abc123?rel=0&autoplay=1&mute=1", dom.GetAttr(frame, "src"))
	})

	t.Run("local file", func(t *testing.T) {
		res := decorate(t, `<div class="block video"><div><div><a href="/media/clip.mp4">clip</a></div></div></div>`, testEnv(nil, nil))
		v := dom.Find(res.Node, dom.ByTag("video"))
		require.NotNil(t, v)
		assert.Equal(t, "/media/clip.mp4", dom.GetAttr(v, "src"))
		assert.True(t, hasAttr(v, "controls"))
	})

	t.Run("unsafe link is left alone", func(t *testing.T) {
		res := decorate(t, `<div class="block video"><div><div><a href="javascript:alert(1)">x</a></div></div></div>`, testEnv(nil, nil))
		assert.Nil(t, res.Instance)
		assert.Nil(t, dom.Find(res.Node, dom.ByTag("iframe", "video")))
	})
}

func TestVideoPlaceholder(t *testing.T) {
	markup := `<div class="block video">` +
		`<div><div><img src="/poster.jpg" alt=""></div></div>` +
		`<div><div><a href="https://vimeo.com/76979871">v</a></div></div>` +
		`</div>`
	res := decorate(t, markup, testEnv(nil, nil))
	require.NotNil(t, res.Instance)
	id := res.Instance.ID()

	ph := dom.Find(res.Node, dom.ByClass("video-placeholder"))
	require.NotNil(t, ph)
	assert.Equal(t, "url(/poster.jpg)", dom.Style(ph, "background-image"))
	assert.Nil(t, dom.Find(res.Node, dom.ByTag("iframe")))

	act(t, res, "play", Event{})
	frame := dom.Find(byID(res.Node, id+"-wrapper"), dom.ByTag("iframe"))
	require.NotNil(t, frame)
	assert.Equal(t, "https://player.vimeo.com/video/76979871?autoplay=1", dom.GetAttr(frame, "src"))
	assert.Empty(t, act(t, res, "play", Event{}))
}

func TestEmbedProviders(t *testing.T) {
	embed := func(url string) string {
		return `<div class="block embed"><div><div></div></div><div><div>` + url + `</div></div></div>`
	}
	tests := []struct {
		name string
		url  string
		want string
	}{
		{"instagram", "https://www.instagram.com/p/xyz/", "https://www.instagram.com/p/xyz/embed"},
		{"spotify", "https://open.spotify.com/track/123", "https://open.spotify.com/embed/track/123"},
		{"youtube", "https://www.youtube.com/watch?v=abc", "https://www.youtube.com/embed/abc?rel=0"},
		{"generic", "https://example.com/widget", "https://example.com/widget"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := decorate(t, embed(tt.url), testEnv(nil, nil))
			assert.Nil(t, res.Instance)
			frame := dom.Find(res.Node, dom.ByTag("iframe"))
			require.NotNil(t, frame)
			assert.Equal(t, tt.want, dom.GetAttr(frame, "src"))
		})
	}

	res := decorate(t, embed("https://twitter.com/user/status/1"), testEnv(nil, nil))
	assert.NotNil(t, dom.Find(res.Node, dom.ByClass("twitter-tweet")))
}

func TestEmbedPlaceholder(t *testing.T) {
	markup := `<div class="block embed">` +
		`<div><div><picture><img src="/thumb.jpg" alt=""></picture></div></div>` +
		`<div><div><a href="https://www.youtube.com/watch?v=abc">watch</a></div></div>` +
		`</div>`
	res := decorate(t, markup, testEnv(nil, nil))
	require.NotNil(t, res.Instance)
	assert.NotNil(t, dom.Find(res.Node, dom.ByClass("embed-placeholder")))

	act(t, res, "play", Event{})
	assert.Nil(t, dom.Find(res.Node, dom.ByClass("embed-placeholder")))
	assert.NotNil(t, dom.Find(res.Node, dom.ByTag("iframe")))
}
