package blocks

import (
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/livetemplate/blockkit/internal/content"
	"github.com/livetemplate/blockkit/internal/dom"
	"github.com/livetemplate/blockkit/internal/security"
)

var (
	youTubeID = regexp.MustCompile(`(?:youtube\.com/(?:watch\?v=|embed/)|youtu\.be/)([^&?/]+)`)
	vimeoID   = regexp.MustCompile(`vimeo\.com/(?:video/)?(\d+)`)
	mapsAt    = regexp.MustCompile(`@(-?\d+\.\d+),(-?\d+\.\d+)`)

	youTubeHost   = host(`youtube\.com|youtu\.be`)
	vimeoHost     = host(`vimeo\.com`)
	twitterHost   = host(`twitter\.com|x\.com`)
	instagramHost = host(`instagram\.com`)
	spotifyHost   = host(`spotify\.com`)
	mapsHost      = regexp.MustCompile(`^https?://(?:[\w-]+\.)*google\.com/maps`)
)

// host matches URLs on one of the alternated domains or their subdomains.
func host(domains string) *regexp.Regexp {
	return regexp.MustCompile(`^https?://(?:[\w-]+\.)*(?:` + domains + `)(?:[:/?#]|$)`)
}

const (
	playerAllow = "accelerometer; autoplay; clipboard-write; encrypted-media; gyroscope; picture-in-picture"
	vimeoAllow  = "autoplay; fullscreen; picture-in-picture"
)

func iframe(src, allow string, attrs ...string) *html.Node {
	n := dom.Element("iframe", append([]string{"src", src, "frameborder", "0"}, attrs...)...)
	if allow != "" {
		dom.SetAttr(n, "allowfullscreen", "")
		dom.SetAttr(n, "allow", allow)
	}
	dom.SetAttr(n, "loading", "lazy")
	return n
}

// withAutoplay adds autoplay=1 to an embed URL.
func withAutoplay(src string) string {
	u, err := url.Parse(src)
	if err != nil {
		return src
	}
	q := u.Query()
	q.Set("autoplay", "1")
	u.RawQuery = q.Encode()
	return u.String()
}

// placeholderBlock swaps a poster placeholder for its player on play.
type placeholderBlock struct {
	base
	player *html.Node
	played bool
}

func (p *placeholderBlock) Handle(action string, ev Event) error {
	if action != "play" {
		return unknownAction(p.name, action)
	}
	if !p.played {
		p.played = true
		p.emit(dom.On(p.part("wrapper")).SetHTML(dom.Render(p.player)))
	}
	return nil
}

func (p *placeholderBlock) Destroy() {}

func (p *placeholderBlock) placeholder(class, label string, poster *html.Node) *html.Node {
	ph := dom.Element("div", "class", class+"-placeholder", "data-on", "click:play")
	if poster != nil {
		dom.Append(ph, poster)
	}
	play := button(class+"-play-btn", label)
	return dom.Append(ph, dom.Append(play, dom.Append(dom.Element("span"), dom.Text("►"))))
}

// Video decorates a YouTube, Vimeo or local video link. Without autoplay and
// with a poster image, embedded players load only when the poster is clicked.
func Video(b *content.Block, env *Env) Result {
	root := newRoot(b)
	link := dom.Find(content.ToNode(b), dom.ByTag("a"))
	if link == nil {
		return Result{Node: content.ToNode(b)}
	}
	src, ok := security.SafeEmbed(dom.GetAttr(link, "href"))
	if !ok {
		return Result{Node: content.ToNode(b)}
	}
	autoplay := b.Has("autoplay")

	var poster string
	for _, row := range b.Rows {
		for _, c := range row.Cells {
			if img, ok := c.Image(); ok && poster == "" {
				poster, _ = security.SafeEmbed(img.Src)
			}
		}
	}

	var player *html.Node
	embedded := true
	switch {
	case youTubeID.MatchString(src):
		id := youTubeID.FindStringSubmatch(src)[1]
		q := "?rel=0"
		if autoplay {
			q += "&autoplay=1&mute=1"
		}
		player = iframe("https://www.youtube.com/embed/"+url.PathEscape(id)+q, playerAllow)
	case vimeoID.MatchString(src):
		id := vimeoID.FindStringSubmatch(src)[1]
		q := ""
		if autoplay {
			q = "?autoplay=1&muted=1"
		}
		player = iframe("https://player.vimeo.com/video/"+id+q, vimeoAllow)
	default:
		embedded = false
		player = dom.Element("video", "src", src, "controls", "")
		if autoplay {
			dom.SetAttr(player, "autoplay", "")
			dom.SetAttr(player, "muted", "")
			dom.SetAttr(player, "playsinline", "")
		}
		if poster != "" {
			dom.SetAttr(player, "poster", poster)
		}
	}

	p := &placeholderBlock{base: newBase(b)}
	wrapper := dom.Element("div", "id", p.part("wrapper"), "class", "video-wrapper")
	dom.Append(root, wrapper)
	if !embedded || poster == "" || autoplay {
		dom.Append(wrapper, player)
		return Result{Node: root}
	}

	live(root)
	ph := p.placeholder("video", "Play video", nil)
	dom.SetStyle(ph, "background-image", "url("+poster+")")
	dom.Append(wrapper, ph)
	dom.SetAttr(player, "src", withAutoplay(dom.GetAttr(player, "src")))
	p.player = player
	return Result{Node: root, Instance: p}
}

// Embed decorates a social or media link into an embed. The first row may
// hold a placeholder picture, the second the URL.
func Embed(b *content.Block, env *Env) Result {
	root := newRoot(b)
	var placeholderCell, urlCell *content.Cell
	if len(b.Rows) > 0 {
		placeholderCell = b.Rows[0].Cell(0)
	}
	if len(b.Rows) > 1 {
		urlCell = b.Rows[1].Cell(0)
	}

	raw := urlCell.Text()
	if links := urlCell.Links(); len(links) > 0 {
		raw = links[0].Href
	}
	p := &placeholderBlock{base: newBase(b)}
	wrapper := dom.Element("div", "id", p.part("wrapper"), "class", "embed-wrapper")
	dom.Append(root, wrapper)

	src, ok := security.SafeEmbed(raw)
	if !ok {
		return Result{Node: root}
	}

	var player *html.Node
	switch {
	case twitterHost.MatchString(src):
		quote := dom.Element("blockquote", "class", "twitter-tweet")
		dom.Append(quote, dom.Element("a", "href", src))
		dom.Append(wrapper, quote,
			dom.Element("script", "src", "https://platform.twitter.com/widgets.js", "async", ""))
		return Result{Node: root}
	case instagramHost.MatchString(src):
		dom.Append(wrapper, iframe(strings.TrimSuffix(src, "/")+"/embed", "",
			"scrolling", "no", "allowtransparency", "true"))
		return Result{Node: root}
	case youTubeHost.MatchString(src):
		if m := youTubeID.FindStringSubmatch(src); m != nil {
			player = iframe("https://www.youtube.com/embed/"+url.PathEscape(m[1])+"?rel=0", playerAllow)
		}
	case vimeoHost.MatchString(src):
		if m := vimeoID.FindStringSubmatch(src); m != nil {
			player = iframe("https://player.vimeo.com/video/"+m[1], playerAllow)
		}
	case spotifyHost.MatchString(src):
		embed := strings.Replace(src, "/track/", "/embed/track/", 1)
		embed = strings.Replace(embed, "/playlist/", "/embed/playlist/", 1)
		player = iframe(embed, playerAllow)
	case mapsHost.MatchString(src):
		if strings.Contains(src, "/embed") {
			player = iframe(src, playerAllow)
		} else if m := mapsAt.FindStringSubmatch(src); m != nil {
			player = iframe("https://www.google.com/maps/embed?pb=!1m18!1m12!1m3!1d3000!2d"+m[2]+"!3d"+m[1]+
				"!2m3!1f0!2f0!3f0!3m2!1i1024!2i768!4f13.1", playerAllow)
		}
	default:
		dom.Append(wrapper, iframe(src, ""))
		return Result{Node: root}
	}
	if player == nil {
		return Result{Node: root}
	}

	picture := placeholderCell.Find(dom.ByTag("picture", "img"))
	if picture == nil {
		dom.Append(wrapper, player)
		return Result{Node: root}
	}
	live(root)
	dom.Append(wrapper, p.placeholder("embed", "Load embed", dom.Clone(picture)))
	p.player = player
	return Result{Node: root, Instance: p}
}
